// Package client talks to a running mock-swap server.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mock-swap/pkg/history"
	"mock-swap/pkg/session"
)

// DefaultBaseURL is where `mock-swap serve` listens by default
const DefaultBaseURL = "http://localhost:8080"

// Client wraps the mock-swap HTTP API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// HistoryResponse is the body of GET /api/history
type HistoryResponse struct {
	Executions []history.Execution `json:"executions"`
	Stats      history.Stats       `json:"stats"`
}

// APIError is a non-2xx response
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API returned status code %d: %s", e.StatusCode, e.Message)
}

// New creates a client for baseURL
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// GetState returns the current view of the session
func (c *Client) GetState(ctx context.Context) (*session.View, error) {
	var v session.View
	if err := c.get(ctx, "/api/state", &v); err != nil {
		return nil, fmt.Errorf("failed to get state: %w", err)
	}
	return &v, nil
}

// GetHistory returns every swap of the session, most recent first
func (c *Client) GetHistory(ctx context.Context) (*HistoryResponse, error) {
	var h HistoryResponse
	if err := c.get(ctx, "/api/history", &h); err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	return &h, nil
}

// GetExecution returns one swap by ID
func (c *Client) GetExecution(ctx context.Context, id string) (*history.Execution, error) {
	var e history.Execution
	if err := c.get(ctx, "/api/history/"+url.PathEscape(id), &e); err != nil {
		return nil, fmt.Errorf("failed to get swap %s: %w", id, err)
	}
	return &e, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &apiErr)
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

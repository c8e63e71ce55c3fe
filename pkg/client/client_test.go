package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mock-swap/pkg/history"
	"mock-swap/pkg/server"
	"mock-swap/pkg/session"
	"mock-swap/pkg/swap"
	"mock-swap/pkg/wallet"
)

func newTestServer(t *testing.T) (*httptest.Server, *session.Store) {
	t.Helper()

	logger := log.New(io.Discard)
	connector, err := wallet.NewMockConnector("", false)
	require.NoError(t, err)

	store, err := session.NewStore(session.Options{
		Connector: connector,
		Executor:  swap.NewSimulatedExecutor(0, 0, logger),
		Logger:    logger,
	})
	require.NoError(t, err)

	ts := httptest.NewServer(server.New(store, nil, nil, logger).Router())
	t.Cleanup(ts.Close)
	return ts, store
}

func TestClient_StateAndHistory(t *testing.T) {
	ts, store := newTestServer(t)
	c := New(ts.URL + "/")
	ctx := context.Background()

	require.NoError(t, store.Connect(ctx))
	require.NoError(t, store.SetFromAmount("1"))
	_, done, err := store.Submit(ctx)
	require.NoError(t, err)
	require.NoError(t, <-done)

	v, err := c.GetState(ctx)
	require.NoError(t, err)
	assert.True(t, v.Wallet.Connected)
	assert.Equal(t, session.TaskSucceeded, v.Task)

	h, err := c.GetHistory(ctx)
	require.NoError(t, err)
	require.Len(t, h.Executions, 1)
	assert.Equal(t, 1, h.Stats.Completed)

	e, err := c.GetExecution(ctx, h.Executions[0].ID)
	require.NoError(t, err)
	assert.Equal(t, history.ExecutionCompleted, e.Status)
	assert.Equal(t, "2340.500000", e.EstimatedOutput)
}

func TestClient_NotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	_, err := New(ts.URL).GetExecution(context.Background(), "missing")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "execution not found")
}

func TestNew_DefaultBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, New("").baseURL)
}

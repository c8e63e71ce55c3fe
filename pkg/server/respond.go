package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"mock-swap/pkg/catalog"
	"mock-swap/pkg/history"
	"mock-swap/pkg/quote"
	"mock-swap/pkg/session"
	"mock-swap/pkg/swap"
	"mock-swap/pkg/wallet"
)

// RespondJSON writes payload as JSON with the given status
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("failed to encode response", "err", err)
	}
}

// RespondError writes {"error": message}
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{"error": message})
}

// respondErr maps a domain error onto its HTTP status
func respondErr(w http.ResponseWriter, err error) {
	RespondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrTokenNotFound), errors.Is(err, history.ErrExecutionNotFound):
		return http.StatusNotFound
	case errors.Is(err, quote.ErrInvalidAmount), errors.Is(err, session.ErrSameToken), errors.Is(err, session.ErrNoSelector):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotReady), errors.Is(err, session.ErrSwapInProgress), errors.Is(err, session.ErrSwapCancelled):
		return http.StatusConflict
	case errors.Is(err, wallet.ErrWalletConnectionFailed), errors.Is(err, swap.ErrSwapExecutionFailed), errors.Is(err, quote.ErrQuoteUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON request body into v
func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

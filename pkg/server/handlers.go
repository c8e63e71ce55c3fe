package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"mock-swap/pkg/history"
	"mock-swap/pkg/session"
)

func (s *Server) respondView(w http.ResponseWriter) {
	RespondJSON(w, http.StatusOK, s.store.View())
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.respondView(w)
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	tokens := s.store.Catalog().Filter(r.URL.Query().Get("q"))

	views := make([]session.TokenView, 0, len(tokens))
	for _, t := range tokens {
		views = append(views, session.NewTokenView(t))
	}
	RespondJSON(w, http.StatusOK, views)
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, from, to := q.Get("amount"), q.Get("from"), q.Get("to")
	if amount == "" || from == "" || to == "" {
		RespondError(w, http.StatusBadRequest, "amount, from and to query parameters are required")
		return
	}

	result, err := s.quotes.Quote(r.Context(), amount, from, to)
	if err != nil {
		respondErr(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Connect(r.Context()); err != nil {
		respondErr(w, err)
		return
	}
	s.respondView(w)
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	s.store.Disconnect()
	s.respondView(w)
}

func (s *Server) handleAmount(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Amount string `json:"amount"`
	}
	if err := decode(r, &payload); err != nil {
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.SetFromAmount(payload.Amount); err != nil {
		respondErr(w, err)
		return
	}
	s.respondView(w)
}

func (s *Server) handleSelector(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Selector string `json:"selector"`
	}
	if err := decode(r, &payload); err != nil {
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	role, err := session.ParseSelector(payload.Selector)
	if err != nil {
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.store.OpenSelector(role)
	s.respondView(w)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Symbol   string `json:"symbol"`
		Selector string `json:"selector"`
	}
	if err := decode(r, &payload); err != nil {
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(payload.Symbol) == "" {
		RespondError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	role, err := session.ParseSelector(payload.Selector)
	if err != nil {
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.SelectToken(role, payload.Symbol); err != nil {
		respondErr(w, err)
		return
	}
	s.respondView(w)
}

func (s *Server) handleInvert(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Invert(); err != nil {
		respondErr(w, err)
		return
	}
	s.respondView(w)
}

func (s *Server) handleToggleSettings(w http.ResponseWriter, r *http.Request) {
	s.store.ToggleSettings()
	s.respondView(w)
}

func (s *Server) handleSlippage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Slippage *decimal.Decimal `json:"slippage"`
	}
	if err := decode(r, &payload); err != nil {
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.Slippage == nil {
		RespondError(w, http.StatusBadRequest, "slippage is required")
		return
	}

	s.store.SetSlippage(*payload.Slippage)
	s.respondView(w)
}

// handleSwap submits the form. With ?wait=true it blocks until the swap
// settles and returns the ledger entry.
func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	id, done, err := s.store.Submit(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}

	if r.URL.Query().Get("wait") != "true" {
		RespondJSON(w, http.StatusAccepted, map[string]interface{}{
			"id":   id,
			"view": s.store.View(),
		})
		return
	}

	select {
	case err := <-done:
		if err != nil {
			respondErr(w, err)
			return
		}
	case <-r.Context().Done():
		return
	}

	execution, err := s.store.Ledger().Get(id)
	if err != nil {
		respondErr(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, execution)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if !s.store.Cancel() {
		RespondError(w, http.StatusConflict, "no swap is running")
		return
	}
	RespondJSON(w, http.StatusAccepted, map[string]bool{"cancelled": true})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ledger := s.store.Ledger()
	RespondJSON(w, http.StatusOK, struct {
		Executions []history.Execution `json:"executions"`
		Stats      history.Stats       `json:"stats"`
	}{
		Executions: ledger.List(),
		Stats:      ledger.Stats(),
	})
}

func (s *Server) handleExecution(w http.ResponseWriter, r *http.Request) {
	execution, err := s.store.Ledger().Get(chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, execution)
}

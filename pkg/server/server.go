// Package server exposes the swap session over HTTP and a websocket view
// stream.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"mock-swap/pkg/observability"
	"mock-swap/pkg/quote"
	"mock-swap/pkg/session"
)

// Server serves one session store
type Server struct {
	store    *session.Store
	quotes   *quote.Service
	metrics  *observability.Metrics
	logger   *log.Logger
	upgrader websocket.Upgrader
}

// New creates a server. metrics may be nil, which disables /metrics.
func New(store *session.Store, quotes *quote.Service, metrics *observability.Metrics, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if quotes == nil {
		quotes = quote.NewService(quote.NewCatalogOracle(store.Catalog()))
	}

	return &Server{
		store:   store,
		quotes:  quotes,
		metrics: metrics,
		logger:  logger.WithPrefix("server"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Router wires HTTP routes to the session
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api", func(api chi.Router) {
		api.Get("/state", s.handleState)
		api.Get("/tokens", s.handleTokens)
		api.Get("/quote", s.handleQuote)

		api.Post("/wallet/connect", s.handleConnect)
		api.Post("/wallet/disconnect", s.handleDisconnect)

		api.Post("/form/amount", s.handleAmount)
		api.Post("/form/selector", s.handleSelector)
		api.Post("/form/select", s.handleSelect)
		api.Post("/form/invert", s.handleInvert)

		api.Post("/settings/toggle", s.handleToggleSettings)
		api.Post("/settings/slippage", s.handleSlippage)

		api.Post("/swap", s.handleSwap)
		api.Post("/swap/cancel", s.handleCancel)

		api.Get("/history", s.handleHistory)
		api.Get("/history/{id}", s.handleExecution)
	})

	return r
}

// Run serves on addr until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("listening", "addr", addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"elapsed", time.Since(start).Round(time.Microsecond),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}

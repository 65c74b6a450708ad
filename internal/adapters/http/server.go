// Package http serves the operational surface: health, metrics, and the
// optional webhook delivery path for updates.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkuleshov/pgdbot/internal/adapters/telegram"
	"github.com/mkuleshov/pgdbot/internal/logging"
)

// Server is the operational HTTP surface. The webhook route shares the
// poller's routing rules, so webhook and long-poll delivery behave
// identically.
type Server struct {
	router chi.Router
	logger *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer builds the router. webhookSecret and dispatcher enable the
// webhook route; leave the secret empty to serve only health and metrics.
func NewServer(registry *prometheus.Registry, webhookSecret string, poller *telegram.Poller, opts ...Option) *Server {
	s := &Server{
		router: chi.NewRouter(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}).ServeHTTP)

	if webhookSecret != "" && poller != nil {
		// The secret in the path is the shared-secret scheme the Bot API
		// recommends for webhook URLs.
		s.router.Post("/telegram/webhook/"+webhookSecret, s.handleWebhook(poller))
	}

	return s
}

// Handler exposes the router for an http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleWebhook(poller *telegram.Poller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var upd telegram.Update
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			s.logger.Warn("webhook: invalid update body", "err", err)
			http.Error(w, "invalid update", http.StatusBadRequest)
			return
		}

		poller.Dispatch(r.Context(), upd)
		w.WriteHeader(http.StatusOK)
	}
}

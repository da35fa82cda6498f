// Package server exposes a thin, read-only HTTP surface over completed
// backtest results, for an out-of-scope reporting layer to consume
// (spec.md §1 excludes the reporting layer itself, but the teacher exposes
// its own domain results the same way through chi/chi-cors).
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hanlyang/backtest/internal/simulation"
	"github.com/rs/zerolog"
)

// ResultStore is the read side the server queries; a completed run's
// result, or the daemon/cmd layer's in-memory cache of recent runs.
type ResultStore interface {
	Result(runID string) (simulation.BacktestResult, bool)
}

// Server wraps a chi router exposing GET /runs/{id} and /healthz.
type Server struct {
	router chi.Router
	store  ResultStore
	log    zerolog.Logger
}

// New builds a Server backed by store, logging under the "server" component.
func New(store ResultStore, log zerolog.Logger) *Server {
	s := &Server{store: store, log: log.With().Str("component", "server").Logger()}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/runs/{runID}", s.handleGetRun)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	result, ok := s.store.Result(runID)
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.log.Error().Err(err).Str("run_id", runID).Msg("failed to encode result")
	}
}

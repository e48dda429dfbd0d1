// Package status exposes a small read-only HTTP surface for operators:
// liveness and the outcome of the most recent scrape cycle.
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/hackseek/scraper/internal/engine"
	"github.com/hackseek/scraper/internal/model"
)

// Reporter provides the scheduler view the server renders.
type Reporter interface {
	State() engine.SchedulerState
	LastResults() ([]model.ScrapeResult, time.Time)
}

// Server serves the status endpoints.
type Server struct {
	reporter Reporter
	srv      *http.Server
}

// NewServer builds a Server listening on the given port.
func NewServer(port int, reporter Reporter) *Server {
	s := &Server{reporter: reporter}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/status", s.handleStatus)

	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// ListenAndServe blocks serving requests until Shutdown.
func (s *Server) ListenAndServe() error {
	zap.L().Info("status: listening", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "status: listen")
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	results, lastRun := s.reporter.LastResults()
	body := map[string]any{
		"scheduler": string(s.reporter.State()),
		"results":   results,
	}
	if !lastRun.IsZero() {
		body["last_run"] = lastRun
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Warn("status: write response", zap.Error(err))
	}
}

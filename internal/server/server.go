// Package server exposes the rule set, feed registry and on-demand polling
// over a small JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"newswatch/internal/model"
	"newswatch/internal/scheduler"
	"newswatch/internal/trigger"
)

const checkTimeout = 5 * time.Minute

// RuleSource exposes the active rule set and its reload.
type RuleSource interface {
	Load() trigger.RuleSet
	Reload() error
	Path() string
}

// FeedLister lists the feed registry.
type FeedLister interface {
	ListFeeds(ctx context.Context) ([]model.Feed, error)
}

// Checker runs a poll cycle on demand.
type Checker interface {
	Check(ctx context.Context) (scheduler.Summary, error)
}

// Server is the HTTP API server.
type Server struct {
	rules   RuleSource
	feeds   FeedLister
	checker Checker
	router  chi.Router
	log     *slog.Logger
}

type ruleView struct {
	Name      string `json:"name,omitempty"`
	Line      int    `json:"line"`
	Predicate string `json:"predicate"`
}

type rulesResponse struct {
	Path  string     `json:"path"`
	Rules []ruleView `json:"rules"`
}

type feedView struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	URL         string     `json:"url"`
	Active      bool       `json:"active"`
	LastCheckAt *time.Time `json:"last_check_at,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}

// New creates a server. checker may be nil, in which case /api/check
// reports the service as unavailable.
func New(rules RuleSource, feeds FeedLister, checker Checker, log *slog.Logger) *Server {
	s := &Server{
		rules:   rules,
		feeds:   feeds,
		checker: checker,
		log:     log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/rules", s.handleRules)
		r.Post("/rules/reload", s.handleReload)
		r.Get("/feeds", s.handleFeeds)
		r.Post("/check", s.handleCheck)
	})

	s.router = r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

// --- Handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRules(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.rulesView())
}

func (s *Server) handleReload(w http.ResponseWriter, _ *http.Request) {
	if err := s.rules.Reload(); err != nil {
		s.log.Warn("reload rules", "error", err)
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	s.log.Info("rules reloaded", "rules", len(s.rules.Load()))
	s.writeJSON(w, http.StatusOK, s.rulesView())
}

func (s *Server) handleFeeds(w http.ResponseWriter, r *http.Request) {
	feeds, err := s.feeds.ListFeeds(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]feedView, 0, len(feeds))
	for _, f := range feeds {
		out = append(out, feedView{
			ID:          f.ID,
			Name:        f.Name,
			URL:         f.URL,
			Active:      f.IsActive,
			LastCheckAt: f.LastCheckAt,
			LastError:   f.LastError,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	if s.checker == nil {
		s.writeError(w, http.StatusServiceUnavailable, errors.New("polling is not available"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	sum, err := s.checker.Check(ctx)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sum)
}

// --- Helpers ---

func (s *Server) rulesView() rulesResponse {
	rules := s.rules.Load()
	resp := rulesResponse{Path: s.rules.Path(), Rules: make([]ruleView, 0, len(rules))}
	for _, r := range rules {
		resp.Rules = append(resp.Rules, ruleView{Name: r.Name, Line: r.Line, Predicate: r.Predicate.String()})
	}
	return resp
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

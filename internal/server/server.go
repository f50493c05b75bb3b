// Package server exposes an inclusion pipeline over HTTP.
//
// Routes:
//
//	POST /v1/include   resolve the HTML request body; ?base= sets the base URL
//	GET  /healthz      liveness, plus an optional dependency check
//	GET  /metrics      Prometheus exposition, when a gatherer is configured
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	include "github.com/alnah/go-include"
)

// Response headers summarizing a run.
const (
	HeaderFailures   = "X-Include-Failures"
	HeaderPasses     = "X-Include-Passes"
	HeaderUnresolved = "X-Include-Unresolved"
)

// DefaultMaxBodyBytes caps request documents.
const DefaultMaxBodyBytes = 10 << 20

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// Server serves an include.Pipeline over HTTP.
type Server struct {
	pipeline *include.Pipeline
	logger   *slog.Logger
	maxBody  int64
	gatherer prometheus.Gatherer
	health   func(context.Context) error
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxBodyBytes caps the size of submitted documents.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// WithGatherer serves metrics from g on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithHealthCheck adds a dependency check to /healthz, such as a cache ping.
func WithHealthCheck(fn func(context.Context) error) Option {
	return func(s *Server) {
		s.health = fn
	}
}

// New creates a Server for p.
func New(p *include.Pipeline, opts ...Option) *Server {
	s := &Server{
		pipeline: p,
		logger:   slog.New(slog.DiscardHandler),
		maxBody:  DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Post("/v1/include", s.handleInclude)
	r.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// failureBody is one failed inclusion point in a JSON response.
type failureBody struct {
	Source string `json:"source"`
	URI    string `json:"uri,omitempty"`
	Error  string `json:"error"`
}

// includeBody is the JSON response of /v1/include.
type includeBody struct {
	HTML       string        `json:"html"`
	Passes     int           `json:"passes"`
	Resolved   int           `json:"resolved"`
	Unresolved int           `json:"unresolved"`
	Failures   []failureBody `json:"failures"`
}

func (s *Server) handleInclude(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, fmt.Sprintf("document exceeds %d bytes", s.maxBody), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "reading body", http.StatusBadRequest)
		return
	}

	p := s.pipeline
	if base := r.URL.Query().Get("base"); base != "" {
		p, err = p.Rebase(base)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	out, report, err := p.ProcessHTML(r.Context(), string(body))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusServiceUnavailable
		}
		s.logger.Error("include request failed", "error", err)
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set(HeaderFailures, strconv.Itoa(len(report.Failures)))
	w.Header().Set(HeaderPasses, strconv.Itoa(report.Passes))
	w.Header().Set(HeaderUnresolved, strconv.Itoa(report.Unresolved))

	if wantsJSON(r) {
		resp := includeBody{
			HTML:       out,
			Passes:     report.Passes,
			Resolved:   report.Resolved,
			Unresolved: report.Unresolved,
			Failures:   make([]failureBody, 0, len(report.Failures)),
		}
		for _, f := range report.Failures {
			resp.Failures = append(resp.Failures, failureBody{Source: f.Source, URI: f.URI, Error: f.Err.Error()})
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			s.logger.Error("encoding response", "error", err)
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			s.logger.Warn("health check failed", "error", err)
			http.Error(w, "unhealthy: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

// wantsJSON reports whether the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// logRequests logs one line per request at Debug level.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

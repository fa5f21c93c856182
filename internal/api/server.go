// Package api implements the HTTP server exposing the threading pipeline.
//
// Route overview:
//
//	GET  /healthz    liveness and build information
//	POST /v1/thread  load and thread a source, returning structured entries
//	POST /v1/render  run the full pipeline, returning one rendered artifact
//	POST /v1/lint    load a source and report structural problems
//
// Request bodies are pipeline.Options encoded as JSON. Runtime-only fields
// (logger, headers) never cross the wire.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/threadline/pkg/pipeline"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second

	// maxBodyBytes bounds request bodies; options payloads are tiny.
	maxBodyBytes = 1 << 20
)

// Server serves the threading pipeline over HTTP.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
}

// NewServer creates a server around the given runner.
// If logger is nil, the default logger is used.
func NewServer(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, logger: logger}
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/thread", s.handleThread)
		r.Post("/render", s.handleRender)
		r.Post("/lint", s.handleLint)
	})
	return r
}

// ListenAndServe runs the server until ctx is cancelled, then drains
// in-flight requests before returning.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

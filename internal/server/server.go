// Package server exposes comparisons over HTTP.
//
// Endpoints accept multipart uploads and run them through the same
// [pipeline.Runner] the CLI uses:
//
//	GET  /healthz              liveness and build info
//	POST /v1/distance          reference + candidate files -> distance
//	POST /v1/compare           expected + sources files -> comparison result
//	POST /v1/merge             sources files -> merged PNG
//	GET  /v1/history           recent comparison records
//	GET  /v1/history/{id}      one record
//
// Errors are JSON objects with the machine-readable code from pkg/errors.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/simcheck/pkg/config"
	"github.com/matzehuels/simcheck/pkg/pipeline"
)

// shutdownTimeout bounds how long in-flight requests may finish after the
// serve context is cancelled.
const shutdownTimeout = 10 * time.Second

// Server is the HTTP API.
type Server struct {
	runner    *pipeline.Runner
	logger    *log.Logger
	addr      string
	maxUpload int64
	router    chi.Router
}

// New creates a server around runner.
func New(runner *pipeline.Runner, cfg config.ServerConfig, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	maxUpload := int64(cfg.MaxUploadMB) << 20
	if maxUpload <= 0 {
		maxUpload = 64 << 20
	}
	s := &Server{
		runner:    runner,
		logger:    logger,
		addr:      cfg.Addr,
		maxUpload: maxUpload,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.limitBody)
			r.Post("/distance", s.handleDistance)
			r.Post("/compare", s.handleCompare)
			r.Post("/merge", s.handleMerge)
		})
		r.Get("/history", s.handleHistory)
		r.Get("/history/{id}", s.handleRecord)
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Package server exposes the easel calculator over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/easel/internal/config"
	"github.com/matzehuels/easel/pkg/calculator"
	"github.com/matzehuels/easel/pkg/preset"
)

// Server is the HTTP API server.
type Server struct {
	config     config.Config
	tables     config.Tables
	machine    []calculator.Option
	presets    preset.Collection
	logger     *log.Logger
	router     *chi.Mux
	httpServer *http.Server
}

// New creates a server. presets may be nil, in which case the preset
// routes are not mounted.
func New(cfg config.Config, presets preset.Collection, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}
	tables, err := cfg.Tables()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.MachineOptions(logger)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	s := &Server{
		config:  cfg,
		tables:  tables,
		machine: opts,
		presets: presets,
		logger:  logger,
		router:  r,
	}

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(30 * time.Second))

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// requestLogger logs one line per request through charmbracelet/log.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).Round(time.Microsecond),
				"request_id", chiMiddleware.GetReqID(r.Context()),
			)
		})
	}
}

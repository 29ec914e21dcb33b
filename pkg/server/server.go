// Package server exposes seal rendering over HTTP.
//
// It is a thin service in front of [pipeline.Runner]: the storefront that
// owns orders and authentication calls it after authorising a request.
//
// Routes:
//
//	POST /v1/seals/render          layout JSON in, image out
//	POST /v1/seals/preview         preview PNG with optional debug ticks
//	POST /v1/seals/artifacts       render and persist, returns the artifact id
//	GET  /v1/seals/artifacts/{id}  stored PNG
//	GET  /v1/clock                 the 24-tick angle table
//	GET  /healthz
//
// Errors are JSON objects {"code": ..., "message": ...}.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/anointarray/sealforge/pkg/artifact"
	"github.com/anointarray/sealforge/pkg/buildinfo"
	"github.com/anointarray/sealforge/pkg/pipeline"
	"github.com/anointarray/sealforge/pkg/seal/layout"
)

// Defaults for [Config].
const (
	DefaultAddr           = ":8080"
	DefaultRequestTimeout = 60 * time.Second
	DefaultMaxBodyBytes   = 1 << 20
	shutdownGrace         = 10 * time.Second
)

// Config configures a [Server].
type Config struct {
	Addr           string
	RequestTimeout time.Duration
	MaxBodyBytes   int64

	// Settings is the geometry applied to every request.
	Settings layout.Settings

	// DefaultSize and DefaultFidelity apply when a request omits them.
	DefaultSize     int
	DefaultFidelity string
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Settings == (layout.Settings{}) {
		c.Settings = layout.DefaultSettings()
	}
	if c.DefaultSize == 0 {
		c.DefaultSize = pipeline.DefaultSize
	}
	if c.DefaultFidelity == "" {
		c.DefaultFidelity = pipeline.DefaultFidelity
	}
	return c
}

// Server is the HTTP render service.
type Server struct {
	runner *pipeline.Runner
	store  artifact.Store
	cfg    Config
	logger *log.Logger
}

// New creates a server. A nil store disables the artifact routes; a nil
// logger discards logs.
func New(runner *pipeline.Runner, store artifact.Store, cfg Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Server{runner: runner, store: store, cfg: cfg.withDefaults(), logger: logger}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(api chi.Router) {
		api.Get("/clock", s.handleClock)
		api.Route("/seals", func(seals chi.Router) {
			seals.Post("/render", s.handleRender)
			seals.Post("/preview", s.handlePreview)
			seals.Post("/artifacts", s.handleCreateArtifact)
			seals.Get("/artifacts/{id}", s.handleGetArtifact)
		})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Code: "NOT_FOUND", Message: "no route for " + r.URL.Path})
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr, "version", buildinfo.Version)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

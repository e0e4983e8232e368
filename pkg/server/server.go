// Package server exposes stored treemaps over HTTP.
//
// Every stored layout gets its own [interact.Layer], so hit tests always
// answer against the most recent layout of that record, including while a
// canvas change is being applied.
//
// # Routes
//
//	POST   /api/layouts              create a layout from holdings
//	GET    /api/layouts              list stored layouts
//	GET    /api/layouts/{id}         fetch a stored layout
//	GET    /api/layouts/{id}/svg     render a stored layout as SVG
//	PUT    /api/layouts/{id}/canvas  recompute at a new canvas size
//	GET    /api/layouts/{id}/hit     hit-test a point (?x=&y=&vw=&vh=)
//	DELETE /api/layouts/{id}         delete a stored layout
//	GET    /api/stats                counters, when configured with WithStats
//	GET    /healthz                  liveness probe
//
// Errors are JSON objects {"code": ..., "message": ...} with the status
// derived from the error code.
package server

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/squaremap/pkg/core/interact"
	"github.com/matzehuels/squaremap/pkg/observability"
	"github.com/matzehuels/squaremap/pkg/pipeline"
	"github.com/matzehuels/squaremap/pkg/storage"
)

const (
	// maxBodyBytes bounds request bodies.
	maxBodyBytes = 1 << 20

	shutdownTimeout = 10 * time.Second
)

// Server serves the layout API.
type Server struct {
	store    storage.Store
	runner   *pipeline.Runner
	logger   *log.Logger
	defaults pipeline.Options
	stats    *observability.Stats

	mu     sync.Mutex
	layers map[string]*interact.Layer

	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithDefaults sets the layout options used when a request leaves them
// out. Input and Formats are ignored.
func WithDefaults(opts pipeline.Options) Option { return func(s *Server) { s.defaults = opts } }

// WithStats exposes st at GET /api/stats. The caller registers st with
// observability.Register so that it receives events.
func WithStats(st *observability.Stats) Option { return func(s *Server) { s.stats = st } }

// New returns a server over store. A nil runner computes without a cache.
func New(store storage.Store, runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		store:  store,
		runner: runner,
		layers: make(map[string]*interact.Layer),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	s.defaults.Input = ""
	s.defaults.Formats = nil
	s.defaults.SetLayoutDefaults()
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.stats != nil {
		r.Get("/api/stats", s.handleStats)
	}
	r.Route("/api/layouts", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/", s.handleList)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Get("/svg", s.handleSVG)
			r.Put("/canvas", s.handleCanvas)
			r.Get("/hit", s.handleHit)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and closes every interaction layer.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		s.Close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	return err
}

// Close releases every interaction layer. It does not close the store
// or the runner.
func (s *Server) Close() error {
	s.mu.Lock()
	layers := s.layers
	s.layers = make(map[string]*interact.Layer)
	s.mu.Unlock()

	for _, l := range layers {
		l.Close()
	}
	return nil
}

// layer returns the interaction layer for rec, creating and filling it
// from the stored layout on first use.
func (s *Server) layer(rec *storage.Record) *interact.Layer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.layers[rec.ID]; ok {
		return l
	}
	l := interact.NewLayer(interact.WithLogger(s.logger))
	l.Swap(rec.Layout.Scene().Layout)
	s.layers[rec.ID] = l
	return l
}

func (s *Server) dropLayer(id string) {
	s.mu.Lock()
	l, ok := s.layers[id]
	delete(s.layers, id)
	s.mu.Unlock()
	if ok {
		l.Close()
	}
}

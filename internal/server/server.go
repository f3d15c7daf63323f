// Package server exposes profile rendering over HTTP.
//
// The service accepts a profile document plus render options and
// returns the rendered output: the colored call tree as text, or a
// node-link diagram as DOT or SVG. Rendering is deterministic, so
// responses are cached by content hash of the profile and options.
//
// # Endpoints
//
//   - GET  /healthz      liveness probe
//   - POST /render       colored call tree (text/plain)
//   - POST /render/dot   Graphviz DOT (text/vnd.graphviz)
//   - POST /render/svg   laid-out diagram (image/svg+xml)
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/callscape/callscape/pkg/cache"
)

// Config configures the render service.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Cache stores rendered output. Nil disables caching.
	Cache cache.Cache

	// CacheTTL bounds cache entry lifetime. Non-positive keeps entries
	// forever.
	CacheTTL time.Duration

	// Logger receives request logs. Defaults to log.Default().
	Logger *log.Logger
}

// Server is the HTTP render service.
type Server struct {
	http   *http.Server
	cache  cache.Cache
	ttl    time.Duration
	logger *log.Logger
}

// New builds the service and its routes.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	store := cfg.Cache
	if store == nil {
		store = cache.NewNullCache()
	}

	s := &Server{
		cache:  store,
		ttl:    cfg.CacheTTL,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Post("/render", s.handleTree)
	r.Post("/render/dot", s.handleDOT)
	r.Post("/render/svg", s.handleSVG)

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the route tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe starts serving and blocks until the listener fails or
// Shutdown is called.
func (s *Server) ListenAndServe() error {
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the service, waiting for in-flight
// requests up to the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

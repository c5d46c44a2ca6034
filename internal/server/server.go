// Package server serves the live generation over HTTP together with the
// webhook endpoint and a status endpoint.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/folio/internal/publish"
	"github.com/thoreinstein/folio/internal/trigger"
	"github.com/thoreinstein/folio/internal/webhook"
)

// StatusPath is the route of the status endpoint.
const StatusPath = "/_folio/status"

// GenerationHeader carries the id of the generation a response came from.
const GenerationHeader = "X-Folio-Generation"

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 5 * time.Second

// Resolver locates the live generation.
type Resolver interface {
	ResolveCurrent() (uint64, string, error)
}

// StatusSource reports trigger state.
type StatusSource interface {
	Status() trigger.Status
}

// StatusResponse is the body of GET /_folio/status.
type StatusResponse struct {
	Current uint64 `json:"current_generation"`
	trigger.Status
}

// Server is the folio HTTP server.
type Server struct {
	addr     string
	resolver Resolver
	status   StatusSource
	webhook  http.Handler
	noCache  bool
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithStatus enables the status endpoint.
func WithStatus(s StatusSource) Option {
	return func(srv *Server) {
		srv.status = s
	}
}

// WithWebhook mounts h on the webhook path.
func WithWebhook(h http.Handler) Option {
	return func(srv *Server) {
		srv.webhook = h
	}
}

// WithNoCache disables client caching, for local previews.
func WithNoCache(enabled bool) Option {
	return func(srv *Server) {
		srv.noCache = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(srv *Server) {
		srv.logger = logger
	}
}

// New returns a Server listening on addr.
func New(addr string, resolver Resolver, opts ...Option) *Server {
	s := &Server{
		addr:     addr,
		resolver: resolver,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if s.webhook != nil {
		mux.Handle(webhook.Path, s.webhook)
	}
	if s.status != nil {
		mux.HandleFunc("GET "+StatusPath, s.handleStatus)
	}
	mux.HandleFunc("/", s.handleSite)
	return mux
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", s.addr)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.logger.Info("serving", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return errors.Wrap(err, "serving http")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutting down http server")
	}
	return nil
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := StatusResponse{Status: s.status.Status()}
	if id, _, err := s.resolver.ResolveCurrent(); err == nil {
		resp.Current = id
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(resp)
}

// handleSite resolves the live generation once per request, so every byte
// of a response comes from one generation even while a swap happens.
func (s *Server) handleSite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, dir, err := s.resolver.ResolveCurrent()
	if err != nil {
		if !errors.Is(err, publish.ErrNoGenerations) {
			s.logger.Error("resolving current generation", "error", err)
		}
		http.Error(w, "no generation published yet", http.StatusServiceUnavailable)
		return
	}

	// Directories without an index page are not listed
	clean := path.Clean("/" + r.URL.Path)
	if info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(clean))); err == nil && info.IsDir() {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(clean), "index.html")); err != nil {
			http.NotFound(w, r)
			return
		}
	}

	w.Header().Set(GenerationHeader, strconv.FormatUint(id, 10))
	if s.noCache {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	}
	http.FileServer(http.Dir(dir)).ServeHTTP(w, r)
}

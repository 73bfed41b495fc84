// Package server exposes a composition store over HTTP.
//
// Routes:
//
//	POST /api/compositions       {"Id","Data"} -> {"Id"}   (empty Id mints one)
//	GET  /api/compositions/{id}  -> {"Id","Data"} or 404
//	GET  /healthz                -> 200 "ok"
//	GET  /metrics                Prometheus exposition, when a gatherer is set
//
// The wire shape matches [storage.HTTP], so one blokdust instance can serve
// as the remote store of another.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/blokdust/internal/metrics"
	errs "github.com/matzehuels/blokdust/pkg/errors"
	"github.com/matzehuels/blokdust/pkg/storage"
)

const (
	// DefaultMaxBody bounds request bodies.
	DefaultMaxBody = 16 << 20

	shutdownTimeout = 5 * time.Second
)

// Option customizes a [Server].
type Option func(*Server)

// WithLogger sets the request logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics serves g at /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithMaxBody sets the request body limit in bytes.
func WithMaxBody(n int64) Option {
	return func(s *Server) { s.maxBody = n }
}

// Server serves a [storage.Store].
type Server struct {
	store    storage.Store
	logger   *log.Logger
	gatherer prometheus.Gatherer
	maxBody  int64
	router   chi.Router
}

// New builds the router for store.
func New(store storage.Store, opts ...Option) *Server {
	s := &Server{store: store, maxBody: DefaultMaxBody}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(s.gatherer))
	}
	r.Route(storage.CompositionsPath, func(r chi.Router) {
		r.Post("/", s.save)
		r.Get("/{id}", s.load)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe listens on addr and serves until ctx ends.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx ends, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("storage server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("storage server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) save(w http.ResponseWriter, r *http.Request) {
	var env storage.Envelope
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err := dec.Decode(&env); err != nil {
		http.Error(w, "invalid composition envelope", http.StatusBadRequest)
		return
	}
	if env.Data == "" {
		http.Error(w, "composition data is empty", http.StatusBadRequest)
		return
	}
	id, err := s.store.Save(r.Context(), env.ID, []byte(env.Data))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, storage.Envelope{ID: id})
}

func (s *Server) load(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, err := s.store.Load(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, storage.Envelope{ID: id, Data: string(data)})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= 500 {
		s.logger.Error("store request failed", "path", r.URL.Path, "err", err)
	}
	http.Error(w, errs.UserMessage(err), status)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errs.Is(err, errs.ErrCodeInvalidID), errs.Is(err, errs.ErrCodeInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

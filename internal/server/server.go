package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/jfoltran/gallery/internal/lister"
	"github.com/jfoltran/gallery/internal/metrics"
)

// Server is the HTTP server that serves the image listing API, the static
// asset root and the embedded gallery page.
type Server struct {
	lister    *lister.Lister
	collector *metrics.Collector
	observer  metrics.Observer
	logger    zerolog.Logger
	hub       *Hub
	srv       *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithWatcher pushes fresh listings to websocket clients whenever w
// publishes one.
func WithWatcher(w *lister.Watcher) Option {
	return func(s *Server) { s.hub.watcher = w }
}

// WithObserver adds an extra listing observer, e.g. Prometheus.
func WithObserver(o metrics.Observer) Option {
	return func(s *Server) { s.observer = metrics.Observers{s.collector, o} }
}

// New creates a new Server.
func New(l *lister.Lister, collector *metrics.Collector, logger zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		lister:    l,
		collector: collector,
		observer:  collector,
		logger:    logger.With().Str("component", "http-server").Logger(),
		hub:       newHub(collector, logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() (http.Handler, error) {
	h := &handlers{lister: s.lister, collector: s.collector, observer: s.observer, logger: s.logger}

	dist, err := fs.Sub(distFS, "dist")
	if err != nil {
		return nil, fmt.Errorf("embed fs: %w", err)
	}
	index, err := fs.ReadFile(dist, "index.html")
	if err != nil {
		return nil, fmt.Errorf("embed index: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/images", h.images)
		r.Get("/status", h.status)
		r.Get("/logs", h.logs)
		r.HandleFunc("/ws", s.hub.handleWS)
	})
	r.Handle("/metrics", promhttp.Handler())

	// Embedded page and bundle.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(index)
	})
	r.Handle("/_gallery/*", http.StripPrefix("/_gallery", http.FileServer(http.FS(dist))))

	// Static asset root, with the embedded placeholder as a fallback.
	r.Handle("/*", withPlaceholder(s.lister.Dir(), dist, http.FileServer(http.Dir(s.lister.Dir()))))

	return r, nil
}

// Start begins serving on addr. It blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	go s.hub.start(ctx)

	s.logger.Info().Str("addr", addr).Str("assets", s.lister.Dir()).Msg("starting HTTP server")

	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("took", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}

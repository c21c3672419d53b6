package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmmcquay/nogo/internal/logging"
	"github.com/dmmcquay/nogo/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPServer exposes /health, /ready and /metrics next to a running game.
type HTTPServer struct {
	server   *http.Server
	listener net.Listener
	logger   logging.ContextLogger
}

// NewHTTPServer builds the router. Nothing listens until Start.
func NewHTTPServer(addr string, logger logging.ContextLogger, checker *Checker, collector *metrics.PrometheusCollector) *HTTPServer {
	return &HTTPServer{
		server: &http.Server{
			Addr:         addr,
			Handler:      NewRouter(checker, collector),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// NewRouter wires the endpoints on a chi router.
func NewRouter(checker *Checker, collector *metrics.PrometheusCollector) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(PrometheusMiddleware(collector))

	r.Get("/health", checker.LivenessHandler)
	r.Get("/ready", checker.ReadinessHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(collector.Registry(), promhttp.HandlerOpts{}))

	return r
}

// Start binds the listener and serves in the background. Bind errors are
// returned; later serve errors are logged.
func (s *HTTPServer) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.logger.Info("Starting HTTP metrics server", "addr", ln.Addr().String())

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	return nil
}

// Addr is the bound address once started, otherwise the configured one.
func (s *HTTPServer) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.server.Addr
}

// Stop gracefully stops the HTTP server.
func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP metrics server")
	return s.server.Shutdown(ctx)
}

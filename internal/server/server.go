package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/claimlens/claimlens/internal/config"
	apperrors "github.com/claimlens/claimlens/internal/errors"
	"github.com/claimlens/claimlens/internal/observability"
	"github.com/claimlens/claimlens/internal/server/handlers"
	servermw "github.com/claimlens/claimlens/internal/server/middleware"
)

// Options wires the server to its configuration and the analysis engine.
type Options struct {
	Config config.ServerConfig

	// Service runs analyses. Without it the analysis routes answer 503.
	Service handlers.AnalysisService

	// Health is the manager behind the /health endpoints. A manager without
	// checks is created when nil.
	Health *handlers.HealthManager

	// MetricsPort is the Prometheus exporter port proxied at /metrics.
	MetricsPort int

	// AdminToken enables POST /admin/signal when set.
	AdminToken string

	// Pprof mounts net/http/pprof under /debug.
	Pprof bool
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	opts   Options
}

// New builds the router and registers all routes. The listener is not
// opened until Start.
func New(opts Options) *Server {
	if opts.Health == nil {
		opts.Health = handlers.NewHealthManager(handlers.AppVersion)
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(servermw.RequestID)
	r.Use(servermw.RequestMetrics)
	r.Use(servermw.Recovery)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		HandleError(w, req, apperrors.NewNotFoundError("The requested resource was not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		HandleError(w, req, apperrors.NewMethodNotAllowedError("The requested method is not allowed for this resource"))
	})

	s := &Server{
		router: r,
		opts:   opts,
	}

	handlers.SetHTTPErrorResponder(HandleError)
	s.registerRoutes()

	return s
}

// Addr is the host:port the server listens on.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.opts.Config.Host, strconv.Itoa(s.opts.Config.Port))
}

// Start listens and serves until Shutdown. It returns nil after a graceful
// shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.Addr(), err)
	}
	return s.Serve(ln)
}

// Serve serves on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	cfg := s.opts.Config
	s.server = &http.Server{
		Handler:           s.router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	if logger := observability.ServerLogger; logger != nil {
		logger.Info("Starting HTTP server",
			zap.String("addr", ln.Addr().String()),
			zap.Duration("read_timeout", cfg.ReadTimeout),
			zap.Duration("write_timeout", cfg.WriteTimeout))
	}

	err := s.server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if logger := observability.ServerLogger; logger != nil {
		logger.Info("Shutting down HTTP server")
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the underlying router for testing and instrumentation
func (s *Server) Handler() http.Handler {
	return s.router
}

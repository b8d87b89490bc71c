package server

import (
	"github.com/fulmenhq/gofulmen/signals"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/claimlens/claimlens/internal/observability"
	"github.com/claimlens/claimlens/internal/server/handlers"
)

func (s *Server) registerRoutes() {
	health := s.opts.Health
	s.router.Get("/health", health.HealthHandler)
	s.router.Get("/health/live", health.LivenessHandler)
	s.router.Get("/health/ready", health.ReadinessHandler)
	s.router.Get("/health/startup", health.StartupHandler)

	s.router.Get("/version", handlers.VersionHandler)
	s.router.Get("/metrics", s.metricsHandler)

	analysis := &handlers.AnalysisHandlers{Service: s.opts.Service}
	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", analysis.Analyze)
		r.Get("/analyses", analysis.History)
		r.Get("/analyses/{id}", analysis.Get)
	})

	if s.opts.Pprof {
		s.router.Mount("/debug", middleware.Profiler())
		if logger := observability.ServerLogger; logger != nil {
			logger.Warn("pprof endpoints enabled", zap.String("path", "/debug/pprof/"))
		}
	}

	s.registerAdminEndpoint()
}

// registerAdminEndpoint exposes the signal endpoint when an admin token is
// configured.
func (s *Server) registerAdminEndpoint() {
	logger := observability.ServerLogger
	if s.opts.AdminToken == "" {
		if logger != nil {
			logger.Debug("Admin signal endpoint disabled (no admin token set)")
		}
		return
	}

	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: s.opts.AdminToken,
		RateLimit: 10,
		RateBurst: 5,
	})
	s.router.Post("/admin/signal", handler.ServeHTTP)

	if logger != nil {
		logger.Info("Admin signal endpoint enabled",
			zap.String("path", "/admin/signal"),
			zap.String("rate_limit", "10/min, burst 5"))
		logger.Warn("Admin endpoint enabled - ensure this server is not exposed to public internet")
	}
}

package cmd

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/claimlens/claimlens/internal/appid"
	"github.com/claimlens/claimlens/internal/config"
	errwrap "github.com/claimlens/claimlens/internal/errors"
	"github.com/claimlens/claimlens/internal/metrics"
	"github.com/claimlens/claimlens/internal/observability"
	"github.com/claimlens/claimlens/internal/server"
	"github.com/claimlens/claimlens/internal/server/handlers"
)

// telemetryHealthChecker ensures telemetry system and exporter are available
type telemetryHealthChecker struct{}

func (telemetryHealthChecker) CheckHealth(ctx context.Context) error {
	if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
		return errwrap.NewInternalError("telemetry system not initialized")
	}
	return nil
}

// identityHealthChecker validates app identity metadata
type identityHealthChecker struct {
	identity *appid.Identity
}

func (i identityHealthChecker) CheckHealth(ctx context.Context) error {
	switch {
	case i.identity == nil:
		return errwrap.Wrap(ctx, errwrap.CodeConfigInvalid, nil, "app identity not loaded")
	case i.identity.BinaryName == "":
		return errwrap.Wrap(ctx, errwrap.CodeConfigInvalid, nil, "app identity missing binary name")
	case i.identity.EnvPrefix == "":
		return errwrap.Wrap(ctx, errwrap.CodeConfigInvalid, nil, "app identity missing env prefix")
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API server with graceful shutdown support.

Endpoints:
  POST /v1/analyze          analyze a claim or URL
  GET  /v1/analyses         recent analyses (store.enabled only)
  GET  /v1/analyses/{id}    one analysis (store.enabled only)
  GET  /health, /health/*   health probes
  GET  /version, /metrics

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Reload config and log level`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "server host (default from config)")
	serveCmd.Flags().IntP("port", "p", 0, "server port (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	identity := GetAppIdentity()
	namespace := identity.TelemetryNamespace

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if host := strings.TrimSpace(mustString(cmd, "host")); host != "" {
		cfg.Server.Host = host
	}
	if port := mustInt(cmd, "port"); port > 0 {
		cfg.Server.Port = port
	}

	observability.InitServerLogger(identity.BinaryName, cfg.Logging.Level, namespace)
	logger := observability.ServerLogger

	metricsPort := cfg.Metrics.Port
	if metricsPort == 0 {
		metricsPort = observability.DefaultMetricsPort
	}
	health := handlers.NewHealthManager(versionInfo.Version)
	health.RegisterChecker("app_identity", identityHealthChecker{identity: identity})

	if cfg.Metrics.Enabled {
		if err := observability.InitMetrics(observability.MetricsOptions{
			Namespace:   namespace,
			Port:        metricsPort,
			BearerToken: cfg.Metrics.BearerToken,
		}); err != nil {
			logger.Error("Failed to initialize metrics", zap.Error(err))
			return errwrap.Wrap(ctx, errwrap.CodeInternal, err, "metrics initialization failed")
		}
		defer func() { _ = observability.StopMetrics() }()
		metricsPort = observability.GetMetricsPort()
		health.RegisterChecker("telemetry", telemetryHealthChecker{})

		startedAt := time.Now()
		metrics.SetServerStartTime(startedAt.Unix())
		stopUptime := trackUptime(startedAt, 15*time.Second)
		defer stopUptime()
	}

	rt, err := newRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.close()

	if rt.store != nil {
		health.RegisterChecker("store", rt.store)
		if purged, err := rt.store.PurgeExpired(ctx); err != nil {
			logger.Warn("Failed to purge expired cache entries", zap.Error(err))
		} else if purged > 0 {
			logger.Info("Purged expired cache entries", zap.Int64("count", purged))
		}
	}

	handlers.SetAppIdentity(identity)

	srv := server.New(server.Options{
		Config:      cfg.Server,
		Service:     rt.engine,
		Health:      health,
		MetricsPort: metricsPort,
		AdminToken:  strings.TrimSpace(os.Getenv(identity.EnvPrefix + "ADMIN_TOKEN")),
		Pprof:       cfg.Debug.PprofEnabled,
	})

	logger.Info("Initializing server",
		zap.String("service", identity.BinaryName),
		zap.String("namespace", namespace),
		zap.String("version", versionInfo.Version),
		zap.String("addr", srv.Addr()),
		zap.Bool("store", cfg.Store.Enabled),
		zap.Bool("metrics", cfg.Metrics.Enabled),
		zap.Int("metrics_port", metricsPort))

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 10 * time.Second
	}

	// Handlers run LIFO: the HTTP server stops before the logger is flushed.
	signals.OnShutdown(func(ctx context.Context) error {
		if err := observability.ServerLogger.Sync(); err != nil {
			observability.ServerLogger.Debug("Logger sync returned error", zap.Error(err))
		}
		return nil
	})
	signals.OnShutdown(func(ctx context.Context) error {
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errwrap.Wrap(ctx, errwrap.CodeInternal, err, "server shutdown failed")
		}
		observability.ServerLogger.Info("HTTP server stopped gracefully")
		return nil
	})

	signals.OnReload(func(ctx context.Context) error {
		return reloadServerConfig(ctx, identity)
	})

	if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
		Window:  2 * time.Second,
		Message: "Press Ctrl+C again within 2 seconds to force quit",
	}); err != nil {
		logger.Warn("Failed to enable double-tap force quit", zap.Error(err))
	}

	errChan := make(chan error, 2)
	go func() {
		errChan <- srv.Start()
	}()
	go func() {
		if err := signals.Listen(ctx); err != nil {
			observability.ServerLogger.Error("Signal handler error", zap.Error(err))
			errChan <- err
		}
	}()

	if err := <-errChan; err != nil {
		return errwrap.Wrap(ctx, errwrap.CodeInternal, err, "server error")
	}
	return nil
}

// trackUptime publishes server uptime every interval until the returned
// stop func is called.
func trackUptime(startedAt time.Time, interval time.Duration) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case now := <-ticker.C:
				metrics.SetServerUptime(int64(now.Sub(startedAt).Seconds()))
			}
		}
	}()
	return func() { close(done) }
}

// reloadServerConfig re-reads configuration on SIGHUP. Only the log level is
// applied live; listener, store and provider changes need a restart.
func reloadServerConfig(ctx context.Context, identity *appid.Identity) error {
	observability.ServerLogger.Info("Received SIGHUP: reloading configuration")

	cfg, err := config.Load(ctx)
	if err != nil {
		observability.ServerLogger.Error("Config reload failed",
			zap.String("file", config.ConfigFileUsed()),
			zap.Error(err))
		return errwrap.Wrap(ctx, errwrap.CodeConfigInvalid, err, "config reload failed")
	}

	observability.InitServerLogger(identity.BinaryName, cfg.Logging.Level, identity.TelemetryNamespace)
	observability.ServerLogger.Info("Configuration reloaded",
		zap.String("file", config.ConfigFileUsed()),
		zap.String("log_level", cfg.Logging.Level))
	return nil
}

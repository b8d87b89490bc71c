package observability

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/fulmenhq/gofulmen/telemetry"
	"github.com/fulmenhq/gofulmen/telemetry/exporters"
)

// DefaultMetricsPort is used when the exporter's bound port cannot be read back.
const DefaultMetricsPort = 9090

var (
	// TelemetrySystem is the global telemetry system. Nil means metrics are
	// off and every metrics.Record* call is a no-op.
	TelemetrySystem *telemetry.System

	// PrometheusExporter serves the metrics that TelemetrySystem emits.
	PrometheusExporter *exporters.PrometheusExporter

	metricsPort        int
	metricsBearerToken string
)

// MetricsOptions configures the Prometheus exporter.
type MetricsOptions struct {
	// Namespace prefixes every metric, e.g. claimlens_claim_analyses_total.
	Namespace string

	// Port for the exporter listener. 0 picks a free port.
	Port int

	// BearerToken, when set, is required by the exporter's own listener.
	// The /metrics proxy on the API listener reads the exporter over
	// loopback and sends it.
	BearerToken string
}

// InitMetrics starts the Prometheus exporter and installs TelemetrySystem.
//
// All scrapes of the API's /metrics arrive through a single loopback proxy,
// so the exporter's per-client rate limit is disabled. Its request logging
// to stderr is silenced; the server logger covers HTTP traffic.
func InitMetrics(opts MetricsOptions) error {
	if opts.Namespace == "" {
		return errors.New("metrics namespace is required")
	}
	requested := opts.Port
	if requested < 0 {
		requested = 0
	}
	metricsPort = requested

	cfg := exporters.DefaultPrometheusConfig()
	cfg.Prefix = opts.Namespace
	cfg.Endpoint = fmt.Sprintf(":%d", requested)
	cfg.BearerToken = opts.BearerToken
	cfg.RateLimitPerMinute = 0
	cfg.QuietMode = true

	exporter := exporters.NewPrometheusExporterWithConfig(cfg)
	if err := exporter.Start(); err != nil {
		return err
	}

	if actual, err := resolvePort(exporter.GetAddr()); err == nil {
		metricsPort = actual
	} else if requested == 0 {
		metricsPort = DefaultMetricsPort
	}

	sys, err := telemetry.NewSystem(&telemetry.Config{
		Enabled: true,
		Emitter: exporter,
	})
	if err != nil {
		_ = exporter.Stop()
		return err
	}

	PrometheusExporter = exporter
	TelemetrySystem = sys
	metricsBearerToken = opts.BearerToken
	return nil
}

// StopMetrics stops the exporter and turns metrics back off.
func StopMetrics() error {
	exporter := PrometheusExporter
	PrometheusExporter = nil
	TelemetrySystem = nil
	metricsPort = 0
	metricsBearerToken = ""
	if exporter == nil {
		return nil
	}
	return exporter.Stop()
}

// GetMetricsPort returns the port the Prometheus exporter is listening on
func GetMetricsPort() int {
	return metricsPort
}

// MetricsBearerToken returns the token the exporter was started with.
func MetricsBearerToken() string {
	return metricsBearerToken
}

func resolvePort(addr string) (int, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(portStr)
}

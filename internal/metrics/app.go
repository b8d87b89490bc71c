package metrics

import (
	"time"

	"github.com/claimlens/claimlens/internal/observability"
)

// Analysis metrics
const (
	AnalysesTotal        = "claim_analyses_total"
	AnalysisDuration     = "claim_analysis_duration_ms"
	AnalysisScore        = "claim_analysis_score"
	AnalysisCacheLookups = "claim_analysis_cache_lookups_total"
	FeedItemsTotal       = "claim_feed_items_total"
)

// Server and health metrics
const (
	HealthCheckTotal    = "app_health_check_total"
	HealthCheckDuration = "app_health_check_duration_ms"
	ServerStartTime     = "app_server_start_time_seconds"
	ServerUptime        = "app_server_uptime_seconds"
)

// Analysis statuses used as the status label.
const (
	StatusSuccess     = "success"
	StatusConfigError = "config_error"
	StatusUpstream    = "upstream_error"
	StatusInvalid     = "invalid_input"
	StatusCached      = "cached"
)

// RecordAnalysis records one finished analysis. score is only emitted for
// successful and cached results.
func RecordAnalysis(provider string, status string, duration time.Duration, score int) {
	if observability.TelemetrySystem == nil {
		return
	}
	if provider == "" {
		provider = "unknown"
	}

	_ = observability.TelemetrySystem.Counter(
		AnalysesTotal,
		1,
		map[string]string{
			"provider": provider,
			"status":   status,
		},
	)

	if status == StatusCached {
		_ = observability.TelemetrySystem.Gauge(AnalysisScore, float64(score), map[string]string{"provider": provider})
		return
	}

	_ = observability.TelemetrySystem.Histogram(
		AnalysisDuration,
		duration,
		map[string]string{
			"provider": provider,
		},
	)
	if status == StatusSuccess {
		_ = observability.TelemetrySystem.Gauge(AnalysisScore, float64(score), map[string]string{"provider": provider})
	}
}

// RecordCacheLookup records a result cache hit or miss.
func RecordCacheLookup(hit bool) {
	if observability.TelemetrySystem == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	_ = observability.TelemetrySystem.Counter(AnalysisCacheLookups, 1, map[string]string{"result": result})
}

// RecordFeedItems records how many feed items were fetched for analysis.
func RecordFeedItems(count int) {
	if observability.TelemetrySystem == nil || count <= 0 {
		return
	}
	_ = observability.TelemetrySystem.Counter(FeedItemsTotal, float64(count), nil)
}

// RecordHealthCheck records a health check execution
func RecordHealthCheck(checkName string, healthy bool, duration time.Duration) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			HealthCheckTotal,
			1,
			map[string]string{
				"check":  checkName,
				"status": status,
			},
		)

		_ = observability.TelemetrySystem.Histogram(
			HealthCheckDuration,
			duration,
			map[string]string{
				"check": checkName,
			},
		)
	}
}

// SetServerStartTime records the server start time (Unix timestamp)
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(ServerStartTime, float64(timestamp), nil)
	}
}

// SetServerUptime records the server uptime in seconds
func SetServerUptime(seconds int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(ServerUptime, float64(seconds), nil)
	}
}

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Namespace for all metrics
	namespace = "garmentflow"
	// Subsystem for allocation engine metrics
	subsystem = "engine"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalEngineCollector is the singleton engine metrics collector
	// Set by SetGlobalEngineCollector() when metrics are enabled
	globalEngineCollector EngineMetricsRecorder

	// globalAPICollector is the singleton HTTP/directory metrics collector
	// Set by SetGlobalAPICollector() when metrics are enabled
	globalAPICollector APIMetricsRecorder
)

// EngineMetricsRecorder defines the interface for recording allocation events
// This interface is used by application code to record metrics
type EngineMetricsRecorder interface {
	RecordFabricReserved(batchID string, meters float64)
	RecordPiecesMoved(stage string, kind string, pieces int)
	RecordPayable(subcontractor string, pieces int, amount float64)
	RecordDispatchTransition(state string, shipments int)
}

// APIMetricsRecorder defines the interface for recording HTTP request metrics
type APIMetricsRecorder interface {
	RecordAPIRequest(method string, endpoint string, statusCode int, duration float64)
	RecordAPIRetry(method string, endpoint string, reason string)
	RecordRateLimitWait(method string, endpoint string, duration float64)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// Handler serves the registry in the Prometheus exposition format
func Handler() http.Handler {
	if Registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// SetGlobalEngineCollector sets the global engine metrics collector
func SetGlobalEngineCollector(collector EngineMetricsRecorder) {
	globalEngineCollector = collector
}

// RecordFabricReserved records roll length consumed by a cutting job
func RecordFabricReserved(batchID string, meters float64) {
	if globalEngineCollector != nil {
		globalEngineCollector.RecordFabricReserved(batchID, meters)
	}
}

// RecordPiecesMoved records pieces leaving a stage; kind is worker, stock, external or finished
func RecordPiecesMoved(stage string, kind string, pieces int) {
	if globalEngineCollector != nil && pieces > 0 {
		globalEngineCollector.RecordPiecesMoved(stage, kind, pieces)
	}
}

// RecordPayable records a subcontractor payable emitted on receipt
func RecordPayable(subcontractor string, pieces int, amount float64) {
	if globalEngineCollector != nil {
		globalEngineCollector.RecordPayable(subcontractor, pieces, amount)
	}
}

// RecordDispatchTransition records shipments moved to a dispatch state
func RecordDispatchTransition(state string, shipments int) {
	if globalEngineCollector != nil {
		globalEngineCollector.RecordDispatchTransition(state, shipments)
	}
}

// SetGlobalAPICollector sets the global API metrics collector
func SetGlobalAPICollector(collector APIMetricsRecorder) {
	globalAPICollector = collector
}

// RecordAPIRequest records an HTTP request completion globally
func RecordAPIRequest(method string, endpoint string, statusCode int, duration float64) {
	if globalAPICollector != nil {
		globalAPICollector.RecordAPIRequest(method, endpoint, statusCode, duration)
	}
}

// RecordAPIRetry records a retried outbound request globally
func RecordAPIRetry(method string, endpoint string, reason string) {
	if globalAPICollector != nil {
		globalAPICollector.RecordAPIRetry(method, endpoint, reason)
	}
}

// RecordRateLimitWait records time spent waiting for a rate limiter globally
func RecordRateLimitWait(method string, endpoint string, duration float64) {
	if globalAPICollector != nil {
		globalAPICollector.RecordRateLimitWait(method, endpoint, duration)
	}
}

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Layout Metrics
	LayoutRunsTotal        *prometheus.CounterVec
	LayoutDuration         prometheus.Histogram
	LayoutNodes            prometheus.Histogram
	LayoutCleanupPasses    prometheus.Histogram
	LayoutResidualOverlaps prometheus.Gauge

	// Render Metrics
	RenderDuration *prometheus.HistogramVec

	// Interaction Metrics
	PointerEventsTotal *prometheus.CounterVec
	VisibleNodes       prometheus.Gauge
	SelectedNodes      prometheus.Gauge

	// Graph Metrics
	CanonicalEdges           *prometheus.GaugeVec
	CanonicalizeDroppedTotal *prometheus.CounterVec
	GraphNodesTotal          prometheus.Gauge

	// Viewer session
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initLayoutMetrics()
	r.initRenderMetrics()
	r.initInteractionMetrics()
	r.initGraphMetrics()
	r.initSessionMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRenderMetrics() {
	r.RenderDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netgraph_render_duration_seconds",
			Help:    "Frame render duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
		[]string{"surface"},
	)
}

func (r *Registry) initInteractionMetrics() {
	r.PointerEventsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netgraph_pointer_events_total",
			Help: "Total number of pointer events handled by kind",
		},
		[]string{"kind"},
	)

	r.VisibleNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netgraph_visible_nodes",
			Help: "Nodes in the current visible subgraph",
		},
	)

	r.SelectedNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netgraph_selected_nodes",
			Help: "Nodes currently selected",
		},
	)
}

// initSessionMetrics covers the process behind an interactive view. The
// gauges are refreshed on the viewer's tick, not per frame.
func (r *Registry) initSessionMetrics() {
	r.UptimeSeconds = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netgraph_view_uptime_seconds",
			Help: "Seconds since the interactive view opened",
		},
	)

	r.GoRoutines = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netgraph_view_goroutines",
			Help: "Goroutines in the viewer process, including metrics and event publishers",
		},
	)

	r.MemoryAllocBytes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netgraph_view_heap_alloc_bytes",
			Help: "Heap bytes held by the viewer, dominated by the graph, positions and frame buffers",
		},
	)

	r.MemorySysBytes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netgraph_view_sys_bytes",
			Help: "Bytes the viewer process obtained from the OS",
		},
	)
}

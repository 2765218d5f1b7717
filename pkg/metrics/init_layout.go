package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initLayoutMetrics() {
	r.LayoutRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netgraph_layout_runs_total",
			Help: "Total number of layout runs by trigger",
		},
		[]string{"trigger"},
	)

	r.LayoutDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "netgraph_layout_duration_seconds",
			Help:    "Layout run duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		},
	)

	r.LayoutNodes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "netgraph_layout_nodes",
			Help:    "Number of nodes laid out per run",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	r.LayoutCleanupPasses = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "netgraph_layout_cleanup_passes",
			Help:    "Overlap cleanup passes run per layout",
			Buckets: []float64{1, 2, 4, 8, 12},
		},
	)

	r.LayoutResidualOverlaps = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netgraph_layout_residual_overlaps",
			Help: "Overlapping node pairs left after the most recent layout",
		},
	)
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGraphMetrics() {
	r.CanonicalEdges = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "netgraph_canonical_edges",
			Help: "Canonical edges in the loaded graph by mutuality weight",
		},
		[]string{"weight"},
	)

	r.CanonicalizeDroppedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netgraph_canonicalize_dropped_total",
			Help: "Raw relations dropped during canonicalisation by reason",
		},
		[]string{"reason"},
	)

	r.GraphNodesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netgraph_graph_nodes_total",
			Help: "Total number of nodes in the loaded graph",
		},
	)
}

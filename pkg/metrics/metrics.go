package metrics

import (
	"runtime"
	"strconv"
	"time"
)

// Layout triggers used as the trigger label.
const (
	TriggerInitial   = "initial"
	TriggerSelection = "selection"
	TriggerReshuffle = "reshuffle"
	TriggerResize    = "resize"
)

// RecordLayout records a finished layout run
func (r *Registry) RecordLayout(trigger string, duration time.Duration, nodes, cleanupPasses, residualOverlaps int) {
	r.LayoutRunsTotal.WithLabelValues(trigger).Inc()
	r.LayoutDuration.Observe(duration.Seconds())
	r.LayoutNodes.Observe(float64(nodes))
	r.LayoutCleanupPasses.Observe(float64(cleanupPasses))
	r.LayoutResidualOverlaps.Set(float64(residualOverlaps))
}

// RecordRender records one frame painted onto the named surface
func (r *Registry) RecordRender(surface string, duration time.Duration) {
	r.RenderDuration.WithLabelValues(surface).Observe(duration.Seconds())
}

// RecordPointerEvent counts a handled pointer event
func (r *Registry) RecordPointerEvent(kind string) {
	r.PointerEventsTotal.WithLabelValues(kind).Inc()
}

// UpdateSelection sets the visible and selected node gauges
func (r *Registry) UpdateSelection(visible, selected int) {
	r.VisibleNodes.Set(float64(visible))
	r.SelectedNodes.Set(float64(selected))
}

// RecordGraph records the shape of a freshly built graph
func (r *Registry) RecordGraph(nodes, oneSided, mutual, selfLoops, empty int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.GraphNodesTotal.Set(float64(nodes))
	r.CanonicalEdges.WithLabelValues(strconv.Itoa(1)).Set(float64(oneSided))
	r.CanonicalEdges.WithLabelValues(strconv.Itoa(2)).Set(float64(mutual))
	r.CanonicalizeDroppedTotal.WithLabelValues("self_loop").Add(float64(selfLoops))
	r.CanonicalizeDroppedTotal.WithLabelValues("empty_endpoint").Add(float64(empty))
}

// UpdateSystemMetrics refreshes the viewer session gauges
func (r *Registry) UpdateSystemMetrics(start time.Time) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	r.UptimeSeconds.Set(time.Since(start).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
	r.MemorySysBytes.Set(float64(m.Sys))
}

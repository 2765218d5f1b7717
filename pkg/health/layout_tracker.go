package health

import (
	"sync"
	"time"

	"github.com/dd0wney/cluso-netgraph/pkg/viewport"
	"github.com/dd0wney/cluso-netgraph/pkg/visualization"
)

// LayoutTracker records the outcome of the most recent layout run from
// controller events. The controller is single-threaded; the tracker is
// what the health endpoint reads instead.
type LayoutTracker struct {
	mu       sync.Mutex
	stats    visualization.Stats
	hasStats bool
	lastErr  string
	failures int
	at       time.Time
}

// Observe is a controller observer.
func (t *LayoutTracker) Observe(ev viewport.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev.Kind {
	case viewport.LayoutUpdated:
		if ev.Stats != nil {
			t.stats = *ev.Stats
			t.hasStats = true
		}
		t.lastErr = ""
		t.at = ev.At
	case viewport.LayoutFailed:
		t.lastErr = ev.Error
		t.failures++
		t.at = ev.At
	}
}

// Record seeds the tracker with a run that happened before it was
// subscribed, typically the controller's initial layout.
func (t *LayoutTracker) Record(stats visualization.Stats, at time.Time) {
	t.Observe(viewport.Event{Kind: viewport.LayoutUpdated, Stats: &stats, At: at})
}

// Check reports unhealthy after a failed run, degraded when the last run
// left overlapping nodes, and healthy otherwise.
func (t *LayoutTracker) Check() Check {
	t.mu.Lock()
	defer t.mu.Unlock()

	check := Check{
		Name: "layout",
		Details: map[string]any{
			"failures": t.failures,
		},
	}
	if !t.at.IsZero() {
		check.Details["last_run"] = t.at
	}
	if t.hasStats {
		check.Details["nodes"] = t.stats.Nodes
		check.Details["iterations"] = t.stats.Iterations
		check.Details["residual_overlaps"] = t.stats.ResidualOverlaps
	}

	switch {
	case t.lastErr != "":
		check.Status = StatusUnhealthy
		check.Message = t.lastErr
	case !t.hasStats:
		check.Status = StatusDegraded
		check.Message = "No layout observed yet"
	case t.stats.ResidualOverlaps > 0:
		check.Status = StatusDegraded
		check.Message = "Nodes still overlap after cleanup"
	default:
		check.Status = StatusHealthy
		check.Message = "Layout clear"
	}
	return check
}

// MemoryCheck creates a health check for memory usage
func MemoryCheck(getUsage func() (alloc, sys uint64)) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "memory",
			Details: make(map[string]any),
		}

		alloc, sys := getUsage()

		check.Details["alloc_bytes"] = alloc
		check.Details["sys_bytes"] = sys

		if sys > 0 && float64(alloc)/float64(sys) > 0.9 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		} else {
			check.Status = StatusHealthy
			check.Message = "Memory usage normal"
		}

		return check
	}
}

package viewport

import (
	"github.com/google/uuid"

	"github.com/dd0wney/cluso-netgraph/pkg/geometry"
	"github.com/dd0wney/cluso-netgraph/pkg/graph"
)

// Zoom limits used when none are configured.
const (
	DefaultMinZoom = 0.45
	DefaultMaxZoom = 2.6
)

// State is the session-scoped view: zoom, pan offset, selection and hover.
// A screen point s maps to world point (s - pan) / zoom.
type State struct {
	SessionID string
	Zoom      float64
	PanX      float64
	PanY      float64
	Selected  graph.IDSet
	Hovered   string

	minZoom float64
	maxZoom float64
}

// NewState returns an identity view with a fresh session id. Limits that
// are zero or inverted fall back to the defaults.
func NewState(minZoom, maxZoom float64) *State {
	if minZoom <= 0 || maxZoom <= 0 || minZoom > maxZoom {
		minZoom, maxZoom = DefaultMinZoom, DefaultMaxZoom
	}
	return &State{
		SessionID: uuid.New().String(),
		Zoom:      geometry.Clamp(1, minZoom, maxZoom),
		Selected:  graph.NewIDSet(),
		minZoom:   minZoom,
		maxZoom:   maxZoom,
	}
}

// ZoomLimits returns the clamp range applied by ZoomAt.
func (s State) ZoomLimits() (float64, float64) { return s.minZoom, s.maxZoom }

// ScreenToWorld maps a screen point into world space.
func (s State) ScreenToWorld(p geometry.Point) geometry.Point {
	return geometry.Point{X: (p.X - s.PanX) / s.Zoom, Y: (p.Y - s.PanY) / s.Zoom}
}

// WorldToScreen maps a world point onto the screen.
func (s State) WorldToScreen(p geometry.Point) geometry.Point {
	return geometry.Point{X: p.X*s.Zoom + s.PanX, Y: p.Y*s.Zoom + s.PanY}
}

// ZoomAt multiplies the zoom by factor, clamped to the limits, keeping the
// world point under anchor fixed on screen. It reports whether the zoom
// changed.
func (s *State) ZoomAt(factor float64, anchor geometry.Point) bool {
	if factor <= 0 {
		return false
	}
	world := s.ScreenToWorld(anchor)
	next := geometry.Clamp(s.Zoom*factor, s.minZoom, s.maxZoom)
	if next == s.Zoom {
		return false
	}
	s.Zoom = next
	s.PanX = anchor.X - world.X*next
	s.PanY = anchor.Y - world.Y*next
	return true
}

// PanBy shifts the view by a screen-space delta.
func (s *State) PanBy(dx, dy float64) {
	s.PanX += dx
	s.PanY += dy
}

// Reset restores zoom and pan. Selection and session id are kept.
func (s *State) Reset() {
	s.Zoom = geometry.Clamp(1, s.minZoom, s.maxZoom)
	s.PanX, s.PanY = 0, 0
}

// Clone returns a deep copy.
func (s State) Clone() State {
	s.Selected = s.Selected.Clone()
	return s
}

// IsSelected reports whether id is in the selection.
func (s State) IsSelected(id string) bool { return s.Selected.Has(id) }

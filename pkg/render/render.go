package render

import (
	"time"

	"github.com/dd0wney/cluso-netgraph/pkg/geometry"
	"github.com/dd0wney/cluso-netgraph/pkg/graph"
	"github.com/dd0wney/cluso-netgraph/pkg/logging"
	"github.com/dd0wney/cluso-netgraph/pkg/metrics"
	"github.com/dd0wney/cluso-netgraph/pkg/viewport"
)

// DefaultLabelZoomThreshold is the zoom below which only selected and
// hovered nodes keep their labels.
const DefaultLabelZoomThreshold = 0.7

// Scene is everything a frame is painted from.
type Scene struct {
	Subgraph  *graph.Subgraph
	Positions map[string]geometry.Point
	View      viewport.State
}

// SceneFrom adapts a controller snapshot.
func SceneFrom(s viewport.Snapshot) Scene {
	return Scene{Subgraph: s.Subgraph, Positions: s.Positions, View: s.View}
}

// Options configures a Renderer
type Options struct {
	LabelZoomThreshold float64
	Fit                geometry.FitOptions // font bounds at zoom 1
	Theme              Theme
}

// DefaultOptions returns the default renderer options.
func DefaultOptions() Options {
	return Options{
		LabelZoomThreshold: DefaultLabelZoomThreshold,
		Fit:                geometry.DefaultFitOptions(),
		Theme:              DefaultTheme(),
	}
}

// Renderer paints scenes onto surfaces.
type Renderer struct {
	opts    Options
	metrics *metrics.Registry
	logger  logging.Logger
}

// NewRenderer creates a renderer. metrics may be nil.
func NewRenderer(opts Options, reg *metrics.Registry, logger logging.Logger) *Renderer {
	if opts.Fit.MaxFontSize <= 0 {
		opts.Fit = geometry.DefaultFitOptions()
	}
	if len(opts.Theme.Palette) == 0 {
		opts.Theme = DefaultTheme()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Renderer{opts: opts, metrics: reg, logger: logger.With(logging.Component("render"))}
}

// Render paints scene onto surface with the default options.
func Render(surface Surface, scene Scene) {
	NewRenderer(DefaultOptions(), nil, nil).Render(surface, scene)
}

// node is a visible node resolved to its screen outline.
type node struct {
	graph.Node
	world  geometry.Shape
	screen geometry.Shape
}

// Render clears surface and paints edges, then every node shape, then every
// label, so no label is covered by a later shape. Nodes without a position
// are skipped.
func (r *Renderer) Render(surface Surface, scene Scene) {
	start := time.Now()
	theme := r.opts.Theme
	view := scene.View
	if view.Zoom <= 0 {
		view.Zoom = 1
	}

	surface.Clear(theme.Background)
	if scene.Subgraph.Len() == 0 {
		r.observe(surface, start)
		return
	}

	nodes := make([]node, 0, scene.Subgraph.Len())
	for _, n := range scene.Subgraph.Nodes {
		pos, ok := scene.Positions[n.ID]
		if !ok {
			continue
		}
		world := n.Shape(pos)
		nodes = append(nodes, node{
			Node:   n,
			world:  world,
			screen: world.Scaled(view.WorldToScreen(pos), view.Zoom),
		})
	}

	for _, e := range scene.Subgraph.Edges {
		a, okA := scene.Positions[e.A]
		b, okB := scene.Positions[e.B]
		if !okA || !okB {
			continue
		}
		stroke := theme.EdgeOneSided
		if e.Mutual() {
			stroke = theme.EdgeMutual
		}
		stroke.Width *= view.Zoom
		surface.Line(view.WorldToScreen(a), view.WorldToScreen(b), stroke)
	}

	for _, n := range nodes {
		fill := theme.GroupColor(n.Group)
		stroke := theme.NodeStroke
		switch {
		case view.IsSelected(n.ID):
			stroke = theme.SelectedStroke
		case view.Hovered == n.ID:
			stroke = theme.HoverStroke
		}
		stroke.Width *= view.Zoom

		s := n.screen
		switch s.Kind {
		case geometry.ShapeCircle:
			surface.Circle(s.Center, s.Radius, fill, stroke)
		case geometry.ShapeRoundedRect:
			surface.RoundedRect(s.Bounds(), s.Corner, fill, stroke)
		}
	}

	m := surface.Measurer()
	fit := r.opts.Fit
	fit.MaxFontSize *= view.Zoom
	fit.MinFontSize *= view.Zoom
	fit.Step *= view.Zoom
	for _, n := range nodes {
		if !r.LabelVisible(view, n.ID) {
			continue
		}
		box := n.screen.Interior()
		label := geometry.FitLabel(n.Label, box, m, fit)
		y := n.screen.Center.Y - label.BlockHeight()/2
		for _, line := range label.Lines {
			x := n.screen.Center.X - m.Width(line, label.FontSize)/2
			surface.Text(geometry.Point{X: x, Y: y}, line, label.FontSize, theme.Label)
			y += label.LineHeight
		}
	}

	r.observe(surface, start)
}

// LabelVisible reports whether the label of id is painted at the view's zoom.
func (r *Renderer) LabelVisible(view viewport.State, id string) bool {
	if view.Zoom >= r.opts.LabelZoomThreshold {
		return true
	}
	return view.IsSelected(id) || view.Hovered == id
}

func (r *Renderer) observe(surface Surface, start time.Time) {
	if r.metrics != nil {
		r.metrics.RecordRender(surfaceName(surface), time.Since(start))
	}
}

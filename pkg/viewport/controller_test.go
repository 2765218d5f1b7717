package viewport

import (
	"context"
	"errors"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-netgraph/pkg/geometry"
	"github.com/dd0wney/cluso-netgraph/pkg/graph"
	"github.com/dd0wney/cluso-netgraph/pkg/metrics"
	"github.com/dd0wney/cluso-netgraph/pkg/visualization"
)

// rowLayout places nodes on a horizontal row 150px apart and records the
// seeds it was asked to use.
type rowLayout struct {
	seeds    []int64
	failFrom int // fail every run from this index on; 0 never fails
}

func (l *rowLayout) Run(_ context.Context, req visualization.Request) (*visualization.Result, error) {
	if l.failFrom > 0 && len(l.seeds) >= l.failFrom {
		return nil, errors.New("layout unavailable")
	}
	l.seeds = append(l.seeds, req.Seed)
	res := &visualization.Result{
		Positions: make(map[string]visualization.Position, req.Subgraph.Len()),
		Stats:     visualization.Stats{Nodes: req.Subgraph.Len(), Edges: len(req.Subgraph.Edges), Seed: req.Seed},
	}
	for i, n := range req.Subgraph.Nodes {
		res.Positions[n.ID] = geometry.Point{X: 100 + 150*float64(i), Y: 300}
	}
	return res, nil
}

func scenarioGraph() *graph.Graph {
	return graph.BuildGraph(
		[]graph.Entity{{ID: "A", Label: "Alpha"}, {ID: "B", Label: "Bravo"}, {ID: "C", Label: "Charlie"}},
		[]graph.RawRelation{{Source: "A", Target: "B"}, {Source: "B", Target: "A"}, {Source: "B", Target: "C"}},
		nil, nil,
	)
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Seed = 42
	return opts
}

func newTestController(t *testing.T, g *graph.Graph, layout visualization.Layout, options ...Option) *Controller {
	t.Helper()
	c, err := NewController(context.Background(), g, layout, testOptions(), options...)
	require.NoError(t, err)
	return c
}

func click(c *Controller, p geometry.Point) {
	c.OnPointerDown(p)
	c.OnPointerUp(p)
}

func pos(t *testing.T, c *Controller, id string) geometry.Point {
	t.Helper()
	p, ok := c.Position(id)
	require.True(t, ok, "no position for %s", id)
	return p
}

func TestNewController_RejectsEmptyCanvas(t *testing.T) {
	opts := DefaultOptions()
	opts.Width = 0

	_, err := NewController(context.Background(), scenarioGraph(), &rowLayout{}, opts)
	assert.ErrorIs(t, err, ErrEmptyCanvas)
}

func TestNewController_InitialLayout(t *testing.T) {
	layout := &rowLayout{}
	c := newTestController(t, scenarioGraph(), layout)

	assert.Len(t, layout.seeds, 1)
	assert.NotZero(t, layout.seeds[0])
	assert.Equal(t, 3, c.Visible().Len())
	assert.Equal(t, Idle, c.Mode())
	assert.Equal(t, geometry.Point{X: 100, Y: 300}, pos(t, c, "A"))
	assert.Equal(t, 3, c.LastStats().Nodes)
}

func TestNewController_InitialLayoutError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewController(ctx, scenarioGraph(), nil, testOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestController_ClickTogglesSelection(t *testing.T) {
	layout := &rowLayout{}
	c := newTestController(t, scenarioGraph(), layout)

	var events []Event
	c.Subscribe(func(e Event) { events = append(events, e) })

	click(c, geometry.Point{X: 100, Y: 300})

	state := c.State()
	assert.True(t, state.IsSelected("A"))
	assert.Equal(t, []string{"A", "B"}, c.Visible().IDs(), "C is two hops from A")

	// A fresh seed was drawn for the new layout pass
	require.Len(t, layout.seeds, 2)
	assert.NotEqual(t, layout.seeds[0], layout.seeds[1])

	// Selection never touches zoom or pan
	assert.Equal(t, 1.0, state.Zoom)
	assert.Zero(t, state.PanX)
	assert.Zero(t, state.PanY)

	// A is brought to the canvas centre
	assert.Equal(t, geometry.Point{X: 600, Y: 400}, pos(t, c, "A"))

	require.Len(t, events, 2)
	assert.Equal(t, LayoutUpdated, events[0].Kind)
	assert.Equal(t, metrics.TriggerSelection, events[0].Trigger)
	assert.Equal(t, SelectionChanged, events[1].Kind)
	assert.Equal(t, "A", events[1].NodeID)
	assert.Equal(t, []string{"A"}, events[1].Selected)
	assert.Equal(t, state.SessionID, events[1].SessionID)

	// Clicking A again deselects it and restores the full graph
	click(c, geometry.Point{X: 600, Y: 400})
	assert.False(t, c.State().IsSelected("A"))
	assert.Equal(t, 3, c.Visible().Len())
	assert.Len(t, layout.seeds, 3)
	assert.Equal(t, geometry.Point{X: 100, Y: 300}, pos(t, c, "A"))
}

func TestController_ClickWithinSlop(t *testing.T) {
	c := newTestController(t, scenarioGraph(), &rowLayout{})

	c.OnPointerDown(geometry.Point{X: 100, Y: 300})
	c.OnPointerMove(geometry.Point{X: 102, Y: 302})
	c.OnPointerUp(geometry.Point{X: 103, Y: 301})

	assert.True(t, c.State().IsSelected("A"))
}

func TestController_DragIsNotClick(t *testing.T) {
	layout := &rowLayout{}
	c := newTestController(t, scenarioGraph(), layout)

	c.OnPointerDown(geometry.Point{X: 100, Y: 300})
	assert.Equal(t, DraggingNode, c.Mode())
	c.OnPointerMove(geometry.Point{X: 100, Y: 500})
	c.OnPointerUp(geometry.Point{X: 100, Y: 500})

	assert.Equal(t, Idle, c.Mode())
	assert.Empty(t, c.State().Selected)
	assert.Len(t, layout.seeds, 1, "dragging never triggers a layout")
	assert.Equal(t, geometry.Point{X: 100, Y: 500}, pos(t, c, "A"))
}

func TestController_DragNeverDropsInsideNeighbour(t *testing.T) {
	g := graph.BuildGraph([]graph.Entity{{ID: "P", Label: "P"}, {ID: "Q", Label: "Q"}}, nil, nil, nil)
	c := newTestController(t, g, &rowLayout{})

	// P at (100,300), Q at (250,300); drag P almost onto Q
	c.OnPointerDown(geometry.Point{X: 100, Y: 300})
	c.OnPointerMove(geometry.Point{X: 240, Y: 300})

	p, q := pos(t, c, "P"), pos(t, c, "Q")
	minD := geometry.NodeSize("P")/2 + geometry.NodeSize("Q")/2 + c.opts.Clearance
	assert.GreaterOrEqual(t, p.Dist(q), minD-1e-9)
	assert.InDelta(t, 250-minD, p.X, 1e-9)

	c.OnPointerUp(geometry.Point{X: 240, Y: 300})
	assert.Equal(t, geometry.Point{X: 250, Y: 300}, pos(t, c, "Q"), "obstacles do not move")
}

func TestController_PanOnEmptySpace(t *testing.T) {
	c := newTestController(t, scenarioGraph(), &rowLayout{})

	c.OnPointerDown(geometry.Point{X: 600, Y: 700})
	assert.Equal(t, Panning, c.Mode())
	c.OnPointerMove(geometry.Point{X: 630, Y: 710})
	c.OnPointerMove(geometry.Point{X: 650, Y: 720})
	c.OnPointerUp(geometry.Point{X: 650, Y: 720})

	state := c.State()
	assert.Equal(t, Idle, c.Mode())
	assert.Equal(t, 50.0, state.PanX)
	assert.Equal(t, 20.0, state.PanY)
	assert.Empty(t, state.Selected)

	// Hit-testing follows the pan
	click(c, geometry.Point{X: 150, Y: 320})
	assert.True(t, c.State().IsSelected("A"))
}

func TestController_WheelZoomAnchorsOnCursor(t *testing.T) {
	c := newTestController(t, scenarioGraph(), &rowLayout{})
	cursor := geometry.Point{X: 300, Y: 200}
	state := c.State()
	world := state.ScreenToWorld(cursor)

	c.OnWheel(cursor, -200)

	state = c.State()
	assert.Greater(t, state.Zoom, 1.0)
	after := state.WorldToScreen(world)
	assert.InDelta(t, cursor.X, after.X, 1e-9)
	assert.InDelta(t, cursor.Y, after.Y, 1e-9)

	c.OnWheel(cursor, -1e4)
	assert.Equal(t, DefaultMaxZoom, c.State().Zoom)
}

func TestController_HoverTracking(t *testing.T) {
	c := newTestController(t, scenarioGraph(), &rowLayout{})

	var hovers []string
	c.Subscribe(func(e Event) {
		if e.Kind == HoverChanged {
			hovers = append(hovers, e.NodeID)
		}
	})

	c.OnPointerMove(geometry.Point{X: 250, Y: 300})
	c.OnPointerMove(geometry.Point{X: 252, Y: 301})
	c.OnPointerMove(geometry.Point{X: 250, Y: 700})

	assert.Equal(t, []string{"B", ""}, hovers)
	assert.Empty(t, c.State().Hovered)
}

func TestController_HoverClearedWhenHidden(t *testing.T) {
	c := newTestController(t, scenarioGraph(), &rowLayout{})

	c.OnPointerMove(geometry.Point{X: 400, Y: 300})
	assert.Equal(t, "C", c.State().Hovered)

	c.ToggleSelection("A")
	assert.Empty(t, c.State().Hovered)
}

func TestController_Unsubscribe(t *testing.T) {
	c := newTestController(t, scenarioGraph(), &rowLayout{})

	count := 0
	unsubscribe := c.Subscribe(func(Event) { count++ })
	c.ResetView()
	unsubscribe()
	c.ResetView()

	assert.Equal(t, 1, count)
}

func TestController_ResetViewKeepsSelection(t *testing.T) {
	c := newTestController(t, scenarioGraph(), &rowLayout{})
	c.ToggleSelection("B")
	c.OnWheel(geometry.Point{X: 10, Y: 10}, -300)
	c.PanBy(40, 40)

	var kinds []EventKind
	c.Subscribe(func(e Event) { kinds = append(kinds, e.Kind) })
	c.ResetView()

	state := c.State()
	assert.Equal(t, 1.0, state.Zoom)
	assert.Zero(t, state.PanX)
	assert.True(t, state.IsSelected("B"))
	assert.Equal(t, []EventKind{ViewReset}, kinds)
}

func TestController_ClearSelection(t *testing.T) {
	layout := &rowLayout{}
	c := newTestController(t, scenarioGraph(), layout)

	c.ClearSelection()
	assert.Len(t, layout.seeds, 1, "nothing to clear")

	c.ToggleSelection("C")
	assert.Equal(t, []string{"B", "C"}, c.Visible().IDs())

	c.ClearSelection()
	assert.Empty(t, c.State().Selected)
	assert.Equal(t, 3, c.Visible().Len())
	assert.Len(t, layout.seeds, 3)
}

func TestController_ToggleUnknownID(t *testing.T) {
	layout := &rowLayout{}
	c := newTestController(t, scenarioGraph(), layout)

	assert.False(t, c.ToggleSelection("nobody"))
	assert.Empty(t, c.State().Selected)
	assert.Len(t, layout.seeds, 1)
}

func TestController_ReshuffleKeepsSelection(t *testing.T) {
	layout := &rowLayout{}
	c := newTestController(t, scenarioGraph(), layout)
	c.ToggleSelection("A")

	require.NoError(t, c.Reshuffle())
	assert.Len(t, layout.seeds, 3)
	assert.True(t, c.State().IsSelected("A"))
	assert.Equal(t, 2, c.Visible().Len())
}

func TestController_SetCanvasSize(t *testing.T) {
	layout := &rowLayout{}
	c := newTestController(t, scenarioGraph(), layout)

	require.NoError(t, c.SetCanvasSize(1200, 800))
	assert.Len(t, layout.seeds, 1, "same size is a no-op")

	require.NoError(t, c.SetCanvasSize(640, 480))
	assert.Len(t, layout.seeds, 2)
	w, h := c.CanvasSize()
	assert.Equal(t, 640.0, w)
	assert.Equal(t, 480.0, h)

	assert.ErrorIs(t, c.SetCanvasSize(0, 10), ErrEmptyCanvas)
}

func TestController_LayoutFailureKeepsPositions(t *testing.T) {
	layout := &rowLayout{failFrom: 1}
	c := newTestController(t, scenarioGraph(), layout)

	var kinds []EventKind
	c.Subscribe(func(e Event) { kinds = append(kinds, e.Kind) })

	assert.True(t, c.ToggleSelection("A"))
	assert.Equal(t, geometry.Point{X: 100, Y: 300}, pos(t, c, "A"), "no centering without a fresh layout")
	assert.Equal(t, []EventKind{LayoutFailed, SelectionChanged}, kinds)
}

func TestController_BringToCenterClearsNeighbour(t *testing.T) {
	g := graph.BuildGraph([]graph.Entity{{ID: "P", Label: "P"}, {ID: "Q", Label: "Q"}}, nil, nil, nil)
	c := newTestController(t, g, &rowLayout{})
	require.NoError(t, c.SetCanvasSize(500, 600))

	// Q sits at (250,300), the canvas centre
	c.BringToCenter("P")

	p, q := pos(t, c, "P"), pos(t, c, "Q")
	assert.Equal(t, geometry.Point{X: 250, Y: 300}, p)
	minD := geometry.NodeSize("P")/2 + geometry.NodeSize("Q")/2 + c.opts.Clearance
	assert.GreaterOrEqual(t, p.Dist(q), minD-1e-9)
}

func TestController_BringToCenterFollowsView(t *testing.T) {
	c := newTestController(t, scenarioGraph(), &rowLayout{})
	c.PanBy(100, -50)
	c.ZoomAt(2, geometry.Point{})

	c.BringToCenter("C")

	state := c.State()
	screen := state.WorldToScreen(pos(t, c, "C"))
	assert.InDelta(t, 600, screen.X, 1e-9)
	assert.InDelta(t, 400, screen.Y, 1e-9)
}

func TestController_Snapshot(t *testing.T) {
	c := newTestController(t, scenarioGraph(), &rowLayout{})
	c.ToggleSelection("A")

	snap := c.Snapshot()
	assert.Len(t, snap.Positions, 2)
	assert.Equal(t, 1200.0, snap.Width)
	assert.True(t, snap.View.IsSelected("A"))

	// Snapshots are copies
	snap.Positions["A"] = geometry.Point{}
	snap.View.Selected.Add("C")
	assert.Equal(t, geometry.Point{X: 600, Y: 400}, pos(t, c, "A"))
	assert.False(t, c.State().IsSelected("C"))
}

func TestController_RecordsMetrics(t *testing.T) {
	reg := metrics.NewRegistry()
	c := newTestController(t, scenarioGraph(), &rowLayout{}, WithMetrics(reg))

	click(c, geometry.Point{X: 100, Y: 300})

	var metric dto.Metric
	require.NoError(t, reg.PointerEventsTotal.WithLabelValues("down").Write(&metric))
	assert.Equal(t, 1.0, metric.Counter.GetValue())

	require.NoError(t, reg.LayoutRunsTotal.WithLabelValues(metrics.TriggerInitial).Write(&metric))
	assert.Equal(t, 1.0, metric.Counter.GetValue())

	require.NoError(t, reg.LayoutRunsTotal.WithLabelValues(metrics.TriggerSelection).Write(&metric))
	assert.Equal(t, 1.0, metric.Counter.GetValue())

	metric.Reset()
	require.NoError(t, reg.VisibleNodes.Write(&metric))
	assert.Equal(t, 2.0, metric.Gauge.GetValue())
}

func TestController_WithForceLayout(t *testing.T) {
	c := newTestController(t, scenarioGraph(), nil)

	a := pos(t, c, "A")
	screen := c.State().WorldToScreen(a)
	click(c, screen)

	assert.True(t, c.State().IsSelected("A"))
	assert.Equal(t, geometry.Point{X: 600, Y: 400}, pos(t, c, "A"))

	b := pos(t, c, "B")
	minD := geometry.NodeSize("Alpha")/2 + geometry.NodeSize("Bravo")/2
	assert.GreaterOrEqual(t, b.Dist(pos(t, c, "A")), minD)
}

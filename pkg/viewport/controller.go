package viewport

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/dd0wney/cluso-netgraph/pkg/geometry"
	"github.com/dd0wney/cluso-netgraph/pkg/graph"
	"github.com/dd0wney/cluso-netgraph/pkg/logging"
	"github.com/dd0wney/cluso-netgraph/pkg/metrics"
	"github.com/dd0wney/cluso-netgraph/pkg/visualization"
)

// ErrEmptyCanvas is returned when a canvas has no drawable area.
var ErrEmptyCanvas = errors.New("viewport: canvas has no area")

// Mode is the pointer state.
type Mode int

const (
	Idle Mode = iota
	Panning
	DraggingNode
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Panning:
		return "panning"
	case DraggingNode:
		return "dragging"
	default:
		return "unknown"
	}
}

// Options configures a Controller
type Options struct {
	Width            float64 // Canvas width in pixels
	Height           float64 // Canvas height in pixels
	MinZoom          float64
	MaxZoom          float64
	WheelSensitivity float64       // zoom factor per wheel unit is exp(-delta*sensitivity)
	ClickSlop        float64       // max pointer travel, in pixels, for a press to count as a click
	RelaxPasses      int           // ripple passes after bring-to-center
	Clearance        float64       // gap kept between outlines when dragging and centering
	Seed             int64         // seeds the per-layout seed source; 0 is time-based
	LayoutTimeout    time.Duration // 0 means no deadline
}

// DefaultOptions returns the interactive defaults.
func DefaultOptions() Options {
	return Options{
		Width:            1200,
		Height:           800,
		MinZoom:          DefaultMinZoom,
		MaxZoom:          DefaultMaxZoom,
		WheelSensitivity: 0.0015,
		ClickSlop:        4,
		RelaxPasses:      6,
		Clearance:        14,
	}
}

// Option customises a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithMetrics records layout runs and pointer events into r.
func WithMetrics(r *metrics.Registry) Option {
	return func(c *Controller) { c.metrics = r }
}

// Controller owns the view state and node positions for one session and
// turns pointer input into pans, zooms, drags and selection changes. It is
// the only writer of either; readers take a Snapshot. A Controller is not
// safe for concurrent use.
type Controller struct {
	opts   Options
	graph  *graph.Graph
	layout visualization.Layout

	state     *State
	visible   *graph.Subgraph
	positions map[string]geometry.Point
	lastStats visualization.Stats

	mode       Mode
	press      geometry.Point
	last       geometry.Point
	moved      bool
	dragID     string
	dragOffset geometry.Point

	rng     *rand.Rand
	obs     observers
	logger  logging.Logger
	metrics *metrics.Registry
}

// NewController runs the initial layout of the full graph and returns a
// controller ready for input.
func NewController(ctx context.Context, g *graph.Graph, layout visualization.Layout, opts Options, options ...Option) (*Controller, error) {
	d := DefaultOptions()
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, ErrEmptyCanvas
	}
	if opts.WheelSensitivity <= 0 {
		opts.WheelSensitivity = d.WheelSensitivity
	}
	if opts.ClickSlop <= 0 {
		opts.ClickSlop = d.ClickSlop
	}
	if opts.RelaxPasses <= 0 {
		opts.RelaxPasses = d.RelaxPasses
	}
	if opts.Clearance <= 0 {
		opts.Clearance = d.Clearance
	}
	if g == nil {
		g = graph.BuildGraph(nil, nil, nil, nil)
	}
	if layout == nil {
		layout = visualization.NewForceDirectedLayout(visualization.LayoutConfig{Width: opts.Width, Height: opts.Height})
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	c := &Controller{
		opts:      opts,
		graph:     g,
		layout:    layout,
		state:     NewState(opts.MinZoom, opts.MaxZoom),
		positions: make(map[string]geometry.Point),
		rng:       rand.New(rand.NewSource(seed)),
		logger:    logging.NewNopLogger(),
	}
	for _, o := range options {
		o(c)
	}
	c.logger = c.logger.With(logging.Component("viewport"), logging.Session(c.state.SessionID))

	c.visible = g.Full()
	if err := c.relayout(ctx, metrics.TriggerInitial); err != nil {
		return nil, err
	}
	c.logger.Info("session started",
		logging.NodeCount(len(g.Nodes)),
		logging.EdgeCount(len(g.Edges)),
		logging.String("mode", g.Report.Mode.String()),
	)
	return c, nil
}

// Subscribe registers fn for every event. The returned function removes it.
func (c *Controller) Subscribe(fn func(Event)) func() {
	return c.obs.add(fn)
}

// OnPointerDown starts a drag when p hits a node and a pan otherwise.
func (c *Controller) OnPointerDown(p geometry.Point) {
	c.record("down")
	c.press, c.last, c.moved = p, p, false

	world := c.state.ScreenToWorld(p)
	if id, ok := HitTest(world, c.shapes()); ok {
		c.mode = DraggingNode
		c.dragID = id
		c.dragOffset = c.positions[id].Sub(world)
		return
	}
	c.mode = Panning
}

// OnPointerMove pans, drags or tracks hover depending on the pointer state.
func (c *Controller) OnPointerMove(p geometry.Point) {
	c.record("move")
	if c.mode != Idle && p.Dist(c.press) > c.opts.ClickSlop {
		c.moved = true
	}

	switch c.mode {
	case Panning:
		c.state.PanBy(p.X-c.last.X, p.Y-c.last.Y)
	case DraggingNode:
		// Under the slop the press may still become a click
		if c.moved {
			c.dragTo(p)
		}
	case Idle:
		c.updateHover(p)
	}
	c.last = p
}

// OnPointerUp ends any pan or drag. A press and release on a node that
// stayed within the click slop toggles its selection.
func (c *Controller) OnPointerUp(p geometry.Point) {
	c.record("up")
	mode, id := c.mode, c.dragID
	clicked := !c.moved && p.Dist(c.press) <= c.opts.ClickSlop

	c.mode, c.dragID, c.moved = Idle, "", false
	c.last = p

	if mode == DraggingNode && clicked {
		c.ToggleSelection(id)
	}
}

// OnWheel zooms around p. Negative deltaY zooms in.
func (c *Controller) OnWheel(p geometry.Point, deltaY float64) {
	c.record("wheel")
	c.state.ZoomAt(math.Exp(-deltaY*c.opts.WheelSensitivity), p)
}

// ZoomAt applies a zoom factor anchored on the screen point p.
func (c *Controller) ZoomAt(factor float64, p geometry.Point) bool {
	return c.state.ZoomAt(factor, p)
}

// PanBy shifts the view by a screen-space delta.
func (c *Controller) PanBy(dx, dy float64) {
	c.state.PanBy(dx, dy)
}

// ToggleSelection flips id in the selection, lays out the new visible
// subgraph with a fresh seed and, when id became selected, brings it to the
// centre of the canvas. Zoom and pan are untouched. Unknown ids are
// ignored. It reports whether id is selected afterwards.
func (c *Controller) ToggleSelection(id string) bool {
	if _, ok := c.graph.Node(id); !ok {
		return false
	}

	selected := c.state.Selected.Toggle(id)
	c.refreshVisible()
	if err := c.relayout(context.Background(), metrics.TriggerSelection); err == nil && selected {
		c.BringToCenter(id)
	}

	c.logger.Info("selection changed",
		logging.EntityID(id),
		logging.Bool("selected", selected),
		logging.Int("selection_size", len(c.state.Selected)),
		logging.NodeCount(c.visible.Len()),
	)
	c.emit(Event{Kind: SelectionChanged, NodeID: id})
	return selected
}

// ClearSelection empties the selection and lays out the full graph.
func (c *Controller) ClearSelection() {
	if len(c.state.Selected) == 0 {
		return
	}
	c.state.Selected = graph.NewIDSet()
	c.refreshVisible()
	_ = c.relayout(context.Background(), metrics.TriggerSelection)

	c.logger.Info("selection cleared", logging.NodeCount(c.visible.Len()))
	c.emit(Event{Kind: SelectionChanged})
}

// Reshuffle lays out the current visible subgraph again with a fresh seed.
func (c *Controller) Reshuffle() error {
	return c.relayout(context.Background(), metrics.TriggerReshuffle)
}

// ResetView restores zoom and pan. Selection is kept.
func (c *Controller) ResetView() {
	c.state.Reset()
	c.logger.Debug("view reset")
	c.emit(Event{Kind: ViewReset})
}

// SetCanvasSize changes the canvas and lays out again when it differs.
func (c *Controller) SetCanvasSize(width, height float64) error {
	if width <= 0 || height <= 0 {
		return ErrEmptyCanvas
	}
	if width == c.opts.Width && height == c.opts.Height {
		return nil
	}
	c.opts.Width, c.opts.Height = width, height
	return c.relayout(context.Background(), metrics.TriggerResize)
}

// BringToCenter moves id to the world point under the canvas centre, pushes
// every other visible node off it once, then ripples the displacement for
// at most RelaxPasses passes. Saturated regions keep residual overlap.
func (c *Controller) BringToCenter(id string) {
	if _, ok := c.positions[id]; !ok || !c.visible.Contains(id) {
		return
	}

	ids, bodies := c.bodies()
	pinned := make([]bool, len(ids))
	pin := -1
	for i, other := range ids {
		if other == id {
			pin = i
			break
		}
	}
	if pin < 0 {
		return
	}
	pinned[pin] = true
	bodies[pin].Center = c.state.ScreenToWorld(geometry.Point{X: c.opts.Width / 2, Y: c.opts.Height / 2})

	anchor := []visualization.Body{bodies[pin]}
	for i := range bodies {
		if i != pin {
			bodies[i].Center = visualization.PushOut(bodies[i], anchor, c.opts.Clearance)
		}
	}
	passes := visualization.Relax(bodies, pinned, c.opts.Clearance, c.opts.RelaxPasses)

	for i, other := range ids {
		c.positions[other] = bodies[i].Center
	}
	c.logger.Debug("node centred", logging.EntityID(id), logging.Int("relax_passes", passes))
}

// Mode returns the pointer state.
func (c *Controller) Mode() Mode { return c.mode }

// State returns a copy of the view state.
func (c *Controller) State() State { return c.state.Clone() }

// Visible returns the current visible subgraph. It must not be modified.
func (c *Controller) Visible() *graph.Subgraph { return c.visible }

// Graph returns the full graph.
func (c *Controller) Graph() *graph.Graph { return c.graph }

// Position returns the world position of id.
func (c *Controller) Position(id string) (geometry.Point, bool) {
	p, ok := c.positions[id]
	return p, ok
}

// LastStats returns the statistics of the most recent layout run.
func (c *Controller) LastStats() visualization.Stats { return c.lastStats }

// CanvasSize returns the canvas dimensions.
func (c *Controller) CanvasSize() (float64, float64) { return c.opts.Width, c.opts.Height }

// Snapshot is a read-only copy of everything needed to paint a frame.
type Snapshot struct {
	View      State
	Subgraph  *graph.Subgraph
	Positions map[string]geometry.Point
	Width     float64
	Height    float64
}

// Snapshot copies the current view, visible subgraph and positions.
func (c *Controller) Snapshot() Snapshot {
	positions := make(map[string]geometry.Point, c.visible.Len())
	for _, id := range c.visible.IDs() {
		if p, ok := c.positions[id]; ok {
			positions[id] = p
		}
	}
	return Snapshot{
		View:      c.state.Clone(),
		Subgraph:  c.visible,
		Positions: positions,
		Width:     c.opts.Width,
		Height:    c.opts.Height,
	}
}

func (c *Controller) relayout(ctx context.Context, trigger string) error {
	if c.opts.LayoutTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.LayoutTimeout)
		defer cancel()
	}

	seed := c.rng.Int63()
	if seed == 0 {
		seed = 1
	}

	start := time.Now()
	res, err := c.layout.Run(ctx, visualization.Request{
		Subgraph: c.visible,
		Width:    c.opts.Width,
		Height:   c.opts.Height,
		Seed:     seed,
	})
	if err != nil {
		c.logger.Warn("layout failed, keeping previous positions", logging.Trigger(trigger), logging.Error(err))
		c.emit(Event{Kind: LayoutFailed, Trigger: trigger, Error: err.Error()})
		return err
	}
	elapsed := time.Since(start)

	c.positions = res.Positions
	c.lastStats = res.Stats

	if c.metrics != nil {
		c.metrics.RecordLayout(trigger, elapsed, res.Stats.Nodes, res.Stats.CleanupPasses, res.Stats.ResidualOverlaps)
		c.metrics.UpdateSelection(c.visible.Len(), len(c.state.Selected))
	}
	c.logger.Debug("layout finished",
		logging.Trigger(trigger),
		logging.NodeCount(res.Stats.Nodes),
		logging.EdgeCount(res.Stats.Edges),
		logging.Iterations(res.Stats.Iterations),
		logging.Int("residual_overlaps", res.Stats.ResidualOverlaps),
		logging.Latency(elapsed),
	)

	stats := res.Stats
	c.emit(Event{Kind: LayoutUpdated, Trigger: trigger, Stats: &stats})
	return nil
}

func (c *Controller) refreshVisible() {
	c.visible = c.graph.Visible(c.state.Selected)
	if c.state.Hovered != "" && !c.visible.Contains(c.state.Hovered) {
		c.state.Hovered = ""
	}
}

func (c *Controller) dragTo(p geometry.Point) {
	node, ok := c.visible.Node(c.dragID)
	if !ok {
		return
	}
	center := c.state.ScreenToWorld(p).Add(c.dragOffset)
	body := visualization.Body{Center: center, Radius: node.Shape(center).CollisionRadius()}

	ids, bodies := c.bodies()
	obstacles := make([]visualization.Body, 0, len(bodies))
	for i, id := range ids {
		if id != c.dragID {
			obstacles = append(obstacles, bodies[i])
		}
	}
	c.positions[c.dragID] = visualization.PushOut(body, obstacles, c.opts.Clearance)
}

func (c *Controller) updateHover(p geometry.Point) {
	id, _ := HitTest(c.state.ScreenToWorld(p), c.shapes())
	if id == c.state.Hovered {
		return
	}
	c.state.Hovered = id
	c.emit(Event{Kind: HoverChanged, NodeID: id})
}

func (c *Controller) shapes() []NodeShape {
	return ShapesFor(c.visible, c.positions)
}

// bodies returns collision circles for every positioned visible node.
func (c *Controller) bodies() ([]string, []visualization.Body) {
	ids := make([]string, 0, c.visible.Len())
	bodies := make([]visualization.Body, 0, c.visible.Len())
	for _, n := range c.visible.Nodes {
		pos, ok := c.positions[n.ID]
		if !ok {
			continue
		}
		ids = append(ids, n.ID)
		bodies = append(bodies, visualization.Body{Center: pos, Radius: n.Shape(pos).CollisionRadius()})
	}
	return ids, bodies
}

func (c *Controller) record(kind string) {
	if c.metrics != nil {
		c.metrics.RecordPointerEvent(kind)
	}
}

func (c *Controller) emit(e Event) {
	e.SessionID = c.state.SessionID
	e.Selected = c.state.Selected.Sorted()
	e.Hovered = c.state.Hovered
	e.At = time.Now()
	c.obs.emit(e)
}

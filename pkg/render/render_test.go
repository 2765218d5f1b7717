package render

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-netgraph/pkg/geometry"
	"github.com/dd0wney/cluso-netgraph/pkg/graph"
	"github.com/dd0wney/cluso-netgraph/pkg/metrics"
	"github.com/dd0wney/cluso-netgraph/pkg/viewport"
	"github.com/dd0wney/cluso-netgraph/pkg/visualization"
)

const longLabel = "Alexandra Konstantinova-Whitfield Jensen"

func scenario() (*graph.Graph, map[string]geometry.Point) {
	g := graph.BuildGraph(
		[]graph.Entity{
			{ID: "A", Label: "Alpha", Group: "2019"},
			{ID: "B", Label: "Bravo", Group: "2020"},
			{ID: "C", Label: "Charlie"},
		},
		[]graph.RawRelation{{Source: "A", Target: "B"}, {Source: "B", Target: "A"}, {Source: "B", Target: "C"}},
		nil, nil,
	)
	positions := map[string]geometry.Point{
		"A": {X: 100, Y: 100},
		"B": {X: 300, Y: 100},
		"C": {X: 200, Y: 250},
	}
	return g, positions
}

func sceneAt(zoom float64) Scene {
	g, positions := scenario()
	view := viewport.NewState(0.45, 2.6)
	view.Zoom = zoom
	return Scene{Subgraph: g.Full(), Positions: positions, View: view.Clone()}
}

func indexesOf(ops []Op, want ...Op) []int {
	var out []int
	for i, op := range ops {
		for _, w := range want {
			if op == w {
				out = append(out, i)
			}
		}
	}
	return out
}

func TestRender_DrawOrder(t *testing.T) {
	surface := NewRecordingSurface(400, 300)
	Render(surface, sceneAt(1))

	ops := surface.Ops()
	require.NotEmpty(t, ops)
	assert.Equal(t, OpClear, ops[0])

	lines := indexesOf(ops, OpLine)
	shapes := indexesOf(ops, OpCircle, OpRoundedRect)
	texts := indexesOf(ops, OpText)
	require.Len(t, lines, 2)
	require.Len(t, shapes, 3)
	require.NotEmpty(t, texts)

	assert.Less(t, lines[len(lines)-1], shapes[0], "edges before shapes")
	assert.Less(t, shapes[len(shapes)-1], texts[0], "shapes before labels")
}

func TestRender_EdgeStyleByWeight(t *testing.T) {
	surface := NewRecordingSurface(400, 300)
	theme := DefaultTheme()
	Render(surface, sceneAt(2))

	var strokes []Stroke
	for _, c := range surface.Commands {
		if c.Op == OpLine {
			strokes = append(strokes, c.Stroke)
		}
	}
	require.Len(t, strokes, 2)

	// Edges are in canonical order: (A,B) mutual, (B,C) one-sided
	assert.Equal(t, theme.EdgeMutual.Color, strokes[0].Color)
	assert.InDelta(t, theme.EdgeMutual.Width*2, strokes[0].Width, 1e-9)
	assert.Equal(t, theme.EdgeOneSided.Color, strokes[1].Color)
	assert.Greater(t, strokes[0].Width, strokes[1].Width)
}

func TestRender_ShapesFollowRespondents(t *testing.T) {
	surface := NewRecordingSurface(400, 300)
	Render(surface, sceneAt(1))

	var circles, rects int
	for _, c := range surface.Commands {
		switch c.Op {
		case OpCircle:
			circles++
			assert.InDelta(t, 31, c.Radius, 1e-9)
		case OpRoundedRect:
			rects++
		}
	}
	assert.Equal(t, 2, circles, "A and B reported relations")
	assert.Equal(t, 1, rects)
}

func TestRender_ShapesFollowView(t *testing.T) {
	scene := sceneAt(2)
	scene.View.PanX, scene.View.PanY = 10, -20
	surface := NewRecordingSurface(800, 600)
	Render(surface, scene)

	for _, c := range surface.Commands {
		if c.Op == OpCircle {
			assert.Equal(t, geometry.Point{X: 210, Y: 180}, c.Points[0])
			assert.InDelta(t, 62, c.Radius, 1e-9)
			return
		}
	}
	t.Fatal("no circle drawn")
}

func TestRender_LabelsHiddenBelowThreshold(t *testing.T) {
	surface := NewRecordingSurface(400, 300)
	Render(surface, sceneAt(0.5))
	assert.Empty(t, surface.Texts())

	scene := sceneAt(0.5)
	scene.View.Selected.Add("A")
	scene.View.Hovered = "C"
	Render(surface, scene)

	var labels []string
	for _, c := range surface.Texts() {
		labels = append(labels, c.Text)
	}
	assert.Contains(t, labels, "Alpha")
	assert.Contains(t, labels, "Charlie")
	assert.NotContains(t, labels, "Bravo")
}

func TestRender_HighlightStrokes(t *testing.T) {
	theme := DefaultTheme()
	scene := sceneAt(1)
	scene.View.Selected.Add("A")
	scene.View.Hovered = "B"

	surface := NewRecordingSurface(400, 300)
	Render(surface, scene)

	var strokes []Stroke
	for _, c := range surface.Commands {
		if c.Op == OpCircle || c.Op == OpRoundedRect {
			strokes = append(strokes, c.Stroke)
		}
	}
	require.Len(t, strokes, 3)
	assert.Equal(t, theme.SelectedStroke, strokes[0])
	assert.Equal(t, theme.HoverStroke, strokes[1])
	assert.Equal(t, theme.NodeStroke, strokes[2])
}

func TestRender_LongLabelWrapsInsideShape(t *testing.T) {
	sub := graph.NewSubgraph([]graph.Node{{ID: "x", Label: longLabel}}, nil)
	view := viewport.NewState(0.45, 2.6)
	scene := Scene{Subgraph: sub, Positions: map[string]geometry.Point{"x": {X: 200, Y: 150}}, View: view.Clone()}

	surface := NewRecordingSurface(400, 300)
	Render(surface, scene)

	assert.Equal(t, geometry.MaxNodeSize, geometry.NodeSize(longLabel))

	texts := surface.Texts()
	require.Greater(t, len(texts), 1, "label wraps onto several lines")

	interior := geometry.ShapeFor(geometry.Point{X: 200, Y: 150}, geometry.MaxNodeSize, false).Interior()
	m := surface.Measurer()
	for _, c := range texts {
		w := m.Width(c.Text, c.FontSize)
		p := c.Points[0]
		assert.LessOrEqual(t, w, interior.W+1e-9, "%q too wide", c.Text)
		assert.GreaterOrEqual(t, p.X, interior.X-1e-9)
		assert.GreaterOrEqual(t, p.Y, interior.Y-1e-9)
		assert.LessOrEqual(t, p.Y+m.LineHeight(c.FontSize), interior.Y+interior.H+1e-9)
	}
}

func TestRender_EmptyAndUnpositioned(t *testing.T) {
	surface := NewRecordingSurface(100, 100)
	Render(surface, Scene{View: viewport.NewState(0.45, 2.6).Clone()})
	assert.Equal(t, []Op{OpClear}, surface.Ops())

	g, positions := scenario()
	delete(positions, "C")
	Render(surface, Scene{Subgraph: g.Full(), Positions: positions, View: viewport.NewState(0.45, 2.6).Clone()})
	assert.Len(t, indexesOf(surface.Ops(), OpCircle, OpRoundedRect), 2)
	assert.Len(t, indexesOf(surface.Ops(), OpLine), 1)
}

func TestRender_RecordsMetrics(t *testing.T) {
	reg := metrics.NewRegistry()
	r := NewRenderer(DefaultOptions(), reg, nil)

	r.Render(NewRecordingSurface(400, 300), sceneAt(1))
	r.Render(NewTerminalSurface(50, 20), sceneAt(1))

	var metric dto.Metric
	h, err := reg.RenderDuration.GetMetricWithLabelValues("recording")
	require.NoError(t, err)
	require.NoError(t, h.(interface{ Write(*dto.Metric) error }).Write(&metric))
	assert.Equal(t, uint64(1), metric.Histogram.GetSampleCount())
}

func TestTheme_GroupColor(t *testing.T) {
	theme := DefaultTheme()

	assert.Equal(t, theme.GroupColor("2019"), theme.GroupColor("2019"))
	assert.Equal(t, theme.Ungrouped, theme.GroupColor(""))
	assert.Contains(t, theme.Palette, theme.GroupColor("cohort-7"))
}

func TestSceneFrom_ControllerSnapshot(t *testing.T) {
	g, _ := scenario()
	c, err := viewport.NewController(context.Background(), g,
		visualization.NewCircularLayout(visualization.LayoutConfig{Width: 400, Height: 300}),
		viewport.Options{Width: 400, Height: 300, Seed: 1})
	require.NoError(t, err)

	surface := NewRecordingSurface(400, 300)
	Render(surface, SceneFrom(c.Snapshot()))
	assert.Len(t, indexesOf(surface.Ops(), OpCircle, OpRoundedRect), 3)
}

func TestRasterSurface_RenderAndEncode(t *testing.T) {
	surface, err := NewRasterSurface(400, 300, 1)
	require.NoError(t, err)
	defer surface.Close()

	Render(surface, sceneAt(1))

	img := surface.Image()
	bg := DefaultTheme().Background
	assert.Equal(t, bg, img.RGBAAt(5, 5), "corner keeps the background")
	assert.NotEqual(t, bg, img.RGBAAt(100, 70), "inside node A")

	var buf bytes.Buffer
	require.NoError(t, surface.EncodePNG(&buf))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 400, decoded.Bounds().Dx())
	assert.Equal(t, 300, decoded.Bounds().Dy())
}

func TestRasterSurface_Supersampled(t *testing.T) {
	surface, err := NewRasterSurface(120, 80, 2)
	require.NoError(t, err)
	defer surface.Close()

	w, h := surface.Size()
	assert.Equal(t, 120, w)
	assert.Equal(t, 80, h)
	assert.Equal(t, 120, surface.Image().Bounds().Dx())
}

func TestRasterSurface_RejectsEmpty(t *testing.T) {
	_, err := NewRasterSurface(0, 10, 1)
	assert.Error(t, err)
}

func TestTerminalSurface_Render(t *testing.T) {
	surface := NewTerminalSurface(50, 20)
	w, h := surface.Size()
	assert.Equal(t, 400, w)
	assert.Equal(t, 320, h)

	Render(surface, sceneAt(1))

	plain := surface.Plain()
	assert.Contains(t, plain, "Alpha")
	assert.Len(t, strings.Split(plain, "\n"), 20)
	assert.NotEmpty(t, surface.String())
}

func TestTerminalSurface_Primitives(t *testing.T) {
	surface := NewTerminalSurface(10, 4)
	stroke := Stroke{Width: 1}

	surface.Line(geometry.Point{X: 4, Y: 8}, geometry.Point{X: 76, Y: 8}, stroke)
	assert.Equal(t, strings.Repeat("─", 10), strings.Split(surface.Plain(), "\n")[0])

	surface.Clear(DefaultTheme().Background)
	surface.RoundedRect(geometry.Rect{X: 0, Y: 16, W: 39, H: 47}, 4, DefaultTheme().Ungrouped, stroke)
	rows := strings.Split(surface.Plain(), "\n")
	assert.Equal(t, "╭───╮     ", rows[1])
	assert.Equal(t, "╰───╯     ", rows[3])

	surface.Text(geometry.Point{X: 64, Y: 0}, "hello", 12, DefaultTheme().Label)
	assert.True(t, strings.HasSuffix(strings.Split(surface.Plain(), "\n")[0], "he"), "text is clipped at the edge")
}

func TestTerminalSurface_LineClipsToGrid(t *testing.T) {
	surface := NewTerminalSurface(10, 4)
	stroke := Stroke{Width: 1}

	// Endpoints far off the grid, as after a long pan
	surface.Line(geometry.Point{X: -1e15, Y: 8}, geometry.Point{X: 1e15, Y: 8}, stroke)
	assert.Equal(t, strings.Repeat("─", 10), strings.Split(surface.Plain(), "\n")[0])

	surface.Clear(DefaultTheme().Background)
	surface.Line(geometry.Point{X: -1e15, Y: -50}, geometry.Point{X: 1e15, Y: -50}, stroke)
	assert.NotContains(t, surface.Plain(), "─", "segment above the grid draws nothing")
}

func TestClipSegment(t *testing.T) {
	r := geometry.Rect{W: 80, H: 64}

	tests := []struct {
		name   string
		a, b   geometry.Point
		ok     bool
		wa, wb geometry.Point
	}{
		{"inside", geometry.Point{X: 10, Y: 10}, geometry.Point{X: 20, Y: 30}, true, geometry.Point{X: 10, Y: 10}, geometry.Point{X: 20, Y: 30}},
		{"crosses horizontally", geometry.Point{X: -80, Y: 32}, geometry.Point{X: 160, Y: 32}, true, geometry.Point{X: 0, Y: 32}, geometry.Point{X: 80, Y: 32}},
		{"crosses vertically", geometry.Point{X: 40, Y: 100}, geometry.Point{X: 40, Y: -100}, true, geometry.Point{X: 40, Y: 64}, geometry.Point{X: 40, Y: 0}},
		{"left of rect", geometry.Point{X: -10, Y: 0}, geometry.Point{X: -5, Y: 60}, false, geometry.Point{}, geometry.Point{}},
		{"misses corner", geometry.Point{X: -20, Y: 10}, geometry.Point{X: 10, Y: -20}, false, geometry.Point{}, geometry.Point{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b, ok := clipSegment(tt.a, tt.b, r)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.InDelta(t, tt.wa.X, a.X, 1e-9)
			assert.InDelta(t, tt.wa.Y, a.Y, 1e-9)
			assert.InDelta(t, tt.wb.X, b.X, 1e-9)
			assert.InDelta(t, tt.wb.Y, b.Y, 1e-9)
		})
	}
}

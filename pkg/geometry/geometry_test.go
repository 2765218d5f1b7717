package geometry

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeSize_Clamped(t *testing.T) {
	assert.Equal(t, MinNodeSize, NodeSize(""))
	assert.Equal(t, MinNodeSize, NodeSize("Al"))
	assert.Equal(t, MaxNodeSize, NodeSize(strings.Repeat("x", 40)))
	assert.Equal(t, MaxNodeSize, NodeSize(strings.Repeat("x", 400)))

	mid := NodeSize("Margaret Hamilton")
	assert.Greater(t, mid, MinNodeSize)
	assert.Less(t, mid, MaxNodeSize)
}

func TestNodeSize_CountsRunesNotBytes(t *testing.T) {
	assert.Equal(t, NodeSize("Zoë Müller"), NodeSize("Zoe Muller"))
}

func TestNodeSize_Monotonic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("longer labels never shrink", prop.ForAll(
		func(a, b string) bool {
			short, long := a, a+b
			return NodeSize(long) >= NodeSize(short)
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("size stays within bounds", prop.ForAll(
		func(s string) bool {
			size := NodeSize(s)
			return size >= MinNodeSize && size <= MaxNodeSize
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name   string
		v      float64
		lo, hi float64
		want   float64
	}{
		{"above band", 100, 0, 10, 10},
		{"below band", -3, 0, 10, 0},
		{"inside band", 4, 0, 10, 4},
		{"degenerate band", 7, 5, 5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clamp(tt.v, tt.lo, tt.hi))
		})
	}
}

func TestClamp_EmptyBandReturnsMidpoint(t *testing.T) {
	assert.Equal(t, 50.0, Clamp(7, 60, 40))
	assert.Equal(t, 50.0, Clamp(100, 60, 40))
}

func TestShapeFor(t *testing.T) {
	c := Point{X: 100, Y: 100}

	circle := ShapeFor(c, 80, true)
	assert.Equal(t, ShapeCircle, circle.Kind)
	assert.Equal(t, 40.0, circle.Radius)
	assert.True(t, circle.Contains(Point{X: 139, Y: 100}))
	assert.False(t, circle.Contains(Point{X: 130, Y: 130}), "corner of the bounding box is outside the circle")

	rect := ShapeFor(c, 80, false)
	assert.Equal(t, ShapeRoundedRect, rect.Kind)
	assert.InDelta(t, 80*0.68, rect.Height, 1e-9)
	assert.True(t, rect.Contains(Point{X: 139, Y: 120}))
	assert.False(t, rect.Contains(Point{X: 100, Y: 130}))

	assert.Equal(t, 40.0, circle.CollisionRadius())
	assert.Equal(t, 40.0, rect.CollisionRadius())
}

func TestShape_InteriorInsideBounds(t *testing.T) {
	for _, respondent := range []bool{true, false} {
		s := ShapeFor(Point{X: 10, Y: 10}, MaxNodeSize, respondent)
		in := s.Interior()
		b := s.Bounds()
		assert.GreaterOrEqual(t, in.X, b.X)
		assert.GreaterOrEqual(t, in.Y, b.Y)
		assert.LessOrEqual(t, in.X+in.W, b.X+b.W+1e-9)
		assert.LessOrEqual(t, in.Y+in.H, b.Y+b.H+1e-9)
		assert.InDelta(t, s.Center.X, in.Center().X, 1e-9)
		assert.InDelta(t, s.Center.Y, in.Center().Y, 1e-9)
	}
}

func TestShape_Scaled(t *testing.T) {
	s := ShapeFor(Point{X: 0, Y: 0}, 100, false).Scaled(Point{X: 5, Y: 6}, 2)
	assert.Equal(t, 200.0, s.Width)
	assert.Equal(t, 200.0, s.Size)
	assert.Equal(t, Point{X: 5, Y: 6}, s.Center)
}

func TestWrapText_BreaksLongWords(t *testing.T) {
	m := ApproxMeasurer{Advance: 1, Leading: 1}
	lines := WrapText("abcdefghij kl", 4, m, 1)
	assert.Equal(t, []string{"abcd", "efgh", "ij", "kl"}, lines)
	for _, l := range lines {
		assert.LessOrEqual(t, m.Width(l, 1), 4.0)
	}
}

func TestWrapText_GreedyWords(t *testing.T) {
	m := ApproxMeasurer{Advance: 1, Leading: 1}
	assert.Equal(t, []string{"ada lovelace", "bob"}, WrapText("ada  lovelace bob", 12, m, 1))
	assert.Nil(t, WrapText("   ", 12, m, 1))
}

func TestFitLabel_ShortLabelKeepsMaxSize(t *testing.T) {
	s := ShapeFor(Point{}, NodeSize("Ann"), true)
	fitted := FitLabel("Ann", s.Interior(), DefaultApproxMeasurer, DefaultFitOptions())
	assert.Equal(t, []string{"Ann"}, fitted.Lines)
	assert.Equal(t, 13.0, fitted.FontSize)
	assert.False(t, fitted.Truncated)
}

func TestFitLabel_FortyCharacterLabelWraps(t *testing.T) {
	label := "Alexandra Konstantinova-Whitfield Jensen"
	require.Len(t, []rune(label), 40)

	size := NodeSize(label)
	assert.Equal(t, MaxNodeSize, size)

	for _, respondent := range []bool{true, false} {
		box := ShapeFor(Point{}, size, respondent).Interior()
		fitted := FitLabel(label, box, DefaultApproxMeasurer, DefaultFitOptions())
		assert.Greater(t, len(fitted.Lines), 1, "label should wrap")
		assertFits(t, fitted, box, DefaultApproxMeasurer)
	}
}

func TestFitLabel_TruncatesAtMinimumSize(t *testing.T) {
	label := strings.Repeat("word ", 60)
	box := Rect{W: 40, H: 20}
	fitted := FitLabel(label, box, DefaultApproxMeasurer, DefaultFitOptions())

	assert.True(t, fitted.Truncated)
	assert.Equal(t, 7.0, fitted.FontSize)
	require.NotEmpty(t, fitted.Lines)
	assert.True(t, strings.HasSuffix(fitted.Lines[len(fitted.Lines)-1], "…"))
	assertFits(t, fitted, box, DefaultApproxMeasurer)
}

func TestFitLabel_NeverOverflows(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 150
	properties := gopter.NewProperties(parameters)

	properties.Property("fitted block stays inside the interior", prop.ForAll(
		func(words []string, respondent bool) bool {
			label := strings.Join(words, " ")
			box := ShapeFor(Point{}, NodeSize(label), respondent).Interior()
			fitted := FitLabel(label, box, DefaultApproxMeasurer, DefaultFitOptions())
			if fitted.BlockHeight() > box.H+1e-9 {
				return false
			}
			for _, line := range fitted.Lines {
				if DefaultApproxMeasurer.Width(line, fitted.FontSize) > box.W+1e-9 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestFitLabel_WithRealFace(t *testing.T) {
	m, err := NewFaceMeasurer()
	require.NoError(t, err)
	defer m.Close()

	label := "Dr. Maximiliane Oyelaran-Castellanos"
	box := ShapeFor(Point{}, NodeSize(label), false).Interior()
	fitted := FitLabel(label, box, m, DefaultFitOptions())

	require.NotEmpty(t, fitted.Lines)
	assertFits(t, fitted, box, m)
	assert.Greater(t, m.Width("MMMM", 12), m.Width("iiii", 12))
}

func TestCellMeasurer_IgnoresFontSize(t *testing.T) {
	m := CellMeasurer{CellWidth: 8, CellHeight: 16}
	assert.Equal(t, 24.0, m.Width("abc", 7))
	assert.Equal(t, 24.0, m.Width("abc", 30))
	assert.Equal(t, 16.0, m.LineHeight(3))
}

func assertFits(t *testing.T, fitted FittedLabel, box Rect, m Measurer) {
	t.Helper()
	assert.LessOrEqual(t, fitted.BlockHeight(), box.H+1e-9)
	for _, line := range fitted.Lines {
		assert.LessOrEqual(t, m.Width(line, fitted.FontSize), box.W+1e-9, "line %q overflows", line)
	}
}

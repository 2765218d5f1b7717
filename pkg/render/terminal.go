package render

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-netgraph/pkg/geometry"
)

// Terminal cell size in pixels. Pointer events from the terminal are scaled
// by the same factors.
const (
	CellWidth  = 8
	CellHeight = 16
)

type cell struct {
	ch rune
	fg color.RGBA
	bg color.RGBA
}

// TerminalSurface rasterises onto a character grid. Each cell covers
// CellWidth x CellHeight pixels; shapes fill cell backgrounds, lines and
// text set glyphs.
type TerminalSurface struct {
	cols, rows int
	cells      [][]cell
}

// NewTerminalSurface creates a cols x rows grid.
func NewTerminalSurface(cols, rows int) *TerminalSurface {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	cells := make([][]cell, rows)
	for y := range cells {
		cells[y] = make([]cell, cols)
	}
	t := &TerminalSurface{cols: cols, rows: rows, cells: cells}
	t.Clear(color.RGBA{})
	return t
}

// Name labels render metrics.
func (t *TerminalSurface) Name() string { return "terminal" }

func (t *TerminalSurface) Size() (int, int) { return t.cols * CellWidth, t.rows * CellHeight }

func (t *TerminalSurface) Measurer() geometry.Measurer {
	return geometry.CellMeasurer{CellWidth: CellWidth, CellHeight: CellHeight}
}

func (t *TerminalSurface) Clear(bg color.RGBA) {
	for y := range t.cells {
		for x := range t.cells[y] {
			t.cells[y][x] = cell{ch: ' ', bg: bg}
		}
	}
}

func (t *TerminalSurface) Line(a, b geometry.Point, stroke Stroke) {
	w, h := t.Size()
	a, b, ok := clipSegment(a, b, geometry.Rect{W: float64(w), H: float64(h)})
	if !ok {
		return
	}
	x0, y0 := toCell(a)
	x1, y1 := toCell(b)
	glyph := lineGlyph(x1-x0, y1-y0, stroke.Width >= 2)

	// Bresenham over cells
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for {
		if c := t.at(x0, y0); c != nil {
			c.ch, c.fg = glyph, stroke.Color
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (t *TerminalSurface) Circle(center geometry.Point, radius float64, fill color.RGBA, stroke Stroke) {
	border := math.Max(stroke.Width, float64(CellWidth)/2)
	t.fillCells(geometry.Rect{X: center.X - radius, Y: center.Y - radius, W: 2 * radius, H: 2 * radius},
		func(p geometry.Point) (inside, edge bool) {
			d := p.Dist(center)
			return d <= radius, d > radius-border
		}, fill, stroke.Color)
}

func (t *TerminalSurface) RoundedRect(r geometry.Rect, _ float64, fill color.RGBA, stroke Stroke) {
	x0, y0 := toCell(geometry.Point{X: r.X, Y: r.Y})
	x1, y1 := toCell(geometry.Point{X: r.X + r.W, Y: r.Y + r.H})
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c := t.at(x, y)
			if c == nil {
				continue
			}
			c.bg, c.fg = fill, stroke.Color
			c.ch = boxGlyph(x, y, x0, y0, x1, y1)
		}
	}
}

func (t *TerminalSurface) Text(p geometry.Point, text string, _ float64, c color.RGBA) {
	x, y := toCell(p)
	for _, r := range text {
		if cl := t.at(x, y); cl != nil {
			cl.ch, cl.fg = r, c
		}
		x++
	}
}

// Plain returns the grid as text without styling.
func (t *TerminalSurface) Plain() string {
	var b strings.Builder
	for y, row := range t.cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		for _, c := range row {
			b.WriteRune(c.ch)
		}
	}
	return b.String()
}

// String returns the grid with lipgloss colours. Runs of cells sharing a
// style are rendered together.
func (t *TerminalSurface) String() string {
	var b strings.Builder
	for y, row := range t.cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && row[x].fg == row[start].fg && row[x].bg == row[start].bg {
				continue
			}
			var run strings.Builder
			for _, c := range row[start:x] {
				run.WriteRune(c.ch)
			}
			b.WriteString(styleFor(row[start]).Render(run.String()))
			start = x
		}
	}
	return b.String()
}

func (t *TerminalSurface) at(x, y int) *cell {
	if x < 0 || y < 0 || y >= t.rows || x >= t.cols {
		return nil
	}
	return &t.cells[y][x]
}

// fillCells tests the centre of every cell overlapping box.
func (t *TerminalSurface) fillCells(box geometry.Rect, test func(geometry.Point) (inside, edge bool), fill, edge color.RGBA) {
	x0, y0 := toCell(geometry.Point{X: box.X, Y: box.Y})
	x1, y1 := toCell(geometry.Point{X: box.X + box.W, Y: box.Y + box.H})
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c := t.at(x, y)
			if c == nil {
				continue
			}
			centre := geometry.Point{X: (float64(x) + 0.5) * CellWidth, Y: (float64(y) + 0.5) * CellHeight}
			inside, onEdge := test(centre)
			if !inside {
				continue
			}
			c.ch = ' '
			c.bg = fill
			if onEdge {
				c.bg = edge
			}
		}
	}
}

// clipSegment trims ab to r (Liang-Barsky). ok is false when the segment
// misses r entirely.
func clipSegment(a, b geometry.Point, r geometry.Rect) (geometry.Point, geometry.Point, bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, a.X - r.X},
		{dx, r.X + r.W - a.X},
		{-dy, a.Y - r.Y},
		{dy, r.Y + r.H - a.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return a, b, false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return a, b, false
			}
			t1 = math.Min(t1, t)
		}
	}
	return geometry.Point{X: a.X + t0*dx, Y: a.Y + t0*dy},
		geometry.Point{X: a.X + t1*dx, Y: a.Y + t1*dy}, true
}

func toCell(p geometry.Point) (int, int) {
	return int(math.Floor(p.X / CellWidth)), int(math.Floor(p.Y / CellHeight))
}

func lineGlyph(dx, dy int, heavy bool) rune {
	switch {
	case dy == 0 && heavy:
		return '━'
	case dy == 0:
		return '─'
	case dx == 0 && heavy:
		return '┃'
	case dx == 0:
		return '│'
	}
	// Cells are twice as tall as wide
	slope := float64(dy) * 2 / float64(dx)
	switch {
	case math.Abs(slope) < 0.5:
		if heavy {
			return '━'
		}
		return '─'
	case math.Abs(slope) > 2:
		if heavy {
			return '┃'
		}
		return '│'
	case slope > 0:
		return '╲'
	default:
		return '╱'
	}
}

func boxGlyph(x, y, x0, y0, x1, y1 int) rune {
	switch {
	case x == x0 && y == y0:
		return '╭'
	case x == x1 && y == y0:
		return '╮'
	case x == x0 && y == y1:
		return '╰'
	case x == x1 && y == y1:
		return '╯'
	case y == y0 || y == y1:
		return '─'
	case x == x0 || x == x1:
		return '│'
	default:
		return ' '
	}
}

func styleFor(c cell) lipgloss.Style {
	s := lipgloss.NewStyle()
	if c.fg.A > 0 {
		s = s.Foreground(lipgloss.Color(hex(c.fg)))
	}
	if c.bg.A > 0 {
		s = s.Background(lipgloss.Color(hex(c.bg)))
	}
	return s
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

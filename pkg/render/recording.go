package render

import (
	"image/color"

	"github.com/dd0wney/cluso-netgraph/pkg/geometry"
)

// Op names a recorded drawing command.
type Op string

const (
	OpClear       Op = "clear"
	OpLine        Op = "line"
	OpCircle      Op = "circle"
	OpRoundedRect Op = "rounded_rect"
	OpText        Op = "text"
)

// Command is one recorded drawing call.
type Command struct {
	Op       Op
	Points   []geometry.Point
	Rect     geometry.Rect
	Radius   float64
	Fill     color.RGBA
	Stroke   Stroke
	Text     string
	FontSize float64
}

// RecordingSurface keeps every command instead of drawing it.
type RecordingSurface struct {
	Width, Height int
	Commands      []Command
	Measure       geometry.Measurer
}

// NewRecordingSurface records onto a width x height canvas measured with
// the approximate measurer.
func NewRecordingSurface(width, height int) *RecordingSurface {
	return &RecordingSurface{Width: width, Height: height, Measure: geometry.DefaultApproxMeasurer}
}

// Name labels render metrics.
func (r *RecordingSurface) Name() string { return "recording" }

func (r *RecordingSurface) Size() (int, int) { return r.Width, r.Height }

func (r *RecordingSurface) Measurer() geometry.Measurer { return r.Measure }

func (r *RecordingSurface) Clear(bg color.RGBA) {
	r.Commands = append(r.Commands[:0], Command{Op: OpClear, Fill: bg})
}

func (r *RecordingSurface) Line(a, b geometry.Point, stroke Stroke) {
	r.Commands = append(r.Commands, Command{Op: OpLine, Points: []geometry.Point{a, b}, Stroke: stroke})
}

func (r *RecordingSurface) Circle(center geometry.Point, radius float64, fill color.RGBA, stroke Stroke) {
	r.Commands = append(r.Commands, Command{Op: OpCircle, Points: []geometry.Point{center}, Radius: radius, Fill: fill, Stroke: stroke})
}

func (r *RecordingSurface) RoundedRect(rect geometry.Rect, corner float64, fill color.RGBA, stroke Stroke) {
	r.Commands = append(r.Commands, Command{Op: OpRoundedRect, Rect: rect, Radius: corner, Fill: fill, Stroke: stroke})
}

func (r *RecordingSurface) Text(p geometry.Point, text string, fontSize float64, c color.RGBA) {
	r.Commands = append(r.Commands, Command{Op: OpText, Points: []geometry.Point{p}, Text: text, FontSize: fontSize, Fill: c})
}

// Ops returns the recorded operations in order.
func (r *RecordingSurface) Ops() []Op {
	out := make([]Op, len(r.Commands))
	for i, c := range r.Commands {
		out[i] = c.Op
	}
	return out
}

// Texts returns every recorded text command.
func (r *RecordingSurface) Texts() []Command {
	var out []Command
	for _, c := range r.Commands {
		if c.Op == OpText {
			out = append(out, c)
		}
	}
	return out
}

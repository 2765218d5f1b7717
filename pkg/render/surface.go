package render

import (
	"image/color"

	"github.com/dd0wney/cluso-netgraph/pkg/geometry"
)

// Stroke is an outline or line style in screen pixels.
type Stroke struct {
	Color color.RGBA
	Width float64
}

// Surface is a caller-owned pixel canvas. All coordinates are screen
// pixels with the origin at the top-left corner.
type Surface interface {
	Size() (width, height int)
	Clear(bg color.RGBA)
	Line(a, b geometry.Point, stroke Stroke)
	Circle(center geometry.Point, radius float64, fill color.RGBA, stroke Stroke)
	RoundedRect(r geometry.Rect, corner float64, fill color.RGBA, stroke Stroke)
	// Text draws one line whose line box has its top-left corner at p
	Text(p geometry.Point, text string, fontSize float64, c color.RGBA)
	Measurer() geometry.Measurer
}

// named is implemented by surfaces that label their render metrics.
type named interface {
	Name() string
}

func surfaceName(s Surface) string {
	if n, ok := s.(named); ok {
		return n.Name()
	}
	return "custom"
}

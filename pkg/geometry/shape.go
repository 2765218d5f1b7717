package geometry

import "math"

// ShapeKind tags the variant held by a Shape.
type ShapeKind int

const (
	// ShapeCircle is used for respondents.
	ShapeCircle ShapeKind = iota
	// ShapeRoundedRect is used for everyone else.
	ShapeRoundedRect
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeCircle:
		return "circle"
	case ShapeRoundedRect:
		return "rounded_rect"
	default:
		return "unknown"
	}
}

const (
	rectAspect      = 0.68
	rectCornerRatio = 0.18
	circleInterior  = 0.70
	rectInsetRatio  = 0.08
)

// Shape is a node outline. Kind selects which fields are meaningful:
// Radius for circles, Width/Height/Corner for rounded rectangles.
type Shape struct {
	Kind   ShapeKind
	Center Point
	Size   float64

	Radius float64

	Width  float64
	Height float64
	Corner float64
}

// ShapeFor builds the outline of a node of the given diameter.
func ShapeFor(center Point, size float64, respondent bool) Shape {
	if respondent {
		return Shape{Kind: ShapeCircle, Center: center, Size: size, Radius: size / 2}
	}
	return Shape{
		Kind:   ShapeRoundedRect,
		Center: center,
		Size:   size,
		Width:  size,
		Height: size * rectAspect,
		Corner: size * rectCornerRatio,
	}
}

// CollisionRadius is the radius used for overlap tests. Both variants use
// half the node diameter so that physics treats them uniformly.
func (s Shape) CollisionRadius() float64 { return s.Size / 2 }

// Bounds returns the axis-aligned bounding box of the outline.
func (s Shape) Bounds() Rect {
	switch s.Kind {
	case ShapeCircle:
		return Rect{X: s.Center.X - s.Radius, Y: s.Center.Y - s.Radius, W: 2 * s.Radius, H: 2 * s.Radius}
	default:
		return Rect{X: s.Center.X - s.Width/2, Y: s.Center.Y - s.Height/2, W: s.Width, H: s.Height}
	}
}

// Contains reports whether p is inside the outline. Rounded rectangles use
// their bounding box.
func (s Shape) Contains(p Point) bool {
	switch s.Kind {
	case ShapeCircle:
		return s.Center.Dist(p) <= s.Radius
	default:
		return s.Bounds().Contains(p)
	}
}

// Interior is the box that label text must fit in.
func (s Shape) Interior() Rect {
	switch s.Kind {
	case ShapeCircle:
		side := s.Size * circleInterior
		return Rect{X: s.Center.X - side/2, Y: s.Center.Y - side/2, W: side, H: side}
	default:
		inset := s.Size * rectInsetRatio
		w := math.Max(0, s.Width-2*inset)
		h := math.Max(0, s.Height-2*inset)
		return Rect{X: s.Center.X - w/2, Y: s.Center.Y - h/2, W: w, H: h}
	}
}

// Scaled returns the shape with every length multiplied by k and the centre
// replaced by c. The renderer uses it to move outlines into screen space.
func (s Shape) Scaled(c Point, k float64) Shape {
	return Shape{
		Kind:   s.Kind,
		Center: c,
		Size:   s.Size * k,
		Radius: s.Radius * k,
		Width:  s.Width * k,
		Height: s.Height * k,
		Corner: s.Corner * k,
	}
}

// Package geometry sizes graph nodes from their labels, models node shapes and
// fits label text inside them.
package geometry

import (
	"math"
	"unicode/utf8"
)

const (
	// MinNodeSize and MaxNodeSize bound the diameter of any node.
	MinNodeSize = 62.0
	MaxNodeSize = 112.0

	sizeBase    = 44.0
	sizePerRune = 2.4
)

// Point is a 2D coordinate. The same type is used for world and screen space;
// callers track which space a value belongs to.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Rect is an axis-aligned box given by its top-left corner and extent.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Center returns the midpoint of r.
func (r Rect) Center() Point { return Point{X: r.X + r.W/2, Y: r.Y + r.H/2} }

// NodeSize derives a node's bounding diameter from its label. It is monotonic
// in the label's rune count and clamped to [MinNodeSize, MaxNodeSize].
func NodeSize(label string) float64 {
	n := float64(utf8.RuneCountInString(label))
	return Clamp(sizeBase+sizePerRune*n, MinNodeSize, MaxNodeSize)
}

// Clamp limits v to [lo, hi]. If the band is empty the midpoint is returned.
func Clamp(v, lo, hi float64) float64 {
	if lo > hi {
		return (lo + hi) / 2
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

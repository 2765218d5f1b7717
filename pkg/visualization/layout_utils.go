package visualization

import (
	"math"

	"github.com/dd0wney/cluso-netgraph/pkg/geometry"
)

// minDistance guards divisions by a zero distance.
const minDistance = 0.01

// Body is a circle used for collision handling.
type Body struct {
	Center Position
	Radius float64
}

// clampAxis keeps a centre coordinate so that the whole node stays inside
// [margin, dim-margin].
func clampAxis(v, radius, dim, margin float64) float64 {
	return geometry.Clamp(v, margin+radius, dim-margin-radius)
}

// separationAxis returns the unit vector from b to a. Coincident centres get
// a fixed axis derived from their indices so results stay deterministic.
func separationAxis(dx, dy float64, i, j int) (ux, uy, d float64) {
	d = math.Hypot(dx, dy)
	if d < minDistance {
		angle := float64((i*7919+j*104729)%360) * math.Pi / 180
		return math.Cos(angle), math.Sin(angle), minDistance
	}
	return dx / d, dy / d, d
}

// Overlap returns how far a and b intrude into each other's clearance zone.
// Zero or negative means no overlap.
func Overlap(a, b Body, clearance float64) float64 {
	return a.Radius + b.Radius + clearance - a.Center.Dist(b.Center)
}

// PushOut moves body clear of every obstacle once, in order. Obstacles do
// not move. The returned centre may still overlap when the region is
// saturated.
func PushOut(body Body, obstacles []Body, clearance float64) Position {
	c := body.Center
	for k, o := range obstacles {
		dx := c.X - o.Center.X
		dy := c.Y - o.Center.Y
		ux, uy, _ := separationAxis(dx, dy, k, len(obstacles))
		d := math.Hypot(dx, dy)
		minD := body.Radius + o.Radius + clearance
		if d >= minD {
			continue
		}
		shift := minD - d
		c.X += ux * shift
		c.Y += uy * shift
	}
	return c
}

// Relax runs up to passes rounds of pairwise overlap removal over bodies in
// place. Pinned bodies never move; a free body overlapping a pinned one takes
// the whole push, two free bodies split it. It returns the passes run.
func Relax(bodies []Body, pinned []bool, clearance float64, passes int) int {
	run := 0
	for pass := 0; pass < passes; pass++ {
		run++
		moved := false
		for i := range bodies {
			for j := i + 1; j < len(bodies); j++ {
				pi, pj := isPinned(pinned, i), isPinned(pinned, j)
				if pi && pj {
					continue
				}
				a, b := bodies[i].Center, bodies[j].Center
				ux, uy, _ := separationAxis(a.X-b.X, a.Y-b.Y, i, j)
				d := a.Dist(b)
				minD := bodies[i].Radius + bodies[j].Radius + clearance
				if d >= minD-1e-9 {
					continue
				}
				push := minD - d
				switch {
				case pi:
					bodies[j].Center = Position{X: b.X - ux*push, Y: b.Y - uy*push}
				case pj:
					bodies[i].Center = Position{X: a.X + ux*push, Y: a.Y + uy*push}
				default:
					bodies[i].Center = Position{X: a.X + ux*push/2, Y: a.Y + uy*push/2}
					bodies[j].Center = Position{X: b.X - ux*push/2, Y: b.Y - uy*push/2}
				}
				moved = true
			}
		}
		if !moved {
			break
		}
	}
	return run
}

func isPinned(pinned []bool, i int) bool {
	return i < len(pinned) && pinned[i]
}

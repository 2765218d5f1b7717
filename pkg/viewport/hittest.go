package viewport

import (
	"math"

	"github.com/dd0wney/cluso-netgraph/pkg/geometry"
	"github.com/dd0wney/cluso-netgraph/pkg/graph"
)

// NodeShape pairs a node id with its world-space outline.
type NodeShape struct {
	ID    string
	Shape geometry.Shape
}

// ShapesFor builds outlines for every node of sub that has a position.
func ShapesFor(sub *graph.Subgraph, positions map[string]geometry.Point) []NodeShape {
	out := make([]NodeShape, 0, sub.Len())
	for _, n := range sub.Nodes {
		pos, ok := positions[n.ID]
		if !ok {
			continue
		}
		out = append(out, NodeShape{
			ID:    n.ID,
			Shape: n.Shape(pos),
		})
	}
	return out
}

// HitTest returns the node under the world point p. Circles hit within
// their radius, rounded rectangles within their bounding box. When several
// outlines contain p the one whose centre is nearest wins; exact ties go to
// the earlier entry.
func HitTest(p geometry.Point, shapes []NodeShape) (string, bool) {
	best := ""
	bestDist := math.Inf(1)
	for _, ns := range shapes {
		s := ns.Shape
		d := s.Center.Dist(p)

		var hit bool
		switch s.Kind {
		case geometry.ShapeCircle:
			hit = d <= s.Radius
		case geometry.ShapeRoundedRect:
			hit = s.Bounds().Contains(p)
		}
		if hit && d < bestDist {
			best, bestDist = ns.ID, d
		}
	}
	return best, best != ""
}

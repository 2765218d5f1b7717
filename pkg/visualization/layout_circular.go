package visualization

import (
	"context"
	"math"

	"github.com/dd0wney/cluso-netgraph/pkg/geometry"
)

// CircularLayout arranges nodes evenly on a circle in subgraph order. It is
// deterministic and ignores the seed.
type CircularLayout struct {
	config LayoutConfig
}

// NewCircularLayout creates a new circular layout
func NewCircularLayout(config LayoutConfig) *CircularLayout {
	d := DefaultLayoutConfig()
	if config.Width == 0 {
		config.Width = d.Width
	}
	if config.Height == 0 {
		config.Height = d.Height
	}
	if config.Padding == 0 {
		config.Padding = d.Padding
	}
	return &CircularLayout{config: config}
}

// Run arranges nodes in a circle
func (cl *CircularLayout) Run(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	width, height := req.Width, req.Height
	if width <= 0 {
		width = cl.config.Width
	}
	if height <= 0 {
		height = cl.config.Height
	}

	sub := req.Subgraph
	n := sub.Len()
	res := &Result{Positions: make(map[string]Position, n), Stats: Stats{Nodes: n}}
	if n == 0 {
		return res, nil
	}
	res.Stats.Edges = len(sub.Edges)

	maxRadius := 0.0
	for _, node := range sub.Nodes {
		maxRadius = math.Max(maxRadius, node.Shape(geometry.Point{}).CollisionRadius())
	}

	centerX := width / 2
	centerY := height / 2
	radius := math.Max(0, math.Min(centerX, centerY)-cl.config.Padding-maxRadius)
	if n == 1 {
		radius = 0
	}

	angleStep := 2 * math.Pi / float64(n)
	for i, node := range sub.Nodes {
		r := node.Shape(geometry.Point{}).CollisionRadius()
		angle := float64(i)*angleStep - math.Pi/2
		res.Positions[node.ID] = Position{
			X: clampAxis(centerX+radius*math.Cos(angle), r, width, cl.config.Padding),
			Y: clampAxis(centerY+radius*math.Sin(angle), r, height, cl.config.Padding),
		}
	}
	return res, nil
}

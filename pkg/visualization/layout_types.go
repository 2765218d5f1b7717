package visualization

import (
	"context"

	"github.com/dd0wney/cluso-netgraph/pkg/geometry"
	"github.com/dd0wney/cluso-netgraph/pkg/graph"
)

// Position is a world-space coordinate.
type Position = geometry.Point

// LayoutConfig configures layout parameters
type LayoutConfig struct {
	Width      float64 // Canvas width
	Height     float64 // Canvas height
	Iterations int     // Simulation steps
	Padding    float64 // Margin kept free along every canvas edge
	Seed       int64   // 0 picks a time-based seed

	Clearance         float64 // Extra gap required between node outlines
	SpringLength      float64 // Rest length of an edge spring
	SpringStrength    float64
	MutualSpringBoost float64 // Spring multiplier for weight-2 edges
	RepulsionStrength float64
	CollisionStrength float64
	CenteringStrength float64
	Damping           float64
	MaxSpeed          float64
	CleanupPasses     int

	// MaxPairWork caps pairs*iterations for large graphs; 0 disables the cap
	MaxPairWork   int
	MinIterations int
}

// DefaultLayoutConfig returns the tuned force parameters.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		Width:             1200,
		Height:            800,
		Iterations:        290,
		Padding:           28,
		Clearance:         14,
		SpringLength:      170,
		SpringStrength:    0.018,
		MutualSpringBoost: 1.8,
		RepulsionStrength: 12000,
		CollisionStrength: 0.25,
		CenteringStrength: 0.006,
		Damping:           0.82,
		MaxSpeed:          40,
		CleanupPasses:     12,
		MinIterations:     60,
	}
}

// Request is one layout run over a snapshot of the visible subgraph.
type Request struct {
	Subgraph *graph.Subgraph
	Width    float64 // 0 uses the config width
	Height   float64 // 0 uses the config height
	Seed     int64   // 0 uses the config seed
}

// Stats summarises a layout run.
type Stats struct {
	Nodes            int   `json:"nodes"`
	Edges            int   `json:"edges"`
	Iterations       int   `json:"iterations"`
	CleanupPasses    int   `json:"cleanup_passes"`
	ResidualOverlaps int   `json:"residual_overlaps"`
	Seed             int64 `json:"seed"`
}

// Result carries positions keyed by node id.
type Result struct {
	Positions map[string]Position
	Stats     Stats
}

// Layout is implemented by every layout algorithm.
type Layout interface {
	Run(ctx context.Context, req Request) (*Result, error)
}

// Visualization represents a laid-out subgraph ready for export
type Visualization struct {
	Nodes     []graph.Node
	Edges     []graph.CanonicalEdge
	Positions map[string]Position
}

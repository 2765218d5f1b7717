package visualization

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/dd0wney/cluso-netgraph/pkg/geometry"
	"github.com/dd0wney/cluso-netgraph/pkg/graph"
)

// ForceDirectedLayout implements a spring/repulsion/collision simulation
// followed by a discrete overlap cleanup.
type ForceDirectedLayout struct {
	config LayoutConfig
}

// NewForceDirectedLayout creates a new force-directed layout. Zero fields
// take their defaults.
func NewForceDirectedLayout(config LayoutConfig) *ForceDirectedLayout {
	d := DefaultLayoutConfig()
	if config.Width == 0 {
		config.Width = d.Width
	}
	if config.Height == 0 {
		config.Height = d.Height
	}
	if config.Iterations == 0 {
		config.Iterations = d.Iterations
	}
	if config.Padding == 0 {
		config.Padding = d.Padding
	}
	if config.Clearance == 0 {
		config.Clearance = d.Clearance
	}
	if config.SpringLength == 0 {
		config.SpringLength = d.SpringLength
	}
	if config.SpringStrength == 0 {
		config.SpringStrength = d.SpringStrength
	}
	if config.MutualSpringBoost == 0 {
		config.MutualSpringBoost = d.MutualSpringBoost
	}
	if config.RepulsionStrength == 0 {
		config.RepulsionStrength = d.RepulsionStrength
	}
	if config.CollisionStrength == 0 {
		config.CollisionStrength = d.CollisionStrength
	}
	if config.CenteringStrength == 0 {
		config.CenteringStrength = d.CenteringStrength
	}
	if config.Damping == 0 {
		config.Damping = d.Damping
	}
	if config.MaxSpeed == 0 {
		config.MaxSpeed = d.MaxSpeed
	}
	if config.CleanupPasses == 0 {
		config.CleanupPasses = d.CleanupPasses
	}
	if config.MinIterations == 0 {
		config.MinIterations = d.MinIterations
	}
	return &ForceDirectedLayout{config: config}
}

// Config returns the effective configuration.
func (fdl *ForceDirectedLayout) Config() LayoutConfig { return fdl.config }

// ComputeLayout lays out sub on the configured canvas.
func (fdl *ForceDirectedLayout) ComputeLayout(sub *graph.Subgraph) (map[string]Position, error) {
	res, err := fdl.Run(context.Background(), Request{Subgraph: sub})
	if err != nil {
		return nil, err
	}
	return res.Positions, nil
}

// simulation holds per-node state as parallel arrays indexed by node
// position in the subgraph.
type simulation struct {
	ids    []string
	x, y   []float64
	vx, vy []float64
	fx, fy []float64
	r      []float64

	springs []spring

	width, height float64
	margin        float64
}

type spring struct {
	i, j     int
	strength float64
}

// Run computes positions for req. The context is checked between
// iterations; a cancelled run returns ctx.Err() and no positions.
func (fdl *ForceDirectedLayout) Run(ctx context.Context, req Request) (*Result, error) {
	cfg := fdl.config
	width, height := req.Width, req.Height
	if width <= 0 {
		width = cfg.Width
	}
	if height <= 0 {
		height = cfg.Height
	}
	seed := req.Seed
	if seed == 0 {
		seed = cfg.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	sub := req.Subgraph
	n := sub.Len()
	res := &Result{
		Positions: make(map[string]Position, n),
		Stats:     Stats{Nodes: n, Seed: seed},
	}
	if n == 0 {
		return res, nil
	}
	res.Stats.Edges = len(sub.Edges)

	// Single node - center it
	if n == 1 {
		res.Positions[sub.Nodes[0].ID] = Position{X: width / 2, Y: height / 2}
		return res, nil
	}

	sim := newSimulation(sub, width, height, cfg, rand.New(rand.NewSource(seed)))

	iterations := fdl.iterationBudget(n)
	for iter := 0; iter < iterations; iter++ {
		if iter%16 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		sim.step(cfg)
	}
	res.Stats.Iterations = iterations

	res.Stats.CleanupPasses = sim.resolveOverlaps(cfg.Clearance, cfg.CleanupPasses)
	res.Stats.ResidualOverlaps = sim.countOverlaps(0)

	for i, id := range sim.ids {
		res.Positions[id] = Position{X: sim.x[i], Y: sim.y[i]}
	}
	return res, nil
}

// iterationBudget applies the optional pair-work cap.
func (fdl *ForceDirectedLayout) iterationBudget(n int) int {
	cfg := fdl.config
	if cfg.MaxPairWork <= 0 {
		return cfg.Iterations
	}
	pairs := n * (n - 1) / 2
	if pairs == 0 {
		return cfg.Iterations
	}
	budget := cfg.MaxPairWork / pairs
	if budget < cfg.MinIterations {
		budget = cfg.MinIterations
	}
	if budget > cfg.Iterations {
		budget = cfg.Iterations
	}
	return budget
}

func newSimulation(sub *graph.Subgraph, width, height float64, cfg LayoutConfig, rng *rand.Rand) *simulation {
	n := sub.Len()
	sim := &simulation{
		ids:    make([]string, n),
		x:      make([]float64, n),
		y:      make([]float64, n),
		vx:     make([]float64, n),
		vy:     make([]float64, n),
		fx:     make([]float64, n),
		fy:     make([]float64, n),
		r:      make([]float64, n),
		width:  width,
		height: height,
		margin: cfg.Padding,
	}

	index := make(map[string]int, n)
	spanX := math.Max(0, width-2*cfg.Padding)
	spanY := math.Max(0, height-2*cfg.Padding)
	for i, node := range sub.Nodes {
		index[node.ID] = i
		sim.ids[i] = node.ID
		sim.r[i] = node.Shape(geometry.Point{}).CollisionRadius()
		sim.x[i] = clampAxis(cfg.Padding+rng.Float64()*spanX, sim.r[i], width, cfg.Padding)
		sim.y[i] = clampAxis(cfg.Padding+rng.Float64()*spanY, sim.r[i], height, cfg.Padding)
	}

	for _, e := range sub.Edges {
		i, okA := index[e.A]
		j, okB := index[e.B]
		if !okA || !okB || i == j {
			continue
		}
		strength := cfg.SpringStrength
		if e.Mutual() {
			strength *= cfg.MutualSpringBoost
		}
		sim.springs = append(sim.springs, spring{i: i, j: j, strength: strength})
	}
	return sim
}

// step accumulates all forces, then damps, integrates and clamps.
func (s *simulation) step(cfg LayoutConfig) {
	n := len(s.ids)
	for i := 0; i < n; i++ {
		s.fx[i], s.fy[i] = 0, 0
	}

	// Springs along edges
	for _, sp := range s.springs {
		dx := s.x[sp.j] - s.x[sp.i]
		dy := s.y[sp.j] - s.y[sp.i]
		ux, uy, d := separationAxis(dx, dy, sp.i, sp.j)
		f := sp.strength * (d - cfg.SpringLength)
		s.fx[sp.i] += ux * f
		s.fy[sp.i] += uy * f
		s.fx[sp.j] -= ux * f
		s.fy[sp.j] -= uy * f
	}

	// Repulsion and collision between every pair
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			ux, uy, d := separationAxis(s.x[i]-s.x[j], s.y[i]-s.y[j], i, j)
			f := cfg.RepulsionStrength / (d * d)
			if minD := s.r[i] + s.r[j] + cfg.Clearance; d < minD {
				f += (minD - d) * cfg.CollisionStrength
			}
			s.fx[i] += ux * f
			s.fy[i] += uy * f
			s.fx[j] -= ux * f
			s.fy[j] -= uy * f
		}
	}

	cx, cy := s.width/2, s.height/2
	for i := 0; i < n; i++ {
		s.fx[i] += (cx - s.x[i]) * cfg.CenteringStrength
		s.fy[i] += (cy - s.y[i]) * cfg.CenteringStrength

		s.vx[i] = (s.vx[i] + s.fx[i]) * cfg.Damping
		s.vy[i] = (s.vy[i] + s.fy[i]) * cfg.Damping
		if speed := math.Hypot(s.vx[i], s.vy[i]); speed > cfg.MaxSpeed {
			s.vx[i] *= cfg.MaxSpeed / speed
			s.vy[i] *= cfg.MaxSpeed / speed
		}

		nx := clampAxis(s.x[i]+s.vx[i], s.r[i], s.width, s.margin)
		ny := clampAxis(s.y[i]+s.vy[i], s.r[i], s.height, s.margin)
		if nx != s.x[i]+s.vx[i] {
			s.vx[i] = 0
		}
		if ny != s.y[i]+s.vy[i] {
			s.vy[i] = 0
		}
		s.x[i], s.y[i] = nx, ny
	}
}

// resolveOverlaps pushes every overlapping pair apart by half the overlap
// each, for at most passes rounds. It returns the number of passes run.
func (s *simulation) resolveOverlaps(clearance float64, passes int) int {
	n := len(s.ids)
	run := 0
	for pass := 0; pass < passes; pass++ {
		run++
		moved := false
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				ux, uy, d := separationAxis(s.x[i]-s.x[j], s.y[i]-s.y[j], i, j)
				minD := s.r[i] + s.r[j] + clearance
				if d >= minD {
					continue
				}
				half := (minD - d) / 2
				if s.move(i, ux*half, uy*half) {
					moved = true
				}
				if s.move(j, -ux*half, -uy*half) {
					moved = true
				}
			}
		}
		if !moved {
			break
		}
	}
	return run
}

// move shifts node i, clamps it and reports whether it actually moved.
func (s *simulation) move(i int, dx, dy float64) bool {
	nx := clampAxis(s.x[i]+dx, s.r[i], s.width, s.margin)
	ny := clampAxis(s.y[i]+dy, s.r[i], s.height, s.margin)
	changed := math.Abs(nx-s.x[i]) > 1e-9 || math.Abs(ny-s.y[i]) > 1e-9
	s.x[i], s.y[i] = nx, ny
	return changed
}

// countOverlaps counts pairs closer than their summed radii plus clearance.
func (s *simulation) countOverlaps(clearance float64) int {
	n := len(s.ids)
	count := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if math.Hypot(s.x[i]-s.x[j], s.y[i]-s.y[j]) < s.r[i]+s.r[j]+clearance-1e-9 {
				count++
			}
		}
	}
	return count
}

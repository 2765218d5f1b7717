package graph

import (
	"math"
	"sort"
	"strings"
)

// Mode is the weighting policy chosen for a dataset.
type Mode int

const (
	// ModeDirectional infers mutuality from records in both directions.
	ModeDirectional Mode = iota
	// ModeWeighted trusts explicit weights. It is selected for the whole
	// dataset as soon as one record carries a weight.
	ModeWeighted
)

func (m Mode) String() string {
	if m == ModeWeighted {
		return "weighted"
	}
	return "directional"
}

// CanonicalizeReport describes what canonicalisation did with its input.
type CanonicalizeReport struct {
	Mode             Mode
	Records          int
	DroppedSelfLoops int
	DroppedEmpty     int
	// Collapsed counts records merged into an already-seen pair
	Collapsed int
	Edges     int
}

type pairKey struct{ a, b string }

func orderedPair(x, y string) pairKey {
	if x > y {
		x, y = y, x
	}
	return pairKey{a: x, b: y}
}

// Canonicalize reduces raw relations to at most one undirected, weighted
// edge per pair. It is pure and the output is sorted by (A, B).
func Canonicalize(relations []RawRelation, aliases AliasResolver) []CanonicalEdge {
	edges, _ := CanonicalizeWithReport(relations, aliases)
	return edges
}

// CanonicalizeWithReport is Canonicalize plus bookkeeping for logs and metrics.
func CanonicalizeWithReport(relations []RawRelation, aliases AliasResolver) ([]CanonicalEdge, CanonicalizeReport) {
	report := CanonicalizeReport{Records: len(relations), Mode: ModeDirectional}
	for _, r := range relations {
		if r.Weight != nil {
			report.Mode = ModeWeighted
			break
		}
	}

	weights := make(map[pairKey]int)
	directed := make(map[pairKey]struct{})

	for _, r := range relations {
		src := resolveToken(aliases, r.Source)
		dst := resolveToken(aliases, r.Target)
		if strings.TrimSpace(src) == "" || strings.TrimSpace(dst) == "" {
			report.DroppedEmpty++
			continue
		}
		if src == dst {
			report.DroppedSelfLoops++
			continue
		}

		key := orderedPair(src, dst)
		prev, seen := weights[key]
		if seen {
			report.Collapsed++
		}

		switch report.Mode {
		case ModeWeighted:
			w := WeightOneSided
			if r.Weight != nil && !math.IsNaN(*r.Weight) && math.Round(*r.Weight) >= WeightMutual {
				w = WeightMutual
			}
			if w > prev {
				weights[key] = w
			}
		default:
			directed[pairKey{a: src, b: dst}] = struct{}{}
			if !seen {
				weights[key] = WeightOneSided
			}
		}
	}

	if report.Mode == ModeDirectional {
		for key := range weights {
			_, fwd := directed[pairKey{a: key.a, b: key.b}]
			_, rev := directed[pairKey{a: key.b, b: key.a}]
			if fwd && rev {
				weights[key] = WeightMutual
			}
		}
	}

	edges := make([]CanonicalEdge, 0, len(weights))
	for key, w := range weights {
		edges = append(edges, CanonicalEdge{A: key.a, B: key.b, Weight: w})
	}
	SortEdges(edges)
	report.Edges = len(edges)
	return edges, report
}

// SortEdges orders edges by A then B.
func SortEdges(edges []CanonicalEdge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].A != edges[j].A {
			return edges[i].A < edges[j].A
		}
		return edges[i].B < edges[j].B
	})
}

// AsRelations turns canonical edges back into weighted, symmetric raw
// relations. Re-canonicalising the result yields the same edges.
func AsRelations(edges []CanonicalEdge) []RawRelation {
	out := make([]RawRelation, 0, len(edges)*2)
	for _, e := range edges {
		out = append(out, Weighted(e.A, e.B, float64(e.Weight)), Weighted(e.B, e.A, float64(e.Weight)))
	}
	return out
}

package graph

import "sort"

// Adjacency is a symmetric neighbour index built from canonical edges.
type Adjacency map[string]IDSet

// BuildAdjacency indexes edges in both directions.
func BuildAdjacency(edges []CanonicalEdge) Adjacency {
	adj := make(Adjacency)
	link := func(from, to string) {
		set, ok := adj[from]
		if !ok {
			set = make(IDSet)
			adj[from] = set
		}
		set.Add(to)
	}
	for _, e := range edges {
		if e.A == e.B {
			continue
		}
		link(e.A, e.B)
		link(e.B, e.A)
	}
	return adj
}

// Neighbors returns the sorted neighbours of id.
func (adj Adjacency) Neighbors(id string) []string {
	set := adj[id]
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Degree is the number of distinct neighbours of id.
func (adj Adjacency) Degree(id string) int { return len(adj[id]) }

// OneHop returns selected plus every neighbour of any selected id.
func OneHop(selected IDSet, adj Adjacency) IDSet {
	out := make(IDSet, len(selected)*4)
	for id := range selected {
		out.Add(id)
		for n := range adj[id] {
			out.Add(n)
		}
	}
	return out
}

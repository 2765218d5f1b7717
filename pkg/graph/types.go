// Package graph reduces raw relationship records to a canonical weighted
// undirected graph and derives the subgraph visible under a selection.
package graph

import (
	"sort"

	"github.com/dd0wney/cluso-netgraph/pkg/geometry"
)

// Entity is a known participant supplied by the host.
type Entity struct {
	ID    string `json:"id" yaml:"id" validate:"required"`
	Label string `json:"label" yaml:"label"`
	Group string `json:"group" yaml:"group"`
}

// RawRelation is an input record. Source and Target are tokens that may
// need alias resolution. Weight is optional.
type RawRelation struct {
	Source string   `json:"source" yaml:"source"`
	Target string   `json:"target" yaml:"target"`
	Weight *float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
}

// Weighted returns a relation carrying an explicit weight.
func Weighted(source, target string, weight float64) RawRelation {
	return RawRelation{Source: source, Target: target, Weight: &weight}
}

// CanonicalEdge is an undirected relation. A < B always holds.
type CanonicalEdge struct {
	A      string `json:"a"`
	B      string `json:"b"`
	Weight int    `json:"weight"`
}

const (
	// WeightOneSided marks a relation seen in one direction only.
	WeightOneSided = 1
	// WeightMutual marks a relation confirmed from both sides.
	WeightMutual = 2
)

// Mutual reports whether the edge is corroborated from both sides.
func (e CanonicalEdge) Mutual() bool { return e.Weight >= WeightMutual }

// Node is the view model of an entity inside a built graph.
type Node struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Group      string `json:"group"`
	Respondent bool   `json:"respondent"`
	Degree     int    `json:"degree"`
	// Orphan is set for relation endpoints that matched no entity
	Orphan bool `json:"orphan,omitempty"`
}

// Shape returns the node's outline centred on c. Respondents are circles.
func (n Node) Shape(c geometry.Point) geometry.Shape {
	return geometry.ShapeFor(c, geometry.NodeSize(n.Label), n.Respondent)
}

// IDSet is a set of entity ids.
type IDSet map[string]struct{}

// NewIDSet builds a set from ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id.
func (s IDSet) Add(id string) { s[id] = struct{}{} }

// Remove deletes id.
func (s IDSet) Remove(id string) { delete(s, id) }

// Toggle flips membership of id and reports whether it is now present.
func (s IDSet) Toggle(id string) bool {
	if s.Has(id) {
		delete(s, id)
		return false
	}
	s[id] = struct{}{}
	return true
}

// Sorted returns the members in lexical order.
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy.
func (s IDSet) Clone() IDSet {
	c := make(IDSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

package graph

import "strings"

// Graph is the canonical graph built from a roster and a relation list.
type Graph struct {
	Nodes     []Node
	Edges     []CanonicalEdge
	Adjacency Adjacency
	Report    CanonicalizeReport

	index map[string]int
}

// Subgraph is the node and edge subset eligible for layout and rendering.
type Subgraph struct {
	Nodes []Node
	Edges []CanonicalEdge

	index map[string]int
}

// BuildGraph canonicalises relations, indexes adjacency and produces node
// view models. Relation endpoints that resolve to no entity become orphan
// nodes labelled with the token itself.
//
// When respondents is empty, every entity that appears as the source of a
// surviving relation is treated as a respondent.
func BuildGraph(entities []Entity, relations []RawRelation, resolver AliasResolver, respondents []string) *Graph {
	if resolver == nil {
		resolver = NewAliasTable(entities, nil)
	}

	edges, report := CanonicalizeWithReport(relations, resolver)
	adj := BuildAdjacency(edges)

	g := &Graph{
		Nodes:     make([]Node, 0, len(entities)),
		Edges:     edges,
		Adjacency: adj,
		Report:    report,
		index:     make(map[string]int, len(entities)),
	}

	for _, e := range entities {
		if e.ID == "" {
			continue
		}
		if _, dup := g.index[e.ID]; dup {
			continue
		}
		label := e.Label
		if strings.TrimSpace(label) == "" {
			label = e.ID
		}
		g.index[e.ID] = len(g.Nodes)
		g.Nodes = append(g.Nodes, Node{ID: e.ID, Label: label, Group: e.Group})
	}

	for _, edge := range edges {
		for _, id := range []string{edge.A, edge.B} {
			if _, ok := g.index[id]; ok {
				continue
			}
			g.index[id] = len(g.Nodes)
			g.Nodes = append(g.Nodes, Node{ID: id, Label: id, Orphan: true})
		}
	}

	respondentSet := make(IDSet)
	if len(respondents) > 0 {
		for _, token := range respondents {
			respondentSet.Add(resolveToken(resolver, token))
		}
	} else {
		for _, r := range relations {
			src := resolveToken(resolver, r.Source)
			dst := resolveToken(resolver, r.Target)
			if strings.TrimSpace(src) == "" || strings.TrimSpace(dst) == "" || src == dst {
				continue
			}
			respondentSet.Add(src)
		}
	}

	for i := range g.Nodes {
		g.Nodes[i].Degree = adj.Degree(g.Nodes[i].ID)
		g.Nodes[i].Respondent = respondentSet.Has(g.Nodes[i].ID)
	}
	return g
}

// Node looks up a node by id.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// Full returns the whole graph as a subgraph.
func (g *Graph) Full() *Subgraph {
	return newSubgraph(append([]Node(nil), g.Nodes...), append([]CanonicalEdge(nil), g.Edges...))
}

// Visible returns the subgraph shown for selection: the full graph when
// nothing is selected, otherwise the one-hop neighbourhood of the selection
// and the edges with both endpoints inside it. Unknown ids are ignored.
func (g *Graph) Visible(selected IDSet) *Subgraph {
	if len(selected) == 0 {
		return g.Full()
	}

	keep := OneHop(selected, g.Adjacency)
	nodes := make([]Node, 0, len(keep))
	for _, n := range g.Nodes {
		if keep.Has(n.ID) {
			nodes = append(nodes, n)
		}
	}
	edges := make([]CanonicalEdge, 0)
	for _, e := range g.Edges {
		if keep.Has(e.A) && keep.Has(e.B) {
			edges = append(edges, e)
		}
	}
	return newSubgraph(nodes, edges)
}

func newSubgraph(nodes []Node, edges []CanonicalEdge) *Subgraph {
	idx := make(map[string]int, len(nodes))
	for i, n := range nodes {
		idx[n.ID] = i
	}
	return &Subgraph{Nodes: nodes, Edges: edges, index: idx}
}

// NewSubgraph builds a subgraph from explicit nodes and edges. Edges whose
// endpoints are not both present are dropped.
func NewSubgraph(nodes []Node, edges []CanonicalEdge) *Subgraph {
	sub := newSubgraph(nodes, nil)
	for _, e := range edges {
		if sub.Contains(e.A) && sub.Contains(e.B) {
			sub.Edges = append(sub.Edges, e)
		}
	}
	return sub
}

// Contains reports whether id is part of the subgraph.
func (s *Subgraph) Contains(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[id]
	return ok
}

// Node looks up a node by id.
func (s *Subgraph) Node(id string) (Node, bool) {
	if s == nil {
		return Node{}, false
	}
	i, ok := s.index[id]
	if !ok {
		return Node{}, false
	}
	return s.Nodes[i], true
}

// IDs returns node ids in subgraph order.
func (s *Subgraph) IDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.Nodes))
	for i, n := range s.Nodes {
		out[i] = n.ID
	}
	return out
}

// Len is the number of nodes.
func (s *Subgraph) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Nodes)
}

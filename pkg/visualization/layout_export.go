package visualization

import (
	"encoding/json"

	"github.com/dd0wney/cluso-netgraph/pkg/geometry"
	"github.com/dd0wney/cluso-netgraph/pkg/graph"
)

// NewVisualization pairs a subgraph with the positions computed for it.
func NewVisualization(sub *graph.Subgraph, positions map[string]Position) *Visualization {
	return &Visualization{
		Nodes:     append([]graph.Node(nil), sub.Nodes...),
		Edges:     append([]graph.CanonicalEdge(nil), sub.Edges...),
		Positions: positions,
	}
}

// NodeViz is the exported form of a positioned node.
type NodeViz struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Group      string  `json:"group,omitempty"`
	Respondent bool    `json:"respondent"`
	Degree     int     `json:"degree"`
	Size       float64 `json:"size"`
	Shape      string  `json:"shape"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
}

// EdgeViz is the exported form of a canonical edge.
type EdgeViz struct {
	A      string `json:"a"`
	B      string `json:"b"`
	Weight int    `json:"weight"`
}

// VizData is the document written by ExportJSON.
type VizData struct {
	Nodes []NodeViz `json:"nodes"`
	Edges []EdgeViz `json:"edges"`
	Stats *Stats    `json:"stats,omitempty"`
}

// Data converts the visualization into its export document.
func (v *Visualization) Data() VizData {
	data := VizData{
		Nodes: make([]NodeViz, 0, len(v.Nodes)),
		Edges: make([]EdgeViz, 0, len(v.Edges)),
	}

	for _, node := range v.Nodes {
		pos := v.Positions[node.ID]
		size := geometry.NodeSize(node.Label)
		data.Nodes = append(data.Nodes, NodeViz{
			ID:         node.ID,
			Label:      node.Label,
			Group:      node.Group,
			Respondent: node.Respondent,
			Degree:     node.Degree,
			Size:       size,
			Shape:      geometry.ShapeFor(pos, size, node.Respondent).Kind.String(),
			X:          pos.X,
			Y:          pos.Y,
		})
	}

	for _, edge := range v.Edges {
		data.Edges = append(data.Edges, EdgeViz{A: edge.A, B: edge.B, Weight: edge.Weight})
	}
	return data
}

// ExportJSON exports the visualization to JSON
func (v *Visualization) ExportJSON() ([]byte, error) {
	return json.Marshal(v.Data())
}

package graph

import (
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Metrics holds centrality and structure measures for the reference graph.
type Metrics struct {
	Nodes   []NodeMetric `json:"nodes" toon:"nodes"`
	Summary Summary      `json:"summary" toon:"summary"`
}

// NodeMetric represents computed metrics for a single document.
type NodeMetric struct {
	ID        string  `json:"id" toon:"id"`
	InDegree  int     `json:"in_degree" toon:"in_degree"`
	OutDegree int     `json:"out_degree" toon:"out_degree"`
	PageRank  float64 `json:"pagerank" toon:"pagerank"`
	Component int     `json:"component" toon:"component"`
}

// Summary provides aggregate graph statistics.
type Summary struct {
	TotalNodes                  int      `json:"total_nodes" toon:"total_nodes"`
	TotalEdges                  int      `json:"total_edges" toon:"total_edges"`
	AvgDegree                   float64  `json:"avg_degree" toon:"avg_degree"`
	Density                     float64  `json:"density" toon:"density"`
	Components                  int      `json:"components" toon:"components"`
	LargestComponent            int      `json:"largest_component" toon:"largest_component"`
	StronglyConnectedComponents int      `json:"strongly_connected_components" toon:"strongly_connected_components"`
	CycleCount                  int      `json:"cycle_count" toon:"cycle_count"`
	IsCyclic                    bool     `json:"is_cyclic" toon:"is_cyclic"`
	SelfLoops                   int      `json:"self_loops" toon:"self_loops"`
	Reciprocity                 float64  `json:"reciprocity" toon:"reciprocity"`
	Orphans                     []string `json:"orphans,omitempty" toon:"orphans,omitempty"`
}

// gonumGraph holds the gonum representation and mappings.
type gonumGraph struct {
	directed   *simple.DirectedGraph
	undirected *simple.UndirectedGraph
	nodeIDToID map[string]int64
	idToNodeID map[int64]string
}

// toGonumGraph converts a Graph to gonum graph types. Node IDs follow the
// sorted identifier order.
func toGonumGraph(g *Graph) *gonumGraph {
	gg := &gonumGraph{
		directed:   simple.NewDirectedGraph(),
		undirected: simple.NewUndirectedGraph(),
		nodeIDToID: make(map[string]int64),
		idToNodeID: make(map[int64]string),
	}

	for i, id := range g.Nodes() {
		nid := int64(i)
		gg.nodeIDToID[id] = nid
		gg.idToNodeID[nid] = id
		gg.directed.AddNode(simple.Node(nid))
		gg.undirected.AddNode(simple.Node(nid))
	}

	// gonum simple graphs reject self-loops
	for _, e := range g.Edges() {
		from, to := gg.nodeIDToID[e.From], gg.nodeIDToID[e.To]
		if from == to {
			continue
		}
		gg.directed.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
		if !gg.undirected.HasEdgeBetween(from, to) {
			gg.undirected.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
		}
	}

	return gg
}

// ComputeMetrics calculates per-document and whole-graph measures.
func ComputeMetrics(g *Graph) *Metrics {
	ids := g.Nodes()
	m := &Metrics{Nodes: make([]NodeMetric, 0, len(ids))}
	m.Summary.TotalNodes = len(ids)
	m.Summary.TotalEdges = g.EdgeCount()
	if len(ids) == 0 {
		return m
	}

	gg := toGonumGraph(g)
	pageRank := network.PageRank(gg.directed, 0.85, 1e-6)

	components := topo.ConnectedComponents(gg.undirected)
	// number components by their smallest member for stable output
	for _, comp := range components {
		sort.Slice(comp, func(i, j int) bool { return comp[i].ID() < comp[j].ID() })
	}
	sort.Slice(components, func(i, j int) bool { return components[i][0].ID() < components[j][0].ID() })
	componentOf := make(map[string]int, len(ids))
	for ci, comp := range components {
		for _, n := range comp {
			componentOf[gg.idToNodeID[n.ID()]] = ci
		}
		if len(comp) > m.Summary.LargestComponent {
			m.Summary.LargestComponent = len(comp)
		}
	}
	m.Summary.Components = len(components)

	mutual := 0
	for _, id := range ids {
		m.Nodes = append(m.Nodes, NodeMetric{
			ID:        id,
			InDegree:  g.InDegree(id),
			OutDegree: g.OutDegree(id),
			PageRank:  pageRank[gg.nodeIDToID[id]],
			Component: componentOf[id],
		})
		if g.HasSelfLoop(id) {
			m.Summary.SelfLoops++
		}
		if g.InDegree(id) == 0 && g.OutDegree(id) == 0 {
			m.Summary.Orphans = append(m.Summary.Orphans, id)
		}
		for _, s := range g.Successors(id) {
			if s != id {
				if _, back := g.EdgeWeight(s, id); back {
					mutual++
				}
			}
		}
	}

	n := float64(len(ids))
	m.Summary.AvgDegree = float64(2*g.EdgeCount()) / n
	if len(ids) > 1 {
		m.Summary.Density = float64(g.EdgeCount()-m.Summary.SelfLoops) / (n * (n - 1))
	}
	if nonLoop := g.EdgeCount() - m.Summary.SelfLoops; nonLoop > 0 {
		m.Summary.Reciprocity = float64(mutual) / float64(nonLoop)
	}

	sccs := StronglyConnectedComponents(g)
	m.Summary.StronglyConnectedComponents = len(sccs)
	m.Summary.CycleCount = len(FindCycles(g))
	m.Summary.IsCyclic = m.Summary.CycleCount > 0

	return m
}

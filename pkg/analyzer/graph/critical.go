package graph

import (
	"fmt"
	"math"
)

// WeightFunc returns the weight of an edge given its stored weight.
type WeightFunc func(from, to string, stored float64) float64

// UniformWeight counts every edge as 1.
func UniformWeight(_, _ string, _ float64) float64 { return 1 }

// StoredWeight uses the weight recorded on the edge.
func StoredWeight(_, _ string, stored float64) float64 { return stored }

// WeightError reports an edge weight the longest-path relaxation cannot use.
type WeightError struct {
	From   string
	To     string
	Weight float64
}

func (e *WeightError) Error() string {
	return fmt.Sprintf("edge %s -> %s has invalid weight %g (must be a non-negative number)", e.From, e.To, e.Weight)
}

// Path is a sequence of nodes and its cumulative weight.
type Path struct {
	Nodes  []string `json:"nodes" toon:"nodes"`
	Length float64  `json:"length" toon:"length"`
}

// CriticalPath returns the longest path by cumulative weight. The graph must
// be acyclic; otherwise the *CycleError from TopologicalSort is returned.
// When several predecessors give the same length the smallest identifier is
// kept, and among end nodes of equal length the smallest identifier wins.
// An empty graph yields an empty path.
func CriticalPath(g *Graph, weight WeightFunc) (*Path, error) {
	if weight == nil {
		weight = UniformWeight
	}

	order, err := TopologicalSort(g)
	if err != nil {
		return nil, err
	}
	if len(order) == 0 {
		return &Path{Nodes: []string{}}, nil
	}

	dist := make(map[string]float64, len(order))
	prev := make(map[string]string, len(order))
	for _, v := range order {
		best, from, found := 0.0, "", false
		for _, u := range g.Predecessors(v) {
			stored, _ := g.EdgeWeight(u, v)
			w := weight(u, v, stored)
			if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
				return nil, &WeightError{From: u, To: v, Weight: w}
			}
			if cand := dist[u] + w; !found || cand > best {
				best, from, found = cand, u, true
			}
		}
		dist[v] = best
		if found {
			prev[v] = from
		}
	}

	end := ""
	for _, id := range g.Nodes() {
		if end == "" || dist[id] > dist[end] {
			end = id
		}
	}

	var nodes []string
	for v, ok := end, true; ok; v, ok = prev[v] {
		nodes = append(nodes, v)
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	return &Path{Nodes: nodes, Length: dist[end]}, nil
}

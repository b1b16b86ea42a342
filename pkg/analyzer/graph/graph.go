// Package graph builds the reference graph between documents and runs the
// ordering, cycle and longest-path analyses over it.
//
// Nodes are document identifiers. An edge (a, b) means document a cites or
// requires document b. Every listing method returns identifiers in ascending
// order so that results never depend on map iteration.
package graph

import (
	"fmt"
	"sort"

	"github.com/panbanda/folio/pkg/corpus"
)

// Graph is a weighted directed graph over document identifiers.
// Self-loops are allowed.
type Graph struct {
	nodes map[string]struct{}
	out   map[string]map[string]float64
	in    map[string]map[string]float64
	edges int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]struct{}),
		out:   make(map[string]map[string]float64),
		in:    make(map[string]map[string]float64),
	}
}

// AddNode adds a node if it is not present.
func (g *Graph) AddNode(id string) {
	g.nodes[id] = struct{}{}
}

// HasNode reports whether id is a node.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// AddEdge adds w to the weight of the edge from -> to, creating the edge
// and both endpoints if needed.
func (g *Graph) AddEdge(from, to string, w float64) {
	g.AddNode(from)
	g.AddNode(to)
	if g.out[from] == nil {
		g.out[from] = make(map[string]float64)
	}
	if g.in[to] == nil {
		g.in[to] = make(map[string]float64)
	}
	if _, exists := g.out[from][to]; !exists {
		g.edges++
	}
	g.out[from][to] += w
	g.in[to][from] = g.out[from][to]
}

// SetEdgeWeight replaces the weight of an existing edge.
func (g *Graph) SetEdgeWeight(from, to string, w float64) {
	if _, ok := g.out[from][to]; !ok {
		return
	}
	g.out[from][to] = w
	g.in[to][from] = w
}

// EdgeWeight returns the weight of from -> to.
func (g *Graph) EdgeWeight(from, to string) (float64, bool) {
	w, ok := g.out[from][to]
	return w, ok
}

// Nodes returns every node in ascending order.
func (g *Graph) Nodes() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Successors returns the targets of id's outbound edges.
func (g *Graph) Successors(id string) []string {
	return sortedKeys(g.out[id])
}

// Predecessors returns the sources of id's inbound edges.
func (g *Graph) Predecessors(id string) []string {
	return sortedKeys(g.in[id])
}

// InDegree counts distinct inbound neighbours, including id itself on a self-loop.
func (g *Graph) InDegree(id string) int {
	return len(g.in[id])
}

// OutDegree counts distinct outbound neighbours, including id itself on a self-loop.
func (g *Graph) OutDegree(id string) int {
	return len(g.out[id])
}

// HasSelfLoop reports whether id references itself.
func (g *Graph) HasSelfLoop(id string) bool {
	_, ok := g.out[id][id]
	return ok
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// Edge is a weighted directed edge.
type Edge struct {
	From   string  `json:"from" toon:"from"`
	To     string  `json:"to" toon:"to"`
	Weight float64 `json:"weight" toon:"weight"`
}

// Edges returns every edge ordered by source then target.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.edges)
	for _, from := range g.Nodes() {
		for _, to := range g.Successors(from) {
			edges = append(edges, Edge{From: from, To: to, Weight: g.out[from][to]})
		}
	}
	return edges
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BrokenReference is a reference whose target is not in the corpus.
type BrokenReference struct {
	Source string `json:"source" toon:"source"`
	Target string `json:"target" toon:"target"`
}

// BuildResult is a graph plus the problems found while building it.
type BuildResult struct {
	Graph    *Graph
	Broken   []BrokenReference
	Warnings []string
}

// Build creates the reference graph. Every document becomes a node. Each
// reference to another document adds one to the edge weight unless the
// document declares an explicit weight for that target. References to
// identifiers outside the corpus are reported in Broken and never become
// nodes. Empty identifiers are skipped with a warning.
func Build(docs []*corpus.Document) *BuildResult {
	res := &BuildResult{Graph: New()}
	g := res.Graph

	for _, d := range docs {
		if d.ID == "" {
			res.Warnings = append(res.Warnings, "skipped document with empty identifier")
			continue
		}
		if g.HasNode(d.ID) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("duplicate document identifier %s, references merged", d.ID))
		}
		g.AddNode(d.ID)
	}

	seenBroken := make(map[BrokenReference]bool)
	for _, d := range docs {
		if d.ID == "" {
			continue
		}
		for i, ref := range d.References {
			if ref == "" {
				res.Warnings = append(res.Warnings, fmt.Sprintf("%s: skipped empty reference at position %d", d.ID, i+1))
				continue
			}
			if !g.HasNode(ref) {
				br := BrokenReference{Source: d.ID, Target: ref}
				if !seenBroken[br] {
					seenBroken[br] = true
					res.Broken = append(res.Broken, br)
				}
				continue
			}
			g.AddEdge(d.ID, ref, 1)
		}
		for ref, w := range d.Weights {
			g.SetEdgeWeight(d.ID, ref, w)
		}
	}

	sort.Slice(res.Broken, func(i, j int) bool {
		if res.Broken[i].Source != res.Broken[j].Source {
			return res.Broken[i].Source < res.Broken[j].Source
		}
		return res.Broken[i].Target < res.Broken[j].Target
	})
	return res
}

package tools

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/panbanda/folio/internal/output"
	"github.com/panbanda/folio/pkg/analyzer/graph"
)

// OrderedDocument is one position in a reading order.
type OrderedDocument struct {
	Position int    `json:"position" toon:"position"`
	ID       string `json:"id" toon:"id"`
	Title    string `json:"title" toon:"title"`
}

// Cycle is one strongly connected component that contains a cycle.
type Cycle struct {
	ID        int      `json:"id" toon:"id"`
	Size      int      `json:"size" toon:"size"`
	Documents []string `json:"documents" toon:"documents"`
}

// PathStep is one document on the critical path with its distance from the
// start of the path.
type PathStep struct {
	Position int     `json:"position" toon:"position"`
	ID       string  `json:"id" toon:"id"`
	Title    string  `json:"title" toon:"title"`
	Distance float64 `json:"distance" toon:"distance"`
}

func orderTool() *Tool {
	return &Tool{
		Name:    "order",
		Summary: "Order documents so every document comes before the ones it builds on",
		Description: `Topologically sort the reference graph. A document that cites or requires
another is listed before it; ties go to the smallest identifier.

USE WHEN:
- Planning a reading or publishing order
- Checking that prerequisites form no loop

If the graph has a cycle, the documents that could be ordered are returned and
the cycle is reported as an error.`,
		Handler: runOrder,
	}
}

func runOrder(_ context.Context, env *Env, _ Params) (*output.Result, error) {
	built := env.Graph()
	res := output.NewResult("Topological Order")
	res.Headers = []string{"#", "Document", "Title"}
	addGraphIssues(res, built)

	order, err := graph.TopologicalSort(built.Graph)
	var ce *graph.CycleError
	if errors.As(err, &ce) {
		order = ce.Partial
		res.Fail(cycleIssue(ce, "topological order is incomplete"))
		res.Highlight = ce.Nodes
	} else if err != nil {
		return nil, err
	}

	items := make([]OrderedDocument, len(order))
	for i, id := range order {
		items[i] = OrderedDocument{Position: i + 1, ID: id, Title: env.Title(id)}
		res.Rows = append(res.Rows, []string{strconv.Itoa(i + 1), id, items[i].Title})
	}
	res.Items = items
	res.AddStat("documents", built.Graph.NodeCount())
	res.AddStat("ordered", len(order))
	res.AddStat("acyclic", ce == nil)
	return res, nil
}

func cyclesTool() *Tool {
	return &Tool{
		Name:    "cycles",
		Summary: "Find groups of documents that reference each other in a loop",
		Description: `List the strongly connected components of the reference graph that contain
a cycle, including documents that reference themselves.

USE WHEN:
- A topological order failed
- Auditing circular prerequisites`,
		Handler: runCycles,
	}
}

func runCycles(_ context.Context, env *Env, _ Params) (*output.Result, error) {
	built := env.Graph()
	res := output.NewResult("Reference Cycles")
	res.Headers = []string{"#", "Size", "Documents"}
	addGraphIssues(res, built)

	cycles := graph.FindCycles(built.Graph)
	items := make([]Cycle, len(cycles))
	involved := 0
	for i, comp := range cycles {
		items[i] = Cycle{ID: i + 1, Size: len(comp), Documents: comp}
		involved += len(comp)
		res.Highlight = append(res.Highlight, comp...)
		res.Rows = append(res.Rows, []string{strconv.Itoa(i + 1), strconv.Itoa(len(comp)), strings.Join(comp, ", ")})
	}
	res.Items = items
	res.Graph = graph.NewView(built.Graph, env.Titles())

	res.AddStat("cycles", len(cycles))
	res.AddStat("documents_in_cycles", involved)
	res.AddStat("strongly_connected_components", len(graph.StronglyConnectedComponents(built.Graph)))
	return res, nil
}

func criticalPathTool() *Tool {
	return &Tool{
		Name:    "critical-path",
		Summary: "Find the longest chain of dependent documents",
		Description: `Find the longest path through the acyclic reference graph.

USE WHEN:
- Estimating the deepest prerequisite chain a reader must follow
- Finding which documents gate the most downstream material

weight=uniform counts every reference as 1. weight=edge uses the weights
declared in front matter.`,
		Params: []Param{
			{Name: "weight", Type: TypeString, Description: "Edge weighting.", Enum: []string{"uniform", "edge"}, Default: "uniform"},
		},
		Handler: runCriticalPath,
	}
}

func runCriticalPath(_ context.Context, env *Env, p Params) (*output.Result, error) {
	built := env.Graph()
	mode := p.String("weight", "uniform")
	res := output.NewResult("Critical Path")
	res.Headers = []string{"#", "Document", "Title", "Distance"}
	addGraphIssues(res, built)
	res.AddStat("weight", mode)

	fn := graph.UniformWeight
	if mode == "edge" {
		fn = graph.StoredWeight
	}

	path, err := graph.CriticalPath(built.Graph, fn)
	var (
		ce *graph.CycleError
		we *graph.WeightError
	)
	switch {
	case errors.As(err, &ce):
		res.Items = []PathStep{}
		res.Highlight = ce.Nodes
		res.Fail(cycleIssue(ce, "critical path needs an acyclic graph"))
		return res, nil
	case errors.As(err, &we):
		res.Items = []PathStep{}
		res.Fail(output.Issue{Kind: output.KindInvalidWeight, Message: we.Error(), Source: we.From, Target: we.To})
		return res, nil
	case err != nil:
		return nil, err
	}

	items := make([]PathStep, len(path.Nodes))
	dist := 0.0
	for i, id := range path.Nodes {
		if i > 0 {
			stored, _ := built.Graph.EdgeWeight(path.Nodes[i-1], id)
			dist += fn(path.Nodes[i-1], id, stored)
		}
		items[i] = PathStep{Position: i + 1, ID: id, Title: env.Title(id), Distance: dist}
		res.Rows = append(res.Rows, []string{strconv.Itoa(i + 1), id, items[i].Title, output.FormatFloat(dist)})
	}
	res.Items = items
	res.Highlight = path.Nodes
	res.AddStat("length", path.Length)
	res.AddStat("documents", len(path.Nodes))
	return res, nil
}

func graphTool() *Tool {
	return &Tool{
		Name:    "graph",
		Summary: "Describe the reference graph and its structure",
		Description: `Build the reference graph and report per-document degree, PageRank and
component, plus whole-graph structure.

USE WHEN:
- Getting an overview of how the knowledge base is connected
- Finding hubs and orphaned documents
- Listing broken references

Set metrics=false to list edges instead of per-document metrics.`,
		Params: []Param{
			{Name: "metrics", Type: TypeBoolean, Description: "Report per-document metrics instead of edges.", Default: true},
		},
		Handler: runGraph,
	}
}

func runGraph(_ context.Context, env *Env, p Params) (*output.Result, error) {
	built := env.Graph()
	g := built.Graph
	res := output.NewResult("Reference Graph")
	addGraphIssues(res, built)
	res.Graph = graph.NewView(g, env.Titles())

	if !p.Bool("metrics", true) {
		edges := g.Edges()
		res.Headers = []string{"From", "To", "Weight"}
		for _, e := range edges {
			res.Rows = append(res.Rows, []string{e.From, e.To, output.FormatFloat(e.Weight)})
		}
		res.Items = edges
		res.AddStat("nodes", g.NodeCount())
		res.AddStat("edges", g.EdgeCount())
		res.AddStat("broken_references", len(built.Broken))
		return res, nil
	}

	m := graph.ComputeMetrics(g)
	res.Headers = []string{"Document", "In", "Out", "PageRank", "Component"}
	for _, n := range m.Nodes {
		res.Rows = append(res.Rows, []string{
			n.ID, strconv.Itoa(n.InDegree), strconv.Itoa(n.OutDegree), output.FormatFloat(n.PageRank), strconv.Itoa(n.Component),
		})
	}
	res.Items = m.Nodes

	s := m.Summary
	res.AddStat("nodes", s.TotalNodes)
	res.AddStat("edges", s.TotalEdges)
	res.AddStat("avg_degree", s.AvgDegree)
	res.AddStat("density", s.Density)
	res.AddStat("components", s.Components)
	res.AddStat("largest_component", s.LargestComponent)
	res.AddStat("strongly_connected_components", s.StronglyConnectedComponents)
	res.AddStat("cycles", s.CycleCount)
	res.AddStat("acyclic", !s.IsCyclic)
	res.AddStat("self_loops", s.SelfLoops)
	res.AddStat("reciprocity", s.Reciprocity)
	res.AddStat("orphans", s.Orphans)
	res.AddStat("broken_references", len(built.Broken))
	return res, nil
}

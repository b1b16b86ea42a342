package report

import (
	"time"

	"github.com/panbanda/folio/internal/output"
)

// Page is everything the HTML template needs for one tool result.
type Page struct {
	Title       string
	Metadata    output.Metadata
	GeneratedAt time.Time
	Headers     []string
	Rows        [][]string
	Summary     []SummaryItem
	Warnings    []output.Issue
	Errors      []output.Issue
	Graph       *GraphData
}

// SummaryItem is one formatted summary line.
type SummaryItem struct {
	Label string
	Value any
}

// GraphData is the vis-network dataset embedded in the page.
type GraphData struct {
	Nodes []VisNode `json:"nodes"`
	Edges []VisEdge `json:"edges"`
}

// VisNode is a vis-network node.
type VisNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Title string `json:"title,omitempty"`
	Group string `json:"group,omitempty"`
}

// VisEdge is a vis-network edge.
type VisEdge struct {
	From  string  `json:"from"`
	To    string  `json:"to"`
	Value float64 `json:"value"`
	Label string  `json:"label,omitempty"`
}

// NewPage converts a tool result into template data.
func NewPage(r *output.Result, now time.Time) *Page {
	p := &Page{
		Title:       r.Title,
		Metadata:    r.Metadata,
		GeneratedAt: now,
		Headers:     r.Headers,
		Rows:        r.Rows,
		Warnings:    r.Warnings,
		Errors:      r.Errors,
	}
	for _, s := range r.Summary {
		p.Summary = append(p.Summary, SummaryItem{Label: s.Key, Value: s.Value})
	}
	if r.Graph != nil {
		p.Graph = newGraphData(r)
	}
	return p
}

func newGraphData(r *output.Result) *GraphData {
	highlight := make(map[string]bool, len(r.Highlight))
	for _, id := range r.Highlight {
		highlight[id] = true
	}
	g := &GraphData{
		Nodes: make([]VisNode, 0, len(r.Graph.Nodes)),
		Edges: make([]VisEdge, 0, len(r.Graph.Edges)),
	}
	for _, n := range r.Graph.Nodes {
		label := n.Title
		if label == "" {
			label = n.ID
		}
		node := VisNode{ID: n.ID, Label: label, Title: n.ID, Group: "document"}
		if highlight[n.ID] {
			node.Group = "highlight"
		}
		g.Nodes = append(g.Nodes, node)
	}
	for _, e := range r.Graph.Edges {
		edge := VisEdge{From: e.From, To: e.To, Value: e.Weight}
		if e.Weight != 1 {
			edge.Label = output.FormatFloat(e.Weight)
		}
		g.Edges = append(g.Edges, edge)
	}
	return g
}

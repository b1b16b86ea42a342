package graph

import (
	"fmt"
	"strings"
)

// Node is a document in an exported graph view.
type Node struct {
	ID    string `json:"id" toon:"id"`
	Title string `json:"title,omitempty" toon:"title,omitempty"`
}

// View is a serializable snapshot of the graph for reports and diagrams.
type View struct {
	Nodes []Node `json:"nodes" toon:"nodes"`
	Edges []Edge `json:"edges" toon:"edges"`
}

// NewView snapshots g. titles maps identifiers to display names and may be nil.
func NewView(g *Graph, titles map[string]string) *View {
	v := &View{Nodes: make([]Node, 0, g.NodeCount()), Edges: g.Edges()}
	for _, id := range g.Nodes() {
		v.Nodes = append(v.Nodes, Node{ID: id, Title: titles[id]})
	}
	return v
}

// MermaidOptions configures Mermaid diagram generation.
type MermaidOptions struct {
	MaxNodes  int              `json:"max_nodes" toon:"max_nodes"`
	MaxEdges  int              `json:"max_edges" toon:"max_edges"`
	Direction MermaidDirection `json:"direction" toon:"direction"`
	// Highlight marks nodes to draw in the warning style, e.g. cycle members.
	Highlight map[string]bool `json:"-" toon:"-"`
	// ShowWeights labels edges whose weight is not 1.
	ShowWeights bool `json:"show_weights" toon:"show_weights"`
}

// MermaidDirection specifies the graph direction.
type MermaidDirection string

const (
	DirectionTD MermaidDirection = "TD" // Top-down
	DirectionLR MermaidDirection = "LR" // Left-right
	DirectionBT MermaidDirection = "BT" // Bottom-top
	DirectionRL MermaidDirection = "RL" // Right-left
)

// DefaultMermaidOptions returns sensible defaults.
func DefaultMermaidOptions() MermaidOptions {
	return MermaidOptions{
		MaxNodes:    50,
		MaxEdges:    150,
		Direction:   DirectionLR,
		ShowWeights: true,
	}
}

// ToMermaid generates Mermaid diagram syntax using default options.
func (v *View) ToMermaid() string {
	return v.ToMermaidWithOptions(DefaultMermaidOptions())
}

// ToMermaidWithOptions generates Mermaid diagram syntax with custom options.
func (v *View) ToMermaidWithOptions(opts MermaidOptions) string {
	var b strings.Builder
	direction := opts.Direction
	if direction == "" {
		direction = DirectionTD
	}
	b.WriteString("graph " + string(direction) + "\n")

	nodes := v.Nodes
	edges := v.Edges

	if opts.MaxNodes > 0 && len(nodes) > opts.MaxNodes {
		nodes = nodes[:opts.MaxNodes]
		nodeSet := make(map[string]bool, len(nodes))
		for _, n := range nodes {
			nodeSet[n.ID] = true
		}
		var filtered []Edge
		for _, e := range edges {
			if nodeSet[e.From] && nodeSet[e.To] {
				filtered = append(filtered, e)
			}
		}
		edges = filtered
	}
	if opts.MaxEdges > 0 && len(edges) > opts.MaxEdges {
		edges = edges[:opts.MaxEdges]
	}

	highlighted := false
	for _, node := range nodes {
		label := EscapeMermaidLabel(node.Title)
		if label == "" {
			label = EscapeMermaidLabel(node.ID)
		}
		id := SanitizeMermaidID(node.ID)
		b.WriteString("    " + id + "[\"" + label + "\"]")
		if opts.Highlight[node.ID] {
			b.WriteString(":::cycle")
			highlighted = true
		}
		b.WriteString("\n")
	}

	for _, e := range edges {
		from := SanitizeMermaidID(e.From)
		to := SanitizeMermaidID(e.To)
		arrow := "-->"
		if opts.ShowWeights && e.Weight != 1 {
			arrow = fmt.Sprintf("-->|%g|", e.Weight)
		}
		b.WriteString("    " + from + " " + arrow + " " + to + "\n")
	}

	if highlighted {
		b.WriteString("    classDef cycle fill:#FF6347,stroke:#8B0000\n")
	}

	return b.String()
}

// SanitizeMermaidID makes an ID safe for Mermaid diagrams.
func SanitizeMermaidID(id string) string {
	if id == "" {
		return "empty"
	}
	var result []byte
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}
	// Mermaid IDs cannot start with a digit
	if len(result) > 0 && result[0] >= '0' && result[0] <= '9' {
		result = append([]byte{'n'}, result...)
	}
	return string(result)
}

var mermaidEscaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"<", "&lt;",
	">", "&gt;",
	"|", "&#124;",
	"[", "&#91;",
	"]", "&#93;",
	"{", "&#123;",
	"}", "&#125;",
	"\n", "<br/>",
)

// EscapeMermaidLabel escapes special characters in labels for Mermaid.
func EscapeMermaidLabel(s string) string {
	return mermaidEscaper.Replace(s)
}

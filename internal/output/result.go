package output

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/panbanda/folio/pkg/analyzer/graph"
)

// Issue kinds reported by the tools.
const (
	KindBrokenReference = "broken_reference"
	KindCycle           = "cycle"
	KindInvalidWeight   = "invalid_weight"
	KindCorpus          = "corpus"
	KindGraph           = "graph"
	KindQuery           = "query"
)

// Issue is a structural problem found while running a tool. Issues never
// abort a run; they travel alongside the results.
type Issue struct {
	Kind    string   `json:"kind" toon:"kind"`
	Message string   `json:"message" toon:"message"`
	Source  string   `json:"source,omitempty" toon:"source,omitempty"`
	Target  string   `json:"target,omitempty" toon:"target,omitempty"`
	Nodes   []string `json:"nodes,omitempty" toon:"nodes,omitempty"`
}

// Metadata describes the run that produced a result.
type Metadata struct {
	Tool        string         `json:"tool" toon:"tool"`
	ToolVersion string         `json:"tool_version" toon:"tool_version"`
	CorpusRoot  string         `json:"corpus_root" toon:"corpus_root"`
	CorpusSize  int            `json:"corpus_size" toon:"corpus_size"`
	Timestamp   string         `json:"timestamp" toon:"timestamp"`
	Parameters  map[string]any `json:"parameters" toon:"parameters"`
}

// Stat is one labelled summary value.
type Stat struct {
	Key   string
	Value any
}

// Envelope is the stable machine-readable shape of every tool result.
type Envelope struct {
	Results  any            `json:"results" toon:"results"`
	Metadata Metadata       `json:"metadata" toon:"metadata"`
	Summary  map[string]any `json:"summary" toon:"summary"`
	Warnings []Issue        `json:"warnings" toon:"warnings"`
	Errors   []Issue        `json:"errors" toon:"errors"`
}

// Result is what a tool returns. Items feed the machine formats; Headers
// and Rows are the human table view of the same results.
type Result struct {
	Title    string
	Headers  []string
	Rows     [][]string
	Items    any
	Summary  []Stat
	Warnings []Issue
	Errors   []Issue
	Metadata Metadata

	// Graph is set by graph-shaped tools and drawn in Markdown and HTML.
	Graph *graph.View
	// Highlight marks graph nodes to draw in the warning style.
	Highlight []string
}

// NewResult creates an empty result.
func NewResult(title string) *Result {
	return &Result{Title: title}
}

// AddStat appends a summary value.
func (r *Result) AddStat(key string, value any) {
	r.Summary = append(r.Summary, Stat{Key: key, Value: value})
}

// Stat returns the summary value for key.
func (r *Result) Stat(key string) (any, bool) {
	for _, s := range r.Summary {
		if s.Key == key {
			return s.Value, true
		}
	}
	return nil, false
}

// Warn records a non-fatal issue.
func (r *Result) Warn(issue Issue) {
	r.Warnings = append(r.Warnings, issue)
}

// Fail records an issue that made the results partial or empty.
func (r *Result) Fail(issue Issue) {
	r.Errors = append(r.Errors, issue)
}

// Envelope returns the serializable form. Results is always a list.
func (r *Result) Envelope() *Envelope {
	env := &Envelope{
		Results:  r.Items,
		Metadata: r.Metadata,
		Summary:  make(map[string]any, len(r.Summary)),
		Warnings: r.Warnings,
		Errors:   r.Errors,
	}
	if isNilList(env.Results) {
		env.Results = []any{}
	}
	if env.Metadata.Parameters == nil {
		env.Metadata.Parameters = map[string]any{}
	}
	for _, s := range r.Summary {
		env.Summary[s.Key] = s.Value
	}
	if env.Warnings == nil {
		env.Warnings = []Issue{}
	}
	if env.Errors == nil {
		env.Errors = []Issue{}
	}
	return env
}

func isNilList(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		return rv.IsNil()
	case reflect.Ptr, reflect.Map:
		return rv.IsNil()
	}
	return false
}

// RenderData returns the envelope that the JSON and TOON formatters
// encode.
func (r *Result) RenderData() any {
	return r.Envelope()
}

// RenderText writes the title, summary and data for a terminal.
func (r *Result) RenderText(w io.Writer, colored bool) error {
	if r.Title != "" {
		if colored {
			color.New(color.Bold).Fprintln(w, r.Title)
		} else {
			fmt.Fprintln(w, r.Title)
		}
		fmt.Fprintln(w, strings.Repeat("=", len(r.Title)))
		fmt.Fprintln(w)
	}

	if len(r.Headers) > 0 {
		if len(r.Rows) == 0 {
			fmt.Fprintln(w, "No results.")
			fmt.Fprintln(w)
		} else {
			renderTable(w, r.Headers, r.Rows)
		}
	}

	if len(r.Summary) > 0 {
		width := 0
		for _, s := range r.Summary {
			width = max(width, len(s.Key))
		}
		for _, s := range r.Summary {
			fmt.Fprintf(w, "%-*s  %s\n", width, s.Key, FormatValue(s.Value))
		}
		fmt.Fprintln(w)
	}

	writeIssues := func(label string, issues []Issue, attr color.Attribute) {
		if len(issues) == 0 {
			return
		}
		heading := fmt.Sprintf("%s (%d)", label, len(issues))
		if colored {
			color.New(attr, color.Bold).Fprintln(w, heading)
		} else {
			fmt.Fprintln(w, heading)
		}
		for _, is := range issues {
			fmt.Fprintf(w, "  [%s] %s\n", is.Kind, is.Message)
		}
		fmt.Fprintln(w)
	}
	writeIssues("Warnings", r.Warnings, color.FgYellow)
	writeIssues("Errors", r.Errors, color.FgRed)
	return nil
}

func renderTable(w io.Writer, headers []string, rows [][]string) {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{
				Left:   tw.Off,
				Right:  tw.Off,
				Top:    tw.Off,
				Bottom: tw.Off,
			},
			Settings: tw.Settings{
				Separators: tw.Separators{
					BetweenColumns: tw.Off,
				},
			},
		}),
	)
	table.Header(headers)
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()
	fmt.Fprintln(w)
}

func (r *Result) RenderMarkdown(w io.Writer) error {
	if r.Title != "" {
		fmt.Fprintf(w, "## %s\n\n", r.Title)
	}

	if len(r.Headers) > 0 {
		if len(r.Rows) == 0 {
			fmt.Fprint(w, "_No results._\n\n")
		} else {
			fmt.Fprintf(w, "| %s |\n", strings.Join(r.Headers, " | "))
			seps := make([]string, len(r.Headers))
			for i := range seps {
				seps[i] = "---"
			}
			fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))
			for _, row := range r.Rows {
				cells := make([]string, len(row))
				for i, c := range row {
					cells[i] = strings.ReplaceAll(c, "|", `\|`)
				}
				fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
			}
			fmt.Fprintln(w)
		}
	}

	if len(r.Summary) > 0 {
		fmt.Fprint(w, "### Summary\n\n")
		for _, s := range r.Summary {
			fmt.Fprintf(w, "- **%s**: %s\n", s.Key, FormatValue(s.Value))
		}
		fmt.Fprintln(w)
	}

	if r.Graph != nil && len(r.Graph.Nodes) > 0 {
		opts := graph.DefaultMermaidOptions()
		if len(r.Highlight) > 0 {
			opts.Highlight = make(map[string]bool, len(r.Highlight))
			for _, id := range r.Highlight {
				opts.Highlight[id] = true
			}
		}
		fmt.Fprint(w, "```mermaid\n")
		fmt.Fprint(w, r.Graph.ToMermaidWithOptions(opts))
		fmt.Fprint(w, "```\n\n")
	}

	for _, sec := range []struct {
		label  string
		issues []Issue
	}{{"Warnings", r.Warnings}, {"Errors", r.Errors}} {
		if len(sec.issues) == 0 {
			continue
		}
		fmt.Fprintf(w, "### %s\n\n", sec.label)
		for _, is := range sec.issues {
			fmt.Fprintf(w, "- `%s` %s\n", is.Kind, is.Message)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// FormatValue renders a summary value for humans.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case float64:
		return FormatFloat(x)
	case float32:
		return FormatFloat(float64(x))
	case []string:
		if len(x) == 0 {
			return "-"
		}
		return strings.Join(x, ", ")
	case map[string]int:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%d", k, x[k])
		}
		return strings.Join(parts, ", ")
	case map[string][]string:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + " -> " + strings.Join(x[k], "|")
		}
		if len(parts) == 0 {
			return "-"
		}
		return strings.Join(parts, ", ")
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice {
			if rv.Len() == 0 {
				return "-"
			}
			parts := make([]string, rv.Len())
			for i := range parts {
				parts[i] = fmt.Sprint(rv.Index(i).Interface())
			}
			return strings.Join(parts, "; ")
		}
		return fmt.Sprint(v)
	}
}

// FormatFloat prints at most four decimals without trailing zeros.
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', 4, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

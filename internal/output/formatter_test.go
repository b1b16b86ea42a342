package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/panbanda/folio/pkg/analyzer/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"text", FormatText},
		{"TEXT", FormatText},
		{"", FormatText},
		{"json", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"html", FormatHTML},
		{"toon", FormatTOON},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFormat("yaml")
	var ufe *UnknownFormatError
	require.True(t, errors.As(err, &ufe))
	assert.Equal(t, "yaml", ufe.Name)
}

func TestNewFormatter_ColorOnlyForText(t *testing.T) {
	assert.True(t, NewFormatter(FormatText, io.Discard, true).Colored())
	assert.False(t, NewFormatter(FormatJSON, io.Discard, true).Colored())
	assert.False(t, NewFormatter(FormatText, io.Discard, false).Colored())
}

type hit struct {
	ID    string  `json:"id" toon:"id"`
	Score float64 `json:"score" toon:"score"`
}

func sampleResult() *Result {
	r := NewResult("Search results")
	r.Headers = []string{"Rank", "Document", "Score"}
	r.Rows = [][]string{{"1", "intro.md", "0.91"}, {"2", "graphs.md", "0.42"}}
	r.Items = []hit{{"intro.md", 0.91}, {"graphs.md", 0.42}}
	r.AddStat("matches", 2)
	r.AddStat("query", "dog")
	r.Warn(Issue{Kind: KindBrokenReference, Message: "toposort.md references missing.md", Source: "toposort.md", Target: "missing.md"})
	r.Metadata = Metadata{Tool: "search", ToolVersion: "1.0.0", CorpusRoot: "/kb", CorpusSize: 4, Timestamp: "2026-01-02T03:04:05Z"}
	return r
}

func TestResult_JSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON, &buf, false).Output(sampleResult()))

	var env map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.Len(t, env["results"], 2)
	assert.Equal(t, []any{}, env["errors"])

	meta := env["metadata"].(map[string]any)
	assert.Equal(t, "search", meta["tool"])
	assert.Equal(t, float64(4), meta["corpus_size"])
	assert.Equal(t, map[string]any{}, meta["parameters"])

	summary := env["summary"].(map[string]any)
	assert.Equal(t, float64(2), summary["matches"])

	warnings := env["warnings"].([]any)
	require.Len(t, warnings, 1)
	w := warnings[0].(map[string]any)
	assert.Equal(t, "broken_reference", w["kind"])
	assert.Equal(t, "missing.md", w["target"])
	assert.NotContains(t, w, "nodes")
}

func TestResult_EmptyResultsIsList(t *testing.T) {
	for _, items := range []any{nil, []hit(nil), []string{}} {
		r := NewResult("x")
		r.Items = items
		data, err := json.Marshal(r.RenderData())
		require.NoError(t, err)
		assert.Contains(t, string(data), `"results":[]`)
		assert.Contains(t, string(data), `"warnings":[]`)
	}
}

func TestResult_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatText, &buf, false).Output(sampleResult()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "Search results\n=============="))
	assert.Contains(t, out, "intro.md")
	assert.Contains(t, out, "matches  2")
	assert.Contains(t, out, "Warnings (1)")
	assert.Contains(t, out, "[broken_reference] toposort.md references missing.md")
	assert.NotContains(t, out, "Errors")
}

func TestResult_TextNoRows(t *testing.T) {
	r := NewResult("Cycles")
	r.Headers = []string{"Cycle", "Documents"}
	var buf bytes.Buffer
	require.NoError(t, r.RenderText(&buf, false))
	assert.Contains(t, buf.String(), "No results.")
}

func TestResult_Markdown(t *testing.T) {
	r := sampleResult()
	r.Rows = append(r.Rows, []string{"3", "a|b.md", "0.1"})
	g := graph.New()
	g.AddEdge("a.md", "b.md", 1)
	g.AddEdge("b.md", "a.md", 1)
	r.Graph = graph.NewView(g, nil)
	r.Highlight = []string{"a.md", "b.md"}

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatMarkdown, &buf, false).Output(r))
	out := buf.String()

	assert.Contains(t, out, "## Search results")
	assert.Contains(t, out, "| Rank | Document | Score |")
	assert.Contains(t, out, `a\|b.md`)
	assert.Contains(t, out, "- **matches**: 2")
	assert.Contains(t, out, "```mermaid\ngraph LR\n")
	assert.Contains(t, out, ":::cycle")
	assert.Contains(t, out, "### Warnings")
}

func TestResult_TOON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTOON, &buf, false).Output(sampleResult()))
	out := buf.String()
	assert.Contains(t, out, "intro.md")
	assert.Contains(t, out, "search")
}

type page struct{ *Result }

func (p page) RenderHTML(w io.Writer) error {
	_, err := io.WriteString(w, "<html>"+p.Title+"</html>")
	return err
}

func TestFormatter_HTML(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatHTML, &buf, true)
	require.NoError(t, f.Output(page{sampleResult()}))
	assert.Equal(t, "<html>Search results</html>", buf.String())

	err := f.Output(sampleResult())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be rendered as html")
}

func TestFormatter_RawData(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatMarkdown, &buf, false).Output(map[string]int{"a": 1}))
	assert.Contains(t, buf.String(), "```json")

	buf.Reset()
	require.NoError(t, NewFormatter(FormatText, &buf, false).Output(map[string]int{"a": 1}))
	assert.JSONEq(t, `{"a":1}`, buf.String())
}

type stringer string

func (s stringer) String() string { return "<" + string(s) + ">" }

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "-"},
		{1.5, "1.5"},
		{2.0, "2"},
		{0.123456, "0.1235"},
		{-0.00001, "0"},
		{[]string{"a", "b"}, "a, b"},
		{[]string{}, "-"},
		{map[string]int{"b": 2, "a": 1}, "a=1, b=2"},
		{7, "7"},
		{true, "true"},
		{map[string][]string{"grapx": {"grape", "graph"}}, "grapx -> grape|graph"},
		{[]stringer{"a", "b"}, "<a>; <b>"},
		{[]int{}, "-"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.in))
	}
}

func TestResult_Stat(t *testing.T) {
	r := sampleResult()
	v, ok := r.Stat("query")
	assert.True(t, ok)
	assert.Equal(t, "dog", v)
	_, ok = r.Stat("missing")
	assert.False(t, ok)
}

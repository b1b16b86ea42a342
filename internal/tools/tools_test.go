package tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/panbanda/folio/internal/output"
	"github.com/panbanda/folio/internal/testutil"
	"github.com/panbanda/folio/pkg/analyzer/citation"
	"github.com/panbanda/folio/pkg/analyzer/duplicates"
	"github.com/panbanda/folio/pkg/analyzer/search"
	"github.com/panbanda/folio/pkg/config"
	"github.com/panbanda/folio/pkg/corpus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadEnv(t *testing.T, root string) *Env {
	t.Helper()
	cfg := config.DefaultConfig()
	c, err := corpus.Load(context.Background(), root, cfg)
	require.NoError(t, err)
	env := NewEnv(c, cfg, "test")
	env.Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return env
}

func sampleEnv(t *testing.T) *Env {
	return loadEnv(t, testutil.Corpus(t))
}

func run(t *testing.T, env *Env, name string, params map[string]any) *output.Result {
	t.Helper()
	res, err := Builtin().Run(context.Background(), name, env, params)
	require.NoError(t, err)
	return res
}

func stat(t *testing.T, res *output.Result, key string) any {
	t.Helper()
	v, ok := res.Stat(key)
	require.True(t, ok, "missing stat %s", key)
	return v
}

func TestBuiltinNames(t *testing.T) {
	assert.Equal(t, []string{
		"citations", "critical-path", "cycles", "duplicates", "graph", "order", "search", "stats", "suggest",
	}, Builtin().Names())
}

func TestBuiltinDescriptions(t *testing.T) {
	for _, tool := range Builtin().Tools() {
		assert.NotEmpty(t, tool.Summary, tool.Name)
		assert.Contains(t, tool.Description, "USE WHEN:", tool.Name)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	tool := &Tool{Name: "x", Handler: runOrder}
	require.NoError(t, r.Register(tool))
	assert.Error(t, r.Register(&Tool{Name: "x", Handler: runOrder}))
	assert.Error(t, r.Register(&Tool{Name: "y"}))
}

func TestValidate(t *testing.T) {
	r := Builtin()

	tests := []struct {
		name   string
		tool   string
		params map[string]any
		param  string
	}{
		{"missing required", "search", map[string]any{}, "query"},
		{"empty query", "search", map[string]any{"query": ""}, "query"},
		{"b above range", "search", map[string]any{"query": "x", "b": 1.5}, "b"},
		{"negative k1", "search", map[string]any{"query": "x", "k1": -1}, "k1"},
		{"limit zero", "search", map[string]any{"query": "x", "limit": 0}, "limit"},
		{"wrong type", "search", map[string]any{"query": "x", "limit": "ten"}, "limit"},
		{"unknown parameter", "order", map[string]any{"depth": 3}, "depth"},
		{"bad enum", "critical-path", map[string]any{"weight": "heavy"}, "weight"},
		{"threshold zero", "duplicates", map[string]any{"threshold": 0}, "threshold"},
		{"limit overflow", "search", map[string]any{"query": "x", "limit": 1e20}, "limit"},
		{"pairs overflow", "citations", map[string]any{"pairs": 1e19}, "pairs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Validate(tt.tool, tt.params)
			require.Error(t, err)
			var pe *ParamError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.tool, pe.Tool)
			assert.Equal(t, tt.param, pe.Param)
			assert.NotEmpty(t, pe.Reason)
		})
	}
}

func TestValidateNormalizesNumbers(t *testing.T) {
	p, err := Builtin().Validate("search", map[string]any{"query": "graph", "limit": 3, "b": 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), p["limit"])
	assert.Equal(t, 1.0, p["b"])
	assert.Equal(t, 3, p.Int("limit", 10))
	assert.Equal(t, 10, p.Int("missing", 10))
}

func TestValidateWholeFloatLimit(t *testing.T) {
	p, err := Builtin().Validate("search", map[string]any{"query": "graph", "limit": 1000.0})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), p["limit"])
}

func TestUnknownTool(t *testing.T) {
	_, err := Builtin().Run(context.Background(), "nope", sampleEnv(t), nil)
	var ut *UnknownToolError
	require.ErrorAs(t, err, &ut)
	assert.Equal(t, "nope", ut.Name)
	assert.Contains(t, ut.Known, "search")
}

func TestParseArgs(t *testing.T) {
	tool, err := Builtin().Lookup("search")
	require.NoError(t, err)

	args, err := tool.ParseArgs([]string{"query=graph theory", "limit=5", "b=0.5", "fuzzy=true"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"query": "graph theory", "limit": int64(5), "b": 0.5, "fuzzy": true}, args)

	_, err = tool.ParseArgs([]string{"limit=five"})
	assert.True(t, IsParamError(err))

	_, err = tool.ParseArgs([]string{"novalue"})
	assert.True(t, IsParamError(err))

	args, err = tool.ParseArgs([]string{"other=1"})
	require.NoError(t, err)
	assert.Equal(t, "1", args["other"])
}

func TestRunMetadata(t *testing.T) {
	env := sampleEnv(t)
	res := run(t, env, "order", nil)

	md := res.Metadata
	assert.Equal(t, "order", md.Tool)
	assert.Equal(t, "test", md.ToolVersion)
	assert.Equal(t, 4, md.CorpusSize)
	assert.Equal(t, env.Corpus.Root, md.CorpusRoot)
	assert.Equal(t, "2026-01-02T03:04:05Z", md.Timestamp)
	assert.Empty(t, md.Parameters)

	envelope := res.Envelope()
	assert.NotNil(t, envelope.Errors)
	assert.NotNil(t, envelope.Metadata.Parameters)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Builtin().Run(ctx, "order", sampleEnv(t), nil)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestOrder(t *testing.T) {
	res := run(t, sampleEnv(t), "order", nil)

	items := res.Items.([]OrderedDocument)
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	assert.Equal(t, []string{"search.md", "toposort.md", "graphs.md", "intro.md"}, ids)
	assert.Equal(t, "Search", items[0].Title)
	assert.Empty(t, res.Errors)
	assert.Equal(t, true, stat(t, res, "acyclic"))

	require.Len(t, res.Warnings, 1)
	w := res.Warnings[0]
	assert.Equal(t, output.KindBrokenReference, w.Kind)
	assert.Equal(t, "toposort.md", w.Source)
	assert.Equal(t, "missing.md", w.Target)
}

var cyclicCorpus = map[string]string{
	"a.md": "---\nprerequisites: [b]\n---\nAlpha.\n",
	"b.md": "---\nprerequisites: [a]\n---\nBeta.\n",
	"c.md": "---\nprerequisites: [a]\n---\nGamma.\n",
	"d.md": "Delta.\n",
}

func cyclicEnv(t *testing.T) *Env {
	root := t.TempDir()
	testutil.CreateFileTree(t, root, cyclicCorpus)
	return loadEnv(t, root)
}

func TestOrderWithCycle(t *testing.T) {
	res := run(t, cyclicEnv(t), "order", nil)

	items := res.Items.([]OrderedDocument)
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	assert.Equal(t, []string{"c.md", "d.md"}, ids)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, output.KindCycle, res.Errors[0].Kind)
	assert.Equal(t, []string{"a.md", "b.md"}, res.Errors[0].Nodes)
	assert.Equal(t, false, stat(t, res, "acyclic"))
}

func TestCycles(t *testing.T) {
	res := run(t, cyclicEnv(t), "cycles", nil)
	items := res.Items.([]Cycle)
	require.Len(t, items, 1)
	assert.Equal(t, []string{"a.md", "b.md"}, items[0].Documents)
	assert.Equal(t, 2, items[0].Size)
	assert.Equal(t, []string{"a.md", "b.md"}, res.Highlight)
	require.NotNil(t, res.Graph)
	assert.Len(t, res.Graph.Nodes, 4)

	res = run(t, sampleEnv(t), "cycles", nil)
	assert.Empty(t, res.Items.([]Cycle))
	assert.Equal(t, 0, stat(t, res, "cycles"))
}

func TestCriticalPath(t *testing.T) {
	res := run(t, sampleEnv(t), "critical-path", nil)

	items := res.Items.([]PathStep)
	require.Len(t, items, 3)
	assert.Equal(t, "search.md", items[0].ID)
	assert.Equal(t, "graphs.md", items[1].ID)
	assert.Equal(t, "intro.md", items[2].ID)
	assert.Equal(t, 0.0, items[0].Distance)
	assert.Equal(t, 2.0, items[2].Distance)
	assert.Equal(t, 2.0, stat(t, res, "length"))
	assert.Equal(t, "uniform", stat(t, res, "weight"))
}

func TestCriticalPathWithCycle(t *testing.T) {
	res := run(t, cyclicEnv(t), "critical-path", nil)
	assert.Empty(t, res.Items.([]PathStep))
	require.Len(t, res.Errors, 1)
	assert.Equal(t, output.KindCycle, res.Errors[0].Kind)
}

func TestCriticalPathInvalidWeight(t *testing.T) {
	root := t.TempDir()
	testutil.CreateFileTree(t, root, map[string]string{
		"a.md": "---\nprerequisites: [b]\nweights:\n  b: -2\n---\nAlpha.\n",
		"b.md": "Beta.\n",
	})
	env := loadEnv(t, root)

	res := run(t, env, "critical-path", map[string]any{"weight": "edge"})
	assert.Empty(t, res.Items.([]PathStep))
	require.Len(t, res.Errors, 1)
	assert.Equal(t, output.KindInvalidWeight, res.Errors[0].Kind)
	assert.Equal(t, "a.md", res.Errors[0].Source)

	res = run(t, env, "critical-path", map[string]any{"weight": "uniform"})
	assert.Empty(t, res.Errors)
	assert.Len(t, res.Items.([]PathStep), 2)
}

func TestSearch(t *testing.T) {
	res := run(t, sampleEnv(t), "search", map[string]any{"query": "algorithm"})

	hits := res.Items.([]SearchHit)
	require.Len(t, hits, 1)
	assert.Equal(t, "toposort.md", hits[0].ID)
	assert.Equal(t, "Topological Sorting", hits[0].Title)
	assert.Equal(t, 1, hits[0].Rank)
	assert.Positive(t, hits[0].Score)
	assert.Equal(t, []string{"algorithm"}, hits[0].Terms)
	assert.Equal(t, 1, stat(t, res, "matches"))
}

func TestSearchLimitAndOrder(t *testing.T) {
	res := run(t, sampleEnv(t), "search", map[string]any{"query": "graph", "limit": 1})
	hits := res.Items.([]SearchHit)
	require.Len(t, hits, 1)
	assert.Equal(t, 1, stat(t, res, "returned"))
	assert.GreaterOrEqual(t, stat(t, res, "matches").(int), 2)
}

func TestSearchNoTerms(t *testing.T) {
	res := run(t, sampleEnv(t), "search", map[string]any{"query": "?!"})
	assert.Empty(t, res.Items.([]SearchHit))
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, output.KindQuery, res.Warnings[0].Kind)
}

func TestSearchFuzzy(t *testing.T) {
	env := sampleEnv(t)

	res := run(t, env, "search", map[string]any{"query": "algoritm"})
	assert.Empty(t, res.Items.([]SearchHit))

	res = run(t, env, "search", map[string]any{"query": "algoritm", "fuzzy": true})
	hits := res.Items.([]SearchHit)
	require.Len(t, hits, 1)
	assert.Equal(t, "toposort.md", hits[0].ID)
	assert.Equal(t, map[string][]string{"algoritm": {"algorithm"}}, stat(t, res, "expansions"))
}

func TestSuggest(t *testing.T) {
	res := run(t, sampleEnv(t), "suggest", map[string]any{"term": "Algoritm"})
	sugg := res.Items.([]search.Suggestion)
	require.NotEmpty(t, sugg)
	assert.Equal(t, "algorithm", sugg[0].Term)
	assert.Equal(t, 1, sugg[0].Distance)
	assert.Equal(t, "algoritm", stat(t, res, "term"))
}

func TestSuggestRejectsPhrase(t *testing.T) {
	_, err := Builtin().Run(context.Background(), "suggest", sampleEnv(t), map[string]any{"term": "graph theory"})
	require.Error(t, err)
	assert.True(t, IsParamError(err))

	var pe *ParamError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "term", pe.Param)
}

func TestCitations(t *testing.T) {
	res := run(t, sampleEnv(t), "citations", nil)

	items := res.Items.([]CitedDocument)
	require.Len(t, items, 4)
	assert.Equal(t, "intro.md", items[0].ID)
	assert.Equal(t, 3, items[0].Citations)
	assert.True(t, items[0].InHCore)
	assert.Equal(t, "graphs.md", items[1].ID)
	assert.Equal(t, 2, items[1].Citations)
	assert.True(t, items[1].InHCore)
	assert.False(t, items[2].InHCore)

	assert.Equal(t, 2, stat(t, res, "h_index"))
	assert.Equal(t, 5, stat(t, res, "total_citations"))
	assert.InDelta(t, 1.25, stat(t, res, "impact_factor"), 1e-9)
	assert.Equal(t, "intro.md", stat(t, res, "most_cited"))

	co := stat(t, res, "co_citations").([]citation.Pair)
	require.NotEmpty(t, co)
	assert.Equal(t, citation.Pair{A: "graphs.md", B: "intro.md", Count: 2}, co[0])

	res = run(t, sampleEnv(t), "citations", map[string]any{"top": 1, "exclude_isolated": true})
	assert.Len(t, res.Items.([]CitedDocument), 1)
	assert.Equal(t, 4, stat(t, res, "documents_counted"))
}

func TestDuplicates(t *testing.T) {
	root := t.TempDir()
	body := "The reference graph links every note to the notes it builds on and cites.\n"
	testutil.CreateFileTree(t, root, map[string]string{
		"a.md": body,
		"b.md": body,
		"c.md": "Something else entirely about cooking pasta at home tonight.\n",
	})
	res := run(t, loadEnv(t, root), "duplicates", nil)

	pairs := res.Items.([]duplicates.Pair)
	require.Len(t, pairs, 1)
	assert.Equal(t, "a.md", pairs[0].A)
	assert.Equal(t, "b.md", pairs[0].B)
	assert.Equal(t, duplicates.KindExact, pairs[0].Kind)
	assert.Equal(t, 1, stat(t, res, "exact_pairs"))

	groups := stat(t, res, "groups").([]duplicates.Group)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"a.md", "b.md"}, groups[0].Documents)
}

func TestGraph(t *testing.T) {
	env := sampleEnv(t)

	res := run(t, env, "graph", nil)
	assert.Len(t, res.Items, 4)
	assert.Equal(t, 4, stat(t, res, "nodes"))
	assert.Equal(t, 5, stat(t, res, "edges"))
	assert.Equal(t, 1, stat(t, res, "broken_references"))
	assert.Equal(t, true, stat(t, res, "acyclic"))
	require.NotNil(t, res.Graph)
	assert.Len(t, res.Graph.Edges, 5)

	res = run(t, env, "graph", map[string]any{"metrics": false})
	assert.Len(t, res.Rows, 5)
	assert.Equal(t, []string{"From", "To", "Weight"}, res.Headers)
}

func TestStats(t *testing.T) {
	res := run(t, sampleEnv(t), "stats", map[string]any{"top": 3})

	items := res.Items.([]DocumentStats)
	require.Len(t, items, 4)
	assert.Equal(t, "graphs.md", items[0].ID)
	assert.Equal(t, []string{"basics", "graphs"}, items[0].Tags)
	assert.Equal(t, 4, stat(t, res, "documents"))
	assert.Len(t, stat(t, res, "top_terms"), 3)
	assert.Equal(t, map[string]int{"basics": 2, "graphs": 2}, stat(t, res, "tags"))
	assert.Positive(t, stat(t, res, "estimated_tokens"))
}

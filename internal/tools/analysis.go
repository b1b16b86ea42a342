package tools

import (
	"context"
	"strconv"
	"strings"

	"github.com/panbanda/folio/internal/output"
	"github.com/panbanda/folio/pkg/analyzer/citation"
	"github.com/panbanda/folio/pkg/analyzer/duplicates"
	"github.com/panbanda/folio/pkg/stats"
	"github.com/panbanda/folio/pkg/tokenize"
)

// CitedDocument is one row of the citation report.
type CitedDocument struct {
	Rank       int    `json:"rank" toon:"rank"`
	ID         string `json:"id" toon:"id"`
	Title      string `json:"title" toon:"title"`
	Citations  int    `json:"citations" toon:"citations"`
	References int    `json:"references" toon:"references"`
	InHCore    bool   `json:"in_h_core" toon:"in_h_core"`
}

// DocumentStats describes the size and connectivity of one document.
type DocumentStats struct {
	ID         string   `json:"id" toon:"id"`
	Title      string   `json:"title" toon:"title"`
	Words      int      `json:"words" toon:"words"`
	Tokens     int      `json:"tokens" toon:"tokens"`
	References int      `json:"references" toon:"references"`
	Tags       []string `json:"tags" toon:"tags"`
}

func citationsTool() *Tool {
	return &Tool{
		Name:    "citations",
		Summary: "Measure how documents cite each other",
		Description: `Compute citation counts, the corpus h-index and i10-index, impact factor,
co-citation (pairs cited together) and bibliographic coupling (pairs citing
the same sources).

USE WHEN:
- Finding the foundational documents everything else relies on
- Spotting related documents that do not link to each other
- Tracking how densely the knowledge base is interlinked`,
		Params: []Param{
			{Name: "top", Type: TypeInteger, Description: "Number of documents to list. 0 lists all.", Minimum: bound(0)},
			{Name: "exclude_isolated", Type: TypeBoolean, Description: "Leave documents without citations in either direction out of the impact factor."},
			{Name: "exclude_self", Type: TypeBoolean, Description: "Ignore self-citations."},
			{Name: "pairs", Type: TypeInteger, Description: "Number of co-citation and coupling pairs to report. 0 reports all.", Minimum: bound(0)},
		},
		Handler: runCitations,
	}
}

func runCitations(_ context.Context, env *Env, p Params) (*output.Result, error) {
	built := env.Graph()
	cfg := env.Config.Citations
	opts := citation.Options{
		ExcludeIsolated:      p.Bool("exclude_isolated", cfg.ExcludeIsolated),
		ExcludeSelfCitations: p.Bool("exclude_self", cfg.ExcludeSelf),
	}
	r := citation.Compute(built.Graph, opts)

	res := output.NewResult("Citation Analysis")
	res.Headers = []string{"#", "Document", "Citations", "References", "h-core"}
	addGraphIssues(res, built)

	docs := limit(r.Documents, p.Int("top", 0))
	items := make([]CitedDocument, len(docs))
	for i, d := range docs {
		items[i] = CitedDocument{
			Rank: i + 1, ID: d.ID, Title: env.Title(d.ID),
			Citations: d.Citations, References: d.References, InHCore: d.InHCore,
		}
		core := ""
		if d.InHCore {
			core = "yes"
		}
		res.Rows = append(res.Rows, []string{
			strconv.Itoa(i + 1), d.ID, strconv.Itoa(d.Citations), strconv.Itoa(d.References), core,
		})
	}
	res.Items = items

	pairs := p.Int("pairs", cfg.Pairs)
	s := r.Summary
	res.AddStat("documents", s.Documents)
	res.AddStat("total_citations", s.TotalCitations)
	res.AddStat("h_index", s.HIndex)
	res.AddStat("i10_index", s.I10Index)
	res.AddStat("impact_factor", s.ImpactFactor)
	res.AddStat("documents_counted", s.DocumentsCounted)
	res.AddStat("most_cited", s.MostCited)
	res.AddStat("co_citations", limit(r.CoCitations, pairs))
	res.AddStat("coupling", limit(r.Coupling, pairs))
	return res, nil
}

func duplicatesTool() *Tool {
	return &Tool{
		Name:    "duplicates",
		Summary: "Find identical and near-identical documents",
		Description: `Compare document bodies by word shingles and report pairs whose Jaccard
similarity reaches the threshold, plus groups of mutually similar documents.
Identical bodies are reported as exact duplicates.

USE WHEN:
- Cleaning up copied or forked notes
- Merging documents that drifted apart from a common draft`,
		Params: []Param{
			{Name: "threshold", Type: TypeNumber, Description: "Minimum Jaccard similarity in (0,1].", Minimum: bound(0), ExclusiveMinimum: true, Maximum: bound(1)},
			{Name: "shingle_size", Type: TypeInteger, Description: "Words per shingle.", Minimum: bound(1)},
		},
		Handler: runDuplicates,
	}
}

func runDuplicates(_ context.Context, env *Env, p Params) (*output.Result, error) {
	cfg := env.Config.Duplicates
	a := duplicates.New(
		duplicates.WithThreshold(p.Float("threshold", cfg.Threshold)),
		duplicates.WithShingleSize(p.Int("shingle_size", cfg.ShingleSize)),
	)
	analysis := a.Analyze(env.Corpus.Documents)

	res := output.NewResult("Duplicate Documents")
	res.Headers = []string{"Document A", "Document B", "Kind", "Similarity"}
	for _, pair := range analysis.Pairs {
		res.Rows = append(res.Rows, []string{pair.A, pair.B, pair.Kind.String(), output.FormatFloat(pair.Similarity)})
	}
	res.Items = analysis.Pairs

	s := analysis.Summary
	res.AddStat("threshold", analysis.Threshold)
	res.AddStat("documents_scanned", s.DocumentsScanned)
	res.AddStat("exact_pairs", s.ExactPairs)
	res.AddStat("near_pairs", s.NearPairs)
	res.AddStat("duplicate_documents", s.DuplicateDocuments)
	res.AddStat("avg_similarity", s.AvgSimilarity)
	res.AddStat("groups", analysis.Groups)
	return res, nil
}

func statsTool() *Tool {
	return &Tool{
		Name:    "stats",
		Summary: "Summarize corpus size, vocabulary and tags",
		Description: `Report per-document size and reference counts with corpus-wide totals,
length distribution, the most frequent terms, tag usage and an estimate of
how much of an LLM context window the corpus would fill.

USE WHEN:
- Getting oriented in an unfamiliar knowledge base
- Deciding whether the whole corpus fits in a model context`,
		Params: []Param{
			{Name: "top", Type: TypeInteger, Description: "Number of frequent terms to report.", Minimum: bound(1), Default: 10},
		},
		Handler: runStats,
	}
}

func runStats(_ context.Context, env *Env, p Params) (*output.Result, error) {
	idx := env.Index()
	tok := env.Tokenizer()

	res := output.NewResult("Corpus Statistics")
	res.Headers = []string{"Document", "Words", "Tokens", "References", "Tags"}

	items := make([]DocumentStats, 0, env.Corpus.Len())
	lengths := make([]float64, 0, env.Corpus.Len())
	tags := make(map[string]int)
	var words, estimated int
	for _, d := range env.Corpus.Documents {
		n := len(tokenize.Split(d.Body))
		ds := DocumentStats{
			ID:         d.ID,
			Title:      d.Title,
			Words:      n,
			Tokens:     len(tok.Tokens(d.Text)),
			References: len(d.References),
			Tags:       d.Tags,
		}
		if ds.Tags == nil {
			ds.Tags = []string{}
		}
		items = append(items, ds)
		lengths = append(lengths, float64(n))
		words += n
		estimated += output.EstimateTokens(d.Body)
		for _, t := range d.Tags {
			tags[t]++
		}
		res.Rows = append(res.Rows, []string{
			d.ID, strconv.Itoa(n), strconv.Itoa(ds.Tokens), strconv.Itoa(ds.References), strings.Join(d.Tags, ", "),
		})
	}
	res.Items = items

	terms := idx.TopTerms(p.Int("top", 10))
	top := make([]string, len(terms))
	for i, t := range terms {
		top[i] = t.Term + " (" + strconv.Itoa(t.DocFreq) + ")"
	}

	dist := stats.Describe(lengths)
	budget := output.Budget(estimated, output.DefaultBudget)

	res.AddStat("documents", env.Corpus.Len())
	res.AddStat("words", words)
	res.AddStat("vocabulary", len(idx.Vocabulary()))
	res.AddStat("avg_words", dist.Mean)
	res.AddStat("median_words", dist.Median)
	res.AddStat("p90_words", dist.P90)
	res.AddStat("min_words", dist.Min)
	res.AddStat("max_words", dist.Max)
	res.AddStat("top_terms", top)
	res.AddStat("tags", tags)
	res.AddStat("tag_count", len(tags))
	res.AddStat("estimated_tokens", budget.Tokens)
	res.AddStat("context_usage_percent", budget.UsagePercent)
	res.AddStat("context_budget", budget.BudgetLabel)
	return res, nil
}

package tools

import (
	"context"
	"strconv"
	"strings"

	"github.com/panbanda/folio/internal/output"
	"github.com/panbanda/folio/pkg/analyzer/search"
)

// SearchHit is one ranked document in search output.
type SearchHit struct {
	Rank  int      `json:"rank" toon:"rank"`
	ID    string   `json:"id" toon:"id"`
	Title string   `json:"title" toon:"title"`
	Score float64  `json:"score" toon:"score"`
	Terms []string `json:"matched_terms" toon:"matched_terms"`
}

func searchTool() *Tool {
	return &Tool{
		Name:    "search",
		Summary: "Rank documents against a free-text query with BM25",
		Description: `Rank documents by BM25 relevance to a free-text query.

USE WHEN:
- Finding notes about a topic
- Checking whether the knowledge base already covers something
- Locating a document whose name you do not remember

Set fuzzy=true to match misspelled query terms against the corpus vocabulary.`,
		Params: []Param{
			{Name: "query", Type: TypeString, Description: "Free-text query.", Required: true, MinLength: 1},
			{Name: "limit", Type: TypeInteger, Description: "Maximum number of results. Defaults to search.limit.", Minimum: bound(1)},
			{Name: "k1", Type: TypeNumber, Description: "BM25 term-frequency saturation. Default 1.5.", Minimum: bound(0)},
			{Name: "b", Type: TypeNumber, Description: "BM25 length normalization in [0,1]. Default 0.75.", Minimum: bound(0), Maximum: bound(1)},
			{Name: "fuzzy", Type: TypeBoolean, Description: "Expand query terms missing from the corpus to their closest matches.", Default: false},
			{Name: "fuzzy_threshold", Type: TypeInteger, Description: "Maximum edit distance for long terms when fuzzy is set.", Minimum: bound(0), Maximum: bound(5)},
		},
		Handler: runSearch,
	}
}

func runSearch(_ context.Context, env *Env, p Params) (*output.Result, error) {
	cfg := env.Config.Search
	query := p.String("query", "")
	opts := search.BM25Options{K1: p.Float("k1", cfg.K1), B: p.Float("b", cfg.B)}
	ranker := search.NewRanker(env.Index(), env.Tokenizer(), opts)

	res := output.NewResult("Search: " + query)
	res.Headers = []string{"Rank", "Document", "Title", "Score", "Matched"}

	terms := ranker.QueryTerms(query)
	if len(terms) == 0 {
		res.Items = []SearchHit{}
		res.Warn(output.Issue{Kind: output.KindQuery, Message: "query has no searchable terms"})
		res.AddStat("query", query)
		res.AddStat("matches", 0)
		return res, nil
	}

	var expansions map[string][]string
	if p.Bool("fuzzy", false) {
		policy := env.FuzzyPolicy()
		policy.Threshold = p.Int("fuzzy_threshold", policy.Threshold)
		terms, expansions = search.NewFuzzyMatcher(env.Index(), policy).Expand(terms)
	}

	hits := ranker.RankTerms(terms)
	total := len(hits)
	hits = limit(hits, p.Int("limit", cfg.Limit))

	items := make([]SearchHit, len(hits))
	for i, h := range hits {
		items[i] = SearchHit{Rank: i + 1, ID: h.ID, Title: env.Title(h.ID), Score: h.Score, Terms: h.Terms}
		res.Rows = append(res.Rows, []string{
			strconv.Itoa(i + 1), h.ID, items[i].Title, output.FormatFloat(h.Score), strings.Join(h.Terms, ", "),
		})
	}
	res.Items = items

	res.AddStat("query", query)
	res.AddStat("terms", terms)
	res.AddStat("matches", total)
	res.AddStat("returned", len(items))
	res.AddStat("k1", opts.K1)
	res.AddStat("b", opts.B)
	if len(expansions) > 0 {
		res.AddStat("expansions", expansions)
	}
	return res, nil
}

func suggestTool() *Tool {
	return &Tool{
		Name:    "suggest",
		Summary: "Suggest corpus terms close to a possibly misspelled term",
		Description: `List vocabulary terms within a small edit distance of the given term.

USE WHEN:
- A search returned nothing and the query may be misspelled
- Checking how a concept is spelled across the knowledge base

Results are ordered by edit distance, then by how many documents use the term.`,
		Params: []Param{
			{Name: "term", Type: TypeString, Description: "Term to match.", Required: true, MinLength: 1},
			{Name: "limit", Type: TypeInteger, Description: "Maximum number of suggestions. Defaults to search.limit.", Minimum: bound(1)},
			{Name: "threshold", Type: TypeInteger, Description: "Maximum edit distance. Defaults to the length-based fuzzy policy.", Minimum: bound(0), Maximum: bound(10)},
		},
		Handler: runSuggest,
	}
}

func runSuggest(_ context.Context, env *Env, p Params) (*output.Result, error) {
	raw := p.String("term", "")
	res := output.NewResult("Suggestions: " + raw)
	res.Headers = []string{"Term", "Distance", "Documents"}

	term, err := env.Tokenizer().Term(raw)
	if err != nil {
		return nil, &ParamError{Tool: "suggest", Param: "term", Reason: "must be a single word: " + err.Error()}
	}
	if term == "" {
		res.Items = []search.Suggestion{}
		res.Warn(output.Issue{Kind: output.KindQuery, Message: "term has no searchable characters"})
		return res, nil
	}

	policy := env.FuzzyPolicy()
	maxDist := p.Int("threshold", policy.MaxDistance(term))
	suggestions := search.NewFuzzyMatcher(env.Index(), policy).Suggest(term, maxDist, p.Int("limit", env.Config.Search.Limit))
	for _, s := range suggestions {
		res.Rows = append(res.Rows, []string{s.Term, strconv.Itoa(s.Distance), strconv.Itoa(s.DocFreq)})
	}
	res.Items = suggestions
	res.AddStat("term", term)
	res.AddStat("max_distance", maxDist)
	res.AddStat("suggestions", len(suggestions))
	return res, nil
}

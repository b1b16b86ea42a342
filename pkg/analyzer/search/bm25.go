package search

import (
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/panbanda/folio/pkg/tokenize"
)

// BM25Options holds the ranking parameters.
type BM25Options struct {
	// K1 controls term-frequency saturation.
	K1 float64
	// B controls document-length normalization, 0 disables it.
	B float64
}

// DefaultBM25Options returns k1=1.5, b=0.75.
func DefaultBM25Options() BM25Options {
	return BM25Options{K1: 1.5, B: 0.75}
}

// Hit is one ranked document.
type Hit struct {
	ID    string   `json:"id" toon:"id"`
	Score float64  `json:"score" toon:"score"`
	Terms []string `json:"matched_terms" toon:"matched_terms"`
}

// Ranker scores documents with Okapi BM25.
type Ranker struct {
	index *TermIndex
	tok   *tokenize.Tokenizer
	opts  BM25Options
}

// NewRanker creates a ranker over a prebuilt index. The tokenizer must be
// the one the index was built with.
func NewRanker(index *TermIndex, tok *tokenize.Tokenizer, opts BM25Options) *Ranker {
	if tok == nil {
		tok = tokenize.New()
	}
	return &Ranker{index: index, tok: tok, opts: opts}
}

// QueryTerms tokenizes a query and drops repeated terms, keeping first
// occurrence order.
func (r *Ranker) QueryTerms(query string) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, t := range r.tok.Tokens(query) {
		if !seen[t] {
			seen[t] = true
			terms = append(terms, t)
		}
	}
	return terms
}

// Rank scores query against every document. See RankTerms.
func (r *Ranker) Rank(query string) []Hit {
	return r.RankTerms(r.QueryTerms(query))
}

// IDF returns ln((N - n + 0.5) / (n + 0.5) + 1), which is never negative.
func (r *Ranker) IDF(term string) float64 {
	n := float64(r.index.DocFreq(term))
	total := float64(r.index.Len())
	return math.Log((total-n+0.5)/(n+0.5) + 1)
}

// RankTerms scores already normalized terms. Only documents with a positive
// score are returned, ordered by score descending then identifier
// ascending. An empty corpus or a corpus without any tokens yields no hits.
func (r *Ranker) RankTerms(terms []string) []Hit {
	avg := r.index.AvgLength()
	if r.index.Len() == 0 || avg == 0 || len(terms) == 0 {
		return []Hit{}
	}

	candidates := roaring.New()
	idf := make(map[string]float64, len(terms))
	for _, t := range terms {
		if bm := r.index.Postings(t); bm != nil {
			candidates.Or(bm)
			idf[t] = r.IDF(t)
		}
	}

	k1, b := r.opts.K1, r.opts.B
	hits := make([]Hit, 0, candidates.GetCardinality())
	it := candidates.Iterator()
	for it.HasNext() {
		ord := it.Next()
		dl := float64(r.index.Length(ord))
		var score float64
		var matched []string
		for _, t := range terms {
			tf := float64(r.index.TermFreq(t, ord))
			if tf == 0 {
				continue
			}
			norm := tf + k1*(1-b+b*dl/avg)
			score += idf[t] * tf * (k1 + 1) / norm
			matched = append(matched, t)
		}
		if score > 0 {
			hits = append(hits, Hit{ID: r.index.DocID(ord), Score: score, Terms: matched})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	return hits
}

// Package search ranks documents against free-text queries with BM25 and
// matches misspelled terms against the corpus vocabulary.
package search

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/panbanda/folio/pkg/corpus"
	"github.com/panbanda/folio/pkg/tokenize"
)

// TermIndex maps terms to the documents containing them. It is built once
// per corpus load and shared by the ranker and the fuzzy matcher.
type TermIndex struct {
	ids         []string
	lengths     []int
	totalLength int
	freqs       map[string]map[uint32]int
	postings    map[string]*roaring.Bitmap
}

// BuildIndex tokenizes every document's Text. Document ordinals follow the
// order of docs.
func BuildIndex(docs []*corpus.Document, tok *tokenize.Tokenizer) *TermIndex {
	if tok == nil {
		tok = tokenize.New()
	}
	x := &TermIndex{
		ids:      make([]string, len(docs)),
		lengths:  make([]int, len(docs)),
		freqs:    make(map[string]map[uint32]int),
		postings: make(map[string]*roaring.Bitmap),
	}
	for i, d := range docs {
		ord := uint32(i)
		tokens := tok.Tokens(d.Text)
		x.ids[i] = d.ID
		x.lengths[i] = len(tokens)
		x.totalLength += len(tokens)
		for term, n := range tokenize.Frequencies(tokens) {
			if x.freqs[term] == nil {
				x.freqs[term] = make(map[uint32]int)
				x.postings[term] = roaring.New()
			}
			x.freqs[term][ord] = n
			x.postings[term].Add(ord)
		}
	}
	for _, bm := range x.postings {
		bm.RunOptimize()
	}
	return x
}

// Len returns the number of indexed documents.
func (x *TermIndex) Len() int {
	return len(x.ids)
}

// DocID returns the identifier of the document with the given ordinal.
func (x *TermIndex) DocID(ord uint32) string {
	return x.ids[ord]
}

// Length returns the token count of a document.
func (x *TermIndex) Length(ord uint32) int {
	return x.lengths[ord]
}

// TotalLength returns the token count of the whole corpus.
func (x *TermIndex) TotalLength() int {
	return x.totalLength
}

// AvgLength returns the mean document length in tokens.
func (x *TermIndex) AvgLength() float64 {
	if len(x.ids) == 0 {
		return 0
	}
	return float64(x.totalLength) / float64(len(x.ids))
}

// DocFreq returns how many documents contain term.
func (x *TermIndex) DocFreq(term string) int {
	if bm, ok := x.postings[term]; ok {
		return int(bm.GetCardinality())
	}
	return 0
}

// TermFreq returns how often term occurs in a document.
func (x *TermIndex) TermFreq(term string, ord uint32) int {
	return x.freqs[term][ord]
}

// Postings returns the documents containing term. The bitmap must not be
// modified.
func (x *TermIndex) Postings(term string) *roaring.Bitmap {
	return x.postings[term]
}

// Has reports whether term occurs anywhere in the corpus.
func (x *TermIndex) Has(term string) bool {
	_, ok := x.postings[term]
	return ok
}

// Vocabulary returns every indexed term in ascending order.
func (x *TermIndex) Vocabulary() []string {
	terms := make([]string, 0, len(x.postings))
	for t := range x.postings {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

// TermCount pairs a term with its document frequency.
type TermCount struct {
	Term    string `json:"term" toon:"term"`
	DocFreq int    `json:"doc_freq" toon:"doc_freq"`
}

// TopTerms returns the n terms found in the most documents, ties broken
// alphabetically.
func (x *TermIndex) TopTerms(n int) []TermCount {
	counts := make([]TermCount, 0, len(x.postings))
	for t, bm := range x.postings {
		counts = append(counts, TermCount{Term: t, DocFreq: int(bm.GetCardinality())})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].DocFreq != counts[j].DocFreq {
			return counts[i].DocFreq > counts[j].DocFreq
		}
		return counts[i].Term < counts[j].Term
	})
	if n >= 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

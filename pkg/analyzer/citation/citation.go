// Package citation computes bibliometric indicators over the reference
// graph: per-document citation counts, the corpus h-index and i10-index,
// impact factor, co-citation and bibliographic coupling.
package citation

import (
	"fmt"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/panbanda/folio/pkg/analyzer/graph"
)

// Options controls which citations are counted.
type Options struct {
	// ExcludeIsolated leaves documents with no citations in either
	// direction out of the impact-factor denominator.
	ExcludeIsolated bool
	// ExcludeSelfCitations drops a document's reference to itself. Its other
	// citations still count.
	ExcludeSelfCitations bool
}

// DocumentMetrics holds the counts for one document.
type DocumentMetrics struct {
	ID         string `json:"id" toon:"id"`
	Citations  int    `json:"citations" toon:"citations"`
	References int    `json:"references" toon:"references"`
	InHCore    bool   `json:"in_h_core" toon:"in_h_core"`
}

// Pair is an unordered document pair with a shared count. A < B.
type Pair struct {
	A     string `json:"a" toon:"a"`
	B     string `json:"b" toon:"b"`
	Count int    `json:"count" toon:"count"`
}

func (p Pair) String() string {
	return fmt.Sprintf("%s & %s (%d)", p.A, p.B, p.Count)
}

// Summary holds the corpus-level indicators.
type Summary struct {
	HIndex           int     `json:"h_index" toon:"h_index"`
	I10Index         int     `json:"i10_index" toon:"i10_index"`
	ImpactFactor     float64 `json:"impact_factor" toon:"impact_factor"`
	TotalCitations   int     `json:"total_citations" toon:"total_citations"`
	DocumentsCounted int     `json:"documents_counted" toon:"documents_counted"`
	Documents        int     `json:"documents" toon:"documents"`
	MostCited        string  `json:"most_cited,omitempty" toon:"most_cited,omitempty"`
}

// Result is the full citation analysis.
type Result struct {
	// Documents are ordered by citations descending, then identifier.
	Documents   []DocumentMetrics `json:"documents" toon:"documents"`
	Summary     Summary           `json:"summary" toon:"summary"`
	CoCitations []Pair            `json:"co_citations" toon:"co_citations"`
	Coupling    []Pair            `json:"coupling" toon:"coupling"`
}

// index assigns dense ordinals to node identifiers for bitmap work.
type index struct {
	ids  []string
	ords map[string]uint32
	out  []*roaring.Bitmap
	in   []*roaring.Bitmap
}

func newIndex(g *graph.Graph, excludeSelf bool) *index {
	ids := g.Nodes()
	x := &index{
		ids:  ids,
		ords: make(map[string]uint32, len(ids)),
		out:  make([]*roaring.Bitmap, len(ids)),
		in:   make([]*roaring.Bitmap, len(ids)),
	}
	for i, id := range ids {
		x.ords[id] = uint32(i)
		x.out[i] = roaring.New()
		x.in[i] = roaring.New()
	}
	for _, e := range g.Edges() {
		if excludeSelf && e.From == e.To {
			continue
		}
		from, to := x.ords[e.From], x.ords[e.To]
		x.out[from].Add(to)
		x.in[to].Add(from)
	}
	return x
}

// Compute runs every citation metric over g.
func Compute(g *graph.Graph, opts Options) *Result {
	x := newIndex(g, opts.ExcludeSelfCitations)

	res := &Result{
		Documents:   make([]DocumentMetrics, len(x.ids)),
		CoCitations: coCitation(x),
		Coupling:    coupling(x),
	}

	counts := make([]int, len(x.ids))
	counted := 0
	for i, id := range x.ids {
		cites := int(x.in[i].GetCardinality())
		refs := int(x.out[i].GetCardinality())
		counts[i] = cites
		res.Documents[i] = DocumentMetrics{ID: id, Citations: cites, References: refs}
		res.Summary.TotalCitations += cites
		if !opts.ExcludeIsolated || cites > 0 || refs > 0 {
			counted++
		}
	}

	sort.SliceStable(res.Documents, func(i, j int) bool {
		if res.Documents[i].Citations != res.Documents[j].Citations {
			return res.Documents[i].Citations > res.Documents[j].Citations
		}
		return res.Documents[i].ID < res.Documents[j].ID
	})

	h := HIndex(counts)
	for i := 0; i < h; i++ {
		res.Documents[i].InHCore = true
	}

	res.Summary.HIndex = h
	res.Summary.I10Index = I10Index(counts)
	res.Summary.Documents = len(x.ids)
	res.Summary.DocumentsCounted = counted
	res.Summary.ImpactFactor = ImpactFactor(res.Summary.TotalCitations, counted)
	if len(res.Documents) > 0 && res.Documents[0].Citations > 0 {
		res.Summary.MostCited = res.Documents[0].ID
	}
	return res
}

// HIndex returns the largest h such that h of the counts are at least h.
func HIndex(counts []int) int {
	sorted := append([]int(nil), counts...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	h := 0
	for i, c := range sorted {
		if c < i+1 {
			break
		}
		h = i + 1
	}
	return h
}

// I10Index returns how many counts are at least 10.
func I10Index(counts []int) int {
	n := 0
	for _, c := range counts {
		if c >= 10 {
			n++
		}
	}
	return n
}

// ImpactFactor returns total/documents, or 0 when there are no documents.
func ImpactFactor(total, documents int) float64 {
	if documents == 0 {
		return 0
	}
	return float64(total) / float64(documents)
}

// coCitation counts, for every pair of documents, how many documents
// reference both.
func coCitation(x *index) []Pair {
	counts := make(map[[2]uint32]int)
	for _, refs := range x.out {
		cited := refs.ToArray()
		for i := 0; i < len(cited); i++ {
			for j := i + 1; j < len(cited); j++ {
				counts[[2]uint32{cited[i], cited[j]}]++
			}
		}
	}
	return toPairs(x, counts)
}

// coupling counts, for every pair of documents, how many references they
// share. Only pairs citing at least one common document are compared.
func coupling(x *index) []Pair {
	counts := make(map[[2]uint32]int)
	for _, citers := range x.in {
		c := citers.ToArray()
		for i := 0; i < len(c); i++ {
			for j := i + 1; j < len(c); j++ {
				key := [2]uint32{c[i], c[j]}
				if _, done := counts[key]; done {
					continue
				}
				counts[key] = int(x.out[c[i]].AndCardinality(x.out[c[j]]))
			}
		}
	}
	return toPairs(x, counts)
}

func toPairs(x *index, counts map[[2]uint32]int) []Pair {
	pairs := make([]Pair, 0, len(counts))
	for k, n := range counts {
		pairs = append(pairs, Pair{A: x.ids[k[0]], B: x.ids[k[1]], Count: n})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Count != pairs[j].Count {
			return pairs[i].Count > pairs[j].Count
		}
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
	return pairs
}

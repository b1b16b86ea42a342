// Package duplicates finds documents whose bodies are identical or nearly so.
package duplicates

import (
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/panbanda/folio/pkg/corpus"
	"github.com/panbanda/folio/pkg/stats"
	"github.com/panbanda/folio/pkg/tokenize"
)

// Config holds detection parameters.
type Config struct {
	Threshold        float64
	ShingleSize      int
	NumHashFunctions int
	NumBands         int
	RowsPerBand      int
	// BruteForceLimit is the corpus size up to which every pair is compared
	// directly instead of going through LSH buckets.
	BruteForceLimit int
}

// DefaultConfig returns the default detection parameters.
func DefaultConfig() Config {
	return Config{
		Threshold:        0.8,
		ShingleSize:      3,
		NumHashFunctions: 128,
		NumBands:         32,
		RowsPerBand:      4,
		BruteForceLimit:  500,
	}
}

// Analyzer detects duplicate documents using word shingles, with MinHash
// and LSH for candidate filtering on large corpora.
type Analyzer struct {
	config    Config
	tokenizer *tokenize.Tokenizer
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithThreshold sets the minimum Jaccard similarity for a near duplicate.
func WithThreshold(threshold float64) Option {
	return func(a *Analyzer) {
		a.config.Threshold = threshold
	}
}

// WithShingleSize sets the number of consecutive words per shingle.
func WithShingleSize(k int) Option {
	return func(a *Analyzer) {
		a.config.ShingleSize = k
	}
}

// WithBruteForceLimit sets the corpus size above which LSH is used.
func WithBruteForceLimit(n int) Option {
	return func(a *Analyzer) {
		a.config.BruteForceLimit = n
	}
}

// New creates a duplicate analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{config: DefaultConfig(), tokenizer: tokenize.New()}
	for _, opt := range opts {
		opt(a)
	}
	if a.config.ShingleSize < 1 {
		a.config.ShingleSize = 1
	}
	return a
}

type fingerprint struct {
	id        string
	hash      string
	shingles  []uint64 // sorted, unique
	signature []uint64
}

type pairKey struct{ a, b int }

// Analyze compares every document body with every other. Documents with
// empty bodies are ignored.
func (a *Analyzer) Analyze(docs []*corpus.Document) *Analysis {
	prints := make([]fingerprint, 0, len(docs))
	for _, d := range docs {
		tokens := a.tokenizer.Tokens(d.Body)
		if len(tokens) == 0 {
			continue
		}
		prints = append(prints, fingerprint{
			id:       d.ID,
			hash:     d.Hash,
			shingles: generateKShingles(tokens, a.config.ShingleSize),
		})
	}
	sort.Slice(prints, func(i, j int) bool { return prints[i].id < prints[j].id })

	analysis := &Analysis{Threshold: a.config.Threshold, Pairs: []Pair{}, Groups: []Group{}}
	analysis.Summary.DocumentsScanned = len(prints)

	found := make(map[pairKey]Pair)

	byHash := make(map[string][]int)
	for i, p := range prints {
		if p.hash != "" {
			byHash[p.hash] = append(byHash[p.hash], i)
		}
	}
	for _, members := range byHash {
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				found[pairKey{members[i], members[j]}] = Pair{
					A: prints[members[i]].id, B: prints[members[j]].id, Kind: KindExact, Similarity: 1,
				}
			}
		}
	}

	for _, c := range a.candidates(prints) {
		if _, exact := found[c]; exact {
			continue
		}
		sim := jaccard(prints[c.a].shingles, prints[c.b].shingles)
		if sim >= a.config.Threshold {
			found[c] = Pair{A: prints[c.a].id, B: prints[c.b].id, Kind: KindNear, Similarity: sim}
		}
	}

	for _, p := range found {
		analysis.Pairs = append(analysis.Pairs, p)
	}
	sort.Slice(analysis.Pairs, func(i, j int) bool {
		pi, pj := analysis.Pairs[i], analysis.Pairs[j]
		if pi.Similarity != pj.Similarity {
			return pi.Similarity > pj.Similarity
		}
		if pi.A != pj.A {
			return pi.A < pj.A
		}
		return pi.B < pj.B
	})

	analysis.Groups = groupPairs(prints, found)
	a.summarize(analysis)
	return analysis
}

// candidates returns index pairs worth an exact comparison.
func (a *Analyzer) candidates(prints []fingerprint) []pairKey {
	var out []pairKey
	if len(prints) <= a.config.BruteForceLimit {
		for i := range prints {
			for j := i + 1; j < len(prints); j++ {
				out = append(out, pairKey{i, j})
			}
		}
		return out
	}

	for i := range prints {
		prints[i].signature = a.computeMinHash(prints[i].shingles)
	}

	bands, rows := a.config.NumBands, a.config.RowsPerBand
	buckets := make([]map[uint64][]int, bands)
	for i := range buckets {
		buckets[i] = make(map[uint64][]int)
	}
	for idx, p := range prints {
		for band := 0; band < bands; band++ {
			start := band * rows
			end := start + rows
			if end > len(p.signature) {
				end = len(p.signature)
			}
			if start >= end {
				continue
			}
			h := hashBand(p.signature[start:end], uint64(band))
			buckets[band][h] = append(buckets[band][h], idx)
		}
	}

	seen := make(map[pairKey]bool)
	for _, bandBuckets := range buckets {
		for _, bucket := range bandBuckets {
			for i := 0; i < len(bucket); i++ {
				for j := i + 1; j < len(bucket); j++ {
					k := pairKey{bucket[i], bucket[j]}
					if k.a > k.b {
						k = pairKey{k.b, k.a}
					}
					if !seen[k] {
						seen[k] = true
						out = append(out, k)
					}
				}
			}
		}
	}
	return out
}

func (a *Analyzer) summarize(analysis *Analysis) {
	if len(analysis.Pairs) == 0 {
		return
	}
	sims := make([]float64, 0, len(analysis.Pairs))
	docs := make(map[string]bool)
	var sum float64
	for _, p := range analysis.Pairs {
		if p.Kind == KindExact {
			analysis.Summary.ExactPairs++
		} else {
			analysis.Summary.NearPairs++
		}
		sims = append(sims, p.Similarity)
		sum += p.Similarity
		docs[p.A] = true
		docs[p.B] = true
	}
	sort.Float64s(sims)
	analysis.Summary.DuplicateDocuments = len(docs)
	analysis.Summary.AvgSimilarity = sum / float64(len(sims))
	analysis.Summary.P50Similarity = stats.Percentile(sims, 50)
	analysis.Summary.P95Similarity = stats.Percentile(sims, 95)
}

// groupPairs clusters duplicate documents with union-find.
func groupPairs(prints []fingerprint, pairs map[pairKey]Pair) []Group {
	if len(pairs) == 0 {
		return []Group{}
	}

	parent := make([]int, len(prints))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}

	keys := make([]pairKey, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].a != keys[j].a {
			return keys[i].a < keys[j].a
		}
		return keys[i].b < keys[j].b
	})
	for _, k := range keys {
		if px, py := find(k.a), find(k.b); px != py {
			parent[px] = py
		}
	}

	members := make(map[int][]int)
	for _, k := range keys {
		root := find(k.a)
		members[root] = append(members[root], k.a, k.b)
	}

	var groups []Group
	for root, idxs := range members {
		uniq := make(map[int]bool)
		var ids []string
		for _, i := range idxs {
			if !uniq[i] {
				uniq[i] = true
				ids = append(ids, prints[i].id)
			}
		}
		sort.Strings(ids)

		var sum float64
		var n int
		for _, k := range keys {
			if find(k.a) == root {
				sum += pairs[k].Similarity
				n++
			}
		}
		groups = append(groups, Group{Documents: ids, AverageSimilarity: sum / float64(n)})
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Documents[0] < groups[j].Documents[0] })
	for i := range groups {
		groups[i].ID = i + 1
	}
	return groups
}

// generateKShingles hashes every run of k consecutive tokens. Documents
// shorter than k produce a single shingle of the whole token sequence.
func generateKShingles(tokens []string, k int) []uint64 {
	if len(tokens) == 0 {
		return nil
	}
	if len(tokens) < k {
		k = len(tokens)
	}

	set := make(map[uint64]struct{})
	d := xxhash.New()
	for i := 0; i+k <= len(tokens); i++ {
		d.Reset()
		for j := i; j < i+k; j++ {
			_, _ = d.WriteString(tokens[j])
			_, _ = d.Write([]byte{0})
		}
		set[d.Sum64()] = struct{}{}
	}

	shingles := make([]uint64, 0, len(set))
	for h := range set {
		shingles = append(shingles, h)
	}
	sort.Slice(shingles, func(i, j int) bool { return shingles[i] < shingles[j] })
	return shingles
}

// jaccard computes |a ∩ b| / |a ∪ b| over sorted unique slices.
func jaccard(a, b []uint64) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	i, j, inter := 0, 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			inter++
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}

func (a *Analyzer) computeMinHash(shingles []uint64) []uint64 {
	sig := make([]uint64, a.config.NumHashFunctions)
	for i := range sig {
		sig[i] = ^uint64(0)
	}
	for _, s := range shingles {
		for i := range sig {
			if h := hashUint64WithSeed(s, uint64(i)); h < sig[i] {
				sig[i] = h
			}
		}
	}
	return sig
}

// hashUint64WithSeed mixes a value with a seed (murmur3 finalizer).
func hashUint64WithSeed(value uint64, seed uint64) uint64 {
	h := value ^ seed
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return h
}

// hashBand computes a hash for a band portion of the signature (FNV-1a style).
func hashBand(values []uint64, seed uint64) uint64 {
	const fnvPrime = 0x00000100000001B3
	h := seed ^ 0xcbf29ce484222325
	for _, v := range values {
		h ^= v
		h *= fnvPrime
	}
	return h
}

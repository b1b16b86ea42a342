package duplicates

import (
	"fmt"
	"strings"
)

// Kind distinguishes identical documents from merely similar ones.
type Kind string

const (
	KindExact Kind = "exact" // same normalized body
	KindNear  Kind = "near"  // shingle similarity at or above the threshold
)

// String returns the string representation.
func (k Kind) String() string {
	return string(k)
}

// Pair is two documents whose bodies overlap. A sorts before B.
type Pair struct {
	A          string  `json:"a" toon:"a"`
	B          string  `json:"b" toon:"b"`
	Kind       Kind    `json:"kind" toon:"kind"`
	Similarity float64 `json:"similarity" toon:"similarity"`
}

// Group is a connected set of duplicate documents.
type Group struct {
	ID                int      `json:"id" toon:"id"`
	Documents         []string `json:"documents" toon:"documents"`
	AverageSimilarity float64  `json:"average_similarity" toon:"average_similarity"`
}

func (g Group) String() string {
	return fmt.Sprintf("#%d %s (%.2f)", g.ID, strings.Join(g.Documents, ", "), g.AverageSimilarity)
}

// Analysis represents the full duplicate detection result.
type Analysis struct {
	Pairs     []Pair  `json:"pairs" toon:"pairs"`
	Groups    []Group `json:"groups" toon:"groups"`
	Summary   Summary `json:"summary" toon:"summary"`
	Threshold float64 `json:"threshold" toon:"threshold"`
}

// Summary provides aggregate statistics.
type Summary struct {
	DocumentsScanned   int     `json:"documents_scanned" toon:"documents_scanned"`
	ExactPairs         int     `json:"exact_pairs" toon:"exact_pairs"`
	NearPairs          int     `json:"near_pairs" toon:"near_pairs"`
	DuplicateDocuments int     `json:"duplicate_documents" toon:"duplicate_documents"`
	AvgSimilarity      float64 `json:"avg_similarity" toon:"avg_similarity"`
	P50Similarity      float64 `json:"p50_similarity" toon:"p50_similarity"`
	P95Similarity      float64 `json:"p95_similarity" toon:"p95_similarity"`
}

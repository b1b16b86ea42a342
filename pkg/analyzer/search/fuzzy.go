package search

import (
	"sort"
	"unicode/utf8"
)

// EditDistance returns the Levenshtein distance between a and b counted in
// runes, using two rows of the dynamic-programming table.
func EditDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// FuzzyPolicy decides how many edits a term of a given length tolerates.
// Short terms get fewer edits so that "cat" does not match "car".
type FuzzyPolicy struct {
	Threshold           int
	ShortTermLength     int
	ShortTermThreshold  int
	MediumTermLength    int
	MediumTermThreshold int
}

// DefaultFuzzyPolicy allows 0 edits up to 3 runes, 1 up to 5, 2 beyond.
func DefaultFuzzyPolicy() FuzzyPolicy {
	return FuzzyPolicy{
		Threshold:           2,
		ShortTermLength:     3,
		ShortTermThreshold:  0,
		MediumTermLength:    5,
		MediumTermThreshold: 1,
	}
}

// MaxDistance returns the edit budget for term. It never reaches the
// term's own length, so a match always shares at least one rune.
func (p FuzzyPolicy) MaxDistance(term string) int {
	n := utf8.RuneCountInString(term)
	d := p.Threshold
	switch {
	case n <= p.ShortTermLength:
		d = p.ShortTermThreshold
	case n <= p.MediumTermLength:
		d = p.MediumTermThreshold
	}
	if d > n-1 {
		d = n - 1
	}
	if d < 0 {
		d = 0
	}
	return d
}

// Suggestion is a vocabulary term close to a query term.
type Suggestion struct {
	Term     string `json:"term" toon:"term"`
	Distance int    `json:"distance" toon:"distance"`
	DocFreq  int    `json:"doc_freq" toon:"doc_freq"`
}

// FuzzyMatcher finds vocabulary terms within an edit distance.
type FuzzyMatcher struct {
	index  *TermIndex
	vocab  []string
	policy FuzzyPolicy
}

// NewFuzzyMatcher creates a matcher over the index vocabulary.
func NewFuzzyMatcher(index *TermIndex, policy FuzzyPolicy) *FuzzyMatcher {
	return &FuzzyMatcher{index: index, vocab: index.Vocabulary(), policy: policy}
}

// Suggest returns vocabulary terms within maxDistance of term, closest
// first, then most frequent, then alphabetical. A negative maxDistance uses
// the policy. limit <= 0 returns every match.
func (m *FuzzyMatcher) Suggest(term string, maxDistance, limit int) []Suggestion {
	if maxDistance < 0 {
		maxDistance = m.policy.MaxDistance(term)
	}
	n := utf8.RuneCountInString(term)

	out := []Suggestion{}
	for _, v := range m.vocab {
		vn := utf8.RuneCountInString(v)
		if vn-n > maxDistance || n-vn > maxDistance {
			continue
		}
		if d := EditDistance(term, v); d <= maxDistance {
			out = append(out, Suggestion{Term: v, Distance: d, DocFreq: m.index.DocFreq(v)})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		if out[i].DocFreq != out[j].DocFreq {
			return out[i].DocFreq > out[j].DocFreq
		}
		return out[i].Term < out[j].Term
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Expand replaces query terms missing from the vocabulary with their
// closest vocabulary matches under the policy. Terms already present are
// kept as they are. The returned map lists what each missing term became.
func (m *FuzzyMatcher) Expand(terms []string) ([]string, map[string][]string) {
	expansions := make(map[string][]string)
	seen := make(map[string]bool)
	var out []string
	add := func(t string) {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}

	for _, t := range terms {
		if m.index.Has(t) {
			add(t)
			continue
		}
		suggestions := m.Suggest(t, -1, 0)
		if len(suggestions) == 0 {
			continue
		}
		best := suggestions[0].Distance
		for _, s := range suggestions {
			if s.Distance != best {
				break
			}
			add(s.Term)
			expansions[t] = append(expansions[t], s.Term)
		}
	}
	return out, expansions
}

// Package corpus loads a directory of Markdown documents into memory.
//
// A corpus is read fresh for every invocation and is immutable once loaded.
// Document identifiers are slash-separated paths relative to the corpus root.
package corpus

import (
	"encoding/hex"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/zeebo/blake3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Document is one corpus unit.
type Document struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Title string `json:"title"`
	// Body is the plain text of the Markdown body.
	Body string `json:"-"`
	// Text is what gets indexed: the title followed by the body.
	Text string   `json:"-"`
	Tags []string `json:"tags,omitempty"`
	// References are outbound identifiers in the order they were declared.
	References []string `json:"references,omitempty"`
	// Weights holds explicit edge weights keyed by reference identifier.
	Weights   map[string]float64 `json:"weights,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Hash      string             `json:"hash"`
}

// Corpus is an ordered, immutable set of documents.
type Corpus struct {
	Root      string
	Documents []*Document
	// Warnings are non-fatal problems found while loading.
	Warnings []string

	byID map[string]*Document
}

// New builds a corpus from documents, ordered by identifier.
func New(root string, docs []*Document) *Corpus {
	sorted := make([]*Document, len(docs))
	copy(sorted, docs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	c := &Corpus{Root: root, Documents: sorted, byID: make(map[string]*Document, len(sorted))}
	for _, d := range sorted {
		c.byID[d.ID] = d
	}
	return c
}

// Get returns the document with the given identifier.
func (c *Corpus) Get(id string) (*Document, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// IDs returns every identifier in ascending order.
func (c *Corpus) IDs() []string {
	ids := make([]string, len(c.Documents))
	for i, d := range c.Documents {
		ids[i] = d.ID
	}
	return ids
}

// Len returns the number of documents.
func (c *Corpus) Len() int {
	return len(c.Documents)
}

// titleFromFilename turns "graph-theory.md" into "Graph Theory".
func titleFromFilename(id string) string {
	base := path.Base(id)
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return cases.Title(language.English).String(strings.TrimSpace(base))
}

// contentHash hashes whitespace-normalized, lowercased text.
func contentHash(body string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(body), " "))
	sum := blake3.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(t, "#")))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

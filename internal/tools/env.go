package tools

import (
	"log/slog"
	"sync"
	"time"

	"github.com/panbanda/folio/pkg/analyzer/graph"
	"github.com/panbanda/folio/pkg/analyzer/search"
	"github.com/panbanda/folio/pkg/config"
	"github.com/panbanda/folio/pkg/corpus"
	"github.com/panbanda/folio/pkg/tokenize"
)

// Env is what a tool runs against: one loaded corpus plus configuration.
// The reference graph and the term index are built on first use and shared
// by every tool run against the same Env.
type Env struct {
	Corpus  *corpus.Corpus
	Config  *config.Config
	Version string
	Logger  *slog.Logger
	Now     func() time.Time

	graphOnce sync.Once
	built     *graph.BuildResult

	indexOnce sync.Once
	tok       *tokenize.Tokenizer
	index     *search.TermIndex
}

// NewEnv creates an environment. A nil config uses the defaults.
func NewEnv(c *corpus.Corpus, cfg *config.Config, version string) *Env {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Env{Corpus: c, Config: cfg, Version: version}
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Env) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Graph returns the reference graph of the corpus.
func (e *Env) Graph() *graph.BuildResult {
	e.graphOnce.Do(func() {
		e.built = graph.Build(e.Corpus.Documents)
		e.logger().Debug("built reference graph",
			"nodes", e.built.Graph.NodeCount(), "edges", e.built.Graph.EdgeCount(), "broken", len(e.built.Broken))
	})
	return e.built
}

// Tokenizer returns the tokenizer configured for search.
func (e *Env) Tokenizer() *tokenize.Tokenizer {
	e.buildIndex()
	return e.tok
}

// Index returns the term index of the corpus.
func (e *Env) Index() *search.TermIndex {
	e.buildIndex()
	return e.index
}

func (e *Env) buildIndex() {
	e.indexOnce.Do(func() {
		e.tok = tokenize.New(
			tokenize.WithStemming(e.Config.Search.Stem),
			tokenize.WithStopwords(e.Config.Search.Stopwords),
		)
		e.index = search.BuildIndex(e.Corpus.Documents, e.tok)
		e.logger().Debug("built term index", "documents", e.index.Len(), "terms", len(e.index.Vocabulary()))
	})
}

// FuzzyPolicy returns the configured edit-distance policy.
func (e *Env) FuzzyPolicy() search.FuzzyPolicy {
	f := e.Config.Fuzzy
	return search.FuzzyPolicy{
		Threshold:           f.Threshold,
		ShortTermLength:     f.ShortTermLength,
		ShortTermThreshold:  f.ShortTermThreshold,
		MediumTermLength:    f.MediumTermLength,
		MediumTermThreshold: f.MediumTermThreshold,
	}
}

// Title returns the display title of a document, or its identifier.
func (e *Env) Title(id string) string {
	if d, ok := e.Corpus.Get(id); ok && d.Title != "" {
		return d.Title
	}
	return id
}

// Titles maps every document identifier to its title.
func (e *Env) Titles() map[string]string {
	titles := make(map[string]string, e.Corpus.Len())
	for _, d := range e.Corpus.Documents {
		titles[d.ID] = d.Title
	}
	return titles
}

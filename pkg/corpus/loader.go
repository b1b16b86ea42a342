package corpus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/panbanda/folio/internal/fileproc"
	"github.com/panbanda/folio/internal/scanner"
	"github.com/panbanda/folio/pkg/config"
)

// ProgressFunc is called once with the number of documents found and
// returns a function invoked after each document is read.
type ProgressFunc func(total int) func()

// Loader reads a corpus from disk.
type Loader struct {
	cfg      *config.Config
	logger   *slog.Logger
	progress ProgressFunc
	workers  int
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(ld *Loader) {
		ld.logger = l
	}
}

// WithProgress reports loading progress.
func WithProgress(fn ProgressFunc) Option {
	return func(ld *Loader) {
		ld.progress = fn
	}
}

// WithWorkers bounds the number of files read concurrently.
func WithWorkers(n int) Option {
	return func(ld *Loader) {
		ld.workers = n
	}
}

// NewLoader creates a loader. A nil config uses the defaults.
func NewLoader(cfg *config.Config, opts ...Option) *Loader {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	l := &Loader{cfg: cfg, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type parsed struct {
	doc      *Document
	warnings []string
}

// Load reads every document under root. Any unreadable file or malformed
// front matter fails the whole load.
func (l *Loader) Load(ctx context.Context, root string) (*Corpus, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &PathError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &PathError{Root: root, Err: errors.New("not a directory")}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, &PathError{Root: root, Err: err}
	}
	if resolved, err := filepath.EvalSymlinks(absRoot); err == nil {
		absRoot = resolved
	}

	start := time.Now()
	files, err := scanner.NewScanner(l.cfg).ScanDir(absRoot)
	if err != nil {
		return nil, &PathError{Root: root, Err: err}
	}
	l.logger.Debug("scanned corpus", "root", absRoot, "files", len(files))

	var tick fileproc.ProgressFunc
	if l.progress != nil {
		tick = l.progress(len(files))
	}

	opts := ParseOptions{BodyLinks: l.cfg.Corpus.BodyLinks, IsDocument: l.cfg.HasExtension}
	results, perrs := fileproc.MapFiles(ctx, files, l.workers, func(p string) (parsed, error) {
		return l.read(absRoot, p, opts)
	}, tick)
	if perrs != nil {
		return nil, perrs.First()
	}

	docs := make([]*Document, 0, len(results))
	var warnings []string
	for _, r := range results {
		docs = append(docs, r.doc)
		warnings = append(warnings, r.warnings...)
	}

	c := New(absRoot, docs)
	resolveShortNames(c)
	sort.Strings(warnings)
	c.Warnings = warnings

	for _, w := range warnings {
		l.logger.Warn("corpus", "warning", w)
	}
	l.logger.Debug("loaded corpus", "documents", c.Len(), "duration", time.Since(start))
	return c, nil
}

func (l *Loader) read(root, absPath string, opts ParseOptions) (parsed, error) {
	rel, err := filepath.Rel(root, absPath)
	if err != nil {
		return parsed{}, &ReadError{Path: absPath, Err: err}
	}
	id := filepath.ToSlash(rel)

	data, err := os.ReadFile(absPath)
	if err != nil {
		return parsed{}, &ReadError{Path: id, Err: err}
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return parsed{}, &ReadError{Path: id, Err: err}
	}

	doc, warnings, err := Parse(id, absPath, data, info.ModTime().UTC(), opts)
	if err != nil {
		return parsed{}, err
	}
	return parsed{doc: doc, warnings: warnings}, nil
}

// resolveShortNames rewrites bare references such as "graphs.md" to the
// one document in a subdirectory with that file name, the way wiki-style
// notes refer to each other. Ambiguous names are left alone.
func resolveShortNames(c *Corpus) {
	byBase := make(map[string][]string)
	for _, d := range c.Documents {
		base := strings.ToLower(path.Base(d.ID))
		byBase[base] = append(byBase[base], d.ID)
	}

	rewrite := func(ref string) string {
		if ref == "" || strings.Contains(ref, "/") {
			return ref
		}
		if _, ok := c.Get(ref); ok {
			return ref
		}
		if ids := byBase[strings.ToLower(ref)]; len(ids) == 1 {
			return ids[0]
		}
		return ref
	}

	for _, d := range c.Documents {
		for i, ref := range d.References {
			d.References[i] = rewrite(ref)
		}
		if len(d.Weights) == 0 {
			continue
		}
		weights := make(map[string]float64, len(d.Weights))
		for ref, w := range d.Weights {
			weights[rewrite(ref)] = w
		}
		d.Weights = weights
	}
}

// Load is a convenience wrapper around NewLoader(cfg).Load.
func Load(ctx context.Context, root string, cfg *config.Config) (*Corpus, error) {
	c, err := NewLoader(cfg).Load(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}
	return c, nil
}

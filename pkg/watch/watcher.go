// Package watch re-runs work when documents in a corpus change.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/panbanda/folio/internal/scanner"
	"github.com/panbanda/folio/pkg/config"
)

// DefaultDebounce is how long the corpus must be quiet before a batch of
// changes is delivered.
const DefaultDebounce = 500 * time.Millisecond

// ChangeFunc receives the sorted absolute paths changed since the last call.
type ChangeFunc func(ctx context.Context, changed []string)

// Watcher monitors a corpus directory tree for document changes.
type Watcher struct {
	fs       *fsnotify.Watcher
	root     string
	config   *config.Config
	scanner  *scanner.Scanner
	debounce time.Duration
	logger   *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Non-positive values keep the default.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for watch errors and debug records.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = l
	}
}

// New creates a watcher for the corpus at root. Nothing is watched until
// Run is called.
func New(root string, cfg *config.Config, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	w := &Watcher{
		fs:       fw,
		root:     abs,
		config:   cfg,
		scanner:  scanner.NewScanner(cfg),
		debounce: DefaultDebounce,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Root returns the absolute corpus root.
func (w *Watcher) Root() string {
	return w.root
}

// addTree watches dir and every non-excluded directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.excludedDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
}

func (w *Watcher) excludedDir(name string) bool {
	for _, ex := range w.config.Exclude.Dirs {
		if name == ex {
			return true
		}
	}
	return false
}

// Run watches until ctx is cancelled, calling onChange once per quiet
// period with the documents that were written, created, removed or renamed.
// onChange runs on the watch goroutine, so events arriving while it runs
// are batched into the next call.
func (w *Watcher) Run(ctx context.Context, onChange ChangeFunc) error {
	if err := w.addTree(w.root); err != nil {
		return err
	}
	w.logger.Debug("watching corpus", "root", w.root, "directories", len(w.fs.WatchList()))

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.track(ev) {
				continue
			}
			pending[ev.Name] = struct{}{}
			timer.Reset(w.debounce)
			fire = timer.C

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)
			onChange(ctx, changed)
		}
	}
}

// track reports whether ev concerns a corpus document. New directories are
// added to the watch list as a side effect.
func (w *Watcher) track(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err == nil {
				w.logger.Debug("watching new directory", "path", ev.Name)
			}
			return false
		}
	}
	return w.scanner.IsDocument(w.root, ev.Name)
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

// WatchedDirs returns the directories currently watched.
func (w *Watcher) WatchedDirs() []string {
	dirs := w.fs.WatchList()
	sort.Strings(dirs)
	return dirs
}

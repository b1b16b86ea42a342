package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for folio.
type Config struct {
	// Corpus discovery and parsing
	Corpus CorpusConfig `koanf:"corpus" toml:"corpus"`

	// BM25 ranking
	Search SearchConfig `koanf:"search" toml:"search"`

	// Approximate term matching
	Fuzzy FuzzyConfig `koanf:"fuzzy" toml:"fuzzy"`

	// Citation metrics
	Citations CitationConfig `koanf:"citations" toml:"citations"`

	// Near-duplicate detection
	Duplicates DuplicateConfig `koanf:"duplicates" toml:"duplicates"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`
}

// CorpusConfig controls which files form the corpus and how links are read.
type CorpusConfig struct {
	Extensions []string `koanf:"extensions" toml:"extensions"`
	BodyLinks  bool     `koanf:"body_links" toml:"body_links"`
}

// SearchConfig holds the BM25 parameters.
type SearchConfig struct {
	K1        float64 `koanf:"k1" toml:"k1"`
	B         float64 `koanf:"b" toml:"b"`
	Limit     int     `koanf:"limit" toml:"limit"`
	Stem      bool    `koanf:"stem" toml:"stem"`
	Stopwords bool    `koanf:"stopwords" toml:"stopwords"`
}

// FuzzyConfig is the length-dependent edit distance policy.
// Terms up to ShortTermLength runes allow ShortTermThreshold edits, terms up
// to MediumTermLength allow MediumTermThreshold, longer terms allow Threshold.
type FuzzyConfig struct {
	Threshold           int `koanf:"threshold" toml:"threshold"`
	ShortTermLength     int `koanf:"short_term_length" toml:"short_term_length"`
	ShortTermThreshold  int `koanf:"short_term_threshold" toml:"short_term_threshold"`
	MediumTermLength    int `koanf:"medium_term_length" toml:"medium_term_length"`
	MediumTermThreshold int `koanf:"medium_term_threshold" toml:"medium_term_threshold"`
}

// CitationConfig controls citation metric denominators and pair output.
type CitationConfig struct {
	ExcludeIsolated bool `koanf:"exclude_isolated" toml:"exclude_isolated"`
	ExcludeSelf     bool `koanf:"exclude_self" toml:"exclude_self"`
	Pairs           int  `koanf:"pairs" toml:"pairs"`
}

// DuplicateConfig controls near-duplicate detection.
type DuplicateConfig struct {
	Threshold   float64 `koanf:"threshold" toml:"threshold"`
	ShingleSize int     `koanf:"shingle_size" toml:"shingle_size"`
}

// ExcludeConfig defines files and directories to skip.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format"`
	Color  bool   `koanf:"color" toml:"color"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Extensions: []string{".md", ".markdown"},
			BodyLinks:  true,
		},
		Search: SearchConfig{
			K1:    1.5,
			B:     0.75,
			Limit: 10,
		},
		Fuzzy: FuzzyConfig{
			Threshold:           2,
			ShortTermLength:     3,
			ShortTermThreshold:  0,
			MediumTermLength:    5,
			MediumTermThreshold: 1,
		},
		Citations: CitationConfig{
			Pairs: 20,
		},
		Duplicates: DuplicateConfig{
			Threshold:   0.8,
			ShingleSize: 3,
		},
		Exclude: ExcludeConfig{
			Dirs: []string{
				".git",
				"node_modules",
				"vendor",
				".obsidian",
				".folio",
			},
			Gitignore: true,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Validate checks that every value is in range.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Corpus.Extensions) == 0 {
		errs = append(errs, errors.New("corpus.extensions must not be empty"))
	}
	for _, ext := range c.Corpus.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Errorf("corpus.extensions: %q must start with a dot", ext))
		}
	}
	if c.Search.K1 < 0 {
		errs = append(errs, fmt.Errorf("search.k1 must be >= 0, got %g", c.Search.K1))
	}
	if c.Search.B < 0 || c.Search.B > 1 {
		errs = append(errs, fmt.Errorf("search.b must be in [0,1], got %g", c.Search.B))
	}
	if c.Search.Limit < 1 {
		errs = append(errs, fmt.Errorf("search.limit must be >= 1, got %d", c.Search.Limit))
	}
	if c.Fuzzy.Threshold < 0 || c.Fuzzy.ShortTermThreshold < 0 || c.Fuzzy.MediumTermThreshold < 0 {
		errs = append(errs, errors.New("fuzzy thresholds must be >= 0"))
	}
	if c.Fuzzy.ShortTermLength > c.Fuzzy.MediumTermLength {
		errs = append(errs, fmt.Errorf("fuzzy.short_term_length (%d) must not exceed fuzzy.medium_term_length (%d)",
			c.Fuzzy.ShortTermLength, c.Fuzzy.MediumTermLength))
	}
	if c.Citations.Pairs < 0 {
		errs = append(errs, fmt.Errorf("citations.pairs must be >= 0, got %d", c.Citations.Pairs))
	}
	if c.Duplicates.Threshold <= 0 || c.Duplicates.Threshold > 1 {
		errs = append(errs, fmt.Errorf("duplicates.threshold must be in (0,1], got %g", c.Duplicates.Threshold))
	}
	if c.Duplicates.ShingleSize < 1 {
		errs = append(errs, fmt.Errorf("duplicates.shingle_size must be >= 1, got %d", c.Duplicates.ShingleSize))
	}
	switch c.Output.Format {
	case "text", "json", "markdown", "html", "toon":
	default:
		errs = append(errs, fmt.Errorf("output.format: unknown format %q", c.Output.Format))
	}
	return errors.Join(errs...)
}

// Load loads configuration from a file on top of the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadResult is a loaded configuration and where it came from.
// Source is empty when the defaults were used.
type LoadResult struct {
	Config *Config
	Source string
}

// LoadOption customizes LoadConfig.
type LoadOption func(*loadOptions)

type loadOptions struct {
	path string
	dirs []string
}

// WithPath loads an explicit file instead of searching.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithSearchDirs overrides the directories searched for a config file.
func WithSearchDirs(dirs ...string) LoadOption {
	return func(o *loadOptions) {
		o.dirs = dirs
	}
}

var configNames = []string{
	"folio.toml",
	"folio.yaml",
	"folio.yml",
	"folio.json",
	".folio.toml",
	".folio.yaml",
	".folio.yml",
	".folio.json",
}

// LoadConfig loads and validates configuration. An explicit path must exist;
// otherwise the standard locations are searched and defaults are used when
// nothing is found.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := &loadOptions{dirs: []string{".", ".folio"}}
	for _, opt := range opts {
		opt(o)
	}

	if o.path != "" {
		cfg, err := Load(o.path)
		if err != nil {
			return nil, fmt.Errorf("loading config %s: %w", o.path, err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", o.path, err)
		}
		return &LoadResult{Config: cfg, Source: o.path}, nil
	}

	if path := find(o.dirs); path != "" {
		cfg, err := Load(path)
		if err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", path, err)
		}
		return &LoadResult{Config: cfg, Source: path}, nil
	}

	return &LoadResult{Config: DefaultConfig()}, nil
}

func find(dirs []string) string {
	for _, dir := range dirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// HasExtension reports whether path has one of the corpus extensions.
func (c *Config) HasExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range c.Corpus.Extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

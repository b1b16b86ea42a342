package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/panbanda/folio/internal/output"
	"github.com/panbanda/folio/internal/progress"
	"github.com/panbanda/folio/internal/report"
	"github.com/panbanda/folio/internal/tools"
	"github.com/panbanda/folio/pkg/config"
	"github.com/panbanda/folio/pkg/corpus"
)

// progressThreshold is the corpus size from which a load bar is drawn.
const progressThreshold = 200

// loadConfig reads --config, or searches the corpus root and the working
// directory.
func (a *app) loadConfig() (*config.LoadResult, error) {
	if a.configPath != "" {
		return config.LoadConfig(config.WithPath(a.configPath))
	}
	return config.LoadConfig(config.WithSearchDirs(
		a.root, filepath.Join(a.root, ".folio"), ".", ".folio",
	))
}

// outputFormat returns --format when given, else the configured default.
func (a *app) outputFormat(cfg *config.Config, changed bool) (output.Format, error) {
	name := a.format
	if !changed && cfg.Output.Format != "" {
		name = cfg.Output.Format
	}
	return output.ParseFormat(name)
}

func (a *app) loadCorpus(ctx context.Context, cfg *config.Config) (*corpus.Corpus, error) {
	loader := corpus.NewLoader(cfg,
		corpus.WithLogger(a.logger),
		corpus.WithProgress(progress.LoadHook(a.stderr, progressThreshold)),
	)
	c, err := loader.Load(ctx, a.root)
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}
	return c, nil
}

// invocation is a validated tool call ready to run.
type invocation struct {
	tool   string
	params map[string]any
	cfg    *config.Config
	format output.Format
}

// prepare checks configuration, format and parameters without touching the
// corpus.
func (a *app) prepare(tool string, params map[string]any, formatChanged bool) (*invocation, error) {
	loaded, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	if loaded.Source != "" {
		a.logger.Debug("loaded config", "path", loaded.Source)
	}
	format, err := a.outputFormat(loaded.Config, formatChanged)
	if err != nil {
		return nil, err
	}
	if _, err := a.registry.Validate(tool, params); err != nil {
		return nil, err
	}
	return &invocation{tool: tool, params: params, cfg: loaded.Config, format: format}, nil
}

// execute loads the corpus, runs the tool and writes the rendered result.
// Nothing is written when any step fails.
func (a *app) execute(ctx context.Context, inv *invocation) error {
	c, err := a.loadCorpus(ctx, inv.cfg)
	if err != nil {
		return err
	}
	env := tools.NewEnv(c, inv.cfg, version)
	env.Logger = a.logger

	res, err := a.registry.Run(ctx, inv.tool, env, inv.params)
	if err != nil {
		return err
	}
	data, err := a.render(res, inv.format, inv.cfg)
	if err != nil {
		return err
	}
	return a.write(data)
}

// colored reports whether text output gets ANSI colors. A nil config
// means the defaults.
func (a *app) colored(cfg *config.Config) bool {
	if cfg != nil && !cfg.Output.Color {
		return false
	}
	return !a.noColor && a.output == ""
}

func (a *app) render(res *output.Result, format output.Format, cfg *config.Config) ([]byte, error) {
	var data any = res
	if format == output.FormatHTML {
		page, err := report.Wrap(res)
		if err != nil {
			return nil, err
		}
		data = page
	}
	var buf bytes.Buffer
	if err := output.NewFormatter(format, &buf, a.colored(cfg)).Output(data); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

func (a *app) write(data []byte) error {
	if a.output == "" {
		_, err := a.stdout.Write(data)
		return err
	}
	if err := os.WriteFile(a.output, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", a.output, err)
	}
	a.success("Output written to %s", a.output)
	return nil
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/fatih/color"
	"github.com/panbanda/folio/internal/logger"
	"github.com/panbanda/folio/internal/tools"
	"github.com/spf13/cobra"
)

// app holds the persistent flags and process-wide state of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	root        string
	format      string
	output      string
	configPath  string
	verbose     bool
	logFormat   string
	noColor     bool
	pprofPrefix string

	registry *tools.Registry
	logger   *slog.Logger
	cpuFile  *os.File
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		stdout:   stdout,
		stderr:   stderr,
		registry: tools.Builtin(),
		logger:   logger.Discard(),
	}

	cmd := &cobra.Command{
		Use:   "folio",
		Short: "Knowledge-base analysis toolkit",
		Long: `Folio analyzes a directory of Markdown notes as a knowledge base: it ranks
documents for a query, orders them by prerequisites, finds reference cycles and
the critical path, measures citations and detects duplicated notes.

Every analysis is a tool. Run one directly (folio search ...), through the
generic runner (folio run search -p query=...), or serve them all over MCP.`,
		Version:            version,
		SilenceErrors:      true,
		SilenceUsage:       true,
		PersistentPreRunE:  a.before,
		PersistentPostRunE: a.after,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err}
	})

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.root, "root", "r", ".", "Corpus root directory")
	flags.StringVarP(&a.format, "format", "f", "text", "Output format: text, json, markdown, html, toon")
	flags.StringVarP(&a.output, "output", "o", "", "Write output to file")
	flags.StringVarP(&a.configPath, "config", "c", "", "Path to config file (TOML, YAML, or JSON)")
	flags.BoolVar(&a.verbose, "verbose", false, "Enable debug logging on stderr")
	flags.StringVar(&a.logFormat, "log-format", "text", "Log record format: text or json")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable colored output")
	flags.StringVar(&a.pprofPrefix, "pprof", "", "Enable pprof profiling (creates <prefix>.cpu.pprof and <prefix>.mem.pprof)")

	cmd.AddGroup(&cobra.Group{ID: "tools", Title: "Analysis Tools:"})
	for _, t := range a.registry.Tools() {
		cmd.AddCommand(newToolCmd(a, t))
	}
	cmd.AddCommand(
		newRunCmd(a),
		newToolsCmd(a),
		newConfigCmd(a),
		newMCPCmd(a),
		newWatchCmd(a),
	)
	return cmd
}

func (a *app) before(_ *cobra.Command, _ []string) error {
	var jsonLogs bool
	switch a.logFormat {
	case "text":
	case "json":
		jsonLogs = true
	default:
		return &usageError{fmt.Errorf("unknown log format %q (want text or json)", a.logFormat)}
	}
	a.logger = logger.New(logger.Options{Verbose: a.verbose, JSON: jsonLogs, Writer: a.stderr})
	if a.noColor {
		color.NoColor = true
	}

	if a.pprofPrefix != "" {
		f, err := os.Create(a.pprofPrefix + ".cpu.pprof")
		if err != nil {
			return fmt.Errorf("failed to create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return fmt.Errorf("failed to start CPU profile: %w", err)
		}
		a.cpuFile = f
	}
	return nil
}

func (a *app) after(_ *cobra.Command, _ []string) error {
	if a.pprofPrefix == "" {
		return nil
	}
	pprof.StopCPUProfile()
	if a.cpuFile != nil {
		a.cpuFile.Close()
		a.success("CPU profile written to %s.cpu.pprof", a.pprofPrefix)
	}

	memFile, err := os.Create(a.pprofPrefix + ".mem.pprof")
	if err != nil {
		return fmt.Errorf("failed to create memory profile: %w", err)
	}
	defer memFile.Close()

	runtime.GC()
	if err := pprof.WriteHeapProfile(memFile); err != nil {
		return fmt.Errorf("failed to write memory profile: %w", err)
	}
	a.success("Memory profile written to %s.mem.pprof", a.pprofPrefix)
	return nil
}

func (a *app) success(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(a.stderr, format+"\n", args...)
}

func (a *app) notice(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(a.stderr, format+"\n", args...)
}

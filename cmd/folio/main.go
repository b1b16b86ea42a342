package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/panbanda/folio/internal/output"
	"github.com/panbanda/folio/internal/tools"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// usageError marks bad command-line input: flags, arguments or commands.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	if strings.HasPrefix(err.Error(), "unknown command") {
		err = &usageError{err}
	}
	fmt.Fprintln(stderr, color.RedString("Error: %v", err))
	return exitCode(err)
}

// exitCode maps parameter and usage problems to 2 and everything else to 1.
func exitCode(err error) int {
	var (
		ue *usageError
		fe *output.UnknownFormatError
	)
	switch {
	case err == nil:
		return exitOK
	case tools.IsParamError(err), errors.As(err, &ue), errors.As(err, &fe):
		return exitUsage
	default:
		return exitError
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/panbanda/folio/internal/progress"
	"github.com/panbanda/folio/pkg/watch"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		params   []string
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch <tool>",
		Short: "Re-run a tool whenever documents change",
		Long: `Runs a tool once, then again every time documents under the corpus root are
written, created, removed or renamed. Bursts of changes are batched.

Examples:
  folio watch order
  folio watch search -p query=kahn --debounce 1s`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return &usageError{fmt.Errorf("watch expects exactly one tool name, got %d", len(args))}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.registry.Lookup(args[0])
			if err != nil {
				return err
			}
			values, err := t.ParseArgs(params)
			if err != nil {
				return err
			}
			inv, err := a.prepare(t.Name, values, cmd.Flags().Changed("format"))
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := a.execute(ctx, inv); err != nil {
				return err
			}

			w, err := watch.New(a.root, inv.cfg,
				watch.WithDebounce(debounce),
				watch.WithLogger(a.logger),
			)
			if err != nil {
				return fmt.Errorf("starting watcher: %w", err)
			}
			defer w.Close()

			a.notice("Watching %s for changes (Ctrl+C to stop)", w.Root())
			err = w.Run(ctx, func(ctx context.Context, changed []string) {
				a.notice("%s", describeChanges(w.Root(), changed))
				spinner := progress.NewSpinner("Re-running " + t.Name)
				if err := a.execute(ctx, inv); err != nil {
					spinner.FinishError(err)
					return
				}
				spinner.FinishSuccess()
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Tool parameter as key=value (repeatable)")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before re-running")
	return cmd
}

func describeChanges(root string, changed []string) string {
	if len(changed) == 1 {
		rel, err := filepath.Rel(root, changed[0])
		if err != nil {
			rel = changed[0]
		}
		return "Changed: " + filepath.ToSlash(rel)
	}
	return fmt.Sprintf("Changed: %d documents", len(changed))
}

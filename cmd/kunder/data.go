package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/diewo77/kunder-tools/internal/services"
)

type runFunc func(ctx context.Context, r *services.Runner, opts services.Options) (*services.Report, error)

// newDataCommand builds a tenant-scoped reconciliation command with a single commit flag.
func newDataCommand(app *App, use, short, commitFlag string, run runFunc) *cobra.Command {
	var commit bool
	cmd := &cobra.Command{
		Use:     use,
		GroupID: "data",
		Short:   short,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			r, opts, err := app.Runner(ctx)
			if err != nil {
				return err
			}
			opts.Commit = commit
			rep, err := run(ctx, r, opts)
			if perr := app.report(rep); perr != nil {
				app.log.Warn().Err(perr).Msg("print report")
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&commit, commitFlag, false, "write changes (default is a dry run)")
	return cmd
}

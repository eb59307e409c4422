package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/diewo77/kunder-tools/internal/services"
)

func newDedupCommand(app *App) *cobra.Command {
	return newDataCommand(app, "dedup", "Delete duplicate customers, keeping the lowest id", "fix",
		func(ctx context.Context, r *services.Runner, opts services.Options) (*services.Report, error) {
			return r.Dedup(ctx, opts)
		})
}

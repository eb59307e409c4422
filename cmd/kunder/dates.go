package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/diewo77/kunder-tools/internal/services"
)

func newBackfillDatesCommand(app *App) *cobra.Command {
	return newDataCommand(app, "backfill-dates", "Project missing next-inspection dates from the last inspection", "update",
		func(ctx context.Context, r *services.Runner, opts services.Options) (*services.Report, error) {
			return r.BackfillDates(ctx, opts)
		})
}

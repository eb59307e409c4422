package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/diewo77/kunder-tools/internal/reconcile"
	"github.com/diewo77/kunder-tools/internal/services"
)

func newFixCategoriesCommand(app *App) *cobra.Command {
	return newDataCommand(app, "fix-categories", "Re-derive categories from inspection fields", "update",
		func(ctx context.Context, r *services.Runner, opts services.Options) (*services.Report, error) {
			return r.FixCategories(ctx, opts)
		})
}

func newClassifyQualityCommand(app *App) *cobra.Command {
	return newDataCommand(app, "classify-quality", "Tag coordinates as exact or area from the address", "update",
		func(ctx context.Context, r *services.Runner, opts services.Options) (*services.Report, error) {
			return r.ClassifyQuality(ctx, opts, reconcile.DefaultClassifier)
		})
}

package services

import (
	"context"

	"github.com/diewo77/kunder-tools/internal/models"
	"github.com/diewo77/kunder-tools/internal/reconcile"
)

// FixCategories re-derives the category of every customer from its inspection fields.
func (r *Runner) FixCategories(ctx context.Context, opts Options) (*Report, error) {
	return r.run(ctx, opts, job{
		name:        "fix-categories",
		requireRows: true,
		plan: func(_ context.Context, c models.Customer) (reconcile.Diff, error) {
			return reconcile.CategoryDiff(c), nil
		},
	})
}

// ClassifyQuality tags every customer's coordinates as exact or area, and clears the
// tag on customers without coordinates.
func (r *Runner) ClassifyQuality(ctx context.Context, opts Options, classifier reconcile.QualityClassifier) (*Report, error) {
	return r.run(ctx, opts, job{
		name:        "classify-quality",
		requireRows: true,
		plan: func(_ context.Context, c models.Customer) (reconcile.Diff, error) {
			return classifier.QualityDiff(c), nil
		},
	})
}

// BackfillDates projects missing next-inspection dates from the last inspection and
// the category's interval.
func (r *Runner) BackfillDates(ctx context.Context, opts Options) (*Report, error) {
	return r.run(ctx, opts, job{
		name:        "backfill-dates",
		requireRows: true,
		plan: func(_ context.Context, c models.Customer) (reconcile.Diff, error) {
			d, err := reconcile.NextDateDiff(c)
			if err != nil {
				return d, skipf("%v", err)
			}
			return d, nil
		},
	})
}

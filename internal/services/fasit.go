package services

import (
	"context"
	"fmt"

	"github.com/diewo77/kunder-tools/internal/models"
	"github.com/diewo77/kunder-tools/internal/reconcile"
	"github.com/diewo77/kunder-tools/internal/reference"
)

// BackfillFasit fills empty customer fields from the reference rows matched by name and
// re-derives the category. Customers without a reference row are left unchanged.
func (r *Runner) BackfillFasit(ctx context.Context, opts Options, rows []reference.Row) (*Report, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w in reference file", ErrNoRows)
	}
	ix := reconcile.IndexByName(rows)
	r.Log.Debug().Int("rows", len(rows)).Int("names", len(ix)).Msg("reference indexed")

	var unmatched int
	rep, err := r.run(ctx, opts, job{
		name:        "backfill-fasit",
		requireRows: true,
		plan: func(_ context.Context, c models.Customer) (reconcile.Diff, error) {
			row, ok := ix.Match(c)
			if !ok {
				unmatched++
				return nil, nil
			}
			return reconcile.FillFromReference(c, row), nil
		},
	})
	if err == nil {
		r.Log.Info().Int("unmatched", unmatched).Msg("reference matching done")
	}
	return rep, err
}

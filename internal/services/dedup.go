package services

import (
	"context"
	"fmt"

	"github.com/diewo77/kunder-tools/internal/reconcile"
	"github.com/diewo77/kunder-tools/internal/store"
)

// Dedup groups the tenant's customers by normalized name and address and deletes every
// record but the lowest id in each group. Checked counts records, Changed the
// duplicates found.
func (r *Runner) Dedup(ctx context.Context, opts Options) (*Report, error) {
	rel, err := r.guard(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer r.release(ctx, rel)

	records, err := r.Store.ListCustomers(ctx, store.Filter{OrganizationID: opts.OrganizationID})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w for organization %d", ErrNoRows, opts.OrganizationID)
	}

	rep := &Report{Name: "dedup", Commit: opts.Commit, Checked: len(records)}
	groups := reconcile.FindDuplicates(records)
	r.Log.Info().Int("groups", len(groups)).Msg("duplicate groups found")

	for _, g := range groups {
		r.Log.Info().
			Uint("canonical", g.Canonical.ID).
			Str("name", g.Canonical.Name).
			Uints("duplicates", g.IDs()).
			Msg("duplicate group")
		for _, dup := range g.Duplicates {
			if err := ctx.Err(); err != nil {
				return rep, err
			}
			rep.Changed++
			if !opts.Commit {
				continue
			}
			log := r.recordLog(dup)
			if err := r.Store.DeleteCustomer(ctx, dup.ID); err != nil {
				rep.Failed++
				log.Error().Err(err).Msg("delete failed")
				continue
			}
			rep.Applied++
			log.Info().Uint("canonical", g.Canonical.ID).Msg("deleted duplicate")
		}
	}
	return rep, nil
}

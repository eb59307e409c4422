package services

import (
	"context"
	"fmt"

	"github.com/diewo77/kunder-tools/internal/models"
	"github.com/diewo77/kunder-tools/internal/store"
)

// CustomerSource lists customers from the local database.
type CustomerSource interface {
	ListCustomers(ctx context.Context, f store.Filter) ([]models.Customer, error)
}

// CustomerSink is the hosted store side of a local migration.
type CustomerSink interface {
	CustomerExists(ctx context.Context, id uint) (bool, error)
	InsertCustomer(ctx context.Context, c *models.Customer) error
	ResyncCustomerIDs(ctx context.Context) error
}

// MigrateLocal copies every local customer into the hosted store under the given
// tenant, keeping ids. Ids that already exist in the hosted store are skipped.
func (r *Runner) MigrateLocal(ctx context.Context, opts Options, src CustomerSource, dst CustomerSink) (*Report, error) {
	rel, err := r.guard(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer r.release(ctx, rel)

	records, err := src.ListCustomers(ctx, store.Filter{})
	if err != nil {
		return nil, fmt.Errorf("read local database: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w in local database", ErrNoRows)
	}

	rep := &Report{Name: "migrate-local", Commit: opts.Commit}
	for _, c := range records {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		rep.Checked++
		log := r.recordLog(c)

		exists, err := dst.CustomerExists(ctx, c.ID)
		if err != nil {
			rep.Failed++
			log.Error().Err(err).Msg("lookup failed")
			continue
		}
		if exists {
			rep.Skipped++
			log.Debug().Msg("already migrated")
			continue
		}

		rep.Changed++
		if !opts.Commit {
			log.Info().Msg("would insert")
			continue
		}
		c.OrganizationID = opts.OrganizationID
		if err := dst.InsertCustomer(ctx, &c); err != nil {
			rep.Failed++
			log.Error().Err(err).Msg("insert failed")
			continue
		}
		rep.Applied++
		log.Info().Msg("inserted")
	}

	if opts.Commit && rep.Applied > 0 {
		if err := dst.ResyncCustomerIDs(ctx); err != nil {
			r.Log.Warn().Err(err).Msg("resync id sequence")
		}
	}
	return rep, nil
}

// Package services runs the maintenance tasks: load a tenant's records, ask the
// reconcile engine what must change and, in commit mode, write it back one record at
// a time.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"

	"github.com/diewo77/kunder-tools/internal/lock"
	"github.com/diewo77/kunder-tools/internal/models"
	"github.com/diewo77/kunder-tools/internal/reconcile"
	"github.com/diewo77/kunder-tools/internal/store"
)

var (
	// ErrNoRows is a setup error: a run that needs input found none.
	ErrNoRows = errors.New("no rows returned")
	// ErrNoTenant is a setup error: data commands are scoped to one organization.
	ErrNoTenant = errors.New("organization id is required")
	// errSkip marks a record the run cannot reconcile from its own data.
	errSkip = errors.New("skipped")
)

// CustomerStore is the data-store capability the reconciliation runs need.
type CustomerStore interface {
	ListCustomers(ctx context.Context, f store.Filter) ([]models.Customer, error)
	UpdateCustomer(ctx context.Context, id uint, cols map[string]any) error
	DeleteCustomer(ctx context.Context, id uint) error
}

// Options select the tenant and the mode of a run.
type Options struct {
	OrganizationID uint
	// Commit writes changes. Without it a run only reports what it would change.
	Commit bool
}

// Report counts what a run did. Changed counts records that needed a write; Applied
// the writes that succeeded.
type Report struct {
	Name    string
	Commit  bool
	Checked int
	Changed int
	Applied int
	Failed  int
	Skipped int
}

// Mode returns "commit" or "dry-run".
func (r *Report) Mode() string {
	if r.Commit {
		return "commit"
	}
	return "dry-run"
}

// Print renders the report as a table.
func (r *Report) Print(w io.Writer) error {
	table := tablewriter.NewTable(w)
	table.Header("task", "mode", "checked", "changed", "applied", "failed", "skipped")
	if err := table.Append(
		r.Name, r.Mode(),
		strconv.Itoa(r.Checked), strconv.Itoa(r.Changed), strconv.Itoa(r.Applied),
		strconv.Itoa(r.Failed), strconv.Itoa(r.Skipped),
	); err != nil {
		return err
	}
	return table.Render()
}

// Runner carries what every reconciliation run shares.
type Runner struct {
	Store  CustomerStore
	Locker lock.Locker
	Log    zerolog.Logger
}

func NewRunner(st CustomerStore, locker lock.Locker, log zerolog.Logger) *Runner {
	if locker == nil {
		locker = lock.Noop{}
	}
	return &Runner{Store: st, Locker: locker, Log: log}
}

// plan computes the update for one record. An error wrapping errSkip with a
// non-empty diff still writes the diff.
type plan func(ctx context.Context, c models.Customer) (reconcile.Diff, error)

type job struct {
	name        string
	filter      store.Filter
	requireRows bool
	plan        plan
}

func skipf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errSkip, fmt.Sprintf(format, args...))
}

// guard checks the tenant and, in commit mode, takes the tenant lock.
func (r *Runner) guard(ctx context.Context, opts Options) (lock.Release, error) {
	if opts.OrganizationID == 0 {
		return nil, ErrNoTenant
	}
	if !opts.Commit {
		return func(context.Context) error { return nil }, nil
	}
	return r.Locker.Acquire(ctx, opts.OrganizationID)
}

func (r *Runner) release(ctx context.Context, rel lock.Release) {
	if err := rel(context.WithoutCancel(ctx)); err != nil {
		r.Log.Warn().Err(err).Msg("release tenant lock")
	}
}

func (r *Runner) recordLog(c models.Customer) zerolog.Logger {
	return r.Log.With().Uint("id", c.ID).Str("name", c.Name).Logger()
}

// run is the shared load, plan, write loop. Only setup failures are returned;
// per-record failures are counted and logged.
func (r *Runner) run(ctx context.Context, opts Options, j job) (*Report, error) {
	rel, err := r.guard(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer r.release(ctx, rel)

	j.filter.OrganizationID = opts.OrganizationID
	records, err := r.Store.ListCustomers(ctx, j.filter)
	if err != nil {
		return nil, err
	}
	if j.requireRows && len(records) == 0 {
		return nil, fmt.Errorf("%w for organization %d", ErrNoRows, opts.OrganizationID)
	}

	rep := &Report{Name: j.name, Commit: opts.Commit}
	for _, c := range records {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		rep.Checked++
		log := r.recordLog(c)

		diff, err := j.plan(ctx, c)
		if err != nil {
			if !errors.Is(err, errSkip) {
				rep.Failed++
				log.Error().Err(err).Msg("record failed")
				continue
			}
			if diff.Empty() {
				rep.Skipped++
				log.Warn().Err(err).Msg("record skipped")
				continue
			}
			log.Warn().Err(err).Msg("record partly reconciled")
		}
		if diff.Empty() {
			continue
		}

		rep.Changed++
		if !opts.Commit {
			log.Info().Strs("columns", diff.Columns()).Msg("would update")
			continue
		}
		if err := r.Store.UpdateCustomer(ctx, c.ID, diff); err != nil {
			rep.Failed++
			log.Error().Err(err).Msg("update failed")
			continue
		}
		rep.Applied++
		log.Info().Strs("columns", diff.Columns()).Msg("updated")
	}
	return rep, nil
}

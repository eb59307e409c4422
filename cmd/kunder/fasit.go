package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diewo77/kunder-tools/internal/config"
	"github.com/diewo77/kunder-tools/internal/reference"
	"github.com/diewo77/kunder-tools/internal/services"
)

func newBackfillFasitCommand(app *App) *cobra.Command {
	var rows []reference.Row
	cmd := newDataCommand(app, "backfill-fasit", "Fill empty fields from the reference file (FASIT_PATH)", "update",
		func(ctx context.Context, r *services.Runner, opts services.Options) (*services.Report, error) {
			return r.BackfillFasit(ctx, opts, rows)
		})
	// The reference file is read before connecting so a bad path fails fast.
	cmd.PreRunE = func(*cobra.Command, []string) error {
		ref := app.cfg.Reference
		if err := app.cfg.Require(config.KeyReference); err != nil {
			return err
		}
		layout, err := reference.LayoutByName(ref.Layout)
		if err != nil {
			return err
		}
		rows, err = reference.ReadFile(ref.Path, layout)
		if err != nil {
			return fmt.Errorf("read reference file: %w", err)
		}
		app.log.Info().Str("path", ref.Path).Str("layout", layout.Name).Int("rows", len(rows)).Msg("reference loaded")
		return nil
	}
	return cmd
}

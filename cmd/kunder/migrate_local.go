package main

import (
	"github.com/spf13/cobra"

	"github.com/diewo77/kunder-tools/internal/config"
	"github.com/diewo77/kunder-tools/internal/db"
	"github.com/diewo77/kunder-tools/internal/store"
)

func newMigrateLocalCommand(app *App) *cobra.Command {
	var update bool
	cmd := &cobra.Command{
		Use:     "migrate-local",
		GroupID: "data",
		Short:   "Copy customers from the local sqlite file (LOCAL_DB_PATH) into the hosted store",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := app.cfg.Require(config.KeyLocalDB); err != nil {
				return err
			}
			r, opts, err := app.Runner(ctx)
			if err != nil {
				return err
			}
			local, err := db.OpenLocal(app.cfg.LocalDB, app.verbose)
			if err != nil {
				return err
			}
			if sqlDB, err := local.DB(); err == nil {
				defer sqlDB.Close()
			}
			hosted, err := app.Hosted(ctx)
			if err != nil {
				return err
			}

			opts.Commit = update
			rep, err := r.MigrateLocal(ctx, opts, store.New(local), store.New(hosted))
			if perr := app.report(rep); perr != nil {
				app.log.Warn().Err(perr).Msg("print report")
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&update, "update", false, "write changes (default is a dry run)")
	return cmd
}

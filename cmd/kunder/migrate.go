package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diewo77/kunder-tools/internal/config"
	"github.com/diewo77/kunder-tools/internal/db"
)

func newMigrateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "migrate",
		GroupID: "schema",
		Short:   "Create or update tables from the models",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := app.Hosted(cmd.Context())
			if err != nil {
				return err
			}
			if err := db.Migrate(conn); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			app.log.Info().Msg("migrations completed")
			return nil
		},
	}
}

func newAddColumnsCommand(app *App) *cobra.Command {
	var update bool
	cmd := &cobra.Command{
		Use:     "add-columns",
		GroupID: "schema",
		Short:   "Apply pending SQL migrations (geocode quality, inspection intervals, last login)",
		Args:    cobra.NoArgs,
		Example: `  kunder add-columns            # show current and pending versions
  kunder add-columns --update   # apply pending migrations`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				st  db.MigrationStatus
				err error
			)
			if update {
				if err := app.cfg.Require(config.KeyDatabase); err != nil {
					return err
				}
				url := app.cfg.Database.URL()
				app.log.Debug().Str("url", db.MaskDSN(url)).Msg("schema target")
				st, err = db.RunSQLMigrations(url)
			} else {
				conn, cerr := app.Hosted(cmd.Context())
				if cerr != nil {
					return cerr
				}
				st, err = db.SQLMigrationStatus(cmd.Context(), conn)
			}
			if err != nil {
				return fmt.Errorf("sql migrations: %w", err)
			}
			ev := app.log.Info().Uint("version", st.Current).Bool("dirty", st.Dirty).Uints("pending", st.Pending)
			if update {
				ev.Msg("schema up to date")
			} else {
				ev.Msg("schema status (dry run)")
			}
			if st.Dirty {
				return fmt.Errorf("schema version %d is dirty; fix it by hand before retrying", st.Current)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&update, "update", false, "apply pending migrations")
	return cmd
}

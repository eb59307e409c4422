package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "kunder",
		Short: "Maintenance tasks for the customer database",
		Long: `kunder repairs and backfills customer records in the hosted store.

Data commands only report what they would change unless their commit flag
(--update or --fix) is given. Reads and writes are scoped to ORGANIZATION_ID.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			app.setup()
		},
	}
	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "debug logging")

	root.AddGroup(
		&cobra.Group{ID: "data", Title: "Data commands:"},
		&cobra.Group{ID: "schema", Title: "Schema commands:"},
		&cobra.Group{ID: "accounts", Title: "Account commands:"},
	)
	root.AddCommand(
		newMigrateCommand(app),
		newAddColumnsCommand(app),
		newFixCategoriesCommand(app),
		newClassifyQualityCommand(app),
		newDedupCommand(app),
		newFixCoordinatesCommand(app),
		newGeocodeCommand(app),
		newBackfillDatesCommand(app),
		newBackfillFasitCommand(app),
		newMigrateLocalCommand(app),
		newLoginsCommand(app),
		newProvisionUserCommand(app),
		newProvisionClientCommand(app),
	)
	return root
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/diewo77/kunder-tools/internal/services"
	"github.com/diewo77/kunder-tools/internal/store"
)

func (a *App) accounts(cmd *cobra.Command) (*services.AccountService, error) {
	conn, err := a.Hosted(cmd.Context())
	if err != nil {
		return nil, err
	}
	return services.NewAccountService(store.New(conn), a.log), nil
}

func newLoginsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "logins",
		GroupID: "accounts",
		Short:   "Show recent admin and client logins (LOGIN_TAIL_WINDOW, LOGIN_TAIL_LIMIT)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := app.accounts(cmd)
			if err != nil {
				return err
			}
			events, err := svc.RecentLogins(cmd.Context(), app.cfg.Logins.Window, app.cfg.Logins.Limit)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				app.log.Info().Dur("window", app.cfg.Logins.Window).Msg("no logins")
				return nil
			}
			return services.PrintLogins(app.out, events)
		},
	}
}

func newProvisionUserCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "provision-user NAME EMAIL PASSWORD",
		GroupID: "accounts",
		Short:   "Create an admin account",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.accounts(cmd)
			if err != nil {
				return err
			}
			_, err = svc.ProvisionUser(cmd.Context(), services.AccountInput{Name: args[0], Email: args[1], Password: args[2]})
			return err
		},
	}
}

func newProvisionClientCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "provision-client NAME EMAIL COMPANY PASSWORD",
		GroupID: "accounts",
		Short:   "Create a client portal account",
		Args:    cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.accounts(cmd)
			if err != nil {
				return err
			}
			_, err = svc.ProvisionClient(cmd.Context(), services.AccountInput{Name: args[0], Email: args[1], Company: args[2], Password: args[3]})
			return err
		},
	}
}

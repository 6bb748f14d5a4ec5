package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/plangate/internal/db"
	"github.com/spf13/cobra"
)

func newDBCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the Postgres connection string in the OS keyring",
	}

	cmd.AddCommand(
		newDBSetDSNCmd(app),
		newDBClearDSNCmd(app),
	)

	return cmd
}

func newDBSetDSNCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "set-dsn DSN",
		Short:       "Store a Postgres connection string",
		Long:        "Store a Postgres connection string. Keep the password out of it; use PGPASSWORD or ~/.pgpass.",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.SetDSN == nil {
				return errors.New("keyring is not configured")
			}
			dsn := args[0]
			if _, err := db.ValidateConnString(dsn); err != nil {
				return err
			}
			if err := app.SetDSN(dsn); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Connection string stored in the OS keyring.")
			return nil
		},
	}
}

func newDBClearDSNCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "clear-dsn",
		Short:       "Remove the stored Postgres connection string",
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.ClearDSN == nil {
				return errors.New("keyring is not configured")
			}
			if err := app.ClearDSN(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Connection string removed.")
			return nil
		},
	}
}

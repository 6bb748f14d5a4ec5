package cli

import (
	"fmt"

	"github.com/alexanderramin/plangate/internal/appstate"
	"github.com/spf13/cobra"
)

func newUICmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Read and change interface preferences",
	}

	cmd.AddCommand(
		newUIGetCmd(app),
		newUISetCmd(app),
		newUIToggleSidebarCmd(app),
	)

	return cmd
}

func newUIGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "get [KEY]",
		Short:       "Print one preference, or all of them",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := appstate.Keys
			if len(args) == 1 {
				keys = args
			}
			for _, key := range keys {
				v, err := app.State.Get(key)
				if err != nil {
					return err
				}
				if len(args) == 1 {
					fmt.Fprintln(cmd.OutOrStdout(), v)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", key, v)
				}
			}
			return nil
		},
	}
}

func newUISetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "set KEY VALUE",
		Short:       "Change a preference",
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.State.Set(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", args[0], args[1])
			return nil
		},
	}
}

func newUIToggleSidebarCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "toggle-sidebar",
		Short:       "Collapse or expand the sidebar",
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			collapsed, err := app.State.ToggleSidebar()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s=%t\n", appstate.KeySidebarCollapsed, collapsed)
			return nil
		},
	}
}

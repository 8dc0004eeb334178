package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "login <token>",
		Short:       "Sign in with a session token from the identity provider",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{readOnly: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Session.SignIn(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed in")
			return nil
		},
	}
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "logout",
		Short:       "Forget the stored session token",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{readOnly: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.Session.SignOut(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}

package auth

import (
	"fmt"

	"github.com/huynnh/calsync/adapter/cli"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Session == nil {
			return cli.ErrNotInitialized
		}
		if !app.Session.Authenticated() {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
			return nil
		}
		if err := app.Session.Logout(cmd.Context()); err != nil {
			return fmt.Errorf("failed to sign out: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

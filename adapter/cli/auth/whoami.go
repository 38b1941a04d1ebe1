package auth

import (
	"fmt"

	"github.com/huynnh/calsync/adapter/cli"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Session == nil {
			return cli.ErrNotInitialized
		}
		user, ok := app.Session.User()
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n", user.DisplayName())
		fmt.Fprintf(out, "  email: %s\n", user.Email)
		fmt.Fprintf(out, "  id:    %d\n", user.ID)
		return nil
	},
}

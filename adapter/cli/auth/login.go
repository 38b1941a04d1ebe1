package auth

import (
	"fmt"

	"github.com/huynnh/calsync/adapter/cli"
	identityDomain "github.com/huynnh/calsync/internal/identity/domain"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	Long: `Sign in with email and password. The password is prompted for
when --password is not given.

Examples:
  calsync auth login --email lan@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Session == nil {
			return cli.ErrNotInitialized
		}

		password := loginPassword
		if password == "" {
			var err error
			if password, err = readSecret(cmd, "Password: "); err != nil {
				return err
			}
		}

		user, err := app.Session.Login(cmd.Context(), identityDomain.Credentials{
			Email:    loginEmail,
			Password: password,
		})
		if err != nil {
			return err
		}

		if app.Orchestrator != nil {
			_ = app.Orchestrator.Hydrate(cmd.Context())
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", user.DisplayName())
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email (required)")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password")
	_ = loginCmd.MarkFlagRequired("email")
}

package auth

import (
	"fmt"

	"github.com/huynnh/calsync/adapter/cli"
	identityDomain "github.com/huynnh/calsync/internal/identity/domain"
	"github.com/spf13/cobra"
)

var (
	registerEmail     string
	registerPassword  string
	registerFirstName string
	registerLastName  string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Session == nil {
			return cli.ErrNotInitialized
		}

		password := registerPassword
		if password == "" {
			var err error
			if password, err = readSecret(cmd, "Password: "); err != nil {
				return err
			}
		}

		user, err := app.Session.Register(cmd.Context(), identityDomain.Registration{
			Email:     registerEmail,
			Password:  password,
			FirstName: registerFirstName,
			LastName:  registerLastName,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Account created. Signed in as %s\n", user.DisplayName())
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVarP(&registerEmail, "email", "e", "", "account email (required)")
	registerCmd.Flags().StringVarP(&registerPassword, "password", "p", "", "account password")
	registerCmd.Flags().StringVar(&registerFirstName, "first-name", "", "first name")
	registerCmd.Flags().StringVar(&registerLastName, "last-name", "", "last name")
	_ = registerCmd.MarkFlagRequired("email")
}

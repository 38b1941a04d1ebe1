package auth

import (
	"fmt"

	"github.com/huynnh/calsync/adapter/cli"
	"github.com/spf13/cobra"
)

var (
	resetEmail    string
	resetToken    string
	resetPassword string
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Request a password reset email",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Session == nil {
			return cli.ErrNotInitialized
		}
		if err := app.Session.RequestPasswordReset(cmd.Context(), resetEmail); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Reset instructions sent to %s\n", resetEmail)
		return nil
	},
}

var resetConfirmCmd = &cobra.Command{
	Use:   "reset-confirm",
	Short: "Set a new password with a reset token",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Session == nil {
			return cli.ErrNotInitialized
		}
		password := resetPassword
		if password == "" {
			var err error
			if password, err = readSecret(cmd, "New password: "); err != nil {
				return err
			}
		}
		if err := app.Session.ConfirmPasswordReset(cmd.Context(), resetToken, password); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Password updated. Sign in with `calsync auth login`.")
		return nil
	},
}

func init() {
	resetCmd.Flags().StringVarP(&resetEmail, "email", "e", "", "account email (required)")
	_ = resetCmd.MarkFlagRequired("email")

	resetConfirmCmd.Flags().StringVar(&resetToken, "token", "", "token from the reset email (required)")
	resetConfirmCmd.Flags().StringVarP(&resetPassword, "password", "p", "", "new password")
	_ = resetConfirmCmd.MarkFlagRequired("token")
}

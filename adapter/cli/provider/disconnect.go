package provider

import (
	"fmt"

	calendarDomain "github.com/huynnh/calsync/internal/calendar/domain"
	"github.com/spf13/cobra"
)

var disconnectCmd = &cobra.Command{
	Use:   "disconnect <provider>",
	Short: "Disconnect a calendar provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := providerApp()
		if err != nil {
			return err
		}
		p, err := calendarDomain.ParseProvider(args[0])
		if err != nil {
			return err
		}
		if !app.Orchestrator.IsConnected(p) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is not connected.\n", p.DisplayName())
			return nil
		}
		if err := app.Orchestrator.Disconnect(cmd.Context(), p); err != nil {
			return fmt.Errorf("failed to disconnect %s: %w", p.DisplayName(), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s disconnected.\n", p.DisplayName())
		return nil
	},
}

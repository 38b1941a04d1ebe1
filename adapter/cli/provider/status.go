package provider

import (
	"fmt"

	"github.com/huynnh/calsync/adapter/cli"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show provider connection status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := providerApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		for _, status := range app.Orchestrator.Statuses() {
			fmt.Fprintf(out, "%s: %s\n", status.Provider.DisplayName(), status.Status)
			if status.AuthURL != "" && !status.Connected {
				fmt.Fprintf(out, "  authorize at: %s\n", status.AuthURL)
			}
			if status.LastError != "" {
				fmt.Fprintf(out, "  error: %s\n", status.LastError)
			}
			if app.SyncStates == nil {
				continue
			}
			state, err := app.SyncStates.Find(ctx, status.Provider)
			if err != nil {
				return fmt.Errorf("failed to load sync state: %w", err)
			}
			if state == nil || !state.HasSynced() {
				continue
			}
			fmt.Fprintf(out, "  last sync: %s (%d items)\n",
				state.LastSyncedAt().In(app.Location).Format(cli.DateTimeLayout), state.LastItems())
			if state.SyncErrors() > 0 {
				fmt.Fprintf(out, "  failed syncs since: %d (%s)\n", state.SyncErrors(), state.LastError())
			}
		}
		return nil
	},
}

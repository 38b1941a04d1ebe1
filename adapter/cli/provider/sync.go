package provider

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync [provider]",
	Short: "Sync the connected provider now",
	Long: `Run one sync cycle: pull the provider's events and tasks, push local
ones, then refresh the merged calendar.

Without an argument the connected provider is synced.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := providerApp()
		if err != nil {
			return err
		}
		p, err := resolveProvider(app, args)
		if err != nil {
			return err
		}

		outcome, err := app.Orchestrator.Sync(cmd.Context(), p)
		if err != nil {
			return fmt.Errorf("failed to sync %s: %w", p.DisplayName(), err)
		}
		out := cmd.OutOrStdout()
		if outcome.Dropped {
			fmt.Fprintf(out, "A %s sync is already running.\n", p.DisplayName())
			return nil
		}
		fmt.Fprintf(out, "Synced %s: %d items in %s\n", p.DisplayName(), outcome.Items, outcome.Duration.Round(time.Millisecond))
		if len(outcome.Steps) > 0 {
			fmt.Fprintf(out, "  steps: %s\n", strings.Join(outcome.Steps, ", "))
		}
		return nil
	},
}

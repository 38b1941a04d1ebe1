package event

import (
	"fmt"

	"github.com/huynnh/calsync/adapter/cli"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List events",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := eventApp()
		if err != nil {
			return err
		}
		items, err := app.Events.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list events: %w", err)
		}
		cli.PrintItems(cmd.OutOrStdout(), "Events", items, app.Location)
		return nil
	},
}

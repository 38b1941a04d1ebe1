package event

import (
	"fmt"

	"github.com/huynnh/calsync/adapter/cli"
	"github.com/spf13/cobra"
)

var updateFlags eventFlags

var updateCmd = &cobra.Command{
	Use:   "update <event-id>",
	Short: "Update an event",
	Long:  `Update an event. Fields without a flag keep their current value.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := eventApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		current, err := app.Events.Get(ctx, args[0])
		if err != nil {
			return cli.ItemError("load", "event", args[0], err)
		}
		in := inputFromItem(*current)
		if err := updateFlags.apply(cmd, &in, app.Location); err != nil {
			return err
		}

		item, err := app.Events.Update(ctx, args[0], in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated event: %s\n", item.Name)
		fmt.Fprintf(cmd.OutOrStdout(), "  When: %s\n", cli.FormatSpan(*item, app.Location))
		return nil
	},
}

func init() {
	updateFlags.register(updateCmd)
}

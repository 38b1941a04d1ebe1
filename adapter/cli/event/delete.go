package event

import (
	"fmt"

	"github.com/huynnh/calsync/adapter/cli"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <event-id>",
	Short:   "Delete an event",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := eventApp()
		if err != nil {
			return err
		}
		if err := app.Events.Delete(cmd.Context(), args[0]); err != nil {
			return cli.ItemError("delete", "event", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted event %s\n", args[0])
		return nil
	},
}

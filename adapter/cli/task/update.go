package task

import (
	"fmt"

	"github.com/huynnh/calsync/adapter/cli"
	"github.com/spf13/cobra"
)

var updateFlags taskFlags

var updateCmd = &cobra.Command{
	Use:   "update <task-id>",
	Short: "Update a task",
	Long: `Update a task. Fields without a flag keep their current value.

Examples:
  calsync task update 42 --end "2030-01-01 11:00"
  calsync task update 42 --status in_progress`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := taskApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		current, err := app.Tasks.Get(ctx, args[0])
		if err != nil {
			return cli.ItemError("load", "task", args[0], err)
		}
		in := inputFromItem(*current)
		if err := updateFlags.apply(cmd, &in, app.Location); err != nil {
			return err
		}

		item, err := app.Tasks.Update(ctx, args[0], in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated task: %s\n", item.Name)
		fmt.Fprintf(cmd.OutOrStdout(), "  When: %s\n", cli.FormatSpan(*item, app.Location))
		return nil
	},
}

func init() {
	updateFlags.register(updateCmd)
}

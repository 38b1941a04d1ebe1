package task

import (
	"fmt"

	"github.com/huynnh/calsync/adapter/cli"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <task-id>",
	Short:   "Delete a task",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := taskApp()
		if err != nil {
			return err
		}
		if err := app.Tasks.Delete(cmd.Context(), args[0]); err != nil {
			return cli.ItemError("delete", "task", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
		return nil
	},
}

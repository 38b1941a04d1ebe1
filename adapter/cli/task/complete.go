package task

import (
	"context"
	"fmt"

	"github.com/huynnh/calsync/adapter/cli"
	calendarApp "github.com/huynnh/calsync/internal/calendar/application"
	calendarDomain "github.com/huynnh/calsync/internal/calendar/domain"
	"github.com/spf13/cobra"
)

type transitionFunc func(s *calendarApp.TaskService, ctx context.Context, id string) (*calendarDomain.CalendarItem, error)

func newTransitionCmd(use, short, verb string, transition transitionFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := taskApp()
			if err != nil {
				return err
			}
			item, err := transition(app.Tasks, cmd.Context(), args[0])
			if err != nil {
				return cli.ItemError(use, "task", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s task: %s\n", verb, item.Name)
			return nil
		},
	}
}

var (
	completeCmd = newTransitionCmd("complete", "Mark a task as completed", "Completed", (*calendarApp.TaskService).Complete)
	cancelCmd   = newTransitionCmd("cancel", "Cancel a task", "Cancelled", (*calendarApp.TaskService).Cancel)
)

func init() {
	completeCmd.Aliases = []string{"done"}
}

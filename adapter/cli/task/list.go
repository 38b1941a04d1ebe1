package task

import (
	"context"
	"fmt"

	"github.com/huynnh/calsync/adapter/cli"
	calendarApp "github.com/huynnh/calsync/internal/calendar/application"
	calendarDomain "github.com/huynnh/calsync/internal/calendar/domain"
	"github.com/spf13/cobra"
)

type listFunc func(s *calendarApp.TaskService, ctx context.Context) ([]calendarDomain.CalendarItem, error)

func newListCmd(use, short, title string, list listFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := taskApp()
			if err != nil {
				return err
			}
			items, err := list(app.Tasks, cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list tasks: %w", err)
			}
			cli.PrintItems(cmd.OutOrStdout(), title, items, app.Location)
			return nil
		},
	}
}

var (
	listCmd      = newListCmd("list", "List all tasks", "Tasks", (*calendarApp.TaskService).List)
	upcomingCmd  = newListCmd("upcoming", "List tasks that have not started", "Upcoming tasks", (*calendarApp.TaskService).Upcoming)
	completedCmd = newListCmd("completed", "List completed tasks", "Completed tasks", (*calendarApp.TaskService).CompletedList)
	cancelledCmd = newListCmd("cancelled", "List cancelled tasks", "Cancelled tasks", (*calendarApp.TaskService).CancelledList)
)

func init() {
	listCmd.Aliases = []string{"ls"}
}

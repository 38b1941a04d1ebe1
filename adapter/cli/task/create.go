package task

import (
	"fmt"

	"github.com/huynnh/calsync/adapter/cli"
	calendarApp "github.com/huynnh/calsync/internal/calendar/application"
	calendarDomain "github.com/huynnh/calsync/internal/calendar/domain"
	"github.com/spf13/cobra"
)

var createFlags taskFlags

var createCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new task",
	Long: `Create a new task. The end time is also the due date.

When a provider is connected the task is pushed to it: as an event when it
has an end time, otherwise as a task.

Examples:
  calsync task create "Write report" --start "2030-01-01 09:00" --end "2030-01-01 10:00"
  calsync task create "Pay rent" --end "2030-01-05 18:00" -p high`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := taskApp()
		if err != nil {
			return err
		}

		in := calendarApp.TaskInput{Priority: calendarDomain.PriorityMedium}
		if len(args) == 1 {
			in.Name = args[0]
		}
		if err := createFlags.apply(cmd, &in, app.Location); err != nil {
			return err
		}

		item, err := app.Tasks.Create(cmd.Context(), in)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created task: %s\n", item.Name)
		fmt.Fprintf(cmd.OutOrStdout(), "  ID: %s\n", item.NativeID)
		fmt.Fprintf(cmd.OutOrStdout(), "  When: %s\n", cli.FormatSpan(*item, app.Location))
		return nil
	},
}

func init() {
	createFlags.register(createCmd)
}

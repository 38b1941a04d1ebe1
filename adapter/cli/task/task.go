package task

import (
	"time"

	"github.com/huynnh/calsync/adapter/cli"
	calendarApp "github.com/huynnh/calsync/internal/calendar/application"
	calendarDomain "github.com/huynnh/calsync/internal/calendar/domain"
	"github.com/spf13/cobra"
)

// Cmd is the task command group.
var Cmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
	Long:  `Create, update, list and complete your tasks.`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(upcomingCmd)
	Cmd.AddCommand(completedCmd)
	Cmd.AddCommand(cancelledCmd)
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(updateCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(completeCmd)
	Cmd.AddCommand(cancelCmd)
}

func taskApp() (*cli.App, error) {
	app := cli.GetApp()
	if app == nil || app.Tasks == nil {
		return nil, cli.ErrNotInitialized
	}
	if err := app.RequireSession(); err != nil {
		return nil, err
	}
	return app, nil
}

// taskFlags are the editable fields shared by create and update.
type taskFlags struct {
	name        string
	description string
	priority    string
	start       string
	end         string
	status      string
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.name, "name", "n", "", "task name")
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "task description")
	cmd.Flags().StringVarP(&f.priority, "priority", "p", "", "priority (low, medium, high)")
	cmd.Flags().StringVar(&f.start, "start", "", "start time (YYYY-MM-DD HH:MM)")
	cmd.Flags().StringVar(&f.end, "end", "", "end time (YYYY-MM-DD HH:MM)")
	cmd.Flags().StringVarP(&f.status, "status", "s", "", "status (pending, in_progress, completed, cancelled)")
}

// apply overlays the flags that were set onto in.
func (f *taskFlags) apply(cmd *cobra.Command, in *calendarApp.TaskInput, loc *time.Location) error {
	changed := cmd.Flags().Changed
	if changed("name") {
		in.Name = f.name
	}
	if changed("description") {
		in.Description = f.description
	}
	if changed("priority") {
		in.Priority = calendarDomain.ParsePriority(f.priority)
	}
	if changed("start") {
		t, err := cli.ParseDateTime(f.start, loc)
		if err != nil {
			return err
		}
		in.StartTime = t
	}
	if changed("end") {
		t, err := cli.ParseDateTime(f.end, loc)
		if err != nil {
			return err
		}
		in.EndTime = t
	}
	if changed("status") {
		status, err := calendarDomain.ParseStatus(f.status)
		if err != nil {
			return err
		}
		in.Status = status
	}
	return nil
}

// inputFromItem starts an update from the stored task.
func inputFromItem(item calendarDomain.CalendarItem) calendarApp.TaskInput {
	in := calendarApp.TaskInput{
		Name:        item.Name,
		Description: item.Description,
		Priority:    item.Priority,
		Status:      item.Status,
	}
	if item.StartTime != nil {
		in.StartTime = *item.StartTime
	}
	if item.EndTime != nil {
		in.EndTime = *item.EndTime
	}
	return in
}

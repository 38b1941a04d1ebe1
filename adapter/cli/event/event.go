package event

import (
	"time"

	"github.com/huynnh/calsync/adapter/cli"
	calendarApp "github.com/huynnh/calsync/internal/calendar/application"
	calendarDomain "github.com/huynnh/calsync/internal/calendar/domain"
	"github.com/spf13/cobra"
)

// Cmd is the event command group.
var Cmd = &cobra.Command{
	Use:   "event",
	Short: "Manage events",
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(updateCmd)
	Cmd.AddCommand(deleteCmd)
}

func eventApp() (*cli.App, error) {
	app := cli.GetApp()
	if app == nil || app.Events == nil {
		return nil, cli.ErrNotInitialized
	}
	if err := app.RequireSession(); err != nil {
		return nil, err
	}
	return app, nil
}

type eventFlags struct {
	title       string
	description string
	start       string
	end         string
	location    string
}

func (f *eventFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "event title")
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "event description")
	cmd.Flags().StringVar(&f.start, "start", "", "start time (YYYY-MM-DD HH:MM)")
	cmd.Flags().StringVar(&f.end, "end", "", "end time (YYYY-MM-DD HH:MM)")
	cmd.Flags().StringVarP(&f.location, "location", "l", "", "where the event happens")
}

func (f *eventFlags) apply(cmd *cobra.Command, in *calendarApp.EventInput, loc *time.Location) error {
	changed := cmd.Flags().Changed
	if changed("title") {
		in.Title = f.title
	}
	if changed("description") {
		in.Description = f.description
	}
	if changed("location") {
		in.Location = f.location
	}
	if changed("start") {
		t, err := cli.ParseDateTime(f.start, loc)
		if err != nil {
			return err
		}
		in.Start = t
	}
	if changed("end") {
		t, err := cli.ParseDateTime(f.end, loc)
		if err != nil {
			return err
		}
		in.End = t
	}
	return nil
}

func inputFromItem(item calendarDomain.CalendarItem) calendarApp.EventInput {
	in := calendarApp.EventInput{
		Title:       item.Name,
		Description: item.Description,
		Location:    item.Location,
	}
	if item.StartTime != nil {
		in.Start = *item.StartTime
	}
	if item.EndTime != nil {
		in.End = *item.EndTime
	}
	return in
}

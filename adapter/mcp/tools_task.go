package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/huynnh/calsync/adapter/cli"
	calendarApp "github.com/huynnh/calsync/internal/calendar/application"
	calendarDomain "github.com/huynnh/calsync/internal/calendar/domain"
)

type taskCreateInput struct {
	Name        string `json:"name" jsonschema:"required"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"` // high, medium or low
	Start       string `json:"start,omitempty"`    // "YYYY-MM-DD HH:MM" or RFC3339
	End         string `json:"end,omitempty"`
}

type taskListInput struct {
	Filter string `json:"filter,omitempty"` // all, upcoming, completed or cancelled
}

func registerTaskTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("task.create").
		Description("Create a local task; it is pushed to the connected provider").
		Handler(func(ctx context.Context, input taskCreateInput) (*calendarDomain.CalendarItem, error) {
			return createTask(ctx, app, input)
		})

	srv.Tool("task.list").
		Description("List local tasks").
		Handler(func(ctx context.Context, input taskListInput) ([]calendarDomain.CalendarItem, error) {
			return listTasks(ctx, app, input)
		})

	return nil
}

func createTask(ctx context.Context, app *cli.App, input taskCreateInput) (*calendarDomain.CalendarItem, error) {
	if app == nil || app.Tasks == nil {
		return nil, cli.ErrNotInitialized
	}
	if err := app.RequireSession(); err != nil {
		return nil, err
	}
	start, err := cli.ParseDateTime(input.Start, app.Location)
	if err != nil {
		return nil, err
	}
	end, err := cli.ParseDateTime(input.End, app.Location)
	if err != nil {
		return nil, err
	}
	return app.Tasks.Create(ctx, calendarApp.TaskInput{
		Name:        input.Name,
		Description: input.Description,
		Priority:    calendarDomain.ParsePriority(input.Priority),
		StartTime:   start,
		EndTime:     end,
	})
}

func listTasks(ctx context.Context, app *cli.App, input taskListInput) ([]calendarDomain.CalendarItem, error) {
	if app == nil || app.Tasks == nil {
		return nil, cli.ErrNotInitialized
	}
	if err := app.RequireSession(); err != nil {
		return nil, err
	}
	switch input.Filter {
	case "", "all":
		return app.Tasks.List(ctx)
	case "upcoming":
		return app.Tasks.Upcoming(ctx)
	case "completed":
		return app.Tasks.CompletedList(ctx)
	case "cancelled":
		return app.Tasks.CancelledList(ctx)
	default:
		return nil, errors.New("filter must be all, upcoming, completed or cancelled")
	}
}

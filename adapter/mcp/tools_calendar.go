package mcp

import (
	"context"
	"time"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/huynnh/calsync/adapter/cli"
	calendarApp "github.com/huynnh/calsync/internal/calendar/application"
)

type calendarViewInput struct {
	Date    string `json:"date,omitempty"`    // YYYY-MM-DD, default today
	Offline bool   `json:"offline,omitempty"` // Serve the cached snapshot only
}

func registerCalendarTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("calendar.day").
		Description("Show one day of the merged calendar grouped by source").
		Handler(func(ctx context.Context, input calendarViewInput) (*calendarApp.Bucket, error) {
			return dayView(ctx, app, input)
		})

	srv.Tool("calendar.week").
		Description("Show the seven days of the week containing a date").
		Handler(func(ctx context.Context, input calendarViewInput) (*calendarApp.WeekView, error) {
			return weekView(ctx, app, input)
		})

	srv.Tool("calendar.month").
		Description("Show the month grid containing a date").
		Handler(func(ctx context.Context, input calendarViewInput) (*calendarApp.MonthView, error) {
			return monthView(ctx, app, input)
		})

	return nil
}

// loadCalendar refreshes the store and resolves the anchor day.
func loadCalendar(ctx context.Context, app *cli.App, input calendarViewInput) (time.Time, error) {
	if app == nil || app.Projector == nil {
		return time.Time{}, cli.ErrNotInitialized
	}
	anchor, err := cli.ParseDate(input.Date, app.Location, app.Now())
	if err != nil {
		return time.Time{}, err
	}
	if _, err := app.LoadCalendar(ctx, input.Offline); err != nil {
		return time.Time{}, err
	}
	return anchor, nil
}

func dayView(ctx context.Context, app *cli.App, input calendarViewInput) (*calendarApp.Bucket, error) {
	day, err := loadCalendar(ctx, app, input)
	if err != nil {
		return nil, err
	}
	bucket := app.Projector.DayBucket(day)
	return &bucket, nil
}

func weekView(ctx context.Context, app *cli.App, input calendarViewInput) (*calendarApp.WeekView, error) {
	anchor, err := loadCalendar(ctx, app, input)
	if err != nil {
		return nil, err
	}
	view := app.Projector.WeekView(anchor)
	return &view, nil
}

func monthView(ctx context.Context, app *cli.App, input calendarViewInput) (*calendarApp.MonthView, error) {
	anchor, err := loadCalendar(ctx, app, input)
	if err != nil {
		return nil, err
	}
	view := app.Projector.MonthView(anchor)
	return &view, nil
}

package local

import (
	"context"

	calendarApp "github.com/huynnh/calsync/internal/calendar/application"
	"github.com/huynnh/calsync/internal/calendar/infrastructure/backend"
)

const tasksPath = "/tasks/"

// Client talks to the backend tasks API.
type Client struct {
	api *backend.Client
}

// NewClient creates a tasks client.
func NewClient(api *backend.Client) *Client {
	return &Client{api: api}
}

var _ calendarApp.TaskAPI = (*Client)(nil)

// List returns every task of the signed-in user.
func (c *Client) List(ctx context.Context) ([]calendarApp.LocalTaskRecord, error) {
	return c.list(ctx, tasksPath)
}

// Upcoming returns tasks that have not started yet.
func (c *Client) Upcoming(ctx context.Context) ([]calendarApp.LocalTaskRecord, error) {
	return c.list(ctx, tasksPath+"upcoming/")
}

// Completed returns completed tasks.
func (c *Client) Completed(ctx context.Context) ([]calendarApp.LocalTaskRecord, error) {
	return c.list(ctx, tasksPath+"completed/")
}

// Cancelled returns cancelled tasks.
func (c *Client) Cancelled(ctx context.Context) ([]calendarApp.LocalTaskRecord, error) {
	return c.list(ctx, tasksPath+"cancelled/")
}

func (c *Client) Get(ctx context.Context, id string) (*calendarApp.LocalTaskRecord, error) {
	var rec calendarApp.LocalTaskRecord
	if err := c.api.Get(ctx, backend.ScopeTasks, backend.ItemPath(tasksPath, id), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) Create(ctx context.Context, payload calendarApp.TaskPayload) (*calendarApp.LocalTaskRecord, error) {
	var rec calendarApp.LocalTaskRecord
	if err := c.api.Post(ctx, backend.ScopeTasks, tasksPath, payload, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) Update(ctx context.Context, id string, payload calendarApp.TaskPayload) (*calendarApp.LocalTaskRecord, error) {
	var rec calendarApp.LocalTaskRecord
	if err := c.api.Put(ctx, backend.ScopeTasks, backend.ItemPath(tasksPath, id), payload, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.api.Delete(ctx, backend.ScopeTasks, backend.ItemPath(tasksPath, id))
}

// Complete marks a task completed.
func (c *Client) Complete(ctx context.Context, id string) (*calendarApp.LocalTaskRecord, error) {
	return c.action(ctx, id, "complete")
}

// Cancel marks a task cancelled.
func (c *Client) Cancel(ctx context.Context, id string) (*calendarApp.LocalTaskRecord, error) {
	return c.action(ctx, id, "cancel")
}

func (c *Client) action(ctx context.Context, id, action string) (*calendarApp.LocalTaskRecord, error) {
	var rec calendarApp.LocalTaskRecord
	if err := c.api.Post(ctx, backend.ScopeTasks, backend.ItemPath(tasksPath, id, action), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) list(ctx context.Context, path string) ([]calendarApp.LocalTaskRecord, error) {
	var recs []calendarApp.LocalTaskRecord
	if err := c.api.Get(ctx, backend.ScopeTasks, path, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

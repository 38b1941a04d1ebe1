package client

import (
	"context"
	"strconv"

	calendarApp "github.com/huynnh/calsync/internal/calendar/application"
	"github.com/huynnh/calsync/internal/calendar/infrastructure/backend"
	notificationApp "github.com/huynnh/calsync/internal/notification/application"
	"github.com/huynnh/calsync/internal/notification/domain"
)

const notificationsPath = "/notifications/"

// Client talks to the backend notifications API. It also schedules
// reminders for newly created tasks and events.
type Client struct {
	api *backend.Client
}

// NewClient creates a notifications client.
func NewClient(api *backend.Client) *Client {
	return &Client{api: api}
}

var (
	_ notificationApp.API          = (*Client)(nil)
	_ calendarApp.CreationNotifier = (*Client)(nil)
)

// List returns the active unread notifications.
func (c *Client) List(ctx context.Context) ([]domain.Notification, error) {
	var items []domain.Notification
	if err := c.api.Get(ctx, backend.ScopeNotifications, notificationsPath, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) MarkRead(ctx context.Context, id int64) error {
	return c.action(ctx, id, "mark-read")
}

func (c *Client) Dismiss(ctx context.Context, id int64) error {
	return c.action(ctx, id, "dismiss")
}

func (c *Client) MarkAllRead(ctx context.Context) error {
	return c.api.Post(ctx, backend.ScopeNotifications, notificationsPath+"mark-all-read/", nil, nil)
}

// TaskCreated asks the backend to schedule reminders for a task.
func (c *Client) TaskCreated(ctx context.Context, id string) error {
	return c.api.Get(ctx, backend.ScopeNotifications, backend.ItemPath(notificationsPath+"create/task", id), nil)
}

// EventCreated asks the backend to schedule reminders for an event.
func (c *Client) EventCreated(ctx context.Context, id string) error {
	return c.api.Get(ctx, backend.ScopeNotifications, backend.ItemPath(notificationsPath+"create/event", id), nil)
}

func (c *Client) action(ctx context.Context, id int64, action string) error {
	path := backend.ItemPath(notificationsPath, strconv.FormatInt(id, 10), action)
	return c.api.Post(ctx, backend.ScopeNotifications, path, nil, nil)
}

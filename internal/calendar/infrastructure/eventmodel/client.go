package eventmodel

import (
	"context"

	calendarApp "github.com/huynnh/calsync/internal/calendar/application"
	"github.com/huynnh/calsync/internal/calendar/infrastructure/backend"
)

const eventsPath = "/events/api/"

// Client talks to the backend events API.
type Client struct {
	api *backend.Client
}

// NewClient creates an events client.
func NewClient(api *backend.Client) *Client {
	return &Client{api: api}
}

var _ calendarApp.EventAPI = (*Client)(nil)

func (c *Client) List(ctx context.Context) ([]calendarApp.EventModelRecord, error) {
	var recs []calendarApp.EventModelRecord
	if err := c.api.Get(ctx, backend.ScopeEvents, eventsPath, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (c *Client) Get(ctx context.Context, id string) (*calendarApp.EventModelRecord, error) {
	var rec calendarApp.EventModelRecord
	if err := c.api.Get(ctx, backend.ScopeEvents, backend.ItemPath(eventsPath, id), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) Create(ctx context.Context, payload calendarApp.EventPayload) (*calendarApp.EventModelRecord, error) {
	var rec calendarApp.EventModelRecord
	if err := c.api.Post(ctx, backend.ScopeEvents, eventsPath, payload, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) Update(ctx context.Context, id string, payload calendarApp.EventPayload) (*calendarApp.EventModelRecord, error) {
	var rec calendarApp.EventModelRecord
	if err := c.api.Put(ctx, backend.ScopeEvents, backend.ItemPath(eventsPath, id), payload, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.api.Delete(ctx, backend.ScopeEvents, backend.ItemPath(eventsPath, id))
}

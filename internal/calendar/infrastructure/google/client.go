package google

import (
	"context"
	"errors"
	"fmt"

	calendarApp "github.com/huynnh/calsync/internal/calendar/application"
	"github.com/huynnh/calsync/internal/calendar/domain"
	"github.com/huynnh/calsync/internal/calendar/infrastructure/backend"
)

const (
	connectionPath = "/calendarsync/google/connection/"
	startPath      = "/calendarsync/google/start/"
	disconnectPath = "/calendarsync/google/disconnect/"
	snapshotPath   = "/calendarsync/google/sync/"
	pullEventsPath = "/calendarsync/events/pull/"
	pushEventsPath = "/calendarsync/events/push/"
	pullTasksPath  = "/calendarsync/tasks/pull/"
	pushTasksPath  = "/calendarsync/tasks/push/"
)

// Client drives the backend's Google Calendar and Google Tasks integration.
type Client struct {
	api *backend.Client
}

// NewClient creates a Google client.
func NewClient(api *backend.Client) *Client {
	return &Client{api: api}
}

var _ calendarApp.GoogleAPI = (*Client)(nil)

func (c *Client) Provider() domain.Provider {
	return domain.ProviderGoogle
}

type connectionResponse struct {
	Connected bool   `json:"connected"`
	Message   string `json:"message"`
}

// CheckConnection reports whether the backend holds a Google grant.
func (c *Client) CheckConnection(ctx context.Context) (bool, error) {
	var resp connectionResponse
	if err := c.api.Get(ctx, backend.ScopeGoogle, connectionPath, &resp); err != nil {
		return false, fmt.Errorf("google connection check: %w", err)
	}
	return resp.Connected, nil
}

// Connect starts the OAuth flow. The result carries the consent URL unless
// the account is already connected.
func (c *Client) Connect(ctx context.Context) (*calendarApp.ConnectResult, error) {
	var resp calendarApp.ConnectResult
	if err := c.api.Get(ctx, backend.ScopeGoogle, startPath, &resp); err != nil {
		return nil, fmt.Errorf("google connect: %w", err)
	}
	if !resp.AlreadyConnected() && resp.AuthURL == "" {
		return nil, errors.New("google connect: backend returned no auth url")
	}
	return &resp, nil
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Disconnect revokes the Google grant.
func (c *Client) Disconnect(ctx context.Context) error {
	var resp statusResponse
	if err := c.api.Post(ctx, backend.ScopeGoogle, disconnectPath, nil, &resp); err != nil {
		return fmt.Errorf("google disconnect: %w", err)
	}
	if resp.Status == "error" {
		return fmt.Errorf("google disconnect: %s", resp.Message)
	}
	return nil
}

func (c *Client) PullEvents(ctx context.Context) error {
	return c.post(ctx, pullEventsPath, nil)
}

func (c *Client) PushEvents(ctx context.Context) error {
	return c.post(ctx, pushEventsPath, nil)
}

func (c *Client) PullTasks(ctx context.Context) error {
	return c.post(ctx, pullTasksPath, nil)
}

func (c *Client) PushTasks(ctx context.Context) error {
	return c.post(ctx, pushTasksPath, nil)
}

// Snapshot returns the Google events and tasks the backend has mirrored.
func (c *Client) Snapshot(ctx context.Context) (*calendarApp.GoogleSnapshot, error) {
	var snap calendarApp.GoogleSnapshot
	if err := c.api.Post(ctx, backend.ScopeGoogle, snapshotPath, nil, &snap); err != nil {
		return nil, fmt.Errorf("google snapshot: %w", err)
	}
	return &snap, nil
}

type pushItemRequest struct {
	ID       domain.RecordID `json:"id"`
	Provider string          `json:"provider"`
}

// PushItem pushes one local item to Google Calendar or Google Tasks.
func (c *Client) PushItem(ctx context.Context, nativeID string, asEvent bool) error {
	path := pushTasksPath
	if asEvent {
		path = pushEventsPath
	}
	return c.post(ctx, path, pushItemRequest{ID: domain.RecordID(nativeID), Provider: domain.ProviderGoogle.String()})
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	if err := c.api.Post(ctx, backend.ScopeGoogle, path, body, nil); err != nil {
		return fmt.Errorf("google %s: %w", path, err)
	}
	return nil
}

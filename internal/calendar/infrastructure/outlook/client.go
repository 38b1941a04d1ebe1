package outlook

import (
	"context"
	"errors"
	"fmt"

	calendarApp "github.com/huynnh/calsync/internal/calendar/application"
	"github.com/huynnh/calsync/internal/calendar/domain"
	"github.com/huynnh/calsync/internal/calendar/infrastructure/backend"
)

const (
	checkPath      = "/calendarsync/outlook/check/"
	startPath      = "/calendarsync/outlook/start/"
	syncPath       = "/calendarsync/outlook/sync/"
	pullEventsPath = "/calendarsync/outlook/pull-events/"
	pullTasksPath  = "/calendarsync/outlook/pull-tasks/"
	pushEventsPath = "/calendarsync/outlook/push-events/"
	pushTasksPath  = "/calendarsync/outlook/push-tasks/"
	disconnectPath = "/calendarsync/outlook/disconnect/"
)

// Client drives the backend's Outlook Calendar and Microsoft To Do integration.
type Client struct {
	api *backend.Client
}

// NewClient creates an Outlook client.
func NewClient(api *backend.Client) *Client {
	return &Client{api: api}
}

var _ calendarApp.OutlookAPI = (*Client)(nil)

func (c *Client) Provider() domain.Provider {
	return domain.ProviderOutlook
}

// CheckConnection reports whether the backend holds a Microsoft grant.
func (c *Client) CheckConnection(ctx context.Context) (bool, error) {
	var resp struct {
		Connected bool `json:"connected"`
	}
	if err := c.api.Get(ctx, backend.ScopeOutlook, checkPath, &resp); err != nil {
		return false, fmt.Errorf("outlook connection check: %w", err)
	}
	return resp.Connected, nil
}

// Connect starts the Microsoft OAuth flow.
func (c *Client) Connect(ctx context.Context) (*calendarApp.ConnectResult, error) {
	var resp calendarApp.ConnectResult
	if err := c.api.Get(ctx, backend.ScopeOutlook, startPath, &resp); err != nil {
		return nil, fmt.Errorf("outlook connect: %w", err)
	}
	if !resp.AlreadyConnected() && resp.AuthURL == "" {
		return nil, errors.New("outlook connect: backend returned no auth url")
	}
	return &resp, nil
}

// Disconnect revokes the Microsoft grant.
func (c *Client) Disconnect(ctx context.Context) error {
	var resp struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := c.api.Post(ctx, backend.ScopeOutlook, disconnectPath, nil, &resp); err != nil {
		return fmt.Errorf("outlook disconnect: %w", err)
	}
	if resp.Status == "error" {
		return fmt.Errorf("outlook disconnect: %s", resp.Message)
	}
	return nil
}

// Sync pushes local items to Outlook and pulls Outlook items back in one call.
func (c *Client) Sync(ctx context.Context) (*calendarApp.OutlookSyncResult, error) {
	var result calendarApp.OutlookSyncResult
	if err := c.api.Post(ctx, backend.ScopeOutlook, syncPath, nil, &result); err != nil {
		return nil, fmt.Errorf("outlook sync: %w", err)
	}
	return &result, nil
}

// PullEvents pulls Outlook calendar events into the backend.
func (c *Client) PullEvents(ctx context.Context) ([]calendarApp.OutlookEventRecord, error) {
	var resp struct {
		Events []calendarApp.OutlookEventRecord `json:"events"`
	}
	if err := c.api.Post(ctx, backend.ScopeOutlook, pullEventsPath, nil, &resp); err != nil {
		return nil, fmt.Errorf("outlook pull events: %w", err)
	}
	return resp.Events, nil
}

// PullTasks pulls Microsoft To Do tasks into the backend.
func (c *Client) PullTasks(ctx context.Context) ([]calendarApp.OutlookTaskRecord, error) {
	var resp struct {
		Tasks []calendarApp.OutlookTaskRecord `json:"tasks"`
	}
	if err := c.api.Post(ctx, backend.ScopeOutlook, pullTasksPath, nil, &resp); err != nil {
		return nil, fmt.Errorf("outlook pull tasks: %w", err)
	}
	return resp.Tasks, nil
}

func (c *Client) PushEvents(ctx context.Context) error {
	return c.post(ctx, pushEventsPath, nil)
}

func (c *Client) PushTasks(ctx context.Context) error {
	return c.post(ctx, pushTasksPath, nil)
}

type pushItemRequest struct {
	ID       domain.RecordID `json:"id"`
	Provider string          `json:"provider"`
}

// PushItem pushes one local item to Outlook Calendar or To Do.
func (c *Client) PushItem(ctx context.Context, nativeID string, asEvent bool) error {
	path := pushTasksPath
	if asEvent {
		path = pushEventsPath
	}
	return c.post(ctx, path, pushItemRequest{ID: domain.RecordID(nativeID), Provider: domain.ProviderOutlook.String()})
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	if err := c.api.Post(ctx, backend.ScopeOutlook, path, body, nil); err != nil {
		return fmt.Errorf("outlook %s: %w", path, err)
	}
	return nil
}

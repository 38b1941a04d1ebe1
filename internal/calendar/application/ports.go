package application

import (
	"context"
	"time"

	"github.com/huynnh/calsync/internal/calendar/domain"
	sharedDomain "github.com/huynnh/calsync/internal/shared/domain"
)

// TaskPayload is the body sent when creating or updating a local task.
type TaskPayload struct {
	TaskName    string     `json:"task_name"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Status      string     `json:"status"`
}

// EventPayload is the body sent when creating or updating an event.
type EventPayload struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Start       DateTime `json:"start"`
	End         DateTime `json:"end"`
	Location    string   `json:"location,omitempty"`
}

// TaskAPI is the local tasks store.
type TaskAPI interface {
	List(ctx context.Context) ([]LocalTaskRecord, error)
	Get(ctx context.Context, id string) (*LocalTaskRecord, error)
	Create(ctx context.Context, payload TaskPayload) (*LocalTaskRecord, error)
	Update(ctx context.Context, id string, payload TaskPayload) (*LocalTaskRecord, error)
	Delete(ctx context.Context, id string) error
	Complete(ctx context.Context, id string) (*LocalTaskRecord, error)
	Cancel(ctx context.Context, id string) (*LocalTaskRecord, error)
	Upcoming(ctx context.Context) ([]LocalTaskRecord, error)
	Completed(ctx context.Context) ([]LocalTaskRecord, error)
	Cancelled(ctx context.Context) ([]LocalTaskRecord, error)
}

// EventAPI is the backend event model store.
type EventAPI interface {
	List(ctx context.Context) ([]EventModelRecord, error)
	Get(ctx context.Context, id string) (*EventModelRecord, error)
	Create(ctx context.Context, payload EventPayload) (*EventModelRecord, error)
	Update(ctx context.Context, id string, payload EventPayload) (*EventModelRecord, error)
	Delete(ctx context.Context, id string) error
}

// CreationNotifier asks the backend to schedule reminders for new items.
type CreationNotifier interface {
	TaskCreated(ctx context.Context, id string) error
	EventCreated(ctx context.Context, id string) error
}

// Connect statuses returned by the backend.
const (
	ConnectStatusAlreadyConnected = "already_connected"
	ConnectStatusNeedsAuth        = "needs_auth"
)

// ConnectResult is the response of starting a provider connection.
type ConnectResult struct {
	Status  string `json:"status"`
	AuthURL string `json:"auth_url"`
	Message string `json:"message"`
}

// AlreadyConnected reports whether no authorization step is needed.
func (r ConnectResult) AlreadyConnected() bool {
	return r.Status == ConnectStatusAlreadyConnected
}

// ProviderAPI is the part every external provider client offers.
type ProviderAPI interface {
	Provider() domain.Provider
	CheckConnection(ctx context.Context) (bool, error)
	Connect(ctx context.Context) (*ConnectResult, error)
	Disconnect(ctx context.Context) error
	// PushItem pushes one local item, as an event or as a task.
	PushItem(ctx context.Context, nativeID string, asEvent bool) error
}

// GoogleAPI is the Google client. A sync cycle runs its steps in order.
type GoogleAPI interface {
	ProviderAPI
	PullEvents(ctx context.Context) error
	PushEvents(ctx context.Context) error
	PullTasks(ctx context.Context) error
	PushTasks(ctx context.Context) error
	Snapshot(ctx context.Context) (*GoogleSnapshot, error)
}

// OutlookAPI is the Outlook client. Its sync is one combined call.
type OutlookAPI interface {
	ProviderAPI
	Sync(ctx context.Context) (*OutlookSyncResult, error)
}

// EventPublisher publishes domain events. Delivery failures are logged by
// callers and never fail the operation that raised the event.
type EventPublisher interface {
	PublishDomainEvent(ctx context.Context, event sharedDomain.DomainEvent) error
}

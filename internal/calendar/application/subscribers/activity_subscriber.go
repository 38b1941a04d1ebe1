package subscribers

import (
	"context"
	"log/slog"
	"sync"

	"github.com/huynnh/calsync/internal/calendar/domain"
	"github.com/huynnh/calsync/internal/shared/infrastructure/eventbus"
)

// maxActivity bounds the activity log.
const maxActivity = 50

// Activity is one provider lifecycle entry.
type Activity struct {
	RoutingKey string          `json:"routing_key"`
	Provider   domain.Provider `json:"provider"`
	Step       string          `json:"step,omitempty"`
	Error      string          `json:"error,omitempty"`
	Items      int             `json:"items,omitempty"`
	Background bool            `json:"background"`
	OccurredAt string          `json:"occurred_at"`
}

// ActivitySubscriber keeps the most recent provider lifecycle events for the
// daemon's status endpoint and logs them.
type ActivitySubscriber struct {
	logger *slog.Logger

	mu      sync.Mutex
	entries []Activity
}

// NewActivitySubscriber creates a new activity subscriber.
func NewActivitySubscriber(logger *slog.Logger) *ActivitySubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivitySubscriber{logger: logger}
}

// EventTypes returns the event types this subscriber handles.
func (s *ActivitySubscriber) EventTypes() []string {
	return []string{"calendar.provider.*"}
}

type activityPayload struct {
	Provider   domain.Provider `json:"provider"`
	Step       string          `json:"step"`
	Error      string          `json:"error"`
	Items      int             `json:"items"`
	Background bool            `json:"background"`
}

// Handle records the event.
func (s *ActivitySubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var payload activityPayload
	if err := event.Decode(&payload); err != nil {
		s.logger.Error("failed to decode provider event",
			"routing_key", event.RoutingKey,
			"error", err,
		)
		return nil
	}

	entry := Activity{
		RoutingKey: event.RoutingKey,
		Provider:   payload.Provider,
		Step:       payload.Step,
		Error:      payload.Error,
		Items:      payload.Items,
		Background: payload.Background,
		OccurredAt: event.OccurredAt.Format("2006-01-02T15:04:05Z07:00"),
	}

	if entry.Error != "" {
		s.logger.Info("provider sync failed", "provider", entry.Provider, "step", entry.Step, "error", entry.Error)
	} else {
		s.logger.Info("provider activity", "routing_key", entry.RoutingKey, "provider", entry.Provider)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	if len(s.entries) > maxActivity {
		s.entries = s.entries[len(s.entries)-maxActivity:]
	}
	return nil
}

// Recent returns the recorded entries, newest last.
func (s *ActivitySubscriber) Recent() []Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Activity, len(s.entries))
	copy(out, s.entries)
	return out
}

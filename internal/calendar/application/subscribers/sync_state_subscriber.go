package subscribers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/huynnh/calsync/internal/calendar/domain"
	identityDomain "github.com/huynnh/calsync/internal/identity/domain"
	"github.com/huynnh/calsync/internal/shared/infrastructure/eventbus"
)

// SyncStateSubscriber persists each provider's last sync outcome.
type SyncStateSubscriber struct {
	repo   domain.SyncStateRepository
	logger *slog.Logger
}

// NewSyncStateSubscriber creates a new sync state subscriber.
func NewSyncStateSubscriber(repo domain.SyncStateRepository, logger *slog.Logger) *SyncStateSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncStateSubscriber{repo: repo, logger: logger}
}

// EventTypes returns the event types this subscriber handles.
func (s *SyncStateSubscriber) EventTypes() []string {
	return []string{
		domain.RoutingKeyProviderSynced,
		domain.RoutingKeyProviderSyncFailed,
		domain.RoutingKeyProviderDisconnected,
		identityDomain.RoutingKeySessionEnded,
	}
}

type syncStatePayload struct {
	Provider domain.Provider `json:"provider"`
	Step     string          `json:"step"`
	Error    string          `json:"error"`
	Items    int             `json:"items"`
}

// Handle updates the stored state. A disconnect forgets the provider and a
// session end forgets everything.
func (s *SyncStateSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	if event.RoutingKey == identityDomain.RoutingKeySessionEnded {
		return s.repo.DeleteAll(ctx)
	}

	var payload syncStatePayload
	if err := event.Decode(&payload); err != nil {
		s.logger.Error("failed to decode provider event",
			"routing_key", event.RoutingKey,
			"error", err,
		)
		return nil
	}
	if !payload.Provider.IsValid() {
		return nil
	}

	if event.RoutingKey == domain.RoutingKeyProviderDisconnected {
		return s.repo.Delete(ctx, payload.Provider)
	}

	state, err := s.repo.Find(ctx, payload.Provider)
	if err != nil {
		return fmt.Errorf("failed to load sync state: %w", err)
	}
	if state == nil {
		state = domain.NewSyncState(payload.Provider)
	}

	switch event.RoutingKey {
	case domain.RoutingKeyProviderSynced:
		state.MarkSyncSuccess(event.OccurredAt, payload.Items)
	case domain.RoutingKeyProviderSyncFailed:
		msg := payload.Error
		if payload.Step != "" {
			msg = payload.Step + ": " + msg
		}
		state.MarkSyncFailure(event.OccurredAt, msg)
	}

	if err := s.repo.Save(ctx, state); err != nil {
		return fmt.Errorf("failed to save sync state: %w", err)
	}
	return nil
}

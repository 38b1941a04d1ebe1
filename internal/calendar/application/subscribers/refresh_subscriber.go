package subscribers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/huynnh/calsync/internal/calendar/application"
	"github.com/huynnh/calsync/internal/calendar/domain"
	"github.com/huynnh/calsync/internal/shared/infrastructure/eventbus"
)

// Refresher rebuilds the aggregation store.
type Refresher interface {
	FetchAll(ctx context.Context) (*application.AggregateResult, error)
}

// RefreshSubscriber rebuilds the calendar after a provider syncs, connects
// or disconnects.
type RefreshSubscriber struct {
	refresher Refresher
	logger    *slog.Logger
	enabled   bool
}

// NewRefreshSubscriber creates a new refresh subscriber.
func NewRefreshSubscriber(refresher Refresher, logger *slog.Logger) *RefreshSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshSubscriber{
		refresher: refresher,
		logger:    logger,
		enabled:   true,
	}
}

// SetEnabled enables or disables the subscriber.
func (s *RefreshSubscriber) SetEnabled(enabled bool) {
	s.enabled = enabled
}

// EventTypes returns the event types this subscriber handles.
func (s *RefreshSubscriber) EventTypes() []string {
	return []string{
		domain.RoutingKeyProviderSynced,
		domain.RoutingKeyProviderConnected,
		domain.RoutingKeyProviderDisconnected,
	}
}

// Handle refreshes the store. Fetch failures are logged, never returned.
func (s *RefreshSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	if !s.enabled || s.refresher == nil {
		s.logger.Debug("refresh subscriber inactive, skipping event",
			"routing_key", event.RoutingKey,
		)
		return nil
	}

	result, err := s.refresher.FetchAll(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		s.logger.Warn("calendar refresh failed",
			"routing_key", event.RoutingKey,
			"provider", event.AggregateID,
			"error", err,
		)
		return nil
	}

	s.logger.Debug("calendar refreshed",
		"routing_key", event.RoutingKey,
		"items", len(result.Items),
		"failed_branches", len(result.Failed),
	)
	return nil
}

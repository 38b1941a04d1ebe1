package application

import (
	"context"
	"log/slog"

	sharedApplication "github.com/huynnh/calsync/internal/shared/application"
	sharedDomain "github.com/huynnh/calsync/internal/shared/domain"
)

// publishEvents stamps events with the operation's metadata and publishes
// them. Failures are logged.
func publishEvents(ctx context.Context, publisher EventPublisher, logger *slog.Logger, events ...sharedDomain.DomainEvent) {
	if publisher == nil || len(events) == 0 {
		return
	}
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx))
	for _, event := range events {
		if err := publisher.PublishDomainEvent(ctx, event); err != nil {
			logger.Warn("failed to publish event",
				"routing_key", event.RoutingKey(),
				"error", err,
			)
		}
	}
}

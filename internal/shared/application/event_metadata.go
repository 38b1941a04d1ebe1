package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/huynnh/calsync/internal/shared/domain"
	"github.com/huynnh/calsync/pkg/observability"
)

type metadataSetter interface {
	SetMetadata(metadata domain.EventMetadata)
}

// NewEventMetadata creates operation-scoped metadata for domain events.
// The correlation ID is taken from the context when present.
func NewEventMetadata(ctx context.Context) domain.EventMetadata {
	correlationID := observability.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	return domain.EventMetadata{
		CorrelationID: correlationID,
		CausationID:   uuid.New().String(),
	}
}

// ApplyEventMetadata sets metadata on all events that support it.
func ApplyEventMetadata(events []domain.DomainEvent, metadata domain.EventMetadata) {
	for _, event := range events {
		if setter, ok := event.(metadataSetter); ok {
			setter.SetMetadata(metadata)
		}
	}
}

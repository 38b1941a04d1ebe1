package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/huynnh/calsync/internal/shared/domain"
)

// EventConsumer handles specific event types.
type EventConsumer interface {
	// EventTypes returns the routing key patterns this consumer handles,
	// e.g. "calendar.provider.synced" or "calendar.provider.*".
	EventTypes() []string

	// Handle processes the event.
	Handle(ctx context.Context, event *ConsumedEvent) error
}

// ConsumedEvent is an event as delivered to consumers: the common envelope
// plus the full encoded document.
type ConsumedEvent struct {
	EventID       uuid.UUID            `json:"event_id"`
	AggregateID   string               `json:"aggregate_id"`
	AggregateType string               `json:"aggregate_type"`
	RoutingKey    string               `json:"routing_key"`
	OccurredAt    time.Time            `json:"occurred_at"`
	Metadata      domain.EventMetadata `json:"metadata"`

	// Payload is the complete event document.
	Payload json.RawMessage `json:"-"`
}

// Decode unmarshals the event document into target.
func (e *ConsumedEvent) Decode(target any) error {
	return json.Unmarshal(e.Payload, target)
}

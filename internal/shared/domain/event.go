package domain

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents something that happened in the domain.
type DomainEvent interface {
	EventID() uuid.UUID
	AggregateID() string
	AggregateType() string
	RoutingKey() string
	OccurredAt() time.Time
	Metadata() EventMetadata
}

// EventMetadata contains tracing and context information for events.
type EventMetadata struct {
	CorrelationID string `json:"correlation_id,omitempty"`
	CausationID   string `json:"causation_id,omitempty"`
}

// BaseEvent provides common event functionality. Fields are exported so the
// event serializes as-is onto the bus.
type BaseEvent struct {
	ID        uuid.UUID     `json:"event_id"`
	Aggregate string        `json:"aggregate_id"`
	Type      string        `json:"aggregate_type"`
	Key       string        `json:"routing_key"`
	At        time.Time     `json:"occurred_at"`
	Meta      EventMetadata `json:"metadata"`
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(aggregateID, aggregateType, routingKey string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New(),
		Aggregate: aggregateID,
		Type:      aggregateType,
		Key:       routingKey,
		At:        time.Now().UTC(),
	}
}

func (e BaseEvent) EventID() uuid.UUID      { return e.ID }
func (e BaseEvent) AggregateID() string     { return e.Aggregate }
func (e BaseEvent) AggregateType() string   { return e.Type }
func (e BaseEvent) RoutingKey() string      { return e.Key }
func (e BaseEvent) OccurredAt() time.Time   { return e.At }
func (e BaseEvent) Metadata() EventMetadata { return e.Meta }

// SetMetadata sets the event metadata.
func (e *BaseEvent) SetMetadata(metadata EventMetadata) {
	e.Meta = metadata
}

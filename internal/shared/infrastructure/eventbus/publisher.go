package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/huynnh/calsync/internal/shared/domain"
)

// Publisher defines the interface for publishing events to a message broker.
type Publisher interface {
	// Publish sends a message to the event bus.
	Publish(ctx context.Context, routingKey string, payload []byte) error

	// Close closes the publisher connection.
	Close() error
}

// EventPublisher publishes domain events.
type EventPublisher interface {
	PublishDomainEvent(ctx context.Context, event domain.DomainEvent) error
}

// DomainEventPublisher encodes domain events as JSON onto a Publisher.
type DomainEventPublisher struct {
	publisher Publisher
}

// NewDomainEventPublisher wraps a raw publisher.
func NewDomainEventPublisher(publisher Publisher) *DomainEventPublisher {
	return &DomainEventPublisher{publisher: publisher}
}

// PublishDomainEvent encodes and publishes the event under its routing key.
func (p *DomainEventPublisher) PublishDomainEvent(ctx context.Context, event domain.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event.RoutingKey(), err)
	}
	return p.publisher.Publish(ctx, event.RoutingKey(), payload)
}

// FanoutPublisher publishes every message to all of its publishers. A failing
// publisher does not stop delivery to the rest.
type FanoutPublisher struct {
	publishers []Publisher
	logger     *slog.Logger
}

// NewFanoutPublisher creates a fan-out publisher. Nil publishers are skipped.
func NewFanoutPublisher(logger *slog.Logger, publishers ...Publisher) *FanoutPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	kept := make([]Publisher, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			kept = append(kept, p)
		}
	}
	return &FanoutPublisher{publishers: kept, logger: logger}
}

func (f *FanoutPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	var errs []error
	for _, p := range f.publishers {
		if err := p.Publish(ctx, routingKey, payload); err != nil {
			f.logger.Warn("publish failed", "routing_key", routingKey, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *FanoutPublisher) Close() error {
	var errs []error
	for _, p := range f.publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

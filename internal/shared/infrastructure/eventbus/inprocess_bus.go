package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// InProcessBus delivers events synchronously to consumers registered in the
// same process. Consumer failures are logged and never fail the publisher.
// Consumers may publish from inside Handle.
type InProcessBus struct {
	registry *ConsumerRegistry
	logger   *slog.Logger
}

// NewInProcessBus creates a new in-process bus.
func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{
		registry: NewConsumerRegistry(logger),
		logger:   logger,
	}
}

// RegisterConsumer registers an event consumer.
func (b *InProcessBus) RegisterConsumer(consumer EventConsumer) {
	b.registry.Register(consumer)
}

// Publish decodes the envelope and dispatches it.
func (b *InProcessBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	event := &ConsumedEvent{}
	if err := json.Unmarshal(payload, event); err != nil {
		b.logger.Error("failed to unmarshal event payload",
			"routing_key", routingKey,
			"error", err,
		)
		return nil
	}
	if event.RoutingKey == "" {
		event.RoutingKey = routingKey
	}
	event.Payload = append(json.RawMessage(nil), payload...)

	start := time.Now()
	if err := b.registry.Dispatch(ctx, event); err != nil {
		b.logger.Warn("event dispatch failed",
			"routing_key", routingKey,
			"event_id", event.EventID,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return nil
	}

	b.logger.Debug("event dispatched",
		"routing_key", routingKey,
		"event_id", event.EventID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Close is a no-op.
func (b *InProcessBus) Close() error {
	return nil
}

// Registry returns the underlying consumer registry.
func (b *InProcessBus) Registry() *ConsumerRegistry {
	return b.registry
}

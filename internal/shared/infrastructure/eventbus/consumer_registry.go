package eventbus

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// ConsumerRegistry manages event consumers and dispatches events to them.
// A pattern segment of "*" matches exactly one routing key segment and a
// trailing "#" matches the rest of the key.
type ConsumerRegistry struct {
	consumers map[string][]EventConsumer
	mu        sync.RWMutex
	logger    *slog.Logger
}

// NewConsumerRegistry creates a new consumer registry.
func NewConsumerRegistry(logger *slog.Logger) *ConsumerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsumerRegistry{
		consumers: make(map[string][]EventConsumer),
		logger:    logger,
	}
}

// Register adds a consumer for its declared patterns.
func (r *ConsumerRegistry) Register(consumer EventConsumer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, pattern := range consumer.EventTypes() {
		r.consumers[pattern] = append(r.consumers[pattern], consumer)
		r.logger.Debug("registered consumer", "pattern", pattern)
	}
}

// GetConsumers returns the consumers whose patterns match routingKey. A
// consumer matching through several patterns is returned once.
func (r *ConsumerRegistry) GetConsumers(routingKey string) []EventConsumer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []EventConsumer
	seen := make(map[EventConsumer]struct{})
	for pattern, consumers := range r.consumers {
		if !matchRoutingKey(pattern, routingKey) {
			continue
		}
		for _, c := range consumers {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			matched = append(matched, c)
		}
	}
	return matched
}

// Dispatch sends an event to every matching consumer. All consumers run even
// if one fails; the last error is returned.
func (r *ConsumerRegistry) Dispatch(ctx context.Context, event *ConsumedEvent) error {
	consumers := r.GetConsumers(event.RoutingKey)
	if len(consumers) == 0 {
		r.logger.Debug("no consumers for event", "routing_key", event.RoutingKey)
		return nil
	}

	var lastErr error
	for _, consumer := range consumers {
		if err := consumer.Handle(ctx, event); err != nil {
			r.logger.Error("consumer failed to handle event",
				"routing_key", event.RoutingKey,
				"event_id", event.EventID,
				"error", err,
			)
			lastErr = err
		}
	}
	return lastErr
}

// ConsumerCount returns the number of registrations.
func (r *ConsumerRegistry) ConsumerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, consumers := range r.consumers {
		count += len(consumers)
	}
	return count
}

func matchRoutingKey(pattern, key string) bool {
	if pattern == key || pattern == "#" {
		return true
	}
	ps := strings.Split(pattern, ".")
	ks := strings.Split(key, ".")
	for i, p := range ps {
		if p == "#" && i == len(ps)-1 {
			return true
		}
		if i >= len(ks) || (p != "*" && p != ks[i]) {
			return false
		}
	}
	return len(ps) == len(ks)
}

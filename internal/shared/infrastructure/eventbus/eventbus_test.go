package eventbus_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/huynnh/calsync/internal/shared/domain"
	"github.com/huynnh/calsync/internal/shared/infrastructure/eventbus"
	"github.com/huynnh/calsync/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockConsumer struct {
	mu         sync.Mutex
	eventTypes []string
	events     []*eventbus.ConsumedEvent
	err        error
	onHandle   func(ctx context.Context, event *eventbus.ConsumedEvent)
}

func (m *mockConsumer) EventTypes() []string { return m.eventTypes }

func (m *mockConsumer) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	if m.onHandle != nil {
		m.onHandle(ctx, event)
	}
	return m.err
}

type testEvent struct {
	domain.BaseEvent
	Provider string `json:"provider"`
}

func newTestEvent(key, provider string) *testEvent {
	return &testEvent{
		BaseEvent: domain.NewBaseEvent(provider, "provider_connection", key),
		Provider:  provider,
	}
}

type recordingPublisher struct {
	keys   []string
	err    error
	closed bool
}

func (r *recordingPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	r.keys = append(r.keys, routingKey)
	return r.err
}

func (r *recordingPublisher) Close() error {
	r.closed = true
	return nil
}

func TestInProcessBus_DeliversDomainEvent(t *testing.T) {
	bus := eventbus.NewInProcessBus(observability.Discard())
	consumer := &mockConsumer{eventTypes: []string{"calendar.provider.synced"}}
	bus.RegisterConsumer(consumer)

	event := newTestEvent("calendar.provider.synced", "google")
	event.SetMetadata(domain.EventMetadata{CorrelationID: "corr-1"})

	publisher := eventbus.NewDomainEventPublisher(bus)
	require.NoError(t, publisher.PublishDomainEvent(context.Background(), event))

	require.Len(t, consumer.events, 1)
	got := consumer.events[0]
	assert.Equal(t, event.EventID(), got.EventID)
	assert.Equal(t, "google", got.AggregateID)
	assert.Equal(t, "corr-1", got.Metadata.CorrelationID)

	var decoded testEvent
	require.NoError(t, got.Decode(&decoded))
	assert.Equal(t, "google", decoded.Provider)
}

func TestInProcessBus_WildcardPatterns(t *testing.T) {
	bus := eventbus.NewInProcessBus(observability.Discard())
	providerEvents := &mockConsumer{eventTypes: []string{"calendar.provider.*"}}
	everything := &mockConsumer{eventTypes: []string{"calendar.#"}}
	exact := &mockConsumer{eventTypes: []string{"calendar.provider.connected", "calendar.provider.*"}}
	bus.RegisterConsumer(providerEvents)
	bus.RegisterConsumer(everything)
	bus.RegisterConsumer(exact)

	publisher := eventbus.NewDomainEventPublisher(bus)
	ctx := context.Background()
	require.NoError(t, publisher.PublishDomainEvent(ctx, newTestEvent("calendar.provider.connected", "google")))
	require.NoError(t, publisher.PublishDomainEvent(ctx, newTestEvent("calendar.aggregation.refreshed", "aggregation")))

	assert.Len(t, providerEvents.events, 1)
	assert.Len(t, everything.events, 2)
	// Matching via two patterns still delivers once.
	assert.Len(t, exact.events, 1)
}

func TestInProcessBus_ConsumerErrorDoesNotFailPublish(t *testing.T) {
	bus := eventbus.NewInProcessBus(observability.Discard())
	failing := &mockConsumer{eventTypes: []string{"calendar.provider.synced"}, err: errors.New("boom")}
	healthy := &mockConsumer{eventTypes: []string{"calendar.provider.synced"}}
	bus.RegisterConsumer(failing)
	bus.RegisterConsumer(healthy)

	err := eventbus.NewDomainEventPublisher(bus).PublishDomainEvent(context.Background(), newTestEvent("calendar.provider.synced", "outlook"))
	assert.NoError(t, err)
	assert.Len(t, healthy.events, 1)
}

func TestInProcessBus_ConsumerMayPublish(t *testing.T) {
	bus := eventbus.NewInProcessBus(observability.Discard())
	publisher := eventbus.NewDomainEventPublisher(bus)
	downstream := &mockConsumer{eventTypes: []string{"calendar.aggregation.refreshed"}}
	upstream := &mockConsumer{
		eventTypes: []string{"calendar.provider.synced"},
		onHandle: func(ctx context.Context, event *eventbus.ConsumedEvent) {
			_ = publisher.PublishDomainEvent(ctx, newTestEvent("calendar.aggregation.refreshed", "aggregation"))
		},
	}
	bus.RegisterConsumer(upstream)
	bus.RegisterConsumer(downstream)

	require.NoError(t, publisher.PublishDomainEvent(context.Background(), newTestEvent("calendar.provider.synced", "google")))
	assert.Len(t, downstream.events, 1)
}

func TestInProcessBus_InvalidPayloadIsSkipped(t *testing.T) {
	bus := eventbus.NewInProcessBus(observability.Discard())
	consumer := &mockConsumer{eventTypes: []string{"#"}}
	bus.RegisterConsumer(consumer)

	assert.NoError(t, bus.Publish(context.Background(), "calendar.provider.synced", []byte("not json")))
	assert.Empty(t, consumer.events)
}

func TestConsumerRegistry_Count(t *testing.T) {
	registry := eventbus.NewConsumerRegistry(nil)
	registry.Register(&mockConsumer{eventTypes: []string{"a.b", "a.*"}})
	registry.Register(&mockConsumer{eventTypes: []string{"c.d"}})

	assert.Equal(t, 3, registry.ConsumerCount())
	assert.Len(t, registry.GetConsumers("a.b"), 1)
	assert.Empty(t, registry.GetConsumers("a.b.c"))
	assert.Empty(t, registry.GetConsumers("x"))
}

func TestFanoutPublisher(t *testing.T) {
	first := &recordingPublisher{err: errors.New("broker down")}
	second := &recordingPublisher{}
	fanout := eventbus.NewFanoutPublisher(observability.Discard(), first, nil, second)

	err := fanout.Publish(context.Background(), "calendar.provider.synced", []byte(`{}`))
	assert.Error(t, err)
	assert.Equal(t, []string{"calendar.provider.synced"}, first.keys)
	assert.Equal(t, []string{"calendar.provider.synced"}, second.keys)

	require.NoError(t, fanout.Close())
	assert.True(t, first.closed)
	assert.True(t, second.closed)
}

package subscribers_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/huynnh/calsync/internal/calendar/application"
	"github.com/huynnh/calsync/internal/calendar/application/subscribers"
	"github.com/huynnh/calsync/internal/calendar/domain"
	"github.com/huynnh/calsync/internal/shared/infrastructure/eventbus"
	"github.com/huynnh/calsync/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRefresher struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *mockRefresher) FetchAll(ctx context.Context) (*application.AggregateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &application.AggregateResult{FetchedAt: time.Now()}, nil
}

func newBus(consumers ...eventbus.EventConsumer) *eventbus.DomainEventPublisher {
	bus := eventbus.NewInProcessBus(observability.Discard())
	for _, c := range consumers {
		bus.RegisterConsumer(c)
	}
	return eventbus.NewDomainEventPublisher(bus)
}

func TestRefreshSubscriber_RefreshesOnLifecycleEvents(t *testing.T) {
	refresher := &mockRefresher{}
	pub := newBus(subscribers.NewRefreshSubscriber(refresher, observability.Discard()))
	ctx := context.Background()

	require.NoError(t, pub.PublishDomainEvent(ctx, domain.NewProviderSyncedEvent(domain.ProviderGoogle, []string{"snapshot"}, 3, time.Second, false)))
	require.NoError(t, pub.PublishDomainEvent(ctx, domain.NewProviderConnectedEvent(domain.ProviderOutlook)))
	require.NoError(t, pub.PublishDomainEvent(ctx, domain.NewProviderDisconnectedEvent(domain.ProviderOutlook)))
	// Failures do not trigger a refresh.
	require.NoError(t, pub.PublishDomainEvent(ctx, domain.NewProviderSyncFailedEvent(domain.ProviderGoogle, "pull_events", "boom", true)))

	assert.Equal(t, 3, refresher.calls)
}

func TestRefreshSubscriber_SwallowsErrors(t *testing.T) {
	refresher := &mockRefresher{err: errors.New("offline")}
	sub := subscribers.NewRefreshSubscriber(refresher, observability.Discard())

	err := sub.Handle(context.Background(), &eventbus.ConsumedEvent{RoutingKey: domain.RoutingKeyProviderSynced})
	assert.NoError(t, err)
	assert.Equal(t, 1, refresher.calls)
}

func TestRefreshSubscriber_Disabled(t *testing.T) {
	refresher := &mockRefresher{}
	sub := subscribers.NewRefreshSubscriber(refresher, nil)
	sub.SetEnabled(false)

	require.NoError(t, sub.Handle(context.Background(), &eventbus.ConsumedEvent{RoutingKey: domain.RoutingKeyProviderSynced}))
	assert.Equal(t, 0, refresher.calls)
}

func TestActivitySubscriber_RecordsProviderEvents(t *testing.T) {
	activity := subscribers.NewActivitySubscriber(observability.Discard())
	pub := newBus(activity)
	ctx := context.Background()

	require.NoError(t, pub.PublishDomainEvent(ctx, domain.NewProviderConnectedEvent(domain.ProviderGoogle)))
	require.NoError(t, pub.PublishDomainEvent(ctx, domain.NewProviderSyncFailedEvent(domain.ProviderGoogle, "push_tasks", "quota exceeded", true)))
	// Not a provider event.
	require.NoError(t, pub.PublishDomainEvent(ctx, domain.NewAggregationRefreshedEvent(4, nil)))

	recent := activity.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, domain.RoutingKeyProviderConnected, recent[0].RoutingKey)
	assert.Equal(t, domain.ProviderGoogle, recent[0].Provider)
	assert.Equal(t, "push_tasks", recent[1].Step)
	assert.Equal(t, "quota exceeded", recent[1].Error)
	assert.True(t, recent[1].Background)
}

func TestActivitySubscriber_KeepsMostRecent(t *testing.T) {
	activity := subscribers.NewActivitySubscriber(nil)
	for i := 0; i < 60; i++ {
		ev := &eventbus.ConsumedEvent{RoutingKey: domain.RoutingKeyProviderSynced, Payload: []byte(`{"provider":"google","items":1}`)}
		require.NoError(t, activity.Handle(context.Background(), ev))
	}
	assert.Len(t, activity.Recent(), 50)
}

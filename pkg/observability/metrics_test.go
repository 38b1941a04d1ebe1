package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	m := NoopMetrics{}

	m.Counter("test", 1)
	m.Gauge("test", 1.0)
	m.Timing("test", time.Second)
}

func TestInMemoryMetrics(t *testing.T) {
	t.Run("Counter with tags", func(t *testing.T) {
		m := NewInMemoryMetrics()

		m.Counter(MetricSyncCycles, 1, T("provider", "google"))
		m.Counter(MetricSyncCycles, 1, T("provider", "outlook"))
		m.Counter(MetricSyncCycles, 1, T("provider", "google"))

		assert.Equal(t, int64(2), m.GetCounter(MetricSyncCycles, T("provider", "google")))
		assert.Equal(t, int64(1), m.GetCounter(MetricSyncCycles, T("provider", "outlook")))
		assert.Len(t, m.Counters(), 2)
	})

	t.Run("Gauge", func(t *testing.T) {
		m := NewInMemoryMetrics()

		m.Gauge(MetricAggregatedItems, 12)
		m.Gauge(MetricAggregatedItems, 7)

		assert.Equal(t, 7.0, m.GetGauge(MetricAggregatedItems))
	})

	t.Run("Timing", func(t *testing.T) {
		m := NewInMemoryMetrics()

		m.Timing(MetricSyncDuration, 100*time.Millisecond)
		m.Timing(MetricSyncDuration, 200*time.Millisecond)

		assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, m.GetTimings(MetricSyncDuration))
	})
}

func TestFormatKey(t *testing.T) {
	assert.Equal(t, "requests", formatKey("requests", nil))
	assert.Equal(t, "requests:method=GET", formatKey("requests", []Tag{T("method", "GET")}))
	// Tag order does not matter.
	assert.Equal(t,
		formatKey("requests", []Tag{T("status", "200"), T("method", "GET")}),
		formatKey("requests", []Tag{T("method", "GET"), T("status", "200")}),
	)
}

func TestTimer(t *testing.T) {
	m := NewInMemoryMetrics()

	StartTimer("step").WithLogger(Discard()).WithMetrics(m, MetricSyncDuration, T("step", "pull_events")).Stop(context.Background(), nil)
	StartTimer("step").WithMetrics(m, MetricSyncDuration, T("step", "pull_events")).Stop(context.Background(), errors.New("boom"))

	assert.Len(t, m.GetTimings(MetricSyncDuration, T("step", "pull_events"), T("outcome", "ok")), 1)
	assert.Len(t, m.GetTimings(MetricSyncDuration, T("step", "pull_events"), T("outcome", "failed")), 1)
}

func TestHealthRegistry(t *testing.T) {
	registry := NewHealthRegistry()
	registry.Register("backend", PingChecker("backend", HealthStatusUnhealthy, func(ctx context.Context) error { return nil }))

	health := registry.Check(context.Background())
	assert.Equal(t, HealthStatusHealthy, health.Status)

	registry.Register("redis", PingChecker("redis", HealthStatusDegraded, func(ctx context.Context) error {
		return errors.New("connection refused")
	}))
	health = registry.Check(context.Background())
	assert.Equal(t, HealthStatusDegraded, health.Status)
	require.Contains(t, health.Checks, "redis")
	assert.Contains(t, health.Checks["redis"].Message, "connection refused")

	registry.Register("session", PingChecker("session", HealthStatusUnhealthy, func(ctx context.Context) error {
		return errors.New("locked")
	}))
	assert.Equal(t, HealthStatusUnhealthy, registry.Check(context.Background()).Status)
}

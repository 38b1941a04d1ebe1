package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/huynnh/calsync/internal/calendar/application"
	"github.com/huynnh/calsync/internal/calendar/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() application.Snapshot {
	start := time.Date(2025, 3, 12, 2, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	return application.Snapshot{
		Items: []domain.CalendarItem{
			{ID: "local_task_1", Kind: domain.KindTask, Name: "Viết báo cáo", Source: domain.SourceLocal},
			{ID: "google_event_g1", Kind: domain.KindEvent, Name: "Họp", StartTime: &start, EndTime: &end, Source: domain.SourceGoogleEvent},
		},
		FetchedAt: start,
	}
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache(0)
	ctx := context.Background()

	_, err := c.Load(ctx)
	assert.ErrorIs(t, err, application.ErrNoSnapshot)

	snap := sampleSnapshot()
	require.NoError(t, c.Save(ctx, snap))
	snap.Items[0].Name = "mutated"

	got, err := c.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Viết báo cáo", got.Items[0].Name)

	require.NoError(t, c.Clear(ctx))
	_, err = c.Load(ctx)
	assert.ErrorIs(t, err, application.ErrNoSnapshot)
}

func TestMemoryCache_Expires(t *testing.T) {
	now := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache(time.Hour)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, sampleSnapshot()))
	now = now.Add(59 * time.Minute)
	_, err := c.Load(ctx)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = c.Load(ctx)
	assert.ErrorIs(t, err, application.ErrNoSnapshot)
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), "not a url")
	assert.ErrorContains(t, err, "failed to parse Redis URL")
}

// Runs against a real server when CALSYNC_TEST_REDIS_URL is set.
func TestRedisCache_RoundTrip(t *testing.T) {
	url := os.Getenv("CALSYNC_TEST_REDIS_URL")
	if url == "" {
		t.Skip("CALSYNC_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	client, err := Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	c := NewRedisCache(client, "test-"+time.Now().Format("150405.000"), time.Minute)
	t.Cleanup(func() { _ = c.Clear(ctx) })

	_, err = c.Load(ctx)
	assert.ErrorIs(t, err, application.ErrNoSnapshot)

	require.NoError(t, c.Save(ctx, sampleSnapshot()))
	got, err := c.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "google_event_g1", got.Items[1].ID)
	assert.True(t, got.Items[1].StartTime.Equal(*sampleSnapshot().Items[1].StartTime))
}

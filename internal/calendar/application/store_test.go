package application

import (
	"sync"
	"testing"
	"time"

	"github.com/huynnh/calsync/internal/calendar/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timePtr(t time.Time) *time.Time { return &t }

func mkItem(id string, source domain.Source, start *time.Time, due *time.Time) domain.CalendarItem {
	return domain.CalendarItem{ID: id, Source: source, StartTime: start, DueDate: due}
}

func TestStore_QueryByDayPartitionsBySource(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	noon := timePtr(day.Add(12 * time.Hour))

	store := NewStore()
	store.ReplaceAll([]domain.CalendarItem{
		mkItem("l1", domain.SourceLocal, noon, nil),
		mkItem("l2", domain.SourceLocal, noon, nil),
		mkItem("l3", domain.SourceLocal, nil, noon),
		mkItem("g1", domain.SourceGoogleEvent, noon, nil),
		mkItem("g2", domain.SourceGoogleEvent, noon, nil),
		mkItem("o1", domain.SourceOutlookTasks, nil, noon),
		mkItem("other-day", domain.SourceLocal, timePtr(day.AddDate(0, 0, 1).Add(time.Hour)), nil),
		mkItem("no-anchor", domain.SourceLocal, nil, nil),
	})

	got := store.QueryByDay(day.Add(15 * time.Hour))
	assert.Len(t, got.LocalTasks, 3)
	assert.Len(t, got.GoogleEvents, 2)
	assert.Len(t, got.OutlookTasks, 1)
	assert.Empty(t, got.GoogleTasks)
	assert.Empty(t, got.OutlookEvents)
	assert.Empty(t, got.EventModelEvents)
	assert.Equal(t, 6, got.Len())
	assert.Len(t, got.Tasks(), 4)
	assert.Len(t, got.Events(), 2)
}

func TestStore_QueryByDayBoundariesInclusive(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	store := NewStore()
	store.ReplaceAll([]domain.CalendarItem{
		mkItem("midnight", domain.SourceLocal, timePtr(day), nil),
		mkItem("last-instant", domain.SourceLocal, timePtr(EndOfDay(day)), nil),
		mkItem("before", domain.SourceLocal, timePtr(day.Add(-time.Nanosecond)), nil),
		mkItem("next-midnight", domain.SourceLocal, timePtr(day.AddDate(0, 0, 1)), nil),
	})

	got := store.QueryByDay(day)
	ids := make([]string, 0, len(got.LocalTasks))
	for _, i := range got.LocalTasks {
		ids = append(ids, i.ID)
	}
	assert.ElementsMatch(t, []string{"midnight", "last-instant"}, ids)
}

func TestStore_ReplaceAllIsWholesale(t *testing.T) {
	store := NewStore()
	input := []domain.CalendarItem{{ID: "a"}, {ID: "b"}}
	store.ReplaceAll(input)
	input[0].ID = "mutated"

	require.Equal(t, 2, store.Len())
	assert.Equal(t, "a", store.Items()[0].ID)
	assert.False(t, store.UpdatedAt().IsZero())

	store.ReplaceAll([]domain.CalendarItem{{ID: "c"}})
	assert.Equal(t, []domain.CalendarItem{{ID: "c"}}, store.Items())
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore()
	day := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.ReplaceAll([]domain.CalendarItem{mkItem("x", domain.SourceLocal, timePtr(day), nil)})
		}()
		go func() {
			defer wg.Done()
			_ = store.QueryByDay(day)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, store.Len())
}

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	ts := time.Date(2025, 3, 10, 18, 45, 0, 0, loc)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, loc), StartOfDay(ts))
	assert.Equal(t, time.Date(2025, 3, 10, 23, 59, 59, 999999999, loc), EndOfDay(ts))
}

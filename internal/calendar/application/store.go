package application

import (
	"sync"
	"time"

	"github.com/huynnh/calsync/internal/calendar/domain"
)

// DayItems is one day's items partitioned by source.
type DayItems struct {
	LocalTasks       []domain.CalendarItem
	GoogleTasks      []domain.CalendarItem
	OutlookTasks     []domain.CalendarItem
	GoogleEvents     []domain.CalendarItem
	OutlookEvents    []domain.CalendarItem
	EventModelEvents []domain.CalendarItem
}

// BySource returns the partition for one source.
func (d DayItems) BySource(source domain.Source) []domain.CalendarItem {
	switch source {
	case domain.SourceLocal:
		return d.LocalTasks
	case domain.SourceGoogleTasks:
		return d.GoogleTasks
	case domain.SourceOutlookTasks:
		return d.OutlookTasks
	case domain.SourceGoogleEvent:
		return d.GoogleEvents
	case domain.SourceOutlookEvent:
		return d.OutlookEvents
	case domain.SourceEventModel:
		return d.EventModelEvents
	default:
		return nil
	}
}

// Tasks returns the task partitions concatenated.
func (d DayItems) Tasks() []domain.CalendarItem {
	return concat(d.LocalTasks, d.GoogleTasks, d.OutlookTasks)
}

// Events returns the event partitions concatenated.
func (d DayItems) Events() []domain.CalendarItem {
	return concat(d.GoogleEvents, d.OutlookEvents, d.EventModelEvents)
}

// Len returns the total number of items.
func (d DayItems) Len() int {
	return len(d.LocalTasks) + len(d.GoogleTasks) + len(d.OutlookTasks) +
		len(d.GoogleEvents) + len(d.OutlookEvents) + len(d.EventModelEvents)
}

// Store holds the merged item collection. It is replaced wholesale on every
// fetch cycle.
type Store struct {
	mu        sync.RWMutex
	items     []domain.CalendarItem
	updatedAt time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// ReplaceAll swaps in a new collection.
func (s *Store) ReplaceAll(items []domain.CalendarItem) {
	copied := make([]domain.CalendarItem, len(items))
	copy(copied, items)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = copied
	s.updatedAt = time.Now()
}

// Items returns a copy of the collection.
func (s *Store) Items() []domain.CalendarItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CalendarItem, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// UpdatedAt returns when the collection was last replaced.
func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// QueryByDay returns the items anchored within day, bounds inclusive.
func (s *Store) QueryByDay(day time.Time) DayItems {
	start, end := StartOfDay(day), EndOfDay(day)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out DayItems
	for _, item := range s.items {
		anchor, ok := item.AnchorTime()
		if !ok || anchor.Before(start) || anchor.After(end) {
			continue
		}
		switch item.Source {
		case domain.SourceLocal:
			out.LocalTasks = append(out.LocalTasks, item)
		case domain.SourceGoogleTasks:
			out.GoogleTasks = append(out.GoogleTasks, item)
		case domain.SourceOutlookTasks:
			out.OutlookTasks = append(out.OutlookTasks, item)
		case domain.SourceGoogleEvent:
			out.GoogleEvents = append(out.GoogleEvents, item)
		case domain.SourceOutlookEvent:
			out.OutlookEvents = append(out.OutlookEvents, item)
		case domain.SourceEventModel:
			out.EventModelEvents = append(out.EventModelEvents, item)
		}
	}
	return out
}

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999999999, t.Location())
}

func concat(parts ...[]domain.CalendarItem) []domain.CalendarItem {
	var out []domain.CalendarItem
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

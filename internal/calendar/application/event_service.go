package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/huynnh/calsync/internal/calendar/domain"
)

// EventInput is an event as entered by the user.
type EventInput struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Location    string
}

// EventService manages backend event model entries.
type EventService struct {
	events     EventAPI
	notifier   CreationNotifier
	normalizer *Normalizer
	loc        *time.Location
	logger     *slog.Logger
	now        func() time.Time
}

// NewEventService creates an event service. notifier may be nil.
func NewEventService(events EventAPI, notifier CreationNotifier, normalizer *Normalizer, loc *time.Location, logger *slog.Logger) *EventService {
	if logger == nil {
		logger = slog.Default()
	}
	if normalizer == nil {
		normalizer = NewNormalizer(loc)
	}
	if loc == nil {
		loc = time.Local
	}
	return &EventService{
		events:     events,
		notifier:   notifier,
		normalizer: normalizer,
		loc:        loc,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *EventService) payload(in EventInput) EventPayload {
	zone := s.loc.String()
	return EventPayload{
		Title:       in.Title,
		Description: in.Description,
		Start:       DateTime{DateTime: in.Start.In(s.loc).Format(time.RFC3339), TimeZone: zone},
		End:         DateTime{DateTime: in.End.In(s.loc).Format(time.RFC3339), TimeZone: zone},
		Location:    in.Location,
	}
}

// Create validates and creates an event, then schedules its reminder.
func (s *EventService) Create(ctx context.Context, in EventInput) (*domain.CalendarItem, error) {
	if err := domain.ValidateEventSchedule(in.Title, in.Start, in.End, s.now()); err != nil {
		return nil, err
	}
	rec, err := s.events.Create(ctx, s.payload(in))
	if err != nil {
		s.logger.Warn("event create failed", "error", err)
		return nil, &OperationError{Message: MsgEventSaveFailed, Err: err}
	}
	item, _ := s.normalizer.Normalize(*rec)

	if s.notifier != nil {
		if err := s.notifier.EventCreated(ctx, item.NativeID); err != nil {
			s.logger.Warn("event notification failed", "event_id", item.NativeID, "error", err)
		}
	}
	return &item, nil
}

// Update validates and replaces an event.
func (s *EventService) Update(ctx context.Context, id string, in EventInput) (*domain.CalendarItem, error) {
	if err := domain.ValidateEventSchedule(in.Title, in.Start, in.End, s.now()); err != nil {
		return nil, err
	}
	rec, err := s.events.Update(ctx, id, s.payload(in))
	if err != nil {
		return nil, &OperationError{Message: MsgEventSaveFailed, Err: err}
	}
	item, _ := s.normalizer.Normalize(*rec)
	return &item, nil
}

// Get returns one event.
func (s *EventService) Get(ctx context.Context, id string) (*domain.CalendarItem, error) {
	rec, err := s.events.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	item, _ := s.normalizer.Normalize(*rec)
	return &item, nil
}

// Delete removes an event.
func (s *EventService) Delete(ctx context.Context, id string) error {
	return s.events.Delete(ctx, id)
}

// List returns every event.
func (s *EventService) List(ctx context.Context) ([]domain.CalendarItem, error) {
	recs, err := s.events.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]domain.CalendarItem, 0, len(recs))
	for _, rec := range recs {
		item, _ := s.normalizer.Normalize(rec)
		items = append(items, item)
	}
	return items, nil
}

package application

import (
	"time"

	"github.com/huynnh/calsync/internal/calendar/domain"
)

// ID prefixes per source. Raw ids from different sources may collide; the
// prefix keeps merged ids unique.
const (
	prefixLocalTask    = "local_task_"
	prefixGoogleEvent  = "google_event_"
	prefixGoogleTask   = "google_task_"
	prefixOutlookEvent = "outlook_event_"
	prefixOutlookTask  = "outlook_task_"
	prefixEventModel   = "event_model_"
)

// Layouts accepted for timestamps without an offset. They are read in the
// normalizer's location.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalizer maps provider records onto CalendarItem.
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer creates a normalizer. Offset-less times are read in loc.
func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{loc: loc}
}

// Normalize converts one record. It reports false for records it does not
// know, including nil and pointer records.
func (n *Normalizer) Normalize(rec RawRecord) (domain.CalendarItem, bool) {
	switch r := rec.(type) {
	case LocalTaskRecord:
		return n.localTask(r), true
	case GoogleEventRecord:
		return n.googleEvent(r), true
	case GoogleTaskRecord:
		return n.googleTask(r), true
	case OutlookEventRecord:
		return n.outlookEvent(r), true
	case OutlookTaskRecord:
		return n.outlookTask(r), true
	case EventModelRecord:
		return n.eventModel(r), true
	default:
		return domain.CalendarItem{}, false
	}
}

// NormalizeAll converts a batch, preserving order.
func (n *Normalizer) NormalizeAll(recs []RawRecord) []domain.CalendarItem {
	items := make([]domain.CalendarItem, 0, len(recs))
	for _, rec := range recs {
		if item, ok := n.Normalize(rec); ok {
			items = append(items, item)
		}
	}
	return items
}

func (n *Normalizer) localTask(r LocalTaskRecord) domain.CalendarItem {
	return domain.CalendarItem{
		ID:          prefixLocalTask + r.ID.String(),
		Kind:        domain.KindTask,
		Name:        r.TaskName,
		Description: r.Description,
		StartTime:   n.parseTime(r.StartTime),
		EndTime:     n.parseTime(r.EndTime),
		DueDate:     n.parseTime(r.DueDate),
		Priority:    domain.ParsePriority(r.Priority),
		Status:      statusOrPending(r.Status),
		Source:      domain.SourceLocal,
		NativeID:    r.ID.String(),
	}
}

func (n *Normalizer) googleEvent(r GoogleEventRecord) domain.CalendarItem {
	return domain.CalendarItem{
		ID:          prefixGoogleEvent + r.ID.String(),
		Kind:        domain.KindEvent,
		Name:        r.Summary,
		Description: r.Description,
		StartTime:   n.parseDateTime(r.Start, ""),
		EndTime:     n.parseDateTime(r.End, ""),
		Priority:    domain.PriorityMedium,
		Status:      domain.StatusPending,
		ExternalID:  r.ExternalID,
		Source:      domain.SourceGoogleEvent,
		NativeID:    r.ID.String(),
	}
}

func (n *Normalizer) googleTask(r GoogleTaskRecord) domain.CalendarItem {
	return domain.CalendarItem{
		ID:          prefixGoogleTask + r.ID.String(),
		Kind:        domain.KindTask,
		Name:        r.Title,
		Description: r.Description,
		DueDate:     n.parseTime(r.DueDate),
		Priority:    domain.PriorityMedium,
		Status:      statusOrPending(r.Status),
		ExternalID:  r.ExternalID,
		Source:      domain.SourceGoogleTasks,
		NativeID:    r.ID.String(),
	}
}

func (n *Normalizer) outlookEvent(r OutlookEventRecord) domain.CalendarItem {
	return domain.CalendarItem{
		ID:          prefixOutlookEvent + r.ID.String(),
		Kind:        domain.KindEvent,
		Name:        r.Title,
		Description: r.Description,
		StartTime:   n.parseTime(r.StartTime),
		EndTime:     n.parseTime(r.EndTime),
		Priority:    domain.PriorityMedium,
		Status:      domain.StatusPending,
		ExternalID:  r.ExternalID,
		Source:      domain.SourceOutlookEvent,
		Location:    r.Location,
		NativeID:    r.ID.String(),
	}
}

// outlookTask leaves StartTime unset: created_at is not a schedule, and the
// task is placed by its due date.
func (n *Normalizer) outlookTask(r OutlookTaskRecord) domain.CalendarItem {
	return domain.CalendarItem{
		ID:          prefixOutlookTask + r.ID.String(),
		Kind:        domain.KindTask,
		Name:        r.Title,
		Description: r.Description,
		DueDate:     n.parseTime(r.DueDate),
		Priority:    domain.PriorityMedium,
		Status:      statusOrPending(r.Status),
		ExternalID:  r.ExternalID,
		Source:      domain.SourceOutlookTasks,
		NativeID:    r.ID.String(),
	}
}

func (n *Normalizer) eventModel(r EventModelRecord) domain.CalendarItem {
	return domain.CalendarItem{
		ID:          prefixEventModel + r.ID.String(),
		Kind:        domain.KindEvent,
		Name:        r.Title,
		Description: r.Description,
		StartTime:   n.parseDateTime(r.Start, r.StartTime),
		EndTime:     n.parseDateTime(r.End, r.EndTime),
		Priority:    domain.PriorityMedium,
		Status:      domain.StatusPending,
		ExternalID:  r.ExternalID,
		Source:      domain.SourceEventModel,
		Location:    r.Location,
		NativeID:    r.ID.String(),
	}
}

// parseDateTime prefers dateTime, then the all-day date, then fallback.
func (n *Normalizer) parseDateTime(dt DateTime, fallback string) *time.Time {
	for _, s := range []string{dt.DateTime, dt.Date, fallback} {
		if t := n.parseTime(s); t != nil {
			return t
		}
	}
	return nil
}

// parseTime returns nil for empty or unparseable input.
func (n *Normalizer) parseTime(s string) *time.Time {
	t, ok := ParseTime(s, n.loc)
	if !ok {
		return nil
	}
	return &t
}

// ParseTime parses RFC 3339 (with or without fractional seconds) and the
// offset-less layouts the backend emits, reading the latter in loc.
func ParseTime(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func statusOrPending(s string) domain.Status {
	st, err := domain.ParseStatus(s)
	if err != nil {
		return domain.StatusPending
	}
	return st
}

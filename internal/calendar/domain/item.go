package domain

import (
	"fmt"
	"time"
)

// Kind distinguishes tasks from events.
type Kind string

const (
	KindTask  Kind = "task"
	KindEvent Kind = "event"
)

// Priority is the urgency of an item.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority parses a priority, defaulting to medium for empty or unknown input.
func ParsePriority(s string) Priority {
	switch Priority(s) {
	case PriorityLow, PriorityHigh:
		return Priority(s)
	default:
		return PriorityMedium
	}
}

// Status is the lifecycle state of an item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// IsValid returns true if the status is recognized.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// ParseStatus parses a status. Empty input becomes pending.
func ParseStatus(s string) (Status, error) {
	if s == "" {
		return StatusPending, nil
	}
	st := Status(s)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid status %q", s)
	}
	return st, nil
}

// CalendarItem is the canonical shape every provider record is normalized into.
type CalendarItem struct {
	ID          string     `json:"id"`
	Kind        Kind       `json:"kind"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	ExternalID  string     `json:"external_id,omitempty"`
	Source      Source     `json:"source_provider"`
	Location    string     `json:"location,omitempty"`
	NativeID    string     `json:"native_id"`
}

// AnchorTime returns the time used to place the item in a day bucket:
// the start time if present, else the due date.
func (i CalendarItem) AnchorTime() (time.Time, bool) {
	if i.StartTime != nil {
		return *i.StartTime, true
	}
	if i.DueDate != nil {
		return *i.DueDate, true
	}
	return time.Time{}, false
}

// IsExternal reports whether the item originates from Google or Outlook.
func (i CalendarItem) IsExternal() bool {
	return i.Source.Provider() != ""
}

// CanPushTo reports whether the item may be pushed to the provider.
// Items never round-trip back to the provider they came from.
func (i CalendarItem) CanPushTo(p Provider) bool {
	return i.Source.Provider() != p
}

// PushesAsEvent reports whether a push should target the provider's calendar
// rather than its task list.
func (i CalendarItem) PushesAsEvent() bool {
	return i.EndTime != nil
}

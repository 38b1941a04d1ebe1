package domain

import (
	"strings"
	"time"
)

// User-facing validation messages.
const (
	MsgTaskEndInPast     = "Thời gian kết thúc không được ở trong quá khứ nếu chưa hoàn thành."
	MsgEventEndInPast    = "Thời gian kết thúc không được ở trong quá khứ."
	MsgEndBeforeStart    = "End time must be after start time"
	MsgTaskNameRequired  = "Task name is required"
	MsgEventTitleMissing = "Event title is required"
	MsgInvalidStatus     = "Invalid status"
)

// ValidationError is a client-side rejection raised before any request is sent.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// ValidateTaskSchedule checks a task before it is submitted.
// A task that is not completed may not end in the past. A zero end time
// skips both end checks.
func ValidateTaskSchedule(name string, start, end time.Time, status Status, now time.Time) error {
	if !end.IsZero() && status != StatusCompleted && end.Before(now) {
		return invalid(MsgTaskEndInPast)
	}
	if strings.TrimSpace(name) == "" {
		return invalid(MsgTaskNameRequired)
	}
	if !status.IsValid() {
		return invalid(MsgInvalidStatus)
	}
	if !start.IsZero() && !end.IsZero() && !end.After(start) {
		return invalid(MsgEndBeforeStart)
	}
	return nil
}

// ValidateEventSchedule checks an event before it is submitted.
func ValidateEventSchedule(title string, start, end time.Time, now time.Time) error {
	if end.Before(now) {
		return invalid(MsgEventEndInPast)
	}
	if strings.TrimSpace(title) == "" {
		return invalid(MsgEventTitleMissing)
	}
	if !end.After(start) {
		return invalid(MsgEndBeforeStart)
	}
	return nil
}

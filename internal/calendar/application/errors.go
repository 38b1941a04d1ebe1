package application

import (
	"errors"
	"fmt"

	"github.com/huynnh/calsync/internal/calendar/domain"
)

// CycleError reports the step at which a sync cycle aborted. Effects of
// earlier steps are kept.
type CycleError struct {
	Provider domain.Provider
	Step     string
	Err      error
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s sync failed at %s: %v", e.Provider, e.Step, e.Err)
}

func (e *CycleError) Unwrap() error {
	return e.Err
}

type userMessager interface {
	UserMessage() string
}

// ErrorText picks the text shown to a user: a message carried by the error
// (such as the backend's error field), else the error text, else fallback.
func ErrorText(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var m userMessager
	if errors.As(err, &m) && m.UserMessage() != "" {
		return m.UserMessage()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

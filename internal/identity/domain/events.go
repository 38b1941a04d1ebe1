package domain

import (
	sharedDomain "github.com/huynnh/calsync/internal/shared/domain"
)

const (
	AggregateType = "Session"

	RoutingKeySessionStarted = "identity.session.started"
	RoutingKeySessionEnded   = "identity.session.ended"
)

// Reasons a session ends.
const (
	EndReasonLogout      = "logout"
	EndReasonInvalidated = "invalidated"
	EndReasonExpired     = "expired"
)

// SessionStarted is emitted after a login, registration or verified hydrate.
type SessionStarted struct {
	sharedDomain.BaseEvent
	Email string `json:"email"`
}

// NewSessionStarted creates a SessionStarted event.
func NewSessionStarted(user User) *SessionStarted {
	return &SessionStarted{
		BaseEvent: sharedDomain.NewBaseEvent(user.AggregateID(), AggregateType, RoutingKeySessionStarted),
		Email:     user.Email,
	}
}

// SessionEnded is emitted when the token is cleared.
type SessionEnded struct {
	sharedDomain.BaseEvent
	Reason string `json:"reason"`
}

// NewSessionEnded creates a SessionEnded event.
func NewSessionEnded(aggregateID, reason string) *SessionEnded {
	return &SessionEnded{
		BaseEvent: sharedDomain.NewBaseEvent(aggregateID, AggregateType, RoutingKeySessionEnded),
		Reason:    reason,
	}
}

package domain

import (
	"strconv"

	sharedDomain "github.com/huynnh/calsync/internal/shared/domain"
)

// Status values.
const (
	StatusUnread = "unread"
	StatusRead   = "read"
)

// Notification is a due-soon reminder for a task or event. The backend only
// lists active unread notifications.
type Notification struct {
	ID       int64  `json:"notification_id"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
	Status   string `json:"status"`
}

// Unread reports whether the notification still counts toward the badge.
// The list endpoint reports "success" for entries it returns, which are all
// unread.
func (n Notification) Unread() bool {
	return n.Status != StatusRead
}

// Key returns the id as a string.
func (n Notification) Key() string {
	return strconv.FormatInt(n.ID, 10)
}

const (
	AggregateType = "Notification"

	RoutingKeyNotificationReceived = "notification.received"
)

// NotificationReceived is emitted once for each newly seen unread notification.
type NotificationReceived struct {
	sharedDomain.BaseEvent
	Title    string `json:"title"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

// NewNotificationReceived creates a NotificationReceived event.
func NewNotificationReceived(n Notification) *NotificationReceived {
	return &NotificationReceived{
		BaseEvent: sharedDomain.NewBaseEvent(n.Key(), AggregateType, RoutingKeyNotificationReceived),
		Title:     n.Title,
		Message:   n.Message,
		Priority:  n.Priority,
	}
}

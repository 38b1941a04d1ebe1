package domain

import (
	"strconv"
	"strings"
)

// User is the signed-in account as reported by the backend.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// DisplayName returns the full name, or the email when no name is set.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// AggregateID returns the id in the form used by domain events.
func (u User) AggregateID() string {
	if u.ID == 0 {
		return u.Email
	}
	return strconv.FormatInt(u.ID, 10)
}

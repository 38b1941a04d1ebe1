package domain

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrPasswordRequired = errors.New("password is required")
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail lowercases and trims an address and checks its shape.
func NormalizeEmail(value string) (string, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if !emailRegex.MatchString(value) {
		return "", ErrInvalidEmail
	}
	return value, nil
}

// Credentials are what the user signs in with.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate normalizes the email in place.
func (c *Credentials) Validate() error {
	email, err := NormalizeEmail(c.Email)
	if err != nil {
		return err
	}
	if c.Password == "" {
		return ErrPasswordRequired
	}
	c.Email = email
	return nil
}

// Registration is a new account request.
type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// Validate normalizes the email in place.
func (r *Registration) Validate() error {
	creds := Credentials{Email: r.Email, Password: r.Password}
	if err := creds.Validate(); err != nil {
		return err
	}
	r.Email = creds.Email
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	return nil
}

package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized is returned when the backend rejects the session token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUnavailable is returned while the circuit breaker for a scope is open.
	ErrUnavailable = errors.New("backend unavailable")
)

// HTTPError is a non-2xx response from the backend.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("backend error %d: %s", e.StatusCode, e.Message)
}

// UserMessage returns the backend's own explanation.
func (e *HTTPError) UserMessage() string {
	return e.Message
}

// Unwrap lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *HTTPError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func newHTTPError(status int, body []byte) *HTTPError {
	msg := ""
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		switch {
		case parsed.Error != "":
			msg = parsed.Error
		case parsed.Message != "":
			msg = parsed.Message
		case parsed.Detail != "":
			msg = parsed.Detail
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" || strings.HasPrefix(msg, "<") {
		msg = http.StatusText(status)
	}
	return &HTTPError{StatusCode: status, Message: msg}
}

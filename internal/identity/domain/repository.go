package domain

import (
	"context"
	"errors"
)

var (
	// ErrNoToken is returned by a TokenStore holding no token.
	ErrNoToken = errors.New("no stored session token")
	// ErrTokenRejected is returned when the backend refuses the token.
	ErrTokenRejected = errors.New("session token rejected")
)

// TokenStore persists the session token between runs.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

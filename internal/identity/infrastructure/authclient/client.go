package authclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/huynnh/calsync/internal/calendar/infrastructure/backend"
	identityApp "github.com/huynnh/calsync/internal/identity/application"
	"github.com/huynnh/calsync/internal/identity/domain"
)

const (
	loginPath        = "/auth/login/"
	registerPath     = "/auth/register/"
	verifyPath       = "/auth/verify-token/"
	resetPath        = "/auth/reset-password/"
	resetConfirmPath = "/auth/reset-password-confirm/"
)

// Client talks to the backend auth endpoints.
type Client struct {
	api *backend.Client
}

// NewClient creates an auth client.
func NewClient(api *backend.Client) *Client {
	return &Client{api: api}
}

var _ identityApp.AuthAPI = (*Client)(nil)

func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*identityApp.AuthResult, error) {
	var res identityApp.AuthResult
	if err := c.api.Post(ctx, backend.ScopeAuth, loginPath, creds, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Register(ctx context.Context, reg domain.Registration) (*identityApp.AuthResult, error) {
	var res identityApp.AuthResult
	if err := c.api.Post(ctx, backend.ScopeAuth, registerPath, reg, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Verify returns the user the current token belongs to.
func (c *Client) Verify(ctx context.Context) (*domain.User, error) {
	var res struct {
		User domain.User `json:"user"`
	}
	if err := c.api.Get(ctx, backend.ScopeAuth, verifyPath, &res); err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			return nil, fmt.Errorf("%w: %w", domain.ErrTokenRejected, err)
		}
		return nil, err
	}
	return &res.User, nil
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.api.Post(ctx, backend.ScopeAuth, resetPath, body, nil)
}

func (c *Client) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	body := map[string]string{"token": token, "password": password}
	return c.api.Post(ctx, backend.ScopeAuth, resetConfirmPath, body, nil)
}

package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/huynnh/calsync/internal/identity/domain"
	sharedApplication "github.com/huynnh/calsync/internal/shared/application"
	sharedDomain "github.com/huynnh/calsync/internal/shared/domain"
)

// Fallback messages when the backend gives no reason.
const (
	MsgLoginFailed         = "Login failed"
	MsgRegistrationFailed  = "Registration failed"
	MsgPasswordResetFailed = "Password reset failed"
	MsgResetConfirmFailed  = "Password reset confirmation failed"
)

// ErrNotAuthenticated is returned when no session token is available.
var ErrNotAuthenticated = errors.New("not signed in")

// AuthResult is the backend's answer to a login or registration.
type AuthResult struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// AuthAPI is the backend's auth endpoints.
type AuthAPI interface {
	Login(ctx context.Context, creds domain.Credentials) (*AuthResult, error)
	Register(ctx context.Context, reg domain.Registration) (*AuthResult, error)
	Verify(ctx context.Context) (*domain.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, password string) error
}

// EventPublisher publishes session lifecycle events.
type EventPublisher interface {
	PublishDomainEvent(ctx context.Context, event sharedDomain.DomainEvent) error
}

// AuthError carries the message shown to the user for a failed auth call.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

// UserMessage returns the message shown to the user.
func (e *AuthError) UserMessage() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }

type userMessager interface {
	UserMessage() string
}

func authError(err error, fallback string) *AuthError {
	msg := fallback
	var um userMessager
	if errors.As(err, &um) && um.UserMessage() != "" {
		msg = um.UserMessage()
	}
	return &AuthError{Message: msg, Err: err}
}

// Session is the signed-in state shared by every backend request. It is
// safe for concurrent use; Token is read on every request.
type Session struct {
	auth      AuthAPI
	store     domain.TokenStore
	publisher EventPublisher
	logger    *slog.Logger

	mu    sync.RWMutex
	token string
	user  *domain.User
}

// NewSession creates an empty session. Call Hydrate to restore a stored one.
func NewSession(store domain.TokenStore, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{store: store, logger: logger}
}

// SetAuth attaches the auth endpoints. The backend client reads the session,
// so the two are wired after construction.
func (s *Session) SetAuth(auth AuthAPI) {
	s.auth = auth
}

// WithPublisher sets the event publisher.
func (s *Session) WithPublisher(publisher EventPublisher) *Session {
	s.publisher = publisher
	return s
}

// Token returns the current token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the signed-in user, if verified.
func (s *Session) User() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Hydrate loads the stored token and verifies it with the backend. Only a
// rejected token signs the session out. Other failures keep the token so
// the session survives a backend outage.
func (s *Session) Hydrate(ctx context.Context) (*domain.User, error) {
	if s.store == nil {
		return nil, ErrNotAuthenticated
	}
	token, err := s.store.Load(ctx)
	if errors.Is(err, domain.ErrNoToken) || (err == nil && token == "") {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if s.auth == nil {
		return nil, errors.New("auth api not configured")
	}
	user, err := s.auth.Verify(ctx)
	if errors.Is(err, domain.ErrTokenRejected) {
		s.logger.Info("stored session rejected", "error", err)
		if s.Authenticated() {
			_ = s.end(ctx, domain.EndReasonExpired)
		}
		return nil, err
	}
	if err != nil {
		s.logger.Warn("could not verify stored session, keeping token", "error", err)
		return nil, err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	s.logger.Debug("session restored", "user", user.Email)
	s.publish(ctx, domain.NewSessionStarted(*user))
	return user, nil
}

// Login signs in and persists the token.
func (s *Session) Login(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	res, err := s.auth.Login(ctx, creds)
	if err != nil {
		return nil, authError(err, MsgLoginFailed)
	}
	return s.start(ctx, res)
}

// Register creates an account and signs in.
func (s *Session) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	res, err := s.auth.Register(ctx, reg)
	if err != nil {
		return nil, authError(err, MsgRegistrationFailed)
	}
	return s.start(ctx, res)
}

// RequestPasswordReset asks the backend to email a reset link.
func (s *Session) RequestPasswordReset(ctx context.Context, email string) error {
	normalized, err := domain.NormalizeEmail(email)
	if err != nil {
		return err
	}
	if err := s.auth.RequestPasswordReset(ctx, normalized); err != nil {
		return authError(err, MsgPasswordResetFailed)
	}
	return nil
}

// ConfirmPasswordReset sets a new password using the emailed token.
func (s *Session) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	if password == "" {
		return domain.ErrPasswordRequired
	}
	if err := s.auth.ConfirmPasswordReset(ctx, token, password); err != nil {
		return authError(err, MsgResetConfirmFailed)
	}
	return nil
}

func (s *Session) start(ctx context.Context, res *AuthResult) (*domain.User, error) {
	if res == nil || res.Token == "" {
		return nil, &AuthError{Message: MsgLoginFailed, Err: errors.New("backend returned no token")}
	}
	if s.store != nil {
		if err := s.store.Save(ctx, res.Token); err != nil {
			return nil, err
		}
	}
	user := res.User

	s.mu.Lock()
	s.token = res.Token
	s.user = &user
	s.mu.Unlock()

	s.logger.Info("signed in", "user", user.Email)
	s.publish(ctx, domain.NewSessionStarted(user))
	return &user, nil
}

// Logout clears the token locally and in the store.
func (s *Session) Logout(ctx context.Context) error {
	return s.end(ctx, domain.EndReasonLogout)
}

// Invalidate is called when the backend rejects the token. It signs the
// session out everywhere.
func (s *Session) Invalidate() {
	if !s.Authenticated() {
		return
	}
	s.logger.Warn("session invalidated by backend")
	_ = s.end(context.Background(), domain.EndReasonInvalidated)
}

func (s *Session) end(ctx context.Context, reason string) error {
	s.mu.Lock()
	aggregateID := ""
	if s.user != nil {
		aggregateID = s.user.AggregateID()
	}
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	var err error
	if s.store != nil {
		if err = s.store.Clear(ctx); err != nil {
			s.logger.Warn("failed to clear stored token", "error", err)
		}
	}
	s.publish(ctx, domain.NewSessionEnded(aggregateID, reason))
	return err
}

func (s *Session) publish(ctx context.Context, events ...sharedDomain.DomainEvent) {
	if s.publisher == nil {
		return
	}
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx))
	for _, event := range events {
		if err := s.publisher.PublishDomainEvent(ctx, event); err != nil {
			s.logger.Warn("failed to publish event", "routing_key", event.RoutingKey(), "error", err)
		}
	}
}

package observability

import (
	"context"

	"github.com/google/uuid"
)

// Standard attribute keys used in logs and metrics.
const (
	CorrelationIDKey = "correlation_id"
	OperationKey     = "operation"
	ProviderKey      = "provider"
	DurationKey      = "duration_ms"
	ErrorKey         = "error"
)

type scopeKey struct{}

// scope is the request-scoped log context. Each With* call copies it.
type scope struct {
	correlationID string
	operation     string
	provider      string
}

func scopeFrom(ctx context.Context) scope {
	if ctx == nil {
		return scope{}
	}
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

func withScope(ctx context.Context, update func(*scope)) context.Context {
	s := scopeFrom(ctx)
	update(&s)
	return context.WithValue(ctx, scopeKey{}, s)
}

// WithCorrelationID tags ctx with a correlation id. An empty id gets a new UUID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.New().String()
	}
	return withScope(ctx, func(s *scope) { s.correlationID = id })
}

// CorrelationIDFromContext returns the correlation id, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	return scopeFrom(ctx).correlationID
}

// WithOperation names the operation running under ctx, e.g. "provider.sync".
func WithOperation(ctx context.Context, operation string) context.Context {
	return withScope(ctx, func(s *scope) { s.operation = operation })
}

// OperationFromContext returns the operation name, or "".
func OperationFromContext(ctx context.Context) string {
	return scopeFrom(ctx).operation
}

// WithProvider tags ctx with the calendar provider being worked on.
func WithProvider(ctx context.Context, provider string) context.Context {
	return withScope(ctx, func(s *scope) { s.provider = provider })
}

// ProviderFromContext returns the provider tag, or "".
func ProviderFromContext(ctx context.Context) string {
	return scopeFrom(ctx).provider
}

package observability

import (
	"context"
	"log/slog"
	"time"
)

// Timer measures one step of a longer operation.
type Timer struct {
	operation string
	start     time.Time
	logger    *slog.Logger
	metrics   Metrics
	name      string
	tags      []Tag
}

// StartTimer creates a new timer for the given operation.
func StartTimer(operation string) *Timer {
	return &Timer{
		operation: operation,
		start:     time.Now(),
	}
}

// WithLogger logs the outcome at debug level on stop.
func (t *Timer) WithLogger(logger *slog.Logger) *Timer {
	t.logger = logger
	return t
}

// WithMetrics records the duration under the given metric name.
func (t *Timer) WithMetrics(metrics Metrics, name string, tags ...Tag) *Timer {
	t.metrics = metrics
	t.name = name
	t.tags = append(t.tags, tags...)
	return t
}

// Stop records the elapsed time. A failed step is tagged outcome=failed, and
// log lines carry the scope of ctx.
func (t *Timer) Stop(ctx context.Context, err error) time.Duration {
	duration := time.Since(t.start)

	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	if t.logger != nil {
		attrs := []any{"step", t.operation, DurationKey, duration.Milliseconds()}
		if err != nil {
			attrs = append(attrs, ErrorKey, err.Error())
		}
		t.logger.DebugContext(ctx, "step "+outcome, attrs...)
	}
	if t.metrics != nil && t.name != "" {
		t.metrics.Timing(t.name, duration, append(t.tags, T("outcome", outcome))...)
	}

	return duration
}

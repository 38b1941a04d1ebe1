package application

import (
	"context"
	"testing"

	"github.com/huynnh/calsync/internal/shared/domain"
	"github.com/huynnh/calsync/pkg/observability"
	"github.com/stretchr/testify/assert"
)

func TestNewEventMetadata(t *testing.T) {
	t.Run("uses correlation ID from context", func(t *testing.T) {
		ctx := observability.WithCorrelationID(context.Background(), "corr-123")

		metadata := NewEventMetadata(ctx)

		assert.Equal(t, "corr-123", metadata.CorrelationID)
		assert.NotEmpty(t, metadata.CausationID)
	})

	t.Run("generates correlation ID when context has none", func(t *testing.T) {
		metadata1 := NewEventMetadata(context.Background())
		metadata2 := NewEventMetadata(context.Background())

		assert.NotEmpty(t, metadata1.CorrelationID)
		assert.NotEqual(t, metadata1.CorrelationID, metadata2.CorrelationID)
		assert.NotEqual(t, metadata1.CausationID, metadata2.CausationID)
	})
}

type testEvent struct {
	domain.BaseEvent
}

func TestApplyEventMetadata(t *testing.T) {
	first := &testEvent{BaseEvent: domain.NewBaseEvent("google", "test", "test.one")}
	second := &testEvent{BaseEvent: domain.NewBaseEvent("outlook", "test", "test.two")}
	metadata := domain.EventMetadata{CorrelationID: "corr", CausationID: "cause"}

	ApplyEventMetadata([]domain.DomainEvent{first, second}, metadata)

	assert.Equal(t, metadata, first.Metadata())
	assert.Equal(t, metadata, second.Metadata())
}

func TestApplyEventMetadata_SkipsValueEvents(t *testing.T) {
	event := testEvent{BaseEvent: domain.NewBaseEvent("google", "test", "test.one")}

	ApplyEventMetadata([]domain.DomainEvent{event}, domain.EventMetadata{CorrelationID: "corr"})

	assert.Empty(t, event.Metadata().CorrelationID)
}

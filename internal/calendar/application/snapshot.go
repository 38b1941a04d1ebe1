package application

import (
	"context"
	"errors"
	"time"

	"github.com/huynnh/calsync/internal/calendar/domain"
)

// ErrNoSnapshot is returned when no aggregation has been cached yet.
var ErrNoSnapshot = errors.New("no cached snapshot")

// Snapshot is the last successfully aggregated batch.
type Snapshot struct {
	Items     []domain.CalendarItem `json:"items"`
	FetchedAt time.Time             `json:"fetched_at"`
}

// SnapshotCache keeps the last aggregated batch for offline viewing.
type SnapshotCache interface {
	Save(ctx context.Context, snapshot Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
}

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/huynnh/calsync/internal/calendar/application"
	"github.com/huynnh/calsync/internal/calendar/domain"
)

// MemoryCache keeps the snapshot in process. Entries older than ttl read as
// missing.
type MemoryCache struct {
	mu       sync.RWMutex
	snapshot *application.Snapshot
	savedAt  time.Time
	ttl      time.Duration
	now      func() time.Time
}

var _ application.SnapshotCache = (*MemoryCache)(nil)

// NewMemoryCache creates an in-memory snapshot cache. A zero ttl never
// expires.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, now: time.Now}
}

func (c *MemoryCache) Save(ctx context.Context, snapshot application.Snapshot) error {
	snapshot.Items = append([]domain.CalendarItem(nil), snapshot.Items...)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = &snapshot
	c.savedAt = c.now()
	return nil
}

func (c *MemoryCache) Load(ctx context.Context) (*application.Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil {
		return nil, application.ErrNoSnapshot
	}
	if c.ttl > 0 && c.now().Sub(c.savedAt) > c.ttl {
		return nil, application.ErrNoSnapshot
	}
	out := *c.snapshot
	out.Items = append([]domain.CalendarItem(nil), c.snapshot.Items...)
	return &out, nil
}

func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = nil
	return nil
}

package domain

import (
	"context"
	"time"
)

// SyncState is the persisted outcome of a provider's recent sync cycles. It
// outlives the process, so a fresh CLI run can still report when a provider
// last synced.
type SyncState struct {
	provider     Provider
	lastSyncedAt time.Time
	lastItems    int
	syncErrors   int
	lastError    string
	updatedAt    time.Time
}

// NewSyncState creates an empty sync state for a provider.
func NewSyncState(provider Provider) *SyncState {
	return &SyncState{provider: provider}
}

func (s *SyncState) Provider() Provider      { return s.provider }
func (s *SyncState) LastSyncedAt() time.Time { return s.lastSyncedAt }
func (s *SyncState) LastItems() int          { return s.lastItems }
func (s *SyncState) SyncErrors() int         { return s.syncErrors }
func (s *SyncState) LastError() string       { return s.lastError }
func (s *SyncState) UpdatedAt() time.Time    { return s.updatedAt }

// HasSynced returns true if at least one successful sync has occurred.
func (s *SyncState) HasSynced() bool {
	return !s.lastSyncedAt.IsZero()
}

// MarkSyncSuccess records a completed cycle and resets the error streak.
func (s *SyncState) MarkSyncSuccess(at time.Time, items int) {
	s.lastSyncedAt = at
	s.lastItems = items
	s.syncErrors = 0
	s.lastError = ""
	s.updatedAt = at
}

// MarkSyncFailure records an aborted cycle.
func (s *SyncState) MarkSyncFailure(at time.Time, err string) {
	s.syncErrors++
	s.lastError = err
	s.updatedAt = at
}

// RehydrateSyncState recreates a sync state from persisted data.
func RehydrateSyncState(provider Provider, lastSyncedAt time.Time, lastItems, syncErrors int, lastError string, updatedAt time.Time) *SyncState {
	return &SyncState{
		provider:     provider,
		lastSyncedAt: lastSyncedAt,
		lastItems:    lastItems,
		syncErrors:   syncErrors,
		lastError:    lastError,
		updatedAt:    updatedAt,
	}
}

// SyncStateRepository persists sync states.
type SyncStateRepository interface {
	Save(ctx context.Context, state *SyncState) error
	// Find returns nil, nil when the provider has no state yet.
	Find(ctx context.Context, provider Provider) (*SyncState, error)
	FindAll(ctx context.Context) ([]*SyncState, error)
	Delete(ctx context.Context, provider Provider) error
	DeleteAll(ctx context.Context) error
}

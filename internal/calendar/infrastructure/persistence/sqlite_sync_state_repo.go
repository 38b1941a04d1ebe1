package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/huynnh/calsync/internal/calendar/domain"
)

// SQLiteSyncStateRepository implements SyncStateRepository using SQLite.
type SQLiteSyncStateRepository struct {
	db *sql.DB
}

var _ domain.SyncStateRepository = (*SQLiteSyncStateRepository)(nil)

// NewSQLiteSyncStateRepository creates a new SQLite sync state repository.
func NewSQLiteSyncStateRepository(db *sql.DB) *SQLiteSyncStateRepository {
	return &SQLiteSyncStateRepository{db: db}
}

const selectSyncState = `
	SELECT provider, last_synced_at, last_items, sync_errors, last_error, updated_at
	FROM calendar_sync_state
`

// Save persists a sync state (create or update).
func (r *SQLiteSyncStateRepository) Save(ctx context.Context, state *domain.SyncState) error {
	query := `
		INSERT INTO calendar_sync_state (
			provider, last_synced_at, last_items, sync_errors, last_error, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (provider) DO UPDATE SET
			last_synced_at = excluded.last_synced_at,
			last_items = excluded.last_items,
			sync_errors = excluded.sync_errors,
			last_error = excluded.last_error,
			updated_at = excluded.updated_at
	`

	var lastSyncedAt, lastError *string
	if state.HasSynced() {
		t := state.LastSyncedAt().UTC().Format(time.RFC3339)
		lastSyncedAt = &t
	}
	if s := state.LastError(); s != "" {
		lastError = &s
	}
	updatedAt := state.UpdatedAt()
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		state.Provider().String(),
		lastSyncedAt,
		state.LastItems(),
		state.SyncErrors(),
		lastError,
		updatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// Find finds the sync state of a provider.
func (r *SQLiteSyncStateRepository) Find(ctx context.Context, provider domain.Provider) (*domain.SyncState, error) {
	row := r.db.QueryRowContext(ctx, selectSyncState+` WHERE provider = ?`, provider.String())
	state, err := scanSyncState(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return state, err
}

// FindAll returns every stored sync state ordered by provider.
func (r *SQLiteSyncStateRepository) FindAll(ctx context.Context) ([]*domain.SyncState, error) {
	rows, err := r.db.QueryContext(ctx, selectSyncState+` ORDER BY provider`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []*domain.SyncState
	for rows.Next() {
		state, err := scanSyncState(rows)
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}
	return states, rows.Err()
}

// Delete removes a provider's sync state.
func (r *SQLiteSyncStateRepository) Delete(ctx context.Context, provider domain.Provider) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM calendar_sync_state WHERE provider = ?`, provider.String())
	return err
}

// DeleteAll removes every sync state.
func (r *SQLiteSyncStateRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM calendar_sync_state`)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSyncState(row scanner) (*domain.SyncState, error) {
	var (
		provider     string
		lastSyncedAt sql.NullString
		lastItems    int
		syncErrors   int
		lastError    sql.NullString
		updatedAtStr string
	)
	if err := row.Scan(&provider, &lastSyncedAt, &lastItems, &syncErrors, &lastError, &updatedAtStr); err != nil {
		return nil, err
	}

	updatedAt, err := time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, err
	}
	var synced time.Time
	if lastSyncedAt.Valid {
		synced, err = time.Parse(time.RFC3339, lastSyncedAt.String)
		if err != nil {
			return nil, err
		}
	}

	return domain.RehydrateSyncState(
		domain.Provider(provider),
		synced,
		lastItems,
		syncErrors,
		lastError.String,
		updatedAt,
	), nil
}

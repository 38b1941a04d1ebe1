package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/huynnh/calsync/internal/identity/domain"
	"github.com/huynnh/calsync/internal/shared/infrastructure/crypto"
	"github.com/huynnh/calsync/internal/shared/infrastructure/database"
)

const tokenKey = "auth_token"

// SQLiteTokenStore keeps the session token in the session_state table. The
// token is sealed when a sealer is configured.
type SQLiteTokenStore struct {
	db     *sql.DB
	sealer crypto.Sealer
}

var _ domain.TokenStore = (*SQLiteTokenStore)(nil)

// NewSQLiteTokenStore creates a token store. sealer may be nil.
func NewSQLiteTokenStore(db *sql.DB, sealer crypto.Sealer) *SQLiteTokenStore {
	return &SQLiteTokenStore{db: db, sealer: sealer}
}

// Load returns the stored token or domain.ErrNoToken.
func (s *SQLiteTokenStore) Load(ctx context.Context) (string, error) {
	var (
		value     []byte
		encrypted int
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT value, encrypted FROM session_state WHERE key = ?`, tokenKey,
	).Scan(&value, &encrypted)
	if database.IsNoRows(err) {
		return "", domain.ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}

	if encrypted == 1 {
		if s.sealer == nil {
			return "", fmt.Errorf("stored token is encrypted but no encryption key is configured")
		}
		plain, err := s.sealer.Open(value)
		if err != nil {
			return "", fmt.Errorf("open token: %w", err)
		}
		value = plain
	}
	return string(value), nil
}

// Save replaces the stored token.
func (s *SQLiteTokenStore) Save(ctx context.Context, token string) error {
	value := []byte(token)
	encrypted := 0
	if s.sealer != nil {
		sealed, err := s.sealer.Seal(value)
		if err != nil {
			return fmt.Errorf("seal token: %w", err)
		}
		value, encrypted = sealed, 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_state (key, value, encrypted, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			encrypted = excluded.encrypted,
			updated_at = excluded.updated_at`,
		tokenKey, value, encrypted, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Clear removes the stored token.
func (s *SQLiteTokenStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_state WHERE key = ?`, tokenKey); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// MemoryTokenStore keeps the token for the life of the process.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

var _ domain.TokenStore = (*MemoryTokenStore)(nil)

// NewMemoryTokenStore creates a store, optionally seeded with a token.
func NewMemoryTokenStore(token string) *MemoryTokenStore {
	return &MemoryTokenStore{token: token}
}

func (m *MemoryTokenStore) Load(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return "", domain.ErrNoToken
	}
	return m.token, nil
}

func (m *MemoryTokenStore) Save(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryTokenStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

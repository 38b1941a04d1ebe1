package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"strings"
	"time"
)

//go:embed sqlite/*.sql
var sqliteFS embed.FS

// RunSQLite applies every embedded .up.sql file not yet recorded in
// schema_migrations, in file name order. It returns the names applied.
func RunSQLite(ctx context.Context, db *sql.DB) ([]string, error) {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	entries, err := sqliteFS.ReadDir("sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	var applied []string
	for _, file := range files {
		var exists int
		err := db.QueryRowContext(ctx, `SELECT COUNT(1) FROM schema_migrations WHERE name = ?`, file).Scan(&exists)
		if err != nil {
			return applied, fmt.Errorf("failed to check migration %s: %w", file, err)
		}
		if exists > 0 {
			continue
		}

		stmt, err := sqliteFS.ReadFile("sqlite/" + file)
		if err != nil {
			return applied, fmt.Errorf("failed to read migration %s: %w", file, err)
		}
		if _, err := db.ExecContext(ctx, string(stmt)); err != nil {
			return applied, fmt.Errorf("failed to execute migration %s: %w", file, err)
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)`,
			file, time.Now().UTC().Format(time.RFC3339),
		); err != nil {
			return applied, fmt.Errorf("failed to record migration %s: %w", file, err)
		}
		applied = append(applied, file)
	}
	return applied, nil
}

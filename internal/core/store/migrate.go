package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS store_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		claim TEXT NOT NULL,
		score INTEGER NOT NULL,
		verdict TEXT NOT NULL,
		analysis TEXT NOT NULL,
		sources_json TEXT NOT NULL,
		provider TEXT NOT NULL DEFAULT '',
		model TEXT NOT NULL DEFAULT '',
		cached INTEGER NOT NULL DEFAULT 0,
		analyzed_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0
	);`,
	`CREATE INDEX IF NOT EXISTS idx_analyses_analyzed_at ON analyses(analyzed_at);`,
	`CREATE TABLE IF NOT EXISTS analysis_cache (
		claim_key TEXT NOT NULL,
		prompt_slug TEXT NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		result_json TEXT NOT NULL,
		answered_by TEXT NOT NULL DEFAULT '',
		answered_model TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL,
		UNIQUE(claim_key, prompt_slug, provider, model)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_analysis_cache_expires ON analysis_cache(expires_at);`,
}

// schemaVersion is recorded in store_meta after a successful migration.
const schemaVersion = "1"

// Migrate ensures the required database tables exist.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	for _, stmt := range schemaStatements {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store migration failed: %w", err)
		}
	}

	if err := s.ensureColumn(ctx, "analyses", "prompt_slug", "TEXT NOT NULL DEFAULT ''"); err != nil {
		return err
	}

	if _, err := s.DB.ExecContext(ctx, `
		INSERT INTO store_meta (key, value) VALUES ('schema_version', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return nil
}

func (s *Store) ensureColumn(ctx context.Context, table, column, columnDef string) error {
	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("inspect %s schema: %w", table, err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	for rows.Next() {
		var (
			cid     int
			name    string
			colType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("inspect %s columns: %w", table, err)
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("inspect %s columns: %w", table, err)
	}

	if _, err := s.DB.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, columnDef)); err != nil {
		return fmt.Errorf("add %s.%s column: %w", table, column, err)
	}

	return nil
}

// SchemaVersion returns the schema version recorded by Migrate, or "" when
// the store has not been migrated.
func (s *Store) SchemaVersion(ctx context.Context) (string, error) {
	if s == nil || s.DB == nil {
		return "", errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var version string
	err := s.DB.QueryRowContext(ctx, `SELECT value FROM store_meta WHERE key = 'schema_version'`).Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

package prefs

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS prefs (
	scope TEXT NOT NULL,
	key   TEXT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (scope, key)
)`

// SQLiteStore keeps entries as rows of a local SQLite database.
type SQLiteStore struct {
	db    *sql.DB
	scope string
}

func OpenSQLite(ctx context.Context, path, scope string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("prefs: sqlite path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("prefs: create dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("prefs: open sqlite: %w", err)
	}
	// a single connection keeps :memory: databases shared and serialises writers
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prefs: create schema: %w", err)
	}
	return &SQLiteStore{db: db, scope: scope}, nil
}

func (s *SQLiteStore) Snapshot(ctx context.Context) (Values, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM prefs WHERE scope = ?`, s.scope)
	if err != nil {
		return nil, fmt.Errorf("prefs: query: %w", err)
	}
	defer rows.Close()

	v := Values{}
	for rows.Next() {
		var k, val string
		if err := rows.Scan(&k, &val); err != nil {
			return nil, fmt.Errorf("prefs: scan: %w", err)
		}
		v[k] = val
	}
	return v, rows.Err()
}

func (s *SQLiteStore) Commit(ctx context.Context, e *Edit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("prefs: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if e.clear {
		if _, err := tx.ExecContext(ctx, `DELETE FROM prefs WHERE scope = ?`, s.scope); err != nil {
			return fmt.Errorf("prefs: clear: %w", err)
		}
	}
	for k, val := range e.puts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO prefs (scope, key, value) VALUES (?, ?, ?)
			ON CONFLICT (scope, key) DO UPDATE SET value = excluded.value
		`, s.scope, k, val); err != nil {
			return fmt.Errorf("prefs: put %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("prefs: commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// Package sqlite opens the host content database used as the default
// comment store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS posts (
	id          INTEGER PRIMARY KEY,
	post_type   TEXT NOT NULL,
	post_status TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS comments (
	comment_id   INTEGER PRIMARY KEY,
	post_id      INTEGER NOT NULL REFERENCES posts(id),
	comment_type TEXT NOT NULL DEFAULT 'comment',
	author       TEXT NOT NULL DEFAULT '',
	author_email TEXT NOT NULL DEFAULT '',
	content      TEXT NOT NULL,
	status       TEXT NOT NULL,
	created_at   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_comments_post ON comments(post_id);
CREATE INDEX IF NOT EXISTS idx_comments_status ON comments(status);
CREATE INDEX IF NOT EXISTS idx_comments_created ON comments(created_at DESC);
`

// Open opens the database at path and creates the schema if missing.
// ":memory:" opens a private in-memory database.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	connStr := path
	if path == ":memory:" {
		// Shared cache so every pooled connection sees the same database.
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if path != ":memory:" {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}

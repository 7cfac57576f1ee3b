// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Database types accepted by Open
const (
	TypePostgres = "postgres"
	TypeSQLite   = "sqlite"
)

// Open connects to the database and creates the schema.
// SQLite is limited to one connection so writers never see SQLITE_BUSY.
func Open(databaseType, databaseURL string) (*sql.DB, error) {
	var driver string
	switch databaseType {
	case TypePostgres:
		driver = "postgres"
	case TypeSQLite:
		driver = "sqlite"
	default:
		return nil, fmt.Errorf("unsupported database type %q", databaseType)
	}

	conn, err := sql.Open(driver, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if databaseType == TypeSQLite {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := CreateSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Timestamps are stored as Unix nanoseconds so that both drivers compare
// them the same way.
const schema = `
-- Polls
CREATE TABLE IF NOT EXISTS poll (
    id TEXT PRIMARY KEY,
    scope TEXT NOT NULL,
    channel_id TEXT NOT NULL DEFAULT '',
    creator_id TEXT NOT NULL DEFAULT '',
    question TEXT NOT NULL,
    method TEXT NOT NULL CHECK (method IN ('plurality', 'approval', 'star', 'ranked')),
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'ended')),
    auth_tags TEXT NOT NULL DEFAULT '',
    created_at BIGINT NOT NULL,
    deadline BIGINT,
    ended_at BIGINT
);

CREATE INDEX IF NOT EXISTS idx_poll_scope_status ON poll(scope, status);
CREATE INDEX IF NOT EXISTS idx_poll_status_deadline ON poll(status, deadline);

-- Options
CREATE TABLE IF NOT EXISTS poll_option (
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    id TEXT NOT NULL,
    text TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (poll_id, id)
);

-- Ballots: one live rating per (poll, voter, option)
CREATE TABLE IF NOT EXISTS ballot (
    poll_id TEXT NOT NULL,
    voter_id TEXT NOT NULL,
    option_id TEXT NOT NULL,
    rating INTEGER NOT NULL CHECK (rating >= 0),
    updated_at BIGINT NOT NULL,
    PRIMARY KEY (poll_id, voter_id, option_id),
    FOREIGN KEY (poll_id, option_id) REFERENCES poll_option(poll_id, id) ON DELETE CASCADE
);
`

// Package index materializes the merged catalog into SQLite for search, with
// optional FTS5 full-text matching. The read pipeline never reads from it.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS items (
	type     TEXT NOT NULL,
	slug     TEXT NOT NULL,
	title    TEXT NOT NULL DEFAULT '',
	note     TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	parent   TEXT NOT NULL DEFAULT '',
	tags     TEXT NOT NULL DEFAULT '[]',
	created  INTEGER NOT NULL DEFAULT 0,
	has_page INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (type, slug)
);

CREATE TABLE IF NOT EXISTS types (
	type       TEXT PRIMARY KEY,
	checksum   TEXT NOT NULL DEFAULT '',
	indexed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_items_category ON items(type, category);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE over the items table.
	return nil
}

func ftsInsert(_ *sql.Tx, _ ItemRow) error { return nil }

func ftsDeleteType(_ *sql.Tx, _ string) error { return nil }

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT type, slug, title, substr(note, 1, 200), has_page
		FROM items
		WHERE title LIKE ? OR note LIKE ? OR category LIKE ? OR tags LIKE ?
		ORDER BY has_page DESC, created DESC, title
		LIMIT ?
	`, like, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Type, &r.Slug, &r.Title, &r.Snippet, &r.HasPage); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

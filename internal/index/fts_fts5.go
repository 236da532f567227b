//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS items_fts USING fts5(
			type UNINDEXED,
			slug UNINDEXED,
			title,
			note,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsInsert(tx *sql.Tx, r ItemRow) error {
	_, err := tx.Exec(`INSERT INTO items_fts (type, slug, title, note, tags) VALUES (?, ?, ?, ?, ?)`,
		r.Type, r.Slug, r.Title, r.Note, strings.Join(append([]string{r.Category}, r.Tags...), " "))
	if err != nil {
		return fmt.Errorf("index: insert fts: %w", err)
	}
	return nil
}

func ftsDeleteType(tx *sql.Tx, typ string) error {
	_, err := tx.Exec(`DELETE FROM items_fts WHERE type = ?`, typ)
	return err
}

// Search performs an FTS5 full-text search and returns matching items with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT f.type,
		       f.slug,
		       f.title,
		       snippet(items_fts, 3, '<b>', '</b>', '...', 32),
		       i.has_page
		FROM items_fts f
		JOIN items i ON i.type = f.type AND i.slug = f.slug
		WHERE items_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, ftsQuery(query), limit)
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

// ftsQuery quotes every term so user input cannot break the MATCH syntax.
// The last term is a prefix match.
func ftsQuery(q string) string {
	terms := strings.Fields(q)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	if n := len(terms); n > 0 {
		terms[n-1] += "*"
	}
	return strings.Join(terms, " ")
}

package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/starford/things/internal/models"
)

// ItemRow represents a row in the items table.
type ItemRow struct {
	Type     string
	Slug     string
	Title    string
	Note     string
	Category string
	Parent   string
	Tags     []string
	Created  int64
	HasPage  bool
}

// RowFromItem converts a merged item of typ into a row.
func RowFromItem(typ string, it models.ContentItem) ItemRow {
	tags := it.Tags
	if tags == nil {
		tags = []string{}
	}
	return ItemRow{
		Type:     typ,
		Slug:     it.Slug,
		Title:    it.Title,
		Note:     it.Note,
		Category: it.Category,
		Parent:   it.Parent,
		Tags:     tags,
		Created:  it.Created,
		HasPage:  it.HasPage,
	}
}

// SearchResult represents one search hit.
type SearchResult struct {
	Type    string `json:"type"`
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	HasPage bool   `json:"hasPage"`
}

// ChangeKind tells what happened to an item between two index passes.
type ChangeKind string

// Change kinds reported by ReplaceType and the watcher.
const (
	Created ChangeKind = "created"
	Updated ChangeKind = "updated"
	Deleted ChangeKind = "deleted"
	// Inbox reports that an inbox list changed; Slug is empty.
	Inbox ChangeKind = "inbox"
)

// Change is one item-level difference.
type Change struct {
	Kind ChangeKind `json:"kind"`
	Type string     `json:"type"`
	Slug string     `json:"slug,omitempty"`
}

// ReplaceType replaces every row of typ with rows inside one transaction,
// records checksum for the type and returns what changed. Rows with an empty
// slug cannot be addressed and are skipped.
func (db *DB) ReplaceType(typ, checksum string, rows []ItemRow) ([]Change, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	old, err := loadRows(tx, typ)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(`DELETE FROM items WHERE type = ?`, typ); err != nil {
		return nil, fmt.Errorf("index: clear type: %w", err)
	}
	if err := ftsDeleteType(tx, typ); err != nil {
		return nil, fmt.Errorf("index: clear fts: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO items (type, slug, title, note, category, parent, tags, created, has_page)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("index: prepare insert: %w", err)
	}
	defer stmt.Close()

	var changes []Change
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if r.Slug == "" {
			continue
		}
		if _, dup := seen[r.Slug]; dup {
			continue
		}
		seen[r.Slug] = struct{}{}
		r.Type = typ
		tagsJSON, _ := json.Marshal(r.Tags)
		if _, err := stmt.Exec(r.Type, r.Slug, r.Title, r.Note, r.Category, r.Parent, string(tagsJSON), r.Created, r.HasPage); err != nil {
			return nil, fmt.Errorf("index: insert item: %w", err)
		}
		if err := ftsInsert(tx, r); err != nil {
			return nil, err
		}
		prev, existed := old[r.Slug]
		switch {
		case !existed:
			changes = append(changes, Change{Kind: Created, Type: typ, Slug: r.Slug})
		case !sameRow(prev, r):
			changes = append(changes, Change{Kind: Updated, Type: typ, Slug: r.Slug})
		}
	}
	for slug := range old {
		if _, ok := seen[slug]; !ok {
			changes = append(changes, Change{Kind: Deleted, Type: typ, Slug: slug})
		}
	}

	_, err = tx.Exec(`
		INSERT INTO types (type, checksum, indexed_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(type) DO UPDATE SET
			checksum   = excluded.checksum,
			indexed_at = excluded.indexed_at
	`, typ, checksum)
	if err != nil {
		return nil, fmt.Errorf("index: upsert type: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("index: commit: %w", err)
	}
	return changes, nil
}

// DeleteType removes typ and all of its items.
func (db *DB) DeleteType(typ string) ([]Change, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	old, err := loadRows(tx, typ)
	if err != nil {
		return nil, err
	}
	if err := ftsDeleteType(tx, typ); err != nil {
		return nil, fmt.Errorf("index: clear fts: %w", err)
	}
	_, _ = tx.Exec(`DELETE FROM items WHERE type = ?`, typ)
	_, _ = tx.Exec(`DELETE FROM types WHERE type = ?`, typ)
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("index: commit: %w", err)
	}

	changes := make([]Change, 0, len(old))
	for slug := range old {
		changes = append(changes, Change{Kind: Deleted, Type: typ, Slug: slug})
	}
	return changes, nil
}

// TypeChecksum returns the checksum stored for typ, or an empty string if
// the type was never indexed.
func (db *DB) TypeChecksum(typ string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM types WHERE type = ?`, typ).Scan(&cs)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: type checksum: %w", err)
	}
	return cs, nil
}

// Types returns every indexed type, sorted.
func (db *DB) Types() ([]string, error) {
	rows, err := db.conn.Query(`SELECT type FROM types ORDER BY type`)
	if err != nil {
		return nil, fmt.Errorf("index: types: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Count returns the number of indexed items of typ.
func (db *DB) Count(typ string) (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM items WHERE type = ?`, typ).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}

func loadRows(tx *sql.Tx, typ string) (map[string]ItemRow, error) {
	rows, err := tx.Query(`
		SELECT slug, title, note, category, parent, tags, created, has_page
		FROM items WHERE type = ?
	`, typ)
	if err != nil {
		return nil, fmt.Errorf("index: load items: %w", err)
	}
	defer rows.Close()
	out := make(map[string]ItemRow)
	for rows.Next() {
		r := ItemRow{Type: typ}
		var tags string
		if err := rows.Scan(&r.Slug, &r.Title, &r.Note, &r.Category, &r.Parent, &tags, &r.Created, &r.HasPage); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(tags), &r.Tags)
		out[r.Slug] = r
	}
	return out, rows.Err()
}

func sameRow(a, b ItemRow) bool {
	return a.Title == b.Title && a.Note == b.Note && a.Category == b.Category &&
		a.Parent == b.Parent && a.Created == b.Created && a.HasPage == b.HasPage &&
		slices.Equal(a.Tags, b.Tags)
}

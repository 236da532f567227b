package index

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/things/internal/content"
	"github.com/starford/things/internal/storage"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "things-test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// testSite creates content and inbox roots and a resolver over them.
func testSite(t *testing.T) (contentDir, inboxDir string, r *content.Resolver) {
	t.Helper()
	contentDir, inboxDir = t.TempDir(), t.TempDir()
	cs, err := storage.NewFS(contentDir)
	if err != nil {
		t.Fatal(err)
	}
	is, err := storage.NewFS(inboxDir)
	if err != nil {
		t.Fatal(err)
	}
	return contentDir, inboxDir, content.NewResolver(cs, is, ".mdx", []string{"movies", "shows"}, quietLogger())
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM items`).Scan(&count); err != nil {
		t.Fatalf("items table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM types`).Scan(&count); err != nil {
		t.Fatalf("types table missing: %v", err)
	}
}

func TestReplaceType_Changes(t *testing.T) {
	db := testDB(t)
	changes, err := db.ReplaceType("movies", "c1", []ItemRow{
		{Slug: "heat", Title: "Heat", Tags: []string{"crime"}},
		{Slug: "ronin", Title: "Ronin"},
		{Slug: "", Title: "?"},
	})
	if err != nil {
		t.Fatalf("ReplaceType: %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("expected 2 created, got %+v", changes)
	}
	for _, c := range changes {
		if c.Kind != Created || c.Type != "movies" {
			t.Errorf("unexpected change %+v", c)
		}
	}

	changes, err = db.ReplaceType("movies", "c2", []ItemRow{
		{Slug: "heat", Title: "Heat", Tags: []string{"crime"}},
		{Slug: "ronin", Title: "Ronin", Note: "car chase"},
		{Slug: "arrival", Title: "Arrival"},
	})
	if err != nil {
		t.Fatalf("ReplaceType: %v", err)
	}
	kinds := map[string]ChangeKind{}
	for _, c := range changes {
		kinds[c.Slug] = c.Kind
	}
	if len(kinds) != 2 || kinds["ronin"] != Updated || kinds["arrival"] != Created {
		t.Errorf("unexpected changes: %+v", changes)
	}

	changes, _ = db.ReplaceType("movies", "c3", []ItemRow{{Slug: "arrival", Title: "Arrival"}})
	deleted := 0
	for _, c := range changes {
		if c.Kind == Deleted {
			deleted++
		}
	}
	if deleted != 2 {
		t.Errorf("expected 2 deletions, got %+v", changes)
	}

	cs, _ := db.TypeChecksum("movies")
	if cs != "c3" {
		t.Errorf("checksum = %q, want c3", cs)
	}
	if n, _ := db.Count("movies"); n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestDeleteType(t *testing.T) {
	db := testDB(t)
	_, _ = db.ReplaceType("books", "x", []ItemRow{{Slug: "dune", Title: "Dune"}})

	changes, err := db.DeleteType("books")
	if err != nil {
		t.Fatalf("DeleteType: %v", err)
	}
	if len(changes) != 1 || changes[0].Kind != Deleted {
		t.Errorf("unexpected changes: %+v", changes)
	}
	if cs, _ := db.TypeChecksum("books"); cs != "" {
		t.Errorf("type checksum still stored: %q", cs)
	}
}

func TestTypeChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.TypeChecksum("nonexistent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_, _ = db.ReplaceType("shows", "1", []ItemRow{
		{Slug: "the-wire", Title: "The Wire", Note: "baltimore uniqueword", HasPage: true},
		{Slug: "veep", Title: "Veep"},
	})

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Slug != "the-wire" || results[0].Type != "shows" || !results[0].HasPage {
		t.Errorf("search results = %+v, want 1 hit for the-wire", results)
	}
}

func TestSync(t *testing.T) {
	contentDir, inboxDir, r := testSite(t)
	db := testDB(t)
	ctx := context.Background()
	logger := quietLogger()

	writeFile(t, filepath.Join(contentDir, "movies", "heat.mdx"), "---\ntitle: Heat\ncreated: 10\n---\n")
	writeFile(t, filepath.Join(inboxDir, "movies.yaml"), "crime:\n  - Heat: diner\n  - Ronin\n")

	changes, err := Sync(ctx, db, r, logger)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %+v", changes)
	}
	if n, _ := db.Count("movies"); n != 2 {
		t.Errorf("movies count = %d, want 2", n)
	}

	// Unchanged files are skipped.
	changes, err = Sync(ctx, db, r, logger)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(changes) != 0 {
		t.Errorf("expected no changes, got %+v", changes)
	}

	// Types no longer configured are removed.
	_, _ = db.ReplaceType("books", "x", []ItemRow{{Slug: "dune"}})
	changes, _ = Sync(ctx, db, r, logger)
	if len(changes) != 1 || changes[0].Type != "books" || changes[0].Kind != Deleted {
		t.Errorf("stale type changes = %+v", changes)
	}
}

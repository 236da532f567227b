// Package testutil provides shared test helpers for setting up sites and databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/things/internal/content"
	"github.com/starford/things/internal/contentservice"
	"github.com/starford/things/internal/inbox"
	"github.com/starford/things/internal/index"
	"github.com/starford/things/internal/storage"
)

// Types are the content types every test site is configured with.
var Types = []string{"movies", "people", "projects", "shows", "tools"}

// Site is a temporary content and inbox tree with the services over it.
type Site struct {
	ContentDir string
	InboxDir   string
	Logger     *slog.Logger
	Resolver   *content.Resolver
	Entries    *contentservice.Service
	Inbox      *inbox.Service
}

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "things-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestSite creates empty content and inbox roots and wires the services.
func TestSite(t *testing.T) *Site {
	t.Helper()
	s := &Site{
		ContentDir: t.TempDir(),
		InboxDir:   t.TempDir(),
		Logger:     slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	contentStore, err := storage.NewFS(s.ContentDir)
	if err != nil {
		t.Fatal(err)
	}
	inboxStore, err := storage.NewFS(s.InboxDir)
	if err != nil {
		t.Fatal(err)
	}
	s.Resolver = content.NewResolver(contentStore, inboxStore, ".mdx", Types, s.Logger)
	s.Entries = contentservice.NewService(contentStore, ".mdx", Types, s.Logger)
	s.Inbox = inbox.NewService(inboxStore, s.Entries, Types, s.Logger)
	return s
}

// WriteContent writes a file below the content root.
func (s *Site) WriteContent(t *testing.T, rel, data string) {
	t.Helper()
	write(t, filepath.Join(s.ContentDir, filepath.FromSlash(rel)), data)
}

// WriteInbox writes a file below the inbox root.
func (s *Site) WriteInbox(t *testing.T, rel, data string) {
	t.Helper()
	write(t, filepath.Join(s.InboxDir, filepath.FromSlash(rel)), data)
}

func write(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

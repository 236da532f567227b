package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/things/internal/content"
	"github.com/starford/things/internal/contentservice"
	"github.com/starford/things/internal/inbox"
	"github.com/starford/things/internal/index"
	"github.com/starford/things/internal/storage"
)

// Services are the readers and writers over one site, shared by the HTTP
// server, the MCP server and the one-shot CLI commands.
type Services struct {
	Resolver *content.Resolver
	Entries  *contentservice.Service
	Inbox    *inbox.Service
}

// NewServices creates the content and inbox roots when missing and wires
// the services over them.
func NewServices(cfg *Config, logger *slog.Logger) (*Services, error) {
	contentRoot, inboxRoot := cfg.Site.ContentPath(), cfg.Site.InboxPath()
	for _, dir := range []string{contentRoot, inboxRoot} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create site dir: %w", err)
		}
	}
	contentStore, err := storage.NewFS(contentRoot)
	if err != nil {
		return nil, fmt.Errorf("init content storage: %w", err)
	}
	inboxStore, err := storage.NewFS(inboxRoot)
	if err != nil {
		return nil, fmt.Errorf("init inbox storage: %w", err)
	}

	ext, types := cfg.Site.Extension, cfg.Site.Types
	entries := contentservice.NewService(contentStore, ext, types, logger)
	return &Services{
		Resolver: content.NewResolver(contentStore, inboxStore, ext, types, logger),
		Entries:  entries,
		Inbox:    inbox.NewService(inboxStore, entries, types, logger),
	}, nil
}

// OpenIndex opens the search index and brings it up to date with the site.
// A failed sync is logged; the index is still usable for what it holds.
func OpenIndex(ctx context.Context, cfg *Config, s *Services, logger *slog.Logger) (*index.DB, error) {
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}
	changes, err := index.Sync(ctx, db, s.Resolver, logger)
	if err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
	logger.Debug("index synced", slog.Int("changes", len(changes)))
	return db, nil
}

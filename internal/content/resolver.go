// Package content resolves catalog entries of a content type from their three
// sources (structured files, loose YAML lists and the inbox), normalizes and
// merges them, and derives the grouped, recency and thought views.
package content

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/starford/things/internal/models"
	"github.com/starford/things/internal/storage"
)

// Resolver reads entries from disk. Every call recomputes from the files;
// nothing is cached.
type Resolver struct {
	content storage.Provider
	inbox   storage.Provider
	ext     string
	types   []string
	logger  *slog.Logger
}

// NewResolver creates a resolver over the content root (one directory per
// type) and the inbox root (one list file per type). ext is the extension of
// structured files, e.g. ".mdx".
func NewResolver(content, inbox storage.Provider, ext string, types []string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		content: content,
		inbox:   inbox,
		ext:     ext,
		types:   slices.Clone(types),
		logger:  logger,
	}
}

// Types returns the configured content types.
func (r *Resolver) Types() []string {
	return slices.Clone(r.types)
}

// Roots returns the absolute content and inbox roots.
func (r *Resolver) Roots() (content, inbox string) {
	return r.content.Root(), r.inbox.Root()
}

// Ext returns the structured file extension.
func (r *Resolver) Ext() string {
	return r.ext
}

// HasType reports whether typ is a configured content type.
func (r *Resolver) HasType(typ string) bool {
	return slices.Contains(r.types, typ)
}

// Items returns the merged entries of one content type, structured entries
// first. Slugs are unique in the result.
func (r *Resolver) Items(ctx context.Context, typ string) ([]models.ContentItem, error) {
	structured, err := r.ReadStructured(ctx, typ)
	if err != nil {
		return nil, err
	}
	items := structured
	for _, raw := range r.ReadContentYAML(typ) {
		items = append(items, Normalize(raw))
	}
	for _, raw := range r.ReadInboxYAML(typ) {
		items = append(items, Normalize(raw))
	}
	return Merge(items), nil
}

// All resolves every configured type concurrently. The types live in
// disjoint directories, so the reads share no state.
func (r *Resolver) All(ctx context.Context) (map[string][]models.ContentItem, error) {
	var (
		mu  sync.Mutex
		out = make(map[string][]models.ContentItem, len(r.types))
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, typ := range r.types {
		g.Go(func() error {
			items, err := r.Items(ctx, typ)
			if err != nil {
				return err
			}
			mu.Lock()
			out[typ] = items
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

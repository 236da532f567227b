package index

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	"github.com/starford/things/internal/content"
)

// Sync brings the index up to date with the files on disk:
//   - types whose fingerprint changed are resolved and replaced
//   - indexed types that are no longer configured are deleted
func Sync(ctx context.Context, db *DB, r *content.Resolver, logger *slog.Logger) ([]Change, error) {
	var changes []Change
	for _, typ := range r.Types() {
		c, err := SyncType(ctx, db, r, typ, logger)
		if err != nil {
			return changes, err
		}
		changes = append(changes, c...)
	}

	indexed, err := db.Types()
	if err != nil {
		return changes, err
	}
	for _, typ := range indexed {
		if r.HasType(typ) {
			continue
		}
		c, err := db.DeleteType(typ)
		if err != nil {
			logger.Warn("sync: delete type failed", slog.String("type", typ), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: removed stale type", slog.String("type", typ))
		changes = append(changes, c...)
	}
	return changes, nil
}

// SyncType re-indexes typ when its fingerprint differs from the stored one.
func SyncType(ctx context.Context, db *DB, r *content.Resolver, typ string, logger *slog.Logger) ([]Change, error) {
	fp, err := r.Fingerprint(typ)
	if err != nil {
		logger.Warn("sync: fingerprint failed", slog.String("type", typ), slog.String("error", err.Error()))
		return nil, nil
	}
	stored, err := db.TypeChecksum(typ)
	if err != nil {
		return nil, err
	}
	if stored == fp {
		return nil, nil
	}
	items, err := r.Items(ctx, typ)
	if err != nil {
		return nil, err
	}
	rows := make([]ItemRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, RowFromItem(typ, it))
	}
	changes, err := db.ReplaceType(typ, fp, rows)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(changes, func(a, b Change) int { return cmp.Compare(a.Slug, b.Slug) })
	logger.Debug("sync: indexed", slog.String("type", typ), slog.Int("items", len(rows)), slog.Int("changes", len(changes)))
	return changes, nil
}

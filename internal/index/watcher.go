package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/things/internal/content"
)

// EventCallback is called for every change a watcher-driven re-index finds.
type EventCallback func(c Change)

const debounce = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the content and inbox roots and
// re-indexes the affected types until ctx is cancelled. Bursts of events are
// debounced; cb (if non-nil) receives each resulting change.
//
// New directories created at runtime are added to the watch list.
func Watch(ctx context.Context, db *DB, r *content.Resolver, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	contentRoot, inboxRoot := r.Roots()
	for _, root := range []string{contentRoot, inboxRoot} {
		if err := addDirsRecursive(w, root); err != nil {
			return err
		}
	}
	logger.Info("watcher: started", slog.String("content", contentRoot), slog.String("inbox", inboxRoot))

	exts := []string{r.Ext(), ".yaml", ".yml"}
	pending := make(map[string]bool) // type -> inbox touched
	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func(typ string, inbox bool) {
		pending[typ] = pending[typ] || inbox
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			flush(ctx, db, r, pending, logger, cb)
			clear(pending)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			absPath := ev.Name

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					}
					if typ, inbox, ok := classify(contentRoot, inboxRoot, absPath, true); ok {
						schedule(typ, inbox)
					}
					continue
				}
			}

			if !slices.Contains(exts, filepath.Ext(absPath)) {
				continue
			}
			if typ, inbox, ok := classify(contentRoot, inboxRoot, absPath, false); ok {
				logger.Debug("watcher: event", slog.String("path", absPath), slog.String("op", ev.Op.String()))
				schedule(typ, inbox)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// flush re-indexes every pending type and reports the changes.
func flush(ctx context.Context, db *DB, r *content.Resolver, pending map[string]bool, logger *slog.Logger, cb EventCallback) {
	types := make([]string, 0, len(pending))
	for typ := range pending {
		types = append(types, typ)
	}
	slices.Sort(types)
	for _, typ := range types {
		if !r.HasType(typ) {
			continue
		}
		changes, err := SyncType(ctx, db, r, typ, logger)
		if err != nil {
			logger.Warn("watcher: reindex failed", slog.String("type", typ), slog.String("error", err.Error()))
			continue
		}
		if cb == nil {
			continue
		}
		for _, c := range changes {
			cb(c)
		}
		if pending[typ] {
			cb(Change{Kind: Inbox, Type: typ})
		}
	}
}

// classify maps a path to the content type it belongs to. Files directly in
// the inbox root are inbox lists named after their type; anything below the
// content root belongs to the type named by its first path segment.
func classify(contentRoot, inboxRoot, absPath string, isDir bool) (typ string, inbox bool, ok bool) {
	if rel, err := filepath.Rel(inboxRoot, absPath); err == nil && !strings.HasPrefix(rel, "..") && rel != "." {
		if isDir || strings.ContainsRune(rel, filepath.Separator) {
			return "", false, false
		}
		return strings.TrimSuffix(rel, filepath.Ext(rel)), true, true
	}
	rel, err := filepath.Rel(contentRoot, absPath)
	if err != nil || strings.HasPrefix(rel, "..") || rel == "." {
		return "", false, false
	}
	first, _, nested := strings.Cut(filepath.ToSlash(rel), "/")
	if !nested && !isDir {
		return "", false, false
	}
	return first, false, true
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}

package content

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"github.com/starford/things/internal/listfile"
	"github.com/starford/things/internal/models"
	"github.com/starford/things/internal/parser"
	"github.com/starford/things/internal/storage"
)

// RawEntry is one list entry read from a loose or inbox YAML file, before
// normalization.
type RawEntry struct {
	Title    string
	Note     string
	Category string
	Source   models.Source
}

var listExts = []string{".yaml", ".yml"}

// ReadStructured reads every structured file of typ, recursively. Files that
// cannot be read or fail to decode are skipped with a warning.
func (r *Resolver) ReadStructured(ctx context.Context, typ string) ([]models.ContentItem, error) {
	files, err := r.content.Walk(typ, r.ext)
	if err != nil {
		r.logger.Warn("structured: list files", slog.String("type", typ), slog.String("error", err.Error()))
		return nil, nil
	}
	items := make([]models.ContentItem, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := r.content.Read(f.Path)
		if err != nil {
			r.logger.Warn("structured: read", slog.String("path", f.Path), slog.String("error", err.Error()))
			continue
		}
		thing, _, err := parser.DecodeThing(data)
		if err != nil {
			r.logger.Warn("structured: decode", slog.String("path", f.Path), slog.String("error", err.Error()))
			continue
		}
		slug := strings.TrimSuffix(strings.TrimPrefix(f.Path, typ+"/"), r.ext)
		items = append(items, FromThing(slug, thing))
	}
	return items, nil
}

// FromThing builds the item of a structured file with the given slug
// (relative path without extension).
func FromThing(slug string, t *models.Thing) models.ContentItem {
	item := models.ContentItem{
		Title:      t.Title,
		Slug:       slug,
		Category:   t.Category(),
		Note:       t.NoteText(),
		Summary:    t.Summary,
		URL:        t.URL,
		RepoURL:    t.RepoURL,
		DocsURL:    t.DocsURL,
		Created:    int64(t.Created),
		Updated:    int64(t.Updated),
		Tags:       t.Tags,
		References: t.References,
		Thoughts:   t.Thoughts,
		HasPage:    true,
		Source:     models.SourceStructured,
	}
	if parent, _, nested := strings.Cut(slug, "/"); nested {
		item.Parent = parent
	}
	return item
}

// ReadContentYAML reads the category lists stored directly inside the type
// directory, in file name order.
func (r *Resolver) ReadContentYAML(typ string) []RawEntry {
	names, err := r.content.Files(typ, listExts...)
	if err != nil {
		r.logger.Warn("content yaml: list files", slog.String("type", typ), slog.String("error", err.Error()))
		return nil
	}
	var out []RawEntry
	for _, name := range names {
		out = append(out, r.readList(r.content, path.Join(typ, name), models.SourceContentYAML)...)
	}
	return out
}

// ReadInboxYAML reads the inbox list of typ.
func (r *Resolver) ReadInboxYAML(typ string) []RawEntry {
	name, ok := InboxFile(r.inbox, typ)
	if !ok {
		return nil
	}
	return r.readList(r.inbox, name, models.SourceInboxYAML)
}

func (r *Resolver) readList(p storage.Provider, name string, src models.Source) []RawEntry {
	data, err := p.Read(name)
	if err != nil {
		r.logger.Warn("list: read", slog.String("path", name), slog.String("error", err.Error()))
		return nil
	}
	cats, err := listfile.Parse(data)
	if err != nil {
		r.logger.Warn("list: parse", slog.String("path", name), slog.String("error", err.Error()))
		return nil
	}
	var out []RawEntry
	for _, c := range cats {
		for _, e := range c.Entries {
			if e.Title == "" {
				r.logger.Warn("list: entry without title", slog.String("path", name), slog.String("category", c.Name))
				continue
			}
			out = append(out, RawEntry{Title: e.Title, Note: e.Note, Category: c.Name, Source: src})
		}
	}
	return out
}

// InboxFile returns the name of the inbox list of typ: "<typ>.yaml", or
// "<typ>.yml" when only that exists. ok is false when neither is a file.
func InboxFile(p storage.Provider, typ string) (name string, ok bool) {
	for _, ext := range listExts {
		name = typ + ext
		if k, err := p.Kind(name); err == nil && k == storage.KindFile {
			return name, true
		}
	}
	return typ + listExts[0], false
}

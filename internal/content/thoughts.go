package content

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/starford/things/internal/apperr"
	"github.com/starford/things/internal/models"
)

// Filter selects the items whose thoughts are extracted: all types, one
// type, or one type narrowed to the children of a parent.
type Filter struct {
	Type   string
	Parent string
}

// ParseFilter parses "", "type" or "type/parent".
func ParseFilter(s string) Filter {
	typ, parent, _ := strings.Cut(strings.Trim(s, "/"), "/")
	return Filter{Type: typ, Parent: parent}
}

// ExtractThoughts flattens the thoughts of items into entries, newest first.
// Only keys that parse as base-10 integers are timestamps; other keys hold
// extra data and are not extracted. Content is normalised so nested
// mappings with non-string keys still encode as JSON.
func ExtractThoughts(typ string, items []models.ContentItem) []models.ThoughtEntry {
	var out []models.ThoughtEntry
	for _, item := range items {
		snap := models.ThingSnapshot{Title: item.Title, Slug: item.Slug, Type: typ, Category: item.Category}
		for _, th := range item.Thoughts {
			for _, f := range th {
				if _, err := strconv.ParseInt(f.Key, 10, 64); err != nil {
					continue
				}
				out = append(out, models.ThoughtEntry{Timestamp: f.Key, Content: models.JSONSafe(f.Value), Thing: snap})
			}
		}
	}
	sortThoughts(out)
	return out
}

func sortThoughts(entries []models.ThoughtEntry) {
	slices.SortStableFunc(entries, func(a, b models.ThoughtEntry) int {
		ta, _ := strconv.ParseInt(a.Timestamp, 10, 64)
		tb, _ := strconv.ParseInt(b.Timestamp, 10, 64)
		return cmp.Compare(tb, ta)
	})
}

// Thoughts extracts the thoughts of every item matching filter ("", "type"
// or "type/parent"), newest first.
func (r *Resolver) Thoughts(ctx context.Context, filter string) ([]models.ThoughtEntry, error) {
	f := ParseFilter(filter)
	types := r.types
	if f.Type != "" {
		if !r.HasType(f.Type) {
			return nil, fmt.Errorf("unknown content type %q: %w", f.Type, apperr.ErrNotFound)
		}
		types = []string{f.Type}
	}
	var out []models.ThoughtEntry
	for _, typ := range types {
		items, err := r.Items(ctx, typ)
		if err != nil {
			return nil, err
		}
		if f.Parent != "" {
			items = slices.DeleteFunc(items, func(it models.ContentItem) bool { return it.Parent != f.Parent })
		}
		out = append(out, ExtractThoughts(typ, items)...)
	}
	sortThoughts(out)
	return out, nil
}

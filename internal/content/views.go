package content

import (
	"cmp"
	"slices"

	"github.com/starford/things/internal/models"
)

// DefaultCategory labels items without a category.
const DefaultCategory = "uncategorized"

// Group is one category of the grouped view.
type Group struct {
	Name  string               `json:"name"`
	Items []models.ContentItem `json:"items"`
}

// GroupByCategory groups items by category. Groups are sorted by name
// (byte-wise); items keep their incoming order.
func GroupByCategory(items []models.ContentItem) []Group {
	idx := make(map[string]int)
	var groups []Group
	for _, item := range items {
		name := item.Category
		if name == "" {
			name = DefaultCategory
		}
		i, ok := idx[name]
		if !ok {
			i = len(groups)
			idx[name] = i
			groups = append(groups, Group{Name: name})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	slices.SortFunc(groups, func(a, b Group) int { return cmp.Compare(a.Name, b.Name) })
	return groups
}

// SortByRecency returns a copy of items, most recently created first. Ties
// keep their order, so YAML-only entries sink to the bottom as a block.
func SortByRecency(items []models.ContentItem) []models.ContentItem {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b models.ContentItem) int { return cmp.Compare(b.Created, a.Created) })
	return out
}

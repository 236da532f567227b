package content

import "github.com/starford/things/internal/models"

// Merge deduplicates items by slug. The first occurrence of a slug is kept;
// later ones only fill its Note and Category when those are empty. Output
// keeps first-occurrence order. Items with an empty slug are passed through
// and never merged with each other.
func Merge(items []models.ContentItem) []models.ContentItem {
	out := make([]models.ContentItem, 0, len(items))
	seen := make(map[string]int, len(items))
	for _, item := range items {
		if item.Slug == "" {
			out = append(out, item)
			continue
		}
		i, ok := seen[item.Slug]
		if !ok {
			seen[item.Slug] = len(out)
			out = append(out, item)
			continue
		}
		if out[i].Note == "" && item.Note != "" {
			out[i].Note = item.Note
		}
		if out[i].Category == "" && item.Category != "" {
			out[i].Category = item.Category
		}
	}
	return out
}

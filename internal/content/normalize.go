package content

import (
	"github.com/starford/things/internal/models"
	"github.com/starford/things/internal/slugs"
)

// Normalize turns a YAML list entry into an item. YAML-only entries have no
// page and no creation time.
func Normalize(raw RawEntry) models.ContentItem {
	return models.ContentItem{
		Title:    raw.Title,
		Slug:     slugs.FromTitle(raw.Title),
		Category: raw.Category,
		Note:     raw.Note,
		Source:   raw.Source,
	}
}

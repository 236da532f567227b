package api

import (
	"github.com/starford/things/internal/content"
	"github.com/starford/things/internal/contentservice"
	"github.com/starford/things/internal/index"
	"github.com/starford/things/internal/inbox"
	"github.com/starford/things/internal/models"
)

// DeleteInboxRequest is the request body for removing an inbox entry.
type DeleteInboxRequest struct {
	Filename string `json:"filename" example:"movies.yaml" validate:"required"`
	Category string `json:"category" example:"crime"`
	Title    string `json:"title" example:"Heat"`
}

// AddInboxRequest is the request body for a quick-add inbox entry.
type AddInboxRequest = inbox.AddRequest

// InboxFile is one parsed inbox file (aliased from the domain layer).
type InboxFile = inbox.File

// UpdateEntryRequest is the request body for rewriting a structured file.
type UpdateEntryRequest struct {
	Frontmatter map[string]any `json:"frontmatter" validate:"required"`
	Body        string         `json:"body"`
}

// EntryDetail is a structured file (aliased from the domain layer).
type EntryDetail = contentservice.Detail

// AddThoughtRequest is the request body for recording a thought.
type AddThoughtRequest struct {
	Type  string            `json:"type" example:"movies" validate:"required"`
	Slug  string            `json:"slug" example:"heat" validate:"required"`
	Text  string            `json:"text" example:"Diner scene holds up." validate:"required"`
	Extra map[string]string `json:"extra,omitempty"`
}

// SuccessResponse acknowledges a write.
type SuccessResponse struct {
	Success   bool   `json:"success" validate:"required"`
	Path      string `json:"path,omitempty" example:"movies/heat.mdx"`
	Slug      string `json:"slug,omitempty" example:"heat"`
	Filename  string `json:"filename,omitempty" example:"movies.yaml"`
	Timestamp string `json:"timestamp,omitempty" example:"1700000000"`
}

// ItemsResponse is the merged catalog of one type. Exactly one of Items and
// Groups is set, depending on the requested view.
type ItemsResponse struct {
	Type   string               `json:"type" example:"movies" validate:"required"`
	View   string               `json:"view" example:"grouped" validate:"required"`
	Items  []models.ContentItem `json:"items,omitempty"`
	Groups []content.Group      `json:"groups,omitempty"`
}

// ThoughtsResponse wraps extracted thoughts.
type ThoughtsResponse struct {
	Thoughts []models.ThoughtEntry `json:"thoughts" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

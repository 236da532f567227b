// Package models defines the domain types shared by the readers, services and
// transports.
package models

// Source records which reader produced an item. It only matters while
// merging and is never serialised.
type Source string

// Item sources in merge priority order.
const (
	SourceStructured  Source = "structured"
	SourceContentYAML Source = "content-yaml"
	SourceInboxYAML   Source = "inbox-yaml"
)

// ContentItem is the canonical, merged representation of one catalog entry.
type ContentItem struct {
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	Category   string     `json:"category,omitempty"`
	Parent     string     `json:"parent,omitempty"`
	Note       string     `json:"note,omitempty"`
	Summary    string     `json:"summary,omitempty"`
	URL        string     `json:"url,omitempty"`
	RepoURL    string     `json:"repo_url,omitempty"`
	DocsURL    string     `json:"docs_url,omitempty"`
	Created    int64      `json:"created"`
	Updated    int64      `json:"updated,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	References []ThingRef `json:"references,omitempty"`
	Thoughts   []Thought  `json:"thoughts,omitempty"`
	HasPage    bool       `json:"hasPage"`
	Source     Source     `json:"-"`
}

// ThoughtEntry is one timestamped thought flattened out of its owning item.
type ThoughtEntry struct {
	Timestamp string        `json:"timestamp"`
	Content   any           `json:"content"`
	Thing     ThingSnapshot `json:"thing"`
}

// ThingSnapshot is a copy of the owning item taken at extraction time.
type ThingSnapshot struct {
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Type     string `json:"type"`
	Category string `json:"category,omitempty"`
}

// FileMeta is a lightweight description of a file returned by list operations.
type FileMeta struct {
	Path     string `json:"path"`
	Checksum string `json:"checksum"`
}

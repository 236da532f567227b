// Package listfile reads and edits category-list YAML files: a mapping from
// category name to an ordered list of quick-add entries. Loose content lists
// and inbox files share this format.
package listfile

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind tells how an entry was written.
type Kind int

// Entry kinds.
const (
	// Plain is a bare string: "Title".
	Plain Kind = iota
	// Noted is a string with an inline note: "Title: note".
	Noted
	// Keyed is a single-key mapping: {Title: note}.
	Keyed
)

// Entry is one decoded list element.
type Entry struct {
	Kind  Kind
	Title string
	Note  string
}

// DecodeEntry decodes a list element. ok is false for elements that are
// neither a string nor a non-empty mapping. A keyed entry whose value is
// not a scalar keeps its title but has no note.
func DecodeEntry(n *yaml.Node) (Entry, bool) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return Entry{}, false
		}
		// Only the first colon separates the title; notes may contain more.
		title, note, found := strings.Cut(n.Value, ":")
		title, note = strings.TrimSpace(title), strings.TrimSpace(note)
		if found && note != "" {
			return Entry{Kind: Noted, Title: title, Note: note}, true
		}
		return Entry{Kind: Plain, Title: title}, true
	case yaml.MappingNode:
		if len(n.Content) < 2 {
			return Entry{}, false
		}
		// Only a scalar value becomes the note; lists and mappings are dropped.
		e := Entry{Kind: Keyed, Title: strings.TrimSpace(n.Content[0].Value)}
		if v := n.Content[1]; v.Kind == yaml.ScalarNode && v.Tag != "!!null" {
			e.Note = v.Value
		}
		return e, true
	default:
		return Entry{}, false
	}
}

// Node encodes the entry the way a person would write it in an inbox.
func (e Entry) Node() *yaml.Node {
	if e.Note == "" {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Title}
	}
	return &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Title},
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Note},
		},
	}
}

// matches reports whether the list element n is the entry titled title.
// The raw string form is accepted too, so "Title: note" can be addressed
// either way.
func matches(n *yaml.Node, title string) bool {
	if n.Kind == yaml.ScalarNode && n.Value == title {
		return true
	}
	e, ok := DecodeEntry(n)
	return ok && e.Title == title
}

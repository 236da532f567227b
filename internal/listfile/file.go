package listfile

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Category is a named, ordered list of entries.
type Category struct {
	Name    string
	Entries []Entry
}

// Parse decodes a category-list file. Categories keep their file order;
// values that are not lists are skipped, as are undecodable elements.
func Parse(data []byte) ([]Category, error) {
	f, err := Load(data)
	if err != nil {
		return nil, err
	}
	return f.Categories(), nil
}

// File is an editable category-list document. Edits are applied to the YAML
// node tree, so untouched entries keep their formatting and comments.
type File struct {
	doc  *yaml.Node
	root *yaml.Node
}

// New returns an empty file.
func New() *File {
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	return &File{doc: &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}, root: root}
}

// Load parses data. An empty document yields an empty file.
func Load(data []byte) (*File, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("listfile: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return New(), nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return New(), nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("listfile: line %d: top level must be a mapping of categories", root.Line)
	}
	return &File{doc: &doc, root: root}, nil
}

// Categories returns the list categories in file order.
func (f *File) Categories() []Category {
	var out []Category
	for i := 0; i+1 < len(f.root.Content); i += 2 {
		val := f.root.Content[i+1]
		if val.Kind != yaml.SequenceNode {
			continue
		}
		c := Category{Name: f.root.Content[i].Value}
		for _, item := range val.Content {
			if e, ok := DecodeEntry(item); ok {
				c.Entries = append(c.Entries, e)
			}
		}
		out = append(out, c)
	}
	return out
}

// Remove deletes the entries titled title from category. A category left
// empty is deleted. It reports whether anything was removed.
func (f *File) Remove(category, title string) bool {
	idx := f.index(category)
	if idx < 0 {
		return false
	}
	val := f.root.Content[idx+1]
	removed := false
	switch val.Kind {
	case yaml.SequenceNode:
		kept := val.Content[:0]
		for _, item := range val.Content {
			if matches(item, title) {
				removed = true
				continue
			}
			kept = append(kept, item)
		}
		val.Content = kept
	case yaml.MappingNode:
		for i := 0; i+1 < len(val.Content); i += 2 {
			if val.Content[i].Value == title {
				val.Content = append(val.Content[:i], val.Content[i+2:]...)
				removed = true
				break
			}
		}
	}
	if removed && len(val.Content) == 0 {
		f.root.Content = append(f.root.Content[:idx], f.root.Content[idx+2:]...)
	}
	return removed
}

// Add appends e to category, creating the category if needed.
func (f *File) Add(category string, e Entry) error {
	idx := f.index(category)
	if idx < 0 {
		f.root.Content = append(f.root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: category},
			&yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"},
		)
		idx = len(f.root.Content) - 2
	}
	val := f.root.Content[idx+1]
	if val.Kind == yaml.ScalarNode && val.Tag == "!!null" {
		*val = yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	}
	if val.Kind != yaml.SequenceNode {
		return fmt.Errorf("listfile: category %q is not a list", category)
	}
	val.Content = append(val.Content, e.Node())
	return nil
}

// Empty reports whether the file has no categories left.
func (f *File) Empty() bool {
	return len(f.root.Content) == 0
}

// Bytes encodes the file.
func (f *File) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f.doc); err != nil {
		return nil, fmt.Errorf("listfile: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("listfile: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func (f *File) index(category string) int {
	for i := 0; i+1 < len(f.root.Content); i += 2 {
		if f.root.Content[i].Value == category {
			return i
		}
	}
	return -1
}

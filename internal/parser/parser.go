// Package parser splits structured content files into their YAML front-matter
// and body, decodes the front-matter and writes it back.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/things/internal/models"
)

const delim = "---"

// ErrNoFrontmatter is returned when a file does not start with a front-matter block.
var ErrNoFrontmatter = errors.New("parser: no front-matter block")

// Document is a parsed structured file.
type Document struct {
	Frontmatter    map[string]any
	Body           string
	HasFrontmatter bool
}

// Split separates the front-matter block (between a leading "---" line and
// the next "---" line) from the body. The body is returned byte for byte.
// ok is false when the data has no complete front-matter block.
func Split(data []byte) (front []byte, body string, ok bool) {
	s := string(data)
	first, rest, found := strings.Cut(s, "\n")
	if !found || strings.TrimRight(first, " \t\r") != delim {
		return nil, s, false
	}
	offset := 0
	for {
		line, after, more := strings.Cut(rest[offset:], "\n")
		if strings.TrimRight(line, " \t\r") == delim {
			if !more {
				after = ""
			}
			return []byte(rest[:offset]), after, true
		}
		if !more {
			return nil, s, false
		}
		offset += len(line) + 1
	}
}

// Parse decodes the front-matter into a generic map. Files without
// front-matter are returned as body only; invalid YAML is an error.
func Parse(data []byte) (*Document, error) {
	front, body, ok := Split(data)
	if !ok {
		return &Document{Body: body}, nil
	}
	var fm map[string]any
	if err := yaml.Unmarshal(front, &fm); err != nil {
		return nil, fmt.Errorf("parser: front-matter: %w", err)
	}
	if fm == nil {
		fm = map[string]any{}
	}
	return &Document{Frontmatter: fm, Body: body, HasFrontmatter: true}, nil
}

// DecodeThing decodes and validates the front-matter of a structured file.
func DecodeThing(data []byte) (*models.Thing, string, error) {
	front, body, ok := Split(data)
	if !ok {
		return nil, "", ErrNoFrontmatter
	}
	var thing models.Thing
	if err := yaml.Unmarshal(front, &thing); err != nil {
		return nil, "", fmt.Errorf("parser: front-matter: %w", err)
	}
	if err := thing.Validate(); err != nil {
		return nil, "", fmt.Errorf("parser: schema: %w", err)
	}
	return &thing, body, nil
}

// Compose joins an encoded front-matter block and a body into file content.
func Compose(front []byte, body string) []byte {
	var b strings.Builder
	b.WriteString(delim + "\n")
	b.Write(front)
	if len(front) > 0 && front[len(front)-1] != '\n' {
		b.WriteByte('\n')
	}
	b.WriteString(delim + "\n")
	b.WriteString(body)
	return []byte(b.String())
}

package parser

import (
	"bytes"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/starford/things/internal/models"
)

// fieldOrder is the order known keys are written in. Unknown keys follow,
// sorted by name.
var fieldOrder = []string{
	"title", "summary", "ai_summary", "note", "notes", "url", "repo_url", "docs_url",
	"created", "updated", "tags", "references", "thoughts",
}

// MarshalFrontmatter encodes fields as a front-matter block. Known keys come
// first in schema order, tags are written as an inline sequence and integral
// JSON numbers are written as integers.
func MarshalFrontmatter(fields map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		ri, rj := rank(keys[i]), rank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})

	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range keys {
		v := fields[k]
		if v == nil {
			continue
		}
		if k == "thoughts" {
			v = thoughtsFromJSON(v)
		}
		val := &yaml.Node{}
		if err := val.Encode(normalizeNumbers(v)); err != nil {
			return nil, fmt.Errorf("parser: encode %s: %w", k, err)
		}
		if k == "tags" && val.Kind == yaml.SequenceNode {
			val.Style = yaml.FlowStyle
		}
		root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, val)
	}
	return encodeNode(root)
}

// AppendThought adds thought to the end of the thoughts sequence of a
// structured file. The rest of the front-matter keeps its order, style and
// comments; the body is kept verbatim.
func AppendThought(data []byte, thought models.Thought) ([]byte, error) {
	front, body, ok := Split(data)
	if !ok {
		return nil, ErrNoFrontmatter
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(front, &doc); err != nil {
		return nil, fmt.Errorf("parser: front-matter: %w", err)
	}
	var root *yaml.Node
	switch {
	case doc.Kind == 0:
		root = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	case doc.Kind == yaml.DocumentNode && len(doc.Content) == 1 && doc.Content[0].Kind == yaml.MappingNode:
		root = doc.Content[0]
	default:
		return nil, fmt.Errorf("parser: front-matter is not a mapping")
	}

	encoded, err := thought.MarshalYAML()
	if err != nil {
		return nil, err
	}
	thoughtNode := encoded.(*yaml.Node)

	var seq *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "thoughts" {
			seq = root.Content[i+1]
			if seq.Kind != yaml.SequenceNode {
				*seq = yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
			}
			break
		}
	}
	if seq == nil {
		seq = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "thoughts"}, seq)
	}
	seq.Content = append(seq.Content, thoughtNode)

	target := root
	if doc.Kind == yaml.DocumentNode {
		target = &doc
	}
	out, err := encodeNode(target)
	if err != nil {
		return nil, err
	}
	return Compose(out, body), nil
}

func encodeNode(n *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return nil, fmt.Errorf("parser: encode front-matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("parser: encode front-matter: %w", err)
	}
	return buf.Bytes(), nil
}

func rank(key string) int {
	if i := slices.Index(fieldOrder, key); i >= 0 {
		return i
	}
	return len(fieldOrder)
}

// normalizeNumbers turns integral float64 values (as produced by
// encoding/json) into int64 so timestamps are not written in exponent form.
func normalizeNumbers(v any) any {
	switch val := v.(type) {
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1<<53 {
			return int64(val)
		}
		return val
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeNumbers(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeNumbers(item)
		}
		return out
	default:
		return v
	}
}

// thoughtsFromJSON converts thought objects decoded from JSON into ordered
// Thoughts: timestamp keys first in ascending order, then the rest by name.
func thoughtsFromJSON(v any) any {
	list, ok := v.([]any)
	if !ok {
		return v
	}
	out := make([]any, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			out = append(out, item)
			continue
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			ni, iNum := strconv.ParseInt(keys[i], 10, 64)
			nj, jNum := strconv.ParseInt(keys[j], 10, 64)
			switch {
			case iNum == nil && jNum == nil:
				return ni < nj
			case iNum == nil:
				return true
			case jNum == nil:
				return false
			default:
				return keys[i] < keys[j]
			}
		})
		thought := make(models.Thought, 0, len(keys))
		for _, k := range keys {
			thought = append(thought, models.ThoughtField{Key: k, Value: normalizeNumbers(m[k])})
		}
		out = append(out, thought)
	}
	return out
}

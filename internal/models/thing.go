package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Thing is the front-matter schema of a structured content file. Projects
// additionally use RepoURL and DocsURL.
type Thing struct {
	Title      string     `yaml:"title"`
	Summary    string     `yaml:"summary,omitempty"`
	AISummary  string     `yaml:"ai_summary,omitempty"`
	Note       string     `yaml:"note,omitempty"`
	Notes      string     `yaml:"notes,omitempty"`
	URL        string     `yaml:"url,omitempty"`
	Created    Epoch      `yaml:"created"`
	Updated    Epoch      `yaml:"updated,omitempty"`
	Tags       []string   `yaml:"tags,omitempty"`
	References []ThingRef `yaml:"references,omitempty"`
	Thoughts   []Thought  `yaml:"thoughts,omitempty"`
	RepoURL    string     `yaml:"repo_url,omitempty"`
	DocsURL    string     `yaml:"docs_url,omitempty"`
}

// ThingRef links a thing to another one. FullID is either "type:slug" for a
// thing that exists, or a bare title for one that does not.
type ThingRef struct {
	FullID string `yaml:"full_id" json:"full_id"`
	Desc   string `yaml:"desc,omitempty" json:"desc,omitempty"`
}

// Epoch is a timestamp in seconds. Numeric strings are accepted when decoding.
type Epoch int64

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Epoch) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: timestamp must be a scalar", value.Line)
	}
	raw := strings.TrimSpace(value.Value)
	if raw == "" || value.Tag == "!!null" {
		*e = 0
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.Abs(f) >= 1<<63 {
		return fmt.Errorf("line %d: timestamp %q is not a number", value.Line, raw)
	}
	*e = Epoch(f)
	return nil
}

// Thought is one element of a thing's thoughts list: an ordered mapping whose
// numeric keys are timestamps and whose other keys carry extra data.
type Thought []ThoughtField

// ThoughtField is a single key/value pair of a Thought.
type ThoughtField struct {
	Key   string
	Value any
}

// UnmarshalYAML implements yaml.Unmarshaler, keeping the key order.
func (t *Thought) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: thought must be a mapping", value.Line)
	}
	fields := make(Thought, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		var v any
		if err := value.Content[i+1].Decode(&v); err != nil {
			return err
		}
		fields = append(fields, ThoughtField{Key: value.Content[i].Value, Value: v})
	}
	*t = fields
	return nil
}

// MarshalYAML implements yaml.Marshaler, keeping the key order.
func (t Thought) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range t {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key}
		if _, err := strconv.ParseInt(f.Key, 10, 64); err == nil {
			key.Tag = "!!int"
		}
		val := &yaml.Node{}
		if err := val.Encode(f.Value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, key, val)
	}
	return node, nil
}

// MarshalJSON implements json.Marshaler, keeping the key order.
func (t Thought) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(jsonSafe(f.Value))
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the value stored under key.
func (t Thought) Get(key string) (any, bool) {
	for _, f := range t {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// jsonSafe converts YAML-decoded values into shapes encoding/json accepts.
// yaml.v3 decodes mappings with non-string keys into map[any]any.
func jsonSafe(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = jsonSafe(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = jsonSafe(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = jsonSafe(item)
		}
		return out
	default:
		return v
	}
}

// JSONSafe is exported for transports that serialise raw front-matter maps.
func JSONSafe(v any) any { return jsonSafe(v) }

// Validate checks the fields every structured file must carry.
func (t *Thing) Validate() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.Title, validation.Required),
	)
}

// Category is the first tag, the grouping label of a structured entry.
func (t *Thing) Category() string {
	if len(t.Tags) == 0 {
		return ""
	}
	return t.Tags[0]
}

// NoteText returns the first non-empty of note, summary and notes.
func (t *Thing) NoteText() string {
	for _, s := range []string{t.Note, t.Summary, t.Notes} {
		if s != "" {
			return s
		}
	}
	return ""
}

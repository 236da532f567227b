// Package contentservice creates, reads and rewrites structured content files.
package contentservice

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/things/internal/apperr"
	"github.com/starford/things/internal/models"
	"github.com/starford/things/internal/parser"
	"github.com/starford/things/internal/slugs"
	"github.com/starford/things/internal/storage"
)

// Detail is one structured file. Files without front-matter have a nil
// Frontmatter and the whole file as Body.
type Detail struct {
	Path        string         `json:"path"`
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
	Body        string         `json:"body"`
}

// Created is the result of a successful create.
type Created struct {
	Path string `json:"path"`
	Slug string `json:"slug"`
}

// CreateRequest describes a new structured file. Fields holds any extra
// front-matter keys.
type CreateRequest struct {
	Type      string
	Title     string
	Slug      string
	Tags      []string
	Fields    map[string]any
	Overwrite bool
}

// Validate implements validation.Validatable.
func (r CreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.Required),
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Slug, validation.By(func(any) error {
			if r.Slug != "" && !slugs.Valid(r.Slug) {
				return errors.New("must be lowercase words separated by hyphens")
			}
			return nil
		})),
	)
}

// Service writes structured files under the content root.
type Service struct {
	store  storage.Provider
	ext    string
	types  []string
	now    func() time.Time
	logger *slog.Logger
}

// NewService creates a content service. ext is the structured file
// extension and types the content types files may be created for.
func NewService(store storage.Provider, ext string, types []string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, ext: ext, types: slices.Clone(types), now: time.Now, logger: logger}
}

// Types returns the content type directories that exist on disk.
func (s *Service) Types(_ context.Context) ([]string, error) {
	dirs, err := s.store.Dirs("")
	if err != nil {
		return nil, err
	}
	if dirs == nil {
		dirs = []string{}
	}
	return dirs, nil
}

// Resolve reports what rel (a type directory, or "type/slug") refers to:
// a directory of entries, a single entry file, or nothing.
func (s *Service) Resolve(rel string) (storage.Kind, error) {
	rel = strings.Trim(rel, "/")
	if rel == "" {
		return storage.KindMissing, nil
	}
	k, err := s.store.Kind(rel)
	if err != nil || k == storage.KindDir {
		return k, err
	}
	k, err = s.store.Kind(rel + s.ext)
	if err != nil || k != storage.KindFile {
		return storage.KindMissing, err
	}
	return storage.KindFile, nil
}

// ListEntries returns the front-matter of every structured file under dir,
// recursively, each with a "slug" key relative to dir. Files whose
// front-matter cannot be decoded are listed with their slug only.
func (s *Service) ListEntries(_ context.Context, dir string) ([]map[string]any, error) {
	dir = strings.Trim(dir, "/")
	files, err := s.store.Walk(dir, s.ext)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(files))
	for _, f := range files {
		slug := strings.TrimSuffix(strings.TrimPrefix(f.Path, dir+"/"), s.ext)
		entry := map[string]any{}
		data, err := s.store.Read(f.Path)
		if err == nil {
			var doc *parser.Document
			doc, err = parser.Parse(data)
			if err == nil {
				for k, v := range doc.Frontmatter {
					entry[k] = models.JSONSafe(v)
				}
			}
		}
		if err != nil {
			s.logger.Warn("list entries: skip front-matter", slog.String("path", f.Path), slog.String("error", err.Error()))
		}
		entry["slug"] = slug
		out = append(out, entry)
	}
	return out, nil
}

// GetEntry reads the structured file of typ/slug.
func (s *Service) GetEntry(_ context.Context, typ, slug string) (*Detail, error) {
	p := s.entryPath(typ, slug)
	data, err := s.read(p)
	if err != nil {
		return nil, err
	}
	doc, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}
	d := &Detail{Path: p, Body: doc.Body}
	if doc.HasFrontmatter {
		d.Frontmatter = models.JSONSafe(doc.Frontmatter).(map[string]any)
	}
	return d, nil
}

// Create writes a new structured file with title, created (now) and tags
// followed by the extra fields. The slug defaults to one derived from the
// title. An existing file is an ErrAlreadyExists unless Overwrite is set.
func (s *Service) Create(_ context.Context, req CreateRequest) (*Created, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}
	if len(s.types) > 0 && !slices.Contains(s.types, req.Type) {
		return nil, fmt.Errorf("%w: unknown content type %q", apperr.ErrInvalid, req.Type)
	}
	slug := req.Slug
	if slug == "" {
		slug = slugs.FromTitle(req.Title)
	}
	if slug == "" {
		return nil, fmt.Errorf("%w: title %q yields an empty slug", apperr.ErrInvalid, req.Title)
	}

	p := s.entryPath(req.Type, slug)
	if !req.Overwrite {
		k, err := s.store.Kind(p)
		if err != nil {
			return nil, err
		}
		if k != storage.KindMissing {
			return nil, fmt.Errorf("%s: %w", p, apperr.ErrAlreadyExists)
		}
	}

	fields := make(map[string]any, len(req.Fields)+3)
	for k, v := range req.Fields {
		fields[k] = v
	}
	fields["title"] = req.Title
	fields["created"] = s.now().Unix()
	if len(req.Tags) > 0 {
		fields["tags"] = req.Tags
	} else {
		delete(fields, "tags")
	}
	front, err := parser.MarshalFrontmatter(fields)
	if err != nil {
		return nil, err
	}
	if err := s.store.Write(p, parser.Compose(front, "")); err != nil {
		return nil, fmt.Errorf("write %s: %w", p, err)
	}
	s.logger.Info("entry created", slog.String("path", p))
	return &Created{Path: p, Slug: slug}, nil
}

// Update replaces the front-matter and body of an existing file. The body is
// written as given.
func (s *Service) Update(_ context.Context, typ, slug string, frontmatter map[string]any, body string) error {
	p := s.entryPath(typ, slug)
	if _, err := s.read(p); err != nil {
		return err
	}
	if frontmatter == nil {
		return fmt.Errorf("%w: frontmatter is required", apperr.ErrInvalid)
	}
	front, err := parser.MarshalFrontmatter(frontmatter)
	if err != nil {
		return err
	}
	if err := s.store.Write(p, parser.Compose(front, body)); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}

// AddThought appends {<now>: text, extra...} to the thoughts of typ/slug and
// returns the timestamp used.
func (s *Service) AddThought(_ context.Context, typ, slug, text string, extra map[string]string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: thought text is required", apperr.ErrInvalid)
	}
	p := s.entryPath(typ, slug)
	data, err := s.read(p)
	if err != nil {
		return "", err
	}
	ts := strconv.FormatInt(s.now().Unix(), 10)
	thought := models.Thought{{Key: ts, Value: text}}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if _, err := strconv.ParseInt(k, 10, 64); err == nil {
			return "", fmt.Errorf("%w: extra key %q must not be numeric", apperr.ErrInvalid, k)
		}
		thought = append(thought, models.ThoughtField{Key: k, Value: extra[k]})
	}
	out, err := parser.AppendThought(data, thought)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}
	if err := s.store.Write(p, out); err != nil {
		return "", fmt.Errorf("write %s: %w", p, err)
	}
	return ts, nil
}

func (s *Service) entryPath(typ, slug string) string {
	return path.Join(typ, slug) + s.ext
}

func (s *Service) read(p string) ([]byte, error) {
	data, err := s.store.Read(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", p, apperr.ErrNotFound)
		}
		return nil, err
	}
	return data, nil
}

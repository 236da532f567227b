// Package inbox edits the per-type inbox lists and promotes their entries
// into structured content files.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/things/internal/apperr"
	"github.com/starford/things/internal/content"
	"github.com/starford/things/internal/contentservice"
	"github.com/starford/things/internal/listfile"
	"github.com/starford/things/internal/models"
	"github.com/starford/things/internal/storage"
)

// File is one parsed inbox file as served to the editor.
type File struct {
	Filename string `json:"filename"`
	Data     any    `json:"data"`
}

// Pending is one inbox entry waiting to be promoted.
type Pending struct {
	Type     string `json:"type"`
	Filename string `json:"filename"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Note     string `json:"note,omitempty"`
}

// AddRequest is a quick-add of a new inbox entry.
type AddRequest struct {
	Type     string `json:"type"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Note     string `json:"note"`
}

// PromoteResult reports the outcome for one promoted entry.
type PromoteResult struct {
	Title string `json:"title"`
	Slug  string `json:"slug,omitempty"`
	Path  string `json:"path,omitempty"`
	Err   error  `json:"-"`
}

var listExts = []string{".yaml", ".yml"}

// Service reads and writes files under the inbox root.
type Service struct {
	store   storage.Provider
	entries *contentservice.Service
	types   []string
	logger  *slog.Logger
}

// NewService creates an inbox service. entries is used to create the
// structured files of promoted entries.
func NewService(store storage.Provider, entries *contentservice.Service, types []string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, entries: entries, types: slices.Clone(types), logger: logger}
}

// List returns every inbox file with its parsed content. Files that fail to
// parse are skipped with a warning.
func (s *Service) List(_ context.Context) ([]File, error) {
	names, err := s.store.Files("", listExts...)
	if err != nil {
		return nil, err
	}
	out := make([]File, 0, len(names))
	for _, name := range names {
		data, err := s.store.Read(name)
		if err != nil {
			return nil, err
		}
		var parsed any
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			s.logger.Warn("inbox: parse", slog.String("file", name), slog.String("error", err.Error()))
			continue
		}
		out = append(out, File{Filename: name, Data: models.JSONSafe(parsed)})
	}
	return out, nil
}

// Pending returns the entries of typ's inbox in file order. An empty typ
// returns the entries of every inbox file.
func (s *Service) Pending(_ context.Context, typ string) ([]Pending, error) {
	var names []string
	if typ != "" {
		if name, ok := content.InboxFile(s.store, typ); ok {
			names = []string{name}
		}
	} else {
		var err error
		if names, err = s.store.Files("", listExts...); err != nil {
			return nil, err
		}
	}
	var out []Pending
	for _, name := range names {
		data, err := s.store.Read(name)
		if err != nil {
			return nil, err
		}
		cats, err := listfile.Parse(data)
		if err != nil {
			s.logger.Warn("inbox: parse", slog.String("file", name), slog.String("error", err.Error()))
			continue
		}
		t := strings.TrimSuffix(name, path.Ext(name))
		for _, c := range cats {
			for _, e := range c.Entries {
				if e.Title == "" {
					continue
				}
				out = append(out, Pending{Type: t, Filename: name, Category: c.Name, Title: e.Title, Note: e.Note})
			}
		}
	}
	return out, nil
}

// FileFor returns the name of typ's inbox file, if there is one.
func (s *Service) FileFor(typ string) (string, bool) {
	return content.InboxFile(s.store, typ)
}

// Remove deletes the entry titled title from category of filename. Emptied
// categories are dropped and an emptied file is deleted. An absent category
// or title is not an error; a missing file is ErrNotFound.
func (s *Service) Remove(_ context.Context, filename, category, title string) error {
	if err := validation.Validate(filename, validation.Required, validation.By(isListFile)); err != nil {
		return fmt.Errorf("%w: filename %v", apperr.ErrInvalid, err)
	}
	data, err := s.store.Read(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", filename, apperr.ErrNotFound)
		}
		return err
	}
	f, err := listfile.Load(data)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}
	if !f.Remove(category, title) {
		return nil
	}
	if f.Empty() {
		s.logger.Info("inbox: file emptied", slog.String("file", filename))
		return s.store.Delete(filename)
	}
	out, err := f.Bytes()
	if err != nil {
		return err
	}
	return s.store.Write(filename, out)
}

// Validate implements validation.Validatable.
func (r AddRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.Required),
		validation.Field(&r.Category, validation.Required),
		validation.Field(&r.Title, validation.Required),
	)
}

// Add appends an entry to typ's inbox, creating the file and category as
// needed, and returns the file name.
func (s *Service) Add(_ context.Context, req AddRequest) (string, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}
	if len(s.types) > 0 && !slices.Contains(s.types, req.Type) {
		return "", fmt.Errorf("%w: unknown content type %q", apperr.ErrInvalid, req.Type)
	}
	name, exists := content.InboxFile(s.store, req.Type)
	f := listfile.New()
	if exists {
		data, err := s.store.Read(name)
		if err != nil {
			return "", err
		}
		if f, err = listfile.Load(data); err != nil {
			return "", fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
		}
	}
	if err := f.Add(req.Category, listfile.Entry{Title: req.Title, Note: req.Note}); err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}
	out, err := f.Bytes()
	if err != nil {
		return "", err
	}
	if err := s.store.Write(name, out); err != nil {
		return "", err
	}
	return name, nil
}

// Promote creates a structured file for each inbox entry of typ whose title
// is in titles (all entries when titles is empty) and removes it from the
// inbox. The category becomes the first tag and the note the summary.
// Failures are reported per entry; the remaining entries are still promoted.
func (s *Service) Promote(ctx context.Context, typ string, titles []string, overwrite bool) ([]PromoteResult, error) {
	if typ == "" {
		return nil, fmt.Errorf("%w: type is required", apperr.ErrInvalid)
	}
	pending, err := s.Pending(ctx, typ)
	if err != nil {
		return nil, err
	}
	var out []PromoteResult
	for _, p := range pending {
		if len(titles) > 0 && !slices.Contains(titles, p.Title) {
			continue
		}
		res := PromoteResult{Title: p.Title}
		req := contentservice.CreateRequest{
			Type:      typ,
			Title:     p.Title,
			Tags:      []string{p.Category},
			Overwrite: overwrite,
		}
		if p.Note != "" {
			req.Fields = map[string]any{"summary": p.Note}
		}
		created, err := s.entries.Create(ctx, req)
		if err == nil {
			res.Slug, res.Path = created.Slug, created.Path
			err = s.Remove(ctx, p.Filename, p.Category, p.Title)
		}
		if err != nil {
			s.logger.Warn("inbox: promote", slog.String("title", p.Title), slog.String("error", err.Error()))
			res.Err = err
		}
		out = append(out, res)
	}
	return out, nil
}

func isListFile(v any) error {
	name, _ := v.(string)
	if strings.Contains(name, "/") || !slices.Contains(listExts, path.Ext(name)) {
		return errors.New("must be a .yaml or .yml file in the inbox")
	}
	return nil
}

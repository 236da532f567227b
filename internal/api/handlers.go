package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/things/internal/apperr"
	"github.com/starford/things/internal/content"
	"github.com/starford/things/internal/contentservice"
	"github.com/starford/things/internal/inbox"
	"github.com/starford/things/internal/index"
	"github.com/starford/things/internal/models"
	"github.com/starford/things/internal/storage"
)

// Handler holds API route handlers.
type Handler struct {
	resolver *content.Resolver
	entries  *contentservice.Service
	inbox    *inbox.Service
	index    index.ItemIndex
	logger   *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		resolver: d.Resolver,
		entries:  d.Entries,
		inbox:    d.Inbox,
		index:    d.Index,
		logger:   logger,
	}
}

// contentPath extracts the path after /api/content/. Encoded slashes
// (movies%2Fheat) are accepted.
func contentPath(r *http.Request) string {
	raw := strings.Trim(chi.URLParam(r, "*"), "/")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListInbox handles GET /api/inbox.
//
//	@Summary		List every inbox file, parsed
//	@Tags			inbox
//	@Produce		json
//	@Success		200	{array}	InboxFile
//	@Router			/inbox [get]
func (h *Handler) ListInbox(w http.ResponseWriter, r *http.Request) {
	files, err := h.inbox.List(r.Context())
	if err != nil {
		writeError(w, h.logger, "list inbox", err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// DeleteInboxEntry handles POST /api/inbox/delete.
//
//	@Summary		Remove one entry from an inbox file
//	@Tags			inbox
//	@Accept			json
//	@Produce		json
//	@Param			body	body		DeleteInboxRequest	true	"Entry to remove"
//	@Success		200		{object}	SuccessResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/inbox/delete [post]
func (h *Handler) DeleteInboxEntry(w http.ResponseWriter, r *http.Request) {
	var req DeleteInboxRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.inbox.Remove(r.Context(), req.Filename, req.Category, req.Title); err != nil {
		writeError(w, h.logger, "delete inbox entry", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Filename: req.Filename})
}

// AddInboxEntry handles POST /api/inbox/add.
//
//	@Summary		Quick-add an entry to a type's inbox
//	@Tags			inbox
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AddInboxRequest	true	"Entry to add"
//	@Success		201		{object}	SuccessResponse
//	@Failure		400		{object}	errResponse
//	@Router			/inbox/add [post]
func (h *Handler) AddInboxEntry(w http.ResponseWriter, r *http.Request) {
	var req AddInboxRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	name, err := h.inbox.Add(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, "add inbox entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, SuccessResponse{Success: true, Filename: name})
}

// CreateEntry handles POST /api/content/create.
//
// The body is {type, title, slug?, tags?, ...fields}; unknown keys become
// front-matter fields.
//
//	@Summary		Create a structured content file
//	@Tags			content
//	@Accept			json
//	@Produce		json
//	@Success		201	{object}	SuccessResponse
//	@Failure		400	{object}	errResponse
//	@Failure		409	{object}	errResponse
//	@Router			/content/create [post]
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if !decodeJSON(w, r, &body) {
		return
	}
	req, err := createRequest(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if req.Type == "" || req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("missing type or title"))
		return
	}
	res, err := h.entries.Create(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, "create entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, SuccessResponse{Success: true, Path: res.Path, Slug: res.Slug})
}

func createRequest(body map[string]any) (contentservice.CreateRequest, error) {
	var req contentservice.CreateRequest
	str := func(key string) (string, error) {
		v, ok := body[key]
		delete(body, key)
		if !ok || v == nil {
			return "", nil
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("%s must be a string", key)
		}
		return strings.TrimSpace(s), nil
	}
	var err error
	if req.Type, err = str("type"); err != nil {
		return req, err
	}
	if req.Title, err = str("title"); err != nil {
		return req, err
	}
	if req.Slug, err = str("slug"); err != nil {
		return req, err
	}
	switch tags := body["tags"].(type) {
	case nil:
	case string:
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				req.Tags = append(req.Tags, t)
			}
		}
	case []any:
		for _, t := range tags {
			s, ok := t.(string)
			if !ok {
				return req, fmt.Errorf("tags must be strings")
			}
			req.Tags = append(req.Tags, s)
		}
	default:
		return req, fmt.Errorf("tags must be a list or a comma separated string")
	}
	delete(body, "tags")
	req.Fields = body
	return req, nil
}

// ListTypes handles GET /api/content.
//
//	@Summary		List content type directories
//	@Tags			content
//	@Produce		json
//	@Success		200	{array}	string
//	@Router			/content [get]
func (h *Handler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.entries.Types(r.Context())
	if err != nil {
		writeError(w, h.logger, "list types", err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

// GetContent handles GET /api/content/*. A directory lists its entries
// recursively; a "type/slug" path returns that entry.
//
//	@Summary		List a content directory or fetch one entry
//	@Tags			content
//	@Produce		json
//	@Param			path	path		string	true	"Type directory or type/slug"
//	@Success		200		{object}	EntryDetail
//	@Failure		404		{object}	errResponse
//	@Router			/content/{path} [get]
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	rel := contentPath(r)
	kind, err := h.entries.Resolve(rel)
	if err != nil {
		writeError(w, h.logger, "resolve content path", err)
		return
	}
	switch kind {
	case storage.KindDir:
		entries, err := h.entries.ListEntries(r.Context(), rel)
		if err != nil {
			writeError(w, h.logger, "list entries", err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	case storage.KindFile:
		typ, slug, _ := strings.Cut(rel, "/")
		d, err := h.entries.GetEntry(r.Context(), typ, slug)
		if err != nil {
			writeError(w, h.logger, "get entry", err)
			return
		}
		if d.Frontmatter == nil {
			writeJSON(w, http.StatusOK, map[string]string{"content": d.Body})
			return
		}
		writeJSON(w, http.StatusOK, d)
	default:
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	}
}

// UpdateEntry handles POST /api/content/*.
//
//	@Summary		Overwrite the front-matter and body of an entry
//	@Tags			content
//	@Accept			json
//	@Produce		json
//	@Param			path	path		string				true	"type/slug"
//	@Param			body	body		UpdateEntryRequest	true	"New content"
//	@Success		200		{object}	SuccessResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/content/{path} [post]
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	rel := contentPath(r)
	kind, err := h.entries.Resolve(rel)
	if err != nil {
		writeError(w, h.logger, "resolve content path", err)
		return
	}
	if kind != storage.KindFile {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	var req UpdateEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Frontmatter == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("frontmatter is required"))
		return
	}
	typ, slug, _ := strings.Cut(rel, "/")
	if err := h.entries.Update(r.Context(), typ, slug, req.Frontmatter, req.Body); err != nil {
		writeError(w, h.logger, "update entry", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Path: rel})
}

// ListItems handles GET /api/items/{type}.
//
//	@Summary		Merged catalog of one content type
//	@Tags			items
//	@Produce		json
//	@Param			type	path		string	true	"Content type"
//	@Param			view	query		string	false	"View"	Enums(merged, grouped, recent)
//	@Success		200		{object}	ItemsResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/items/{type} [get]
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	typ := chi.URLParam(r, "type")
	if !h.resolver.HasType(typ) {
		writeJSON(w, http.StatusNotFound, errorBody("unknown content type"))
		return
	}
	view := r.URL.Query().Get("view")
	if view == "" {
		view = "merged"
	}
	items, err := h.resolver.Items(r.Context(), typ)
	if err != nil {
		writeError(w, h.logger, "list items", err)
		return
	}
	resp := ItemsResponse{Type: typ, View: view}
	switch view {
	case "merged":
		resp.Items = items
	case "recent":
		resp.Items = content.SortByRecency(items)
	case "grouped":
		resp.Groups = content.GroupByCategory(items)
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("view must be merged, grouped or recent"))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListThoughts handles GET /api/thoughts.
//
//	@Summary		Thoughts across the catalog, newest first
//	@Tags			thoughts
//	@Produce		json
//	@Param			filter	query		string	false	"type or type/parent"
//	@Success		200		{object}	ThoughtsResponse
//	@Failure		404		{object}	errResponse
//	@Router			/thoughts [get]
func (h *Handler) ListThoughts(w http.ResponseWriter, r *http.Request) {
	thoughts, err := h.resolver.Thoughts(r.Context(), r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, h.logger, "list thoughts", err)
		return
	}
	if thoughts == nil {
		thoughts = []models.ThoughtEntry{}
	}
	writeJSON(w, http.StatusOK, ThoughtsResponse{Thoughts: thoughts})
}

// AddThought handles POST /api/thoughts.
//
//	@Summary		Record a timestamped thought on an entry
//	@Tags			thoughts
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AddThoughtRequest	true	"Thought"
//	@Success		201		{object}	SuccessResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/thoughts [post]
func (h *Handler) AddThought(w http.ResponseWriter, r *http.Request) {
	var req AddThoughtRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Type == "" || req.Slug == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("type and slug are required"))
		return
	}
	ts, err := h.entries.AddThought(r.Context(), req.Type, req.Slug, req.Text, req.Extra)
	if err != nil {
		writeError(w, h.logger, "add thought", err)
		return
	}
	writeJSON(w, http.StatusCreated, SuccessResponse{Success: true, Slug: req.Slug, Timestamp: ts})
}

// Search handles GET /api/search.
//
//	@Summary		Search the catalog index
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if h.index == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("search index is disabled"))
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, h.logger, "search", fmt.Errorf("%w: query parameter 'q' is required", apperr.ErrInvalid))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.index.Search(q, limit)
	if err != nil {
		writeError(w, h.logger, "search", err)
		return
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

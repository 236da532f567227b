package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/things/internal/content"
	"github.com/starford/things/internal/contentservice"
	"github.com/starford/things/internal/inbox"
	"github.com/starford/things/internal/index"
)

// Deps are the collaborators the API is served from. Index and Events are
// optional; without them /search answers 503 and /events is not mounted.
type Deps struct {
	Resolver *content.Resolver
	Entries  *contentservice.Service
	Inbox    *inbox.Service
	Index    index.ItemIndex
	Events   http.Handler
	Logger   *slog.Logger
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(d Deps) chi.Router {
	h := NewHandler(d)

	r := chi.NewRouter()
	r.Use(Recoverer(h.logger))

	// Inbox.
	r.Get("/inbox", h.ListInbox)
	r.Post("/inbox/delete", h.DeleteInboxEntry)
	r.Post("/inbox/add", h.AddInboxEntry)

	// Structured content files.
	r.Post("/content/create", h.CreateEntry)
	r.Get("/content", h.ListTypes)
	r.Get("/content/*", h.GetContent)
	r.Post("/content/*", h.UpdateEntry)

	// Merged catalog views.
	r.Get("/items/{type}", h.ListItems)
	r.Get("/thoughts", h.ListThoughts)
	r.Post("/thoughts", h.AddThought)

	// Search.
	r.Get("/search", h.Search)

	// SSE endpoint.
	if d.Events != nil {
		r.Get("/events", d.Events.ServeHTTP)
	}

	return r
}

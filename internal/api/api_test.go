package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/things/internal/index"
	"github.com/starford/things/internal/sse"
	"github.com/starford/things/internal/testutil"
)

// testEnv sets up a temp site, SQLite index and router for testing.
func testEnv(t *testing.T) (*testutil.Site, *index.DB, http.Handler) {
	t.Helper()
	site := testutil.TestSite(t)
	db := testutil.TestDB(t)
	router := NewRouter(Deps{
		Resolver: site.Resolver,
		Entries:  site.Entries,
		Inbox:    site.Inbox,
		Index:    db,
		Logger:   site.Logger,
	})
	return site, db, router
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func TestCreateAndGetEntry(t *testing.T) {
	site, _, router := testEnv(t)

	w := do(t, router, http.MethodPost, "/content/create", map[string]any{
		"type":  "shows",
		"title": "The Wire",
		"tags":  []string{"drama"},
		"url":   "https://example.com/wire",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var created SuccessResponse
	decode(t, w, &created)
	if !created.Success || created.Slug != "the-wire" {
		t.Errorf("create response = %+v", created)
	}
	data, err := os.ReadFile(filepath.Join(site.ContentDir, "shows", "the-wire.mdx"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "tags: [drama]") {
		t.Errorf("tags not written inline:\n%s", data)
	}

	w = do(t, router, http.MethodGet, "/content/shows/the-wire", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var detail EntryDetail
	decode(t, w, &detail)
	if detail.Frontmatter["title"] != "The Wire" || detail.Frontmatter["url"] != "https://example.com/wire" {
		t.Errorf("frontmatter = %+v", detail.Frontmatter)
	}
}

func TestCreateDuplicate(t *testing.T) {
	_, _, router := testEnv(t)

	body := map[string]any{"type": "movies", "title": "Heat"}
	if w := do(t, router, http.MethodPost, "/content/create", body); w.Code != http.StatusCreated {
		t.Fatalf("first create = %d", w.Code)
	}
	w := do(t, router, http.MethodPost, "/content/create", body)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate create = %d, want 409", w.Code)
	}
}

func TestCreate_BadRequests(t *testing.T) {
	_, _, router := testEnv(t)

	cases := []any{
		map[string]any{"type": "movies"},
		map[string]any{"title": "Heat"},
		map[string]any{"type": "movies", "title": 3},
		map[string]any{"type": "movies", "title": "Heat", "slug": "Not A Slug"},
		map[string]any{"type": "books", "title": "Dune"},
		"{not json",
	}
	for _, body := range cases {
		w := do(t, router, http.MethodPost, "/content/create", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("create %v = %d, want 400", body, w.Code)
		}
		var e errResponse
		decode(t, w, &e)
		if e.Error == "" {
			t.Errorf("create %v: empty error body", body)
		}
	}
}

func TestListTypesAndEntries(t *testing.T) {
	site, _, router := testEnv(t)
	site.WriteContent(t, "movies/heat.mdx", "---\ntitle: Heat\n---\n")
	site.WriteContent(t, "movies/nolan/tenet.mdx", "---\ntitle: Tenet\n---\n")
	site.WriteContent(t, "shows/list.yaml", "drama: []\n")

	w := do(t, router, http.MethodGet, "/content", nil)
	var types []string
	decode(t, w, &types)
	if len(types) != 2 || types[0] != "movies" || types[1] != "shows" {
		t.Errorf("types = %v", types)
	}

	w = do(t, router, http.MethodGet, "/content/movies", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var entries []map[string]any
	decode(t, w, &entries)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", entries)
	}
	slugs := map[any]bool{}
	for _, e := range entries {
		slugs[e["slug"]] = true
	}
	if !slugs["heat"] || !slugs["nolan/tenet"] {
		t.Errorf("slugs = %v", slugs)
	}
}

func TestGetEntry_NotFoundAndRaw(t *testing.T) {
	site, _, router := testEnv(t)
	site.WriteContent(t, "movies/raw.mdx", "no front-matter\n")

	if w := do(t, router, http.MethodGet, "/content/movies/nope", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing entry = %d, want 404", w.Code)
	}

	w := do(t, router, http.MethodGet, "/content/movies/raw", nil)
	var raw map[string]string
	decode(t, w, &raw)
	if raw["content"] != "no front-matter\n" {
		t.Errorf("raw response = %+v", raw)
	}
}

func TestUpdateEntry(t *testing.T) {
	site, _, router := testEnv(t)
	site.WriteContent(t, "movies/heat.mdx", "---\ntitle: Heat\n---\nold body\n")

	w := do(t, router, http.MethodPost, "/content/movies/heat", UpdateEntryRequest{
		Frontmatter: map[string]any{"title": "Heat", "created": 1700000000, "tags": []string{"crime"}},
		Body:        "new body\n",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body.String())
	}
	data, _ := os.ReadFile(filepath.Join(site.ContentDir, "movies", "heat.mdx"))
	want := "---\ntitle: Heat\ncreated: 1700000000\ntags: [crime]\n---\nnew body\n"
	if string(data) != want {
		t.Errorf("file =\n%q\nwant\n%q", data, want)
	}

	if w := do(t, router, http.MethodPost, "/content/movies/nope", UpdateEntryRequest{Frontmatter: map[string]any{}}); w.Code != http.StatusNotFound {
		t.Errorf("update missing = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/content/movies/heat", map[string]any{"body": "x"}); w.Code != http.StatusBadRequest {
		t.Errorf("update without frontmatter = %d, want 400", w.Code)
	}
}

func TestInboxEndpoints(t *testing.T) {
	site, _, router := testEnv(t)
	site.WriteInbox(t, "shows.yaml", "drama:\n  - The Wire\n")

	w := do(t, router, http.MethodGet, "/inbox", nil)
	var files []InboxFile
	decode(t, w, &files)
	if len(files) != 1 || files[0].Filename != "shows.yaml" {
		t.Fatalf("inbox = %+v", files)
	}

	w = do(t, router, http.MethodPost, "/inbox/add", AddInboxRequest{Type: "shows", Category: "comedy", Title: "Veep", Note: "selina"})
	if w.Code != http.StatusCreated {
		t.Fatalf("add status = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodPost, "/inbox/delete", DeleteInboxRequest{Filename: "shows.yaml", Category: "drama", Title: "The Wire"})
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body = %s", w.Code, w.Body.String())
	}
	data, _ := os.ReadFile(filepath.Join(site.InboxDir, "shows.yaml"))
	if strings.Contains(string(data), "The Wire") || !strings.Contains(string(data), "Veep") {
		t.Errorf("inbox file:\n%s", data)
	}

	w = do(t, router, http.MethodPost, "/inbox/delete", DeleteInboxRequest{Filename: "shows.yaml", Category: "comedy", Title: "Veep"})
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	if _, err := os.Stat(filepath.Join(site.InboxDir, "shows.yaml")); !os.IsNotExist(err) {
		t.Error("emptied inbox file should be deleted")
	}

	if w := do(t, router, http.MethodPost, "/inbox/delete", DeleteInboxRequest{Filename: "shows.yaml"}); w.Code != http.StatusNotFound {
		t.Errorf("delete from missing file = %d, want 404", w.Code)
	}
}

func TestListItemsViews(t *testing.T) {
	site, _, router := testEnv(t)
	site.WriteContent(t, "shows/the-wire.mdx", "---\ntitle: The Wire\ncreated: 100\n---\n")
	site.WriteContent(t, "shows/list.yaml", "comedy:\n  - Veep\n")
	site.WriteInbox(t, "shows.yaml", "drama:\n  - The Wire: best show ever\n")

	w := do(t, router, http.MethodGet, "/items/shows?view=grouped", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("grouped status = %d", w.Code)
	}
	var grouped ItemsResponse
	decode(t, w, &grouped)
	if len(grouped.Groups) != 2 || grouped.Groups[0].Name != "comedy" || grouped.Groups[1].Name != "drama" {
		t.Errorf("groups = %+v", grouped.Groups)
	}
	wire := grouped.Groups[1].Items[0]
	if wire.Note != "best show ever" || !wire.HasPage {
		t.Errorf("merged item = %+v", wire)
	}

	w = do(t, router, http.MethodGet, "/items/shows?view=recent", nil)
	var recent ItemsResponse
	decode(t, w, &recent)
	if len(recent.Items) != 2 || recent.Items[0].Slug != "the-wire" {
		t.Errorf("recent = %+v", recent.Items)
	}

	if w := do(t, router, http.MethodGet, "/items/shows?view=bogus", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad view = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/items/books", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown type = %d, want 404", w.Code)
	}
}

func TestThoughtsEndpoints(t *testing.T) {
	site, _, router := testEnv(t)
	site.WriteContent(t, "movies/heat.mdx", "---\ntitle: Heat\nthoughts:\n  - 1000: first\n---\n")

	w := do(t, router, http.MethodPost, "/thoughts", AddThoughtRequest{Type: "movies", Slug: "heat", Text: "second", Extra: map[string]string{"where": "cinema"}})
	if w.Code != http.StatusCreated {
		t.Fatalf("add thought status = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodGet, "/thoughts?filter=movies", nil)
	var resp ThoughtsResponse
	decode(t, w, &resp)
	if len(resp.Thoughts) != 2 {
		t.Fatalf("thoughts = %+v", resp.Thoughts)
	}
	if resp.Thoughts[0].Content != "second" || resp.Thoughts[1].Timestamp != "1000" {
		t.Errorf("order = %+v", resp.Thoughts)
	}

	if w := do(t, router, http.MethodPost, "/thoughts", AddThoughtRequest{Type: "movies", Slug: "nope", Text: "x"}); w.Code != http.StatusNotFound {
		t.Errorf("thought on missing entry = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/thoughts?filter=books", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown filter type = %d, want 404", w.Code)
	}
}

func TestThoughtsEndpoint_NestedContent(t *testing.T) {
	site, _, router := testEnv(t)
	site.WriteContent(t, "movies/heat.mdx", "---\ntitle: Heat\nthoughts:\n  - 1000: {1: rewatch}\n---\n")

	w := do(t, router, http.MethodGet, "/thoughts", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Thoughts []struct {
			Timestamp string         `json:"timestamp"`
			Content   map[string]any `json:"content"`
		} `json:"thoughts"`
	}
	decode(t, w, &resp)
	if len(resp.Thoughts) != 1 || resp.Thoughts[0].Content["1"] != "rewatch" {
		t.Errorf("thoughts = %+v", resp.Thoughts)
	}
}

func TestWriteJSON_Unencodable(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSON(w, http.StatusOK, map[string]any{"bad": make(chan int)})
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "failed to encode response") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestSearchEndpoint(t *testing.T) {
	site, db, router := testEnv(t)
	site.WriteInbox(t, "tools.yaml", "cli:\n  - ripgrep: fast grep\n")
	if _, err := index.Sync(context.Background(), db, site.Resolver, site.Logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	w := do(t, router, http.MethodGet, "/search?q=ripgrep", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d", w.Code)
	}
	var resp SearchResponse
	decode(t, w, &resp)
	if len(resp.Results) != 1 || resp.Results[0].Slug != "ripgrep" || resp.Results[0].Type != "tools" {
		t.Errorf("results = %+v", resp.Results)
	}

	if w := do(t, router, http.MethodGet, "/search", nil); w.Code != http.StatusBadRequest {
		t.Errorf("missing query = %d, want 400", w.Code)
	}
}

func TestSearch_NoIndex(t *testing.T) {
	site := testutil.TestSite(t)
	router := NewRouter(Deps{Resolver: site.Resolver, Entries: site.Entries, Inbox: site.Inbox, Logger: site.Logger})
	if w := do(t, router, http.MethodGet, "/search?q=x", nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("search without index = %d, want 503", w.Code)
	}
}

func TestRecoverer(t *testing.T) {
	site := testutil.TestSite(t)
	h := Recoverer(site.Logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	w := do(t, h, http.MethodGet, "/", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var e errResponse
	decode(t, w, &e)
	if e.Error != "boom" {
		t.Errorf("error = %q, want boom", e.Error)
	}
}

func TestSSEEvents(t *testing.T) {
	site := testutil.TestSite(t)
	broker := sse.NewBroker(100 * time.Millisecond)
	defer broker.Close()
	router := NewRouter(Deps{
		Resolver: site.Resolver,
		Entries:  site.Entries,
		Inbox:    site.Inbox,
		Events:   broker,
		Logger:   site.Logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		router.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	broker.PublishItemEvent("created", "movies", "heat")
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), "event: item.created") {
		t.Errorf("stream missing event: %q", w.Body.String())
	}
}

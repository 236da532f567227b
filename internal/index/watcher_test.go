package index

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

type recorder struct {
	mu      sync.Mutex
	changes []Change
}

func (r *recorder) record(c Change) {
	r.mu.Lock()
	r.changes = append(r.changes, c)
	r.mu.Unlock()
}

func (r *recorder) has(want Change) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.changes {
		if c == want {
			return true
		}
	}
	return false
}

func TestWatcher_NewFileIndexed(t *testing.T) {
	contentDir, _, r := testSite(t)
	db := testDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &recorder{}
	go Watch(ctx, db, r, quietLogger(), rec.record)
	time.Sleep(100 * time.Millisecond)

	writeFile(t, filepath.Join(contentDir, "movies", "heat.mdx"), "---\ntitle: Heat\n---\n")

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		n, _ := db.Count("movies")
		return n == 1
	}, "new file not indexed by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		return rec.has(Change{Kind: Created, Type: "movies", Slug: "heat"})
	}, "expected created movies/heat callback")
}

func TestWatcher_NestedDirWatched(t *testing.T) {
	contentDir, _, r := testSite(t)
	db := testDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, r, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	subDir := filepath.Join(contentDir, "movies", "nolan")
	_ = os.MkdirAll(subDir, 0o755)
	time.Sleep(100 * time.Millisecond)

	writeFile(t, filepath.Join(subDir, "tenet.mdx"), "---\ntitle: Tenet\n---\n")

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		res, _ := db.Search("Tenet", 10)
		return len(res) == 1 && res[0].Slug == "nolan/tenet"
	}, "file in new subdir not indexed by watcher")
}

func TestWatcher_InboxChange(t *testing.T) {
	_, inboxDir, r := testSite(t)
	db := testDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &recorder{}
	go Watch(ctx, db, r, quietLogger(), rec.record)
	time.Sleep(100 * time.Millisecond)

	writeFile(t, filepath.Join(inboxDir, "shows.yaml"), "drama:\n  - The Wire\n")

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has(Change{Kind: Inbox, Type: "shows"}) &&
			rec.has(Change{Kind: Created, Type: "shows", Slug: "the-wire"})
	}, "inbox change not reported")
}

func TestWatcher_DeleteRemovesFromIndex(t *testing.T) {
	contentDir, _, r := testSite(t)
	db := testDB(t)
	path := filepath.Join(contentDir, "movies", "heat.mdx")
	writeFile(t, path, "---\ntitle: Heat\n---\n")
	if _, err := Sync(context.Background(), db, r, quietLogger()); err != nil {
		t.Fatal(err)
	}
	if n, _ := db.Count("movies"); n != 1 {
		t.Fatal("precondition: file should be indexed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, db, r, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(path)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		n, _ := db.Count("movies")
		return n == 0
	}, "deleted file still in index")
}

func TestClassify(t *testing.T) {
	content := filepath.Join("/site", "content")
	inbox := filepath.Join("/site", "inbox")
	tests := []struct {
		path  string
		dir   bool
		typ   string
		inbox bool
		ok    bool
	}{
		{filepath.Join(content, "movies", "heat.mdx"), false, "movies", false, true},
		{filepath.Join(content, "movies", "nolan", "tenet.mdx"), false, "movies", false, true},
		{filepath.Join(content, "movies"), true, "movies", false, true},
		{filepath.Join(content, "stray.yaml"), false, "", false, false},
		{filepath.Join(inbox, "shows.yaml"), false, "shows", true, true},
		{filepath.Join(inbox, "nested", "x.yaml"), false, "", false, false},
		{filepath.Join("/elsewhere", "x.mdx"), false, "", false, false},
	}
	for _, tt := range tests {
		typ, in, ok := classify(content, inbox, tt.path, tt.dir)
		if typ != tt.typ || in != tt.inbox || ok != tt.ok {
			t.Errorf("classify(%s) = %q, %v, %v; want %q, %v, %v", tt.path, typ, in, ok, tt.typ, tt.inbox, tt.ok)
		}
	}
}

package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func tempRoot(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	s, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return s
}

func TestWriteAndRead(t *testing.T) {
	s := tempRoot(t)
	content := []byte("---\ntitle: Hello\n---\nWorld\n")
	if err := s.Write("movies/hello.mdx", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("movies/hello.mdx")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestReadMissingIsNotExist(t *testing.T) {
	s := tempRoot(t)
	_, err := s.Read("nope.mdx")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err = %v, want fs.ErrNotExist", err)
	}
}

func TestDelete(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("del.yaml", []byte("a: [b]"))
	if err := s.Delete("del.yaml"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del.yaml"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestWalk(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("shows/a.mdx", []byte("a"))
	_ = s.Write("shows/sub/b.mdx", []byte("b"))
	_ = s.Write("shows/list.yaml", []byte("x: []"))
	_ = s.Write("movies/c.mdx", []byte("c"))

	items, err := s.Walk("shows", ".mdx")
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Path != "shows/a.mdx" || items[1].Path != "shows/sub/b.mdx" {
		t.Errorf("paths = %q, %q", items[0].Path, items[1].Path)
	}
	if items[0].Checksum == "" {
		t.Error("expected checksum")
	}
}

func TestWalk_MissingDir(t *testing.T) {
	s := tempRoot(t)
	items, err := s.Walk("tools", ".mdx")
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("len = %d, want 0", len(items))
	}
}

func TestFilesAndDirs(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("shows/b.yaml", []byte("x: []"))
	_ = s.Write("shows/a.yml", []byte("x: []"))
	_ = s.Write("shows/c.mdx", []byte("c"))
	_ = s.Write("shows/nested/d.yaml", []byte("x: []"))
	_ = s.Write("movies/e.mdx", []byte("e"))

	files, err := s.Files("shows", ".yaml", ".yml")
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(files) != 2 || files[0] != "a.yml" || files[1] != "b.yaml" {
		t.Errorf("files = %v, want [a.yml b.yaml]", files)
	}

	dirs, err := s.Dirs("")
	if err != nil {
		t.Fatalf("Dirs: %v", err)
	}
	if len(dirs) != 2 || dirs[0] != "movies" || dirs[1] != "shows" {
		t.Errorf("dirs = %v, want [movies shows]", dirs)
	}

	missing, err := s.Files("people", ".yaml")
	if err != nil || missing != nil {
		t.Errorf("Files(missing) = %v, %v", missing, err)
	}
}

func TestKind(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("shows/the-wire.mdx", []byte("x"))

	cases := map[string]Kind{
		"shows":               KindDir,
		"shows/the-wire.mdx":  KindFile,
		"shows/the-wire":      KindMissing,
		"movies/anything.mdx": KindMissing,
	}
	for path, want := range cases {
		got, err := s.Kind(path)
		if err != nil {
			t.Fatalf("Kind(%q): %v", path, err)
		}
		if got != want {
			t.Errorf("Kind(%q) = %v, want %v", path, got, want)
		}
	}
	if _, err := s.Kind("../outside"); err == nil {
		t.Error("expected error for traversal")
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempRoot(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.mdx",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteNoCorruption(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("atomic.mdx", []byte("original content"))

	updated := []byte("updated content")
	if err := s.Write("atomic.mdx", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.mdx")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.root, ".things-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "things-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}

// Package storage defines the flat-file abstraction that content and inbox
// files are read from and written to.
package storage

import "github.com/starford/things/internal/models"

// Kind is the pre-resolved type of a path.
type Kind int

// Path kinds returned by Provider.Kind.
const (
	KindMissing Kind = iota
	KindFile
	KindDir
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	default:
		return "missing"
	}
}

// Provider is the interface for file operations relative to a root directory.
type Provider interface {
	// Walk returns metadata for every file under dir whose name ends with ext.
	// A missing dir yields no files and no error.
	Walk(dir, ext string) ([]models.FileMeta, error)
	// Files returns the names of the regular files directly inside dir whose
	// extension is one of exts, sorted. A missing dir yields no files.
	Files(dir string, exts ...string) ([]string, error)
	// Dirs returns the names of the directories directly inside dir, sorted.
	Dirs(dir string) ([]string, error)
	// Kind reports whether path is a file, a directory or missing.
	Kind(path string) (Kind, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Root returns the absolute root directory.
	Root() string
}

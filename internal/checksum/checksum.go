// Package checksum computes content digests for change detection.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Set digests a sequence of named parts into one checksum. Adding the same
// parts in the same order always yields the same result; renaming a part,
// changing its digest or reordering the parts changes it.
type Set struct {
	h hash.Hash
	n int
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{h: sha256.New()}
}

// Add records a part whose digest is already known.
func (s *Set) Add(name, digest string) {
	// NUL cannot appear in a path or a hex digest.
	_, _ = io.WriteString(s.h, name+"\x00"+digest+"\x00")
	s.n++
}

// AddData records a part by the digest of its content.
func (s *Set) AddData(name string, data []byte) {
	s.Add(name, Sum(data))
}

// Len returns the number of parts added.
func (s *Set) Len() int { return s.n }

// Sum returns the hex-encoded digest of every part added so far.
func (s *Set) Sum() string {
	return hex.EncodeToString(s.h.Sum(nil))
}

// Package slugs converts between human titles and URL-safe slugs.
//
// The two directions are not inverses: FromTitle drops punctuation and case,
// so ToTitle can only approximate the original title. "House of Cards (US)"
// becomes "house-of-cards-us", which comes back as "House of Cards Us".
package slugs

import (
	"strings"
	"unicode"

	goslug "github.com/gosimple/slug"
)

const strippedPunctuation = ",.!?;'\"[]{}()/<>@&*^%$#"

// minorWords stay lowercase when they are not the first word of a title.
var minorWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "as": {}, "at": {}, "but": {}, "by": {}, "for": {},
	"in": {}, "nor": {}, "of": {}, "on": {}, "or": {}, "the": {}, "up": {},
}

// FromTitle derives a slug from a title: punctuation from a fixed set is
// removed, the result is trimmed and lowercased, and every run of whitespace
// becomes a single hyphen. An empty title yields an empty slug.
func FromTitle(title string) string {
	if title == "" {
		return ""
	}
	stripped := strings.Map(func(r rune) rune {
		if strings.ContainsRune(strippedPunctuation, r) {
			return -1
		}
		return r
	}, title)
	stripped = strings.ToLower(strings.TrimSpace(stripped))
	return strings.Join(strings.FieldsFunc(stripped, unicode.IsSpace), "-")
}

// ToTitle approximates a title from a slug. Every word is capitalised except
// minor words after the first position.
func ToTitle(slug string) string {
	if slug == "" {
		return ""
	}
	words := strings.Split(strings.ToLower(slug), "-")
	for i, word := range words {
		if word == "" {
			continue
		}
		if _, minor := minorWords[word]; minor && i > 0 {
			continue
		}
		words[i] = capitalize(word)
	}
	return strings.Join(words, " ")
}

// Valid reports whether a user supplied slug is acceptable as a file name.
// Nested slugs ("sub/slug") are valid when every segment is.
func Valid(slug string) bool {
	if slug == "" {
		return false
	}
	for _, segment := range strings.Split(slug, "/") {
		if !goslug.IsSlug(segment) {
			return false
		}
	}
	return true
}

func capitalize(word string) string {
	r := []rune(word)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

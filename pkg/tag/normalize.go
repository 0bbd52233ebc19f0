// Package tag turns raw text into normalized, content-addressed tags.
//
// A tag is never allocated: its identifier is derived from the normalized text
// with a fixed hash, so the same word always maps to the same tag in every
// process and on every machine.
package tag

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize maps raw tag text to its canonical form: surrounding whitespace is
// trimmed, inner whitespace runs collapse to a single space, letters are
// lowercased and diacritical marks are stripped ("Café" -> "cafe").
//
// Normalize never fails. An empty result means the input held no tag at all
// and the caller should reject it.
func Normalize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	// transform.Chain keeps internal state, so each call builds its own.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripMarks, strings.ToLower(raw))
	if err != nil {
		stripped = raw
	}

	// Marks are stripped before collapsing so a token made only of marks
	// cannot leave a double space behind.
	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}

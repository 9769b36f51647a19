// Package namekey canonicalizes free-text display names into lookup keys.
//
// Keys are insensitive to case, diacritics and whitespace layout, so
// "José Rizal", "jose rizal" and "  JOSE   RIZAL " all map to "jose rizal".
// The same function must be used both when building a keyed index and when
// looking a name up in it.
package namekey

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize returns the canonical key for a display name.
// Empty or whitespace-only input yields an empty key.
func Normalize(displayName string) string {
	collapsed := strings.Join(strings.Fields(displayName), " ")
	if collapsed == "" {
		return ""
	}

	// Transformers keep internal state, so a fresh chain is built per call.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripMarks, collapsed)
	if err != nil {
		stripped = collapsed
	}

	return cases.Lower(language.Und).String(stripped)
}

// Equal reports whether two display names share a key.
// Two empty names are never equal: an empty key means "no name supplied".
func Equal(a, b string) bool {
	ka := Normalize(a)
	return ka != "" && ka == Normalize(b)
}

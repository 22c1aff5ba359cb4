package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases, strips combining diacritical marks, and trims
// surrounding whitespace. Both sides of every comparison in the index go
// through this function.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		// Malformed input: fall back to the raw string rather than dropping it.
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

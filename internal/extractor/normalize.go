package extractor

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripDiacritics removes combining marks, so "Hermès" becomes "Hermes".
// Hangul syllables decompose and recompose unchanged.
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// foldForMatch prepares text for case and accent insensitive substring search
func foldForMatch(s string) string {
	return strings.ToLower(stripDiacritics(s))
}

// Package matching compares recognized values against caller-supplied expectations.
package matching

import (
	"strings"
	"unicode/utf8"

	"github.com/arbovm/levenshtein"
	"github.com/codycollier/wer"
)

// CertNumberSimilarity returns 1 - editDistance/maxLen on case-folded, trimmed values.
// Two empty values are identical; one empty value scores 0.
func CertNumberSimilarity(expected, actual string) float64 {
	e := strings.ToUpper(strings.TrimSpace(expected))
	a := strings.ToUpper(strings.TrimSpace(actual))

	maxLen := utf8.RuneCountInString(e)
	if n := utf8.RuneCountInString(a); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein.Distance(e, a))/float64(maxLen)
}

// CharacterErrorRate is the edit distance divided by the expected length in runes.
func CharacterErrorRate(expected, recognized string) float64 {
	e := normalizeSpace(expected)
	r := normalizeSpace(recognized)
	n := utf8.RuneCountInString(e)
	if n == 0 {
		if r == "" {
			return 0
		}
		return 1
	}
	return float64(levenshtein.Distance(e, r)) / float64(n)
}

// WordErrorRate compares whitespace-separated, lower-cased words.
func WordErrorRate(expected, recognized string) float64 {
	ref := strings.Fields(strings.ToLower(expected))
	cand := strings.Fields(strings.ToLower(recognized))
	if len(ref) == 0 {
		if len(cand) == 0 {
			return 0
		}
		return 1
	}
	rate, _ := wer.WER(ref, cand)
	return rate
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

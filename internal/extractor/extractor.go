// Package extractor parses recognized certificate text into structured fields.
package extractor

import (
	"strings"
	"unicode"

	"github.com/anime-shed/coa-verifier-go/pkg/models"
)

// Extractor is stateless after construction and safe for concurrent use.
type Extractor struct {
	rules Rules
	// folded brand names, parallel to rules.Brands
	brandKeys []string
	keywords  map[string]struct{}
	localized []string
}

func New(rules Rules) *Extractor {
	e := &Extractor{
		rules:     rules,
		brandKeys: make([]string, len(rules.Brands)),
		keywords:  make(map[string]struct{}, len(rules.ModelKeywords)),
	}
	for i, b := range rules.Brands {
		e.brandKeys[i] = foldForMatch(b)
	}
	for _, k := range rules.ModelKeywords {
		k = strings.ToLower(k)
		e.keywords[k] = struct{}{}
		if !isASCII(k) {
			e.localized = append(e.localized, k)
		}
	}
	return e
}

// NewDefault builds an extractor over DefaultRules
func NewDefault() *Extractor {
	return New(DefaultRules())
}

// Extract returns every field it can find. Missing fields stay nil.
func (e *Extractor) Extract(text string) models.CertificateFields {
	var f models.CertificateFields

	if _, v, ok := FirstMatch(e.rules.CertNumber, text); ok {
		if v = keepCertChars(v); v != "" {
			f.CertNumber = &v
		}
	}
	if v, ok := e.brand(text); ok {
		f.Brand = &v
	}
	if v, ok := e.model(text); ok {
		f.Model = &v
	}
	if _, v, ok := FirstMatch(e.rules.Date, text); ok {
		f.Date = &v
	}
	if _, v, ok := FirstMatch(e.rules.Serial, text); ok {
		f.SerialNumber = &v
	}
	if _, v, ok := FirstMatch(e.rules.Issuer, text); ok {
		f.Issuer = &v
	}
	return f
}

// FirstMatch evaluates rules in order and reports the tag and value of the first hit.
func FirstMatch(rules []Rule, text string) (tag, value string, ok bool) {
	for _, r := range rules {
		for _, loc := range r.Pattern.FindAllStringSubmatchIndex(text, -1) {
			if r.Exclude != nil && r.Exclude.MatchString(linePrefix(text, loc[0])) {
				continue
			}
			v := text[loc[0]:loc[1]]
			if len(loc) > 2 {
				v = ""
				if loc[2] >= 0 {
					v = text[loc[2]:loc[3]]
				}
			}
			if v = strings.TrimSpace(v); v != "" {
				return r.Tag, v, true
			}
		}
	}
	return "", "", false
}

func linePrefix(text string, end int) string {
	prefix := text[:end]
	if i := strings.LastIndexByte(prefix, '\n'); i >= 0 {
		prefix = prefix[i+1:]
	}
	return prefix
}

func (e *Extractor) brand(text string) (string, bool) {
	folded := foldForMatch(text)
	for i, key := range e.brandKeys {
		if key != "" && strings.Contains(folded, key) {
			return stripDiacritics(e.rules.Brands[i]), true
		}
	}
	return "", false
}

func (e *Extractor) model(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		if !e.lineHasKeyword(lower) {
			continue
		}
		tokens := strings.FieldsFunc(line, func(r rune) bool {
			return unicode.IsSpace(r) || r == ':' || r == '：'
		})
		for i, tok := range tokens {
			if !e.isModelKeyword(tok) {
				continue
			}
			rest := tokens[i+1:]
			for len(rest) > 0 && isNumberLabel(rest[0]) {
				rest = rest[1:]
			}
			if value := strings.Join(rest, " "); value != "" {
				return value, true
			}
			break
		}
	}
	return "", false
}

// isModelKeyword accepts "Model", "Model#" and "Ref.". Non-ASCII keywords
// also match as a prefix, so "모델명" counts as "모델".
func (e *Extractor) isModelKeyword(tok string) bool {
	lower := strings.TrimRight(strings.ToLower(tok), "#.")
	if _, ok := e.keywords[lower]; ok {
		return true
	}
	for _, k := range e.localized {
		if strings.HasPrefix(lower, k) {
			return true
		}
	}
	return false
}

func isNumberLabel(tok string) bool {
	switch strings.ToLower(tok) {
	case "no", "no.", "number", "#", "nr.", "번호":
		return true
	}
	return false
}

func (e *Extractor) lineHasKeyword(lower string) bool {
	for k := range e.keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

func keepCertChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || (r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))) {
			return r
		}
		return -1
	}, s)
}

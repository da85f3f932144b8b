package extractor

import "regexp"

// Rule is one tagged matcher. Value is taken from capture group 1 when the
// pattern has one, otherwise from the whole match. A match is skipped when the
// text before it on the same line matches Exclude.
type Rule struct {
	Tag     string
	Pattern *regexp.Regexp
	Exclude *regexp.Regexp
}

// otherLabels precede "No."/"Number" labels that belong to some other field.
var otherLabels = regexp.MustCompile(`(?i)\b(?:serial|s/n|model|style|ref|reference|item|part|lot|article|order|invoice)\.?\s*$`)

// Rules is the full extraction table. Every list is evaluated top to bottom and the
// first rule that yields a value wins.
type Rules struct {
	CertNumber    []Rule
	Date          []Rule
	Serial        []Rule
	Issuer        []Rule
	Brands        []string
	ModelKeywords []string
}

// DefaultRules returns the English and Korean rule set.
func DefaultRules() Rules {
	return Rules{
		CertNumber: []Rule{
			{Tag: "structured", Pattern: regexp.MustCompile(`(?i)\bCERT-\d{4}-\d{6}\b`)},
			{Tag: "labelled-en", Pattern: regexp.MustCompile(`(?i)\bcert(?:ificate)?\s*(?:no\b\.?|number\b|#)\s*[:#]?\s*([A-Z0-9][A-Z0-9-]*)`)},
			{Tag: "labelled-ko", Pattern: regexp.MustCompile(`(?:인증서\s*번호|인증\s*번호|보증서\s*번호)\s*[:：]?\s*([A-Za-z0-9][A-Za-z0-9-]*)`)},
			{Tag: "labelled-generic", Pattern: regexp.MustCompile(`(?i)\b(?:no|number)\b\s*[.:#]\s*([A-Z0-9][A-Z0-9-]*)`), Exclude: otherLabels},
		},
		Date: []Rule{
			{Tag: "iso", Pattern: regexp.MustCompile(`\b\d{4}[-/.]\d{1,2}[-/.]\d{1,2}\b`)},
			{Tag: "day-first", Pattern: regexp.MustCompile(`\b\d{1,2}[-/.]\d{1,2}[-/.]\d{4}\b`)},
			{Tag: "day-month-name", Pattern: regexp.MustCompile(`(?i)\b\d{1,2}\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?,?\s+\d{4}\b`)},
			{Tag: "month-name-day", Pattern: regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4}\b`)},
			{Tag: "korean", Pattern: regexp.MustCompile(`\d{4}\s*년\s*\d{1,2}\s*월\s*\d{1,2}\s*일`)},
		},
		Serial: []Rule{
			{Tag: "serial-en", Pattern: regexp.MustCompile(`(?i)\bserial\s*(?:no\.?|number|#)?\s*[:#]?\s*([A-Z0-9][A-Z0-9-]*)`)},
			{Tag: "s/n", Pattern: regexp.MustCompile(`(?i)\bS/N\s*[:#]?\s*([A-Z0-9][A-Z0-9-]*)`)},
			{Tag: "serial-ko", Pattern: regexp.MustCompile(`(?:시리얼\s*(?:번호)?|일련\s*번호)\s*[:：]?\s*([A-Za-z0-9][A-Za-z0-9-]*)`)},
		},
		Issuer: []Rule{
			{Tag: "issued-by", Pattern: regexp.MustCompile(`(?i)\bissued\s+by\s*[:：]?\s*([^\r\n]+)`)},
			{Tag: "certified-by", Pattern: regexp.MustCompile(`(?i)\bcertified\s+by\s*[:：]?\s*([^\r\n]+)`)},
			{Tag: "issuer-ko", Pattern: regexp.MustCompile(`(?:발행\s*(?:처|기관|인)|발급\s*(?:처|기관))\s*[:：]?\s*([^\r\n]+)`)},
			{Tag: "certifier-ko", Pattern: regexp.MustCompile(`인증\s*(?:기관|처)\s*[:：]?\s*([^\r\n]+)`)},
		},
		// Order matters: the first listed brand found in the text wins.
		Brands: []string{
			"Louis Vuitton",
			"Hermès",
			"Chanel",
			"Gucci",
			"Prada",
			"Dior",
			"Cartier",
			"Rolex",
			"Patek Philippe",
			"Audemars Piguet",
			"Omega",
			"Tiffany & Co.",
			"Bvlgari",
			"Bottega Veneta",
			"Saint Laurent",
			"Balenciaga",
			"Burberry",
			"Fendi",
			"Givenchy",
			"Valentino",
			"Céline",
			"Loewe",
			"Versace",
			"Goyard",
			"Moncler",
		},
		ModelKeywords: []string{"model", "style", "ref", "reference", "모델", "모델명", "스타일", "품번"},
	}
}

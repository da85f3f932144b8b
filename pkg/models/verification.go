package models

// RecognizedLine is one text line reported by the recognizer
type RecognizedLine struct {
	Text        string      `json:"text"`
	Confidence  float64     `json:"confidence"`
	BoundingBox BoundingBox `json:"boundingBox"`
}

// RecognizedWord is one word reported by the recognizer
type RecognizedWord struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// BoundingBox is a pixel region in the preprocessed image
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RecognizedText is the recognizer output. Confidence is on a 0..100 scale.
type RecognizedText struct {
	Text       string           `json:"text"`
	Confidence float64          `json:"confidence"`
	Lines      []RecognizedLine `json:"lines"`
	Words      []RecognizedWord `json:"words"`
}

// CertificateFields holds the parsed certificate attributes.
// A nil field means no extraction rule matched.
type CertificateFields struct {
	CertNumber   *string `json:"certNumber"`
	Brand        *string `json:"brand"`
	Model        *string `json:"model"`
	Date         *string `json:"date"`
	SerialNumber *string `json:"serialNumber"`
	Issuer       *string `json:"issuer"`
}

// RequiredPresent counts the fields that feed data completeness
func (f CertificateFields) RequiredPresent() int {
	n := 0
	for _, v := range []*string{f.CertNumber, f.Brand, f.Date} {
		if v != nil {
			n++
		}
	}
	return n
}

// TextureReport summarizes paper statistics
type TextureReport struct {
	QualityScore     float64 `json:"qualityScore"`
	HasWatermark     bool    `json:"hasWatermark"`
	ColorConsistency float64 `json:"colorConsistency"`
	Brightness       float64 `json:"brightness"`
	Contrast         float64 `json:"contrast"`
}

// BleedingLevel describes ink diffusion around printed edges
type BleedingLevel string

const (
	BleedingLow     BleedingLevel = "low"
	BleedingMedium  BleedingLevel = "medium"
	BleedingHigh    BleedingLevel = "high"
	BleedingUnknown BleedingLevel = "unknown"
)

// PrintMethod is the inferred printing process
type PrintMethod string

const (
	PrintProfessional PrintMethod = "professional"
	PrintConsumer     PrintMethod = "consumer"
	PrintUnknown      PrintMethod = "unknown"
)

// InkReport summarizes edge statistics of the printed ink
type InkReport struct {
	Quality     float64       `json:"quality"`
	Bleeding    BleedingLevel `json:"bleeding"`
	Consistency float64       `json:"consistency"`
	PrintMethod PrintMethod   `json:"printMethod"`
}

// ScoreComponents are the per-evidence scores, each in [0,1]
type ScoreComponents struct {
	OCR     float64 `json:"ocr"`
	Data    float64 `json:"data"`
	Texture float64 `json:"texture"`
	Ink     float64 `json:"ink"`
}

// AuthenticityScore is the weighted combination of all evidence
type AuthenticityScore struct {
	Overall    float64         `json:"overall"`
	Components ScoreComponents `json:"components"`
}

// VerificationDetails is the human-readable summary attached to a result
type VerificationDetails struct {
	Watermark            string        `json:"watermark"`
	PaperQuality         string        `json:"paperQuality"`
	InkQuality           string        `json:"inkQuality"`
	TextClarity          string        `json:"textClarity"`
	PrintMethod          PrintMethod   `json:"printMethod"`
	Bleeding             BleedingLevel `json:"bleeding"`
	LineCount            int           `json:"lineCount"`
	WordCount            int           `json:"wordCount"`
	ImageFormat          string        `json:"imageFormat,omitempty"`
	Preprocessed         bool          `json:"preprocessed"`
	DegradedStages       []string      `json:"degradedStages,omitempty"`
	CertNumberSimilarity *float64      `json:"certNumberSimilarity,omitempty"`
	TextWordErrorRate    *float64      `json:"textWordErrorRate,omitempty"`
	TextCharErrorRate    *float64      `json:"textCharacterErrorRate,omitempty"`
}

// VerificationResult is the complete outcome of one verification call.
// On recognition failure only Success, IsAuthentic and Error are set.
type VerificationResult struct {
	RequestID    string               `json:"requestId,omitempty"`
	Success      bool                 `json:"success"`
	Text         string               `json:"text,omitempty"`
	Confidence   float64              `json:"confidence"`
	Fields       *CertificateFields   `json:"fields,omitempty"`
	Texture      *TextureReport       `json:"texture,omitempty"`
	Ink          *InkReport           `json:"ink,omitempty"`
	Authenticity *AuthenticityScore   `json:"authenticity,omitempty"`
	IsAuthentic  bool                 `json:"isAuthentic"`
	Details      *VerificationDetails `json:"details,omitempty"`
	Error        string               `json:"error,omitempty"`
}

package recognition

import (
	"image"
	"strings"

	"github.com/anime-shed/coa-verifier-go/pkg/models"
)

// Box is a backend-neutral recognized region
type Box struct {
	Text       string
	Confidence float64
	Rect       image.Rectangle
}

// Assemble builds RecognizedText from page text and line/word regions.
// Overall confidence is the mean word confidence, or 0 when nothing was read.
func Assemble(text string, lines, words []Box) models.RecognizedText {
	out := models.RecognizedText{
		Text:  strings.TrimSpace(text),
		Lines: make([]models.RecognizedLine, 0, len(lines)),
		Words: make([]models.RecognizedWord, 0, len(words)),
	}

	for _, l := range lines {
		lt := strings.TrimSpace(l.Text)
		if lt == "" {
			continue
		}
		out.Lines = append(out.Lines, models.RecognizedLine{
			Text:       lt,
			Confidence: l.Confidence,
			BoundingBox: models.BoundingBox{
				X:      l.Rect.Min.X,
				Y:      l.Rect.Min.Y,
				Width:  l.Rect.Dx(),
				Height: l.Rect.Dy(),
			},
		})
	}

	var sum float64
	for _, w := range words {
		wt := strings.TrimSpace(w.Text)
		if wt == "" {
			continue
		}
		out.Words = append(out.Words, models.RecognizedWord{Text: wt, Confidence: w.Confidence})
		sum += w.Confidence
	}
	if len(out.Words) > 0 {
		out.Confidence = clampConfidence(sum / float64(len(out.Words)))
	}
	return out
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

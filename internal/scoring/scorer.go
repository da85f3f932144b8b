// Package scoring combines verification evidence into one authenticity score.
package scoring

import (
	"fmt"
	"math"

	"github.com/anime-shed/coa-verifier-go/pkg/models"
)

// Weights are the per-component contributions. They must sum to 1.
type Weights struct {
	OCR     float64
	Data    float64
	Texture float64
	Ink     float64
}

// DefaultWeights gives every component the same share
func DefaultWeights() Weights {
	return Weights{OCR: 0.25, Data: 0.25, Texture: 0.25, Ink: 0.25}
}

// Sum returns the total weight
func (w Weights) Sum() float64 {
	return w.OCR + w.Data + w.Texture + w.Ink
}

// Validate rejects negative weights and totals other than 1
func (w Weights) Validate() error {
	for name, v := range map[string]float64{"ocr": w.OCR, "data": w.Data, "texture": w.Texture, "ink": w.Ink} {
		if v < 0 {
			return fmt.Errorf("weight %s is negative: %g", name, v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("weights must sum to 1.0, got %g", sum)
	}
	return nil
}

// RequiredFields is the number of fields counted for data completeness
const RequiredFields = 3

// Scorer is a pure function over its inputs and safe for concurrent use.
type Scorer struct {
	weights Weights
}

// New returns a scorer or an error when the weights are invalid
func New(weights Weights) (*Scorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{weights: weights}, nil
}

// NewDefault returns a scorer with DefaultWeights
func NewDefault() *Scorer {
	return &Scorer{weights: DefaultWeights()}
}

// Weights returns the configured weights
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score combines OCR confidence (0..100), field completeness and both forensic reports.
func (s *Scorer) Score(ocrConfidence float64, fields models.CertificateFields, texture models.TextureReport, ink models.InkReport) models.AuthenticityScore {
	c := models.ScoreComponents{
		OCR:     clamp01(ocrConfidence / 100),
		Data:    float64(fields.RequiredPresent()) / RequiredFields,
		Texture: clamp01(texture.QualityScore),
		Ink:     clamp01(ink.Quality),
	}
	overall := s.weights.OCR*c.OCR + s.weights.Data*c.Data + s.weights.Texture*c.Texture + s.weights.Ink*c.Ink
	return models.AuthenticityScore{Overall: clamp01(overall), Components: c}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

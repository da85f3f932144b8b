// Package analyzer computes paper and ink forensic signals from raw images.
package analyzer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	apperrors "github.com/anime-shed/coa-verifier-go/internal/errors"
	"github.com/anime-shed/coa-verifier-go/internal/imageio"
	"github.com/anime-shed/coa-verifier-go/internal/logger"
	"github.com/anime-shed/coa-verifier-go/pkg/models"
)

// NeutralTextureReport is returned when texture analysis cannot run
func NeutralTextureReport() models.TextureReport {
	return models.TextureReport{QualityScore: 0.5, HasWatermark: false, ColorConsistency: 0.5}
}

// TextureAnalyzer scores paper quality from channel statistics. Safe for concurrent use.
type TextureAnalyzer struct {
	opts TextureOptions
}

func NewTextureAnalyzer(opts TextureOptions) *TextureAnalyzer {
	return &TextureAnalyzer{opts: opts}
}

// Analyze never fails; on error it logs and returns NeutralTextureReport.
func (a *TextureAnalyzer) Analyze(raw []byte) (report models.TextureReport) {
	defer func() {
		if r := recover(); r != nil {
			logDegraded("texture", fmt.Errorf("panic: %v", r))
			report = NeutralTextureReport()
		}
	}()

	img, err := imageio.Decode(raw)
	if err != nil {
		logDegraded("texture", err)
		return NeutralTextureReport()
	}
	return a.Evaluate(CalculateChannelStats(img))
}

// Evaluate turns channel statistics into a report
func (a *TextureAnalyzer) Evaluate(s ChannelStats) models.TextureReport {
	consistency := colorConsistency(s.Mean)
	hasWatermark := a.watermarkScore(s.StdDev) > a.opts.WatermarkCutoff

	bonus := 0.0
	if hasWatermark {
		bonus = a.opts.WatermarkBonus
	}

	return models.TextureReport{
		QualityScore:     clamp01((consistency + bonus) / (1 + a.opts.WatermarkBonus)),
		HasWatermark:     hasWatermark,
		ColorConsistency: consistency,
		Brightness:       stat.Mean(s.Mean[:], nil),
		Contrast:         stat.Mean(s.StdDev[:], nil),
	}
}

func (a *TextureAnalyzer) watermarkScore(stddev [3]float64) float64 {
	var score float64
	for _, sd := range stddev {
		if sd > a.opts.BandLow && sd < a.opts.BandHigh {
			score += a.opts.ChannelAward
		}
	}
	return score
}

func colorConsistency(mean [3]float64) float64 {
	r, g, b := mean[0], mean[1], mean[2]
	diff := math.Abs(r-g) + math.Abs(g-b) + math.Abs(b-r)
	return clamp01(1 - diff/(3*255))
}

func logDegraded(stage string, cause error) {
	err := apperrors.NewAnalysisError(stage+" analysis fell back to neutral report", cause)
	logger.WithStage(stage).WithError(err).Warn("Analysis degraded")
}

package analyzer

import (
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/stat"

	"github.com/anime-shed/coa-verifier-go/internal/imageio"
	"github.com/anime-shed/coa-verifier-go/pkg/models"
)

// NeutralInkReport is returned when ink analysis cannot run
func NeutralInkReport() models.InkReport {
	return models.InkReport{
		Quality:     0.5,
		Bleeding:    models.BleedingUnknown,
		Consistency: 0.5,
		PrintMethod: models.PrintUnknown,
	}
}

// InkAnalyzer scores print quality from edge statistics. Safe for concurrent use.
type InkAnalyzer struct {
	opts       InkOptions
	windowPool sync.Pool
}

func NewInkAnalyzer(opts InkOptions) *InkAnalyzer {
	return &InkAnalyzer{
		opts: opts,
		windowPool: sync.Pool{
			New: func() interface{} {
				return make([]float64, 0, 4096)
			},
		},
	}
}

// Analyze never fails; on error it logs and returns NeutralInkReport.
func (a *InkAnalyzer) Analyze(raw []byte) (report models.InkReport) {
	defer func() {
		if r := recover(); r != nil {
			logDegraded("ink", fmt.Errorf("panic: %v", r))
			report = NeutralInkReport()
		}
	}()

	report, err := a.analyze(raw)
	if err != nil {
		logDegraded("ink", err)
		return NeutralInkReport()
	}
	return report
}

func (a *InkAnalyzer) analyze(raw []byte) (models.InkReport, error) {
	img, err := imageio.Decode(raw)
	if err != nil {
		return models.InkReport{}, err
	}

	gray := imaging.Grayscale(img)
	edges := imaging.Convolve3x3(gray, a.opts.EdgeKernel, nil)
	sharpness := clamp01(a.opts.SharpnessGain * fractionAbove(edges, a.opts.EdgeThreshold))

	consistency, err := a.densityConsistency(luminance(gray))
	if err != nil {
		return models.InkReport{}, err
	}
	return a.Evaluate(sharpness, consistency), nil
}

// Evaluate combines edge sharpness and density consistency into a report
func (a *InkAnalyzer) Evaluate(sharpness, consistency float64) models.InkReport {
	method := models.PrintConsumer
	if sharpness > a.opts.ProfessionalSharpness {
		method = models.PrintProfessional
	}
	return models.InkReport{
		Quality:     (sharpness + consistency) / 2,
		Bleeding:    a.classifyBleeding(sharpness),
		Consistency: consistency,
		PrintMethod: method,
	}
}

func (a *InkAnalyzer) classifyBleeding(sharpness float64) models.BleedingLevel {
	switch {
	case sharpness < a.opts.HighBleedingSharpness:
		return models.BleedingHigh
	case sharpness < a.opts.MediumBleedingSharpness:
		return models.BleedingMedium
	default:
		return models.BleedingLow
	}
}

// densityConsistency splits the flattened buffer into equal windows and scores how
// little their mean brightness varies.
func (a *InkAnalyzer) densityConsistency(pixels []uint8) (float64, error) {
	windows := a.opts.Windows
	if windows < 1 {
		return 0, fmt.Errorf("density window count must be positive, got %d", windows)
	}
	size := len(pixels) / windows
	if size == 0 {
		return 0, fmt.Errorf("image of %d pixels is too small for %d density windows", len(pixels), windows)
	}

	buf := a.windowPool.Get().([]float64)
	defer func() { a.windowPool.Put(buf[:0]) }()

	means := make([]float64, windows)
	for i := 0; i < windows; i++ {
		buf = buf[:0]
		for _, p := range pixels[i*size : (i+1)*size] {
			buf = append(buf, float64(p))
		}
		means[i] = stat.Mean(buf, nil)
	}

	variance := stat.PopVariance(means, nil)
	consistency := 1 - variance/a.opts.VarianceScale
	if consistency < 0 {
		consistency = 0
	}
	return consistency, nil
}

// luminance flattens a grayscale NRGBA image into one byte per pixel, row-major
func luminance(gray *image.NRGBA) []uint8 {
	b := gray.Bounds()
	out := make([]uint8, 0, b.Dx()*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+b.Dx()*4]
		for x := 0; x < len(row); x += 4 {
			out = append(out, row[x])
		}
	}
	return out
}

func fractionAbove(edges *image.NRGBA, threshold uint8) float64 {
	b := edges.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return 0
	}
	count := 0
	for y := 0; y < b.Dy(); y++ {
		row := edges.Pix[y*edges.Stride : y*edges.Stride+b.Dx()*4]
		for x := 0; x < len(row); x += 4 {
			if row[x] > threshold {
				count++
			}
		}
	}
	return float64(count) / float64(total)
}

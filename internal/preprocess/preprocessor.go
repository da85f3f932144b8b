// Package preprocess prepares raw certificate photographs for text recognition.
package preprocess

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	apperrors "github.com/anime-shed/coa-verifier-go/internal/errors"
	"github.com/anime-shed/coa-verifier-go/internal/imageio"
	"github.com/anime-shed/coa-verifier-go/internal/logger"
)

// Options controls the preprocessing pipeline
type Options struct {
	MaxWidth          int
	MaxHeight         int
	BinarizeThreshold uint8
	SharpenSigma      float64
	MedianWindow      int
	// Fraction of pixels clipped at each end of the histogram before stretching
	StretchClip float64
}

// DefaultOptions returns the settings used for certificate photographs
func DefaultOptions() Options {
	return Options{
		MaxWidth:          2000,
		MaxHeight:         2000,
		BinarizeThreshold: 128,
		SharpenSigma:      1.0,
		MedianWindow:      3,
		StretchClip:       0.01,
	}
}

// Preprocessor normalizes images for the recognizer. It holds no mutable state.
type Preprocessor struct {
	opts Options
}

func New(opts Options) *Preprocessor {
	if opts.MedianWindow < 1 {
		opts.MedianWindow = 1
	}
	return &Preprocessor{opts: opts}
}

// Preprocess returns a binarized PNG derived from raw. On any failure it logs the cause and
// returns raw unchanged with applied set to false.
func (p *Preprocessor) Preprocess(raw []byte) (out []byte, applied bool) {
	defer func() {
		if r := recover(); r != nil {
			p.degrade(raw, fmt.Errorf("panic: %v", r))
			out, applied = raw, false
		}
	}()

	processed, err := p.process(raw)
	if err != nil {
		p.degrade(raw, err)
		return raw, false
	}
	return processed, true
}

func (p *Preprocessor) degrade(raw []byte, cause error) {
	err := apperrors.NewPreprocessingError("using original image", cause)
	logger.WithStage("preprocess").WithFields(logrus.Fields{
		"bytes":  len(raw),
		"format": imageio.Sniff(raw),
	}).WithError(err).Warn("Preprocessing degraded")
}

func (p *Preprocessor) process(raw []byte) ([]byte, error) {
	img, err := imageio.Decode(raw)
	if err != nil {
		return nil, err
	}

	gray := imaging.Grayscale(img)
	stretched := stretchContrast(gray, p.opts.StretchClip)
	sharpened := imaging.Sharpen(stretched, p.opts.SharpenSigma)
	denoised := medianFilter(sharpened, p.opts.MedianWindow)

	// Fit never enlarges smaller images
	fitted := imaging.Fit(denoised, p.opts.MaxWidth, p.opts.MaxHeight, imaging.Lanczos)
	binary := binarize(fitted, p.opts.BinarizeThreshold)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, binary, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode preprocessed image: %w", err)
	}
	return buf.Bytes(), nil
}

// stretchContrast maps the clipped luminance range of a grayscale image onto 0..255.
func stretchContrast(gray *image.NRGBA, clip float64) *image.NRGBA {
	hist := imaging.Histogram(gray)

	lo, hi := 0, 255
	var acc float64
	for i := 0; i < 256; i++ {
		acc += hist[i]
		if acc > clip {
			lo = i
			break
		}
	}
	acc = 0
	for i := 255; i >= 0; i-- {
		acc += hist[i]
		if acc > clip {
			hi = i
			break
		}
	}
	if hi <= lo {
		return gray
	}

	span := float64(hi - lo)
	return imaging.AdjustFunc(gray, func(c color.NRGBA) color.NRGBA {
		v := clampByte((float64(c.R) - float64(lo)) * 255 / span)
		return color.NRGBA{R: v, G: v, B: v, A: c.A}
	})
}

func binarize(img *image.NRGBA, threshold uint8) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		if c.R >= threshold {
			return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		}
		return color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	})
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}

package analyzer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"
)

// createTestImage builds a uniform image
func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createCheckerboard alternates two gray levels pixel by pixel
func createCheckerboard(width, height int, lo, hi uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := lo
			if (x+y)%2 == 0 {
				v = hi
			}
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

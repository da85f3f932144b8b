package preprocess

import (
	"image"
	"sort"
)

// medianFilter replaces every pixel of a grayscale image with the median of its
// window x window neighbourhood. Borders reuse the nearest edge pixel.
func medianFilter(src *image.NRGBA, window int) *image.NRGBA {
	if window <= 1 {
		return src
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	radius := window / 2
	samples := make([]int, 0, window*window)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			samples = samples[:0]
			for dy := -radius; dy <= radius; dy++ {
				sy := clampIndex(y+dy, h)
				for dx := -radius; dx <= radius; dx++ {
					sx := clampIndex(x+dx, w)
					samples = append(samples, int(src.Pix[sy*src.Stride+sx*4]))
				}
			}
			sort.Ints(samples)
			v := uint8(samples[len(samples)/2])

			off := y*dst.Stride + x*4
			dst.Pix[off] = v
			dst.Pix[off+1] = v
			dst.Pix[off+2] = v
			dst.Pix[off+3] = src.Pix[y*src.Stride+x*4+3]
		}
	}
	return dst
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

package preprocess

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// createTestImage builds a gradient with a dark text-like bar in the middle
func createTestImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(90 + (x*80)/w)
			if y > h/3 && y < 2*h/3 && x > w/4 && x < 3*w/4 {
				v = 20
			}
			img.Set(x, y, color.RGBA{R: v, G: v + 10, B: v, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	return img
}

func TestPreprocess_ProducesBinaryImage(t *testing.T) {
	p := New(DefaultOptions())
	out, applied := p.Preprocess(createTestImage(t, 64, 48))
	if !applied {
		t.Fatal("expected preprocessing to be applied")
	}

	img := decodePNG(t, out)
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r != g || g != bl {
				t.Fatalf("pixel (%d,%d) is not gray", x, y)
			}
			if r != 0 && r != 0xffff {
				t.Fatalf("pixel (%d,%d) is not binary: %d", x, y, r>>8)
			}
		}
	}
}

func TestPreprocess_ResizeWithoutEnlargement(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxWidth = 50
	opts.MaxHeight = 50
	p := New(opts)

	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"large image shrinks to fit", 200, 100, 50, 25},
		{"small image keeps its size", 30, 20, 30, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, applied := p.Preprocess(createTestImage(t, tt.w, tt.h))
			if !applied {
				t.Fatal("expected preprocessing to be applied")
			}
			b := decodePNG(t, out).Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestPreprocess_FallsBackToRaw(t *testing.T) {
	p := New(DefaultOptions())
	raw := []byte("definitely not an image")

	out, applied := p.Preprocess(raw)
	if applied {
		t.Error("expected fallback for corrupt input")
	}
	if !bytes.Equal(out, raw) {
		t.Error("expected the original buffer to be returned unchanged")
	}

	out, applied = p.Preprocess(nil)
	if applied || out != nil {
		t.Error("expected nil input to come back unchanged")
	}
}

func TestMedianFilter_RemovesSaltNoise(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 5, 5))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i+3] = 255
	}
	off := 2*src.Stride + 2*4
	src.Pix[off], src.Pix[off+1], src.Pix[off+2] = 255, 255, 255

	dst := medianFilter(src, 3)
	if v := dst.Pix[off]; v != 0 {
		t.Errorf("expected isolated white pixel to be removed, got %d", v)
	}
	if a := dst.Pix[off+3]; a != 255 {
		t.Errorf("expected alpha to be preserved, got %d", a)
	}
}

func TestStretchContrast_ExpandsRange(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 10, 1))
	for x := 0; x < 10; x++ {
		v := uint8(100 + x*5)
		src.SetNRGBA(x, 0, color.NRGBA{R: v, G: v, B: v, A: 255})
	}

	out := stretchContrast(src, 0)
	if got := out.NRGBAAt(0, 0).R; got != 0 {
		t.Errorf("expected darkest pixel at 0, got %d", got)
	}
	if got := out.NRGBAAt(9, 0).R; got != 255 {
		t.Errorf("expected brightest pixel at 255, got %d", got)
	}
}

func TestStretchContrast_FlatImageUnchanged(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3] = 77, 77, 77, 255
	}
	out := stretchContrast(src, 0.01)
	if got := out.NRGBAAt(1, 1).R; got != 77 {
		t.Errorf("expected flat image to stay at 77, got %d", got)
	}
}

package analyzer

import (
	"image"
	"image/color"
	"testing"
)

func TestCalculateChannelStats_Uniform(t *testing.T) {
	stats := CalculateChannelStats(createTestImage(50, 40, color.RGBA{200, 100, 50, 255}))

	want := [3]float64{200, 100, 50}
	for c := 0; c < 3; c++ {
		if !approx(stats.Mean[c], want[c], 1e-9) {
			t.Errorf("channel %d mean = %f, want %f", c, stats.Mean[c], want[c])
		}
		if !approx(stats.StdDev[c], 0, 1e-6) {
			t.Errorf("channel %d stddev = %f, want 0", c, stats.StdDev[c])
		}
	}
	if stats.Pixels != 2000 {
		t.Errorf("expected 2000 pixels, got %d", stats.Pixels)
	}
}

func TestCalculateChannelStats_Checkerboard(t *testing.T) {
	stats := CalculateChannelStats(createCheckerboard(64, 64, 110, 150))

	for c := 0; c < 3; c++ {
		if !approx(stats.Mean[c], 130, 1e-9) {
			t.Errorf("channel %d mean = %f, want 130", c, stats.Mean[c])
		}
		if !approx(stats.StdDev[c], 20, 1e-6) {
			t.Errorf("channel %d stddev = %f, want 20", c, stats.StdDev[c])
		}
	}
}

func TestCalculateChannelStats_OffsetBounds(t *testing.T) {
	img := createTestImage(20, 20, color.RGBA{10, 20, 30, 255})
	sub := img.SubImage(image.Rect(5, 5, 15, 8))

	stats := CalculateChannelStats(sub)
	if stats.Pixels != 30 {
		t.Errorf("expected 30 pixels, got %d", stats.Pixels)
	}
	if !approx(stats.Mean[2], 30, 1e-9) {
		t.Errorf("unexpected blue mean %f", stats.Mean[2])
	}
}

func TestCalculateChannelStats_Empty(t *testing.T) {
	stats := CalculateChannelStats(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	if stats.Pixels != 0 {
		t.Errorf("expected no pixels, got %d", stats.Pixels)
	}
}

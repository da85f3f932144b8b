package analyzer

// TextureOptions holds the paper heuristic constants
type TextureOptions struct {
	// Open band (BandLow, BandHigh) of channel stddev that suggests watermarking
	BandLow  float64
	BandHigh float64
	// Score awarded per channel inside the band
	ChannelAward float64
	// hasWatermark requires the summed award to exceed this value
	WatermarkCutoff float64
	// Added to color consistency when a watermark is present
	WatermarkBonus float64
}

// InkOptions holds the ink heuristic constants
type InkOptions struct {
	EdgeKernel    [9]float64
	EdgeThreshold uint8
	SharpnessGain float64
	Windows       int
	VarianceScale float64

	ProfessionalSharpness   float64
	HighBleedingSharpness   float64
	MediumBleedingSharpness float64
}

// DefaultTextureOptions returns the calibrated paper heuristic. The cutoff admits a
// watermark only when all three channels fall inside the band.
func DefaultTextureOptions() TextureOptions {
	return TextureOptions{
		BandLow:         10,
		BandHigh:        30,
		ChannelAward:    0.33,
		WatermarkCutoff: 0.66,
		WatermarkBonus:  0.3,
	}
}

// DefaultInkOptions returns the calibrated ink heuristic
func DefaultInkOptions() InkOptions {
	return InkOptions{
		EdgeKernel:              [9]float64{-1, -1, -1, -1, 8, -1, -1, -1, -1},
		EdgeThreshold:           128,
		SharpnessGain:           10,
		Windows:                 10,
		VarianceScale:           10000,
		ProfessionalSharpness:   0.7,
		HighBleedingSharpness:   0.05,
		MediumBleedingSharpness: 0.1,
	}
}

// WithBand returns options with a different watermark stddev band
func (o TextureOptions) WithBand(low, high float64) TextureOptions {
	o.BandLow = low
	o.BandHigh = high
	return o
}

// WithWatermarkCutoff returns options with a different watermark cutoff
func (o TextureOptions) WithWatermarkCutoff(cutoff float64) TextureOptions {
	o.WatermarkCutoff = cutoff
	return o
}

// WithWindows returns options sampling a different number of density windows
func (o InkOptions) WithWindows(n int) InkOptions {
	o.Windows = n
	return o
}

// WithBleedingThresholds returns options with different bleeding cut points
func (o InkOptions) WithBleedingThresholds(high, medium float64) InkOptions {
	o.HighBleedingSharpness = high
	o.MediumBleedingSharpness = medium
	return o
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

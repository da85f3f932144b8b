package analyzer

import (
	"image"
	"math"
	"runtime"
	"sync"
)

// ChannelStats holds per-channel mean and population stddev on a 0..255 scale, in R, G, B order
type ChannelStats struct {
	Mean   [3]float64
	StdDev [3]float64
	Pixels int
}

// CalculateChannelStats walks the image in horizontal strips, one goroutine per strip.
func CalculateChannelStats(img image.Image) ChannelStats {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return ChannelStats{}
	}

	numWorkers := runtime.NumCPU()
	if height < numWorkers {
		numWorkers = height
	}
	rowsPerWorker := (height + numWorkers - 1) / numWorkers

	type stripSums struct {
		sum, sumSq [3]float64
		pixels     int
	}

	results := make(chan stripSums, numWorkers)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		startY := bounds.Min.Y + i*rowsPerWorker
		if startY >= bounds.Max.Y {
			break
		}
		endY := startY + rowsPerWorker
		if endY > bounds.Max.Y {
			endY = bounds.Max.Y
		}
		wg.Add(1)
		go func(startY, endY int) {
			defer wg.Done()

			var s stripSums
			for y := startY; y < endY; y++ {
				for x := bounds.Min.X; x < bounds.Max.X; x++ {
					r, g, b, _ := img.At(x, y).RGBA()
					for c, v := range [3]uint32{r, g, b} {
						f := float64(v >> 8)
						s.sum[c] += f
						s.sumSq[c] += f * f
					}
					s.pixels++
				}
			}
			results <- s
		}(startY, endY)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var total stripSums
	for s := range results {
		for c := 0; c < 3; c++ {
			total.sum[c] += s.sum[c]
			total.sumSq[c] += s.sumSq[c]
		}
		total.pixels += s.pixels
	}

	stats := ChannelStats{Pixels: total.pixels}
	n := float64(total.pixels)
	for c := 0; c < 3; c++ {
		mean := total.sum[c] / n
		variance := total.sumSq[c]/n - mean*mean
		if variance < 0 {
			variance = 0
		}
		stats.Mean[c] = mean
		stats.StdDev[c] = math.Sqrt(variance)
	}
	return stats
}

package metrics

import (
	"math"
	"sort"
)

// backgroundBox is the mesh cell size in pixels. Cells at the right and
// bottom edges may be smaller.
const backgroundBox = 64

// EstimateBackground computes a mesh background: the image is tiled into
// boxes, each box contributes its median and standard deviation, and the
// global estimate is the median over boxes. Uniformity compares the
// brightest and darkest cells.
func EstimateBackground(pixels []float32, width, height int) BackgroundMetrics {
	if width <= 0 || height <= 0 || len(pixels) < width*height {
		return BackgroundMetrics{Uniformity: 1.0}
	}

	var medians, sigmas []float64
	for by := 0; by < height; by += backgroundBox {
		for bx := 0; bx < width; bx += backgroundBox {
			med, sigma := boxStats(pixels, width, height, bx, by)
			medians = append(medians, med)
			sigmas = append(sigmas, sigma)
		}
	}

	bg := BackgroundMetrics{
		Median: median(medians),
		RMS:    median(sigmas),
		Min:    medians[0],
		Max:    medians[0],
	}
	for _, m := range medians {
		bg.Min = math.Min(bg.Min, m)
		bg.Max = math.Max(bg.Max, m)
	}

	if bg.Max > 0 {
		bg.Uniformity = 1.0 - (bg.Max-bg.Min)/bg.Max
	} else {
		bg.Uniformity = 1.0
	}
	return bg
}

func boxStats(pixels []float32, width, height, bx, by int) (med, sigma float64) {
	x1 := min(bx+backgroundBox, width)
	y1 := min(by+backgroundBox, height)

	values := make([]float64, 0, (x1-bx)*(y1-by))
	var sum, sumSq float64
	for y := by; y < y1; y++ {
		for x := bx; x < x1; x++ {
			v := float64(pixels[y*width+x])
			values = append(values, v)
			sum += v
			sumSq += v * v
		}
	}

	n := float64(len(values))
	mean := sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return median(values), math.Sqrt(variance)
}

// median sorts values in place and returns the upper-median element.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sort.Float64s(values)
	return values[len(values)/2]
}

// stdDev returns the population standard deviation.
func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(values)))
}

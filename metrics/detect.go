package metrics

import (
	"math"
)

// Detection parameters, matching common source-extraction defaults:
// threshold 3 sigma over background, minimum object area 5 pixels.
const (
	detectSigma   = 3.0
	minArea       = 5
	kronScale     = 2.5
	saturationLim = 0.999
)

// AnalyzeFrame estimates the background, extracts stars, and aggregates
// their measurements. maxStars bounds the aggregation to the brightest N
// sources; 0 means all.
func AnalyzeFrame(pixels []float32, width, height int, maxStars int) (StarStats, BackgroundMetrics) {
	bg := EstimateBackground(pixels, width, height)
	stars := DetectStars(pixels, width, height, bg)
	return AggregateStars(stars, maxStars), bg
}

// DetectStars extracts sources above the detection threshold and measures
// each one. Images smaller than 3x3 yield no detections.
func DetectStars(pixels []float32, width, height int, bg BackgroundMetrics) []StarMetrics {
	if width < 3 || height < 3 || len(pixels) < width*height {
		return nil
	}

	thresh := bg.Median + detectSigma*bg.RMS
	visited := make([]bool, width*height)

	var stars []StarMetrics
	for idx := range width * height {
		if visited[idx] || float64(pixels[idx]) <= thresh {
			continue
		}
		component := floodFill(pixels, visited, width, height, idx, thresh)
		if len(component) < minArea {
			continue
		}
		star := measure(pixels, width, height, component, bg)
		stars = append(stars, star)
	}
	return stars
}

// floodFill collects the 8-connected component of above-threshold pixels
// containing start.
func floodFill(pixels []float32, visited []bool, width, height, start int, thresh float64) []int {
	stack := []int{start}
	visited[start] = true
	var component []int

	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		component = append(component, idx)

		x, y := idx%width, idx/width
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				n := ny*width + nx
				if visited[n] || float64(pixels[n]) <= thresh {
					continue
				}
				visited[n] = true
				stack = append(stack, n)
			}
		}
	}
	return component
}

// measure computes centroid, shape, and photometry for one component.
func measure(pixels []float32, width, height int, component []int, bg BackgroundMetrics) StarMetrics {
	var flux, peak float64
	var sumX, sumY float64
	edge := false

	for _, idx := range component {
		x, y := idx%width, idx/width
		w := float64(pixels[idx]) - bg.Median
		if w < 0 {
			w = 0
		}
		flux += w
		if v := float64(pixels[idx]); v > peak+bg.Median {
			peak = v - bg.Median
		}
		sumX += w * float64(x)
		sumY += w * float64(y)
		if x == 0 || x == width-1 || y == 0 || y == height-1 {
			edge = true
		}
	}
	if flux <= 0 {
		flux = 1e-9
	}
	cx := sumX / flux
	cy := sumY / flux

	// Flux-weighted second moments give the ellipse parameters.
	var x2, y2, xy float64
	for _, idx := range component {
		x, y := idx%width, idx/width
		w := float64(pixels[idx]) - bg.Median
		if w < 0 {
			continue
		}
		dx := float64(x) - cx
		dy := float64(y) - cy
		x2 += w * dx * dx
		y2 += w * dy * dy
		xy += w * dx * dy
	}
	x2 /= flux
	y2 /= flux
	xy /= flux

	half := (x2 + y2) / 2
	diff := math.Sqrt(((x2-y2)/2)*((x2-y2)/2) + xy*xy)
	a := math.Sqrt(math.Max(half+diff, 0))
	b := math.Sqrt(math.Max(half-diff, 0))
	theta := 0.5 * math.Atan2(2*xy, x2-y2)

	star := StarMetrics{
		X: cx, Y: cy,
		Flux: flux, Peak: peak,
		A: a, B: b, Theta: theta,
		NPix: len(component),
	}
	if a > 0 && b > 0 {
		star.Elongation = a / b
	} else {
		star.Elongation = 1.0
	}
	if a > 0 {
		star.Eccentricity = math.Sqrt(math.Max(1-(b*b)/(a*a), 0))
	}
	star.FWHM = (a + b) / 2

	star.KronRadius = kronRadius(pixels, width, component, cx, cy, bg.Median, flux)
	star.FluxAuto, star.FluxErrAuto = kronFlux(pixels, width, height, cx, cy, star.KronRadius, bg)
	if star.FluxAuto <= 0 {
		star.FluxAuto = flux
		star.FluxErrAuto = 0
	}

	if edge {
		star.Flag |= FlagEdge
	}
	if peak+bg.Median >= saturationLim {
		star.Flag |= FlagSaturated
	}
	return star
}

// kronRadius is the flux-weighted first moment of radius over the
// component pixels.
func kronRadius(pixels []float32, width int, component []int, cx, cy, bgMedian, flux float64) float64 {
	var sum float64
	for _, idx := range component {
		x, y := idx%width, idx/width
		w := float64(pixels[idx]) - bgMedian
		if w < 0 {
			continue
		}
		dx := float64(x) - cx
		dy := float64(y) - cy
		sum += w * math.Sqrt(dx*dx+dy*dy)
	}
	return sum / flux
}

// kronFlux sums background-subtracted flux inside a circular aperture of
// kronScale times the Kron radius. The error estimate is sky-noise only.
func kronFlux(pixels []float32, width, height int, cx, cy, kron float64, bg BackgroundMetrics) (flux, fluxErr float64) {
	r := kronScale * kron
	if r <= 0 {
		return 0, 0
	}

	x0 := max(int(cx-r), 0)
	x1 := min(int(cx+r)+1, width)
	y0 := max(int(cy-r), 0)
	y1 := min(int(cy+r)+1, height)

	area := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			if dx*dx+dy*dy > r*r {
				continue
			}
			flux += float64(pixels[y*width+x]) - bg.Median
			area++
		}
	}
	fluxErr = bg.RMS * math.Sqrt(float64(area))
	return flux, fluxErr
}

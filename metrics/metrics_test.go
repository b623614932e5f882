package metrics

import (
	"math"
	"testing"
)

// addGaussian stamps a circular Gaussian star onto the image.
func addGaussian(pixels []float32, width int, cx, cy, sigma, amplitude float64) {
	r := int(4 * sigma)
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			x, y := int(cx)+dx, int(cy)+dy
			if x < 0 || y < 0 || x >= width || y*width+x >= len(pixels) {
				continue
			}
			d2 := float64(dx*dx + dy*dy)
			pixels[y*width+x] += float32(amplitude * math.Exp(-d2/(2*sigma*sigma)))
		}
	}
}

func flatImage(width, height int, level float32) []float32 {
	pixels := make([]float32, width*height)
	for i := range pixels {
		pixels[i] = level
	}
	return pixels
}

func TestEstimateBackgroundFlat(t *testing.T) {
	pixels := flatImage(128, 128, 0.25)
	bg := EstimateBackground(pixels, 128, 128)

	if bg.Median != 0.25 {
		t.Errorf("Median = %v, want 0.25", bg.Median)
	}
	if bg.RMS != 0 {
		t.Errorf("RMS = %v, want 0", bg.RMS)
	}
	if bg.Uniformity != 1.0 {
		t.Errorf("Uniformity = %v, want 1.0", bg.Uniformity)
	}
}

func TestEstimateBackgroundGradient(t *testing.T) {
	// Left half dark, right half bright: uniformity must drop below 1.
	width, height := 128, 64
	pixels := make([]float32, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x < 64 {
				pixels[y*width+x] = 0.1
			} else {
				pixels[y*width+x] = 0.2
			}
		}
	}

	bg := EstimateBackground(pixels, width, height)
	if math.Abs(bg.Min-0.1) > 1e-6 || math.Abs(bg.Max-0.2) > 1e-6 {
		t.Errorf("Min/Max = %v/%v, want 0.1/0.2", bg.Min, bg.Max)
	}
	want := 1.0 - (bg.Max-bg.Min)/bg.Max
	if math.Abs(bg.Uniformity-want) > 1e-9 {
		t.Errorf("Uniformity = %v, want %v", bg.Uniformity, want)
	}
}

func TestDetectStars(t *testing.T) {
	width, height := 64, 64
	pixels := flatImage(width, height, 0.1)
	addGaussian(pixels, width, 32, 32, 2.0, 0.5)
	addGaussian(pixels, width, 12, 48, 1.5, 0.3)

	bg := EstimateBackground(pixels, width, height)
	stars := DetectStars(pixels, width, height, bg)

	if len(stars) != 2 {
		t.Fatalf("detected %d stars, want 2", len(stars))
	}

	// The brighter star sits at (32, 32).
	var bright StarMetrics
	for _, s := range stars {
		if s.Flux > bright.Flux {
			bright = s
		}
	}
	if math.Abs(bright.X-32) > 0.5 || math.Abs(bright.Y-32) > 0.5 {
		t.Errorf("centroid = (%v, %v), want ~(32, 32)", bright.X, bright.Y)
	}
	if bright.FWHM <= 0 {
		t.Error("FWHM should be positive")
	}
	// A circular Gaussian should measure nearly round.
	if bright.Eccentricity > 0.5 {
		t.Errorf("Eccentricity = %v, want < 0.5 for a round star", bright.Eccentricity)
	}
	if bright.Flag != 0 {
		t.Errorf("Flag = %d, want 0 for an interior unsaturated star", bright.Flag)
	}
	if bright.NPix < minArea {
		t.Errorf("NPix = %d, want >= %d", bright.NPix, minArea)
	}
}

func TestDetectStarsEdgeFlag(t *testing.T) {
	width, height := 64, 64
	pixels := flatImage(width, height, 0.1)
	addGaussian(pixels, width, 1, 32, 2.0, 0.5)

	bg := EstimateBackground(pixels, width, height)
	stars := DetectStars(pixels, width, height, bg)

	if len(stars) == 0 {
		t.Fatal("expected a detection at the frame edge")
	}
	if stars[0].Flag&FlagEdge == 0 {
		t.Errorf("Flag = %d, want FlagEdge set", stars[0].Flag)
	}
}

func TestDetectStarsSaturated(t *testing.T) {
	width, height := 64, 64
	pixels := flatImage(width, height, 0.1)
	addGaussian(pixels, width, 32, 32, 2.0, 0.95)

	bg := EstimateBackground(pixels, width, height)
	stars := DetectStars(pixels, width, height, bg)

	if len(stars) == 0 {
		t.Fatal("expected a detection")
	}
	if stars[0].Flag&FlagSaturated == 0 {
		t.Errorf("Flag = %d, want FlagSaturated set", stars[0].Flag)
	}
}

func TestDetectStarsTinyImage(t *testing.T) {
	if stars := DetectStars(make([]float32, 4), 2, 2, BackgroundMetrics{}); stars != nil {
		t.Errorf("got %d stars from a 2x2 image, want none", len(stars))
	}
}

func TestAggregateStars(t *testing.T) {
	stars := []StarMetrics{
		{Flux: 1000, FWHM: 5.0, Eccentricity: 0.8, KronRadius: 10, FluxAuto: 1200, FluxErrAuto: 20, Elongation: 1.5},
		{Flux: 2000, FWHM: 7.0, Eccentricity: 0.7, KronRadius: 12, FluxAuto: 2400, FluxErrAuto: 30, Elongation: 1.33, Flag: 1},
		{Flux: 3000, FWHM: 3.5, Eccentricity: 0.6, KronRadius: 8, FluxAuto: 3600, FluxErrAuto: 40, Elongation: 1.33},
	}

	stats := AggregateStars(stars, 0)
	if stats.Count != 3 {
		t.Errorf("Count = %d, want 3", stats.Count)
	}
	if stats.MedianFWHM != 5.0 {
		t.Errorf("MedianFWHM = %v, want 5.0", stats.MedianFWHM)
	}
	if stats.MedianEccentricity != 0.7 {
		t.Errorf("MedianEccentricity = %v, want 0.7", stats.MedianEccentricity)
	}
	if math.Abs(stats.FlaggedFraction-1.0/3.0) > 1e-9 {
		t.Errorf("FlaggedFraction = %v, want 1/3", stats.FlaggedFraction)
	}
}

func TestAggregateStarsMaxStars(t *testing.T) {
	stars := []StarMetrics{
		{Flux: 100, FWHM: 9.0},
		{Flux: 3000, FWHM: 3.0},
		{Flux: 2000, FWHM: 4.0},
	}

	// Only the two brightest contribute to the medians, but Count covers
	// every detection.
	stats := AggregateStars(stars, 2)
	if stats.Count != 3 {
		t.Errorf("Count = %d, want 3", stats.Count)
	}
	if stats.MedianFWHM != 4.0 {
		t.Errorf("MedianFWHM = %v, want 4.0 from the bright pair", stats.MedianFWHM)
	}
}

func TestAggregateStarsEmpty(t *testing.T) {
	stats := AggregateStars(nil, 0)
	if stats.Count != 0 || stats.MedianFWHM != 0 {
		t.Errorf("stats = %+v, want zero value", stats)
	}
}

func TestEccentricityFromAxes(t *testing.T) {
	// Build an elongated blob and verify sqrt(1 - b²/a²) behavior end to
	// end: a 3:1 stretched Gaussian must measure high eccentricity.
	width, height := 64, 64
	pixels := flatImage(width, height, 0.1)
	for dy := -12; dy <= 12; dy++ {
		for dx := -12; dx <= 12; dx++ {
			x, y := 32+dx, 32+dy
			v := 0.5 * math.Exp(-(float64(dx*dx)/(2*36.0) + float64(dy*dy)/(2*4.0)))
			pixels[y*width+x] += float32(v)
		}
	}

	bg := EstimateBackground(pixels, width, height)
	stars := DetectStars(pixels, width, height, bg)
	if len(stars) != 1 {
		t.Fatalf("detected %d stars, want 1", len(stars))
	}

	s := stars[0]
	if s.A <= s.B {
		t.Errorf("a = %v should exceed b = %v", s.A, s.B)
	}
	if s.Eccentricity < 0.6 {
		t.Errorf("Eccentricity = %v, want > 0.6 for a stretched source", s.Eccentricity)
	}
	want := math.Sqrt(1 - (s.B*s.B)/(s.A*s.A))
	if math.Abs(s.Eccentricity-want) > 1e-9 {
		t.Errorf("Eccentricity = %v, want %v from the measured axes", s.Eccentricity, want)
	}
}

func TestScores(t *testing.T) {
	stars := StarStats{
		Count:            100,
		MedianFWHM:       3.0,
		FWHMStdDev:       0.5,
		MedianKronRadius: 5.0,
		MedianSNR:        50.0,
		MedianElongation: 1.2,
		FlaggedFraction:  0.05,
	}
	bg := BackgroundMetrics{Median: 100, RMS: 5, Min: 90, Max: 110, Uniformity: 0.9}

	scores := Scores(stars, bg)
	for name, v := range map[string]float64{
		"fwhm": scores.FWHM, "eccentricity": scores.Eccentricity,
		"background": scores.Background, "kron": scores.KronRadius,
		"snr": scores.SNR, "flag": scores.Flag, "overall": scores.Overall,
	} {
		if v < 0 || v > 1 {
			t.Errorf("%s score = %v, out of [0, 1]", name, v)
		}
	}

	if math.Abs(scores.Flag-0.95) > 1e-9 {
		t.Errorf("Flag score = %v, want 0.95", scores.Flag)
	}
}

func TestOverall(t *testing.T) {
	w := DefaultWeights()

	if got := Overall(0.5, 0.5, 0.5, 0.5, 0.5, 0.5, w); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Overall = %v, want 0.5", got)
	}

	got := Overall(1.0, 0.0, 0.5, 0.5, 0.5, 0.5, w)
	want := (1.0*0.3 + 0.0*0.2 + 0.5*0.2 + 0.5*0.15 + 0.5*0.1 + 0.5*0.05) / 1.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Overall = %v, want %v", got, want)
	}

	if got := Overall(1, 1, 1, 1, 1, 1, QualityWeights{}); got != 0 {
		t.Errorf("Overall with zero weights = %v, want 0", got)
	}
}

func TestAnalyzeFrame(t *testing.T) {
	width, height := 64, 64
	pixels := flatImage(width, height, 0.1)
	addGaussian(pixels, width, 32, 32, 2.0, 0.5)

	stats, bg := AnalyzeFrame(pixels, width, height, 0)
	if stats.Count != 1 {
		t.Errorf("Count = %d, want 1", stats.Count)
	}
	if stats.MedianFWHM <= 0 {
		t.Error("MedianFWHM should be positive")
	}
	if bg.RMS < 0 || bg.Uniformity < 0 || bg.Uniformity > 1 {
		t.Errorf("background = %+v", bg)
	}
}

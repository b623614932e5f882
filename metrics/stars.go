package metrics

import (
	"math"
	"sort"
)

// AggregateStars reduces per-star measurements to frame-level statistics.
// When maxStars is positive, only the brightest maxStars sources
// contribute to the medians and deviations; Count always reflects the
// full detection list.
func AggregateStars(stars []StarMetrics, maxStars int) StarStats {
	if len(stars) == 0 {
		return StarStats{}
	}

	sorted := make([]StarMetrics, len(stars))
	copy(sorted, stars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Flux > sorted[j].Flux })
	if maxStars > 0 && maxStars < len(sorted) {
		sorted = sorted[:maxStars]
	}

	fwhm := make([]float64, len(sorted))
	ecc := make([]float64, len(sorted))
	kron := make([]float64, len(sorted))
	flux := make([]float64, len(sorted))
	snr := make([]float64, len(sorted))
	elong := make([]float64, len(sorted))
	flagged := 0

	for i, s := range sorted {
		fwhm[i] = s.FWHM
		ecc[i] = s.Eccentricity
		kron[i] = s.KronRadius
		flux[i] = s.FluxAuto
		snr[i] = starSNR(s)
		elong[i] = s.Elongation
		if s.Flag != 0 {
			flagged++
		}
	}

	return StarStats{
		Count:              len(stars),
		MedianFWHM:         median(fwhm),
		MedianEccentricity: median(ecc),
		FWHMStdDev:         stdDev(fwhm),
		EccentricityStdDev: stdDev(ecc),
		MedianKronRadius:   median(kron),
		MedianFlux:         median(flux),
		MedianSNR:          median(snr),
		MedianElongation:   median(elong),
		FlaggedFraction:    float64(flagged) / float64(len(sorted)),
		KronRadiusStdDev:   stdDev(kron),
		FluxStdDev:         stdDev(flux),
		SNRStdDev:          stdDev(snr),
	}
}

// starSNR prefers the aperture flux error; without one it falls back to
// the Poisson approximation sqrt(flux).
func starSNR(s StarMetrics) float64 {
	if s.FluxErrAuto > 0 {
		return s.FluxAuto / s.FluxErrAuto
	}
	if s.Flux > 0 {
		return math.Sqrt(s.Flux)
	}
	return 0
}

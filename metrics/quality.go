package metrics

// Score normalization anchors. FWHM and Kron radius score linearly down
// to zero at 10 pixels; elongation down to zero at 3.0; background noise
// at an RMS of 10.
const (
	fwhmWorst       = 10.0
	kronWorst       = 10.0
	elongationSpan  = 2.0
	noiseWorst      = 10.0
	consistencyPart = 0.3
)

// Scores normalizes the raw statistics to 0-1 quality scores and combines
// them with the default weights.
func Scores(stars StarStats, bg BackgroundMetrics) QualityScores {
	return ScoresWithWeights(stars, bg, DefaultWeights())
}

// ScoresWithWeights is Scores with a caller-supplied weighting.
func ScoresWithWeights(stars StarStats, bg BackgroundMetrics, weights QualityWeights) QualityScores {
	// Sharpness: base score from the median FWHM, blended with how
	// consistent the FWHM is across the frame.
	fwhmBase := clampScore(1.0 - stars.MedianFWHM/fwhmWorst)
	fwhmConsistency := 0.0
	if stars.MedianFWHM > 0 {
		fwhmConsistency = clampScore(1.0 - stars.FWHMStdDev/stars.MedianFWHM)
	}
	fwhmScore := fwhmBase*(1-consistencyPart) + fwhmConsistency*consistencyPart

	// Roundness from elongation: 1.0 is perfectly round, 3.0 scores zero.
	eccScore := clampScore(1.0 - (stars.MedianElongation-1.0)/elongationSpan)

	noiseScore := clampScore(1.0 - bg.RMS/noiseWorst)
	bgScore := bg.Uniformity*(1-consistencyPart) + noiseScore*consistencyPart

	kronScore := clampScore(1.0 - stars.MedianKronRadius/kronWorst)

	// Logarithmic-feel SNR response: 10 scores 0.5, 100 scores ~0.91.
	snrScore := clampScore(1.0 - 10.0/(10.0+stars.MedianSNR))

	flagScore := 1.0 - stars.FlaggedFraction

	return QualityScores{
		FWHM:         fwhmScore,
		Eccentricity: eccScore,
		Background:   bgScore,
		KronRadius:   kronScore,
		SNR:          snrScore,
		Flag:         flagScore,
		Overall:      Overall(fwhmScore, eccScore, bgScore, kronScore, snrScore, flagScore, weights),
	}
}

// Overall is the weighted mean of the individual scores.
func Overall(fwhm, ecc, bg, kron, snr, flag float64, w QualityWeights) float64 {
	sum := w.FWHM + w.Eccentricity + w.Background + w.KronRadius + w.SNR + w.Flag
	if sum == 0 {
		return 0
	}
	return (fwhm*w.FWHM + ecc*w.Eccentricity + bg*w.Background +
		kron*w.KronRadius + snr*w.SNR + flag*w.Flag) / sum
}

// FrameMetrics bundles the statistics and scores for one frame under its
// identifier, typically the file name.
func FrameMetrics(frameID string, stars StarStats, bg BackgroundMetrics) FrameQualityMetrics {
	return FrameQualityMetrics{
		FrameID:    frameID,
		Stars:      stars,
		Background: bg,
		Scores:     Scores(stars, bg),
	}
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

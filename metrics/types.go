// Package metrics measures frame quality for astronomical images: source
// extraction over a mesh-estimated background, per-star shape metrics,
// and normalized 0-1 quality scores suitable for ranking frames.
package metrics

// StarMetrics holds the measurements for a single detected source.
type StarMetrics struct {
	X, Y float64 // flux-weighted centroid

	Flux float64 // background-subtracted isophotal flux
	Peak float64 // brightest background-subtracted pixel

	A     float64 // semi-major axis
	B     float64 // semi-minor axis
	Theta float64 // position angle, radians

	Eccentricity float64
	FWHM         float64

	KronRadius  float64
	FluxAuto    float64 // flux inside the Kron aperture
	FluxErrAuto float64

	NPix       int
	Elongation float64 // a/b

	// Flag marks suspect measurements: FlagEdge when the source touches
	// the frame border, FlagSaturated when the peak reaches full scale.
	Flag uint8
}

// Extraction flags.
const (
	FlagEdge      uint8 = 1
	FlagSaturated uint8 = 2
)

// StarStats aggregates a set of star measurements.
type StarStats struct {
	Count int

	MedianFWHM         float64
	MedianEccentricity float64
	FWHMStdDev         float64
	EccentricityStdDev float64

	MedianKronRadius float64
	MedianFlux       float64
	MedianSNR        float64
	MedianElongation float64

	FlaggedFraction float64

	KronRadiusStdDev float64
	FluxStdDev       float64
	SNRStdDev        float64
}

// BackgroundMetrics holds the mesh background estimate for a frame.
type BackgroundMetrics struct {
	Median     float64
	RMS        float64
	Min        float64
	Max        float64
	Uniformity float64 // 0-1, higher is flatter
}

// QualityWeights weights the individual scores in the overall score.
type QualityWeights struct {
	FWHM         float64
	Eccentricity float64
	Background   float64
	KronRadius   float64
	SNR          float64
	Flag         float64
}

// DefaultWeights returns the standard weighting, biased toward focus
// quality.
func DefaultWeights() QualityWeights {
	return QualityWeights{
		FWHM:         0.3,
		Eccentricity: 0.2,
		Background:   0.2,
		KronRadius:   0.15,
		SNR:          0.1,
		Flag:         0.05,
	}
}

// QualityScores holds normalized 0-1 scores; higher is always better.
type QualityScores struct {
	FWHM         float64
	Eccentricity float64
	Background   float64
	KronRadius   float64
	SNR          float64
	Flag         float64
	Overall      float64
}

// FrameQualityMetrics is the full quality record for one frame.
type FrameQualityMetrics struct {
	FrameID    string
	Stars      StarStats
	Background BackgroundMetrics
	Scores     QualityScores
}

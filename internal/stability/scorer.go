package stability

import (
	"gonum.org/v1/gonum/stat"
)

// Config holds the tuning knobs for the stability analysis. The zero
// value is not usable; start from DefaultConfig.
type Config struct {
	// ContactMergeDistance merges contact points closer than this into
	// one (length units).
	ContactMergeDistance float64
	// MinContactPoints is the minimum deduplicated contact count below
	// which hull geometry is skipped and support is unproven.
	MinContactPoints int
	// CenterOfMassThreshold scales the centroid edge-margin ratio. At
	// 0.5 a centroid whose margin is half the polygon radius already
	// scores full marks.
	CenterOfMassThreshold float64
	// ExpectedAreaPerPiece sizes the footprint a piece is expected to
	// contribute (area units) for contact-quality scoring.
	ExpectedAreaPerPiece float64
	// HistoryCapacity is the centroid history window length.
	HistoryCapacity int
	// MaxAllowedOscillation is the oscillation magnitude that scores 0.
	MaxAllowedOscillation float64
	// MaxAllowedTilt is the average tilt angle (radians) that scores 0.
	MaxAllowedTilt float64
	// CriticalThreshold gates the published Stable boolean.
	CriticalThreshold float64
	// SmoothingHalfLife is the half-life (seconds) of the exponential
	// smoothing applied to the published score.
	SmoothingHalfLife float64
}

// Score combination weights. A design choice, not derived; tune in
// concert with the sub-score definitions.
const (
	weightMassPosition   = 0.4
	weightContactQuality = 0.3
	weightOscillation    = 0.2
	weightTilt           = 0.1
)

// ambiguousSupportScore is the mass-position fallback when the support
// polygon is too small to prove anything either way.
const ambiguousSupportScore = 50.0

// DefaultConfig returns the production analysis defaults.
func DefaultConfig() Config {
	return Config{
		ContactMergeDistance:  0.1,
		MinContactPoints:      3,
		CenterOfMassThreshold: 0.5,
		ExpectedAreaPerPiece:  1.0,
		HistoryCapacity:       20,
		MaxAllowedOscillation: 0.3,
		MaxAllowedTilt:        0.5236, // 30 degrees
		CriticalThreshold:     15,
		SmoothingHalfLife:     0.25,
	}
}

// MassPositionScore scores how well the ground-projected centroid sits
// inside the support polygon.
//
// Fewer than cfg.MinContactPoints vertices is ambiguous and returns 50.
// A centroid outside the polygon is maximal instability and returns 0.
// Inside, the score grows with the margin to the nearest edge, relative
// to the polygon radius and cfg.CenterOfMassThreshold.
func MassPositionScore(centroid Vec3, polygon []Point2, cfg Config) float64 {
	if len(polygon) < cfg.MinContactPoints {
		return ambiguousSupportScore
	}

	p := centroid.Ground()
	if !PointInPolygon(p, polygon) {
		return 0
	}

	margin := PolygonEdgeDistance(p, polygon)
	radius := PolygonMaxRadius(p, polygon)
	if radius <= 0 {
		return ambiguousSupportScore
	}
	return clamp01(margin/radius/cfg.CenterOfMassThreshold) * 100
}

// ContactQualityScore scores the support polygon itself: 70% footprint
// area relative to what pieceCount pieces should provide, 30% spacing
// uniformity of the vertices around their own center.
func ContactQualityScore(polygon []Point2, pieceCount int, cfg Config) float64 {
	if len(polygon) < cfg.MinContactPoints {
		return 0
	}

	expected := cfg.ExpectedAreaPerPiece * float64(maxi(pieceCount, 1))
	areaScore := clamp01(PolygonArea(polygon) / expected)

	center := PolygonCentroid(polygon)
	dists := make([]float64, len(polygon))
	for i, v := range polygon {
		dists[i] = center.Dist(v)
	}
	mean := stat.Mean(dists, nil)
	uniformity := 1.0
	if mean > 0 {
		variance := stat.Variance(dists, nil)
		uniformity = 1 - clamp01(variance/(mean*mean))
	}

	return (0.7*areaScore + 0.3*uniformity) * 100
}

// OscillationScore maps the tracker's windowed oscillation magnitude to
// [0,100]. The warming-up sentinel scores a neutral 100.
func OscillationScore(oscillation float64, cfg Config) float64 {
	if oscillation == OscillationWarmingUp {
		return 100
	}
	return clamp01(1-oscillation/cfg.MaxAllowedOscillation) * 100
}

// TiltScore maps the average tilt-from-vertical of the bodies to
// [0,100]. An empty stack scores 100.
func TiltScore(bodies []Body, cfg Config) float64 {
	if len(bodies) == 0 {
		return 100
	}
	_, angle := AverageUp(bodies)
	return clamp01(1-angle/cfg.MaxAllowedTilt) * 100
}

// CombineScores folds the four sub-scores into the overall score using
// the fixed weights, clamped to [0,100].
func CombineScores(massPosition, contactQuality, oscillation, tilt float64) float64 {
	s := weightMassPosition*massPosition +
		weightContactQuality*contactQuality +
		weightOscillation*oscillation +
		weightTilt*tilt
	return clamp01(s/100) * 100
}

func maxi(a, b int) int {
	if a > b {
		return a
	}
	return b
}

package stability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unitSquare = []Point2{{0, 0}, {2, 0}, {2, 2}, {0, 2}}

func TestMassPositionScoreCentered(t *testing.T) {
	// Centroid at the polygon center has maximal margin and scores 100.
	got := MassPositionScore(Vec3{X: 1, Z: 1}, unitSquare, DefaultConfig())
	assert.InDelta(t, 100.0, got, 1e-9)
}

func TestMassPositionScoreOutside(t *testing.T) {
	got := MassPositionScore(Vec3{X: 5, Z: 5}, unitSquare, DefaultConfig())
	assert.Zero(t, got, "centroid outside the support polygon is maximal instability")
}

func TestMassPositionScoreFallback(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 50.0, MassPositionScore(Vec3{}, nil, cfg))
	assert.Equal(t, 50.0, MassPositionScore(Vec3{}, unitSquare[:2], cfg))
}

// TestMassPositionScoreMonotonicNearEdge walks the centroid from the
// polygon center toward an edge and requires the score to strictly
// decrease, approaching 0 at the boundary.
func TestMassPositionScoreMonotonicNearEdge(t *testing.T) {
	cfg := DefaultConfig()
	// Close to the center the margin ratio clamps to 100; strict
	// monotonicity starts once the margin drops below the threshold.
	prev := 101.0
	for _, x := range []float64{1.4, 1.5, 1.6, 1.7, 1.8, 1.9, 1.95, 1.99} {
		got := MassPositionScore(Vec3{X: x, Z: 1}, unitSquare, cfg)
		require.Less(t, got, prev, "score must strictly decrease as centroid nears the edge (x=%f)", x)
		prev = got
	}
	assert.Less(t, prev, 1.0, "score at x=1.99 should approach 0")
	assert.Greater(t, prev, 0.0, "strictly inside must score > 0")
}

func TestContactQualityScore(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("too few vertices", func(t *testing.T) {
		assert.Zero(t, ContactQualityScore(nil, 4, cfg))
		assert.Zero(t, ContactQualityScore(unitSquare[:2], 4, cfg))
	})

	t.Run("symmetric full footprint", func(t *testing.T) {
		// 4 pieces expected to cover 4 area units; the square covers
		// exactly that, with perfectly uniform vertex spacing.
		got := ContactQualityScore(unitSquare, 4, cfg)
		assert.InDelta(t, 100.0, got, 1e-9)
	})

	t.Run("undersized footprint scores lower", func(t *testing.T) {
		small := []Point2{{0, 0}, {0.5, 0}, {0.5, 0.5}, {0, 0.5}}
		assert.Less(t, ContactQualityScore(small, 4, cfg), ContactQualityScore(unitSquare, 4, cfg))
	})

	t.Run("uneven spacing scores lower", func(t *testing.T) {
		uneven := []Point2{{0, 0}, {2, 0}, {2, 2}, {-3, 4}}
		assert.Less(t, ContactQualityScore(uneven, 4, cfg), ContactQualityScore(unitSquare, 4, cfg))
	})
}

func TestOscillationScore(t *testing.T) {
	cfg := DefaultConfig() // MaxAllowedOscillation 0.3

	assert.Equal(t, 100.0, OscillationScore(OscillationWarmingUp, cfg),
		"warming-up sentinel must not penalize")
	assert.Equal(t, 100.0, OscillationScore(0, cfg))
	assert.InDelta(t, 50.0, OscillationScore(0.15, cfg), 1e-9)
	assert.Zero(t, OscillationScore(0.3, cfg))
	assert.Zero(t, OscillationScore(5, cfg), "beyond the maximum clamps to 0")
}

func TestTiltScore(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 100.0, TiltScore(nil, cfg), "no objects is trivially upright")

	upright := []Body{{Up: Vec3{Y: 1}}, {Up: Vec3{Y: 1}}}
	assert.InDelta(t, 100.0, TiltScore(upright, cfg), 1e-9)

	tipped := []Body{{Up: Vec3{X: 1}}}
	assert.Zero(t, TiltScore(tipped, cfg), "fully sideways exceeds the allowed tilt")
}

func TestCombineScores(t *testing.T) {
	assert.Equal(t, 100.0, CombineScores(100, 100, 100, 100))
	assert.Zero(t, CombineScores(0, 0, 0, 0))
	// Weighted: 0.4*50 + 0.3*100 + 0.2*100 + 0.1*0 = 70.
	assert.InDelta(t, 70.0, CombineScores(50, 100, 100, 0), 1e-9)
}

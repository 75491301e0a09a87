package stability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzerEmptyStack(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	info := a.Tick(time.Now(), nil)

	assert.Equal(t, 100.0, info.Score, "empty stack is trivially stable")
	assert.Equal(t, 100.0, info.Target)
	assert.Empty(t, info.Polygon)
	assert.True(t, info.Stable)
}

func TestAnalyzerStackedTower(t *testing.T) {
	base := boxBody("base", RoleBase, 0, 0.5, 0, 3, 0.5, 3)
	bodies := []Body{base}
	for i, pos := range []Point2{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
		bodies = append(bodies, boxBody(string(rune('a'+i)), RolePiece, pos.X, 1.5, pos.Z, 0.4, 0.5, 0.4))
	}

	a := NewAnalyzer(DefaultConfig())
	info := a.Tick(time.Now(), bodies)

	require.Len(t, info.Polygon, 4, "four corner contacts hull to a square")
	assert.Greater(t, info.MassPosition, 0.0, "centroid inside the hull")
	assert.Greater(t, info.ContactQuality, 0.0)
	assert.Equal(t, 100.0, info.Oscillation, "history still warming up")
	assert.InDelta(t, 100.0, info.Tilt, 1e-9, "all pieces upright")
	assert.True(t, info.Stable)
}

func TestAnalyzerSmoothingConverges(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SmoothingHalfLife = 0.1
	a := NewAnalyzer(cfg)

	now := time.Now()
	// First tick snaps to target: a healthy four-contact stack.
	base := boxBody("base", RoleBase, 0, 0.5, 0, 3, 0.5, 3)
	bodies := []Body{base}
	for i, pos := range []Point2{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
		bodies = append(bodies, boxBody(string(rune('a'+i)), RolePiece, pos.X, 1.5, pos.Z, 0.4, 0.5, 0.4))
	}
	// Tip the pieces sideways so the tilt sub-score drags the target
	// below 100 and the smoothing has a gap to close.
	for i := 1; i < len(bodies); i++ {
		bodies[i].Up = Vec3{X: 1}
	}
	first := a.Tick(now, bodies)
	assert.Equal(t, first.Target, first.Score, "first sample snaps, no fade-in")
	require.Less(t, first.Score, 100.0)

	// The stack empties; the published score eases toward 100 rather
	// than jumping.
	second := a.Tick(now.Add(50*time.Millisecond), nil)
	if first.Score < 100 {
		assert.Greater(t, second.Score, first.Score)
		assert.Less(t, second.Score, 100.0, "half a half-life cannot close the whole gap")
	}

	// After many half-lives it converges.
	var last Info
	tick := now
	for i := 0; i < 50; i++ {
		tick = tick.Add(100 * time.Millisecond)
		last = a.Tick(tick, nil)
	}
	assert.InDelta(t, 100.0, last.Score, 0.1)
}

func TestAnalyzerResetClearsHistory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HistoryCapacity = 3
	a := NewAnalyzer(cfg)

	bodies := []Body{boxBody("p", RolePiece, 0, 0.5, 0, 0.5, 0.5, 0.5)}
	now := time.Now()
	for i := 0; i < 5; i++ {
		a.Tick(now.Add(time.Duration(i)*100*time.Millisecond), bodies)
	}
	require.True(t, a.history.Full())

	a.Reset()
	assert.Zero(t, a.history.Size())

	info := a.Tick(now.Add(time.Second), bodies)
	assert.Equal(t, 100.0, info.Oscillation, "post-reset window warms up again")
}

func TestAnalyzerUnstableWhenCentroidUnsupported(t *testing.T) {
	// A tower whose combined centroid projects outside its contact
	// footprint: pieces hang far off one edge of a small base.
	base := boxBody("base", RoleBase, 0, 0.5, 0, 0.6, 0.5, 0.6)
	heavy := boxBody("p1", RolePiece, 0.5, 1.5, 0, 0.5, 0.5, 0.5)
	heavy.Mass = 50
	heavy.CenterOfMass = Vec3{X: 4, Y: 1.5}
	p2 := boxBody("p2", RolePiece, 0.2, 2.5, 0.3, 0.5, 0.5, 0.5)
	p3 := boxBody("p3", RolePiece, -0.2, 2.5, -0.3, 0.5, 0.5, 0.5)

	a := NewAnalyzer(DefaultConfig())
	info := a.Tick(time.Now(), []Body{base, heavy, p2, p3})

	if len(info.Polygon) >= a.cfg.MinContactPoints {
		assert.Zero(t, info.MassPosition, "unsupported centroid scores 0")
	}
}

package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmarfinetz/3dTetris/internal/stability"
)

func platform() *Body {
	return NewStaticBody(stability.Vec3{Y: 0.5}, stability.Vec3{X: 3, Y: 0.5, Z: 3})
}

func TestBodyDefaults(t *testing.T) {
	b := NewBody(stability.RolePiece, stability.Vec3{Y: 5}, stability.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, -1)
	assert.Equal(t, 1.0, b.Mass, "non-positive mass defaults to 1")
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, stability.Vec3{Y: 1}, b.Up)
	assert.False(t, b.Settled())
}

func TestDropSettlesOnPlatform(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	w.AddBody(platform())
	piece := NewBody(stability.RolePiece, stability.Vec3{Y: 3}, stability.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, 1)
	w.AddBody(piece)

	for i := 0; i < 600; i++ {
		w.Step(1.0 / 120.0)
		if piece.Settled() {
			break
		}
	}

	require.True(t, piece.Settled(), "piece never settled")
	// Resting on the platform top (y=1) the box center sits at 1.5.
	assert.InDelta(t, 1.5, piece.Position.Y, 0.05)
	assert.InDelta(t, 0, piece.Velocity.Y, 1e-6)
	assert.Equal(t, stability.Vec3{Y: 1}, piece.Up, "fully supported piece stays upright")
}

func TestStackTwoPieces(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	w.AddBody(platform())
	lower := NewBody(stability.RolePiece, stability.Vec3{Y: 1.5}, stability.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, 1)
	upper := NewBody(stability.RolePiece, stability.Vec3{Y: 4}, stability.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, 1)
	w.AddBody(lower)
	w.AddBody(upper)

	for i := 0; i < 1200; i++ {
		w.Step(1.0 / 120.0)
		if lower.Settled() && upper.Settled() {
			break
		}
	}

	require.True(t, lower.Settled() && upper.Settled())
	assert.InDelta(t, 1.5, lower.Position.Y, 0.05)
	assert.InDelta(t, 2.5, upper.Position.Y, 0.1)
}

func TestOverhangLeansPiece(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	w.AddBody(platform())
	lower := NewBody(stability.RolePiece, stability.Vec3{Y: 1.5}, stability.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, 1)
	// Upper piece offset so half its footprint hangs past the lower one.
	upper := NewBody(stability.RolePiece, stability.Vec3{X: 0.5, Y: 3}, stability.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, 1)
	w.AddBody(lower)
	w.AddBody(upper)

	for i := 0; i < 1200; i++ {
		w.Step(1.0 / 120.0)
	}

	angle := math.Acos(upper.Up.Normalize().Dot(stability.Vec3{Y: 1}))
	assert.Greater(t, angle, 0.0, "overhung piece should lean")
	assert.Greater(t, upper.Up.X, 0.0, "lean points toward the overhang side")
}

func TestKillPlaneCullsFallenBodies(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	w.AddBody(platform())
	// Spawned entirely off the platform: nothing breaks its fall.
	stray := NewBody(stability.RolePiece, stability.Vec3{X: 10, Y: 3}, stability.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, 1)
	w.AddBody(stray)

	for i := 0; i < 600; i++ {
		w.Step(1.0 / 120.0)
	}

	require.Len(t, w.Lost(), 1)
	assert.Equal(t, stray.ID, w.Lost()[0].ID)
	assert.Len(t, w.Bodies(), 1, "only the platform remains")
}

func TestSnapshotMatchesBodies(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	w.AddBody(platform())
	piece := NewBody(stability.RolePiece, stability.Vec3{X: 1, Y: 1.5, Z: -1}, stability.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, 2.5)
	piece.COMOffset = stability.Vec3{Y: -0.1}
	w.AddBody(piece)

	snap := w.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, stability.RoleBase, snap[0].Role)
	assert.Equal(t, piece.ID, snap[1].ID)
	assert.Equal(t, 2.5, snap[1].Mass)
	assert.Equal(t, stability.Vec3{X: 1, Y: 1.4, Z: -1}, snap[1].CenterOfMass)
}

func TestResetClearsWorld(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	w.AddBody(platform())
	w.AddBody(NewBody(stability.RolePiece, stability.Vec3{Y: 2}, stability.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, 1))
	w.Reset()
	assert.Empty(t, w.Bodies())
	assert.Empty(t, w.Lost())
}

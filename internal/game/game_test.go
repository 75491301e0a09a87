package game

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmarfinetz/3dTetris/internal/physics"
	"github.com/mmarfinetz/3dTetris/internal/stability"
)

const testDt = time.Second / 120

func newTestGame(seed int64) *Game {
	world := physics.NewWorld(physics.DefaultWorldConfig())
	return New(DefaultConfig(), world, seed)
}

func TestNewGameSeedsBase(t *testing.T) {
	g := newTestGame(1)
	bodies := g.World().Bodies()
	require.Len(t, bodies, 1)
	assert.Equal(t, stability.RoleBase, bodies[0].Role)
	assert.True(t, bodies[0].Static)
	assert.Equal(t, StateSpawning, g.State())
}

func TestFirstPiecePlacement(t *testing.T) {
	g := newTestGame(42)

	for i := 0; i < 120*30 && g.PiecesPlaced() == 0; i++ {
		g.Tick(testDt)
	}

	require.Equal(t, 1, g.PiecesPlaced(), "first piece should settle and score")
	assert.Greater(t, g.Score(), 0.0)
	assert.NotEqual(t, StateGameOver, g.State())
	assert.Len(t, g.World().Bodies(), 2, "base plus the placed piece")
}

func TestRunsAreReproducible(t *testing.T) {
	a, b := newTestGame(7), newTestGame(7)
	for i := 0; i < 120*60; i++ {
		a.Tick(testDt)
		b.Tick(testDt)
	}
	assert.Equal(t, a.Score(), b.Score(), "same seed, same run")
	assert.Equal(t, a.PiecesPlaced(), b.PiecesPlaced())

	// Full world state must match body for body, not just the totals.
	// Body IDs are fresh uuids per run, so compare everything else.
	diff := cmp.Diff(a.World().Snapshot(), b.World().Snapshot(),
		cmpopts.IgnoreFields(stability.Body{}, "ID"))
	assert.Empty(t, diff, "same seed produced diverging worlds")
}

func TestGameOverAfterSustainedInstability(t *testing.T) {
	g := newTestGame(3)
	for i := 0; i < 120*30 && g.PiecesPlaced() == 0; i++ {
		g.Tick(testDt)
	}
	require.Greater(t, g.PiecesPlaced(), 0)

	unstable := stability.Info{Score: 5, Stable: false}
	g.ObserveStability(unstable)
	for i := 0; i < 120*3 && g.State() != StateGameOver; i++ {
		g.Tick(testDt)
	}
	assert.Equal(t, StateGameOver, g.State(), "sustained critical score ends the run")
}

func TestInstabilityGraceRecovers(t *testing.T) {
	g := newTestGame(3)
	for i := 0; i < 120*30 && g.PiecesPlaced() == 0; i++ {
		g.Tick(testDt)
	}
	require.Greater(t, g.PiecesPlaced(), 0)

	// A short unstable blip followed by recovery must not end the run.
	g.ObserveStability(stability.Info{Score: 5, Stable: false})
	for i := 0; i < 60; i++ { // half a second, under the 2s grace
		g.Tick(testDt)
	}
	g.ObserveStability(stability.Info{Score: 80, Stable: true})
	for i := 0; i < 120; i++ {
		g.Tick(testDt)
	}
	assert.NotEqual(t, StateGameOver, g.State())
}

func TestNudgeOnlyAffectsActivePiece(t *testing.T) {
	g := newTestGame(9)
	// Run a tick so a piece spawns and enters the dropping phase.
	g.Tick(testDt)
	require.Equal(t, StateDropping, g.State())
	require.NotNil(t, g.active)

	before := g.active.Velocity.X
	g.Nudge(1, 0)
	assert.Greater(t, g.active.Velocity.X, before)

	g.state = StateGameOver
	v := g.active.Velocity.X
	g.Nudge(1, 0)
	assert.Equal(t, v, g.active.Velocity.X, "nudge is a no-op after game over")
}

func TestNudgeSteersThroughSettling(t *testing.T) {
	g := newTestGame(9)
	g.Tick(testDt)
	require.NotNil(t, g.active)

	g.state = StateSettling
	before := g.active.Velocity.X
	g.Nudge(1, 0)
	assert.Greater(t, g.active.Velocity.X, before, "piece stays steerable while settling")

	g.state = StateScoring
	v := g.active.Velocity.X
	g.Nudge(1, 0)
	assert.Equal(t, v, g.active.Velocity.X, "scoring phase ignores nudges")
}

func TestReset(t *testing.T) {
	g := newTestGame(11)
	for i := 0; i < 120*30 && g.PiecesPlaced() == 0; i++ {
		g.Tick(testDt)
	}
	require.Greater(t, g.PiecesPlaced(), 0)

	g.Reset()
	assert.Equal(t, StateSpawning, g.State())
	assert.Zero(t, g.Score())
	assert.Zero(t, g.PiecesPlaced())
	require.Len(t, g.World().Bodies(), 1, "only the base survives reset")
	assert.Equal(t, stability.RoleBase, g.World().Bodies()[0].Role)
}

func TestSnapshot(t *testing.T) {
	g := newTestGame(13)
	g.Tick(testDt)

	snap := g.Snapshot()
	assert.Equal(t, "dropping", snap.State)
	assert.NotEmpty(t, snap.ActivePieceID)
	assert.Len(t, snap.Bodies, 2)
	assert.Greater(t, snap.StackHeight, 0.0)
}

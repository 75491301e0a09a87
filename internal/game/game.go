// Package game owns the stacking game state machine: piece spawning,
// drop control, settle detection, scoring, and game over. It advances
// purely by ticks from the simulation runner; there are no engine
// callbacks or timers hidden inside.
package game

import (
	"math/rand"
	"time"

	"github.com/mmarfinetz/3dTetris/internal/physics"
	"github.com/mmarfinetz/3dTetris/internal/stability"
)

// State is the game loop phase, a typed enum advanced tick by tick.
type State int

const (
	StateSpawning State = iota
	StateDropping
	StateSettling
	StateScoring
	StateGameOver
)

func (s State) String() string {
	switch s {
	case StateSpawning:
		return "spawning"
	case StateDropping:
		return "dropping"
	case StateSettling:
		return "settling"
	case StateScoring:
		return "scoring"
	case StateGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Config holds the game tuning parameters.
type Config struct {
	BaseHalfExtents stability.Vec3
	SpawnClearance  float64 // vertical gap above the current stack top
	SpawnJitter     float64 // max lateral spawn offset
	NudgeSpeed      float64 // lateral velocity applied per nudge
	SettleTimeout   time.Duration
	// GameOverGrace is how long the smoothed score may stay below the
	// critical threshold before the run ends.
	GameOverGrace time.Duration
	HeightBonus   float64 // points per length unit of stack height
}

// DefaultConfig returns production game defaults.
func DefaultConfig() Config {
	return Config{
		BaseHalfExtents: stability.Vec3{X: 3, Y: 0.5, Z: 3},
		SpawnClearance:  2.5,
		SpawnJitter:     1.0,
		NudgeSpeed:      1.5,
		SettleTimeout:   8 * time.Second,
		GameOverGrace:   2 * time.Second,
		HeightBonus:     5,
	}
}

// Snapshot is the read-only view of the game handed to HTTP readers.
type Snapshot struct {
	State         string          `json:"state"`
	Score         float64         `json:"score"`
	PiecesPlaced  int             `json:"pieces_placed"`
	PiecesLost    int             `json:"pieces_lost"`
	StackHeight   float64         `json:"stack_height"`
	ActivePieceID string          `json:"active_piece_id,omitempty"`
	Bodies        []stability.Body `json:"bodies"`
}

// Game drives one stacking run. It owns the physics world; the runner
// owns the analyzer and feeds each fresh stability.Info back in via
// ObserveStability.
type Game struct {
	cfg       Config
	world     *physics.World
	rng       *rand.Rand
	catalogue []PieceSpec

	state        State
	active       *physics.Body
	settleSince  time.Duration
	unstableFor  time.Duration
	score        float64
	piecesPlaced int
	piecesLost   int
	lastInfo     stability.Info
	hasInfo      bool
}

// New creates a game over the given world, seeds the base platform, and
// leaves the machine in StateSpawning. The rng seed makes runs
// reproducible for the trainer.
func New(cfg Config, world *physics.World, seed int64) *Game {
	g := &Game{
		cfg:       cfg,
		world:     world,
		rng:       rand.New(rand.NewSource(seed)),
		catalogue: Catalogue(),
		state:     StateSpawning,
	}
	g.spawnBase()
	return g
}

func (g *Game) spawnBase() {
	base := physics.NewStaticBody(
		stability.Vec3{Y: g.cfg.BaseHalfExtents.Y},
		g.cfg.BaseHalfExtents,
	)
	g.world.AddBody(base)
}

// World exposes the physics world for the runner.
func (g *Game) World() *physics.World { return g.world }

// State returns the current machine state.
func (g *Game) State() State { return g.state }

// Score returns the accumulated score.
func (g *Game) Score() float64 { return g.score }

// PiecesPlaced returns how many pieces have settled and scored.
func (g *Game) PiecesPlaced() int { return g.piecesPlaced }

// ObserveStability feeds the latest analysis result into the game-over
// logic and scoring.
func (g *Game) ObserveStability(info stability.Info) {
	g.lastInfo = info
	g.hasInfo = true
}

// Nudge applies lateral control velocity to the active piece. The
// piece stays steerable while it drops and while it settles; in any
// other state the call is a no-op.
func (g *Game) Nudge(dx, dz float64) {
	if g.state != StateDropping && g.state != StateSettling {
		return
	}
	if g.active == nil {
		return
	}
	g.active.Velocity.X += dx * g.cfg.NudgeSpeed
	g.active.Velocity.Z += dz * g.cfg.NudgeSpeed
}

// Tick advances the physics world by dt and then the state machine.
func (g *Game) Tick(dt time.Duration) {
	if g.state == StateGameOver {
		return
	}

	g.world.Step(dt.Seconds())
	g.trackLost()
	g.trackInstability(dt)

	switch g.state {
	case StateSpawning:
		g.spawnPiece()
		g.state = StateDropping
	case StateDropping:
		g.settleSince = 0
		if g.active == nil || g.active.Settled() {
			g.state = StateSettling
		}
	case StateSettling:
		g.settleSince += dt
		if g.allSettled() || g.settleSince >= g.cfg.SettleTimeout {
			g.state = StateScoring
		}
	case StateScoring:
		g.scorePlacement()
		g.state = StateSpawning
	}
}

func (g *Game) spawnPiece() {
	spec := pickPiece(g.rng, g.catalogue)
	x := (g.rng.Float64()*2 - 1) * g.cfg.SpawnJitter
	z := (g.rng.Float64()*2 - 1) * g.cfg.SpawnJitter
	y := g.stackTop() + g.cfg.SpawnClearance + spec.HalfExtents.Y

	piece := physics.NewBody(stability.RolePiece, stability.Vec3{X: x, Y: y, Z: z}, spec.HalfExtents, spec.Mass)
	g.world.AddBody(piece)
	g.active = piece
}

// stackTop returns the highest AABB top among live bodies, or 0.
func (g *Game) stackTop() float64 {
	top := 0.0
	for _, b := range g.world.Bodies() {
		if t := b.Bounds().Max.Y; t > top {
			top = t
		}
	}
	return top
}

func (g *Game) allSettled() bool {
	for _, b := range g.world.Bodies() {
		if !b.Settled() {
			return false
		}
	}
	return true
}

// scorePlacement awards points for the settled piece from the current
// stability score plus a height bonus, then clears the active piece.
func (g *Game) scorePlacement() {
	if g.active != nil && g.world.Body(g.active.ID) != nil {
		placement := 10.0
		if g.hasInfo {
			placement = g.lastInfo.Score / 10
		}
		g.score += placement + g.stackTop()*g.cfg.HeightBonus/10
		g.piecesPlaced++
	}
	g.active = nil
}

// trackLost ends the run when a placed piece falls off the base. The
// actively dropping piece ending up lost just costs its points.
func (g *Game) trackLost() {
	lost := g.world.Lost()
	if len(lost) == g.piecesLost {
		return
	}
	for _, b := range lost[g.piecesLost:] {
		if g.active != nil && b.ID == g.active.ID {
			g.active = nil
			if g.state == StateDropping || g.state == StateSettling {
				g.state = StateScoring
			}
			continue
		}
		// A previously settled piece fell: the tower is coming apart.
		g.state = StateGameOver
	}
	g.piecesLost = len(lost)
}

// trackInstability ends the run when the smoothed stability score stays
// below the critical threshold for the grace duration.
func (g *Game) trackInstability(dt time.Duration) {
	if !g.hasInfo || g.piecesPlaced == 0 {
		return
	}
	if g.lastInfo.Stable {
		g.unstableFor = 0
		return
	}
	g.unstableFor += dt
	if g.unstableFor >= g.cfg.GameOverGrace {
		g.state = StateGameOver
	}
}

// Reset restarts the run: world, base, score, and state machine. The
// caller is responsible for resetting the analyzer's history alongside.
func (g *Game) Reset() {
	g.world.Reset()
	g.spawnBase()
	g.state = StateSpawning
	g.active = nil
	g.score = 0
	g.piecesPlaced = 0
	g.piecesLost = 0
	g.settleSince = 0
	g.unstableFor = 0
	g.hasInfo = false
	g.lastInfo = stability.Info{}
}

// Snapshot returns a copy of the externally visible game state.
func (g *Game) Snapshot() Snapshot {
	snap := Snapshot{
		State:        g.state.String(),
		Score:        g.score,
		PiecesPlaced: g.piecesPlaced,
		PiecesLost:   g.piecesLost,
		StackHeight:  g.stackTop(),
		Bodies:       g.world.Snapshot(),
	}
	if g.active != nil {
		snap.ActivePieceID = g.active.ID
	}
	return snap
}

package physics

import (
	"math"

	"github.com/mmarfinetz/3dTetris/internal/stability"
)

// WorldConfig holds the simulation parameters. Start from
// DefaultWorldConfig.
type WorldConfig struct {
	Gravity       float64 // downward acceleration, length units/s²
	SettleSpeed   float64 // speed below which a body counts as still
	SettleSteps   int     // consecutive still steps before settled
	SettleDamping float64 // lateral velocity multiplier applied on support
	MaxLeanAngle  float64 // radians of lean applied to a fully overhung piece
	KillPlaneY    float64 // bodies falling below this are lost
}

// DefaultWorldConfig returns production world defaults.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		Gravity:       9.81,
		SettleSpeed:   0.05,
		SettleSteps:   10,
		SettleDamping: 0.6,
		MaxLeanAngle:  0.35,
		KillPlaneY:    -5,
	}
}

// World owns the bodies and advances them with a fixed timestep. It is
// single-threaded: the simulation runner is the only mutator, and
// readers receive snapshots.
type World struct {
	cfg    WorldConfig
	bodies []*Body
	lost   []*Body // fell past the kill plane this run
}

// NewWorld creates an empty world with the given configuration.
func NewWorld(cfg WorldConfig) *World {
	return &World{cfg: cfg}
}

// AddBody inserts a body. Order is preserved.
func (w *World) AddBody(b *Body) {
	w.bodies = append(w.bodies, b)
}

// Bodies returns the live bodies. Callers must not hold the slice
// across a Step.
func (w *World) Bodies() []*Body { return w.bodies }

// Lost returns bodies that fell past the kill plane since the last
// Reset.
func (w *World) Lost() []*Body { return w.lost }

// Body returns the body with the given ID, or nil.
func (w *World) Body(id string) *Body {
	for _, b := range w.bodies {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// Reset removes every body, including the base, and clears the lost
// list.
func (w *World) Reset() {
	w.bodies = nil
	w.lost = nil
}

// Snapshot returns analyzer-ready views of every live body.
func (w *World) Snapshot() []stability.Body {
	out := make([]stability.Body, len(w.bodies))
	for i, b := range w.bodies {
		out[i] = b.Snapshot()
	}
	return out
}

// Step advances the simulation by dt seconds: gravity and integration,
// pairwise minimum-penetration resolution, kill-plane culling, and rest
// detection.
func (w *World) Step(dt float64) {
	for _, b := range w.bodies {
		if b.Static {
			continue
		}
		b.Velocity.Y -= w.cfg.Gravity * dt
		b.Position = b.Position.Add(b.Velocity.Scale(dt))
	}

	w.resolveCollisions()
	w.cullLost()

	for _, b := range w.bodies {
		if b.Static {
			continue
		}
		if b.Velocity.Norm() < w.cfg.SettleSpeed {
			b.stillSteps++
			if b.stillSteps >= w.cfg.SettleSteps {
				b.settled = true
			}
		} else {
			b.stillSteps = 0
			b.settled = false
		}
	}
}

// resolveCollisions pushes overlapping pairs apart along the axis of
// minimum penetration. Vertical support kills downward velocity, damps
// lateral drift (the settlement adjustment), and leans the piece when
// it overhangs its support.
func (w *World) resolveCollisions() {
	for i := 0; i < len(w.bodies); i++ {
		for j := i + 1; j < len(w.bodies); j++ {
			w.resolvePair(w.bodies[i], w.bodies[j])
		}
	}
}

func (w *World) resolvePair(a, b *Body) {
	if a.Static && b.Static {
		return
	}
	boxA, boxB := a.Bounds(), b.Bounds()
	depth, axis := penetration(boxA, boxB)
	if axis < 0 {
		return
	}

	// Split the correction by mass; static bodies absorb nothing.
	var moveA, moveB float64
	switch {
	case a.Static:
		moveB = depth
	case b.Static:
		moveA = -depth
	default:
		total := a.Mass + b.Mass
		moveA = -depth * (b.Mass / total)
		moveB = depth * (a.Mass / total)
	}
	// The default correction assumes b sits on the positive side of a;
	// flip it when the centers are ordered the other way.
	if axisDelta(axis, a.Position, b.Position) < 0 {
		moveA, moveB = -moveA, -moveB
	}

	switch axis {
	case 0:
		a.Position.X += moveA
		b.Position.X += moveB
		zeroAxisVelocity(a, b, &a.Velocity.X, &b.Velocity.X)
	case 1:
		a.Position.Y += moveA
		b.Position.Y += moveB
		w.resolveVerticalSupport(a, b)
	case 2:
		a.Position.Z += moveA
		b.Position.Z += moveB
		zeroAxisVelocity(a, b, &a.Velocity.Z, &b.Velocity.Z)
	}
}

// resolveVerticalSupport handles the common case: the upper body comes
// to rest on the lower one.
func (w *World) resolveVerticalSupport(a, b *Body) {
	upper, lower := a, b
	if upper.Position.Y < lower.Position.Y {
		upper, lower = lower, upper
	}
	if !upper.Static && upper.Velocity.Y < 0 {
		upper.Velocity.Y = 0
		upper.Velocity.X *= w.cfg.SettleDamping
		upper.Velocity.Z *= w.cfg.SettleDamping
		w.applyLean(upper, lower)
	}
	if !lower.Static && lower.Velocity.Y > 0 {
		lower.Velocity.Y = 0
	}
}

// applyLean tilts the upper body's up axis away from vertical in
// proportion to how far it overhangs its support footprint. A fully
// supported piece stays upright.
func (w *World) applyLean(upper, lower *Body) {
	ub, lb := upper.Bounds(), lower.Bounds()
	overlapX := math.Min(ub.Max.X, lb.Max.X) - math.Max(ub.Min.X, lb.Min.X)
	overlapZ := math.Min(ub.Max.Z, lb.Max.Z) - math.Max(ub.Min.Z, lb.Min.Z)
	if overlapX <= 0 || overlapZ <= 0 {
		return
	}
	footprint := (ub.Max.X - ub.Min.X) * (ub.Max.Z - ub.Min.Z)
	if footprint <= 0 {
		return
	}
	overhang := 1 - (overlapX*overlapZ)/footprint
	if overhang <= 0 {
		upper.Up = stability.Vec3{Y: 1}
		return
	}

	angle := overhang * w.cfg.MaxLeanAngle
	lean := upper.Position.Sub(lower.Position)
	lean.Y = 0
	lean = lean.Normalize()
	upper.Up = stability.Vec3{
		X: lean.X * math.Sin(angle),
		Y: math.Cos(angle),
		Z: lean.Z * math.Sin(angle),
	}
}

// cullLost moves bodies that fell past the kill plane out of the live
// set.
func (w *World) cullLost() {
	live := w.bodies[:0]
	for _, b := range w.bodies {
		if !b.Static && b.Position.Y < w.cfg.KillPlaneY {
			w.lost = append(w.lost, b)
			continue
		}
		live = append(live, b)
	}
	w.bodies = live
}

func zeroAxisVelocity(a, b *Body, va, vb *float64) {
	if !a.Static {
		*va = 0
	}
	if !b.Static {
		*vb = 0
	}
}

// penetration returns the overlap depth and the axis of minimum
// penetration (0=x, 1=y, 2=z), or (0, -1) when the boxes are disjoint
// or merely touching.
func penetration(a, b stability.AABB) (depth float64, axis int) {
	overlapX := math.Min(a.Max.X, b.Max.X) - math.Max(a.Min.X, b.Min.X)
	overlapY := math.Min(a.Max.Y, b.Max.Y) - math.Max(a.Min.Y, b.Min.Y)
	overlapZ := math.Min(a.Max.Z, b.Max.Z) - math.Max(a.Min.Z, b.Min.Z)
	if overlapX <= 0 || overlapY <= 0 || overlapZ <= 0 {
		return 0, -1
	}
	depth = overlapX
	axis = 0
	if overlapY < depth {
		depth = overlapY
		axis = 1
	}
	if overlapZ < depth {
		depth = overlapZ
		axis = 2
	}
	return depth, axis
}

func axisDelta(axis int, a, b stability.Vec3) float64 {
	switch axis {
	case 0:
		return b.X - a.X
	case 1:
		return b.Y - a.Y
	default:
		return b.Z - a.Z
	}
}

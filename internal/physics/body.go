// Package physics is the minimal headless rigid-body world the game
// loop and the trainer run against: axis-aligned boxes, gravity,
// fixed-timestep integration, and rest detection. It is deliberately
// not a physics engine; it only needs to settle stacked boxes well
// enough for the stability analysis to be meaningful.
package physics

import (
	"github.com/google/uuid"

	"github.com/mmarfinetz/3dTetris/internal/stability"
)

// Body is one axis-aligned box in the world. Static bodies (the base)
// ignore gravity and never move.
type Body struct {
	ID          string
	Role        stability.Role
	Position    stability.Vec3 // box center, world space
	Velocity    stability.Vec3
	HalfExtents stability.Vec3
	Mass        float64
	Up          stability.Vec3 // leans away from vertical on bad placements
	COMOffset   stability.Vec3 // center-of-mass offset from box center
	Static      bool

	// Rest detection: consecutive steps below the settle speed.
	stillSteps int
	settled    bool
}

// NewBody creates a dynamic body with a fresh ID. Mass defaults to 1
// when non-positive.
func NewBody(role stability.Role, pos, halfExtents stability.Vec3, mass float64) *Body {
	if mass <= 0 {
		mass = 1
	}
	return &Body{
		ID:          uuid.New().String(),
		Role:        role,
		Position:    pos,
		HalfExtents: halfExtents,
		Mass:        mass,
		Up:          stability.Vec3{Y: 1},
	}
}

// NewStaticBody creates the immovable base platform.
func NewStaticBody(pos, halfExtents stability.Vec3) *Body {
	b := NewBody(stability.RoleBase, pos, halfExtents, 1)
	b.Static = true
	b.settled = true
	return b
}

// Bounds returns the body's world-space AABB.
func (b *Body) Bounds() stability.AABB {
	return stability.AABB{
		Min: b.Position.Sub(b.HalfExtents),
		Max: b.Position.Add(b.HalfExtents),
	}
}

// WorldCenterOfMass returns the center of mass in world space.
func (b *Body) WorldCenterOfMass() stability.Vec3 {
	return b.Position.Add(b.COMOffset)
}

// Settled reports whether the body has come to rest.
func (b *Body) Settled() bool { return b.Static || b.settled }

// Snapshot converts the body to the read-only view the stability
// analyzer consumes.
func (b *Body) Snapshot() stability.Body {
	return stability.Body{
		ID:           b.ID,
		Role:         b.Role,
		Mass:         b.Mass,
		CenterOfMass: b.WorldCenterOfMass(),
		Up:           b.Up,
		Bounds:       b.Bounds(),
	}
}

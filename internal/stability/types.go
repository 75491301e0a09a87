package stability

import (
	"math"
	"time"
)

// Role identifies what part a body plays in the stack. It is resolved
// once at body creation; nothing in the analysis path compares strings.
type Role int

const (
	// RoleBase is the static platform the tower is built on.
	RoleBase Role = iota
	// RolePiece is a player-placed stacking piece.
	RolePiece
)

func (r Role) String() string {
	switch r {
	case RoleBase:
		return "base"
	case RolePiece:
		return "piece"
	default:
		return "unknown"
	}
}

// Vec3 is a point or direction in world coordinates. Y is up.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// Normalize returns v scaled to unit length, or the zero vector if v is
// too short to normalize safely.
func (v Vec3) Normalize() Vec3 {
	n := v.Norm()
	if n < 1e-12 {
		return Vec3{}
	}
	return v.Scale(1 / n)
}

// Ground projects v onto the ground plane (y = 0).
func (v Vec3) Ground() Point2 { return Point2{X: v.X, Z: v.Z} }

// Point2 is a point on the ground plane. The vertical component has
// already been discarded.
type Point2 struct {
	X, Z float64
}

// Sub returns p - o.
func (p Point2) Sub(o Point2) Point2 { return Point2{p.X - o.X, p.Z - o.Z} }

// Dist returns the Euclidean distance between p and o.
func (p Point2) Dist(o Point2) float64 {
	dx, dz := p.X-o.X, p.Z-o.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// AABB is an axis-aligned bounding box in world coordinates.
type AABB struct {
	Min, Max Vec3
}

// Overlaps reports whether the two boxes share any volume.
func (b AABB) Overlaps(o AABB) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y &&
		b.Min.Z <= o.Max.Z && b.Max.Z >= o.Min.Z
}

// Center returns the box midpoint.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Body is a read-only snapshot of one stacked object as seen by the
// analyzer. The game loop owns the live objects; it hands the analyzer
// a fresh slice of these each tick.
type Body struct {
	ID           string
	Role         Role
	Mass         float64
	CenterOfMass Vec3 // world space
	Up           Vec3 // world-space up axis of the body
	Bounds       AABB // world space
}

// Info is the published analysis result for one tick. It is recreated
// every tick; consumers must copy anything they want to keep.
type Info struct {
	// Score is the exponentially smoothed stability score in [0,100].
	Score float64 `json:"score"`
	// Target is the raw score computed this tick, before smoothing.
	Target float64 `json:"target"`

	// Sub-score breakdown, each in [0,100].
	MassPosition   float64 `json:"mass_position"`
	ContactQuality float64 `json:"contact_quality"`
	Oscillation    float64 `json:"oscillation"`
	Tilt           float64 `json:"tilt"`

	Centroid       Vec3     `json:"centroid"`
	Polygon        []Point2 `json:"polygon"`
	OscillationMag float64  `json:"oscillation_magnitude"`
	Stable         bool     `json:"stable"`
	Tick           time.Time `json:"tick"`
}

package stability

import "math"

// OscillationWarmingUp is the sentinel returned by Oscillation before
// the history window has filled. Callers must not penalize stability
// while it is returned.
const OscillationWarmingUp = -1.0

// WeightedCentroid returns the mass-weighted centroid of the bodies.
// ok is false when total mass is zero (empty stack); the zero vector
// returned alongside is not a real position.
func WeightedCentroid(bodies []Body) (c Vec3, ok bool) {
	var sum Vec3
	var total float64
	for _, b := range bodies {
		sum = sum.Add(b.CenterOfMass.Scale(b.Mass))
		total += b.Mass
	}
	if total <= 0 {
		return Vec3{}, false
	}
	return sum.Scale(1 / total), true
}

// CentroidHistory is a fixed-capacity ring of recent tower centroids,
// used only to measure oscillation. Oldest entries are overwritten as
// new ones arrive; Reset empties it when the tower resets.
type CentroidHistory struct {
	entries  []Vec3
	capacity int
	head     int
	size     int
}

// NewCentroidHistory creates a history ring with the given capacity.
func NewCentroidHistory(capacity int) *CentroidHistory {
	if capacity < 1 {
		capacity = 20
	}
	return &CentroidHistory{
		entries:  make([]Vec3, capacity),
		capacity: capacity,
	}
}

// Push stores a centroid sample, overwriting the oldest at capacity.
func (h *CentroidHistory) Push(c Vec3) {
	h.entries[h.head] = c
	h.head = (h.head + 1) % h.capacity
	if h.size < h.capacity {
		h.size++
	}
}

// Size returns the current number of stored samples.
func (h *CentroidHistory) Size() int { return h.size }

// Full reports whether the window has reached capacity.
func (h *CentroidHistory) Full() bool { return h.size == h.capacity }

// Reset empties the history.
func (h *CentroidHistory) Reset() {
	h.head = 0
	h.size = 0
}

// Oscillation returns the average Euclidean distance of the stored
// centroids from their own mean. It is only defined once the window is
// full; before that it returns OscillationWarmingUp.
func (h *CentroidHistory) Oscillation() float64 {
	if !h.Full() {
		return OscillationWarmingUp
	}

	var mean Vec3
	for _, e := range h.entries {
		mean = mean.Add(e)
	}
	mean = mean.Scale(1 / float64(h.size))

	var sum float64
	for _, e := range h.entries {
		sum += e.Sub(mean).Norm()
	}
	return sum / float64(h.size)
}

// AverageUp returns the mean up direction over the bodies and the angle
// in radians between it and world vertical. Angle is 0 when there are
// no bodies.
func AverageUp(bodies []Body) (avg Vec3, angle float64) {
	if len(bodies) == 0 {
		return Vec3{Y: 1}, 0
	}
	for _, b := range bodies {
		avg = avg.Add(b.Up)
	}
	avg = avg.Scale(1 / float64(len(bodies)))
	n := avg.Normalize()
	if (n == Vec3{}) {
		// Up vectors cancelled out entirely; treat as fully tipped.
		return avg, math.Pi / 2
	}
	dot := math.Max(-1, math.Min(1, n.Dot(Vec3{Y: 1})))
	return avg, math.Acos(dot)
}

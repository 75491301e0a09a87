package stability

// ContactPoints collects approximate contact points between every pair
// of overlapping bodies, projected to the ground plane. For each
// overlapping pair the contact is the midpoint of the AABB overlap
// region, which for resting boxes lands on the shared face. Points
// closer than mergeDistance to an already accepted point are dropped,
// first seen wins.
//
// Contacts are recomputed in full every tick; nothing here persists.
func ContactPoints(bodies []Body, mergeDistance float64) []Point2 {
	var points []Point2
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			a, b := bodies[i].Bounds, bodies[j].Bounds
			if !a.Overlaps(b) {
				continue
			}
			p := overlapCenter(a, b).Ground()
			if !nearExisting(p, points, mergeDistance) {
				points = append(points, p)
			}
		}
	}
	return points
}

// overlapCenter returns the midpoint of the intersection volume of two
// overlapping AABBs. Callers must have checked Overlaps first.
func overlapCenter(a, b AABB) Vec3 {
	lo := Vec3{
		X: maxf(a.Min.X, b.Min.X),
		Y: maxf(a.Min.Y, b.Min.Y),
		Z: maxf(a.Min.Z, b.Min.Z),
	}
	hi := Vec3{
		X: minf(a.Max.X, b.Max.X),
		Y: minf(a.Max.Y, b.Max.Y),
		Z: minf(a.Max.Z, b.Max.Z),
	}
	return lo.Add(hi).Scale(0.5)
}

func nearExisting(p Point2, accepted []Point2, mergeDistance float64) bool {
	for _, q := range accepted {
		if p.Dist(q) < mergeDistance {
			return true
		}
	}
	return false
}

// SupportPolygon builds the ground-plane support polygon for the given
// bodies: contact collection, merge-distance dedup, then convex hull.
//
// When fewer than minPoints contacts survive dedup the raw merged list
// is returned unchanged and the hull step is skipped; the scorer treats
// such a result as "no reliable support" rather than attempting hull
// geometry on too few points.
func SupportPolygon(bodies []Body, mergeDistance float64, minPoints int) []Point2 {
	points := ContactPoints(bodies, mergeDistance)
	if len(points) < minPoints {
		return points
	}
	return ConvexHull(points)
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

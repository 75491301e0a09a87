package stability

import (
	"math"
	"sort"
)

// geometryEpsilon is the tolerance for cross product and on-edge
// comparisons. Values below this threshold are treated as zero.
const geometryEpsilon = 1e-9

// cross2 returns the z-component of (a-o) x (b-o) on the ground plane.
// Positive means the turn o->a->b is counter-clockwise when viewed with
// x growing right and z growing up.
func cross2(o, a, b Point2) float64 {
	return (a.X-o.X)*(b.Z-o.Z) - (a.Z-o.Z)*(b.X-o.X)
}

// ConvexHull computes the 2D convex hull of pts using the monotone
// chain construction: sort by (x, then z), build the lower chain
// keeping only strict left turns, then the upper chain from the
// reversed order, and join the two dropping the duplicated endpoints.
//
// The result winds counter-clockwise (x right, z up) and contains no
// interior or collinear points. Inputs with fewer than three points are
// returned as a sorted copy. The input slice is not modified.
func ConvexHull(pts []Point2) []Point2 {
	sorted := make([]Point2, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Z < sorted[j].Z
	})

	if len(sorted) < 3 {
		return sorted
	}

	lower := make([]Point2, 0, len(sorted))
	for _, p := range sorted {
		for len(lower) >= 2 && cross2(lower[len(lower)-2], lower[len(lower)-1], p) <= geometryEpsilon {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	upper := make([]Point2, 0, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && cross2(upper[len(upper)-2], upper[len(upper)-1], p) <= geometryEpsilon {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	// Each chain's last point is the first point of the other chain.
	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	return hull
}

// PointInPolygon reports whether p lies inside poly using an even-odd
// ray cast toward +x. A point exactly on a polygon edge counts as
// inside: a centroid sitting on the support boundary is scored by its
// zero margin, not snapped to the outside branch.
func PointInPolygon(p Point2, poly []Point2) bool {
	n := len(poly)
	if n < 3 {
		return false
	}

	for i := 0; i < n; i++ {
		if PointSegmentDistance(p, poly[i], poly[(i+1)%n]) < geometryEpsilon {
			return true
		}
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := poly[i], poly[j]
		if (pi.Z > p.Z) != (pj.Z > p.Z) {
			x := pi.X + (p.Z-pi.Z)/(pj.Z-pi.Z)*(pj.X-pi.X)
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// PointSegmentDistance returns the distance from p to the segment ab.
func PointSegmentDistance(p, a, b Point2) float64 {
	ab := b.Sub(a)
	ap := p.Sub(a)
	lenSq := ab.X*ab.X + ab.Z*ab.Z
	if lenSq < geometryEpsilon*geometryEpsilon {
		return p.Dist(a)
	}
	t := (ap.X*ab.X + ap.Z*ab.Z) / lenSq
	t = math.Max(0, math.Min(1, t))
	closest := Point2{X: a.X + t*ab.X, Z: a.Z + t*ab.Z}
	return p.Dist(closest)
}

// PolygonEdgeDistance returns the distance from p to the nearest edge
// of poly. Returns 0 for polygons with fewer than two vertices.
func PolygonEdgeDistance(p Point2, poly []Point2) float64 {
	n := len(poly)
	if n < 2 {
		return 0
	}
	min := math.Inf(1)
	for i := 0; i < n; i++ {
		d := PointSegmentDistance(p, poly[i], poly[(i+1)%n])
		if d < min {
			min = d
		}
	}
	return min
}

// PolygonArea returns the absolute area of poly via the shoelace
// formula. Degenerate polygons yield 0.
func PolygonArea(poly []Point2) float64 {
	n := len(poly)
	if n < 3 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += poly[i].X*poly[j].Z - poly[j].X*poly[i].Z
	}
	return math.Abs(sum) / 2
}

// PolygonCentroid returns the vertex mean of poly. This is the contact
// distribution center, not the area centroid; contact-quality scoring
// wants the former.
func PolygonCentroid(poly []Point2) Point2 {
	if len(poly) == 0 {
		return Point2{}
	}
	var c Point2
	for _, p := range poly {
		c.X += p.X
		c.Z += p.Z
	}
	c.X /= float64(len(poly))
	c.Z /= float64(len(poly))
	return c
}

// PolygonMaxRadius returns the largest distance from center to any
// vertex of poly.
func PolygonMaxRadius(center Point2, poly []Point2) float64 {
	max := 0.0
	for _, p := range poly {
		if d := center.Dist(p); d > max {
			max = d
		}
	}
	return max
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

package geom

// Ray is an origin plus a direction. Direction is expected to be normalized;
// hit distances are reported in multiples of its length.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// Triangle is three counter-clockwise vertices in world space.
type Triangle struct {
	A, B, C Vec3
}

// Hit describes a ray-triangle intersection.
type Hit struct {
	Distance float64
	U, V     float64 // barycentric coordinates of B and C
}

// epsilon rejects near-parallel determinants before the division that would
// otherwise produce NaN or huge unstable distances.
const epsilon = 1e-9

// IntersectTriangle runs the Möller-Trumbore test. The test is two-sided, so
// triangle winding does not matter. It reports no hit for rays parallel to the
// triangle plane, hits behind the origin, and intersections outside the
// barycentric simplex.
func IntersectTriangle(r Ray, t Triangle) (Hit, bool) {
	e1 := t.B.Sub(t.A)
	e2 := t.C.Sub(t.A)

	p := Cross(r.Dir, e2)
	det := Dot(e1, p)
	if det > -epsilon && det < epsilon {
		return Hit{}, false
	}
	inv := 1 / det

	s := r.Origin.Sub(t.A)
	u := Dot(s, p) * inv
	if u < 0 || u > 1 {
		return Hit{}, false
	}

	q := Cross(s, e1)
	v := Dot(r.Dir, q) * inv
	if v < 0 || u+v > 1 {
		return Hit{}, false
	}

	d := Dot(e2, q) * inv
	if d <= epsilon {
		return Hit{}, false
	}
	return Hit{Distance: d, U: u, V: v}, true
}

// NearestTriangle returns the closest positive-distance hit among tris, or
// false when none intersect within maxDist.
func NearestTriangle(r Ray, tris []Triangle, maxDist float64) (Hit, int, bool) {
	best := Hit{Distance: maxDist}
	bestIdx := -1
	for i := range tris {
		h, ok := IntersectTriangle(r, tris[i])
		if ok && h.Distance < best.Distance {
			best = h
			bestIdx = i
		}
	}
	return best, bestIdx, bestIdx >= 0
}

// Package collide resolves horizontal player movement against the wall
// lattice. The player is a vertical circle of fixed radius; walls are thick
// segments with their doorway and hallway gaps cut out.
package collide

import (
	"math"

	"backrooms/geom"
	"backrooms/world"
)

const maxPushIterations = 4

// Destroyed reports segments removed at runtime; generation-time decay is
// read off the segment itself.
type Destroyed func(world.SegmentID) bool

// Resolve moves a circle of the given radius from from to to, sliding along
// walls it hits. The motion is cut into substeps shorter than the radius so
// a fast frame cannot tunnel through a thin wall. Y passes through untouched;
// vertical motion is the caller's business. A non-finite target leaves the
// player where they were.
func Resolve(g *world.Generator, destroyed Destroyed, from, to geom.Vec3, radius float64) geom.Vec3 {
	if !to.IsFinite() {
		return from
	}

	maxStep := radius * 0.9
	pos := from
	for iter := 0; iter < 64; iter++ {
		dx, dz := to.X-pos.X, to.Z-pos.Z
		dist := math.Sqrt(dx*dx + dz*dz)
		if dist < 1e-9 {
			break
		}
		t := 1.0
		if dist > maxStep {
			t = maxStep / dist
		}
		target := geom.V3(pos.X+dx*t, to.Y, pos.Z+dz*t)
		next := step(g, destroyed, pos, target, radius)
		stalled := math.Abs(next.X-pos.X)+math.Abs(next.Z-pos.Z) < 1e-6
		pos = next
		if stalled || t == 1 {
			break
		}
	}
	return withY(pos, to.Y)
}

func step(g *world.Generator, destroyed Destroyed, from, to geom.Vec3, radius float64) geom.Vec3 {
	cfg := g.Config()
	reach := radius + cfg.CellSize

	if r, ok := pushOut(g, g.SegmentsInRange(to.X, to.Z, reach), destroyed, to, radius); ok {
		return r
	}

	// Corner case the iterative pushout cannot settle: move one axis at a
	// time and keep whichever components survive.
	xOnly := geom.V3(to.X, to.Y, from.Z)
	if r, ok := pushOut(g, g.SegmentsInRange(xOnly.X, xOnly.Z, reach), destroyed, xOnly, radius); ok {
		return r
	}
	zOnly := geom.V3(from.X, to.Y, to.Z)
	if r, ok := pushOut(g, g.SegmentsInRange(zOnly.X, zOnly.Z, reach), destroyed, zOnly, radius); ok {
		return r
	}
	return from
}

func withY(p geom.Vec3, y float64) geom.Vec3 {
	p.Y = y
	return p
}

// pushOut iteratively separates the circle from every blocking piece. It
// reports false when penetration persists after the iteration budget.
func pushOut(g *world.Generator, segs []world.Segment, destroyed Destroyed, pos geom.Vec3, radius float64) (geom.Vec3, bool) {
	cfg := g.Config()
	half := cfg.WallThickness / 2

	for iter := 0; iter < maxPushIterations; iter++ {
		moved := false
		for _, s := range segs {
			if destroyed(s.ID) || s.PreDestroyed() {
				continue
			}
			for _, piece := range s.Pieces(g.OpeningWidth(s.Kind)) {
				px, pz, pen := circleVsPiece(pos.X, pos.Z, radius+half, s, piece)
				if pen > 0 {
					pos.X += px * pen
					pos.Z += pz * pen
					moved = true
				}
			}
		}
		if cfg.PillarsEnabled {
			if p, m := pushOutPillars(g, pos, radius); m {
				pos, moved = p, true
			}
		}
		if !moved {
			return pos, true
		}
	}
	return pos, false
}

// circleVsPiece returns the unit pushout direction and penetration depth of a
// circle against one solid span of a wall, treated as a capsule of the
// combined radius.
func circleVsPiece(x, z, r float64, s world.Segment, p world.Piece) (nx, nz, pen float64) {
	ax := s.A.X + (s.B.X-s.A.X)*p.T0
	az := s.A.Z + (s.B.Z-s.A.Z)*p.T0
	bx := s.A.X + (s.B.X-s.A.X)*p.T1
	bz := s.A.Z + (s.B.Z-s.A.Z)*p.T1

	dx, dz := bx-ax, bz-az
	len2 := dx*dx + dz*dz
	t := 0.0
	if len2 > 0 {
		t = ((x-ax)*dx + (z-az)*dz) / len2
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
	}
	cx, cz := ax+dx*t, az+dz*t
	ox, oz := x-cx, z-cz
	d := math.Sqrt(ox*ox + oz*oz)
	if d >= r {
		return 0, 0, 0
	}
	if d < 1e-9 {
		// Dead center: push along the wall normal.
		nx, nz = -dz, dx
		l := math.Sqrt(nx*nx + nz*nz)
		if l < 1e-9 {
			return 1, 0, r
		}
		return nx / l, nz / l, r
	}
	return ox / d, oz / d, r - d
}

func pushOutPillars(g *world.Generator, pos geom.Vec3, radius float64) (geom.Vec3, bool) {
	cfg := g.Config()
	cs := cfg.CellSize
	half := cfg.PillarSize / 2
	moved := false

	cx0 := int(math.Floor((pos.X - radius) / cs))
	cz0 := int(math.Floor((pos.Z - radius) / cs))
	for cx := cx0; cx <= cx0+1; cx++ {
		for cz := cz0; cz <= cz0+1; cz++ {
			if !g.PillarAt(cx, cz) {
				continue
			}
			px, pz := float64(cx)*cs, float64(cz)*cs
			nx, nz, pen := circleVsBox(pos.X, pos.Z, radius, px-half, pz-half, px+half, pz+half)
			if pen > 0 {
				pos.X += nx * pen
				pos.Z += nz * pen
				moved = true
			}
		}
	}
	return pos, moved
}

func circleVsBox(x, z, r, minX, minZ, maxX, maxZ float64) (nx, nz, pen float64) {
	cx := math.Max(minX, math.Min(x, maxX))
	cz := math.Max(minZ, math.Min(z, maxZ))
	ox, oz := x-cx, z-cz
	d := math.Sqrt(ox*ox + oz*oz)
	if d >= r {
		return 0, 0, 0
	}
	if d < 1e-9 {
		return 1, 0, r
	}
	return ox / d, oz / d, r - d
}

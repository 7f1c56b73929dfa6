package world

import (
	"math"

	"backrooms/geom"
)

// Segment is a wall segment resolved into world space, ready for collision,
// rendering and targeting.
type Segment struct {
	ID         SegmentID
	Kind       WallKind
	Horizontal bool
	// A and B are the lattice endpoints in world units, on the floor plane.
	A, B geom.Vec3
	// Damage is the pre-existing decay in [0,1]; below PreDestroyedBelow the
	// segment counts as already collapsed at generation time.
	Damage float64
	Height float64
}

// PreDestroyedBelow is the damage threshold under which a segment spawns
// already destroyed.
const PreDestroyedBelow = 0.2

// PreDestroyed reports whether decay alone removed this segment.
func (s Segment) PreDestroyed() bool { return s.Damage < PreDestroyedBelow }

// Center is the world-space midpoint of the segment at half height.
func (s Segment) Center() geom.Vec3 {
	m := s.A.Add(s.B).Mul(0.5)
	m.Y = s.Height / 2
	return m
}

// Area is the face area of the segment, used to scale debris counts.
func (s Segment) Area() float64 {
	return s.B.Sub(s.A).Len() * s.Height
}

// Segment materializes one lattice edge into world space. The caller decides
// whether a WallNone result is worth keeping.
func (g *Generator) Segment(id SegmentID) Segment {
	n := g.cfg.ZoneCells
	owner := g.Zone(ZoneCoord{X: floorDiv(id.X1, n), Z: floorDiv(id.Z1, n)})
	cs := g.cfg.CellSize
	return Segment{
		ID:         id,
		Kind:       owner.walls[id],
		Horizontal: id.Horizontal(),
		A:          geom.V3(float64(id.X1)*cs, 0, float64(id.Z1)*cs),
		B:          geom.V3(float64(id.X2)*cs, 0, float64(id.Z2)*cs),
		Damage:     g.Damage(id),
		Height:     g.cfg.CeilingHeight * owner.HeightScale,
	}
}

// SegmentsInRange collects every existing wall segment whose lattice edge
// touches the axis-aligned square of the given radius around (x,z). WallNone
// edges are skipped.
func (g *Generator) SegmentsInRange(x, z, radius float64) []Segment {
	cs := g.cfg.CellSize
	minX := int(math.Floor((x - radius) / cs))
	maxX := int(math.Ceil((x + radius) / cs))
	minZ := int(math.Floor((z - radius) / cs))
	maxZ := int(math.Ceil((z + radius) / cs))

	out := make([]Segment, 0, (maxX-minX)*(maxZ-minZ))
	for cz := minZ; cz <= maxZ; cz++ {
		for cx := minX; cx <= maxX; cx++ {
			for _, id := range [2]SegmentID{
				SegID(cx, cz, cx+1, cz),
				SegID(cx, cz, cx, cz+1),
			} {
				if g.WallKindAt(id) == WallNone {
					continue
				}
				out = append(out, g.Segment(id))
			}
		}
	}
	return out
}

// Piece is one solid span of a wall segment after its opening (if any) is cut
// out, parameterized along the segment: [T0,T1] in [0,1] from A to B.
type Piece struct {
	T0, T1 float64
}

// Pieces returns the solid spans of the segment given the world-unit width of
// its centered opening. A solid wall is one span; an opening wider than the
// segment leaves nothing.
func (s Segment) Pieces(openingWidth float64) []Piece {
	if openingWidth <= 0 {
		return []Piece{{0, 1}}
	}
	length := s.B.Sub(s.A).Len()
	if openingWidth >= length {
		return nil
	}
	half := openingWidth / length / 2
	return []Piece{{0, 0.5 - half}, {0.5 + half, 1}}
}

// OpeningWidth maps a wall kind to the width of its centered gap.
func (g *Generator) OpeningWidth(k WallKind) float64 {
	switch k {
	case WallDoorway:
		return g.cfg.DoorwayWidth
	case WallHallway:
		return g.cfg.HallwayWidth
	default:
		return 0
	}
}

// FaceTriangles returns the front and back quad faces of every solid piece of
// the segment as triangles, for ray targeting. Faces are offset by half the
// wall thickness along the segment normal.
func (g *Generator) FaceTriangles(s Segment) []geom.Triangle {
	pieces := s.Pieces(g.OpeningWidth(s.Kind))
	if len(pieces) == 0 {
		return nil
	}
	dir := s.B.Sub(s.A)
	// Normal in the floor plane.
	normal := geom.V3(-dir.Z, 0, dir.X).Normalize().Mul(g.cfg.WallThickness / 2)

	tris := make([]geom.Triangle, 0, len(pieces)*4)
	for _, p := range pieces {
		a := s.A.Add(dir.Mul(p.T0))
		b := s.A.Add(dir.Mul(p.T1))
		for _, off := range [2]geom.Vec3{normal, normal.Mul(-1)} {
			bl := a.Add(off)
			br := b.Add(off)
			tl := geom.V3(bl.X, s.Height, bl.Z)
			tr := geom.V3(br.X, s.Height, br.Z)
			tris = append(tris,
				geom.Triangle{A: bl, B: br, C: tr},
				geom.Triangle{A: bl, B: tr, C: tl},
			)
		}
	}
	return tris
}

package world

import (
	"github.com/aquilax/go-perlin"

	"backrooms/config"
)

// ZoneType classifies the density character of a zone.
type ZoneType uint8

const (
	ZoneNormal ZoneType = iota
	ZoneDense
	ZoneSparse
	ZoneMaze
	ZoneOpen
)

func (t ZoneType) String() string {
	switch t {
	case ZoneNormal:
		return "normal"
	case ZoneDense:
		return "dense"
	case ZoneSparse:
		return "sparse"
	case ZoneMaze:
		return "maze"
	case ZoneOpen:
		return "open"
	}
	return "unknown"
}

// WallKind is the generated state of one lattice edge.
type WallKind uint8

const (
	WallNone WallKind = iota
	WallSolid
	WallDoorway
	WallHallway
)

// zoneParams is the per-type tuning applied during layout generation.
type zoneParams struct {
	wallChance    float64
	hallwayChance float64 // of walls that exist
	doorwayChance float64
	decayChance   float64
	pillarDensity float64
	baseTint      [3]float64
}

var paramsByType = map[ZoneType]zoneParams{
	ZoneNormal: {0.45, 0.30, 0.20, 0.06, 0.00, [3]float64{1.00, 0.98, 0.92}},
	ZoneDense:  {0.65, 0.20, 0.20, 0.04, 0.15, [3]float64{0.96, 0.92, 0.82}},
	ZoneSparse: {0.25, 0.35, 0.25, 0.10, 0.05, [3]float64{0.92, 0.95, 0.97}},
	ZoneMaze:   {0.85, 0.12, 0.18, 0.03, 0.00, [3]float64{0.98, 0.94, 0.86}},
	ZoneOpen:   {0.10, 0.40, 0.30, 0.12, 0.02, [3]float64{0.90, 0.93, 0.90}},
}

// Zone is the generated-once content of one grid cell of the world. It holds
// the walls it owns: every internal wall plus its south row and west column of
// boundary walls, so each lattice edge has exactly one owner.
type Zone struct {
	Coord ZoneCoord
	Type  ZoneType

	Tint          [3]float64
	WallChance    float64
	DecayChance   float64
	PillarDensity float64
	// HeightScale multiplies the configured ceiling height for this zone.
	HeightScale float64

	walls map[SegmentID]WallKind
}

// Generator derives zones from a world seed. Not safe for concurrent use;
// the engine drives it from a single goroutine.
type Generator struct {
	seed  int64
	cfg   config.Config
	noise *perlin.Perlin
	cache *Cache
}

func NewGenerator(seed int64, cfg config.Config, cache *Cache) *Generator {
	return &Generator{
		seed:  seed,
		cfg:   cfg,
		noise: perlin.NewPerlin(2, 2, 3, seed),
		cache: cache,
	}
}

func (g *Generator) Seed() int64          { return g.seed }
func (g *Generator) Config() config.Config { return g.cfg }

// ZoneAt maps a world position to its zone coordinate.
func (g *Generator) ZoneAt(x, z float64) ZoneCoord {
	size := g.cfg.ZoneSize()
	return ZoneCoord{X: floorDivF(x, size), Z: floorDivF(z, size)}
}

func floorDivF(v, size float64) int {
	q := v / size
	i := int(q)
	if q < 0 && float64(i) != q {
		i--
	}
	return i
}

// Zone returns the zone at zc, generating and caching it on first request.
// The result is a pure function of (seed, zc).
func (g *Generator) Zone(zc ZoneCoord) *Zone {
	if z, ok := g.cache.Get(zc); ok {
		return z
	}
	z := g.generate(zc)
	g.cache.Put(z)
	return z
}

func (g *Generator) generate(zc ZoneCoord) *Zone {
	z := &Zone{Coord: zc, Type: pickZoneType(g.seed, zc)}
	p := paramsByType[z.Type]

	z.WallChance = p.wallChance
	z.DecayChance = p.decayChance
	z.PillarDensity = p.pillarDensity

	for i := 0; i < 3; i++ {
		j := (hashFloat(g.seed, tagTint, zc.X, zc.Z, i) - 0.5) * 0.1
		z.Tint[i] = clamp01(p.baseTint[i] + j)
	}

	// Ceiling height varies smoothly across zones: sample the perlin field at
	// the zone center. Noise2D is deterministic for a fixed generator seed.
	n := g.noise.Noise2D(float64(zc.X)*0.37+0.5, float64(zc.Z)*0.37+0.5) // [-1,1]
	z.HeightScale = 1.05 + 0.18*n

	g.layoutWalls(z, p)
	g.repairConnectivity(z)
	g.openBoundaries(z)
	return z
}

// pickZoneType maps a hash into the five types via fixed weight bands.
func pickZoneType(seed int64, zc ZoneCoord) ZoneType {
	r := hashFloat(seed, tagZoneType, zc.X, zc.Z)
	switch {
	case r < 0.40:
		return ZoneNormal
	case r < 0.60:
		return ZoneDense
	case r < 0.75:
		return ZoneSparse
	case r < 0.90:
		return ZoneMaze
	default:
		return ZoneOpen
	}
}

// layoutWalls rolls every owned lattice edge: absent, or present with an
// opening class.
func (g *Generator) layoutWalls(z *Zone, p zoneParams) {
	n := g.cfg.ZoneCells
	x0, z0 := z.Coord.X*n, z.Coord.Z*n

	z.walls = make(map[SegmentID]WallKind, 2*n*n)
	for cz := z0; cz < z0+n; cz++ {
		for cx := x0; cx < x0+n; cx++ {
			h := SegID(cx, cz, cx+1, cz)
			v := SegID(cx, cz, cx, cz+1)
			z.walls[h] = g.rollWall(h, p)
			z.walls[v] = g.rollWall(v, p)
		}
	}
}

func (g *Generator) rollWall(id SegmentID, p zoneParams) WallKind {
	if hashFloat(g.seed, tagWall, id.X1, id.Z1, id.X2, id.Z2) >= p.wallChance {
		return WallNone
	}
	r := hashFloat(g.seed, tagOpening, id.X1, id.Z1, id.X2, id.Z2)
	switch {
	case r < p.hallwayChance:
		return WallHallway
	case r < p.hallwayChance+p.doorwayChance:
		return WallDoorway
	default:
		return WallSolid
	}
}

// repairConnectivity carves doorways through solid internal walls until every
// cell of the zone reaches every other. Collision assumes this; a sealed
// pocket would trap the player after a reload.
func (g *Generator) repairConnectivity(z *Zone) {
	n := g.cfg.ZoneCells
	x0, z0 := z.Coord.X*n, z.Coord.Z*n

	idx := func(cx, cz int) int { return (cz-z0)*n + (cx - x0) }
	visited := make([]bool, n*n)

	bfs := func(startCx, startCz int) {
		queue := []ZoneCoord{{startCx, startCz}}
		visited[idx(startCx, startCz)] = true
		for len(queue) > 0 {
			c := queue[0]
			queue = queue[1:]
			for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				nx, nz := c.X+d[0], c.Z+d[1]
				if nx < x0 || nx >= x0+n || nz < z0 || nz >= z0+n {
					continue
				}
				if visited[idx(nx, nz)] {
					continue
				}
				if z.walls[wallBetween(c.X, c.Z, nx, nz)] == WallSolid {
					continue
				}
				visited[idx(nx, nz)] = true
				queue = append(queue, ZoneCoord{nx, nz})
			}
		}
	}

	bfs(x0, z0)
	for {
		carved := false
		for cz := z0; cz < z0+n && !carved; cz++ {
			for cx := x0; cx < x0+n && !carved; cx++ {
				if visited[idx(cx, cz)] {
					continue
				}
				// Unreached cell: if it borders a reached cell, open that wall.
				for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
					nx, nz := cx+d[0], cz+d[1]
					if nx < x0 || nx >= x0+n || nz < z0 || nz >= z0+n {
						continue
					}
					if !visited[idx(nx, nz)] {
						continue
					}
					z.walls[wallBetween(cx, cz, nx, nz)] = WallDoorway
					bfs(cx, cz)
					carved = true
					break
				}
			}
		}
		if !carved {
			break
		}
	}
}

// wallBetween returns the id of the lattice edge separating two adjacent
// cells. A cell (cx,cz) spans [cx,cx+1)x[cz,cz+1); its south edge is the
// horizontal wall at line z=cz, its west edge the vertical wall at line x=cx.
func wallBetween(ax, az, bx, bz int) SegmentID {
	if ax == bx { // vertical neighbors: horizontal wall at the higher z line
		lz := az
		if bz > az {
			lz = bz
		}
		return SegID(ax, lz, ax+1, lz)
	}
	lx := ax
	if bx > ax {
		lx = bx
	}
	return SegID(lx, az, lx, az+1)
}

// openBoundaries guarantees at least one passable wall on the zone's owned
// south row and west column. Every zone enforcing this for its own two
// boundaries makes the whole world one connected component.
func (g *Generator) openBoundaries(z *Zone) {
	n := g.cfg.ZoneCells
	x0, z0 := z.Coord.X*n, z.Coord.Z*n

	southOpen := false
	for cx := x0; cx < x0+n; cx++ {
		if z.walls[SegID(cx, z0, cx+1, z0)] != WallSolid {
			southOpen = true
			break
		}
	}
	if !southOpen {
		mid := x0 + n/2
		z.walls[SegID(mid, z0, mid+1, z0)] = WallHallway
	}

	westOpen := false
	for cz := z0; cz < z0+n; cz++ {
		if z.walls[SegID(x0, cz, x0, cz+1)] != WallSolid {
			westOpen = true
			break
		}
	}
	if !westOpen {
		mid := z0 + n/2
		z.walls[SegID(x0, mid, x0, mid+1)] = WallHallway
	}
}

// WallKindAt resolves a lattice edge through its owning zone.
func (g *Generator) WallKindAt(id SegmentID) WallKind {
	n := g.cfg.ZoneCells
	owner := ZoneCoord{X: floorDiv(id.X1, n), Z: floorDiv(id.Z1, n)}
	return g.Zone(owner).walls[id]
}

// Damage returns the pre-existing decay of a segment: 1 means intact, values
// under 0.2 mean the segment spawns already collapsed. Pure function of
// (seed, id); the owning zone only contributes its decay chance.
func (g *Generator) Damage(id SegmentID) float64 {
	n := g.cfg.ZoneCells
	owner := g.Zone(ZoneCoord{X: floorDiv(id.X1, n), Z: floorDiv(id.Z1, n)})
	if hashFloat(g.seed, tagDecay, id.X1, id.Z1, id.X2, id.Z2) >= owner.DecayChance {
		return 1
	}
	return hashFloat(g.seed, tagDamage, id.X1, id.Z1, id.X2, id.Z2) * 0.5
}

// PillarAt reports whether the generation field places a pillar on a lattice
// point. Rendering and collision only consult it when pillars are enabled in
// config; the generation path stays live either way.
func (g *Generator) PillarAt(cx, cz int) bool {
	n := g.cfg.ZoneCells
	owner := g.Zone(ZoneCoord{X: floorDiv(cx, n), Z: floorDiv(cz, n)})
	if owner.PillarDensity <= 0 {
		return false
	}
	return hashFloat(g.seed, tagPillar, cx, cz) < owner.PillarDensity
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

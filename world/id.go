// Package world generates the infinite wall lattice: deterministic zones,
// their wall/doorway layout, and the renderable wall segments derived from
// them.
//
// Everything here is a pure function of (world seed, coordinates). Zones are
// memoized in an explicit Cache owned by the engine; destruction state lives
// elsewhere so cache eviction never loses it.
package world

import "fmt"

// ZoneCoord is the integer grid key of a zone.
type ZoneCoord struct {
	X, Z int
}

// SegmentID identifies a wall segment by its two lattice endpoints, in lattice
// (cell) units. IDs are canonical: (X1,Z1) orders before (X2,Z2).
type SegmentID struct {
	X1, Z1, X2, Z2 int
}

// SegID builds a canonical SegmentID from two lattice points.
func SegID(x1, z1, x2, z2 int) SegmentID {
	if x2 < x1 || (x2 == x1 && z2 < z1) {
		x1, z1, x2, z2 = x2, z2, x1, z1
	}
	return SegmentID{X1: x1, Z1: z1, X2: x2, Z2: z2}
}

// Horizontal reports whether the segment runs along the X axis.
func (id SegmentID) Horizontal() bool { return id.Z1 == id.Z2 }

func (id SegmentID) String() string {
	return fmt.Sprintf("%d,%d-%d,%d", id.X1, id.Z1, id.X2, id.Z2)
}

// splitmix64 is the counter-based mixer behind every generation decision.
// A stateless hash (rather than a shared stateful RNG) keeps zone content
// independent of the order zones are requested in.
func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}

// hash folds a seed, a purpose tag and integer coordinates into one value.
func hash(seed int64, tag uint64, parts ...int) uint64 {
	h := splitmix64(uint64(seed) ^ tag)
	for _, p := range parts {
		h = splitmix64(h ^ uint64(int64(p)))
	}
	return h
}

// hashFloat maps a hash to [0,1).
func hashFloat(seed int64, tag uint64, parts ...int) float64 {
	return float64(hash(seed, tag, parts...)>>11) / (1 << 53)
}

// Purpose tags keep unrelated decisions statistically independent even when
// they share coordinates.
const (
	tagZoneType uint64 = 0xA11CE
	tagTint     uint64 = 0x71B7
	tagWall     uint64 = 0x3A11
	tagOpening  uint64 = 0xD00B
	tagDecay    uint64 = 0xDECA1
	tagDamage   uint64 = 0xDA3A6E
	tagPillar   uint64 = 0x9111AB
)

func floorDiv(a, n int) int {
	q := a / n
	if a%n != 0 && (a < 0) != (n < 0) {
		q--
	}
	return q
}

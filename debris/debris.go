// Package debris turns destroyed wall segments into particles and owns the
// authoritative set of destroyed segments. That set is monotonic for the life
// of a world: zone cache eviction or particle culling never un-destroys a
// wall.
package debris

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"backrooms/config"
	"backrooms/geom"
	"backrooms/internal/logging"
	"backrooms/world"
)

// Particle is one chunk of rubble. Particles are kept oldest-first so cap
// eviction can truncate from the front.
type Particle struct {
	Pos, Vel geom.Vec3
	Size     float64
	Color    [3]uint8
	Age      float64
	Life     float64
	Settled  bool
	// stillFor accumulates time spent below the settle velocity threshold.
	stillFor float64
}

const (
	settleSpeed    = 9.0  // units/s below which a grounded particle may settle
	settleAfter    = 0.35 // seconds of stillness before settling
	bounceDamping  = 0.38
	slideDamping   = 0.72
	settledExtraLo = 2.0 // settled particles linger this much longer
	settledExtraHi = 6.0
)

// Engine steps particles and records which segments are gone.
type Engine struct {
	cfg       config.Config
	destroyed map[world.SegmentID]struct{}
	// rubbled remembers where pre-destroyed piles were spawned; marks beyond
	// the cull distance are dropped so the pile respawns when the player
	// comes back.
	rubbled map[world.SegmentID]geom.Vec3
	particles []Particle
	log       *logrus.Entry
}

func NewEngine(cfg config.Config) *Engine {
	return &Engine{
		cfg:       cfg,
		destroyed: make(map[world.SegmentID]struct{}),
		rubbled:   make(map[world.SegmentID]geom.Vec3),
		particles: make([]Particle, 0, 1024),
		log:       logging.L().WithField("sys", "debris"),
	}
}

// Destroyed reports whether the segment has been destroyed this session.
func (e *Engine) Destroyed(id world.SegmentID) bool {
	_, ok := e.destroyed[id]
	return ok
}

// DestroyedSet copies the destroyed segments, sorted for stable snapshots.
func (e *Engine) DestroyedSet() []world.SegmentID {
	out := make([]world.SegmentID, 0, len(e.destroyed))
	for id := range e.destroyed {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.X1 != b.X1 {
			return a.X1 < b.X1
		}
		if a.Z1 != b.Z1 {
			return a.Z1 < b.Z1
		}
		if a.X2 != b.X2 {
			return a.X2 < b.X2
		}
		return a.Z2 < b.Z2
	})
	return out
}

// Restore replaces the destroyed set wholesale, without spawning particles.
// Used when loading a snapshot.
func (e *Engine) Restore(ids []world.SegmentID) {
	e.destroyed = make(map[world.SegmentID]struct{}, len(ids))
	for _, id := range ids {
		e.destroyed[id] = struct{}{}
	}
	e.particles = e.particles[:0]
	e.rubbled = make(map[world.SegmentID]geom.Vec3)
}

// Destroy marks the segment destroyed and bursts it into particles. Calling
// it again for the same segment is a no-op.
func (e *Engine) Destroy(s world.Segment, palette [][3]uint8) bool {
	if _, done := e.destroyed[s.ID]; done {
		return false
	}
	e.destroyed[s.ID] = struct{}{}

	// Particle count scales with face area, clamped to the configured band.
	n := int(s.Area() / 40)
	if n < e.cfg.DebrisMin {
		n = e.cfg.DebrisMin
	}
	if n > e.cfg.DebrisMax {
		n = e.cfg.DebrisMax
	}

	rng := newRand(s.ID)
	dir := s.B.Sub(s.A)
	unit := dir.Normalize()
	normal := geom.V3(-unit.Z, 0, unit.X)

	for i := 0; i < n; i++ {
		t := rng.float()
		p := s.A.Add(dir.Mul(t))
		side := 1.0
		if rng.float() < 0.5 {
			side = -1
		}
		outward := normal.Mul(side * (20 + rng.float()*70))
		up := 30 + rng.float()*90
		along := (rng.float() - 0.5) * 40
		e.particles = append(e.particles, Particle{
			Pos:   geom.V3(p.X, rng.float()*s.Height, p.Z),
			Vel:   geom.V3(outward.X+unit.X*along, up, outward.Z+unit.Z*along),
			Size:  1.5 + rng.float()*3.5,
			Color: jitter(palette[rng.intn(len(palette))], rng),
			Life:  8 + rng.float()*10,
		})
	}
	e.enforceCap()
	e.log.WithFields(logrus.Fields{"seg": s.ID.String(), "particles": n}).Debug("wall destroyed")
	return true
}

// SpawnRubble drops a small settled pile where a pre-destroyed segment stood.
// Spawned at most once per segment per session.
func (e *Engine) SpawnRubble(s world.Segment, palette [][3]uint8) {
	if _, done := e.rubbled[s.ID]; done {
		return
	}
	e.rubbled[s.ID] = s.Center()

	rng := newRand(s.ID)
	dir := s.B.Sub(s.A)
	normal := geom.V3(-dir.Z, 0, dir.X).Normalize()
	for i := 0; i < 80; i++ {
		t := rng.float()
		p := s.A.Add(dir.Mul(t))
		spread := (rng.float() - 0.5) * 24
		e.particles = append(e.particles, Particle{
			Pos:     geom.V3(p.X+normal.X*spread, rng.float()*3, p.Z+normal.Z*spread),
			Size:    1.5 + rng.float()*3.5,
			Color:   jitter(palette[rng.intn(len(palette))], rng),
			Life:    math.Inf(1),
			Settled: true,
		})
	}
	e.enforceCap()
}

// Step advances all particles by dt and culls expired or far-away ones.
func (e *Engine) Step(dt float64, player geom.Vec3) {
	cull2 := e.cfg.DebrisCullDist * e.cfg.DebrisCullDist
	g := e.cfg.Gravity

	w := 0
	for i := range e.particles {
		p := &e.particles[i]
		p.Age += dt

		if !p.Settled {
			p.Vel.Y += g * dt
			p.Pos = p.Pos.Add(p.Vel.Mul(dt))
			if p.Pos.Y <= p.Size {
				p.Pos.Y = p.Size
				p.Vel.Y = -p.Vel.Y * bounceDamping
				p.Vel.X *= slideDamping
				p.Vel.Z *= slideDamping
			}
			if p.Pos.Y <= p.Size+0.5 && p.Vel.Len() < settleSpeed {
				p.stillFor += dt
				if p.stillFor >= settleAfter {
					p.Settled = true
					p.Vel = geom.Vec3{}
					p.Life = p.Age + settledExtraLo + (settledExtraHi-settledExtraLo)*frac(p.Pos.X*0.77+p.Pos.Z*0.13)
				}
			} else {
				p.stillFor = 0
			}
		}

		if p.Age >= p.Life {
			continue
		}
		dx, dz := p.Pos.X-player.X, p.Pos.Z-player.Z
		if dx*dx+dz*dz > cull2 {
			continue
		}
		e.particles[w] = *p
		w++
	}
	e.particles = e.particles[:w]

	for id, center := range e.rubbled {
		dx, dz := center.X-player.X, center.Z-player.Z
		if dx*dx+dz*dz > cull2 {
			delete(e.rubbled, id)
		}
	}
}

// Particles exposes the live slice for rendering. Callers must not retain it
// across Step calls.
func (e *Engine) Particles() []Particle { return e.particles }

func (e *Engine) enforceCap() {
	if over := len(e.particles) - e.cfg.DebrisCap; over > 0 {
		e.particles = append(e.particles[:0], e.particles[over:]...)
	}
}

func frac(v float64) float64 { return v - math.Floor(v) }

func jitter(c [3]uint8, rng *segRand) [3]uint8 {
	for i := range c {
		d := int(c[i]) + rng.intn(31) - 15
		if d < 0 {
			d = 0
		}
		if d > 255 {
			d = 255
		}
		c[i] = uint8(d)
	}
	return c
}

// segRand is a tiny splitmix stream seeded from a segment id, so destruction
// bursts are reproducible in tests without any global RNG state.
type segRand struct{ s uint64 }

func newRand(id world.SegmentID) *segRand {
	s := uint64(int64(id.X1))*0x9E3779B97F4A7C15 ^
		uint64(int64(id.Z1))*0xBF58476D1CE4E5B9 ^
		uint64(int64(id.X2))*0x94D049BB133111EB ^
		uint64(int64(id.Z2))
	return &segRand{s: s | 1}
}

func (r *segRand) next() uint64 {
	r.s += 0x9E3779B97F4A7C15
	x := r.s
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}

func (r *segRand) float() float64 { return float64(r.next()>>11) / (1 << 53) }

func (r *segRand) intn(n int) int { return int(r.next() % uint64(n)) }

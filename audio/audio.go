// Package audio synthesizes the sound of the environment: destruction
// rumbles, footsteps and electrical buzz. Effects are generated PCM, placed
// in the stereo field relative to the listener, and pumped into the platform
// audio sink. Nothing here touches disk; there are no sample assets.
package audio

import (
	"math"

	"github.com/sirupsen/logrus"

	"backrooms/config"
	"backrooms/geom"
	"backrooms/hal"
	"backrooms/internal/logging"
)

const SampleRate = 22050

type EventKind uint8

const (
	EventDestroy EventKind = iota
	EventFootstep
	EventBuzz
	EventDistantSteps
)

// Event is one sound to play at a world position. Pos is ignored for
// listener-local kinds (the player's own footsteps).
type Event struct {
	Kind  EventKind
	Pos   geom.Vec3
	Local bool
}

type voice struct {
	samples     []int16
	pos         int
	left, right float64
}

// Mixer owns the active voices and the connection to the audio sink.
type Mixer struct {
	cfg config.Config
	out hal.Audio
	log *logrus.Entry

	active []voice
	bank   map[EventKind][]int16
}

func NewMixer(cfg config.Config, out hal.Audio) (*Mixer, error) {
	if err := out.Start(SampleRate); err != nil {
		return nil, err
	}
	m := &Mixer{
		cfg: cfg,
		out: out,
		log: logging.L().WithField("sys", "audio"),
		bank: map[EventKind][]int16{
			EventDestroy:      synthDestroy(),
			EventFootstep:     synthFootstep(),
			EventBuzz:         synthBuzz(),
			EventDistantSteps: synthDistantSteps(),
		},
	}
	return m, nil
}

func (m *Mixer) Close() error { return m.out.Stop() }

// Post places an event into the stereo field for a listener at pos facing
// yaw, and starts its voice.
func (m *Mixer) Post(ev Event, listener geom.Vec3, yaw float64) {
	samples := m.bank[ev.Kind]
	if len(samples) == 0 {
		return
	}

	left, right := 0.5, 0.5
	if !ev.Local {
		d := ev.Pos.Sub(listener)
		dist := d.Len()
		gain := 1 / (1 + dist/200)
		if gain < 0.02 {
			return
		}
		// Pan from the signed angle between view direction and the event.
		rx := math.Cos(yaw)
		rz := -math.Sin(yaw)
		pan := 0.0
		if dist > 1e-6 {
			pan = (d.X*rx + d.Z*rz) / dist // -1 left .. 1 right
		}
		right = gain * (0.5 + 0.5*pan)
		left = gain * (0.5 - 0.5*pan)
	}

	m.active = append(m.active, voice{samples: samples, left: left, right: right})
	if len(m.active) > 24 {
		m.active = m.active[len(m.active)-24:]
	}
}

// Pump mixes active voices and fills the sink up to roughly 100ms ahead.
// Call once per frame. Writes per call are capped so a sink that never
// drains its queue cannot wedge the frame loop.
func (m *Mixer) Pump() {
	target := SampleRate / 10
	for n := 0; n < target && m.out.Pending() < target; n++ {
		var l, r float64
		w := 0
		for i := range m.active {
			v := &m.active[i]
			if v.pos >= len(v.samples) {
				continue
			}
			s := float64(v.samples[v.pos])
			v.pos++
			l += s * v.left
			r += s * v.right
			m.active[w] = *v
			w++
		}
		m.active = m.active[:w]
		m.out.WriteStereo(clip16(l), clip16(r))
		if w == 0 && m.out.Pending() >= target/2 {
			break
		}
	}
}

func clip16(v float64) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// Scheduler decides when the ambient sounds of the space fire. Intervals are
// drawn from a counter-based hash so a session replays identically.
type Scheduler struct {
	cfg  config.Config
	seed int64
	n    uint64

	untilSteps float64
	untilBuzz  float64
}

func NewScheduler(cfg config.Config, seed int64) *Scheduler {
	s := &Scheduler{cfg: cfg, seed: seed}
	s.untilSteps = s.draw(cfg.FootstepIntervalMin, cfg.FootstepIntervalMax)
	s.untilBuzz = s.draw(cfg.BuzzIntervalMin, cfg.BuzzIntervalMax)
	return s
}

func (s *Scheduler) draw(lo, hi float64) float64 {
	s.n++
	x := uint64(s.seed) ^ s.n*0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	f := float64((x^(x>>31))>>11) / (1 << 53)
	return lo + (hi-lo)*f
}

// Step advances the clocks and returns the ambient kinds that are due.
func (s *Scheduler) Step(dt float64) []EventKind {
	var due []EventKind
	s.untilSteps -= dt
	if s.untilSteps <= 0 {
		due = append(due, EventDistantSteps)
		s.untilSteps = s.draw(s.cfg.FootstepIntervalMin, s.cfg.FootstepIntervalMax)
	}
	s.untilBuzz -= dt
	if s.untilBuzz <= 0 {
		due = append(due, EventBuzz)
		s.untilBuzz = s.draw(s.cfg.BuzzIntervalMin, s.cfg.BuzzIntervalMax)
	}
	return due
}

// AmbientPos picks a position near the listener for an ambient event, biased
// behind and to the sides.
func (s *Scheduler) AmbientPos(listener geom.Vec3, yaw float64) geom.Vec3 {
	ang := yaw + math.Pi + (s.draw(-1, 1))*1.2
	dist := s.draw(120, 400)
	return geom.V3(
		listener.X+math.Sin(ang)*dist,
		listener.Y,
		listener.Z+math.Cos(ang)*dist,
	)
}

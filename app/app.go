// Package app wires a HAL to the engine: it drains input events into engine
// intent, steps the simulation at the tick rate, and renders into the HAL
// framebuffer. It owns nothing of the simulation itself.
package app

import (
	"math"
	"time"

	"backrooms/audio"
	"backrooms/config"
	"backrooms/engine"
	"backrooms/hal"
	"backrooms/internal/logging"
	"backrooms/snapshot"
)

const lookSensitivity = 0.0035

// Config selects the session to run.
type Config struct {
	Cfg      config.Config
	Seed     int64
	SavePath string
	Restore  *snapshot.Snapshot
	// Mute skips starting the audio backend (headless runs).
	Mute bool
}

type session struct {
	eng   *engine.Engine
	fb    hal.Framebuffer
	kbd   hal.Keyboard
	mou   hal.Mouse
	clock hal.Time
	held  map[hal.KeyCode]bool

	turnSpeed float64
	savePath  string
	lastSave  time.Time
}

const autosaveEvery = 30 * time.Second

// New builds the per-tick step function for a HAL.
func New(h hal.HAL, c Config) func() error {
	var mixer *audio.Mixer
	if !c.Mute {
		m, err := audio.NewMixer(c.Cfg, h.Audio())
		if err != nil {
			logging.L().WithError(err).Warn("audio unavailable, continuing silent")
		} else {
			mixer = m
		}
	}

	eng := engine.New(c.Cfg, c.Seed, mixer)
	if c.Restore != nil {
		if err := eng.Restore(c.Restore); err != nil {
			logging.L().WithError(err).Warn("snapshot rejected, starting fresh")
		}
	}

	s := &session{
		eng:       eng,
		fb:        h.Display().Framebuffer(),
		kbd:       h.Input().Keyboard(),
		mou:       h.Input().Mouse(),
		clock:     h.Time(),
		held:      make(map[hal.KeyCode]bool),
		turnSpeed: c.Cfg.RotationSpeed,
		savePath:  c.SavePath,
		lastSave:  time.Now(),
	}
	return s.step
}

func (s *session) step() error {
	dt := s.clock.Delta()
	if err := s.input(dt); err != nil {
		return err
	}
	s.eng.Update(dt)
	s.eng.Render(s.fb, dt)
	s.autosave(time.Now())
	return nil
}

func (s *session) input(dt float64) error {
keys:
	for {
		select {
		case ev := <-s.kbd.Events():
			if err := s.key(ev); err != nil {
				return err
			}
		default:
			break keys
		}
	}
mouse:
	for {
		select {
		case ev := <-s.mou.Events():
			if ev.Motion {
				s.eng.Look(ev.DX*lookSensitivity, -ev.DY*lookSensitivity)
			} else if ev.Press && ev.Button == hal.MouseLeft {
				s.eng.DestroyTargeted()
			}
		default:
			break mouse
		}
	}

	forward := axis(s.held[hal.KeyW] || s.held[hal.KeyUp], s.held[hal.KeyS] || s.held[hal.KeyDown])
	strafe := axis(s.held[hal.KeyD], s.held[hal.KeyA])
	// Arrow keys also turn, for mouseless play.
	if s.held[hal.KeyLeft] {
		s.eng.Look(-s.turnSpeed*dt, 0)
	}
	if s.held[hal.KeyRight] {
		s.eng.Look(s.turnSpeed*dt, 0)
	}
	if forward != 0 && strafe != 0 {
		inv := 1 / math.Sqrt2
		forward *= inv
		strafe *= inv
	}
	s.eng.SetMove(forward, strafe)
	s.eng.SetRunning(s.held[hal.KeyShift])
	return nil
}

func (s *session) key(ev hal.KeyEvent) error {
	s.held[ev.Code] = ev.Press
	if !ev.Press {
		return nil
	}
	switch ev.Code {
	case hal.KeySpace:
		s.eng.Jump()
	case hal.KeyC:
		s.eng.ToggleCrouch()
	case hal.KeyE:
		s.eng.DestroyTargeted()
	case hal.KeyF:
		s.eng.ToggleRenderScale()
	case hal.KeyEscape:
		s.save("exit")
		return hal.ErrShutdown
	}
	return nil
}

func axis(pos, neg bool) float64 {
	v := 0.0
	if pos {
		v++
	}
	if neg {
		v--
	}
	return v
}

func (s *session) autosave(now time.Time) {
	if s.savePath == "" || now.Sub(s.lastSave) < autosaveEvery {
		return
	}
	s.lastSave = now
	s.save("autosave")
}

func (s *session) save(reason string) {
	if s.savePath == "" {
		return
	}
	if err := snapshot.Write(s.savePath, s.eng.Snapshot()); err != nil {
		logging.L().WithError(err).WithField("reason", reason).Error("save failed")
	}
}

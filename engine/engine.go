// Package engine owns the simulation: the player, the generated world, the
// debris field and the frame pipeline. The HAL delivers input and a
// framebuffer; everything in between happens here, in a fixed order each
// tick so behavior is reproducible.
package engine

import (
	"math"

	"github.com/sirupsen/logrus"

	"backrooms/audio"
	"backrooms/camera"
	"backrooms/collide"
	"backrooms/config"
	"backrooms/debris"
	"backrooms/geom"
	"backrooms/hal"
	"backrooms/internal/logging"
	"backrooms/render"
	"backrooms/snapshot"
	"backrooms/texture"
	"backrooms/world"
)

// Player is the first-person body: feet position, vertical velocity and the
// pose targets that input writes and the camera chases.
type Player struct {
	Pos geom.Vec3 // feet
	VY  float64

	Yaw, Pitch float64 // targets, set by input

	Crouching bool
	Running   bool
	Grounded  bool

	eyeHeight float64
	bobPhase  float64
}

type Engine struct {
	cfg  config.Config
	seed int64
	log  *logrus.Entry

	gen      *world.Generator
	debris   *debris.Engine
	renderer *render.Renderer
	mixer    *audio.Mixer
	sched    *audio.Scheduler

	player   Player
	cam      camera.Camera
	camYaw   float64
	camPitch float64

	moveForward float64
	moveStrafe  float64

	destroyQueued bool
	target        world.SegmentID
	hasTarget     bool

	shakeLeft float64
	playtime  float64

	wallPalette [][3]uint8
}

// New builds an engine for a fresh world. The mixer may be nil (headless).
func New(cfg config.Config, seed int64, mixer *audio.Mixer) *Engine {
	e := &Engine{
		cfg:         cfg,
		log:         logging.L().WithField("sys", "engine"),
		mixer:       mixer,
		wallPalette: texture.Get(texture.Wall).Samples,
	}
	e.reset(seed)
	e.log.WithFields(logrus.Fields{"seed": seed}).Info("world ready")
	return e
}

func (e *Engine) reset(seed int64) {
	e.seed = seed
	e.gen = world.NewGenerator(seed, e.cfg, world.NewCache(world.DefaultCacheSize))
	e.debris = debris.NewEngine(e.cfg)
	e.renderer = render.New(e.cfg, seed)
	e.sched = audio.NewScheduler(e.cfg, seed)
	e.playtime = 0

	e.player = Player{
		Pos:       e.spawnPoint(),
		Grounded:  true,
		eyeHeight: e.cfg.EyeStand,
	}
	e.cam = camera.Camera{
		FOV:  e.cfg.FOVDegrees * math.Pi / 180,
		Near: e.cfg.NearPlane,
	}
	e.cam.Pos = e.eyePos()
}

// spawnPoint puts the player in the middle of the origin zone's first open
// cell, away from any wall.
func (e *Engine) spawnPoint() geom.Vec3 {
	cs := e.cfg.CellSize
	half := float64(e.cfg.ZoneCells) / 2
	return geom.V3((half+0.5)*cs, 0, (half+0.5)*cs)
}

func (e *Engine) Seed() int64    { return e.seed }
func (e *Engine) Player() Player { return e.player }
func (e *Engine) Camera() camera.Camera { return e.cam }
func (e *Engine) Playtime() float64 { return e.playtime }

// Target is the wall segment the center ray currently hits within reach.
func (e *Engine) Target() (world.SegmentID, bool) { return e.target, e.hasTarget }

// --- input surface ---

// SetMove sets normalized movement intent: forward in [-1,1], strafe in
// [-1,1] (positive right).
func (e *Engine) SetMove(forward, strafe float64) {
	e.moveForward = clampUnit(forward)
	e.moveStrafe = clampUnit(strafe)
}

func (e *Engine) SetRunning(on bool) { e.player.Running = on }

func (e *Engine) ToggleCrouch() { e.player.Crouching = !e.player.Crouching }

func (e *Engine) Jump() {
	if e.player.Grounded && !e.player.Crouching {
		e.player.VY = e.cfg.JumpSpeed
		e.player.Grounded = false
	}
}

// Look applies a relative look delta in radians.
func (e *Engine) Look(dyaw, dpitch float64) {
	if math.IsNaN(dyaw) || math.IsNaN(dpitch) {
		return
	}
	e.player.Yaw += dyaw
	e.player.Pitch = camera.ClampPitch(e.player.Pitch + dpitch)
}

// DestroyTargeted queues a destruction for the next update.
func (e *Engine) DestroyTargeted() { e.destroyQueued = true }

func (e *Engine) ToggleRenderScale() { e.renderer.SetLowRes(!e.renderer.LowRes()) }

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// --- per-tick simulation ---

// Update advances the simulation by dt seconds. Order is fixed: movement and
// collision, vertical motion, camera chase, targeting, queued destruction,
// debris, ambient audio.
func (e *Engine) Update(dt float64) {
	if dt <= 0 || math.IsNaN(dt) {
		return
	}
	e.playtime += dt

	e.stepMove(dt)
	e.stepVertical(dt)
	e.stepCamera(dt)
	e.stepTargeting()
	e.stepDestruction()
	e.stepRubble()
	e.debris.Step(dt, e.player.Pos)
	e.stepAudio(dt)
}

func (e *Engine) stepMove(dt float64) {
	p := &e.player

	speed := e.cfg.WalkSpeed
	switch {
	case p.Crouching:
		speed = e.cfg.CrouchSpeed
	case p.Running:
		speed = e.cfg.RunSpeed
	}

	sy, cy := math.Sin(p.Yaw), math.Cos(p.Yaw)
	dx := (sy*e.moveForward + cy*e.moveStrafe) * speed * dt
	dz := (cy*e.moveForward - sy*e.moveStrafe) * speed * dt

	moving := e.moveForward != 0 || e.moveStrafe != 0
	if moving {
		to := geom.V3(p.Pos.X+dx, p.Pos.Y, p.Pos.Z+dz)
		p.Pos = collide.Resolve(e.gen, e.debris.Destroyed, p.Pos, to, e.cfg.PlayerRadius)
	}

	// Head bob runs while walking on the ground and eases back to neutral
	// in the air or at rest.
	if moving && p.Grounded {
		prev := p.bobPhase
		p.bobPhase += dt * e.cfg.HeadBobSpeed * speed / e.cfg.WalkSpeed * 2 * math.Pi
		if e.mixer != nil && math.Floor(p.bobPhase/math.Pi) > math.Floor(prev/math.Pi) {
			e.mixer.Post(audio.Event{Kind: audio.EventFootstep, Local: true}, e.eyePos(), e.camYaw)
		}
	} else {
		p.bobPhase = 0
	}
}

func (e *Engine) stepVertical(dt float64) {
	p := &e.player

	if !p.Grounded {
		p.VY += e.cfg.Gravity * dt
		p.Pos.Y += p.VY * dt
		if p.Pos.Y <= 0 {
			p.Pos.Y = 0
			p.VY = 0
			p.Grounded = true
		}
	}

	targetEye := e.cfg.EyeStand
	if p.Crouching {
		targetEye = e.cfg.EyeCrouch
	}
	k := 1 - math.Exp(-e.cfg.CrouchLerp*dt)
	p.eyeHeight += (targetEye - p.eyeHeight) * k
}

func (e *Engine) stepCamera(dt float64) {
	e.camYaw = camera.SmoothAngle(e.camYaw, e.player.Yaw, e.cfg.RotationSmoothing, dt)
	e.camPitch = camera.Smooth(e.camPitch, e.player.Pitch, e.cfg.RotationSmoothing, dt)
	e.cam.Yaw = e.camYaw
	e.cam.Pitch = e.camPitch

	eye := e.eyePos()
	bobY, bobX := camera.Bob(e.player.bobPhase, e.cfg.HeadBobAmount, e.cfg.HeadBobSway)
	right := e.cam.Right()
	eye = eye.Add(geom.V3(right.X*bobX, bobY, right.Z*bobX))

	if e.shakeLeft > 0 {
		e.shakeLeft -= dt
		a := e.cfg.ShakeAmount * e.shakeLeft / shakeDuration
		eye.Y += math.Sin(e.shakeLeft*110) * a
		eye = eye.Add(geom.V3(right.X*math.Sin(e.shakeLeft*93)*a, 0, right.Z*math.Sin(e.shakeLeft*93)*a))
	}

	e.cam.Pos = camera.SmoothVec(e.cam.Pos, eye, e.cfg.CameraSmoothing, dt)
}

const shakeDuration = 0.4

func (e *Engine) eyePos() geom.Vec3 {
	return geom.V3(e.player.Pos.X, e.player.Pos.Y+e.player.eyeHeight, e.player.Pos.Z)
}

func (e *Engine) stepTargeting() {
	ray := geom.Ray{Origin: e.cam.Pos, Dir: e.cam.Forward()}

	e.hasTarget = false
	bestDist := e.cfg.Reach
	for _, s := range e.gen.SegmentsInRange(e.cam.Pos.X, e.cam.Pos.Z, e.cfg.Reach+e.cfg.CellSize) {
		if e.debris.Destroyed(s.ID) || s.PreDestroyed() {
			continue
		}
		tris := e.gen.FaceTriangles(s)
		if hit, _, ok := geom.NearestTriangle(ray, tris, bestDist); ok {
			bestDist = hit.Distance
			e.target = s.ID
			e.hasTarget = true
		}
	}
}

func (e *Engine) stepDestruction() {
	if !e.destroyQueued {
		return
	}
	e.destroyQueued = false
	if !e.hasTarget {
		return
	}

	s := e.gen.Segment(e.target)
	if !e.debris.Destroy(s, e.wallPalette) {
		return
	}
	e.shakeLeft = shakeDuration
	e.hasTarget = false
	if e.mixer != nil {
		e.mixer.Post(audio.Event{Kind: audio.EventDestroy, Pos: s.Center()}, e.eyePos(), e.camYaw)
	}
}

// stepRubble drops settled piles where decay already removed walls, for
// everything near enough to be seen.
func (e *Engine) stepRubble() {
	for _, s := range e.gen.SegmentsInRange(e.player.Pos.X, e.player.Pos.Z, e.cfg.DebrisRenderDist) {
		if s.PreDestroyed() && !e.debris.Destroyed(s.ID) {
			e.debris.SpawnRubble(s, e.wallPalette)
		}
	}
}

func (e *Engine) stepAudio(dt float64) {
	if e.mixer == nil {
		return
	}
	for _, kind := range e.sched.Step(dt) {
		pos := e.sched.AmbientPos(e.eyePos(), e.camYaw)
		e.mixer.Post(audio.Event{Kind: kind, Pos: pos}, e.eyePos(), e.camYaw)
	}
	e.mixer.Pump()
}

// Render draws the current state into fb.
func (e *Engine) Render(fb hal.Framebuffer, dt float64) {
	e.renderer.Frame(fb, render.Scene{
		Gen:       e.gen,
		Destroyed: e.debris.Destroyed,
		Particles: e.debris.Particles(),
		Cam:       e.cam,
	}, dt)
	if err := fb.Present(); err != nil {
		e.log.WithError(err).Warn("present failed")
	}
}

// --- persistence ---

// Snapshot captures the session.
func (e *Engine) Snapshot() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Version:         snapshot.FormatVersion,
		Seed:            e.seed,
		PlayerPos:       e.player.Pos,
		PlayerYaw:       e.player.Yaw,
		PlayerPitch:     e.player.Pitch,
		Destroyed:       e.debris.DestroyedSet(),
		PlaytimeSeconds: e.playtime,
	}
}

// Restore replaces the whole session with the snapshot's. The snapshot must
// already be validated (Read does); nothing is applied piecemeal.
func (e *Engine) Restore(s *snapshot.Snapshot) error {
	if err := s.Validate(); err != nil {
		return err
	}
	e.reset(s.Seed)
	e.player.Pos = s.PlayerPos
	e.player.Yaw = s.PlayerYaw
	e.player.Pitch = camera.ClampPitch(s.PlayerPitch)
	e.camYaw = s.PlayerYaw
	e.camPitch = e.player.Pitch
	e.playtime = s.PlaytimeSeconds
	e.debris.Restore(s.Destroyed)
	e.cam.Pos = e.eyePos()
	e.cam.Yaw = e.camYaw
	e.cam.Pitch = e.camPitch
	e.log.WithFields(logrus.Fields{
		"seed":      s.Seed,
		"destroyed": len(s.Destroyed),
		"playtime":  s.PlaytimeSeconds,
	}).Info("session restored")
	return nil
}

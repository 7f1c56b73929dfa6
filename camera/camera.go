// Package camera holds the view transform and the smoothing that separates
// where the player is from where the eye looks from. All functions are pure;
// the engine owns the state and feeds it back each frame.
package camera

import (
	"math"

	"backrooms/geom"
)

// Camera is a smoothed first-person eye: position in world units, yaw around
// the vertical axis and pitch up/down, both radians.
type Camera struct {
	Pos        geom.Vec3
	Yaw, Pitch float64

	FOV  float64 // horizontal field of view, radians
	Near float64
}

const maxPitch = math.Pi/2 - 0.01

// ClampPitch keeps the pitch short of straight up or down, where the view
// basis would degenerate.
func ClampPitch(p float64) float64 {
	if p > maxPitch {
		return maxPitch
	}
	if p < -maxPitch {
		return -maxPitch
	}
	return p
}

// Forward is the unit view direction.
func (c Camera) Forward() geom.Vec3 {
	cp := math.Cos(c.Pitch)
	return geom.V3(math.Sin(c.Yaw)*cp, math.Sin(c.Pitch), math.Cos(c.Yaw)*cp)
}

// Right is the unit vector to the camera's right, in the floor plane.
func (c Camera) Right() geom.Vec3 {
	return geom.V3(math.Cos(c.Yaw), 0, -math.Sin(c.Yaw))
}

// WorldToView rotates a world point into view space: +Z forward, +X right,
// +Y up.
func (c Camera) WorldToView(p geom.Vec3) geom.Vec3 {
	d := p.Sub(c.Pos)
	sy, cy := math.Sin(c.Yaw), math.Cos(c.Yaw)
	sp, cp := math.Sin(c.Pitch), math.Cos(c.Pitch)

	// Yaw first, then pitch.
	x := d.X*cy - d.Z*sy
	z := d.X*sy + d.Z*cy
	y := d.Y*cp - z*sp
	z = d.Y*sp + z*cp
	return geom.V3(x, y, z)
}

// Project maps a view-space point to normalized screen coordinates in
// [-1,1] on the horizontal axis (vertical scaled by aspect at raster time).
// It returns false when the point is behind the near plane or not finite;
// points exactly on the plane still project, since near-clipped geometry
// lands there.
func (c Camera) Project(v geom.Vec3) (sx, sy float64, ok bool) {
	if v.Z < c.Near || !v.IsFinite() {
		return 0, 0, false
	}
	f := 1 / math.Tan(c.FOV/2)
	sx = v.X * f / v.Z
	sy = v.Y * f / v.Z
	if math.IsNaN(sx) || math.IsNaN(sy) {
		return 0, 0, false
	}
	return sx, sy, true
}

// Smooth moves current toward target with an exponential lag; rate is the
// fraction covered per 1/60s reference frame, made frame-rate independent.
func Smooth(current, target, rate, dt float64) float64 {
	if rate <= 0 {
		return target
	}
	k := 1 - math.Pow(1-rate, dt*60)
	return current + (target-current)*k
}

// SmoothVec applies Smooth per component.
func SmoothVec(current, target geom.Vec3, rate, dt float64) geom.Vec3 {
	return geom.V3(
		Smooth(current.X, target.X, rate, dt),
		Smooth(current.Y, target.Y, rate, dt),
		Smooth(current.Z, target.Z, rate, dt),
	)
}

// SmoothAngle is Smooth across the -pi..pi seam.
func SmoothAngle(current, target, rate, dt float64) float64 {
	d := math.Mod(target-current+3*math.Pi, 2*math.Pi) - math.Pi
	return current + (d - d*math.Pow(1-rate, dt*60)) // same lag as Smooth
}

// Bob is the vertical and lateral head-bob offset for a walk phase in
// radians; amount and sway are world units.
func Bob(phase, amount, sway float64) (dy, dx float64) {
	return math.Abs(math.Sin(phase)) * amount, math.Sin(phase/2) * sway
}

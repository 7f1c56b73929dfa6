package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backrooms/camera"
	"backrooms/config"
	"backrooms/geom"
	"backrooms/hal"
	"backrooms/world"
)

func testScene(seed int64) Scene {
	cfg := config.Default()
	g := world.NewGenerator(seed, cfg, world.NewCache(world.DefaultCacheSize))
	return Scene{
		Gen:       g,
		Destroyed: func(world.SegmentID) bool { return false },
		Cam: camera.Camera{
			Pos:  geom.V3(450, cfg.EyeStand, 450),
			FOV:  cfg.FOVDegrees * math.Pi / 180,
			Near: cfg.NearPlane,
		},
	}
}

func TestFrameDrawsSomething(t *testing.T) {
	cfg := config.Default()
	r := New(cfg, 1)
	fb := hal.NewHeadless(160, 100).Display().Framebuffer()

	r.Frame(fb, testScene(1), 1.0/60)

	// The view from inside the world cannot be uniform: floor, ceiling and
	// fog at minimum.
	buf := fb.Buffer()
	first := [2]byte{buf[0], buf[1]}
	uniform := true
	for i := 2; i+1 < len(buf); i += 2 {
		if buf[i] != first[0] || buf[i+1] != first[1] {
			uniform = false
			break
		}
	}
	assert.False(t, uniform, "frame rendered a uniform framebuffer")
}

func TestFrameDeterministic(t *testing.T) {
	cfg := config.Default()
	fb1 := hal.NewHeadless(120, 80).Display().Framebuffer()
	fb2 := hal.NewHeadless(120, 80).Display().Framebuffer()

	New(cfg, 9).Frame(fb1, testScene(9), 1.0/60)
	New(cfg, 9).Frame(fb2, testScene(9), 1.0/60)

	assert.Equal(t, fb1.Buffer(), fb2.Buffer())
}

func TestScaleTransition(t *testing.T) {
	cfg := config.Default()
	r := New(cfg, 1)
	require.Equal(t, cfg.RenderScale, r.Scale())

	r.SetLowRes(true)
	assert.True(t, r.LowRes())
	fb := hal.NewHeadless(64, 40).Display().Framebuffer()

	r.Frame(fb, testScene(1), 1.0/60)
	mid := r.Scale()
	assert.Less(t, mid, cfg.RenderScale)
	assert.Greater(t, mid, cfg.RenderScaleLow)

	// A second's worth of frames lands exactly on the low target.
	for i := 0; i < 60; i++ {
		r.Frame(fb, testScene(1), 1.0/60)
	}
	assert.Equal(t, cfg.RenderScaleLow, r.Scale())

	r.SetLowRes(false)
	for i := 0; i < 60; i++ {
		r.Frame(fb, testScene(1), 1.0/60)
	}
	assert.Equal(t, cfg.RenderScale, r.Scale())
}

func TestClipNear(t *testing.T) {
	near := 1.0

	// Fully in front is untouched.
	in := []geom.Vec3{
		geom.V3(-1, 0, 5), geom.V3(1, 0, 5), geom.V3(0, 1, 5),
	}
	out := clipNear(in, near, nil)
	assert.Equal(t, in, out)

	// Fully behind vanishes.
	behind := []geom.Vec3{
		geom.V3(-1, 0, 0.5), geom.V3(1, 0, 0.5), geom.V3(0, 1, 0.2),
	}
	assert.Empty(t, clipNear(behind, near, out))

	// Straddling gets cut exactly at the plane.
	straddle := []geom.Vec3{
		geom.V3(0, 0, 3), geom.V3(1, 0, 3), geom.V3(1, 0, -1), geom.V3(0, 0, -1),
	}
	cut := clipNear(straddle, near, nil)
	require.GreaterOrEqual(t, len(cut), 3)
	for _, v := range cut {
		assert.GreaterOrEqual(t, v.Z, near-1e-9)
	}
}

func TestFillConvexBounds(t *testing.T) {
	w, h := 16, 16
	buf := make([]byte, w*h*4)

	fillConvex(buf, w, h, []point2{{4, 4}, {12, 4}, {12, 12}, {4, 12}}, 255, 0, 0)

	filled := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			if buf[i] == 255 {
				filled++
				assert.True(t, x >= 4 && x <= 12 && y >= 4 && y <= 12,
					"pixel (%d,%d) outside the polygon", x, y)
			}
		}
	}
	assert.Positive(t, filled)

	// Degenerate and off-screen input must not write or panic.
	before := make([]byte, len(buf))
	copy(before, buf)
	fillConvex(buf, w, h, []point2{{1, 1}, {2, 2}}, 0, 255, 0)
	fillConvex(buf, w, h, []point2{{-50, -50}, {-40, -50}, {-40, -40}}, 0, 255, 0)
	assert.Equal(t, before, buf)
}

func TestDestroyedWallNotDrawn(t *testing.T) {
	cfg := config.Default()
	sc := testScene(21)

	// Find a solid wall inside the view frustum and compare frames with and
	// without it.
	var target world.SegmentID
	best := math.Inf(1)
	for _, s := range sc.Gen.SegmentsInRange(sc.Cam.Pos.X, sc.Cam.Pos.Z, cfg.RenderDistance) {
		if s.Kind != world.WallSolid || s.PreDestroyed() {
			continue
		}
		v := sc.Cam.WorldToView(s.Center())
		if v.Z > cfg.NearPlane+10 && math.Abs(v.X) < v.Z*0.8 && v.Z < best {
			target, best = s.ID, v.Z
		}
	}
	require.False(t, math.IsInf(best, 1), "no solid wall in the view frustum")

	fb1 := hal.NewHeadless(120, 80).Display().Framebuffer()
	New(cfg, 21).Frame(fb1, sc, 1.0/60)

	sc.Destroyed = func(id world.SegmentID) bool { return id == target }
	fb2 := hal.NewHeadless(120, 80).Display().Framebuffer()
	New(cfg, 21).Frame(fb2, sc, 1.0/60)

	assert.NotEqual(t, fb1.Buffer(), fb2.Buffer(), "removing a wall changed nothing on screen")
}

func TestDamagedWallDarker(t *testing.T) {
	cfg := config.Default()
	r := New(cfg, 9)
	g := world.NewGenerator(9, cfg, world.NewCache(world.DefaultCacheSize))
	zone := g.Zone(world.ZoneCoord{})

	seg := world.Segment{
		ID:         world.SegID(4, 4, 5, 4),
		Kind:       world.WallSolid,
		Horizontal: true,
		A:          geom.V3(400, 0, 400),
		B:          geom.V3(500, 0, 400),
		Height:     cfg.CeilingHeight,
	}
	worn := seg
	worn.Damage = 0.3
	cracked := seg
	cracked.Damage = 0.6
	intact := seg
	intact.Damage = 0.95

	wornCol, wornBase := r.wallColors(zone, worn, 0.96)
	crackedCol, _ := r.wallColors(zone, cracked, 0.96)
	intactCol, intactBase := r.wallColors(zone, intact, 0.96)

	assert.Less(t, lum(wornCol), lum(crackedCol))
	assert.Less(t, lum(crackedCol), lum(intactCol))
	assert.Less(t, lum(wornBase), lum(intactBase))
}

func lum(c [3]uint8) int { return int(c[0]) + int(c[1]) + int(c[2]) }

func TestDamageShadeTiers(t *testing.T) {
	assert.Equal(t, damageShade(0.2), damageShade(0.49))
	assert.Less(t, damageShade(0.3), damageShade(0.6))
	assert.Less(t, damageShade(0.6), damageShade(0.9))
	assert.Equal(t, 1.0, damageShade(0.95))
}

package engine

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backrooms/config"
	"backrooms/hal"
	"backrooms/snapshot"
	"backrooms/world"
)

const dt = 1.0 / 60

func newTestEngine(seed int64) *Engine {
	return New(config.Default(), seed, nil)
}

func TestWalkForwardMoves(t *testing.T) {
	e := newTestEngine(1)
	start := e.Player().Pos

	e.SetMove(1, 0)
	for i := 0; i < 60; i++ {
		e.Update(dt)
	}
	end := e.Player().Pos

	dx, dz := end.X-start.X, end.Z-start.Z
	moved := math.Sqrt(dx*dx + dz*dz)
	assert.Positive(t, moved)
	// A second of walking cannot exceed a second of walk speed.
	assert.LessOrEqual(t, moved, config.Default().WalkSpeed+1)
}

func TestRunIsFasterCrouchIsSlower(t *testing.T) {
	dist := func(setup func(*Engine)) float64 {
		e := newTestEngine(1)
		setup(e)
		start := e.Player().Pos
		e.SetMove(1, 0)
		for i := 0; i < 30; i++ {
			e.Update(dt)
		}
		end := e.Player().Pos
		dx, dz := end.X-start.X, end.Z-start.Z
		return math.Sqrt(dx*dx + dz*dz)
	}

	walk := dist(func(e *Engine) {})
	run := dist(func(e *Engine) { e.SetRunning(true) })
	crouch := dist(func(e *Engine) { e.ToggleCrouch() })

	assert.Greater(t, run, walk)
	assert.Less(t, crouch, walk)
}

func TestJumpAndLand(t *testing.T) {
	e := newTestEngine(1)
	require.True(t, e.Player().Grounded)

	e.Jump()
	e.Update(dt)
	assert.False(t, e.Player().Grounded)
	assert.Positive(t, e.Player().Pos.Y)

	for i := 0; i < 300 && !e.Player().Grounded; i++ {
		e.Update(dt)
	}
	assert.True(t, e.Player().Grounded)
	assert.Zero(t, e.Player().Pos.Y)

	// No double jump while airborne, no jump while crouched.
	e.ToggleCrouch()
	e.Jump()
	e.Update(dt)
	assert.True(t, e.Player().Grounded)
}

func TestCrouchLowersEye(t *testing.T) {
	cfg := config.Default()
	e := newTestEngine(1)

	for i := 0; i < 120; i++ {
		e.Update(dt)
	}
	standing := e.Camera().Pos.Y

	e.ToggleCrouch()
	for i := 0; i < 120; i++ {
		e.Update(dt)
	}
	crouched := e.Camera().Pos.Y

	assert.Less(t, crouched, standing)
	assert.InDelta(t, cfg.EyeCrouch, crouched, 2)
}

func TestLookClampsPitch(t *testing.T) {
	e := newTestEngine(1)
	e.Look(0, 100)
	assert.Less(t, e.Player().Pitch, math.Pi/2)
	e.Look(0, -200)
	assert.Greater(t, e.Player().Pitch, -math.Pi/2)

	before := e.Player()
	e.Look(math.NaN(), math.NaN())
	assert.Equal(t, before.Yaw, e.Player().Yaw)
}

// Turning to face a nearby wall must produce a target, and destroying it
// must spawn debris and open the path.
func TestTargetAndDestroy(t *testing.T) {
	e := newTestEngine(1)
	found := aimAtAnyWall(t, e)
	require.True(t, found, "no wall targetable from spawn in any direction")

	id, ok := e.Target()
	require.True(t, ok)

	e.DestroyTargeted()
	e.Update(dt)

	assert.True(t, e.debris.Destroyed(id))
	assert.NotEmpty(t, e.debris.Particles())
	_, still := e.Target()
	assert.False(t, still, "destroyed wall still targeted")
}

// aimAtAnyWall spins the view and walks a little until Target reports a hit.
func aimAtAnyWall(t *testing.T, e *Engine) bool {
	t.Helper()
	for walk := 0; walk < 12; walk++ {
		for i := 0; i < 16; i++ {
			e.Look(math.Pi/8, 0)
			for j := 0; j < 30; j++ {
				e.Update(dt) // let the camera catch up to the yaw target
			}
			if _, ok := e.Target(); ok {
				return true
			}
		}
		e.SetMove(1, 0)
		for j := 0; j < 30; j++ {
			e.Update(dt)
		}
		e.SetMove(0, 0)
	}
	return false
}

func TestDestroyWithoutTargetIsNoop(t *testing.T) {
	e := newTestEngine(1)
	e.Look(0, -1.4) // stare at the floor
	for i := 0; i < 120; i++ {
		e.Update(dt)
	}
	if _, ok := e.Target(); ok {
		t.Skip("floor stare still targets a wall on this layout")
	}
	e.DestroyTargeted()
	e.Update(dt)
	assert.Empty(t, e.debris.DestroyedSet())
}

func TestSnapshotRoundTrip(t *testing.T) {
	e := newTestEngine(77)
	if aimAtAnyWall(t, e) {
		e.DestroyTargeted()
		e.Update(dt)
	}
	e.SetMove(1, 0)
	for i := 0; i < 60; i++ {
		e.Update(dt)
	}

	path := filepath.Join(t.TempDir(), "save.bks")
	require.NoError(t, snapshot.Write(path, e.Snapshot()))

	loaded, err := snapshot.Read(path)
	require.NoError(t, err)

	e2 := newTestEngine(1) // different seed on purpose
	require.NoError(t, e2.Restore(loaded))

	assert.Equal(t, e.Seed(), e2.Seed())
	assert.Equal(t, e.Player().Pos, e2.Player().Pos)
	assert.Equal(t, e.Player().Yaw, e2.Player().Yaw)
	assert.InDelta(t, e.Playtime(), e2.Playtime(), 1e-9)
	assert.Equal(t, e.debris.DestroyedSet(), e2.debris.DestroyedSet())

	// Same seed, same walls.
	a := e.gen.Zone(world.ZoneCoord{X: 0, Z: 0})
	b := e2.gen.Zone(world.ZoneCoord{X: 0, Z: 0})
	assert.Equal(t, a.Type, b.Type)
}

func TestRestoreRejectsBadSnapshot(t *testing.T) {
	e := newTestEngine(5)
	before := e.Snapshot()

	bad := e.Snapshot()
	bad.Version = snapshot.FormatVersion + 3
	require.Error(t, e.Restore(bad))

	// Nothing was applied.
	assert.Equal(t, before.Seed, e.Seed())
	assert.Equal(t, before.PlayerPos, e.Player().Pos)
}

func TestRenderSmoke(t *testing.T) {
	e := newTestEngine(1)
	fb := hal.NewHeadless(120, 80).Display().Framebuffer()
	for i := 0; i < 10; i++ {
		e.Update(dt)
		e.Render(fb, dt)
	}
	// Any non-trivial frame leaves more than one distinct pixel value.
	buf := fb.Buffer()
	distinct := map[uint16]bool{}
	for i := 0; i+1 < len(buf); i += 2 {
		distinct[uint16(buf[i])|uint16(buf[i+1])<<8] = true
	}
	assert.Greater(t, len(distinct), 1)
}

func TestPlaytimeAccumulates(t *testing.T) {
	e := newTestEngine(1)
	for i := 0; i < 120; i++ {
		e.Update(dt)
	}
	assert.InDelta(t, 2.0, e.Playtime(), 0.01)

	e.Update(math.NaN())
	e.Update(-1)
	assert.InDelta(t, 2.0, e.Playtime(), 0.01)
}

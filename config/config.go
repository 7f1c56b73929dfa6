// Package config holds every tunable of the engine with compiled-in defaults
// and an optional YAML override file.
//
// All distances are world units, speeds are units per second, angles radians.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// World lattice.
	CellSize        float64 `yaml:"cell_size"`  // wall span between lattice points
	ZoneCells       int     `yaml:"zone_cells"` // cells per zone side
	WallThickness   float64 `yaml:"wall_thickness"`
	CeilingHeight   float64 `yaml:"ceiling_height"`
	BaseboardHeight float64 `yaml:"baseboard_height"`
	DoorwayWidth    float64 `yaml:"doorway_width"`
	HallwayWidth    float64 `yaml:"hallway_width"`

	// Pillar generation exists but rendering stays off until the feature is
	// finished; collision and targeting ignore pillars while disabled.
	PillarsEnabled bool    `yaml:"pillars_enabled"`
	PillarSize     float64 `yaml:"pillar_size"`

	// Player.
	PlayerRadius  float64 `yaml:"player_radius"`
	EyeStand      float64 `yaml:"eye_stand"`
	EyeCrouch     float64 `yaml:"eye_crouch"`
	WalkSpeed     float64 `yaml:"walk_speed"`
	RunSpeed      float64 `yaml:"run_speed"`
	CrouchSpeed   float64 `yaml:"crouch_speed"`
	RotationSpeed float64 `yaml:"rotation_speed"`
	JumpSpeed     float64 `yaml:"jump_speed"`
	Gravity       float64 `yaml:"gravity"` // negative, units/s^2
	CrouchLerp    float64 `yaml:"crouch_lerp"`

	// Camera feel.
	FOVDegrees        float64 `yaml:"fov_degrees"`
	NearPlane         float64 `yaml:"near_plane"`
	CameraSmoothing   float64 `yaml:"camera_smoothing"`
	RotationSmoothing float64 `yaml:"rotation_smoothing"`
	HeadBobSpeed      float64 `yaml:"head_bob_speed"`
	HeadBobAmount     float64 `yaml:"head_bob_amount"`
	HeadBobSway       float64 `yaml:"head_bob_sway"`
	ShakeAmount       float64 `yaml:"shake_amount"`

	// Interaction.
	Reach float64 `yaml:"reach"` // max wall destruction distance

	// Rendering.
	RenderDistance  float64 `yaml:"render_distance"`
	FogEnabled      bool    `yaml:"fog_enabled"`
	FogStart        float64 `yaml:"fog_start"`
	FogEnd          float64 `yaml:"fog_end"`
	RenderScale     float64 `yaml:"render_scale"` // framebuffer fraction, toggles with RenderScaleLow
	RenderScaleLow  float64 `yaml:"render_scale_low"`
	ScaleTransition float64 `yaml:"scale_transition"` // scale units per second

	// Flicker.
	FlickerChance   float64 `yaml:"flicker_chance"` // per-frame start probability
	FlickerDuration float64 `yaml:"flicker_duration"`
	FlickerDepth    float64 `yaml:"flicker_depth"` // brightness loss while active

	// Debris.
	DebrisMin        int     `yaml:"debris_min"`
	DebrisMax        int     `yaml:"debris_max"` // per destroyed segment
	DebrisCap        int     `yaml:"debris_cap"` // global hard cap
	DebrisCullDist   float64 `yaml:"debris_cull_dist"`
	DebrisRenderDist float64 `yaml:"debris_render_dist"`

	// Ambient audio scheduling, seconds.
	FootstepIntervalMin float64 `yaml:"footstep_interval_min"`
	FootstepIntervalMax float64 `yaml:"footstep_interval_max"`
	BuzzIntervalMin     float64 `yaml:"buzz_interval_min"`
	BuzzIntervalMax     float64 `yaml:"buzz_interval_max"`
}

// Default returns the compiled-in tuning.
func Default() Config {
	return Config{
		CellSize:        100,
		ZoneCells:       8,
		WallThickness:   8,
		CeilingHeight:   120,
		BaseboardHeight: 8,
		DoorwayWidth:    60,
		HallwayWidth:    120,

		PillarsEnabled: false,
		PillarSize:     14,

		PlayerRadius:  15,
		EyeStand:      55,
		EyeCrouch:     30,
		WalkSpeed:     140,
		RunSpeed:      260,
		CrouchSpeed:   70,
		RotationSpeed: 2.2,
		JumpSpeed:     95,
		Gravity:       -240,
		CrouchLerp:    6,

		FOVDegrees:        90,
		NearPlane:         1,
		CameraSmoothing:   0.35,
		RotationSmoothing: 0.5,
		HeadBobSpeed:      2.2,
		HeadBobAmount:     2.4,
		HeadBobSway:       1.2,
		ShakeAmount:       0.25,

		Reach: 100,

		RenderDistance:  600,
		FogEnabled:      true,
		FogStart:        250,
		FogEnd:          600,
		RenderScale:     1.0,
		RenderScaleLow:  0.5,
		ScaleTransition: 2.0,

		FlickerChance:   0.004,
		FlickerDuration: 0.25,
		FlickerDepth:    0.35,

		DebrisMin:        250,
		DebrisMax:        1200,
		DebrisCap:        12000,
		DebrisCullDist:   900,
		DebrisRenderDist: 600,

		FootstepIntervalMin: 6,
		FootstepIntervalMax: 18,
		BuzzIntervalMin:     10,
		BuzzIntervalMax:     30,
	}
}

// Load reads a YAML override file on top of the defaults. Fields absent from
// the file keep their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects values the engine cannot run with.
func (c Config) Validate() error {
	switch {
	case c.CellSize <= 0:
		return fmt.Errorf("cell_size must be positive, got %v", c.CellSize)
	case c.ZoneCells < 2:
		return fmt.Errorf("zone_cells must be at least 2, got %d", c.ZoneCells)
	case c.DebrisCap < c.DebrisMax:
		return fmt.Errorf("debris_cap %d below debris_max %d", c.DebrisCap, c.DebrisMax)
	case c.RenderScale <= 0 || c.RenderScale > 1 || c.RenderScaleLow <= 0 || c.RenderScaleLow > 1:
		return fmt.Errorf("render scales must be in (0,1]")
	case c.FogEnd <= c.FogStart:
		return fmt.Errorf("fog_end %v must exceed fog_start %v", c.FogEnd, c.FogStart)
	case c.NearPlane <= 0:
		return fmt.Errorf("near_plane must be positive")
	}
	return nil
}

// ZoneSize is the world-unit span of one zone side.
func (c Config) ZoneSize() float64 { return c.CellSize * float64(c.ZoneCells) }

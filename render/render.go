// Package render draws the world into a framebuffer with a painter's
// algorithm: every visible surface becomes a flat-shaded polygon, sorted
// farthest first and filled back to front. There is no depth buffer; the
// sort is the whole story. Drawing happens at an internal resolution that
// smoothly follows a render-scale target, then gets nearest-upscaled into
// the framebuffer.
package render

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"backrooms/camera"
	"backrooms/config"
	"backrooms/debris"
	"backrooms/geom"
	"backrooms/hal"
	"backrooms/internal/logging"
	"backrooms/texture"
	"backrooms/world"
)

// Scene is everything the renderer reads for one frame.
type Scene struct {
	Gen       *world.Generator
	Destroyed func(world.SegmentID) bool
	Particles []debris.Particle
	Cam       camera.Camera
}

var fogColor = [3]uint8{31, 28, 18}

type poly struct {
	pts   []geom.Vec3 // view space
	col   [3]uint8
	depth float64

	// Debris chunks raster as screen-aligned squares around a view-space
	// center instead of a polygon.
	rect   bool
	center geom.Vec3
	size   float64
}

type Renderer struct {
	cfg   config.Config
	stain *texture.Stainer
	log   *logrus.Entry

	scale       float64
	scaleTarget float64

	buf    []byte
	bw, bh int

	queue   []poly
	ptsPool []geom.Vec3

	frame       uint64
	flickerLeft float64
}

func New(cfg config.Config, seed int64) *Renderer {
	return &Renderer{
		cfg:         cfg,
		stain:       texture.NewStainer(seed),
		log:         logging.L().WithField("sys", "render"),
		scale:       cfg.RenderScale,
		scaleTarget: cfg.RenderScale,
	}
}

// SetLowRes switches the render-scale target; the actual scale glides there
// over the configured transition time.
func (r *Renderer) SetLowRes(low bool) {
	if low {
		r.scaleTarget = r.cfg.RenderScaleLow
	} else {
		r.scaleTarget = r.cfg.RenderScale
	}
}

func (r *Renderer) LowRes() bool { return r.scaleTarget == r.cfg.RenderScaleLow }

// Scale is the current internal-resolution fraction.
func (r *Renderer) Scale() float64 { return r.scale }

// Frame renders the scene into fb and advances time-based visual state
// (scale transition, light flicker) by dt.
func (r *Renderer) Frame(fb hal.Framebuffer, sc Scene, dt float64) {
	r.stepScale(dt)
	r.stepFlicker(dt)

	bw := int(float64(fb.Width()) * r.scale)
	bh := int(float64(fb.Height()) * r.scale)
	if bw < 2 {
		bw = 2
	}
	if bh < 2 {
		bh = 2
	}
	if bw != r.bw || bh != r.bh {
		r.bw, r.bh = bw, bh
		r.buf = make([]byte, bw*bh*4)
	}
	r.clear()

	r.queue = r.queue[:0]
	r.ptsPool = r.ptsPool[:0]
	r.buildTiles(sc)
	r.buildWalls(sc)
	r.buildDebris(sc)

	// Farthest first. Stable keeps deliberate layering (baseboards over
	// walls) intact between equal depths.
	sort.SliceStable(r.queue, func(i, j int) bool {
		return r.queue[i].depth > r.queue[j].depth
	})

	r.rasterQueue(sc.Cam)
	r.blit(fb)
	r.crosshair(fb)
	r.frame++
}

func (r *Renderer) stepScale(dt float64) {
	d := r.scaleTarget - r.scale
	step := r.cfg.ScaleTransition * dt
	if math.Abs(d) <= step {
		r.scale = r.scaleTarget
		return
	}
	if d > 0 {
		r.scale += step
	} else {
		r.scale -= step
	}
}

func (r *Renderer) stepFlicker(dt float64) {
	if r.flickerLeft > 0 {
		r.flickerLeft -= dt
		return
	}
	// Counter-based roll; visuals are reproducible for a fixed frame count.
	x := r.frame + 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	roll := float64((x^(x>>31))>>11) / (1 << 53)
	if roll < r.cfg.FlickerChance {
		r.flickerLeft = r.cfg.FlickerDuration
	}
}

func (r *Renderer) brightness() float64 {
	if r.flickerLeft > 0 {
		return 1 - r.cfg.FlickerDepth
	}
	return 1
}

func (r *Renderer) clear() {
	k := r.brightness()
	cr := uint8(float64(fogColor[0]) * k)
	cg := uint8(float64(fogColor[1]) * k)
	cb := uint8(float64(fogColor[2]) * k)
	for i := 0; i < len(r.buf); i += 4 {
		r.buf[i+0] = cr
		r.buf[i+1] = cg
		r.buf[i+2] = cb
		r.buf[i+3] = 0xFF
	}
}

// push transforms world-space corners into view space and queues the polygon
// when any part of it is in front of the camera.
func (r *Renderer) push(cam camera.Camera, corners []geom.Vec3, col [3]uint8, depthBias float64) {
	start := len(r.ptsPool)
	minZ, maxZ := math.Inf(1), math.Inf(-1)
	for _, c := range corners {
		v := cam.WorldToView(c)
		if !v.IsFinite() {
			logging.WarnOnce("render-degenerate", logrus.Fields{"sys": "render"},
				"dropping polygon with non-finite vertex")
			r.ptsPool = r.ptsPool[:start]
			return
		}
		r.ptsPool = append(r.ptsPool, v)
		if v.Z < minZ {
			minZ = v.Z
		}
		if v.Z > maxZ {
			maxZ = v.Z
		}
	}
	if maxZ <= cam.Near {
		r.ptsPool = r.ptsPool[:start]
		return
	}
	mid := (minZ + maxZ) / 2
	if mid > r.cfg.RenderDistance {
		r.ptsPool = r.ptsPool[:start]
		return
	}
	r.queue = append(r.queue, poly{
		pts:   r.ptsPool[start:],
		col:   r.applyFog(col, mid),
		depth: mid + depthBias,
	})
}

func (r *Renderer) buildTiles(sc Scene) {
	cfg := r.cfg
	cs := cfg.CellSize
	maxD := cfg.RenderDistance
	pos := sc.Cam.Pos

	cx0 := int(math.Floor((pos.X - maxD) / cs))
	cx1 := int(math.Ceil((pos.X + maxD) / cs))
	cz0 := int(math.Floor((pos.Z - maxD) / cs))
	cz1 := int(math.Ceil((pos.Z + maxD) / cs))

	for cz := cz0; cz < cz1; cz++ {
		for cx := cx0; cx < cx1; cx++ {
			wx := (float64(cx) + 0.5) * cs
			wz := (float64(cz) + 0.5) * cs
			dx, dz := wx-pos.X, wz-pos.Z
			if dx*dx+dz*dz > maxD*maxD {
				continue
			}

			zone := sc.Gen.Zone(sc.Gen.ZoneAt(wx, wz))
			height := cfg.CeilingHeight * zone.HeightScale

			x0, z0 := float64(cx)*cs, float64(cz)*cs
			x1, z1 := x0+cs, z0+cs

			floor := r.shadeTile(texture.Carpet, zone, wx, wz, cx, cz, 1.0)
			r.push(sc.Cam, []geom.Vec3{
				geom.V3(x0, 0, z0), geom.V3(x1, 0, z0),
				geom.V3(x1, 0, z1), geom.V3(x0, 0, z1),
			}, floor, 0)

			ceil := r.shadeTile(texture.Ceiling, zone, wx, wz, cx, cz, 0.9)
			r.push(sc.Cam, []geom.Vec3{
				geom.V3(x0, height, z0), geom.V3(x1, height, z0),
				geom.V3(x1, height, z1), geom.V3(x0, height, z1),
			}, ceil, 0)
		}
	}
}

func (r *Renderer) buildWalls(sc Scene) {
	cfg := r.cfg
	pos := sc.Cam.Pos

	for _, s := range sc.Gen.SegmentsInRange(pos.X, pos.Z, cfg.RenderDistance) {
		if sc.Destroyed(s.ID) || s.PreDestroyed() {
			continue
		}
		pieces := s.Pieces(sc.Gen.OpeningWidth(s.Kind))
		if len(pieces) == 0 {
			continue
		}

		zone := sc.Gen.Zone(sc.Gen.ZoneAt(s.Center().X, s.Center().Z))
		// Walls along the two axes get slightly different light so corners
		// read even in flat shading.
		ao := 0.96
		if !s.Horizontal {
			ao = 0.84
		}

		dir := s.B.Sub(s.A)
		wallCol, baseCol := r.wallColors(zone, s, ao)

		for _, p := range pieces {
			a := s.A.Add(dir.Mul(p.T0))
			b := s.A.Add(dir.Mul(p.T1))
			r.push(sc.Cam, []geom.Vec3{
				geom.V3(a.X, 0, a.Z), geom.V3(b.X, 0, b.Z),
				geom.V3(b.X, s.Height, b.Z), geom.V3(a.X, s.Height, a.Z),
			}, wallCol, 0)
			r.push(sc.Cam, []geom.Vec3{
				geom.V3(a.X, 0, a.Z), geom.V3(b.X, 0, b.Z),
				geom.V3(b.X, cfg.BaseboardHeight, b.Z), geom.V3(a.X, cfg.BaseboardHeight, a.Z),
			}, baseCol, -0.5)
		}
	}

	if cfg.PillarsEnabled {
		r.buildPillars(sc)
	}
}

// wallColors shades a standing wall and its baseboard. Decayed walls darken
// in two wear tiers: heavy below damage 0.5, light below 0.8.
func (r *Renderer) wallColors(zone *world.Zone, s world.Segment, ao float64) (wall, base [3]uint8) {
	k := ao * damageShade(s.Damage)
	mid := s.Center()
	wall = r.shadeSurface(texture.Wall, zone, mid.X, mid.Z, k)
	base = r.shadeSurface(texture.Baseboard, zone, mid.X, mid.Z, k)
	return wall, base
}

func damageShade(d float64) float64 {
	switch {
	case d < 0.5:
		return 0.82
	case d < 0.8:
		return 0.91
	default:
		return 1
	}
}

func (r *Renderer) buildPillars(sc Scene) {
	cfg := r.cfg
	cs := cfg.CellSize
	half := cfg.PillarSize / 2
	pos := sc.Cam.Pos
	maxD := cfg.RenderDistance

	cx0 := int(math.Floor((pos.X - maxD) / cs))
	cx1 := int(math.Ceil((pos.X + maxD) / cs))
	cz0 := int(math.Floor((pos.Z - maxD) / cs))
	cz1 := int(math.Ceil((pos.Z + maxD) / cs))

	for cz := cz0; cz <= cz1; cz++ {
		for cx := cx0; cx <= cx1; cx++ {
			if !sc.Gen.PillarAt(cx, cz) {
				continue
			}
			px, pz := float64(cx)*cs, float64(cz)*cs
			zone := sc.Gen.Zone(sc.Gen.ZoneAt(px, pz))
			h := cfg.CeilingHeight * zone.HeightScale
			col := r.shadeSurface(texture.Pillar, zone, px, pz, 0.9)

			// Four faces of the square column.
			faces := [4][2]geom.Vec3{
				{geom.V3(px-half, 0, pz-half), geom.V3(px+half, 0, pz-half)},
				{geom.V3(px+half, 0, pz-half), geom.V3(px+half, 0, pz+half)},
				{geom.V3(px+half, 0, pz+half), geom.V3(px-half, 0, pz+half)},
				{geom.V3(px-half, 0, pz+half), geom.V3(px-half, 0, pz-half)},
			}
			for _, f := range faces {
				r.push(sc.Cam, []geom.Vec3{
					f[0], f[1],
					geom.V3(f[1].X, h, f[1].Z), geom.V3(f[0].X, h, f[0].Z),
				}, col, 0)
			}
		}
	}
}

func (r *Renderer) buildDebris(sc Scene) {
	maxD := r.cfg.DebrisRenderDist
	pos := sc.Cam.Pos
	for _, p := range sc.Particles {
		dx, dz := p.Pos.X-pos.X, p.Pos.Z-pos.Z
		if dx*dx+dz*dz > maxD*maxD {
			continue
		}
		v := sc.Cam.WorldToView(p.Pos)
		if v.Z <= sc.Cam.Near {
			continue
		}
		col := p.Color
		k := r.brightness()
		for i := range col {
			col[i] = uint8(float64(col[i]) * k)
		}
		r.queue = append(r.queue, poly{
			rect:   true,
			center: v,
			col:    r.applyFog(col, v.Z),
			depth:  v.Z,
			size:   p.Size,
		})
	}
}

func (r *Renderer) rasterQueue(cam camera.Camera) {
	halfW := float64(r.bw) / 2
	focal := halfW / math.Tan(cam.FOV/2)
	cxp, cyp := halfW, float64(r.bh)/2

	clipped := make([]geom.Vec3, 0, 8)
	screen := make([]point2, 0, 8)

	for _, q := range r.queue {
		if q.rect {
			nx, ny, ok := cam.Project(q.center)
			if !ok {
				continue
			}
			sx, sy := cxp+nx*halfW, cyp-ny*halfW
			half := q.size / q.center.Z * focal
			if half < 0.5 {
				half = 0.5
			}
			fillRect(r.buf, r.bw, r.bh,
				int(sx-half), int(sy-half), int(sx+half)+1, int(sy+half)+1,
				q.col[0], q.col[1], q.col[2])
			continue
		}

		clipped = clipNear(q.pts, cam.Near, clipped)
		if len(clipped) < 3 {
			continue
		}
		screen = screen[:0]
		for _, v := range clipped {
			nx, ny, ok := cam.Project(v)
			if !ok {
				screen = screen[:0]
				break
			}
			screen = append(screen, point2{x: cxp + nx*halfW, y: cyp - ny*halfW})
		}
		if len(screen) < 3 {
			continue
		}
		fillConvex(r.buf, r.bw, r.bh, screen, q.col[0], q.col[1], q.col[2])
	}
}

// shadeTile adds the per-cell checkerless noise the flat floor needs to not
// read as a void.
func (r *Renderer) shadeTile(sf texture.Surface, z *world.Zone, wx, wz float64, cx, cz int, ao float64) [3]uint8 {
	c := r.shadeSurface(sf, z, wx, wz, ao)
	n := (cx*13+cz*17)%5 - 2
	for i := range c {
		v := int(c[i]) + n*2
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		c[i] = uint8(v)
	}
	return c
}

func (r *Renderer) shadeSurface(sf texture.Surface, z *world.Zone, wx, wz float64, ao float64) [3]uint8 {
	c := r.stain.Shade(sf, wx, wz)
	k := ao * r.brightness()
	for i := range c {
		c[i] = uint8(float64(c[i]) * z.Tint[i] * k)
	}
	return c
}

func (r *Renderer) applyFog(c [3]uint8, depth float64) [3]uint8 {
	if !r.cfg.FogEnabled {
		return c
	}
	f := (depth - r.cfg.FogStart) / (r.cfg.FogEnd - r.cfg.FogStart)
	if f <= 0 {
		return c
	}
	if f > 1 {
		f = 1
	}
	k := r.brightness()
	for i := range c {
		fc := float64(fogColor[i]) * k
		c[i] = uint8(float64(c[i])*(1-f) + fc*f)
	}
	return c
}

// blit nearest-upscales the internal buffer into the RGB565 framebuffer.
func (r *Renderer) blit(fb hal.Framebuffer) {
	w, h := fb.Width(), fb.Height()
	dst := fb.Buffer()
	stride := fb.StrideBytes()

	for y := 0; y < h; y++ {
		sy := y * r.bh / h
		srow := sy * r.bw * 4
		drow := y * stride
		for x := 0; x < w; x++ {
			sx := x * r.bw / w
			i := srow + sx*4
			p := hal.RGB565(r.buf[i], r.buf[i+1], r.buf[i+2])
			j := drow + x*2
			dst[j] = byte(p)
			dst[j+1] = byte(p >> 8)
		}
	}
}

func (r *Renderer) crosshair(fb hal.Framebuffer) {
	w, h := fb.Width(), fb.Height()
	dst := fb.Buffer()
	stride := fb.StrideBytes()
	cx, cy := w/2, h/2
	p := hal.RGB565(230, 230, 230)

	set := func(x, y int) {
		if x < 0 || x >= w || y < 0 || y >= h {
			return
		}
		j := y*stride + x*2
		dst[j] = byte(p)
		dst[j+1] = byte(p >> 8)
	}
	for d := -4; d <= 4; d++ {
		if d > -2 && d < 2 {
			continue
		}
		set(cx+d, cy)
		set(cx, cy+d)
	}
}

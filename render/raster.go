package render

import (
	"math"

	"backrooms/geom"
)

type point2 struct {
	x, y float64
}

// clipNear clips a view-space polygon against the z = near plane. Vertices
// come back in order; a polygon entirely behind the plane comes back empty.
func clipNear(in []geom.Vec3, near float64, out []geom.Vec3) []geom.Vec3 {
	out = out[:0]
	n := len(in)
	if n == 0 {
		return out
	}
	for i := 0; i < n; i++ {
		cur := in[i]
		next := in[(i+1)%n]
		curIn := cur.Z > near
		nextIn := next.Z > near

		if curIn {
			out = append(out, cur)
		}
		if curIn != nextIn {
			t := (near - cur.Z) / (next.Z - cur.Z)
			out = append(out, geom.V3(
				cur.X+(next.X-cur.X)*t,
				cur.Y+(next.Y-cur.Y)*t,
				near,
			))
		}
	}
	return out
}

// fillConvex rasters a convex polygon into an RGBA buffer with a flat color.
// Non-convex input degrades gracefully to the per-scanline min/max span.
func fillConvex(buf []byte, w, h int, pts []point2, r, g, b uint8) {
	if len(pts) < 3 {
		return
	}

	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		if p.y < minY {
			minY = p.y
		}
		if p.y > maxY {
			maxY = p.y
		}
	}
	y0 := int(math.Ceil(minY))
	y1 := int(math.Floor(maxY))
	if y0 < 0 {
		y0 = 0
	}
	if y1 >= h {
		y1 = h - 1
	}

	n := len(pts)
	for y := y0; y <= y1; y++ {
		fy := float64(y) + 0.5
		spanMin, spanMax := math.Inf(1), math.Inf(-1)
		for i := 0; i < n; i++ {
			a, bp := pts[i], pts[(i+1)%n]
			if (a.y <= fy) == (bp.y <= fy) {
				continue
			}
			x := a.x + (fy-a.y)/(bp.y-a.y)*(bp.x-a.x)
			if x < spanMin {
				spanMin = x
			}
			if x > spanMax {
				spanMax = x
			}
		}
		if spanMin > spanMax {
			continue
		}
		x0 := int(math.Ceil(spanMin))
		x1 := int(math.Floor(spanMax))
		if x0 < 0 {
			x0 = 0
		}
		if x1 >= w {
			x1 = w - 1
		}
		row := y * w * 4
		for x := x0; x <= x1; x++ {
			i := row + x*4
			buf[i+0] = r
			buf[i+1] = g
			buf[i+2] = b
			buf[i+3] = 0xFF
		}
	}
}

// fillRect is the fast path for screen-aligned debris chunks.
func fillRect(buf []byte, w, h int, x0, y0, x1, y1 int, r, g, b uint8) {
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > w {
		x1 = w
	}
	if y1 > h {
		y1 = h
	}
	for y := y0; y < y1; y++ {
		row := y * w * 4
		for x := x0; x < x1; x++ {
			i := row + x*4
			buf[i+0] = r
			buf[i+1] = g
			buf[i+2] = b
			buf[i+3] = 0xFF
		}
	}
}

package hal

import "testing"

func TestRGB565RoundTrip(t *testing.T) {
	cases := []struct{ r, g, b uint8 }{
		{0, 0, 0},
		{255, 255, 255},
		{255, 0, 0},
		{0, 255, 0},
		{0, 0, 255},
		{128, 64, 200},
	}
	for _, c := range cases {
		p := RGB565(c.r, c.g, c.b)
		r, g, b := RGB888From565(p)
		// 565 quantization loses at most the dropped low bits.
		if diff(r, c.r) > 8 || diff(g, c.g) > 4 || diff(b, c.b) > 8 {
			t.Fatalf("roundtrip (%d,%d,%d) -> (%d,%d,%d)", c.r, c.g, c.b, r, g, b)
		}
	}
}

func diff(a, b uint8) int {
	d := int(a) - int(b)
	if d < 0 {
		d = -d
	}
	return d
}

func TestMemFramebufferClear(t *testing.T) {
	fb := newMemFramebuffer(8, 4)
	if fb.StrideBytes() != 16 {
		t.Fatalf("stride = %d, want 16", fb.StrideBytes())
	}
	fb.ClearRGB(255, 0, 0)
	want := RGB565(255, 0, 0)
	buf := fb.Buffer()
	for i := 0; i < len(buf); i += 2 {
		got := uint16(buf[i]) | uint16(buf[i+1])<<8
		if got != want {
			t.Fatalf("pixel %d = %04x, want %04x", i/2, got, want)
		}
	}
}

func TestHeadlessHAL(t *testing.T) {
	h := NewHeadless(32, 16)
	fb := h.Display().Framebuffer()
	if fb.Width() != 32 || fb.Height() != 16 {
		t.Fatalf("unexpected size %dx%d", fb.Width(), fb.Height())
	}
	if fb.Format() != PixelFormatRGB565 {
		t.Fatalf("unexpected format %v", fb.Format())
	}
	if err := fb.Present(); err != nil {
		t.Fatalf("present: %v", err)
	}
	if err := h.Audio().Start(44100); err != nil {
		t.Fatalf("audio start: %v", err)
	}
	h.Audio().WriteStereo(1, -1)
	if h.Audio().Pending() != 0 {
		t.Fatal("null audio should swallow frames")
	}
	if d := h.Time().Delta(); d != 1.0/60 {
		t.Fatalf("headless delta = %v, want fixed 1/60", d)
	}
}

func TestHostTimeDelta(t *testing.T) {
	ht := newHostTime()
	if d := ht.Delta(); d != 1.0/60 {
		t.Fatalf("first delta = %v, want 1/60", d)
	}
	d := ht.Delta()
	if d < 0 || d > maxFrameDelta {
		t.Fatalf("delta %v outside [0, %v]", d, maxFrameDelta)
	}
}

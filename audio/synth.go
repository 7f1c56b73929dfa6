package audio

import "math"

// The effect bank is synthesized once at startup: decaying sines for body,
// hashed noise for texture.

func noise(n *uint64) float64 {
	*n += 0x9E3779B97F4A7C15
	x := *n
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return float64((x^(x>>31))>>11)/(1<<52) - 1 // [-1,1)
}

func synthDestroy() []int16 {
	dur := 0.7
	n := int(dur * SampleRate)
	out := make([]int16, n)
	var ns uint64 = 0xD35
	for i := 0; i < n; i++ {
		t := float64(i) / SampleRate
		env := math.Exp(-t * 5)
		rumble := math.Sin(2*math.Pi*52*t) * 0.6
		crack := noise(&ns) * math.Exp(-t*14) * 0.8
		out[i] = clip16((rumble + crack) * env * 14000)
	}
	return out
}

func synthFootstep() []int16 {
	dur := 0.12
	n := int(dur * SampleRate)
	out := make([]int16, n)
	var ns uint64 = 0xF007
	low := 0.0
	for i := 0; i < n; i++ {
		t := float64(i) / SampleRate
		env := math.Exp(-t * 40)
		// One-pole lowpass turns the hash noise into a dull carpet thud.
		low += (noise(&ns) - low) * 0.12
		out[i] = clip16(low * env * 11000)
	}
	return out
}

func synthBuzz() []int16 {
	dur := 0.9
	n := int(dur * SampleRate)
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		t := float64(i) / SampleRate
		// Fade in and out so the hum does not click.
		env := math.Sin(math.Pi * t / dur)
		hum := math.Sin(2*math.Pi*60*t) + 0.35*math.Sin(2*math.Pi*120*t) + 0.12*math.Sin(2*math.Pi*180*t)
		out[i] = clip16(hum * env * 2600)
	}
	return out
}

func synthDistantSteps() []int16 {
	step := synthFootstep()
	gap := int(math.Floor(0.45 * SampleRate))
	out := make([]int16, 3*len(step)+2*gap)
	for k := 0; k < 3; k++ {
		off := k * (len(step) + gap)
		gain := 0.5 - 0.1*float64(k)
		for i, s := range step {
			out[off+i] = clip16(float64(s) * gain)
		}
	}
	return out
}

package hal

import "time"

// maxFrameDelta keeps a stall (window drag, debugger pause) from turning
// into one giant simulation step.
const maxFrameDelta = 0.25

// hostTime measures real elapsed time between frames.
type hostTime struct {
	last time.Time
}

func newHostTime() *hostTime { return &hostTime{} }

func (t *hostTime) Delta() float64 {
	now := time.Now()
	if t.last.IsZero() {
		t.last = now
		return 1.0 / 60
	}
	dt := now.Sub(t.last).Seconds()
	t.last = now
	if dt > maxFrameDelta {
		dt = maxFrameDelta
	}
	return dt
}

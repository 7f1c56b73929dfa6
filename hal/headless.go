package hal

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// NewHeadless returns a HAL with a plain in-memory framebuffer and inert
// input and audio. Tests render against it; so does -headless mode.
func NewHeadless(width, height int) HAL {
	if width <= 0 {
		width = fbWidth
	}
	if height <= 0 {
		height = fbHeight
	}
	return &headlessHAL{
		fb: newMemFramebuffer(width, height),
		t:  &fixedTime{dt: 1.0 / 60},
	}
}

// fixedTime advances by the same delta every frame, so headless runs are
// reproducible regardless of host load.
type fixedTime struct {
	dt float64
}

func (t *fixedTime) Delta() float64 { return t.dt }

type headlessHAL struct {
	fb *memFramebuffer
	t  *fixedTime
}

func (h *headlessHAL) Display() Display { return hostDisplay{fb: h.fb} }
func (h *headlessHAL) Input() Input     { return nullInput{} }
func (h *headlessHAL) Time() Time       { return h.t }
func (h *headlessHAL) Audio() Audio     { return nullAudio{} }

type nullInput struct{}

func (nullInput) Keyboard() Keyboard { return nullKeyboard{} }
func (nullInput) Mouse() Mouse       { return nullMouse{} }

type nullKeyboard struct{}

func (nullKeyboard) Events() <-chan KeyEvent { return nil }

type nullMouse struct{}

func (nullMouse) Events() <-chan MouseEvent { return nil }

type nullAudio struct{}

func (nullAudio) Start(uint32) error       { return nil }
func (nullAudio) Stop() error              { return nil }
func (nullAudio) SetVolume(uint8)          {}
func (nullAudio) WriteStereo(int16, int16) {}
func (nullAudio) Pending() int             { return 0 }

// HeadlessConfig controls the no-window runner.
type HeadlessConfig struct {
	Hz     int
	Ticks  uint64
	Width  int
	Height int
}

// RunHeadless drives the app without opening a window, at the configured
// rate, for the configured number of ticks (0 means until ctx is canceled).
func RunHeadless(ctx context.Context, newApp func(HAL) func() error, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}

	h := NewHeadless(cfg.Width, cfg.Height).(*headlessHAL)
	h.t.dt = 1.0 / float64(cfg.Hz)
	step := newApp(h)

	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}
	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if step != nil {
				if err := step(); err != nil {
					if errors.Is(err, ErrShutdown) {
						return nil
					}
					return err
				}
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
		}
	}
}

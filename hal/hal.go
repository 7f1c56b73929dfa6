// Package hal is the only contact point between the engine and the host
// machine: a pixel framebuffer, keyboard and mouse events, a tick stream and
// a PCM audio sink. Everything above it is portable and testable headless.
package hal

import "errors"

var ErrNotImplemented = errors.New("not implemented")

// ErrShutdown is returned by an app step to close the window cleanly.
var ErrShutdown = errors.New("shutdown requested")

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// KeyCode is a minimal key identifier.
type KeyCode uint16

const (
	KeyUnknown KeyCode = iota
	KeyW
	KeyA
	KeyS
	KeyD
	KeyC
	KeyE
	KeyF
	KeySpace
	KeyShift
	KeyEscape
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
)

// KeyEvent is a keyboard press or release.
type KeyEvent struct {
	Code  KeyCode
	Press bool
}

// Keyboard provides key events (best-effort on each platform).
type Keyboard interface {
	Events() <-chan KeyEvent
}

type MouseButton uint8

const (
	MouseLeft MouseButton = iota
	MouseRight
)

// MouseEvent carries relative motion or a button transition. Motion events
// have Motion true; button events carry Button and Press.
type MouseEvent struct {
	Motion bool
	DX, DY float64

	Button MouseButton
	Press  bool
}

// Mouse provides relative motion and button events.
type Mouse interface {
	Events() <-chan MouseEvent
}

// Display provides access to the framebuffer.
type Display interface {
	Framebuffer() Framebuffer
}

// Input provides access to input devices.
type Input interface {
	Keyboard() Keyboard
	Mouse() Mouse
}

// Time paces the frame loop. Delta reports seconds elapsed since the
// previous call; hosts clamp it so a stall never becomes one giant step.
type Time interface {
	Delta() float64
}

// Audio is a 16-bit stereo PCM sink.
type Audio interface {
	Start(sampleRate uint32) error
	Stop() error
	SetVolume(vol uint8)
	// WriteStereo queues one frame; when the ring is full the frame is
	// dropped rather than blocking the caller.
	WriteStereo(left, right int16)
	Pending() int
}

// HAL is the platform surface the engine runs against.
type HAL interface {
	Display() Display
	Input() Input
	Time() Time
	Audio() Audio
}

//go:build cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type hostKeyboard struct {
	ch chan KeyEvent
}

func newHostKeyboard() *hostKeyboard {
	return &hostKeyboard{ch: make(chan KeyEvent, 64)}
}

func (k *hostKeyboard) Events() <-chan KeyEvent { return k.ch }

var keyMap = [...]struct {
	ebiten ebiten.Key
	code   KeyCode
}{
	{ebiten.KeyW, KeyW},
	{ebiten.KeyA, KeyA},
	{ebiten.KeyS, KeyS},
	{ebiten.KeyD, KeyD},
	{ebiten.KeyC, KeyC},
	{ebiten.KeyE, KeyE},
	{ebiten.KeyF, KeyF},
	{ebiten.KeySpace, KeySpace},
	{ebiten.KeyShiftLeft, KeyShift},
	{ebiten.KeyShiftRight, KeyShift},
	{ebiten.KeyEscape, KeyEscape},
	{ebiten.KeyArrowUp, KeyUp},
	{ebiten.KeyArrowDown, KeyDown},
	{ebiten.KeyArrowLeft, KeyLeft},
	{ebiten.KeyArrowRight, KeyRight},
}

func (k *hostKeyboard) poll() {
	emit := func(code KeyCode, press bool) {
		select {
		case k.ch <- KeyEvent{Code: code, Press: press}:
		default:
		}
	}

	for _, m := range keyMap {
		if inpututil.IsKeyJustPressed(m.ebiten) {
			emit(m.code, true)
		}
		if inpututil.IsKeyJustReleased(m.ebiten) {
			emit(m.code, false)
		}
	}
}

type hostMouse struct {
	ch     chan MouseEvent
	lastX  int
	lastY  int
	primed bool
}

func newHostMouse() *hostMouse {
	return &hostMouse{ch: make(chan MouseEvent, 64)}
}

func (m *hostMouse) Events() <-chan MouseEvent { return m.ch }

func (m *hostMouse) poll() {
	emit := func(ev MouseEvent) {
		select {
		case m.ch <- ev:
		default:
		}
	}

	x, y := ebiten.CursorPosition()
	if m.primed {
		dx, dy := x-m.lastX, y-m.lastY
		if dx != 0 || dy != 0 {
			emit(MouseEvent{Motion: true, DX: float64(dx), DY: float64(dy)})
		}
	}
	m.lastX, m.lastY = x, y
	m.primed = true

	for _, b := range [...]struct {
		ebiten ebiten.MouseButton
		button MouseButton
	}{
		{ebiten.MouseButtonLeft, MouseLeft},
		{ebiten.MouseButtonRight, MouseRight},
	} {
		if inpututil.IsMouseButtonJustPressed(b.ebiten) {
			emit(MouseEvent{Button: b.button, Press: true})
		}
		if inpututil.IsMouseButtonJustReleased(b.ebiten) {
			emit(MouseEvent{Button: b.button, Press: false})
		}
	}
}

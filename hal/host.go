package hal

// Default framebuffer size; the window shows it at 2x.
const (
	fbWidth  = 640
	fbHeight = 400
)

type hostHAL struct {
	fb    *memFramebuffer
	kbd   *hostKeyboard
	mouse *hostMouse
	t     *hostTime
	aud   Audio
}

// New returns the windowed host HAL.
func New() HAL {
	return &hostHAL{
		fb:    newMemFramebuffer(fbWidth, fbHeight),
		kbd:   newHostKeyboard(),
		mouse: newHostMouse(),
		t:     newHostTime(),
		aud:   newHostAudio(),
	}
}

func (h *hostHAL) Display() Display { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Input() Input     { return hostInput{kbd: h.kbd, mouse: h.mouse} }
func (h *hostHAL) Time() Time       { return h.t }
func (h *hostHAL) Audio() Audio     { return h.aud }

type hostDisplay struct {
	fb *memFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostInput struct {
	kbd   *hostKeyboard
	mouse *hostMouse
}

func (in hostInput) Keyboard() Keyboard { return in.kbd }
func (in hostInput) Mouse() Mouse       { return in.mouse }

//go:build cgo

package hal

import (
	"errors"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// hostAudio feeds a lock-protected stereo ring into Ebiten's audio player.
// Writers never block: when the ring is full the frame is dropped, which for
// short effect bursts is preferable to stalling the frame loop.
type hostAudio struct {
	mu sync.Mutex

	ctx        *audio.Context
	player     *audio.Player
	sampleRate uint32

	buf []int16 // interleaved L,R
	r   int
	w   int
	n   int

	closed bool
	vol    uint8
}

func newHostAudio() *hostAudio {
	return &hostAudio{vol: 200}
}

func (a *hostAudio) Start(sampleRate uint32) error {
	if sampleRate == 0 {
		return errors.New("host audio: invalid sample rate")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ctx == nil {
		a.ctx = audio.NewContext(int(sampleRate))
	} else if a.ctx.SampleRate() != int(sampleRate) {
		return errors.New("host audio: ebiten audio context sample rate is fixed")
	}
	a.sampleRate = sampleRate

	if a.player != nil {
		_ = a.player.Close()
		a.player = nil
	}

	ring := int(sampleRate/5) * 2 // ~200ms of stereo frames
	if ring < 4096 {
		ring = 4096
	}
	a.buf = make([]int16, ring)
	a.r, a.w, a.n = 0, 0, 0
	a.closed = false

	p, err := a.ctx.NewPlayer(&hostAudioReader{a: a})
	if err != nil {
		return err
	}
	p.SetBufferSize(100 * time.Millisecond)
	p.SetVolume(float64(a.vol) / 255.0)
	p.Play()
	a.player = p
	return nil
}

func (a *hostAudio) Stop() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.n, a.r, a.w = 0, 0, 0
	p := a.player
	a.player = nil
	a.mu.Unlock()

	if p != nil {
		return p.Close()
	}
	return nil
}

func (a *hostAudio) SetVolume(vol uint8) {
	a.mu.Lock()
	a.vol = vol
	p := a.player
	a.mu.Unlock()

	if p != nil {
		p.SetVolume(float64(vol) / 255.0)
	}
}

func (a *hostAudio) WriteStereo(left, right int16) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || len(a.buf) == 0 || a.n+2 > len(a.buf) {
		return
	}
	a.buf[a.w] = left
	a.buf[a.w+1] = right
	a.w += 2
	if a.w >= len(a.buf) {
		a.w = 0
	}
	a.n += 2
}

func (a *hostAudio) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.n / 2
}

type hostAudioReader struct {
	a *hostAudio
}

// Read feeds 16-bit little-endian stereo to Ebiten, padding with silence when
// the ring runs dry so the player never starves.
func (r *hostAudioReader) Read(p []byte) (int, error) {
	a := r.a
	for i := 0; i+3 < len(p); i += 4 {
		var l, rr int16

		a.mu.Lock()
		if a.n >= 2 {
			l = a.buf[a.r]
			rr = a.buf[a.r+1]
			a.r += 2
			if a.r >= len(a.buf) {
				a.r = 0
			}
			a.n -= 2
		}
		a.mu.Unlock()

		p[i+0] = byte(l)
		p[i+1] = byte(l >> 8)
		p[i+2] = byte(rr)
		p[i+3] = byte(rr >> 8)
	}
	return len(p) / 4 * 4, nil
}

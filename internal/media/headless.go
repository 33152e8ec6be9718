// SPDX-License-Identifier: MIT
package media

import (
	"context"
	"sync"
	"time"
)

const headlessTick = 500 * time.Millisecond

// HeadlessSurface is a presentation object for agents running without a
// real renderer. It synthesizes the native lifecycle: loads resolve
// immediately and playback advances the clock on a ticker. Decoding is out
// of scope; the surface only drives orchestration.
type HeadlessSurface struct {
	mu sync.Mutex

	currentTime float64
	duration    float64
	volume      float64
	rate        float64
	buffered    float64
	playing     bool
	stop        chan struct{}

	nextID int
	subs   map[int]func(Event)
}

// NewHeadless returns a headless surface reporting duration for loaded
// media. Zero means unbounded (live-like).
func NewHeadless(duration float64) *HeadlessSurface {
	return &HeadlessSurface{
		duration: duration,
		volume:   1,
		rate:     1,
		subs:     map[int]func(Event){},
	}
}

func (h *HeadlessSurface) Load(string) {
	h.mu.Lock()
	h.stopLocked()
	h.currentTime = 0
	h.buffered = 1
	h.mu.Unlock()

	go func() {
		h.emit(Event{Type: EventLoadStart})
		h.emit(Event{Type: EventLoadedMetadata})
		h.emit(Event{Type: EventCanPlay})
	}()
}

func (h *HeadlessSurface) Play(context.Context) error {
	h.mu.Lock()
	if h.playing {
		h.mu.Unlock()
		return nil
	}
	h.playing = true
	stop := make(chan struct{})
	h.stop = stop
	h.mu.Unlock()

	h.emit(Event{Type: EventPlay})
	go h.tickLoop(stop)
	return nil
}

func (h *HeadlessSurface) tickLoop(stop chan struct{}) {
	ticker := time.NewTicker(headlessTick)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			h.mu.Lock()
			h.currentTime += headlessTick.Seconds() * h.rate
			now := h.currentTime
			ended := h.duration > 0 && now >= h.duration
			if ended {
				h.currentTime = h.duration
				now = h.duration
				h.playing = false
				h.stopLocked()
			}
			h.mu.Unlock()

			h.emit(Event{Type: EventTimeUpdate, Time: now})
			if ended {
				h.emit(Event{Type: EventEnded})
				return
			}
		}
	}
}

func (h *HeadlessSurface) Pause() {
	h.mu.Lock()
	wasPlaying := h.playing
	h.playing = false
	h.stopLocked()
	h.mu.Unlock()
	if wasPlaying {
		h.emit(Event{Type: EventPause})
	}
}

func (h *HeadlessSurface) stopLocked() {
	if h.stop != nil {
		close(h.stop)
		h.stop = nil
	}
}

func (h *HeadlessSurface) CurrentTime() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentTime
}

func (h *HeadlessSurface) SetCurrentTime(s float64) {
	h.mu.Lock()
	h.currentTime = s
	h.mu.Unlock()
	h.emit(Event{Type: EventSeeked, Time: s})
}

func (h *HeadlessSurface) Duration() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.duration
}

func (h *HeadlessSurface) Volume() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.volume
}

func (h *HeadlessSurface) SetVolume(v float64) {
	h.mu.Lock()
	h.volume = v
	h.mu.Unlock()
	h.emit(Event{Type: EventVolumeChange, Volume: v})
}

func (h *HeadlessSurface) PlaybackRate() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rate
}

func (h *HeadlessSurface) SetPlaybackRate(r float64) {
	h.mu.Lock()
	h.rate = r
	h.mu.Unlock()
	h.emit(Event{Type: EventRateChange, Rate: r})
}

func (h *HeadlessSurface) BufferedFraction() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buffered
}

// CanPlayType is permissive: without a decoder there is nothing to rule
// out.
func (h *HeadlessSurface) CanPlayType(string) CanPlay { return CanPlayMaybe }

func (h *HeadlessSurface) Engine() EngineInfo {
	return EngineInfo{Family: EngineGeneric}
}

func (h *HeadlessSurface) Subscribe(fn func(Event)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

func (h *HeadlessSurface) emit(ev Event) {
	h.mu.Lock()
	fns := make([]func(Event), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

var _ Surface = (*HeadlessSurface)(nil)

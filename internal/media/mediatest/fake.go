// SPDX-License-Identifier: MIT

// Package mediatest provides a scripted rendering surface for tests.
package mediatest

import (
	"context"
	"sync"

	"github.com/shuliangfu/video-player/internal/media"
)

// FakeSurface implements media.Surface with scriptable behaviour. All state
// is guarded so tests may emit events from helper goroutines.
type FakeSurface struct {
	mu sync.Mutex

	LoadedLocators []string
	PlayCalls      int
	PauseCalls     int

	// PlayErr, when set, is returned by Play.
	PlayErr error
	// CanPlay maps MIME types to the scripted answer; unlisted types are
	// CanPlayNo.
	CanPlay map[string]media.CanPlay
	// EngineInfo is returned by Engine.
	EngineInfo media.EngineInfo

	currentTime float64
	duration    float64
	volume      float64
	rate        float64
	buffered    float64

	nextID int
	subs   map[int]func(media.Event)
}

// New returns a FakeSurface with sane defaults.
func New() *FakeSurface {
	return &FakeSurface{
		volume:     1,
		rate:       1,
		CanPlay:    map[string]media.CanPlay{},
		EngineInfo: media.EngineInfo{Family: media.EngineGeneric},
		subs:       map[int]func(media.Event){},
	}
}

func (f *FakeSurface) Load(locator string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoadedLocators = append(f.LoadedLocators, locator)
}

func (f *FakeSurface) Play(context.Context) error {
	f.mu.Lock()
	f.PlayCalls++
	err := f.PlayErr
	f.mu.Unlock()
	return err
}

func (f *FakeSurface) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PauseCalls++
}

func (f *FakeSurface) CurrentTime() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentTime
}

func (f *FakeSurface) SetCurrentTime(s float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.currentTime = s
}

func (f *FakeSurface) Duration() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.duration
}

// SetDuration scripts the reported duration.
func (f *FakeSurface) SetDuration(s float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.duration = s
}

func (f *FakeSurface) Volume() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.volume
}

func (f *FakeSurface) SetVolume(v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = v
}

func (f *FakeSurface) PlaybackRate() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rate
}

func (f *FakeSurface) SetPlaybackRate(r float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rate = r
}

func (f *FakeSurface) BufferedFraction() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buffered
}

// SetBufferedFraction scripts the buffered fraction.
func (f *FakeSurface) SetBufferedFraction(v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buffered = v
}

func (f *FakeSurface) CanPlayType(mime string) media.CanPlay {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.CanPlay[mime]
}

func (f *FakeSurface) Engine() media.EngineInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.EngineInfo
}

func (f *FakeSurface) Subscribe(fn func(media.Event)) func() {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

// PlayCallCount reports how many Play calls arrived, safe to poll while a
// goroutine drives playback.
func (f *FakeSurface) PlayCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.PlayCalls
}

// SubscriberCount reports how many native listeners are attached, used by
// leak tests around backend swaps.
func (f *FakeSurface) SubscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Emit delivers a native event to every subscriber.
func (f *FakeSurface) Emit(ev media.Event) {
	f.mu.Lock()
	fns := make([]func(media.Event), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

var _ media.Surface = (*FakeSurface)(nil)

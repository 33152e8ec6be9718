// SPDX-License-Identifier: MIT
package backend

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/shuliangfu/video-player/internal/media"
	"github.com/shuliangfu/video-player/internal/metrics"
)

// statusNames feeds the one-hot backend status gauge.
var statusNames = []string{
	string(StatusIdle), string(StatusLoading), string(StatusReady),
	string(StatusPlaying), string(StatusPaused), string(StatusEnded),
	string(StatusError), string(StatusDestroyed),
}

// core carries the state every backend composes: the surface, the listener
// registry, and the lifecycle status. It is composed by value, not
// inherited; each backend remains free to override any behaviour.
type core struct {
	mu      sync.Mutex
	surface media.Surface
	emitter *Emitter
	log     zerolog.Logger
	status  Status
	unsub   func()
}

func newCore(surface media.Surface, logger zerolog.Logger) core {
	return core{
		surface: surface,
		emitter: NewEmitter(),
		log:     logger,
		status:  StatusIdle,
	}
}

// attachSurface subscribes to native surface events, re-emitting them and
// tracking lifecycle transitions. Idempotent per instance.
func (c *core) attachSurface() {
	c.mu.Lock()
	if c.unsub != nil {
		c.mu.Unlock()
		return
	}
	c.unsub = c.surface.Subscribe(c.onSurfaceEvent)
	c.mu.Unlock()
}

func (c *core) onSurfaceEvent(ev media.Event) {
	switch ev.Type {
	case media.EventLoadStart:
		c.transition(StatusLoading)
	case media.EventCanPlay, media.EventCanPlayThrough:
		// Only the initial canplay promotes Loading to Ready; rebuffer
		// recoveries during playback must not demote the status.
		if c.Status() == StatusLoading {
			c.transition(StatusReady)
		}
	case media.EventPlay:
		c.transition(StatusPlaying)
	case media.EventPause:
		c.transition(StatusPaused)
	case media.EventEnded:
		c.transition(StatusEnded)
	case media.EventError:
		c.transition(StatusError)
	}
	c.emitter.Emit(ev)
}

// transition applies a lifecycle change when legal; illegal transitions are
// dropped silently because native event streams repeat themselves.
func (c *core) transition(next Status) bool {
	c.mu.Lock()
	if !c.status.CanTransition(next) {
		c.mu.Unlock()
		return false
	}
	c.status = next
	c.mu.Unlock()
	metrics.SetBackendStatus(string(next), statusNames)
	return true
}

// releaseSurface detaches the native subscription. Safe to call twice.
func (c *core) releaseSurface() {
	c.mu.Lock()
	unsub := c.unsub
	c.unsub = nil
	c.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (c *core) destroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status == StatusDestroyed
}

// Shared contract methods.

func (c *core) Play(ctx context.Context) error {
	if c.destroyed() {
		return ErrNotInitialized
	}
	return c.surface.Play(ctx)
}

func (c *core) Pause() {
	if c.destroyed() {
		return
	}
	c.surface.Pause()
}

func (c *core) Seek(seconds float64) {
	if c.destroyed() {
		return
	}
	if seconds < 0 {
		seconds = 0
	}
	c.surface.SetCurrentTime(seconds)
}

func (c *core) SetVolume(v float64) {
	if c.destroyed() {
		return
	}
	c.surface.SetVolume(ClampVolume(v))
}

func (c *core) SetPlaybackRate(r float64) {
	if c.destroyed() {
		return
	}
	c.surface.SetPlaybackRate(ClampRate(r))
}

func (c *core) CurrentTime() float64      { return c.surface.CurrentTime() }
func (c *core) Duration() float64         { return c.surface.Duration() }
func (c *core) Volume() float64           { return c.surface.Volume() }
func (c *core) PlaybackRate() float64     { return c.surface.PlaybackRate() }
func (c *core) BufferedFraction() float64 { return c.surface.BufferedFraction() }

func (c *core) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *core) On(t media.EventType, fn func(media.Event)) Subscription {
	return c.emitter.On(t, fn)
}

func (c *core) Off(sub Subscription) {
	c.emitter.Off(sub)
}

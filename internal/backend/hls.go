// SPDX-License-Identifier: MIT
package backend

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/shuliangfu/video-player/internal/media"
)

// hlsNativeMIME is the manifest MIME probed for native fallback.
const hlsNativeMIME = "application/vnd.apple.mpegurl"

// HLS adapts an hls.js-style engine to the backend contract. Without an
// engine it falls back to the surface's native HLS capability.
//
// Fatal error policy: a fatal network error first gets one in-place
// manifest reload, a fatal media error one in-place media recovery; any
// other fatal error destroys the session and escalates immediately.
// Escalation surfaces as a media.EventError on the event feed.
type HLS struct {
	core

	engine      HLSEngine
	engineUnsub func()

	recoverMu       sync.Mutex
	networkRecovers int
	mediaRecovers   int
}

// NewHLS constructs the HLS backend. factory may be nil; in that case the
// surface must report native HLS support or construction fails.
func NewHLS(surface media.Surface, factory HLSEngineFactory, logger zerolog.Logger) (*HLS, error) {
	b := &HLS{core: newCore(surface, logger)}

	if factory == nil {
		if surface.CanPlayType(hlsNativeMIME) == media.CanPlayNo {
			return nil, fmt.Errorf("hls: no engine available and no native support")
		}
		b.attachSurface()
		b.log.Debug().Msg("hls: using native playback")
		return b, nil
	}

	engine, err := factory(surface)
	if err != nil {
		return nil, fmt.Errorf("hls: engine construction: %w", err)
	}
	b.engine = engine
	b.engineUnsub = engine.Subscribe(b.onEngineEvent)
	b.attachSurface()
	return b, nil
}

// Load implements Backend.
func (b *HLS) Load(locator string) error {
	if b.destroyed() {
		return ErrNotInitialized
	}
	b.transition(StatusLoading)

	b.recoverMu.Lock()
	b.networkRecovers = 0
	b.mediaRecovers = 0
	b.recoverMu.Unlock()

	if b.engine == nil {
		b.surface.Load(locator)
		return nil
	}
	return b.engine.LoadSource(locator)
}

func (b *HLS) onEngineEvent(ev EngineEvent) {
	switch ev.Kind {
	case EngineFatalNetwork:
		b.recoverMu.Lock()
		first := b.networkRecovers == 0
		b.networkRecovers++
		b.recoverMu.Unlock()
		if first {
			if err := b.engine.RecoverNetworkError(); err == nil {
				b.log.Warn().Msg("hls: recovered fatal network error via manifest reload")
				return
			}
		}
		b.escalate(ev.Err)
	case EngineFatalMedia:
		b.recoverMu.Lock()
		first := b.mediaRecovers == 0
		b.mediaRecovers++
		b.recoverMu.Unlock()
		if first {
			if err := b.engine.RecoverMediaError(); err == nil {
				b.log.Warn().Msg("hls: recovered fatal media error")
				return
			}
		}
		b.escalate(ev.Err)
	case EngineFatalOther:
		// No internal recovery path: tear the session down and escalate.
		b.engine.Destroy()
		b.escalate(ev.Err)
	case EngineLevelSwitched:
		b.emitter.Emit(media.Event{Type: media.EventQualityChange, Level: ev.Level})
	}
}

func (b *HLS) escalate(err error) {
	if err == nil {
		err = fmt.Errorf("hls: fatal engine error")
	}
	b.transition(StatusError)
	b.log.Error().Err(err).Msg("hls: fatal error escalated")
	b.emitter.Emit(media.Event{Type: media.EventError, Err: err})
}

// Destroy implements Backend. Idempotent.
func (b *HLS) Destroy() {
	if !b.transition(StatusDestroyed) {
		return
	}
	if b.engineUnsub != nil {
		b.engineUnsub()
	}
	if b.engine != nil {
		b.engine.Destroy()
	}
	b.releaseSurface()
	b.emitter.Clear()
}

// QualityLevels implements QualityReporter.
func (b *HLS) QualityLevels() []QualityLevel {
	if b.engine == nil {
		return nil
	}
	return b.engine.Levels()
}

// CurrentQualityLevel implements QualityReporter.
func (b *HLS) CurrentQualityLevel() int {
	if b.engine == nil {
		return -1
	}
	return b.engine.CurrentLevel()
}

// SetQualityLevel implements QualityReporter.
func (b *HLS) SetQualityLevel(index int) {
	if b.engine == nil {
		return
	}
	b.engine.SetLevel(index)
}

var (
	_ Backend         = (*HLS)(nil)
	_ QualityReporter = (*HLS)(nil)
)

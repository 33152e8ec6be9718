// SPDX-License-Identifier: MIT
package backend

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/shuliangfu/video-player/internal/media"
)

// DASHOptions tune the engine at session-initialize time.
type DASHOptions struct {
	StreamingDelaySeconds float64
	AutoBitrateSwitch     bool
}

// DASH adapts a dash.js-style engine to the backend contract. Streaming
// delay and auto-bitrate policy are applied once at initialization; the
// live delay stays tunable afterwards.
type DASH struct {
	core

	engine      DASHEngine
	engineUnsub func()
	opts        DASHOptions
}

// NewDASH constructs the DASH backend. An engine factory is required; DASH
// has no native fallback.
func NewDASH(surface media.Surface, factory DASHEngineFactory, opts DASHOptions, logger zerolog.Logger) (*DASH, error) {
	if factory == nil {
		return nil, fmt.Errorf("dash: no engine available")
	}
	engine, err := factory(surface)
	if err != nil {
		return nil, fmt.Errorf("dash: engine construction: %w", err)
	}

	b := &DASH{core: newCore(surface, logger), engine: engine, opts: opts}
	b.engineUnsub = engine.Subscribe(b.onEngineEvent)
	b.attachSurface()
	return b, nil
}

// Load implements Backend.
func (b *DASH) Load(locator string) error {
	if b.destroyed() {
		return ErrNotInitialized
	}
	b.transition(StatusLoading)
	return b.engine.Initialize(locator, DASHEngineConfig{
		StreamingDelaySeconds: b.opts.StreamingDelaySeconds,
		AutoBitrateSwitch:     b.opts.AutoBitrateSwitch,
	})
}

// SetLiveDelay retunes the live edge distance mid-session.
func (b *DASH) SetLiveDelay(seconds float64) {
	if b.destroyed() {
		return
	}
	b.engine.SetLiveDelay(seconds)
}

func (b *DASH) onEngineEvent(ev EngineEvent) {
	switch ev.Kind {
	case EngineFatalNetwork, EngineFatalMedia, EngineFatalOther:
		err := ev.Err
		if err == nil {
			err = fmt.Errorf("dash: fatal engine error")
		}
		b.transition(StatusError)
		b.log.Error().Err(err).Msg("dash: fatal error escalated")
		b.emitter.Emit(media.Event{Type: media.EventError, Err: err})
	case EngineLevelSwitched:
		b.emitter.Emit(media.Event{Type: media.EventQualityChange, Level: ev.Level})
	}
}

// Destroy implements Backend. Idempotent.
func (b *DASH) Destroy() {
	if !b.transition(StatusDestroyed) {
		return
	}
	if b.engineUnsub != nil {
		b.engineUnsub()
	}
	b.engine.Destroy()
	b.releaseSurface()
	b.emitter.Clear()
}

// QualityLevels implements QualityReporter.
func (b *DASH) QualityLevels() []QualityLevel { return b.engine.Levels() }

// CurrentQualityLevel implements QualityReporter.
func (b *DASH) CurrentQualityLevel() int { return b.engine.CurrentLevel() }

// SetQualityLevel implements QualityReporter.
func (b *DASH) SetQualityLevel(index int) { b.engine.SetLevel(index) }

var (
	_ Backend         = (*DASH)(nil)
	_ QualityReporter = (*DASH)(nil)
)

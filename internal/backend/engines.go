// SPDX-License-Identifier: MIT
package backend

import "github.com/shuliangfu/video-player/internal/media"

// Protocol engines are the external per-protocol decoder libraries the
// backends drive. They are injected through factory options; the core never
// constructs one and only relies on the contracts below.

// EngineEventKind classifies engine notifications.
type EngineEventKind string

const (
	// EngineFatalNetwork is a fatal manifest/segment network failure.
	EngineFatalNetwork EngineEventKind = "fatal-network"
	// EngineFatalMedia is a fatal decode/buffer failure.
	EngineFatalMedia EngineEventKind = "fatal-media"
	// EngineFatalOther is any other unrecoverable engine failure.
	EngineFatalOther EngineEventKind = "fatal-other"
	// EngineLevelSwitched reports a quality level change.
	EngineLevelSwitched EngineEventKind = "level-switched"
	// EngineManifestLoaded reports manifest availability.
	EngineManifestLoaded EngineEventKind = "manifest-loaded"
	// EngineConnOpen reports an established live connection.
	EngineConnOpen EngineEventKind = "conn-open"
	// EngineConnLost is a terminal network-status signal on a live
	// connection; the FLV backend answers it with its reconnect loop.
	EngineConnLost EngineEventKind = "conn-lost"
)

// EngineEvent is one notification from a protocol engine.
type EngineEvent struct {
	Kind  EngineEventKind
	Level int
	Err   error
}

// HLSEngine mirrors an hls.js-style session bound to one surface.
type HLSEngine interface {
	LoadSource(locator string) error

	// RecoverNetworkError reloads the manifest in place; the backend calls
	// it once before escalating a fatal network error.
	RecoverNetworkError() error
	// RecoverMediaError attempts in-place media recovery; the backend calls
	// it once before escalating a fatal media error.
	RecoverMediaError() error

	Levels() []QualityLevel
	CurrentLevel() int
	// SetLevel applies a level index; -1 re-enables automatic switching.
	SetLevel(index int)

	Destroy()
	Subscribe(fn func(EngineEvent)) (unsubscribe func())
}

// DASHEngineConfig is applied once at session initialization.
type DASHEngineConfig struct {
	// StreamingDelaySeconds is the target live edge distance.
	StreamingDelaySeconds float64
	// AutoBitrateSwitch enables the engine's ABR controller.
	AutoBitrateSwitch bool
}

// DASHEngine mirrors a dash.js-style session.
type DASHEngine interface {
	Initialize(locator string, cfg DASHEngineConfig) error
	// SetLiveDelay retunes the live edge distance mid-session.
	SetLiveDelay(seconds float64)

	Levels() []QualityLevel
	CurrentLevel() int
	SetLevel(index int)

	Destroy()
	Subscribe(fn func(EngineEvent)) (unsubscribe func())
}

// FLVEngine mirrors an flv.js-style connection-oriented session.
type FLVEngine interface {
	// Open connects to the locator and begins feeding the surface. It is
	// called again for every reconnect attempt.
	Open(locator string) error
	Close()
	Subscribe(fn func(EngineEvent)) (unsubscribe func())
}

// HLSEngineFactory builds an HLS engine attached to surface. A nil factory
// means no HLS library is available and the backend falls back to the
// surface's native HLS capability.
type HLSEngineFactory func(surface media.Surface) (HLSEngine, error)

// DASHEngineFactory builds a DASH engine attached to surface.
type DASHEngineFactory func(surface media.Surface) (DASHEngine, error)

// FLVEngineFactory builds an FLV engine attached to surface.
type FLVEngineFactory func(surface media.Surface) (FLVEngine, error)

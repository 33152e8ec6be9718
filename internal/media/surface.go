// SPDX-License-Identifier: MIT

// Package media declares the rendering-surface contract the player drives.
// The surface itself is an external collaborator; this package only pins
// down the capability set the orchestration core relies on.
package media

import "context"

// CanPlay is the surface's native decode confidence for a MIME type.
type CanPlay string

const (
	CanPlayNo       CanPlay = ""
	CanPlayMaybe    CanPlay = "maybe"
	CanPlayProbably CanPlay = "probably"
)

// EngineFamily identifies the rendering engine family for capability policy.
type EngineFamily string

const (
	EngineWebKit  EngineFamily = "webkit" // Safari-like: native HLS first
	EngineGeneric EngineFamily = "generic"
)

// EngineInfo describes the surface's engine for the capability advisor.
type EngineInfo struct {
	Family       EngineFamily
	MajorVersion int
	HardwareAV1  bool
}

// Surface is the mutable media-presentation object backends attach to.
// Implementations are owned by the host; the core never constructs one.
type Surface interface {
	// Load points the surface at a locator for native decode.
	Load(locator string)

	// Play requests playback; the surface accepts or rejects asynchronously
	// and the call suspends on ctx until it resolves.
	Play(ctx context.Context) error

	Pause()

	CurrentTime() float64
	SetCurrentTime(seconds float64)
	Duration() float64

	Volume() float64
	SetVolume(v float64)

	PlaybackRate() float64
	SetPlaybackRate(r float64)

	// BufferedFraction reports how much of the duration is buffered, 0..1.
	BufferedFraction() float64

	// CanPlayType is the native "can play" predicate.
	CanPlayType(mime string) CanPlay

	// Engine describes the rendering engine for protocol ranking.
	Engine() EngineInfo

	// Subscribe registers fn for native lifecycle events and returns an
	// unsubscribe func. Events arrive on the surface's dispatch goroutine.
	Subscribe(fn func(Event)) (unsubscribe func())
}

// SurfaceFactory creates detached surfaces, used for predictive preload of
// upcoming playlist items without disturbing the active presentation.
type SurfaceFactory func() Surface

// SPDX-License-Identifier: MIT
package player

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/shuliangfu/video-player/internal/backend"
	"github.com/shuliangfu/video-player/internal/history"
	"github.com/shuliangfu/video-player/internal/media"
	"github.com/shuliangfu/video-player/internal/netstatus"
	"github.com/shuliangfu/video-player/internal/playlist"
	"github.com/shuliangfu/video-player/internal/resilience"
)

// Store is the persistence contract the player saves positions and
// settings through. *history.Store satisfies it; a nil Store disables
// persistence entirely.
type Store interface {
	SavePosition(ctx context.Context, locator string, seconds, duration float64) error
	GetPosition(ctx context.Context, locator string) (history.Position, bool, error)
	ClearPosition(ctx context.Context, locator string) error
	SaveSettings(ctx context.Context, in history.Settings) error
	GetSettings(ctx context.Context) (history.Settings, error)
}

// Options configure a Player. Surface is the only mandatory field.
type Options struct {
	Logger zerolog.Logger

	// Surface is the host-owned presentation object. Required.
	Surface media.Surface

	// SurfaceFactory creates detached surfaces for predictive preload.
	// Nil disables preload.
	SurfaceFactory media.SurfaceFactory

	// Network supplies connectivity snapshots. Nil means no adaptation.
	Network netstatus.Source

	// Store persists positions and settings. Nil disables persistence.
	Store Store

	// Clock is injectable for tests; nil means the wall clock.
	Clock resilience.Clock

	// Backends carry the per-protocol engine factories and options. The
	// Logger field is overwritten with the player's logger.
	Backends backend.FactoryOptions

	// FallbackSources are tried in order when loading the active source
	// fails. With fallbacks configured, exhausting the list is terminal.
	FallbackSources []string

	// Playlist seeds the item sequence; LoopMode applies to it.
	Playlist []playlist.Item
	LoopMode playlist.LoopMode

	// Autoplay starts playback as soon as a load reaches readiness.
	Autoplay bool

	// Retry bounds the whole-source reload chain. Zero value selects the
	// default policy (1s base, 10s ceiling, 3 attempts).
	Retry resilience.Policy

	// PreloadEnabled arms predictive preload of the next playlist item.
	PreloadEnabled bool
}

// ErrNoSurface reports construction without a rendering surface. This is
// fatal and never retried.
var ErrNoSurface = errors.New("player: no rendering surface configured")

// ErrUnsupported reports a capability call the active backend does not
// implement.
var ErrUnsupported = errors.New("player: capability not supported by active backend")

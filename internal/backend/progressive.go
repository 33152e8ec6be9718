// SPDX-License-Identifier: MIT
package backend

import (
	"github.com/rs/zerolog"

	"github.com/shuliangfu/video-player/internal/media"
)

// Progressive delegates directly to the surface's native decode. It is the
// deterministic fallback target for every other backend and carries no
// adaptive bitrate logic.
type Progressive struct {
	core
}

// NewProgressive returns a progressive backend bound to surface.
func NewProgressive(surface media.Surface, logger zerolog.Logger) *Progressive {
	b := &Progressive{core: newCore(surface, logger)}
	b.attachSurface()
	return b
}

// Load implements Backend.
func (b *Progressive) Load(locator string) error {
	if b.destroyed() {
		return ErrNotInitialized
	}
	b.transition(StatusLoading)
	b.surface.Load(locator)
	b.log.Debug().Str("locator", locator).Msg("progressive load")
	return nil
}

// Destroy implements Backend. Idempotent.
func (b *Progressive) Destroy() {
	if !b.transition(StatusDestroyed) {
		return
	}
	b.releaseSurface()
	b.emitter.Clear()
}

var _ Backend = (*Progressive)(nil)

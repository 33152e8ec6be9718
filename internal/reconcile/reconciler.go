// SPDX-License-Identifier: MIT

// Package reconcile translates the active backend's raw event feed into the
// stable consumer-facing feed and rate-shapes the high-frequency event
// classes. It tracks every handler it attaches so a backend swap detaches
// exactly that set; re-subscribing without a prior detach is the bug class
// this package exists to prevent.
package reconcile

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/shuliangfu/video-player/internal/backend"
	"github.com/shuliangfu/video-player/internal/media"
	"github.com/shuliangfu/video-player/internal/resilience"
)

// Coalescing windows per event class.
const (
	timeUpdateWindow = 250 * time.Millisecond
	volumeWindow     = 300 * time.Millisecond
	seekingWindow    = 100 * time.Millisecond
)

// Hooks are orchestrator callbacks fired on specific raw events.
type Hooks struct {
	// OnEnded drives the playlist-advance policy.
	OnEnded func()
	// OnMetadataReady drives position restore.
	OnMetadataReady func()
	// OnError, when set, intercepts raw error events instead of relaying
	// them, so the retry path can fail silently until it is terminal. The
	// error counter still increments.
	OnError func(media.Event)
}

// Reconciler owns the consumer-facing emitter and the per-backend
// subscription table.
type Reconciler struct {
	out   *backend.Emitter
	stats *Stats
	clock resilience.Clock
	log   zerolog.Logger
	hooks Hooks

	timeUpdates *coalescer
	volumes     *coalescer
	seekings    *coalescer

	attached backend.Backend
	subs     []backend.Subscription
}

// New builds a reconciler. clock may be nil for the wall clock.
func New(clock resilience.Clock, logger zerolog.Logger, hooks Hooks) *Reconciler {
	if clock == nil {
		clock = resilience.RealClock()
	}
	r := &Reconciler{
		out:   backend.NewEmitter(),
		stats: newStats(clock),
		clock: clock,
		log:   logger,
		hooks: hooks,
	}
	r.timeUpdates = newThrottle(timeUpdateWindow, clock, r.out.Emit)
	r.volumes = newDebounce(volumeWindow, clock, r.out.Emit)
	r.seekings = newThrottle(seekingWindow, clock, r.out.Emit)
	return r
}

// Out is the consumer-facing emitter. Its registrations survive backend
// swaps untouched.
func (r *Reconciler) Out() *backend.Emitter { return r.out }

// Stats exposes the accumulated playback statistics.
func (r *Reconciler) Stats() *Stats { return r.stats }

// relayed is the full raw vocabulary the reconciler listens to.
var relayed = []media.EventType{
	media.EventLoadStart,
	media.EventLoadedMetadata,
	media.EventLoadedData,
	media.EventProgress,
	media.EventCanPlay,
	media.EventCanPlayThrough,
	media.EventPlay,
	media.EventPause,
	media.EventEnded,
	media.EventTimeUpdate,
	media.EventVolumeChange,
	media.EventRateChange,
	media.EventSeeking,
	media.EventSeeked,
	media.EventWaiting,
	media.EventError,
	media.EventConnectionChange,
	media.EventQualityChange,
}

// Attach subscribes to b's raw feed. Exactly one backend may be attached;
// attaching over a live attachment detaches the old one first so no stale
// handler survives a swap.
func (r *Reconciler) Attach(b backend.Backend) {
	if r.attached != nil {
		r.Detach()
	}
	r.attached = b
	for _, t := range relayed {
		t := t
		r.subs = append(r.subs, b.On(t, func(ev media.Event) { r.dispatch(ev) }))
	}
}

// Detach removes exactly the handlers Attach registered and drains any
// pending coalesced updates so the final state still reaches the consumer.
func (r *Reconciler) Detach() {
	if r.attached == nil {
		return
	}
	for _, sub := range r.subs {
		r.attached.Off(sub)
	}
	r.subs = r.subs[:0]
	r.attached = nil

	r.timeUpdates.drain()
	r.volumes.drain()
	r.seekings.drain()
}

// AttachedSubscriptions reports the size of the subscription table, used by
// leak tests.
func (r *Reconciler) AttachedSubscriptions() int { return len(r.subs) }

func (r *Reconciler) dispatch(ev media.Event) {
	switch ev.Type {
	case media.EventTimeUpdate:
		r.timeUpdates.Offer(ev)
		return
	case media.EventVolumeChange:
		r.volumes.Offer(ev)
		return
	case media.EventSeeking:
		r.seekings.Offer(ev)
		return
	case media.EventPlay:
		r.stats.playStarted()
	case media.EventPause:
		r.stats.playStopped()
	case media.EventWaiting:
		r.stats.bufferingStarted()
	case media.EventCanPlay, media.EventCanPlayThrough:
		r.stats.bufferingStopped()
	case media.EventError:
		r.stats.errorSeen()
		if r.hooks.OnError != nil {
			r.hooks.OnError(ev)
			return
		}
	case media.EventEnded:
		r.stats.playStopped()
		if r.hooks.OnEnded != nil {
			defer r.hooks.OnEnded()
		}
	case media.EventLoadedMetadata:
		if r.hooks.OnMetadataReady != nil {
			defer r.hooks.OnMetadataReady()
		}
	}
	r.out.Emit(ev)
}

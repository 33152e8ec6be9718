// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package sched schedules network-adaptive work around active playback:
// predictive preload of the next playlist item and startup quality choice.
package sched

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/shuliangfu/video-player/internal/media"
	"github.com/shuliangfu/video-player/internal/metrics"
	"github.com/shuliangfu/video-player/internal/netstatus"
)

// Threshold returns the playback-progress fraction at which the next item
// should start preloading, and whether preloading is permitted at all under
// the given network conditions. Data saver and very slow links disable it.
func Threshold(snap netstatus.Snapshot) (float64, bool) {
	if !snap.Online || snap.SaveData {
		return 0, false
	}
	switch snap.Class {
	case netstatus.ClassCell2G, netstatus.ClassSlow2G:
		return 0, false
	case netstatus.ClassCell4G, netstatus.ClassCell5G:
		return 0.70, true
	case netstatus.ClassCell3G:
		return 0.85, true
	default:
		return 0.80, true
	}
}

// Preloader prefetches the next playlist item on a detached surface once
// the current item's progress passes the network-dependent threshold.
// The trigger is one-shot per armed item and re-arms when the connection
// crosses the slow/fast boundary before the prefetch has started.
type Preloader struct {
	mu      sync.Mutex
	log     zerolog.Logger
	factory media.SurfaceFactory
	enabled bool

	snap  netstatus.Snapshot
	armed string
	fired bool

	prefetch    media.Surface
	prefetchFor string
	ready       bool
	unsub       func()
	onComplete  func(locator string)
}

// NewPreloader builds a preloader. A nil factory disables prefetch entirely
// regardless of configuration.
func NewPreloader(factory media.SurfaceFactory, enabled bool, logger zerolog.Logger) *Preloader {
	return &Preloader{
		log:     logger,
		factory: factory,
		enabled: enabled && factory != nil,
	}
}

// OnComplete registers fn to run when a prefetch surface reports readiness.
// fn is invoked outside the preloader lock.
func (p *Preloader) OnComplete(fn func(locator string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onComplete = fn
}

// SetEnabled toggles prefetch at runtime, from config reload.
func (p *Preloader) SetEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = enabled && p.factory != nil
}

// Arm sets the locator to prefetch next. Arming a different locator discards
// any in-flight prefetch; arming the same locator is a no-op.
func (p *Preloader) Arm(nextLocator string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.armed == nextLocator {
		return
	}
	p.discardLocked()
	p.armed = nextLocator
	p.fired = false
}

// Disarm cancels the pending trigger and discards any prefetch.
func (p *Preloader) Disarm() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.discardLocked()
	p.armed = ""
	p.fired = false
}

// SetNetwork feeds a new connectivity snapshot. Crossing the slow/fast
// boundary re-arms a trigger that has fired but produced no surface yet, so
// the new threshold is honored.
func (p *Preloader) SetNetwork(snap netstatus.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	crossed := p.snap.Class.Fast() != snap.Class.Fast()
	p.snap = snap
	if crossed && p.prefetch == nil {
		p.fired = false
	}
}

// ObserveProgress feeds the current item's playback progress as a 0..1
// fraction. Passing the threshold starts the prefetch exactly once.
func (p *Preloader) ObserveProgress(fraction float64) {
	p.mu.Lock()
	if !p.enabled || p.armed == "" || p.fired {
		p.mu.Unlock()
		return
	}
	threshold, ok := Threshold(p.snap)
	if !ok {
		p.mu.Unlock()
		metrics.PreloadsTotal.WithLabelValues("skipped").Inc()
		return
	}
	if fraction < threshold {
		p.mu.Unlock()
		return
	}

	p.fired = true
	locator := p.armed
	class := p.snap.Class
	surface := p.factory()
	p.prefetch = surface
	p.prefetchFor = locator
	p.ready = false
	p.unsub = surface.Subscribe(func(ev media.Event) {
		if ev.Type == media.EventCanPlay {
			p.markReady(locator)
		}
	})
	p.mu.Unlock()

	p.log.Debug().
		Str("locator", locator).
		Float64("threshold", threshold).
		Str("class", string(class)).
		Msg("preload started")
	metrics.PreloadsTotal.WithLabelValues("started").Inc()
	surface.Load(locator)
}

func (p *Preloader) markReady(locator string) {
	p.mu.Lock()
	if p.prefetchFor != locator || p.ready {
		p.mu.Unlock()
		return
	}
	p.ready = true
	fn := p.onComplete
	p.mu.Unlock()

	metrics.PreloadsTotal.WithLabelValues("complete").Inc()
	if fn != nil {
		fn(locator)
	}
}

// Take hands over the prefetched surface for a locator, or reports that no
// ready prefetch exists. A successful take clears the preloader state.
func (p *Preloader) Take(locator string) (media.Surface, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready || p.prefetchFor != locator {
		return nil, false
	}
	surface := p.prefetch
	if p.unsub != nil {
		p.unsub()
	}
	p.prefetch = nil
	p.prefetchFor = ""
	p.ready = false
	p.unsub = nil
	p.armed = ""
	p.fired = false
	return surface, true
}

func (p *Preloader) discardLocked() {
	if p.unsub != nil {
		p.unsub()
		p.unsub = nil
	}
	p.prefetch = nil
	p.prefetchFor = ""
	p.ready = false
}

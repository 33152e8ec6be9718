// SPDX-License-Identifier: MIT
package reconcile

import (
	"sync"
	"time"

	"github.com/shuliangfu/video-player/internal/media"
	"github.com/shuliangfu/video-player/internal/metrics"
	"github.com/shuliangfu/video-player/internal/resilience"
)

// coalescer merges rapid events of one type. Two policies exist:
//
//   - throttle: at most one emission per window, carrying the last raw
//     event observed in that window. The window opens on the first offer
//     and flushes when it closes.
//   - debounce: only the last event before a full quiet window is emitted;
//     every offer re-opens the window.
//
// Both guarantee the final pending update fires once input quiesces:
// events are merged, never dropped.
type coalescer struct {
	window   time.Duration
	debounce bool
	clock    resilience.Clock
	emit     func(media.Event)

	mu      sync.Mutex
	pending *media.Event
	timer   resilience.Timer
}

func newThrottle(window time.Duration, clock resilience.Clock, emit func(media.Event)) *coalescer {
	return &coalescer{window: window, clock: clock, emit: emit}
}

func newDebounce(window time.Duration, clock resilience.Clock, emit func(media.Event)) *coalescer {
	return &coalescer{window: window, debounce: true, clock: clock, emit: emit}
}

// Offer submits a raw event for merging.
func (c *coalescer) Offer(ev media.Event) {
	c.mu.Lock()
	if c.pending != nil {
		metrics.RecordCoalesced(string(ev.Type))
	}
	c.pending = &ev
	if c.debounce {
		if c.timer != nil {
			c.timer.Stop()
		}
		c.timer = c.clock.AfterFunc(c.window, c.flush)
	} else if c.timer == nil {
		c.timer = c.clock.AfterFunc(c.window, c.flush)
	}
	c.mu.Unlock()
}

// flush emits the pending event, if any, and closes the window.
func (c *coalescer) flush() {
	c.mu.Lock()
	ev := c.pending
	c.pending = nil
	c.timer = nil
	c.mu.Unlock()
	if ev != nil {
		c.emit(*ev)
	}
}

// drain cancels the timer and delivers any pending event immediately, used
// on detach so the final state is never lost.
func (c *coalescer) drain() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	c.flush()
}

// SPDX-License-Identifier: MIT

// Package testutil holds shared test doubles.
package testutil

import (
	"sort"
	"sync"
	"time"

	"github.com/shuliangfu/video-player/internal/resilience"
)

// FakeClock is a deterministic resilience.Clock. Advance moves time forward
// and fires due callbacks synchronously in schedule order.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	nextID int
	timers map[int]*fakeTimer
}

type fakeTimer struct {
	id      int
	clock   *FakeClock
	when    time.Time
	fn      func()
	stopped bool
}

// NewFakeClock returns a clock starting at a fixed instant.
func NewFakeClock() *FakeClock {
	return &FakeClock{
		now:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		timers: map[int]*fakeTimer{},
	}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) AfterFunc(d time.Duration, fn func()) resilience.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{id: c.nextID, clock: c, when: c.now.Add(d), fn: fn}
	c.nextID++
	c.timers[t.id] = t
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	delete(t.clock.timers, t.id)
	return true
}

// Advance moves the clock by d, firing every timer that comes due, in
// chronological order. Callbacks run without the clock lock held so they
// may schedule further timers.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var due []*fakeTimer
		for _, t := range c.timers {
			if !t.when.After(target) {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			c.now = target
			c.mu.Unlock()
			return
		}
		sort.Slice(due, func(i, j int) bool {
			if due[i].when.Equal(due[j].when) {
				return due[i].id < due[j].id
			}
			return due[i].when.Before(due[j].when)
		})
		next := due[0]
		c.now = next.when
		next.stopped = true
		delete(c.timers, next.id)
		c.mu.Unlock()

		next.fn()
	}
}

// PendingTimers reports how many callbacks are scheduled.
func (c *FakeClock) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

var _ resilience.Clock = (*FakeClock)(nil)

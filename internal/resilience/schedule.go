// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package resilience

import (
	"sync"
	"time"
)

// TaskRunner schedules delayed actions keyed by a generation counter. A
// delayed retry, reconnect or preload scheduled for generation G fires only
// while G is still current, so a stale task can never run after a newer
// load supersedes it.
type TaskRunner struct {
	mu     sync.Mutex
	clock  Clock
	gen    uint64
	timers []Timer
}

// NewTaskRunner returns a runner using clock (nil means the wall clock).
func NewTaskRunner(clock Clock) *TaskRunner {
	if clock == nil {
		clock = RealClock()
	}
	return &TaskRunner{clock: clock}
}

// Generation returns the current generation.
func (r *TaskRunner) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}

// Advance invalidates every outstanding task and returns the new
// generation. Pending timers are stopped eagerly; any that already fired
// are rejected by the generation check instead.
func (r *TaskRunner) Advance() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	for _, t := range r.timers {
		t.Stop()
	}
	r.timers = r.timers[:0]
	return r.gen
}

// Schedule runs fn after delay, provided gen is still the current
// generation both at scheduling time and when the timer fires.
func (r *TaskRunner) Schedule(gen uint64, delay time.Duration, fn func()) {
	r.mu.Lock()
	if gen != r.gen {
		r.mu.Unlock()
		return
	}
	timer := r.clock.AfterFunc(delay, func() {
		r.mu.Lock()
		stale := gen != r.gen
		r.mu.Unlock()
		if !stale {
			fn()
		}
	})
	r.timers = append(r.timers, timer)
	r.mu.Unlock()
}

// Stop cancels all outstanding tasks. Idempotent.
func (r *TaskRunner) Stop() {
	r.Advance()
}

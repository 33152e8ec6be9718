// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package resilience provides the backoff policy and cancellable scheduling
// shared by the whole-source reload path and the live reconnect loop. The
// two call sites keep independent counters; only a success signal on the
// respective path resets its own counter.
package resilience

import "time"

// Policy describes one exponential backoff chain.
type Policy struct {
	BaseDelay   time.Duration
	MaxDelay    time.Duration // ceiling applied to every computed delay
	MaxAttempts int
}

// DefaultReloadPolicy is the whole-source reload policy: 1s base, 10s
// ceiling, three attempts.
func DefaultReloadPolicy() Policy {
	return Policy{BaseDelay: time.Second, MaxDelay: 10 * time.Second, MaxAttempts: 3}
}

// NextDelay computes base * 2^(attempt-1) clamped to the ceiling. Attempt
// numbering starts at 1; values below that are treated as 1.
func (p Policy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Counter tracks one attempt chain against a policy.
type Counter struct {
	policy  Policy
	attempt int
}

// NewCounter returns a counter at zero attempts.
func NewCounter(policy Policy) *Counter {
	return &Counter{policy: policy}
}

// Attempt returns the number of failures recorded since the last success.
func (c *Counter) Attempt() int { return c.attempt }

// Exhausted reports whether no attempts remain.
func (c *Counter) Exhausted() bool {
	return c.attempt >= c.policy.MaxAttempts
}

// Fail records a failure and returns the delay before the next attempt and
// whether another attempt is permitted. The attempt count never exceeds
// MaxAttempts; further failures are terminal.
func (c *Counter) Fail() (time.Duration, bool) {
	if c.Exhausted() {
		return 0, false
	}
	c.attempt++
	return c.policy.NextDelay(c.attempt), true
}

// Succeed resets the chain. Only the owning path's success signal calls
// this, never unrelated events.
func (c *Counter) Succeed() {
	c.attempt = 0
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPolicy_NextDelayExponential(t *testing.T) {
	p := Policy{BaseDelay: time.Second, MaxDelay: 10 * time.Second, MaxAttempts: 10}

	assert.Equal(t, time.Second, p.NextDelay(1))
	assert.Equal(t, 2*time.Second, p.NextDelay(2))
	assert.Equal(t, 4*time.Second, p.NextDelay(3))
	assert.Equal(t, 8*time.Second, p.NextDelay(4))
	// Clamped to the ceiling from attempt 5 on.
	assert.Equal(t, 10*time.Second, p.NextDelay(5))
	assert.Equal(t, 10*time.Second, p.NextDelay(12))
	// Attempt numbering starts at 1.
	assert.Equal(t, time.Second, p.NextDelay(0))
}

func TestCounter_BoundAndReset(t *testing.T) {
	c := NewCounter(Policy{BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second, MaxAttempts: 2})

	d, ok := c.Fail()
	assert.True(t, ok)
	assert.Equal(t, 100*time.Millisecond, d)
	assert.Equal(t, 1, c.Attempt())

	d, ok = c.Fail()
	assert.True(t, ok)
	assert.Equal(t, 200*time.Millisecond, d)
	assert.True(t, c.Exhausted())

	// Third failure is terminal; the counter never exceeds the bound.
	_, ok = c.Fail()
	assert.False(t, ok)
	assert.Equal(t, 2, c.Attempt())

	// Reset happens only on the success signal.
	c.Succeed()
	assert.Zero(t, c.Attempt())
	_, ok = c.Fail()
	assert.True(t, ok)
}

func TestTaskRunner_StaleGenerationNeverFires(t *testing.T) {
	clock := &manualClock{}
	r := NewTaskRunner(clock)

	fired := 0
	gen := r.Generation()
	r.Schedule(gen, time.Second, func() { fired++ })

	// A newer load supersedes the scheduled retry.
	r.Advance()
	clock.fireAll()
	assert.Zero(t, fired)

	// Scheduling against a stale generation is a no-op.
	r.Schedule(gen, time.Second, func() { fired++ })
	clock.fireAll()
	assert.Zero(t, fired)

	// Current generation fires.
	r.Schedule(r.Generation(), time.Second, func() { fired++ })
	clock.fireAll()
	assert.Equal(t, 1, fired)
}

func TestTaskRunner_StopIsIdempotent(t *testing.T) {
	r := NewTaskRunner(nil)
	r.Stop()
	r.Stop()
}

// manualClock keeps callbacks until fireAll, modelling a timer that already
// popped before cancellation.
type manualClock struct {
	fns []func()
}

func (m *manualClock) Now() time.Time { return time.Time{} }

func (m *manualClock) AfterFunc(_ time.Duration, fn func()) Timer {
	m.fns = append(m.fns, fn)
	return noopTimer{}
}

func (m *manualClock) fireAll() {
	fns := m.fns
	m.fns = nil
	for _, fn := range fns {
		fn()
	}
}

type noopTimer struct{}

func (noopTimer) Stop() bool { return false }

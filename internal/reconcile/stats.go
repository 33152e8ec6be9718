// SPDX-License-Identifier: MIT
package reconcile

import (
	"sync"
	"time"

	"github.com/shuliangfu/video-player/internal/metrics"
	"github.com/shuliangfu/video-player/internal/resilience"
)

// Stats accumulates playback statistics derived from the raw event feed.
// Counters increase monotonically between resets; the consumer only ever
// reads snapshots.
type Stats struct {
	mu    sync.Mutex
	clock resilience.Clock

	playDuration      time.Duration
	playingSince      time.Time
	bufferingDuration time.Duration
	bufferingSince    time.Time
	bufferingEvents   int
	errors            int
}

// StatsSnapshot is a point-in-time copy handed to consumers.
type StatsSnapshot struct {
	PlayDuration      time.Duration `json:"playDuration"`
	BufferingDuration time.Duration `json:"bufferingDuration"`
	BufferingEvents   int           `json:"bufferingEvents"`
	Errors            int           `json:"errors"`
}

func newStats(clock resilience.Clock) *Stats {
	return &Stats{clock: clock}
}

func (s *Stats) playStarted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playingSince.IsZero() {
		s.playingSince = s.clock.Now()
	}
}

func (s *Stats) playStopped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playingSince.IsZero() {
		s.playDuration += s.clock.Now().Sub(s.playingSince)
		s.playingSince = time.Time{}
	}
}

func (s *Stats) bufferingStarted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bufferingEvents++
	if s.bufferingSince.IsZero() {
		s.bufferingSince = s.clock.Now()
	}
}

func (s *Stats) bufferingStopped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.bufferingSince.IsZero() {
		bracket := s.clock.Now().Sub(s.bufferingSince)
		s.bufferingDuration += bracket
		s.bufferingSince = time.Time{}
		metrics.AddBufferingSeconds(bracket.Seconds())
	}
}

func (s *Stats) errorSeen() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors++
}

// Snapshot returns the current totals, including any open play or
// buffering bracket.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := StatsSnapshot{
		PlayDuration:      s.playDuration,
		BufferingDuration: s.bufferingDuration,
		BufferingEvents:   s.bufferingEvents,
		Errors:            s.errors,
	}
	now := s.clock.Now()
	if !s.playingSince.IsZero() {
		snap.PlayDuration += now.Sub(s.playingSince)
	}
	if !s.bufferingSince.IsZero() {
		snap.BufferingDuration += now.Sub(s.bufferingSince)
	}
	return snap
}

// Reset zeroes every counter and closes open brackets.
func (s *Stats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playDuration = 0
	s.playingSince = time.Time{}
	s.bufferingDuration = 0
	s.bufferingSince = time.Time{}
	s.bufferingEvents = 0
	s.errors = 0
}

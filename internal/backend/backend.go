// SPDX-License-Identifier: MIT

// Package backend defines the protocol backend contract and its four
// implementations (progressive, HLS, DASH, FLV). A backend adapts one
// delivery mechanism to a common capability set; the orchestrator holds at
// most one live backend at a time and talks to it only through this
// contract.
package backend

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shuliangfu/video-player/internal/media"
)

// Status is the lifecycle state of one backend instance.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusReady     Status = "ready"
	StatusPlaying   Status = "playing"
	StatusPaused    Status = "paused"
	StatusEnded     Status = "ended"
	StatusError     Status = "error"
	StatusDestroyed Status = "destroyed"
)

// String implements fmt.Stringer.
func (s Status) String() string { return string(s) }

// IsValid checks whether the status is a defined value.
func (s Status) IsValid() bool {
	switch s {
	case StatusIdle, StatusLoading, StatusReady, StatusPlaying,
		StatusPaused, StatusEnded, StatusError, StatusDestroyed:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool { return s == StatusDestroyed }

// CanTransition reports whether moving from s to next is legal. Error is
// reachable from any state and Destroyed is terminal from any state.
func (s Status) CanTransition(next Status) bool {
	if s == StatusDestroyed {
		return false
	}
	if next == StatusDestroyed || next == StatusError {
		return true
	}
	switch s {
	case StatusIdle:
		return next == StatusLoading
	case StatusLoading:
		return next == StatusReady
	case StatusReady:
		return next == StatusPlaying || next == StatusPaused
	case StatusPlaying:
		return next == StatusPaused || next == StatusReady || next == StatusEnded
	case StatusPaused:
		return next == StatusPlaying || next == StatusReady || next == StatusEnded
	case StatusError:
		return next == StatusLoading
	default:
		return false
	}
}

// MarshalJSON implements json.Marshaler.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// ConnectionStatus models connection-oriented delivery. Only backends with
// a connection concept (FLV, RTMP-derived) report it.
type ConnectionStatus string

const (
	ConnConnected    ConnectionStatus = "connected"
	ConnConnecting   ConnectionStatus = "connecting"
	ConnDisconnected ConnectionStatus = "disconnected"
	ConnError        ConnectionStatus = "error"
)

// Volume and playback-rate clamp bounds, applied whether or not a backend
// is attached.
const (
	MinVolume = 0.0
	MaxVolume = 1.0
	MinRate   = 0.25
	MaxRate   = 4.0
)

// ClampVolume clamps v to [0,1].
func ClampVolume(v float64) float64 {
	if v < MinVolume {
		return MinVolume
	}
	if v > MaxVolume {
		return MaxVolume
	}
	return v
}

// ClampRate clamps r to [0.25,4].
func ClampRate(r float64) float64 {
	if r < MinRate {
		return MinRate
	}
	if r > MaxRate {
		return MaxRate
	}
	return r
}

// QualityLevel describes one selectable quality variant.
type QualityLevel struct {
	Bitrate int    `json:"bitrate"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Name    string `json:"name"`
}

// Backend is the abstract capability set every protocol backend implements.
type Backend interface {
	// Load points the backend at a locator and begins fetching.
	Load(locator string) error

	// Play requests playback; resolution is asynchronous via ctx.
	Play(ctx context.Context) error

	Pause()
	Seek(seconds float64)
	SetVolume(v float64)
	SetPlaybackRate(r float64)

	// Destroy releases all native resources and listeners. Idempotent and
	// callable from every state.
	Destroy()

	CurrentTime() float64
	Duration() float64
	Volume() float64
	PlaybackRate() float64
	BufferedFraction() float64
	Status() Status

	// On registers a handler for one event type; Off detaches exactly that
	// registration.
	On(t media.EventType, fn func(media.Event)) Subscription
	Off(sub Subscription)
}

// QualityReporter is the optional capability for backends exposing
// selectable quality levels. The orchestrator queries for this interface
// instead of casting to concrete types.
type QualityReporter interface {
	QualityLevels() []QualityLevel
	CurrentQualityLevel() int
	// SetQualityLevel applies an index; -1 restores automatic selection.
	// Concrete indices disable the backend's auto-switch policy first.
	SetQualityLevel(index int)
}

// ConnectionReporter is the optional capability for backends with
// connection-oriented semantics.
type ConnectionReporter interface {
	ConnectionStatus() ConnectionStatus
	// Reconnect resets the reconnect attempt counter and schedules a fresh
	// connection attempt.
	Reconnect()
}

// ErrNotInitialized reports a control call that requires a loaded backend.
var ErrNotInitialized = fmt.Errorf("backend: not initialized")

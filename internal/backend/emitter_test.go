package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shuliangfu/video-player/internal/media"
)

func TestEmitter_OrderPreserved(t *testing.T) {
	e := NewEmitter()
	var order []int
	e.On(media.EventPlay, func(media.Event) { order = append(order, 1) })
	e.On(media.EventPlay, func(media.Event) { order = append(order, 2) })
	e.On(media.EventPlay, func(media.Event) { order = append(order, 3) })

	e.Emit(media.Event{Type: media.EventPlay})
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestEmitter_OffDetachesExactRegistration(t *testing.T) {
	e := NewEmitter()
	var hits []string
	subA := e.On(media.EventPause, func(media.Event) { hits = append(hits, "a") })
	e.On(media.EventPause, func(media.Event) { hits = append(hits, "b") })

	e.Off(subA)
	e.Emit(media.Event{Type: media.EventPause})
	assert.Equal(t, []string{"b"}, hits)

	// Detaching twice is harmless.
	e.Off(subA)
	assert.Equal(t, 1, e.Count(media.EventPause))
}

func TestEmitter_ClearAndTotal(t *testing.T) {
	e := NewEmitter()
	e.On(media.EventPlay, func(media.Event) {})
	e.On(media.EventPause, func(media.Event) {})
	e.On(media.EventPause, func(media.Event) {})
	assert.Equal(t, 3, e.Total())

	e.Clear()
	assert.Zero(t, e.Total())
	e.Emit(media.Event{Type: media.EventPlay})
}

func TestStatus_Transitions(t *testing.T) {
	assert.True(t, StatusIdle.CanTransition(StatusLoading))
	assert.True(t, StatusLoading.CanTransition(StatusReady))
	assert.True(t, StatusReady.CanTransition(StatusPlaying))
	assert.True(t, StatusPlaying.CanTransition(StatusPaused))
	assert.True(t, StatusPaused.CanTransition(StatusPlaying))
	assert.True(t, StatusPlaying.CanTransition(StatusEnded))

	// Error is reachable from anywhere, Destroyed is terminal.
	for _, s := range []Status{StatusIdle, StatusLoading, StatusReady, StatusPlaying, StatusPaused, StatusEnded, StatusError} {
		assert.True(t, s.CanTransition(StatusError), s)
		assert.True(t, s.CanTransition(StatusDestroyed), s)
	}
	assert.False(t, StatusDestroyed.CanTransition(StatusLoading))
	assert.False(t, StatusDestroyed.CanTransition(StatusError))

	assert.False(t, StatusIdle.CanTransition(StatusPlaying))
	assert.False(t, StatusEnded.CanTransition(StatusPlaying))
}

func TestClamps(t *testing.T) {
	assert.Equal(t, 0.0, ClampVolume(-1))
	assert.Equal(t, 1.0, ClampVolume(2))
	assert.Equal(t, 0.5, ClampVolume(0.5))
	assert.Equal(t, 0.25, ClampRate(0))
	assert.Equal(t, 4.0, ClampRate(99))
	assert.Equal(t, 1.5, ClampRate(1.5))
}

package reconcile

import (
	"errors"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuliangfu/video-player/internal/backend"
	"github.com/shuliangfu/video-player/internal/media"
	"github.com/shuliangfu/video-player/internal/media/mediatest"
	"github.com/shuliangfu/video-player/internal/metrics"
	"github.com/shuliangfu/video-player/internal/testutil"
)

func newTestReconciler(t *testing.T, hooks Hooks) (*Reconciler, *backend.Progressive, *mediatest.FakeSurface, *testutil.FakeClock) {
	t.Helper()
	clock := testutil.NewFakeClock()
	surface := mediatest.New()
	b := backend.NewProgressive(surface, zerolog.Nop())
	r := New(clock, zerolog.Nop(), hooks)
	r.Attach(b)
	return r, b, surface, clock
}

func TestReconciler_TimeUpdateCoalescing(t *testing.T) {
	r, _, surface, clock := newTestReconciler(t, Hooks{})

	var got []float64
	r.Out().On(media.EventTimeUpdate, func(ev media.Event) { got = append(got, ev.Time) })

	// Five raw updates inside one 250ms window merge into exactly one
	// consumer emission carrying the last value.
	for i := 1; i <= 5; i++ {
		surface.Emit(media.Event{Type: media.EventTimeUpdate, Time: float64(i)})
	}
	assert.Empty(t, got)

	clock.Advance(250 * time.Millisecond)
	assert.Equal(t, []float64{5}, got)

	// The next window delivers again.
	surface.Emit(media.Event{Type: media.EventTimeUpdate, Time: 9})
	clock.Advance(250 * time.Millisecond)
	assert.Equal(t, []float64{5, 9}, got)
}

func TestReconciler_VolumeDebounceEmitsLastAfterQuiet(t *testing.T) {
	r, _, surface, clock := newTestReconciler(t, Hooks{})

	var got []float64
	r.Out().On(media.EventVolumeChange, func(ev media.Event) { got = append(got, ev.Volume) })

	surface.Emit(media.Event{Type: media.EventVolumeChange, Volume: 0.2})
	clock.Advance(200 * time.Millisecond)
	// Still inside the quiet window: the next change restarts it.
	surface.Emit(media.Event{Type: media.EventVolumeChange, Volume: 0.8})
	clock.Advance(200 * time.Millisecond)
	assert.Empty(t, got)

	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, []float64{0.8}, got)
}

func TestReconciler_SeekingThrottle(t *testing.T) {
	r, _, surface, clock := newTestReconciler(t, Hooks{})

	count := 0
	r.Out().On(media.EventSeeking, func(media.Event) { count++ })

	for i := 0; i < 10; i++ {
		surface.Emit(media.Event{Type: media.EventSeeking, Time: float64(i)})
	}
	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, 1, count)
}

func TestReconciler_DetachDrainsPendingUpdates(t *testing.T) {
	r, _, surface, _ := newTestReconciler(t, Hooks{})

	var got []float64
	r.Out().On(media.EventTimeUpdate, func(ev media.Event) { got = append(got, ev.Time) })

	surface.Emit(media.Event{Type: media.EventTimeUpdate, Time: 42})
	r.Detach()
	// The pending merged update is delivered, not dropped.
	assert.Equal(t, []float64{42}, got)
}

func TestReconciler_SwapDetachesExactHandlerSet(t *testing.T) {
	clock := testutil.NewFakeClock()
	surfaceA := mediatest.New()
	surfaceB := mediatest.New()
	a := backend.NewProgressive(surfaceA, zerolog.Nop())
	b := backend.NewProgressive(surfaceB, zerolog.Nop())

	r := New(clock, zerolog.Nop(), Hooks{})
	r.Attach(a)
	attachedPerBackend := r.AttachedSubscriptions()

	// Repeated swaps never accumulate handlers.
	for i := 0; i < 5; i++ {
		r.Attach(b)
		r.Attach(a)
	}
	assert.Equal(t, attachedPerBackend, r.AttachedSubscriptions())

	// Events from the detached backend no longer reach the consumer.
	seen := 0
	r.Out().On(media.EventPlay, func(media.Event) { seen++ })
	surfaceB.Emit(media.Event{Type: media.EventPlay})
	assert.Zero(t, seen)
	surfaceA.Emit(media.Event{Type: media.EventPlay})
	assert.Equal(t, 1, seen)
}

func TestReconciler_StatsSideEffects(t *testing.T) {
	r, _, surface, clock := newTestReconciler(t, Hooks{})

	surface.Emit(media.Event{Type: media.EventPlay})
	clock.Advance(10 * time.Second)
	surface.Emit(media.Event{Type: media.EventPause})

	surface.Emit(media.Event{Type: media.EventWaiting})
	clock.Advance(2 * time.Second)
	surface.Emit(media.Event{Type: media.EventCanPlay})
	surface.Emit(media.Event{Type: media.EventWaiting})
	clock.Advance(time.Second)
	surface.Emit(media.Event{Type: media.EventCanPlay})

	surface.Emit(media.Event{Type: media.EventError, Err: errors.New("boom")})

	snap := r.Stats().Snapshot()
	assert.Equal(t, 10*time.Second, snap.PlayDuration)
	assert.Equal(t, 3*time.Second, snap.BufferingDuration)
	assert.Equal(t, 2, snap.BufferingEvents)
	assert.Equal(t, 1, snap.Errors)

	r.Stats().Reset()
	assert.Zero(t, r.Stats().Snapshot().PlayDuration)
}

func TestReconciler_AbsorbedEventsCounted(t *testing.T) {
	absorbed := metrics.CoalescedEventsTotal.WithLabelValues(string(media.EventTimeUpdate))
	before := promtest.ToFloat64(absorbed)

	_, _, surface, clock := newTestReconciler(t, Hooks{})
	for i := 1; i <= 5; i++ {
		surface.Emit(media.Event{Type: media.EventTimeUpdate, Time: float64(i)})
	}
	clock.Advance(250 * time.Millisecond)

	// Five raw updates in one window: one delivered, four absorbed.
	assert.Equal(t, before+4, promtest.ToFloat64(absorbed))
}

func TestReconciler_BufferingSecondsExported(t *testing.T) {
	before := promtest.ToFloat64(metrics.BufferingSecondsTotal)

	_, _, surface, clock := newTestReconciler(t, Hooks{})
	surface.Emit(media.Event{Type: media.EventWaiting})
	clock.Advance(2 * time.Second)
	surface.Emit(media.Event{Type: media.EventCanPlay})

	assert.Equal(t, before+2, promtest.ToFloat64(metrics.BufferingSecondsTotal))
}

func TestReconciler_Hooks(t *testing.T) {
	endeds, metas := 0, 0
	_, _, surface, _ := newTestReconciler(t, Hooks{
		OnEnded:         func() { endeds++ },
		OnMetadataReady: func() { metas++ },
	})

	surface.Emit(media.Event{Type: media.EventEnded})
	surface.Emit(media.Event{Type: media.EventLoadedMetadata})
	assert.Equal(t, 1, endeds)
	assert.Equal(t, 1, metas)
}

func TestReconciler_OrderingPreservedForUnshapedEvents(t *testing.T) {
	r, _, surface, _ := newTestReconciler(t, Hooks{})

	var order []media.EventType
	for _, et := range []media.EventType{media.EventLoadStart, media.EventCanPlay, media.EventPlay, media.EventPause} {
		et := et
		r.Out().On(et, func(ev media.Event) { order = append(order, ev.Type) })
	}

	surface.Emit(media.Event{Type: media.EventLoadStart})
	surface.Emit(media.Event{Type: media.EventCanPlay})
	surface.Emit(media.Event{Type: media.EventPlay})
	surface.Emit(media.Event{Type: media.EventPause})

	require.Equal(t, []media.EventType{
		media.EventLoadStart, media.EventCanPlay, media.EventPlay, media.EventPause,
	}, order)
}

package backend

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuliangfu/video-player/internal/media"
	"github.com/shuliangfu/video-player/internal/media/mediatest"
)

func newHLSWithFake(t *testing.T) (*HLS, *fakeHLSEngine, *mediatest.FakeSurface) {
	t.Helper()
	surface := mediatest.New()
	engine := &fakeHLSEngine{}
	b, err := NewHLS(surface, func(media.Surface) (HLSEngine, error) { return engine, nil }, zerolog.Nop())
	require.NoError(t, err)
	return b, engine, surface
}

func TestHLS_FatalNetworkRecoversOnce(t *testing.T) {
	b, engine, _ := newHLSWithFake(t)
	require.NoError(t, b.Load("https://cdn/a.m3u8"))

	var errorsSeen []error
	b.On(media.EventError, func(ev media.Event) { errorsSeen = append(errorsSeen, ev.Err) })

	// First fatal network error triggers the internal manifest reload and
	// stays invisible to the consumer.
	engine.emit(EngineEvent{Kind: EngineFatalNetwork, Err: errors.New("manifest 503")})
	assert.Equal(t, 1, engine.netRecovers)
	assert.Empty(t, errorsSeen)

	// Second one escalates.
	engine.emit(EngineEvent{Kind: EngineFatalNetwork, Err: errors.New("manifest 503")})
	assert.Equal(t, 1, engine.netRecovers)
	require.Len(t, errorsSeen, 1)
	assert.Equal(t, StatusError, b.Status())
}

func TestHLS_FatalMediaRecoversOnce(t *testing.T) {
	b, engine, _ := newHLSWithFake(t)
	require.NoError(t, b.Load("https://cdn/a.m3u8"))

	errCount := 0
	b.On(media.EventError, func(media.Event) { errCount++ })

	engine.emit(EngineEvent{Kind: EngineFatalMedia})
	assert.Equal(t, 1, engine.mediaRecovers)
	assert.Zero(t, errCount)

	engine.emit(EngineEvent{Kind: EngineFatalMedia})
	assert.Equal(t, 1, engine.mediaRecovers)
	assert.Equal(t, 1, errCount)
}

func TestHLS_RecoveryCountersResetPerLoad(t *testing.T) {
	b, engine, _ := newHLSWithFake(t)
	require.NoError(t, b.Load("https://cdn/a.m3u8"))

	engine.emit(EngineEvent{Kind: EngineFatalNetwork})
	assert.Equal(t, 1, engine.netRecovers)

	// A fresh load re-arms the one-shot recovery.
	require.NoError(t, b.Load("https://cdn/b.m3u8"))
	engine.emit(EngineEvent{Kind: EngineFatalNetwork})
	assert.Equal(t, 2, engine.netRecovers)
}

func TestHLS_FatalOtherDestroysSessionImmediately(t *testing.T) {
	b, engine, _ := newHLSWithFake(t)
	require.NoError(t, b.Load("https://cdn/a.m3u8"))

	errCount := 0
	b.On(media.EventError, func(media.Event) { errCount++ })

	engine.emit(EngineEvent{Kind: EngineFatalOther, Err: errors.New("key system")})
	assert.True(t, engine.destroyed)
	assert.Zero(t, engine.netRecovers)
	assert.Equal(t, 1, errCount)
}

func TestHLS_QualityCapability(t *testing.T) {
	b, engine, _ := newHLSWithFake(t)
	engine.levels = []QualityLevel{{Bitrate: 800_000}, {Bitrate: 2_400_000}}

	var qr QualityReporter = b
	assert.Len(t, qr.QualityLevels(), 2)
	qr.SetQualityLevel(1)
	assert.Equal(t, []int{1}, engine.setLevelCalls)
	assert.Equal(t, 1, qr.CurrentQualityLevel())
}

func TestHLS_EngineLevelSwitchRelayed(t *testing.T) {
	b, engine, _ := newHLSWithFake(t)
	require.NoError(t, b.Load("https://cdn/a.m3u8"))

	var levels []int
	b.On(media.EventQualityChange, func(ev media.Event) { levels = append(levels, ev.Level) })

	// ABR switches originate in the engine; the consumer sees them as
	// regular quality-change events.
	engine.emit(EngineEvent{Kind: EngineLevelSwitched, Level: 2})
	assert.Equal(t, []int{2}, levels)
}

func TestDASH_EngineLevelSwitchRelayed(t *testing.T) {
	surface := mediatest.New()
	engine := &fakeDASHEngine{}
	b, err := NewDASH(surface,
		func(media.Surface) (DASHEngine, error) { return engine, nil },
		DASHOptions{}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, b.Load("https://cdn/a.mpd"))

	var levels []int
	b.On(media.EventQualityChange, func(ev media.Event) { levels = append(levels, ev.Level) })

	engine.emit(EngineEvent{Kind: EngineLevelSwitched, Level: 1})
	assert.Equal(t, []int{1}, levels)
}

func TestHLS_DestroyIdempotent(t *testing.T) {
	b, engine, surface := newHLSWithFake(t)
	require.NoError(t, b.Load("https://cdn/a.m3u8"))

	b.Destroy()
	b.Destroy()
	assert.True(t, engine.destroyed)
	assert.Equal(t, StatusDestroyed, b.Status())
	assert.Zero(t, surface.SubscriberCount())
	assert.ErrorIs(t, b.Load("https://cdn/b.m3u8"), ErrNotInitialized)
}

func TestDASH_InitializeAppliesSessionConfig(t *testing.T) {
	surface := mediatest.New()
	engine := &fakeDASHEngine{}
	b, err := NewDASH(surface,
		func(media.Surface) (DASHEngine, error) { return engine, nil },
		DASHOptions{StreamingDelaySeconds: 4, AutoBitrateSwitch: true},
		zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, b.Load("https://cdn/a.mpd"))
	require.Len(t, engine.inits, 1)
	assert.Equal(t, 4.0, engine.inits[0].StreamingDelaySeconds)
	assert.True(t, engine.inits[0].AutoBitrateSwitch)

	b.SetLiveDelay(2.5)
	assert.Equal(t, 2.5, engine.liveDelay)

	b.Destroy()
	assert.True(t, engine.destroyed)
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package player is the playback orchestrator. It owns the single live
// backend, the playlist cursor and the whole-source retry chain, and it
// sequences classification, backend construction, event reconciliation,
// preload scheduling and persistence in response to load requests, backend
// events and control calls.
package player

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/shuliangfu/video-player/internal/backend"
	"github.com/shuliangfu/video-player/internal/errclass"
	"github.com/shuliangfu/video-player/internal/format"
	"github.com/shuliangfu/video-player/internal/history"
	"github.com/shuliangfu/video-player/internal/media"
	"github.com/shuliangfu/video-player/internal/metrics"
	"github.com/shuliangfu/video-player/internal/netstatus"
	"github.com/shuliangfu/video-player/internal/playlist"
	"github.com/shuliangfu/video-player/internal/reconcile"
	"github.com/shuliangfu/video-player/internal/resilience"
	"github.com/shuliangfu/video-player/internal/sched"
)

const (
	savePositionInterval = 10 * time.Second
	watchedFraction      = 0.9
	maxSamples           = 120
	maxNetHistory        = 32
	performanceEvery     = 10
)

// Player is the orchestration core. All methods are safe for concurrent
// use; the player serializes backend swaps internally.
type Player struct {
	// swapMu serializes backend swaps and teardown end to end. It is never
	// taken from an event handler, so a swap may safely drain coalesced
	// events whose handlers take mu.
	swapMu sync.Mutex
	mu     sync.Mutex
	log    zerolog.Logger

	clock     resilience.Clock
	sessionID string

	baseSurface media.Surface
	surface     media.Surface // active surface, swapped in from preload
	factoryOpts backend.FactoryOptions

	rec    *reconcile.Reconciler
	out    *backend.Emitter
	runner *resilience.TaskRunner

	policy resilience.Policy
	retry  *resilience.Counter

	handle  backend.Backend
	tag     format.Tag
	locator string

	fallbacks  []string
	chainIndex int

	list      *playlist.List
	preloader *sched.Preloader

	store       Store
	volumePref  float64
	ratePref    float64
	qualityPref int

	net        netstatus.Source
	unsubNet   func()
	netSnap    netstatus.Snapshot
	netChanges int
	netHistory []netstatus.Snapshot

	samples     []PerformanceSample
	sampleCount int
	progressLog rate.Sometimes

	autoplay        bool
	autoplayPending bool
	qualityPending  bool
	loadStartedAt   time.Time
	destroyed       bool
}

// New builds a Player from opts. A missing surface is a fatal
// configuration error, raised synchronously.
func New(opts Options) (*Player, error) {
	if opts.Surface == nil {
		return nil, ErrNoSurface
	}
	clock := opts.Clock
	if clock == nil {
		clock = resilience.RealClock()
	}
	policy := opts.Retry
	if policy == (resilience.Policy{}) {
		policy = resilience.DefaultReloadPolicy()
	}

	p := &Player{
		log:         opts.Logger,
		clock:       clock,
		sessionID:   uuid.NewString(),
		baseSurface: opts.Surface,
		surface:     opts.Surface,
		factoryOpts: opts.Backends,
		runner:      resilience.NewTaskRunner(clock),
		policy:      policy,
		retry:       resilience.NewCounter(policy),
		fallbacks:   opts.FallbackSources,
		list:        playlist.New(),
		store:       opts.Store,
		volumePref:  -1,
		ratePref:    -1,
		qualityPref: -1,
		net:         opts.Network,
		autoplay:    opts.Autoplay,
		progressLog: rate.Sometimes{First: 1, Interval: 30 * time.Second},
	}
	p.factoryOpts.Logger = opts.Logger

	p.rec = reconcile.New(clock, opts.Logger, reconcile.Hooks{
		OnEnded:         p.onEnded,
		OnMetadataReady: p.onMetadataReady,
		OnError:         p.onBackendError,
	})
	p.out = p.rec.Out()
	p.out.On(media.EventCanPlay, p.onReady)
	p.out.On(media.EventTimeUpdate, p.onTimeUpdate)

	p.list.Replace(opts.Playlist)
	p.list.SetLoopMode(opts.LoopMode)

	p.preloader = sched.NewPreloader(opts.SurfaceFactory, opts.PreloadEnabled, opts.Logger)
	p.preloader.OnComplete(func(locator string) {
		p.out.Emit(media.Event{Type: EventPreloadComplete})
		p.log.Debug().Str("locator", locator).Msg("preload complete")
	})

	if p.net != nil {
		p.netSnap = p.net.Snapshot()
		p.preloader.SetNetwork(p.netSnap)
		p.unsubNet = p.net.Subscribe(p.onNetworkChange)
	}

	if p.store != nil {
		if st, err := p.store.GetSettings(context.Background()); err == nil {
			p.volumePref = st.Volume
			p.ratePref = st.Rate
			p.qualityPref = st.QualityIndex
		} else {
			p.log.Warn().Err(err).Msg("failed to restore settings")
		}
	}

	p.log.Info().
		Str("session_id", p.sessionID).
		Int("playlist_items", len(opts.Playlist)).
		Msg("player created")
	return p, nil
}

// On registers a consumer handler; registrations survive backend swaps.
func (p *Player) On(t media.EventType, fn func(media.Event)) backend.Subscription {
	return p.out.On(t, fn)
}

// Off detaches exactly the registration identified by sub.
func (p *Player) Off(sub backend.Subscription) { p.out.Off(sub) }

// LoadSource starts a fresh load chain for locator, superseding any
// pending retry or preload of the previous chain.
func (p *Player) LoadSource(locator string) {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return
	}
	p.retry = resilience.NewCounter(p.policy)
	p.chainIndex = 0
	p.mu.Unlock()

	p.startLoad(locator)
}

// LoadCurrent loads the playlist's current item, if any.
func (p *Player) LoadCurrent() bool {
	item, ok := p.list.Current()
	if !ok {
		return false
	}
	p.LoadSource(item.Locator)
	return true
}

// startLoad performs the backend swap for locator: cancel scheduled work,
// detach the exact listener set, destroy the old backend, construct and
// attach the new one.
func (p *Player) startLoad(locator string) {
	p.swapMu.Lock()
	defer p.swapMu.Unlock()

	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return
	}
	gen := p.runner.Advance()
	old := p.handle
	p.handle = nil
	p.mu.Unlock()

	// Detach before destroy, outside mu: draining pending coalesced events
	// re-enters the consumer feed.
	p.rec.Detach()
	if old != nil {
		old.Destroy()
	}

	p.mu.Lock()
	if s, ok := p.preloader.Take(locator); ok {
		p.surface = s
		metrics.RecordLoadAttempt(format.Classify(locator).String(), "preloaded")
	} else {
		p.surface = p.baseSurface
	}

	res, err := backend.Create(p.surface, locator, p.factoryOpts)
	if err != nil {
		p.locator = locator
		p.tag = format.Classify(locator)
		p.mu.Unlock()
		metrics.RecordLoadAttempt(format.Classify(locator).String(), "error")
		p.log.Error().Err(err).Str("locator", locator).Msg("backend construction failed")
		p.failCurrent(err)
		return
	}

	p.handle = res.Backend
	p.tag = res.Tag
	p.locator = locator
	p.loadStartedAt = p.clock.Now()
	p.autoplayPending = p.autoplay
	p.qualityPending = true
	p.rec.Attach(res.Backend)
	metrics.RecordBackendSwap(res.Tag.String())

	if p.volumePref >= 0 {
		res.Backend.SetVolume(p.volumePref)
	}
	if p.ratePref > 0 {
		res.Backend.SetPlaybackRate(p.ratePref)
	}

	loadErr := res.Backend.Load(res.Locator)

	p.armPreloadLocked()
	p.scheduleSaveLoop(gen)
	p.mu.Unlock()

	p.log.Info().
		Str("locator", locator).
		Str("tag", res.Tag.String()).
		Msg("source loading")

	if loadErr != nil {
		metrics.RecordLoadAttempt(res.Tag.String(), "error")
		p.failCurrent(loadErr)
	}
}

// failCurrent advances the whole-source retry chain after a load-level
// failure. Non-terminal failures retry silently; only the terminal one
// surfaces a consumer-visible error.
func (p *Player) failCurrent(cause error) {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return
	}
	gen := p.runner.Generation()

	var next string
	var delay time.Duration
	terminal := false

	if len(p.fallbacks) > 0 {
		if p.chainIndex < len(p.fallbacks) {
			d, ok := p.retry.Fail()
			if ok {
				next = p.fallbacks[p.chainIndex]
				p.chainIndex++
				delay = d
				metrics.FallbackSourcesTotal.Inc()
			} else {
				terminal = true
			}
		} else {
			terminal = true
		}
	} else {
		d, ok := p.retry.Fail()
		if ok {
			next = p.locator
			delay = d
		} else {
			terminal = true
		}
	}

	attempts := p.retry.Attempt()
	tag := p.tag
	locator := p.locator
	p.mu.Unlock()

	if terminal {
		kind := errclass.Classify(errString(cause))
		err := fmt.Errorf("player: load failed after %d attempts: %w (%s)",
			attempts, cause, errclass.Suggestion(kind))
		p.log.Error().
			Err(cause).
			Str("locator", locator).
			Str("tag", tag.String()).
			Str("kind", string(kind)).
			Int("attempts", attempts).
			Msg("load terminally failed")
		metrics.RecordLoadAttempt(tag.String(), "terminal")
		p.out.Emit(media.Event{Type: media.EventError, Err: err})
		return
	}

	p.log.Warn().
		Err(cause).
		Str("next", next).
		Dur("delay", delay).
		Int("attempt", attempts).
		Msg("load failed, retrying")
	p.runner.Schedule(gen, delay, func() { p.startLoad(next) })
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// onBackendError is the reconciler's error hook: every raw backend error
// routes into the retry chain instead of the consumer feed.
func (p *Player) onBackendError(ev media.Event) {
	err := ev.Err
	if err == nil {
		err = fmt.Errorf("player: backend error")
	}
	p.failCurrent(err)
}

// onReady marks the current chain successful.
func (p *Player) onReady(media.Event) {
	p.mu.Lock()
	p.retry.Succeed()
	tag := p.tag
	started := !p.loadStartedAt.IsZero()
	elapsed := p.clock.Now().Sub(p.loadStartedAt)
	autoplay := p.autoplayPending
	p.autoplayPending = false
	applyQuality := p.qualityPending
	p.qualityPending = false
	pref := p.qualityPref
	snap := p.netSnap
	h := p.handle
	p.mu.Unlock()

	metrics.RecordLoadAttempt(tag.String(), "ok")
	if started {
		metrics.ObserveLoadDuration(tag.String(), elapsed.Seconds())
	}
	if applyQuality && h != nil {
		p.applyQualityPreference(h, pref, snap)
	}
	if autoplay && h != nil {
		go func() {
			if err := h.Play(context.Background()); err != nil {
				p.log.Warn().Err(err).Msg("autoplay rejected")
			}
		}()
	}
}

// applyQualityPreference resolves the startup level for an adaptive
// backend once per load. A concrete persisted preference wins while it is
// in range; -1 leaves the engine's automatic selection untouched.
func (p *Player) applyQualityPreference(h backend.Backend, pref int, snap netstatus.Snapshot) {
	if pref < 0 {
		return
	}
	qr, ok := h.(backend.QualityReporter)
	if !ok {
		return
	}
	levels := qr.QualityLevels()
	if len(levels) == 0 {
		return
	}
	chosen := sched.ChooseQuality(pref, len(levels), snap)
	qr.SetQualityLevel(chosen)
	p.log.Info().
		Int("preferred", pref).
		Int("applied", chosen).
		Int("levels", len(levels)).
		Msg("persisted quality preference applied")
	p.out.Emit(media.Event{Type: media.EventQualityChange, Level: chosen})
}

// onTimeUpdate feeds the preload trigger and the performance sample ring.
func (p *Player) onTimeUpdate(ev media.Event) {
	p.mu.Lock()
	h := p.handle
	p.mu.Unlock()
	if h == nil {
		return
	}
	duration := h.Duration()
	buffered := h.BufferedFraction()
	if duration > 0 {
		p.preloader.ObserveProgress(ev.Time / duration)
	}

	p.mu.Lock()
	p.samples = append(p.samples, PerformanceSample{
		At:               p.clock.Now(),
		CurrentTime:      ev.Time,
		BufferedFraction: buffered,
	})
	if len(p.samples) > maxSamples {
		p.samples = p.samples[len(p.samples)-maxSamples:]
	}
	p.sampleCount++
	emitPerf := p.sampleCount%performanceEvery == 0
	p.mu.Unlock()

	if emitPerf {
		p.out.Emit(media.Event{Type: EventPerformanceUpdate, Time: ev.Time})
	}

	p.progressLog.Do(func() {
		p.log.Debug().
			Float64("time", ev.Time).
			Float64("buffered", buffered).
			Msg("playback progress")
	})
}

// onEnded applies the playlist-end policy and clears the watched item's
// saved position.
func (p *Player) onEnded() {
	p.mu.Lock()
	locator := p.locator
	store := p.store
	p.mu.Unlock()

	if store != nil && locator != "" {
		if err := store.ClearPosition(context.Background(), locator); err != nil {
			p.log.Warn().Err(err).Msg("failed to clear watched position")
		}
	}

	adv := p.list.OnEnded()
	if adv.Next < 0 {
		return
	}
	item, ok := p.list.Jump(adv.Next)
	if !ok {
		return
	}
	p.LoadSource(item.Locator)
	p.out.Emit(media.Event{Type: EventItemChange, Level: adv.Next})
}

// onMetadataReady restores the saved position for the new locator.
func (p *Player) onMetadataReady() {
	p.mu.Lock()
	h := p.handle
	locator := p.locator
	store := p.store
	p.mu.Unlock()
	if h == nil || store == nil || locator == "" {
		return
	}

	pos, ok, err := store.GetPosition(context.Background(), locator)
	if err != nil {
		p.log.Warn().Err(err).Msg("failed to read saved position")
		return
	}
	if !ok || pos.Seconds <= 0 {
		return
	}
	h.Seek(pos.Seconds)
	p.out.Emit(media.Event{Type: EventPlaybackRestored, Time: pos.Seconds})
	p.log.Info().
		Str("locator", locator).
		Float64("seconds", pos.Seconds).
		Msg("playback position restored")
}

func (p *Player) onNetworkChange(snap netstatus.Snapshot) {
	p.mu.Lock()
	p.netSnap = snap
	p.netChanges++
	p.netHistory = append(p.netHistory, snap)
	if len(p.netHistory) > maxNetHistory {
		p.netHistory = p.netHistory[len(p.netHistory)-maxNetHistory:]
	}
	p.mu.Unlock()

	p.preloader.SetNetwork(snap)
	p.out.Emit(media.Event{Type: EventNetworkChange, Status: string(snap.Class)})
}

// armPreloadLocked points the preloader at the next playlist item.
func (p *Player) armPreloadLocked() {
	cursor := p.list.Cursor()
	if cursor < 0 {
		p.preloader.Disarm()
		return
	}
	items := p.list.Items()
	next := cursor + 1
	if next >= len(items) {
		if p.list.LoopMode() != playlist.LoopAll || len(items) < 2 {
			p.preloader.Disarm()
			return
		}
		next = 0
	}
	p.preloader.Arm(items[next].Locator)
}

// scheduleSaveLoop re-arms the periodic position save for the current
// load generation. The generation guard cancels it on swap and destroy.
func (p *Player) scheduleSaveLoop(gen uint64) {
	if p.store == nil {
		return
	}
	p.runner.Schedule(gen, savePositionInterval, func() {
		p.savePosition()
		p.mu.Lock()
		stillCurrent := gen == p.runner.Generation() && !p.destroyed
		p.mu.Unlock()
		if stillCurrent {
			p.scheduleSaveLoop(gen)
		}
	})
}

// savePosition persists the current position, or clears it once the item
// counts as fully watched.
func (p *Player) savePosition() {
	p.mu.Lock()
	h := p.handle
	locator := p.locator
	store := p.store
	p.mu.Unlock()
	if h == nil || store == nil || locator == "" {
		return
	}

	seconds := h.CurrentTime()
	duration := h.Duration()
	if duration <= 0 {
		return
	}

	ctx := context.Background()
	var err error
	if seconds/duration >= watchedFraction {
		err = store.ClearPosition(ctx, locator)
	} else {
		err = store.SavePosition(ctx, locator, seconds, duration)
	}
	if err != nil {
		p.log.Warn().Err(err).Str("locator", locator).Msg("failed to persist position")
	}
}

// SetRetryPolicy applies new retry bounds to subsequent load chains. The
// chain in flight keeps its policy.
func (p *Player) SetRetryPolicy(policy resilience.Policy) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.policy = policy
}

// SetPreloadEnabled toggles predictive preload at runtime.
func (p *Player) SetPreloadEnabled(enabled bool) {
	p.preloader.SetEnabled(enabled)
}

// Play requests playback. Without a loaded backend it reports
// non-initialization rather than queuing.
func (p *Player) Play(ctx context.Context) error {
	p.mu.Lock()
	h := p.handle
	p.mu.Unlock()
	if h == nil {
		return backend.ErrNotInitialized
	}
	return h.Play(ctx)
}

// Pause is a no-op without a backend.
func (p *Player) Pause() {
	p.mu.Lock()
	h := p.handle
	p.mu.Unlock()
	if h != nil {
		h.Pause()
	}
}

// Toggle plays when paused and pauses when playing.
func (p *Player) Toggle(ctx context.Context) error {
	p.mu.Lock()
	h := p.handle
	p.mu.Unlock()
	if h == nil {
		return backend.ErrNotInitialized
	}
	if h.Status() == backend.StatusPlaying {
		h.Pause()
		return nil
	}
	return h.Play(ctx)
}

// Stop pauses and rewinds to the start.
func (p *Player) Stop() {
	p.Pause()
	p.Seek(0)
}

// Seek degrades to a direct surface operation without a backend.
func (p *Player) Seek(seconds float64) {
	p.mu.Lock()
	h := p.handle
	s := p.surface
	p.mu.Unlock()
	if h != nil {
		h.Seek(seconds)
		return
	}
	s.SetCurrentTime(seconds)
}

// SetVolume clamps to [0,1], applies with or without a backend, and
// persists the preference.
func (p *Player) SetVolume(v float64) {
	v = backend.ClampVolume(v)
	p.mu.Lock()
	h := p.handle
	s := p.surface
	p.volumePref = v
	store := p.store
	p.mu.Unlock()

	if h != nil {
		h.SetVolume(v)
	} else {
		s.SetVolume(v)
	}
	if store != nil {
		if err := store.SaveSettings(context.Background(), history.Settings{QualityIndex: -1, Volume: v, Rate: -1}); err != nil {
			p.log.Warn().Err(err).Msg("failed to persist volume")
		}
	}
}

// SetPlaybackRate clamps to [0.25,4], applies with or without a backend,
// and persists the preference.
func (p *Player) SetPlaybackRate(r float64) {
	r = backend.ClampRate(r)
	p.mu.Lock()
	h := p.handle
	s := p.surface
	p.ratePref = r
	store := p.store
	p.mu.Unlock()

	if h != nil {
		h.SetPlaybackRate(r)
	} else {
		s.SetPlaybackRate(r)
	}
	if store != nil {
		if err := store.SaveSettings(context.Background(), history.Settings{QualityIndex: -1, Volume: -1, Rate: r}); err != nil {
			p.log.Warn().Err(err).Msg("failed to persist playback rate")
		}
	}
}

// SetQualityLevel applies a quality index on a QualityReporter backend;
// -1 restores automatic selection. The chosen index persists as the
// viewer's preference for subsequent loads.
func (p *Player) SetQualityLevel(index int) error {
	p.mu.Lock()
	h := p.handle
	p.qualityPref = index
	store := p.store
	p.mu.Unlock()

	if h == nil {
		return backend.ErrNotInitialized
	}
	qr, ok := h.(backend.QualityReporter)
	if !ok {
		return ErrUnsupported
	}
	qr.SetQualityLevel(index)

	if store != nil {
		if err := store.SaveSettings(context.Background(), history.Settings{QualityIndex: index, Volume: -1, Rate: -1}); err != nil {
			p.log.Warn().Err(err).Msg("failed to persist quality preference")
		}
	}
	p.out.Emit(media.Event{Type: media.EventQualityChange, Level: index})
	return nil
}

// Reconnect resets the live backend's reconnect counter and schedules a
// fresh attempt. Unsupported on backends without a connection concept.
func (p *Player) Reconnect() error {
	p.mu.Lock()
	h := p.handle
	p.mu.Unlock()
	if h == nil {
		return backend.ErrNotInitialized
	}
	cr, ok := h.(backend.ConnectionReporter)
	if !ok {
		return ErrUnsupported
	}
	cr.Reconnect()
	return nil
}

// Next advances the playlist and loads the new current item.
func (p *Player) Next() bool { return p.navigate(func() (playlist.Item, bool) { return p.list.Next() }) }

// Previous steps the playlist back and loads the new current item.
func (p *Player) Previous() bool {
	return p.navigate(func() (playlist.Item, bool) { return p.list.Previous() })
}

// JumpTo selects the playlist item at index and loads it.
func (p *Player) JumpTo(index int) bool {
	return p.navigate(func() (playlist.Item, bool) { return p.list.Jump(index) })
}

func (p *Player) navigate(move func() (playlist.Item, bool)) bool {
	item, ok := move()
	if !ok {
		return false
	}
	p.LoadSource(item.Locator)
	p.out.Emit(media.Event{Type: EventItemChange, Level: p.list.Cursor()})
	return true
}

// SetPlaylist replaces the item sequence.
func (p *Player) SetPlaylist(items []playlist.Item) {
	p.list.Replace(items)
	p.mu.Lock()
	p.armPreloadLocked()
	p.mu.Unlock()
	p.out.Emit(media.Event{Type: EventPlaylistChange})
}

// Playlist exposes the playlist for loop, shuffle and mutation control.
// The player re-arms preload on its own load and navigation paths.
func (p *Player) Playlist() *playlist.List { return p.list }

// Shuffle shuffles the playlist, keeping the playing item under the
// cursor, and re-arms preload for the new order.
func (p *Player) Shuffle() {
	p.list.Shuffle()
	p.mu.Lock()
	p.armPreloadLocked()
	p.mu.Unlock()
	p.out.Emit(media.Event{Type: EventPlaylistChange})
}

// RestoreOrder undoes the most recent shuffle.
func (p *Player) RestoreOrder() {
	p.list.Restore()
	p.mu.Lock()
	p.armPreloadLocked()
	p.mu.Unlock()
	p.out.Emit(media.Event{Type: EventPlaylistChange})
}

// Destroy tears the player down: pending timers cancelled, listeners
// detached, backend destroyed, final position saved. Idempotent.
func (p *Player) Destroy() {
	p.swapMu.Lock()
	defer p.swapMu.Unlock()

	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	p.savePosition()

	p.mu.Lock()
	p.destroyed = true
	p.runner.Stop()
	old := p.handle
	p.handle = nil
	unsub := p.unsubNet
	p.unsubNet = nil
	p.mu.Unlock()

	p.rec.Detach()
	if old != nil {
		old.Destroy()
	}

	p.preloader.Disarm()
	if unsub != nil {
		unsub()
	}
	p.log.Info().Str("session_id", p.sessionID).Msg("player destroyed")
}

// SPDX-License-Identifier: MIT
package backend

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/shuliangfu/video-player/internal/media"
	"github.com/shuliangfu/video-player/internal/metrics"
	"github.com/shuliangfu/video-player/internal/resilience"
)

// FLVOptions tune the live reconnect loop.
type FLVOptions struct {
	// ReconnectDelay is the base delay of the reconnect backoff chain.
	ReconnectDelay time.Duration
	// MaxReconnectAttempts bounds the chain; exhausting it moves the
	// connection status to error and stops scheduling.
	MaxReconnectAttempts int
	// Clock is injectable for tests; nil means the wall clock.
	Clock resilience.Clock
}

// flvReconnectCeiling caps reconnect backoff delays.
const flvReconnectCeiling = 10 * time.Second

// FLV adapts a connection-oriented flv.js-style engine. It owns a private
// ConnectionStatus and a reconnect loop whose attempt counter is fully
// independent from the orchestrator's whole-source reload counter.
type FLV struct {
	core

	engine      FLVEngine
	engineUnsub func()
	runner      *resilience.TaskRunner

	connMu  sync.Mutex
	conn    ConnectionStatus
	counter *resilience.Counter
	locator string
}

// NewFLV constructs the FLV backend. An engine factory is required.
func NewFLV(surface media.Surface, factory FLVEngineFactory, opts FLVOptions, logger zerolog.Logger) (*FLV, error) {
	if factory == nil {
		return nil, fmt.Errorf("flv: no engine available")
	}
	engine, err := factory(surface)
	if err != nil {
		return nil, fmt.Errorf("flv: engine construction: %w", err)
	}

	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = 3 * time.Second
	}
	if opts.MaxReconnectAttempts <= 0 {
		opts.MaxReconnectAttempts = 5
	}

	b := &FLV{
		core:   newCore(surface, logger),
		engine: engine,
		runner: resilience.NewTaskRunner(opts.Clock),
		conn:   ConnDisconnected,
		counter: resilience.NewCounter(resilience.Policy{
			BaseDelay:   opts.ReconnectDelay,
			MaxDelay:    flvReconnectCeiling,
			MaxAttempts: opts.MaxReconnectAttempts,
		}),
	}
	b.engineUnsub = engine.Subscribe(b.onEngineEvent)
	b.attachSurface()
	return b, nil
}

// Load implements Backend.
func (b *FLV) Load(locator string) error {
	if b.destroyed() {
		return ErrNotInitialized
	}
	b.transition(StatusLoading)

	b.connMu.Lock()
	b.locator = locator
	b.connMu.Unlock()

	b.setConn(ConnConnecting)
	if err := b.engine.Open(locator); err != nil {
		b.setConn(ConnDisconnected)
		return fmt.Errorf("flv: open %q: %w", locator, err)
	}
	return nil
}

func (b *FLV) onEngineEvent(ev EngineEvent) {
	switch ev.Kind {
	case EngineConnOpen:
		b.connMu.Lock()
		recovered := b.counter.Attempt() > 0
		b.counter.Succeed()
		b.connMu.Unlock()
		if recovered {
			metrics.RecordReconnect("success")
		}
		b.setConn(ConnConnected)
	case EngineConnLost:
		b.setConn(ConnDisconnected)
		b.scheduleReconnect()
	case EngineFatalNetwork, EngineFatalMedia, EngineFatalOther:
		err := ev.Err
		if err == nil {
			err = fmt.Errorf("flv: fatal engine error")
		}
		b.transition(StatusError)
		b.log.Error().Err(err).Msg("flv: fatal error escalated")
		b.emitter.Emit(media.Event{Type: media.EventError, Err: err})
	}
}

// scheduleReconnect advances the attempt chain. Exhaustion is terminal: the
// connection status moves to error and no further attempt is scheduled.
func (b *FLV) scheduleReconnect() {
	b.connMu.Lock()
	delay, ok := b.counter.Fail()
	attempt := b.counter.Attempt()
	locator := b.locator
	b.connMu.Unlock()

	if !ok {
		metrics.RecordReconnect("exhausted")
		b.setConn(ConnError)
		b.log.Error().Int("attempts", attempt).Msg("flv: reconnect attempts exhausted")
		b.emitter.Emit(media.Event{Type: media.EventError, Err: fmt.Errorf("flv: reconnect attempts exhausted after %d tries", attempt)})
		return
	}

	metrics.RecordReconnect("scheduled")
	b.log.Warn().Int("attempt", attempt).Dur("delay", delay).Msg("flv: scheduling reconnect")
	gen := b.runner.Generation()
	b.runner.Schedule(gen, delay, func() {
		if b.destroyed() {
			return
		}
		b.setConn(ConnConnecting)
		if err := b.engine.Open(locator); err != nil {
			b.log.Warn().Err(err).Msg("flv: reconnect attempt failed")
			b.setConn(ConnDisconnected)
			b.scheduleReconnect()
		}
	})
}

// Reconnect implements ConnectionReporter: it resets the attempt counter to
// zero before re-scheduling.
func (b *FLV) Reconnect() {
	if b.destroyed() {
		return
	}
	b.connMu.Lock()
	b.counter.Succeed()
	b.connMu.Unlock()
	b.scheduleReconnect()
}

// ConnectionStatus implements ConnectionReporter.
func (b *FLV) ConnectionStatus() ConnectionStatus {
	b.connMu.Lock()
	defer b.connMu.Unlock()
	return b.conn
}

// setConn applies a connection transition, emitting a status-change event
// on every distinct transition.
func (b *FLV) setConn(next ConnectionStatus) {
	b.connMu.Lock()
	if b.conn == next {
		b.connMu.Unlock()
		return
	}
	b.conn = next
	b.connMu.Unlock()
	b.emitter.Emit(media.Event{Type: media.EventConnectionChange, Status: string(next)})
}

// Destroy implements Backend. Idempotent; cancels any pending reconnect.
func (b *FLV) Destroy() {
	if !b.transition(StatusDestroyed) {
		return
	}
	b.runner.Stop()
	if b.engineUnsub != nil {
		b.engineUnsub()
	}
	b.engine.Close()
	b.releaseSurface()
	b.emitter.Clear()
}

var (
	_ Backend            = (*FLV)(nil)
	_ ConnectionReporter = (*FLV)(nil)
)

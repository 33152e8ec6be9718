// SPDX-License-Identifier: MIT

// Package log provides structured logging construction helpers.
//
// Loggers are instance-scoped: every component receives its logger through
// configuration instead of reaching for process-global state, so two player
// instances in one process can log at different levels to different sinks.
package log

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Config captures options for building a logger instance.
type Config struct {
	Level   string    // optional log level ("debug", "info", etc.)
	Output  io.Writer // optional writer; nil yields a no-op logger
	Service string    // optional service name attached to every entry
}

// New builds a logger from cfg. A nil output produces a disabled logger,
// which is the default for library consumers that never configure logging.
func New(cfg Config) zerolog.Logger {
	if cfg.Output == nil {
		return zerolog.Nop()
	}

	level := zerolog.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil {
			level = parsed
		}
	}

	ctx := zerolog.New(cfg.Output).Level(level).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	return ctx.Logger()
}

// WithComponent returns a child of parent annotated with the component name.
func WithComponent(parent zerolog.Logger, component string) zerolog.Logger {
	return parent.With().Str("component", component).Logger()
}

// LevelVar is an atomically adjustable minimum level shared between a
// logger and the code that reloads configuration.
type LevelVar struct {
	v atomic.Int32
}

// NewLevelVar returns a LevelVar starting at level.
func NewLevelVar(level zerolog.Level) *LevelVar {
	lv := &LevelVar{}
	lv.Set(level)
	return lv
}

// Level returns the current minimum level.
func (l *LevelVar) Level() zerolog.Level { return zerolog.Level(l.v.Load()) }

// Set applies a new minimum level.
func (l *LevelVar) Set(level zerolog.Level) { l.v.Store(int32(level)) }

// SetString parses and applies a level name. Unknown names keep the
// current level and report the parse error.
func (l *LevelVar) SetString(s string) error {
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return fmt.Errorf("log: parse level %q: %w", s, err)
	}
	l.Set(level)
	return nil
}

// dynamicWriter filters entries below the shared minimum level. The
// logger itself stays unleveled so every child built from it follows the
// LevelVar.
type dynamicWriter struct {
	w   io.Writer
	min *LevelVar
}

func (d dynamicWriter) Write(p []byte) (int, error) { return d.w.Write(p) }

func (d dynamicWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < d.min.Level() {
		return len(p), nil
	}
	return d.w.Write(p)
}

// NewDynamic builds a logger like New whose minimum level can be changed
// at runtime through the returned LevelVar. Children derived with
// WithComponent share the same level.
func NewDynamic(cfg Config) (zerolog.Logger, *LevelVar) {
	if cfg.Output == nil {
		return zerolog.Nop(), NewLevelVar(zerolog.Disabled)
	}

	level := zerolog.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil {
			level = parsed
		}
	}
	lv := NewLevelVar(level)

	ctx := zerolog.New(dynamicWriter{w: cfg.Output, min: lv}).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	return ctx.Logger(), lv
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

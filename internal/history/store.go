// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package history persists playback positions and player settings in
// SQLite so a player restart resumes where the viewer left off.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/shuliangfu/video-player/internal/persistence/sqlite"
)

// schemaVersion is bumped whenever the table layout changes.
const schemaVersion = 1

// Position is a saved playback position for one media locator.
type Position struct {
	Locator  string
	Seconds  float64
	Duration float64
	SavedAt  time.Time
}

// Settings are the persisted player preferences. Negative numeric fields
// mean "not set" so partial updates never clobber stored values.
type Settings struct {
	QualityIndex int
	Volume       float64
	Rate         float64
}

// Store is a SQLite-backed position and settings store. Safe for
// concurrent use; the underlying pool serializes writers via WAL.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open creates or migrates the history database at dbPath.
func Open(dbPath string, logger zerolog.Logger) (*Store, error) {
	db, err := sqlite.Open(dbPath, sqlite.DefaultConfig())
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, log: logger}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	var current int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("history: read schema version: %w", err)
	}
	if current >= schemaVersion {
		return nil
	}

	const ddl = `
CREATE TABLE IF NOT EXISTS positions (
	locator    TEXT PRIMARY KEY,
	seconds    REAL NOT NULL,
	duration   REAL NOT NULL,
	saved_at   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS settings (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	quality_index INTEGER NOT NULL DEFAULT -1,
	volume        REAL NOT NULL DEFAULT -1,
	rate          REAL NOT NULL DEFAULT -1
);
INSERT OR IGNORE INTO settings (id) VALUES (1);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("history: create schema: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("history: set schema version: %w", err)
	}
	s.log.Debug().Int("version", schemaVersion).Msg("history schema migrated")
	return nil
}

// SavePosition upserts the playback position for a locator.
func (s *Store) SavePosition(ctx context.Context, locator string, seconds, duration float64) error {
	if locator == "" {
		return errors.New("history: empty locator")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO positions (locator, seconds, duration, saved_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(locator) DO UPDATE SET
	seconds  = excluded.seconds,
	duration = excluded.duration,
	saved_at = excluded.saved_at`,
		locator, seconds, duration, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("history: save position: %w", err)
	}
	return nil
}

// GetPosition returns the saved position for a locator. The boolean is
// false when nothing has been saved.
func (s *Store) GetPosition(ctx context.Context, locator string) (Position, bool, error) {
	var p Position
	var savedAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT locator, seconds, duration, saved_at FROM positions WHERE locator = ?",
		locator).Scan(&p.Locator, &p.Seconds, &p.Duration, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Position{}, false, nil
	}
	if err != nil {
		return Position{}, false, fmt.Errorf("history: get position: %w", err)
	}
	if t, perr := time.Parse(time.RFC3339, savedAt); perr == nil {
		p.SavedAt = t
	}
	return p, true, nil
}

// ClearPosition removes the saved position for a locator. Clearing an
// absent locator is not an error.
func (s *Store) ClearPosition(ctx context.Context, locator string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM positions WHERE locator = ?", locator); err != nil {
		return fmt.Errorf("history: clear position: %w", err)
	}
	return nil
}

// Prune removes positions saved before the cutoff and returns the number
// of rows deleted.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM positions WHERE saved_at < ?",
		before.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("history: prune: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// SaveSettings stores player preferences. Fields set to negative values
// keep their stored value.
func (s *Store) SaveSettings(ctx context.Context, in Settings) error {
	_, err := s.db.ExecContext(ctx, `
UPDATE settings SET
	quality_index = CASE WHEN ? >= 0 THEN ? ELSE quality_index END,
	volume        = CASE WHEN ? >= 0 THEN ? ELSE volume END,
	rate          = CASE WHEN ? >= 0 THEN ? ELSE rate END
WHERE id = 1`,
		in.QualityIndex, in.QualityIndex, in.Volume, in.Volume, in.Rate, in.Rate)
	if err != nil {
		return fmt.Errorf("history: save settings: %w", err)
	}
	return nil
}

// GetSettings returns the persisted preferences. Unset fields are -1.
func (s *Store) GetSettings(ctx context.Context) (Settings, error) {
	var out Settings
	err := s.db.QueryRowContext(ctx,
		"SELECT quality_index, volume, rate FROM settings WHERE id = 1").
		Scan(&out.QualityIndex, &out.Volume, &out.Rate)
	if errors.Is(err, sql.ErrNoRows) {
		return Settings{QualityIndex: -1, Volume: -1, Rate: -1}, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("history: get settings: %w", err)
	}
	return out, nil
}

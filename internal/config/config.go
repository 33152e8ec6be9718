// SPDX-License-Identifier: MIT

// Package config defines the player configuration, YAML loading with
// validation, and atomic hot reloading from a watched file.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shuliangfu/video-player/internal/format"
	"github.com/shuliangfu/video-player/internal/playlist"
)

// Retry bounds the exponential reload schedule.
type Retry struct {
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
	MaxAttempts int           `yaml:"max_attempts"`
}

// FLV tunes the live HTTP-FLV reconnect loop.
type FLV struct {
	ReconnectDelay       time.Duration `yaml:"reconnect_delay"`
	MaxReconnectAttempts int           `yaml:"max_reconnect_attempts"`
}

// DASH tunes the adaptive MPEG-DASH engine.
type DASH struct {
	StreamingDelaySeconds float64 `yaml:"streaming_delay_seconds"`
	AutoBitrateSwitch     bool    `yaml:"auto_bitrate_switch"`
}

// Preload controls network-adaptive next-item prefetch.
type Preload struct {
	Enabled bool `yaml:"enabled"`
}

// Server configures the local control API.
type Server struct {
	Listen        string        `yaml:"listen"`
	RatePerMinute int           `yaml:"rate_per_minute"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
}

// Config is the full player configuration.
type Config struct {
	Source          string            `yaml:"source"`
	FallbackSources []string          `yaml:"fallback_sources"`
	Playlist        []playlist.Item   `yaml:"playlist"`
	PlaylistM3U     string            `yaml:"playlist_m3u"`
	LoopMode        playlist.LoopMode `yaml:"loop_mode"`

	Autoplay     bool    `yaml:"autoplay"`
	Volume       float64 `yaml:"volume"`
	PlaybackRate float64 `yaml:"playback_rate"`

	TranslateRTMP bool `yaml:"translate_rtmp"`

	Retry   Retry   `yaml:"retry"`
	FLV     FLV     `yaml:"flv"`
	DASH    DASH    `yaml:"dash"`
	Preload Preload `yaml:"preload"`
	Server  Server  `yaml:"server"`

	DataDir  string `yaml:"data_dir"`
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when a field is absent from the
// file. Values mirror the engine defaults.
func Default() Config {
	return Config{
		LoopMode:      playlist.LoopNone,
		Autoplay:      false,
		Volume:        1.0,
		PlaybackRate:  1.0,
		TranslateRTMP: true,
		Retry: Retry{
			BaseDelay:   time.Second,
			MaxDelay:    10 * time.Second,
			MaxAttempts: 3,
		},
		FLV: FLV{
			ReconnectDelay:       time.Second,
			MaxReconnectAttempts: 5,
		},
		DASH: DASH{
			StreamingDelaySeconds: 4,
			AutoBitrateSwitch:     true,
		},
		Preload: Preload{Enabled: true},
		Server: Server{
			Listen:        "127.0.0.1:8990",
			RatePerMinute: 120,
			ReadTimeout:   10 * time.Second,
			WriteTimeout:  10 * time.Second,
		},
		DataDir:  ".",
		LogLevel: "info",
	}
}

// Load reads, parses and validates a YAML config file. Parse or
// validation failures return the error with no partial result. When
// playlist_m3u names a file, its items are appended to the inline
// playlist.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(raw)
	if err != nil {
		return Config{}, err
	}
	if cfg.PlaylistM3U != "" {
		f, err := os.Open(cfg.PlaylistM3U)
		if err != nil {
			return Config{}, fmt.Errorf("config: open playlist_m3u: %w", err)
		}
		items, err := playlist.ParseM3U(f)
		f.Close()
		if err != nil {
			return Config{}, err
		}
		cfg.Playlist = append(cfg.Playlist, items...)
	}
	return cfg, nil
}

// Parse decodes YAML bytes over the defaults and validates the result.
func Parse(raw []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func Validate(cfg Config) error {
	if cfg.Source == "" && len(cfg.Playlist) == 0 && cfg.PlaylistM3U == "" {
		return fmt.Errorf("config: no source and no playlist configured")
	}
	if cfg.Volume < 0 || cfg.Volume > 1 {
		return fmt.Errorf("config: volume %v out of range [0,1]", cfg.Volume)
	}
	if cfg.PlaybackRate < 0.25 || cfg.PlaybackRate > 4 {
		return fmt.Errorf("config: playback_rate %v out of range [0.25,4]", cfg.PlaybackRate)
	}
	if !cfg.LoopMode.IsValid() {
		return fmt.Errorf("config: invalid loop_mode %q", cfg.LoopMode)
	}
	if cfg.Retry.BaseDelay <= 0 {
		return fmt.Errorf("config: retry.base_delay must be positive")
	}
	if cfg.Retry.MaxDelay < cfg.Retry.BaseDelay {
		return fmt.Errorf("config: retry.max_delay below retry.base_delay")
	}
	if cfg.Retry.MaxAttempts < 1 {
		return fmt.Errorf("config: retry.max_attempts must be at least 1")
	}
	if cfg.FLV.ReconnectDelay <= 0 {
		return fmt.Errorf("config: flv.reconnect_delay must be positive")
	}
	if cfg.FLV.MaxReconnectAttempts < 0 {
		return fmt.Errorf("config: flv.max_reconnect_attempts must not be negative")
	}
	if cfg.DASH.StreamingDelaySeconds < 0 {
		return fmt.Errorf("config: dash.streaming_delay_seconds must not be negative")
	}
	for i, fb := range cfg.FallbackSources {
		if fb == "" {
			return fmt.Errorf("config: fallback_sources[%d] is empty", i)
		}
	}
	if cfg.Source != "" {
		if tag := format.Classify(cfg.Source); tag == format.TagRTMP && !cfg.TranslateRTMP {
			return fmt.Errorf("config: source is RTMP but translate_rtmp is disabled")
		}
	}
	if cfg.Server.RatePerMinute < 1 {
		return fmt.Errorf("config: server.rate_per_minute must be at least 1")
	}
	return nil
}

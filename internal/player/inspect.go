// SPDX-License-Identifier: MIT
package player

import (
	"github.com/shuliangfu/video-player/internal/backend"
	"github.com/shuliangfu/video-player/internal/format"
	"github.com/shuliangfu/video-player/internal/netstatus"
	"github.com/shuliangfu/video-player/internal/playlist"
	"github.com/shuliangfu/video-player/internal/reconcile"
)

// State is a point-in-time view of the orchestrator.
type State struct {
	SessionID        string                   `json:"sessionId"`
	Locator          string                   `json:"locator"`
	Tag              format.Tag               `json:"tag"`
	Status           backend.Status           `json:"status"`
	Connection       backend.ConnectionStatus `json:"connection,omitempty"`
	CurrentTime      float64                  `json:"currentTime"`
	Duration         float64                  `json:"duration"`
	Volume           float64                  `json:"volume"`
	PlaybackRate     float64                  `json:"playbackRate"`
	BufferedFraction float64                  `json:"bufferedFraction"`
	PlaylistCursor   int                      `json:"playlistCursor"`
	PlaylistLen      int                      `json:"playlistLen"`
	LoopMode         playlist.LoopMode        `json:"loopMode"`
	Shuffled         bool                     `json:"shuffled"`
	RetryAttempt     int                      `json:"retryAttempt"`
	Network          netstatus.Snapshot       `json:"network"`
}

// VideoInfo describes the loaded media and its quality ladder.
type VideoInfo struct {
	Locator       string                 `json:"locator"`
	Tag           format.Tag             `json:"tag"`
	Duration      float64                `json:"duration"`
	QualityLevels []backend.QualityLevel `json:"qualityLevels,omitempty"`
	CurrentLevel  int                    `json:"currentLevel"`
}

// BufferedInfo reports buffering progress.
type BufferedInfo struct {
	CurrentTime      float64 `json:"currentTime"`
	Duration         float64 `json:"duration"`
	BufferedFraction float64 `json:"bufferedFraction"`
}

// NetworkStats summarizes observed connectivity.
type NetworkStats struct {
	Current netstatus.Snapshot   `json:"current"`
	Changes int                  `json:"changes"`
	History []netstatus.Snapshot `json:"history"`
}

// State snapshots the orchestrator. Surface values stand in when no
// backend is attached.
func (p *Player) State() State {
	p.mu.Lock()
	h := p.handle
	s := p.surface
	st := State{
		SessionID:      p.sessionID,
		Locator:        p.locator,
		Tag:            p.tag,
		Status:         backend.StatusIdle,
		PlaylistCursor: p.list.Cursor(),
		PlaylistLen:    p.list.Len(),
		LoopMode:       p.list.LoopMode(),
		Shuffled:       p.list.Shuffled(),
		RetryAttempt:   p.retry.Attempt(),
		Network:        p.netSnap,
	}
	p.mu.Unlock()

	if h != nil {
		st.Status = h.Status()
		st.CurrentTime = h.CurrentTime()
		st.Duration = h.Duration()
		st.Volume = h.Volume()
		st.PlaybackRate = h.PlaybackRate()
		st.BufferedFraction = h.BufferedFraction()
		if cr, ok := h.(backend.ConnectionReporter); ok {
			st.Connection = cr.ConnectionStatus()
		}
		return st
	}
	st.CurrentTime = s.CurrentTime()
	st.Duration = s.Duration()
	st.Volume = s.Volume()
	st.PlaybackRate = s.PlaybackRate()
	st.BufferedFraction = s.BufferedFraction()
	return st
}

// PlaybackStats returns the accumulated playback statistics.
func (p *Player) PlaybackStats() reconcile.StatsSnapshot {
	return p.rec.Stats().Snapshot()
}

// VideoInfo reports the loaded media and, when the backend exposes one,
// its quality ladder.
func (p *Player) VideoInfo() VideoInfo {
	p.mu.Lock()
	h := p.handle
	info := VideoInfo{Locator: p.locator, Tag: p.tag, CurrentLevel: -1}
	p.mu.Unlock()

	if h == nil {
		return info
	}
	info.Duration = h.Duration()
	if qr, ok := h.(backend.QualityReporter); ok {
		info.QualityLevels = qr.QualityLevels()
		info.CurrentLevel = qr.CurrentQualityLevel()
	}
	return info
}

// BufferedInfo reports buffering progress for the active media.
func (p *Player) BufferedInfo() BufferedInfo {
	p.mu.Lock()
	h := p.handle
	s := p.surface
	p.mu.Unlock()

	if h != nil {
		return BufferedInfo{
			CurrentTime:      h.CurrentTime(),
			Duration:         h.Duration(),
			BufferedFraction: h.BufferedFraction(),
		}
	}
	return BufferedInfo{
		CurrentTime:      s.CurrentTime(),
		Duration:         s.Duration(),
		BufferedFraction: s.BufferedFraction(),
	}
}

// NetworkStats reports connectivity observations since construction.
func (p *Player) NetworkStats() NetworkStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	history := make([]netstatus.Snapshot, len(p.netHistory))
	copy(history, p.netHistory)
	return NetworkStats{
		Current: p.netSnap,
		Changes: p.netChanges,
		History: history,
	}
}

// ConnectionStatus reports the live connection state, or empty for
// backends without a connection concept.
func (p *Player) ConnectionStatus() backend.ConnectionStatus {
	p.mu.Lock()
	h := p.handle
	p.mu.Unlock()
	if h == nil {
		return ""
	}
	if cr, ok := h.(backend.ConnectionReporter); ok {
		return cr.ConnectionStatus()
	}
	return ""
}

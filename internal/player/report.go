// SPDX-License-Identifier: MIT
package player

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/renameio/v2"

	"github.com/shuliangfu/video-player/internal/netstatus"
	"github.com/shuliangfu/video-player/internal/reconcile"
)

// PerformanceSample is one point sample taken on the coalesced
// timeupdate feed.
type PerformanceSample struct {
	At               time.Time `json:"at"`
	CurrentTime      float64   `json:"currentTime"`
	BufferedFraction float64   `json:"bufferedFraction"`
}

// Report is the exportable performance report: accumulated statistics,
// recent samples and the connectivity history.
type Report struct {
	SessionID   string                  `json:"sessionId"`
	GeneratedAt time.Time               `json:"generatedAt"`
	Locator     string                  `json:"locator"`
	Tag         string                  `json:"tag"`
	Stats       reconcile.StatsSnapshot `json:"stats"`
	Samples     []PerformanceSample     `json:"samples"`
	Network     []netstatus.Snapshot    `json:"network"`
	NetworkNow  netstatus.Snapshot      `json:"networkNow"`
}

// Report generates the performance report from the current session.
func (p *Player) Report() Report {
	p.mu.Lock()
	samples := make([]PerformanceSample, len(p.samples))
	copy(samples, p.samples)
	network := make([]netstatus.Snapshot, len(p.netHistory))
	copy(network, p.netHistory)
	r := Report{
		SessionID:   p.sessionID,
		GeneratedAt: p.clock.Now(),
		Locator:     p.locator,
		Tag:         p.tag.String(),
		Samples:     samples,
		Network:     network,
		NetworkNow:  p.netSnap,
	}
	p.mu.Unlock()

	r.Stats = p.rec.Stats().Snapshot()
	return r
}

// ExportReport writes the report as JSON to path atomically, so a crashed
// export never leaves a truncated file behind.
func (p *Player) ExportReport(path string) error {
	data, err := json.MarshalIndent(p.Report(), "", "  ")
	if err != nil {
		return fmt.Errorf("player: marshal report: %w", err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("player: write report: %w", err)
	}
	return nil
}

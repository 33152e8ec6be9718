// SPDX-License-Identifier: MIT

// Package capability ranks protocol and quality choices for the current
// rendering engine and network conditions. The rankings are fixed policy
// tables, not inferred behaviour.
package capability

import (
	"github.com/shuliangfu/video-player/internal/format"
	"github.com/shuliangfu/video-player/internal/media"
	"github.com/shuliangfu/video-player/internal/netstatus"
)

// minWebKitAV1Major gates hardware AV1 on the Safari-like engine family.
const minWebKitAV1Major = 17

// lowLatencyRTTMillis is the round-trip ceiling below which low-latency
// tuning is allowed; an unknown RTT also allows it.
const lowLatencyRTTMillis = 100

// Recommend returns protocol tags in preference order for the surface's
// engine.
//
// The Safari-like family prefers native HLS, then hardware AV1 above the
// version gate, then progressive. Every other engine prefers AV1 when
// supported, then progressive, then HLS, then DASH.
func Recommend(surface media.Surface) []format.Tag {
	engine := surface.Engine()

	if engine.Family == media.EngineWebKit {
		tags := []format.Tag{format.TagHLS}
		if engine.HardwareAV1 && engine.MajorVersion >= minWebKitAV1Major {
			tags = append(tags, format.TagAV1)
		}
		return append(tags, format.TagProgressive)
	}

	var tags []format.Tag
	if surface.CanPlayType(`video/mp4; codecs="av01.0.05M.08"`) != media.CanPlayNo {
		tags = append(tags, format.TagAV1)
	}
	return append(tags, format.TagProgressive, format.TagHLS, format.TagDASH)
}

// SuggestQualityIndex maps network conditions to a quality level index for
// a track with levelCount levels, where 0 is the lowest level and -1 means
// automatic selection.
func SuggestQualityIndex(levelCount int, snap netstatus.Snapshot) int {
	if levelCount <= 0 || !snap.Online {
		return -1
	}
	top := levelCount - 1

	switch snap.Class {
	case netstatus.ClassWired, netstatus.ClassWifi, netstatus.ClassCell4G, netstatus.ClassCell5G:
		return top
	case netstatus.ClassCell3G:
		return top / 2
	case netstatus.ClassCell2G, netstatus.ClassSlow2G:
		return 0
	default:
		return -1
	}
}

// PrefersLowLatency reports whether low-latency tuning should be applied.
// Only fast connection classes qualify, and only while the round-trip time
// is unknown or below the ceiling.
func PrefersLowLatency(snap netstatus.Snapshot) bool {
	if !snap.Online {
		return false
	}
	switch snap.Class {
	case netstatus.ClassWired, netstatus.ClassWifi, netstatus.ClassCell4G, netstatus.ClassCell5G:
		return snap.RTTMillis <= 0 || snap.RTTMillis < lowLatencyRTTMillis
	default:
		return false
	}
}

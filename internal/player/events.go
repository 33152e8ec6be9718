// SPDX-License-Identifier: MIT
package player

import "github.com/shuliangfu/video-player/internal/media"

// Derived event types layered on top of the raw backend vocabulary. The
// consumer-facing feed carries both. Quality changes reuse
// media.EventQualityChange, since engine-initiated switches arrive on the
// raw feed.
const (
	EventPlaybackRestored  media.EventType = "playbackrestored"
	EventPreloadComplete   media.EventType = "preloadcomplete"
	EventNetworkChange     media.EventType = "networkchange"
	EventPerformanceUpdate media.EventType = "performanceupdate"
	EventPlaylistChange    media.EventType = "playlistchange"
	EventItemChange        media.EventType = "itemchange"
)

// SPDX-License-Identifier: MIT
package media

// EventType names one entry of the native lifecycle event vocabulary.
// Backends re-emit these; the orchestrator layers derived event types on top.
type EventType string

const (
	EventLoadStart        EventType = "loadstart"
	EventLoadedMetadata   EventType = "loadedmetadata"
	EventLoadedData       EventType = "loadeddata"
	EventProgress         EventType = "progress"
	EventCanPlay          EventType = "canplay"
	EventCanPlayThrough   EventType = "canplaythrough"
	EventPlay             EventType = "play"
	EventPause            EventType = "pause"
	EventEnded            EventType = "ended"
	EventTimeUpdate       EventType = "timeupdate"
	EventVolumeChange     EventType = "volumechange"
	EventRateChange       EventType = "ratechange"
	EventSeeking          EventType = "seeking"
	EventSeeked           EventType = "seeked"
	EventWaiting          EventType = "waiting"
	EventError            EventType = "error"
	EventConnectionChange EventType = "connectionstatuschange"
	EventQualityChange    EventType = "qualitychange"
)

// Event is one raw lifecycle notification.
type Event struct {
	Type   EventType
	Time   float64 // playback position, meaningful for timeupdate/seeking/seeked
	Volume float64 // meaningful for volumechange
	Rate   float64 // meaningful for ratechange
	Status string  // meaningful for connectionstatuschange
	Level  int     // meaningful for qualitychange
	Err    error   // meaningful for error
}

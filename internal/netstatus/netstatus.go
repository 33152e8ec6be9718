// SPDX-License-Identifier: MIT

// Package netstatus models the network conditions the player adapts to.
// The snapshot mirrors what a connectivity API reports: online state,
// connection class, downlink estimate, round-trip time and data-saver flag.
package netstatus

import "sync"

// Class is the coarse connection classification.
type Class string

const (
	ClassWired   Class = "wired"
	ClassWifi    Class = "wifi"
	ClassCell5G  Class = "5g"
	ClassCell4G  Class = "4g"
	ClassCell3G  Class = "3g"
	ClassCell2G  Class = "2g"
	ClassSlow2G  Class = "slow-2g"
	ClassUnknown Class = "unknown"
)

// IsValid checks whether the class is a defined value.
func (c Class) IsValid() bool {
	switch c {
	case ClassWired, ClassWifi, ClassCell5G, ClassCell4G, ClassCell3G,
		ClassCell2G, ClassSlow2G, ClassUnknown:
		return true
	default:
		return false
	}
}

// Fast reports whether the class sits on the fast side of the slow/fast
// boundary the preload scheduler re-arms across.
func (c Class) Fast() bool {
	switch c {
	case ClassWired, ClassWifi, ClassCell5G, ClassCell4G:
		return true
	default:
		return false
	}
}

// Snapshot is a point-in-time view of network conditions.
// RTTMillis <= 0 means the round-trip time is unknown.
type Snapshot struct {
	Online       bool    `json:"online"`
	Class        Class   `json:"class"`
	DownlinkMbps float64 `json:"downlinkMbps"`
	RTTMillis    int     `json:"rttMillis"`
	SaveData     bool    `json:"saveData"`
}

// Source supplies snapshots and change notifications. The player reacts to
// class changes, data-saver changes and online/offline transitions only,
// never to raw downlink fluctuation.
type Source interface {
	Snapshot() Snapshot
	// Subscribe registers fn for change notifications and returns an
	// unsubscribe func. fn is invoked synchronously on the notifying call.
	Subscribe(fn func(Snapshot)) (unsubscribe func())
}

// Manual is a Source driven by explicit Set calls. It backs tests and hosts
// that poll their platform's connectivity API themselves.
type Manual struct {
	mu      sync.Mutex
	current Snapshot
	nextID  int
	subs    map[int]func(Snapshot)
}

// NewManual returns a Manual source seeded with snap.
func NewManual(snap Snapshot) *Manual {
	return &Manual{current: snap, subs: make(map[int]func(Snapshot))}
}

// Snapshot returns the most recent snapshot.
func (m *Manual) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Set replaces the snapshot and notifies subscribers only when a field the
// player cares about changed.
func (m *Manual) Set(snap Snapshot) {
	m.mu.Lock()
	prev := m.current
	m.current = snap
	var fns []func(Snapshot)
	if relevantChange(prev, snap) {
		for _, fn := range m.subs {
			fns = append(fns, fn)
		}
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// Subscribe implements Source.
func (m *Manual) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func relevantChange(prev, next Snapshot) bool {
	return prev.Online != next.Online ||
		prev.Class != next.Class ||
		prev.SaveData != next.SaveData
}

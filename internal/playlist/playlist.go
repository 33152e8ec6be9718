// SPDX-License-Identifier: MIT

// Package playlist manages the ordered item sequence, the playback cursor,
// loop modes and shuffle/restore.
package playlist

import (
	"math/rand"
	"sync"
)

// LoopMode selects the playlist-end policy.
type LoopMode string

const (
	LoopNone LoopMode = "none"
	LoopOne  LoopMode = "one"
	LoopAll  LoopMode = "all"
)

// IsValid checks whether the mode is a defined value.
func (m LoopMode) IsValid() bool {
	switch m {
	case LoopNone, LoopOne, LoopAll:
		return true
	default:
		return false
	}
}

// Item is one playlist entry.
type Item struct {
	Locator string `json:"locator"`
	Title   string `json:"title,omitempty"`
}

// Advance is the outcome of the playlist-end policy.
type Advance struct {
	// Reload is true when the current item should be reloaded and replayed.
	Reload bool
	// Next is the index to move to; -1 means no action (natural stop).
	Next int
}

// List holds the playlist state. The cursor invariant holds across every
// operation: it is a valid index into the items, or exactly -1 while the
// list is empty.
type List struct {
	mu            sync.Mutex
	items         []Item
	cursor        int
	loop          LoopMode
	shuffled      bool
	originalOrder []Item // captured on first shuffle, cleared on restore
	rng           *rand.Rand
}

// New returns an empty list.
func New() *List {
	return &List{cursor: -1, loop: LoopNone}
}

// SetSeed fixes the shuffle RNG, used by tests.
func (l *List) SetSeed(seed int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rng = rand.New(rand.NewSource(seed))
}

// Replace swaps in a whole new item sequence and resets the cursor to the
// first item (or -1 when empty). Shuffle history is discarded.
func (l *List) Replace(items []Item) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append([]Item(nil), items...)
	l.shuffled = false
	l.originalOrder = nil
	if len(l.items) == 0 {
		l.cursor = -1
	} else {
		l.cursor = 0
	}
}

// Add appends an item.
func (l *List) Add(item Item) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, item)
	if l.cursor == -1 {
		l.cursor = 0
	}
}

// Remove deletes the item at index. Removing the cursor item clamps the
// cursor to the next valid position.
func (l *List) Remove(index int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index >= len(l.items) {
		return false
	}
	l.items = append(l.items[:index], l.items[index+1:]...)
	switch {
	case len(l.items) == 0:
		l.cursor = -1
	case index < l.cursor:
		l.cursor--
	case l.cursor >= len(l.items):
		l.cursor = len(l.items) - 1
	}
	return true
}

// Items returns a copy of the current sequence.
func (l *List) Items() []Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Item(nil), l.items...)
}

// Len reports the item count.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Cursor returns the current index, or -1 while empty.
func (l *List) Cursor() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cursor
}

// Current returns the item under the cursor.
func (l *List) Current() (Item, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cursor == -1 {
		return Item{}, false
	}
	return l.items[l.cursor], true
}

// Jump moves the cursor to index.
func (l *List) Jump(index int) (Item, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index >= len(l.items) {
		return Item{}, false
	}
	l.cursor = index
	return l.items[index], true
}

// Next moves the cursor forward, wrapping in loop-all mode.
func (l *List) Next() (Item, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.items) == 0 {
		return Item{}, false
	}
	next := l.cursor + 1
	if next >= len(l.items) {
		if l.loop != LoopAll {
			return Item{}, false
		}
		next = 0
	}
	l.cursor = next
	return l.items[next], true
}

// Previous moves the cursor backward, wrapping in loop-all mode.
func (l *List) Previous() (Item, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.items) == 0 {
		return Item{}, false
	}
	prev := l.cursor - 1
	if prev < 0 {
		if l.loop != LoopAll {
			return Item{}, false
		}
		prev = len(l.items) - 1
	}
	l.cursor = prev
	return l.items[prev], true
}

// LoopMode returns the active loop mode.
func (l *List) LoopMode() LoopMode {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loop
}

// SetLoopMode selects the playlist-end policy.
func (l *List) SetLoopMode(mode LoopMode) {
	if !mode.IsValid() {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loop = mode
}

// OnEnded evaluates the playlist-end policy for a finished item. It is
// only meaningful while the playlist is non-empty.
func (l *List) OnEnded() Advance {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.items) == 0 || l.cursor == -1 {
		return Advance{Next: -1}
	}
	switch l.loop {
	case LoopOne:
		return Advance{Reload: true, Next: l.cursor}
	case LoopAll:
		l.cursor = (l.cursor + 1) % len(l.items)
		return Advance{Next: l.cursor}
	default:
		return Advance{Next: -1}
	}
}

// Shuffle applies a Fisher–Yates permutation. The pre-shuffle order is
// captured exactly once, on the first shuffle since the last restore, and
// the cursor follows the previously-playing item to its new position
// (index 0 when the item cannot be located).
func (l *List) Shuffle() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.items) == 0 {
		return
	}
	if l.originalOrder == nil {
		l.originalOrder = append([]Item(nil), l.items...)
	}
	var current *Item
	if l.cursor != -1 {
		c := l.items[l.cursor]
		current = &c
	}

	intn := rand.Intn
	if l.rng != nil {
		intn = l.rng.Intn
	}
	for i := len(l.items) - 1; i > 0; i-- {
		j := intn(i + 1)
		l.items[i], l.items[j] = l.items[j], l.items[i]
	}
	l.shuffled = true
	l.cursor = l.locate(current)
}

// Restore reinstates the order captured before the most recent shuffle.
func (l *List) Restore() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.originalOrder == nil {
		return
	}
	var current *Item
	if l.cursor != -1 && l.cursor < len(l.items) {
		c := l.items[l.cursor]
		current = &c
	}
	l.items = l.originalOrder
	l.originalOrder = nil
	l.shuffled = false
	l.cursor = l.locate(current)
}

// Shuffled reports whether a shuffle is in effect.
func (l *List) Shuffled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.shuffled
}

// locate finds item's index in the current sequence, defaulting to 0.
// Caller holds the lock.
func (l *List) locate(item *Item) int {
	if len(l.items) == 0 {
		return -1
	}
	if item != nil {
		for i, it := range l.items {
			if it == *item {
				return i
			}
		}
	}
	return 0
}

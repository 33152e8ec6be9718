package playlist

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(locators ...string) []Item {
	out := make([]Item, len(locators))
	for i, l := range locators {
		out[i] = Item{Locator: l}
	}
	return out
}

func TestList_CursorInvariant(t *testing.T) {
	l := New()
	assert.Equal(t, -1, l.Cursor())

	l.Add(Item{Locator: "a"})
	assert.Equal(t, 0, l.Cursor())

	l.Replace(nil)
	assert.Equal(t, -1, l.Cursor())

	l.Replace(items("a", "b", "c"))
	assert.Equal(t, 0, l.Cursor())

	_, ok := l.Jump(2)
	require.True(t, ok)
	require.True(t, l.Remove(2))
	assert.Equal(t, 1, l.Cursor(), "cursor clamps after removing the tail item")

	require.True(t, l.Remove(0))
	assert.Equal(t, 0, l.Cursor())
	require.True(t, l.Remove(0))
	assert.Equal(t, -1, l.Cursor())

	assert.False(t, l.Remove(0))
	assert.False(t, l.Remove(-1))
}

func TestList_LoopAllWrapsAtEnd(t *testing.T) {
	l := New()
	l.Replace(items("a", "b", "c"))
	l.SetLoopMode(LoopAll)
	_, ok := l.Jump(2)
	require.True(t, ok)

	adv := l.OnEnded()
	assert.False(t, adv.Reload)
	assert.Equal(t, 0, adv.Next, "cursor wraps to the first item, never out of bounds")
	assert.Equal(t, 0, l.Cursor())
}

func TestList_LoopOneReloadsCurrent(t *testing.T) {
	l := New()
	l.Replace(items("a", "b"))
	l.SetLoopMode(LoopOne)
	l.Jump(1)

	adv := l.OnEnded()
	assert.True(t, adv.Reload)
	assert.Equal(t, 1, adv.Next)
}

func TestList_LoopNoneStops(t *testing.T) {
	l := New()
	l.Replace(items("a"))

	adv := l.OnEnded()
	assert.Equal(t, -1, adv.Next)
	assert.False(t, adv.Reload)

	// Empty playlist: the policy is not evaluated.
	l.Replace(nil)
	assert.Equal(t, -1, l.OnEnded().Next)
}

func TestList_NextPreviousBoundaries(t *testing.T) {
	l := New()
	l.Replace(items("a", "b"))

	_, ok := l.Next()
	assert.True(t, ok)
	_, ok = l.Next()
	assert.False(t, ok, "no wrap without loop-all")

	l.SetLoopMode(LoopAll)
	it, ok := l.Next()
	require.True(t, ok)
	assert.Equal(t, "a", it.Locator)

	it, ok = l.Previous()
	require.True(t, ok)
	assert.Equal(t, "b", it.Locator)
}

func TestList_ShuffleRestoreRoundTrip(t *testing.T) {
	l := New()
	l.SetSeed(7)
	original := items("a", "b", "c", "d", "e")
	l.Replace(original)
	l.Jump(2) // playing "c"

	l.Shuffle()
	assert.True(t, l.Shuffled())
	// The cursor follows the playing item.
	cur, ok := l.Current()
	require.True(t, ok)
	assert.Equal(t, "c", cur.Locator)

	// A second shuffle must not overwrite the captured order.
	l.Shuffle()

	l.Restore()
	assert.False(t, l.Shuffled())
	if diff := cmp.Diff(original, l.Items()); diff != "" {
		t.Fatalf("restore mismatch (-want +got):\n%s", diff)
	}
	cur, ok = l.Current()
	require.True(t, ok)
	assert.Equal(t, "c", cur.Locator)

	// Restore without a prior shuffle is a no-op.
	l.Restore()
	if diff := cmp.Diff(original, l.Items()); diff != "" {
		t.Fatalf("unexpected reorder (-want +got):\n%s", diff)
	}
}

func TestList_RestoreCursorDefaultsToZeroWhenItemUnlocatable(t *testing.T) {
	l := New()
	l.SetSeed(3)
	l.Replace(items("a", "b", "c"))
	l.Shuffle()

	// Play an item added after the shuffle: it has no position in the
	// captured order, so restore falls back to index 0.
	l.Add(Item{Locator: "late"})
	l.Jump(3)
	l.Restore()
	assert.Equal(t, 0, l.Cursor())
	cur, ok := l.Current()
	require.True(t, ok)
	assert.Equal(t, "a", cur.Locator)
}

func TestList_ShuffleKeepsAllItems(t *testing.T) {
	l := New()
	l.SetSeed(42)
	l.Replace(items("a", "b", "c", "d", "e", "f"))
	l.Shuffle()

	seen := map[string]bool{}
	for _, it := range l.Items() {
		seen[it.Locator] = true
	}
	assert.Len(t, seen, 6)
}

// ABOUTME: Tests for the time-windowed set
// ABOUTME: Validates insertion, timer reset, expiry, unique semantics, eviction and iteration while expiring

package timedset

import (
	"slices"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eqString(a, b string) bool { return a == b }

func newTestSet(t *testing.T, ttl time.Duration, opts ...Option) (*Set[string], *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	opts = append(opts, WithClock(clock))
	return New(ttl, eqString, opts...), clock
}

func TestSet_PutAndIterate(t *testing.T) {
	s, _ := newTestSet(t, 15*time.Second)

	s.Put("a")
	s.Put("b")
	s.Put("c")

	assert.Equal(t, []string{"a", "b", "c"}, slices.Collect(s.All()))
	assert.Equal(t, 3, s.Len())
}

func TestSet_PutWithoutUniqueKeepsDuplicates(t *testing.T) {
	s, _ := newTestSet(t, 15*time.Second)

	s.Put("a")
	s.Put("a")

	assert.Equal(t, 2, s.Len())
}

func TestSet_Expiry(t *testing.T) {
	s, clock := newTestSet(t, 15*time.Second)

	s.Put("a")
	clock.Advance(14 * time.Second)
	assert.Equal(t, []string{"a"}, slices.Collect(s.All()))

	clock.Advance(time.Second)
	assert.Empty(t, slices.Collect(s.All()), "entry must not be observable at its deadline")
	assert.Equal(t, 0, s.Len())

	_, ok := s.Find(func(v string) bool { return v == "a" })
	assert.False(t, ok)
}

func TestSet_ResetTimerFor(t *testing.T) {
	s, clock := newTestSet(t, 15*time.Second)

	s.Put("a")
	s.Put("b")
	clock.Advance(10 * time.Second)

	assert.True(t, s.ResetTimerFor("a"))
	clock.Advance(10 * time.Second)

	// b lapsed at 15s, a was extended to 25s
	assert.Equal(t, []string{"a"}, slices.Collect(s.All()))
}

func TestSet_ResetTimerFor_KeepsPosition(t *testing.T) {
	s, _ := newTestSet(t, 15*time.Second)

	s.Put("a")
	s.Put("b")
	s.Put("c")
	require.True(t, s.ResetTimerFor("a"))

	assert.Equal(t, []string{"a", "b", "c"}, slices.Collect(s.All()))
}

func TestSet_ResetTimerFor_Absent(t *testing.T) {
	s, clock := newTestSet(t, 15*time.Second)

	assert.False(t, s.ResetTimerFor("missing"))

	s.Put("a")
	clock.Advance(15 * time.Second)
	assert.False(t, s.ResetTimerFor("a"), "expired entries cannot be revived")
	assert.Equal(t, 0, s.Len())
}

func TestSet_UniqueRefreshesInPlace(t *testing.T) {
	type item struct {
		key   string
		value int
	}
	clock := clockwork.NewFakeClock()
	s := New(15*time.Second, func(a, b item) bool { return a.key == b.key },
		WithUnique(), WithClock(clock))

	s.Put(item{key: "a", value: 1})
	s.Put(item{key: "b", value: 1})
	clock.Advance(10 * time.Second)
	s.Put(item{key: "a", value: 2})

	assert.Equal(t, []item{{"a", 2}, {"b", 1}}, slices.Collect(s.All()))

	clock.Advance(10 * time.Second)
	assert.Equal(t, []item{{"a", 2}}, slices.Collect(s.All()))
}

func TestSet_MaxSizeEvictsOldest(t *testing.T) {
	s, _ := newTestSet(t, 15*time.Second, WithMaxSize(3))

	s.Put("first")
	s.Put("second")
	s.Put("third")
	s.Put("fourth")

	assert.Equal(t, []string{"second", "third", "fourth"}, slices.Collect(s.All()))

	s.Put("fifth")
	assert.Equal(t, []string{"third", "fourth", "fifth"}, slices.Collect(s.All()))
}

func TestSet_MaxSizePrefersExpiredEntries(t *testing.T) {
	s, clock := newTestSet(t, 15*time.Second, WithMaxSize(2))

	s.Put("old")
	clock.Advance(10 * time.Second)
	s.Put("young")
	clock.Advance(6 * time.Second)

	// old lapsed, so inserting does not evict young
	s.Put("new")
	assert.Equal(t, []string{"young", "new"}, slices.Collect(s.All()))
}

func TestSet_IterationWhileExpiring(t *testing.T) {
	s, clock := newTestSet(t, 15*time.Second)

	s.Put("a")
	clock.Advance(5 * time.Second)
	s.Put("b")
	clock.Advance(5 * time.Second)
	s.Put("c")

	var seen []string
	for v := range s.All() {
		seen = append(seen, v)
		if v == "a" {
			// b lapses while we are part way through the walk
			clock.Advance(10 * time.Second)
		}
	}

	assert.Equal(t, []string{"a", "c"}, seen)
	assert.Equal(t, []string{"c"}, slices.Collect(s.All()))
}

func TestSet_IterationEarlyStop(t *testing.T) {
	s, _ := newTestSet(t, 15*time.Second)
	s.Put("a")
	s.Put("b")

	for v := range s.All() {
		assert.Equal(t, "a", v)
		break
	}
	assert.Equal(t, 2, s.Len())
}

func TestSet_ResetDuringIteration(t *testing.T) {
	s, clock := newTestSet(t, 15*time.Second)
	s.Put("a")
	s.Put("b")
	clock.Advance(10 * time.Second)

	for v := range s.All() {
		s.ResetTimerFor(v)
	}
	clock.Advance(10 * time.Second)

	assert.Equal(t, []string{"a", "b"}, slices.Collect(s.All()))
}

func TestSet_Find(t *testing.T) {
	s, _ := newTestSet(t, 15*time.Second)
	s.Put("apple")
	s.Put("avocado")
	s.Put("banana")

	v, ok := s.Find(func(v string) bool { return v[0] == 'a' })
	require.True(t, ok)
	assert.Equal(t, "apple", v, "first match in insertion order wins")

	_, ok = s.Find(func(v string) bool { return v == "cherry" })
	assert.False(t, ok)
}

func TestSet_Sweep(t *testing.T) {
	s, clock := newTestSet(t, 15*time.Second)
	s.Put("a")
	s.Put("b")
	clock.Advance(5 * time.Second)
	s.Put("c")

	clock.Advance(10 * time.Second)
	assert.Equal(t, 2, s.Sweep())
	assert.Equal(t, 0, s.Sweep())
	assert.Equal(t, 1, s.Len())
}

func TestSet_TTL(t *testing.T) {
	s, _ := newTestSet(t, 42*time.Second)
	assert.Equal(t, 42*time.Second, s.TTL())
}

func TestSet_RealClockDefault(t *testing.T) {
	s := New(10*time.Millisecond, eqString)
	s.Put("a")
	assert.Equal(t, 1, s.Len())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, s.Len())
}

// ABOUTME: Generic time-windowed set whose entries lapse a fixed TTL after insertion or reset
// ABOUTME: Keeps insertion order in a linked list and purges expired entries lazily on access

package timedset

import (
	"container/list"
	"iter"
	"time"

	"github.com/jonboulle/clockwork"
)

// entry stores an item and the instant it stops being observable.
type entry[T any] struct {
	item    T
	expires time.Time
}

// Set holds items for a fixed duration since they were last put or reset.
// Items are observable only while now is before their expiry. Iteration
// order is insertion order; resetting a timer never moves an item.
//
// Set is not safe for concurrent use. Callers that share a Set between
// goroutines must serialize access themselves.
type Set[T any] struct {
	ttl     time.Duration
	equal   func(a, b T) bool
	unique  bool
	maxSize int
	clock   clockwork.Clock
	order   *list.List // of *entry[T], oldest at front
}

// Option configures a Set.
type Option func(*settings)

type settings struct {
	unique  bool
	maxSize int
	clock   clockwork.Clock
}

// WithUnique keeps at most one live instance per equality key. Putting an
// item equal to a live one replaces it in place and resets its timer.
func WithUnique() Option {
	return func(s *settings) { s.unique = true }
}

// WithMaxSize caps the number of stored entries. When the cap is reached
// the oldest entry is evicted to make room. Zero means unbounded.
func WithMaxSize(n int) Option {
	return func(s *settings) { s.maxSize = n }
}

// WithClock sets the time source. Defaults to the real clock.
func WithClock(c clockwork.Clock) Option {
	return func(s *settings) { s.clock = c }
}

// New creates a Set whose entries live for ttl. equal decides whether two
// items are the same logical item; it is used by ResetTimerFor and by the
// unique option.
func New[T any](ttl time.Duration, equal func(a, b T) bool, opts ...Option) *Set[T] {
	cfg := settings{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.clock == nil {
		cfg.clock = clockwork.NewRealClock()
	}
	return &Set[T]{
		ttl:     ttl,
		equal:   equal,
		unique:  cfg.unique,
		maxSize: cfg.maxSize,
		clock:   cfg.clock,
		order:   list.New(),
	}
}

// TTL returns the window length.
func (s *Set[T]) TTL() time.Duration {
	return s.ttl
}

// Put inserts item with a fresh expiry. With unique semantics an equal live
// item is replaced in place instead.
func (s *Set[T]) Put(item T) {
	now := s.clock.Now()

	if s.unique {
		if e := s.find(now, func(v T) bool { return s.equal(v, item) }); e != nil {
			ent := e.Value.(*entry[T])
			ent.item = item
			ent.expires = now.Add(s.ttl)
			return
		}
	}

	if s.maxSize > 0 {
		s.purgeExpired(now)
		for s.order.Len() >= s.maxSize {
			s.order.Remove(s.order.Front())
		}
	}

	s.order.PushBack(&entry[T]{item: item, expires: now.Add(s.ttl)})
}

// ResetTimerFor extends the expiry of a live item equal to item to now+TTL.
// It returns false, and does nothing, if no such item is live.
func (s *Set[T]) ResetTimerFor(item T) bool {
	now := s.clock.Now()
	e := s.find(now, func(v T) bool { return s.equal(v, item) })
	if e == nil {
		return false
	}
	e.Value.(*entry[T]).expires = now.Add(s.ttl)
	return true
}

// Find returns the first live item, in insertion order, matching pred.
func (s *Set[T]) Find(pred func(T) bool) (T, bool) {
	if e := s.find(s.clock.Now(), pred); e != nil {
		return e.Value.(*entry[T]).item, true
	}
	var zero T
	return zero, false
}

// All returns the live items in insertion order. Expiry is evaluated as the
// sequence advances, and lapsed entries are unlinked as a side effect.
// Items may be put or reset while iterating.
func (s *Set[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for e := s.order.Front(); e != nil; {
			next := e.Next()
			ent := e.Value.(*entry[T])
			if !s.clock.Now().Before(ent.expires) {
				s.order.Remove(e)
				e = next
				continue
			}
			if !yield(ent.item) {
				return
			}
			e = next
		}
	}
}

// Len returns the number of live items.
func (s *Set[T]) Len() int {
	s.purgeExpired(s.clock.Now())
	return s.order.Len()
}

// Sweep removes every expired entry and returns how many were removed.
func (s *Set[T]) Sweep() int {
	return s.purgeExpired(s.clock.Now())
}

// find walks the list, dropping expired entries, until pred matches.
func (s *Set[T]) find(now time.Time, pred func(T) bool) *list.Element {
	for e := s.order.Front(); e != nil; {
		next := e.Next()
		ent := e.Value.(*entry[T])
		if !now.Before(ent.expires) {
			s.order.Remove(e)
		} else if pred(ent.item) {
			return e
		}
		e = next
	}
	return nil
}

func (s *Set[T]) purgeExpired(now time.Time) int {
	removed := 0
	for e := s.order.Front(); e != nil; {
		next := e.Next()
		if !now.Before(e.Value.(*entry[T]).expires) {
			s.order.Remove(e)
			removed++
		}
		e = next
	}
	return removed
}

// ABOUTME: Correlation record linking an original message to its latest rendered form
// ABOUTME: Tracks per-target repeat counters and first-seen times used to derive line identity

package correlation

import (
	"encoding/binary"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/2389/chatmerge/internal/chattext"
)

// TargetID identifies one output target. Counters and first-seen times are
// namespaced by it.
type TargetID string

// Identity recognizes a displayed line as belonging to a record's current
// streak on a target. The zero Identity is never assigned to a tracked line
// in practice and marks untracked entries.
type Identity uint64

func (id Identity) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}

// countSuffixStyle de-emphasizes the repeat annotation.
var countSuffixStyle = chattext.Style{Color: chattext.ColorGray}

// Record is the state kept for one logical message.
type Record struct {
	original  chattext.Text
	rendered  chattext.Text
	counters  map[TargetID]int
	firstSeen map[TargetID]time.Time
}

// NewRecord creates a record for a newly seen original message.
func NewRecord(original, rendered chattext.Text) *Record {
	return &Record{
		original:  original,
		rendered:  rendered,
		counters:  make(map[TargetID]int),
		firstSeen: make(map[TargetID]time.Time),
	}
}

// Original returns the canonical form. It never changes.
func (r *Record) Original() chattext.Text {
	return r.original
}

// Rendered returns the latest known rendered form.
func (r *Record) Rendered() chattext.Text {
	return r.rendered
}

// Count returns the repeat count for target. A record with no recorded
// count reports 1.
func (r *Record) Count(target TargetID) int {
	if n, ok := r.counters[target]; ok {
		return n
	}
	return 1
}

// IncrementCount bumps the repeat count for target and returns it. The
// first increment yields 2.
func (r *Record) IncrementCount(target TargetID) int {
	n := r.Count(target) + 1
	r.counters[target] = n
	return n
}

// ResetAppearance ends a duplicate streak on target. If the target had a
// count, the count is dropped and the first-seen time moves to now so the
// next identity differs from the stale streak's. It reports whether a
// streak was reset.
func (r *Record) ResetAppearance(target TargetID, now time.Time) bool {
	if _, ok := r.counters[target]; !ok {
		return false
	}
	delete(r.counters, target)
	r.firstSeen[target] = now
	return true
}

// FirstSeen returns when the record was last established as current on
// target.
func (r *Record) FirstSeen(target TargetID) (time.Time, bool) {
	t, ok := r.firstSeen[target]
	return t, ok
}

// Identity derives the line identity for target from the original's coded
// form and the target's first-seen time, initializing first-seen to now on
// first use.
func (r *Record) Identity(target TargetID, now time.Time) Identity {
	seen, ok := r.firstSeen[target]
	if !ok {
		seen = now
		r.firstSeen[target] = seen
	}
	return deriveIdentity(r.original, seen)
}

// RenderedWithCount returns the rendered text with a gray " [xN]" suffix
// for target's current count.
func (r *Record) RenderedWithCount(target TargetID) chattext.Text {
	suffix := chattext.Styled(fmt.Sprintf(" [x%d]", r.Count(target)), countSuffixStyle)
	return r.rendered.Append(suffix)
}

// clone returns a detached copy safe to read outside the store lock.
func (r *Record) clone() *Record {
	c := NewRecord(r.original, r.rendered)
	for k, v := range r.counters {
		c.counters[k] = v
	}
	for k, v := range r.firstSeen {
		c.firstSeen[k] = v
	}
	return c
}

func deriveIdentity(original chattext.Text, firstSeen time.Time) Identity {
	// blake2b.New only fails for an invalid size or oversized key.
	h, _ := blake2b.New(8, nil)
	h.Write([]byte(original.Coded()))
	h.Write([]byte{0})
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(firstSeen.UnixNano()))
	h.Write(ts[:])
	return Identity(binary.BigEndian.Uint64(h.Sum(nil)))
}

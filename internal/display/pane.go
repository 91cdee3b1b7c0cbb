// ABOUTME: In-memory chat pane: a bounded, append-only display list with an insertion hook
// ABOUTME: Implements merge.Target and publishes every change to subscribers

package display

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/2389/chatmerge/internal/chattext"
	"github.com/2389/chatmerge/internal/correlation"
	"github.com/2389/chatmerge/internal/merge"
)

// DefaultHistoryLimit is how many entries a pane keeps before dropping the oldest.
const DefaultHistoryLimit = 100

// Entry is one displayed line.
type Entry struct {
	ID       string // unique per displayed line, stable across replacements
	Text     chattext.Text
	Identity correlation.Identity
	At       time.Time
}

// Interceptor is consulted before the pane appends text on its own. It
// returns true when it has already handled the insertion.
type Interceptor interface {
	InterceptInsertion(target merge.Target, text chattext.Text) bool
}

// PaneConfig configures a Pane.
type PaneConfig struct {
	Name         string
	HistoryLimit int
	Clock        clockwork.Clock
}

// Pane is an output target holding the most recent lines, oldest first.
type Pane struct {
	id          correlation.TargetID
	name        string
	limit       int
	clock       clockwork.Clock
	interceptor Interceptor
	broadcaster *Broadcaster
	logger      *slog.Logger

	mu      sync.RWMutex
	entries []Entry
}

// NewPane creates a pane. interceptor and broadcaster may be nil. Pass nil
// logger for default.
func NewPane(cfg PaneConfig, interceptor Interceptor, broadcaster *Broadcaster, logger *slog.Logger) *Pane {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	id := correlation.TargetID(uuid.New().String())
	if cfg.Name == "" {
		cfg.Name = string(id)
	}
	return &Pane{
		id:          id,
		name:        cfg.Name,
		limit:       cfg.HistoryLimit,
		clock:       cfg.Clock,
		interceptor: interceptor,
		broadcaster: broadcaster,
		logger:      logger.With("component", "pane", "pane", cfg.Name),
	}
}

// Name returns the pane's configured name.
func (p *Pane) Name() string {
	return p.name
}

// Add is the pane's insertion path. The interceptor decides first; the pane
// appends text untracked only if the interceptor did not handle it.
func (p *Pane) Add(text chattext.Text) {
	if p.interceptor != nil && p.interceptor.InterceptInsertion(p, text) {
		return
	}
	p.AppendEntry(text, 0)
}

// TargetID implements merge.Target.
func (p *Pane) TargetID() correlation.TargetID {
	return p.id
}

// LastEntry implements merge.Target.
func (p *Pane) LastEntry() (merge.Entry, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if len(p.entries) == 0 {
		return merge.Entry{}, false
	}
	last := p.entries[len(p.entries)-1]
	return merge.Entry{Text: last.Text, Identity: last.Identity}, true
}

// AppendEntry implements merge.Target.
func (p *Pane) AppendEntry(text chattext.Text, id correlation.Identity) {
	entry := Entry{
		ID:       uuid.New().String(),
		Text:     text,
		Identity: id,
		At:       p.clock.Now(),
	}

	p.mu.Lock()
	p.entries = append(p.entries, entry)
	if over := len(p.entries) - p.limit; over > 0 {
		p.entries = append(p.entries[:0:0], p.entries[over:]...)
	}
	p.mu.Unlock()

	p.publish(ChangeAppended, entry)
}

// ReplaceLastEntry implements merge.Target. Replacing on an empty pane
// appends instead.
func (p *Pane) ReplaceLastEntry(text chattext.Text, id correlation.Identity) {
	p.mu.Lock()
	n := len(p.entries)
	if n == 0 {
		p.mu.Unlock()
		p.logger.Warn("replace on empty pane, appending instead")
		p.AppendEntry(text, id)
		return
	}
	entry := p.entries[n-1]
	entry.Text = text
	entry.Identity = id
	entry.At = p.clock.Now()
	p.entries[n-1] = entry
	p.mu.Unlock()

	p.publish(ChangeReplaced, entry)
}

// Entries returns a copy of the displayed lines, oldest first.
func (p *Pane) Entries() []Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Len returns the number of displayed lines.
func (p *Pane) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}

// Clear drops all displayed lines.
func (p *Pane) Clear() {
	p.mu.Lock()
	p.entries = nil
	p.mu.Unlock()
	p.publish(ChangeCleared, Entry{At: p.clock.Now()})
}

func (p *Pane) publish(kind ChangeKind, entry Entry) {
	if p.broadcaster == nil {
		return
	}
	p.broadcaster.Publish(Change{
		Kind:     kind,
		PaneID:   p.id,
		PaneName: p.name,
		Entry:    entry,
	})
}

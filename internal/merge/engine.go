// ABOUTME: Merge engine that intercepts insertions into an output target
// ABOUTME: Decides whether a rendered line repeats the last entry, starts a fresh entry, or passes through

package merge

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/2389/chatmerge/internal/chattext"
	"github.com/2389/chatmerge/internal/correlation"
)

// Entry is a line currently shown by a target.
type Entry struct {
	Text     chattext.Text
	Identity correlation.Identity
}

// Target is the display list surface the engine reads and mutates.
type Target interface {
	TargetID() correlation.TargetID
	LastEntry() (Entry, bool)
	AppendEntry(text chattext.Text, id correlation.Identity)
	ReplaceLastEntry(text chattext.Text, id correlation.Identity)
}

// Decision is the outcome of an intercepted insertion.
type Decision int

const (
	// DecisionPassThrough means no record matched and the default insertion ran.
	DecisionPassThrough Decision = iota
	// DecisionAppended means the engine appended a fresh tracked entry.
	DecisionAppended
	// DecisionMerged means the engine replaced the last entry with a counted repeat.
	DecisionMerged
)

func (d Decision) String() string {
	switch d {
	case DecisionPassThrough:
		return "pass_through"
	case DecisionAppended:
		return "appended"
	case DecisionMerged:
		return "merged"
	default:
		return "unknown"
	}
}

// Suppressed reports whether the sink's own insertion must be skipped.
func (d Decision) Suppressed() bool {
	return d != DecisionPassThrough
}

// Stats counts decisions made since the engine was created.
type Stats struct {
	Appended    uint64
	Merged      uint64
	PassThrough uint64
}

// Engine correlates emitted message pairs with insertions into targets.
//
// Ordering contract: for any message, NotifyMessagePair (or
// NotifyClientside) must be called before the sink inserts the rendered
// text, otherwise the insertion is treated as foreign.
type Engine struct {
	store  *correlation.Store
	logger *slog.Logger

	appended    atomic.Uint64
	merged      atomic.Uint64
	passThrough atomic.Uint64
}

// New creates an engine over store. Pass nil logger for default.
func New(store *correlation.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:  store,
		logger: logger.With("component", "merge"),
	}
}

// NotifyMessagePair records that original was emitted and will be displayed
// as rendered.
func (e *Engine) NotifyMessagePair(original, rendered chattext.Text) {
	e.store.RecordOrRefresh(original, rendered)
}

// NotifyClientside records a locally produced message, which is displayed
// unmodified.
func (e *Engine) NotifyClientside(msg chattext.Text) {
	e.store.RecordOrRefresh(msg, msg)
}

// InterceptInsertion decides what to do with text about to be appended to
// target. When it returns true the engine has already updated target and
// the sink must not append text itself.
func (e *Engine) InterceptInsertion(target Target, text chattext.Text) bool {
	return e.OnInsertionRequested(target, text, nil).Suppressed()
}

// OnInsertionRequested runs the merge decision for rendered on target.
// defaultInsert, if non-nil, performs the sink's own append and is called
// only for pass-through decisions.
func (e *Engine) OnInsertionRequested(target Target, rendered chattext.Text, defaultInsert func()) Decision {
	var decision Decision
	found := e.store.WithRendered(rendered, func(rec *correlation.Record, now time.Time) {
		decision = e.place(target, rec, now)
	})

	if !found {
		e.passThrough.Add(1)
		e.logger.Warn("directly injected message in output", "target", target.TargetID(), "text", rendered.String())
		if defaultInsert != nil {
			defaultInsert()
		}
		return DecisionPassThrough
	}

	switch decision {
	case DecisionMerged:
		e.merged.Add(1)
	case DecisionAppended:
		e.appended.Add(1)
	}
	return decision
}

// place merges rec into target's last entry or appends it fresh. It runs
// under the store lock.
func (e *Engine) place(target Target, rec *correlation.Record, now time.Time) Decision {
	tid := target.TargetID()

	if last, ok := target.LastEntry(); ok {
		id := rec.Identity(tid, now)
		if last.Identity == id {
			count := rec.IncrementCount(tid)
			target.ReplaceLastEntry(rec.RenderedWithCount(tid), id)
			e.logger.Debug("merged repeated message",
				"target", tid,
				"count", count,
				"identity", id.String())
			return DecisionMerged
		}
	}

	rec.ResetAppearance(tid, now)
	id := rec.Identity(tid, now)
	target.AppendEntry(rec.Rendered(), id)
	e.logger.Debug("appended message",
		"target", tid,
		"identity", id.String())
	return DecisionAppended
}

// Stats returns decision counts.
func (e *Engine) Stats() Stats {
	return Stats{
		Appended:    e.appended.Load(),
		Merged:      e.merged.Load(),
		PassThrough: e.passThrough.Load(),
	}
}

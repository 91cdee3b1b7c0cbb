// ABOUTME: In-memory fan-out of pane changes to renderers and the transcript journal
// ABOUTME: Subscribers register per pane name, or for every pane, and receive changes without blocking producers

package display

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/2389/chatmerge/internal/correlation"
)

const (
	// subscriberBufferSize is the default channel buffer for each subscriber.
	// One insert changes at most one entry per pane, so 64 covers a consumer
	// watching up to 64 panes that drains between inserts. Wider consumers
	// use SubscribeBuffered.
	subscriberBufferSize = 64

	// AllPanes subscribes to changes from every pane.
	AllPanes = "*"
)

// ChangeKind says what happened to a pane.
type ChangeKind string

const (
	ChangeAppended ChangeKind = "appended"
	ChangeReplaced ChangeKind = "replaced"
	ChangeCleared  ChangeKind = "cleared"
)

// Change is one mutation of a pane's visible list.
type Change struct {
	Kind     ChangeKind
	PaneID   correlation.TargetID
	PaneName string
	Entry    Entry
}

// Broadcaster provides in-memory pub/sub for pane changes. Subscribers
// register for a pane name (or AllPanes) and receive changes as they
// happen. Panes publish from inside merge decisions, which hold the
// correlation store lock, so Publish must never block.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]chan Change // pane name -> subID -> ch
	logger      *slog.Logger
}

// NewBroadcaster creates a broadcaster. Pass nil logger for default.
func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		subscribers: make(map[string]map[string]chan Change),
		logger:      logger.With("component", "broadcaster"),
	}
}

// Subscribe registers a subscriber for changes on the named pane, or on all
// panes when pane is AllPanes. Returns a channel that receives changes and a
// subscription ID for later unsubscription. The subscription is removed when
// ctx is cancelled.
func (b *Broadcaster) Subscribe(ctx context.Context, pane string) (<-chan Change, string) {
	return b.SubscribeBuffered(ctx, pane, subscriberBufferSize)
}

// SubscribeBuffered is Subscribe with an explicit channel buffer. A consumer
// that drains only between inserts needs room for every change one insert
// can cause, which is one per pane it watches. Sizes below the default are
// raised to it.
func (b *Broadcaster) SubscribeBuffered(ctx context.Context, pane string, size int) (<-chan Change, string) {
	if size < subscriberBufferSize {
		size = subscriberBufferSize
	}
	subID := uuid.New().String()
	ch := make(chan Change, size)

	b.mu.Lock()
	if _, ok := b.subscribers[pane]; !ok {
		b.subscribers[pane] = make(map[string]chan Change)
	}
	b.subscribers[pane][subID] = ch
	b.mu.Unlock()

	b.logger.Debug("subscriber added", "pane", pane, "sub_id", subID)

	// Auto-cleanup on context cancellation
	go func() {
		<-ctx.Done()
		b.Unsubscribe(pane, subID)
	}()

	return ch, subID
}

// Publish sends a change to subscribers of its pane and of AllPanes.
// Non-blocking: changes are dropped for subscribers whose channels are full.
// Sends happen under the read lock so Unsubscribe cannot close a channel
// mid-send.
func (b *Broadcaster) Publish(change Change) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, key := range []string{change.PaneName, AllPanes} {
		for _, ch := range b.subscribers[key] {
			select {
			case ch <- change:
				// Sent
			default:
				// Subscriber channel full. The pane already holds the
				// entry, so only this subscriber's copy goes stale: a
				// renderer misses a line or a replace, a journal misses a
				// row. Consumers avoid this by sizing the buffer to the
				// panes they watch and draining between inserts.
				b.logger.Warn("dropped change for slow subscriber",
					"pane", change.PaneName,
					"kind", change.Kind)
			}
		}
	}
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broadcaster) Unsubscribe(pane, subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.subscribers[pane]
	if !ok {
		return
	}
	ch, exists := subs[subID]
	if !exists {
		return
	}

	delete(subs, subID)
	close(ch)

	if len(subs) == 0 {
		delete(b.subscribers, pane)
	}

	b.logger.Debug("subscriber removed", "pane", pane, "sub_id", subID)
}

// Close closes all subscriber channels.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for pane, subs := range b.subscribers {
		for subID, ch := range subs {
			close(ch)
			delete(subs, subID)
		}
		delete(b.subscribers, pane)
	}
}

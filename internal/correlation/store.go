// ABOUTME: Thread-safe store of correlation records held for a bounded time window
// ABOUTME: Records or refreshes original/rendered pairs and finds records by rendered text

package correlation

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/2389/chatmerge/internal/chattext"
	"github.com/2389/chatmerge/internal/timedset"
)

// DefaultWindow is how long a record stays observable without a refresh.
const DefaultWindow = 15 * time.Second

// StoreConfig configures a Store.
type StoreConfig struct {
	// Window is the record lifetime since last refresh. Defaults to DefaultWindow.
	Window time.Duration
	// MaxRecords caps live records; the oldest is evicted first. Zero is unbounded.
	MaxRecords int
	// SweepInterval enables a background purge of lapsed records. Zero
	// disables it; lapsed records are then dropped on access only.
	SweepInterval time.Duration
	// Clock defaults to the real clock.
	Clock clockwork.Clock
}

// Store holds correlation records for a sliding time window. All methods
// are safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	records *timedset.Set[*Record]
	clock   clockwork.Clock
	logger  *slog.Logger
	done    chan struct{}
	closed  bool
}

// NewStore creates a store. Pass nil logger for default. When
// cfg.SweepInterval is positive a background goroutine purges lapsed
// records until Close is called.
func NewStore(cfg StoreConfig, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	s := &Store{
		records: timedset.New(cfg.Window, sameOriginal,
			timedset.WithUnique(),
			timedset.WithMaxSize(cfg.MaxRecords),
			timedset.WithClock(cfg.Clock)),
		clock:  cfg.Clock,
		logger: logger.With("component", "correlation"),
		done:   make(chan struct{}),
	}
	if cfg.SweepInterval > 0 {
		go s.cleanup(cfg.SweepInterval)
	}
	return s
}

// sameOriginal is the set's equality key. RecordOrRefresh finds the live
// record first and refreshes that instance, so its per-target state
// survives; Put is only reached for originals with no live record.
func sameOriginal(a, b *Record) bool {
	return a.original.Equal(b.original)
}

// Clock returns the store's time source.
func (s *Store) Clock() clockwork.Clock {
	return s.clock
}

// Window returns the record lifetime.
func (s *Store) Window() time.Duration {
	return s.records.TTL()
}

// RecordOrRefresh stores the pairing of original and rendered. If a live
// record already has an equal original (styling included), its rendered
// form is replaced and its timer reset; otherwise a new record is added.
// It reports whether a new record was created.
func (s *Store) RecordOrRefresh(original, rendered chattext.Text) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.records.Find(func(r *Record) bool { return r.original.Equal(original) }); ok {
		rec.rendered = rendered
		s.records.ResetTimerFor(rec)
		s.logger.Debug("correlation refreshed", "original", original.String(), "rendered", rendered.String())
		return false
	}

	s.records.Put(NewRecord(original, rendered))
	s.logger.Debug("correlation recorded", "original", original.String(), "rendered", rendered.String())
	return true
}

// FindByRendered returns a detached copy of the earliest live record whose
// current rendered form equals rendered.
func (s *Store) FindByRendered(rendered chattext.Text) (*Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.findByRenderedLocked(rendered)
	if !ok {
		return nil, false
	}
	return rec.clone(), true
}

// WithRendered looks up the earliest live record whose rendered form equals
// rendered and calls fn with it while holding the store lock, so the lookup
// and any mutation fn performs are atomic. now is the instant of the lookup.
// It reports whether a record was found.
func (s *Store) WithRendered(rendered chattext.Text, fn func(rec *Record, now time.Time)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.findByRenderedLocked(rendered)
	if !ok {
		return false
	}
	fn(rec, s.clock.Now())
	return true
}

func (s *Store) findByRenderedLocked(rendered chattext.Text) (*Record, bool) {
	return s.records.Find(func(r *Record) bool { return r.rendered.Equal(rendered) })
}

// Len returns the number of live records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records.Len()
}

// Sweep purges lapsed records and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records.Sweep()
}

// cleanup runs in a background goroutine, periodically removing lapsed records.
func (s *Store) cleanup(interval time.Duration) {
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("swept lapsed records", "count", n)
			}
		case <-s.done:
			return
		}
	}
}

// Close stops the background sweeper. It is safe to call multiple times.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.done)
		s.closed = true
	}
}

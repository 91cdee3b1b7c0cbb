// ABOUTME: Hub owns the named panes fed by one message stream
// ABOUTME: Creates panes on demand, all sharing one interceptor and broadcaster

package display

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/jonboulle/clockwork"
)

// Hub manages a set of named panes.
type Hub struct {
	interceptor  Interceptor
	broadcaster  *Broadcaster
	historyLimit int
	clock        clockwork.Clock
	logger       *slog.Logger

	mu    sync.RWMutex
	panes map[string]*Pane
}

// HubConfig configures a Hub.
type HubConfig struct {
	HistoryLimit int
	Clock        clockwork.Clock
}

// NewHub creates a hub. Pass nil logger for default.
func NewHub(cfg HubConfig, interceptor Interceptor, broadcaster *Broadcaster, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		interceptor:  interceptor,
		broadcaster:  broadcaster,
		historyLimit: cfg.HistoryLimit,
		clock:        cfg.Clock,
		logger:       logger,
		panes:        make(map[string]*Pane),
	}
}

// Pane returns the named pane, creating it if needed.
func (h *Hub) Pane(name string) *Pane {
	h.mu.RLock()
	p, ok := h.panes[name]
	h.mu.RUnlock()
	if ok {
		return p
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if p, ok := h.panes[name]; ok {
		return p
	}
	p = NewPane(PaneConfig{
		Name:         name,
		HistoryLimit: h.historyLimit,
		Clock:        h.clock,
	}, h.interceptor, h.broadcaster, h.logger)
	h.panes[name] = p
	h.logger.Debug("pane created", "pane", name, "target_id", p.TargetID())
	return p
}

// Lookup returns the named pane if it exists.
func (h *Hub) Lookup(name string) (*Pane, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	p, ok := h.panes[name]
	return p, ok
}

// Names returns the pane names in sorted order.
func (h *Hub) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.panes))
	for name := range h.panes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ABOUTME: Mock LineStore implementation for testing
// ABOUTME: Allows journal and CLI tests to run without SQLite

package store

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// MockStore is an in-memory LineStore implementation for testing.
type MockStore struct {
	mu     sync.RWMutex
	lines  map[string]*Line    // keyed by line ID
	panes  map[string][]string // pane -> line IDs in seq order
	closed bool

	// SaveErr, when set, is returned by SaveLine.
	SaveErr error
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		lines: make(map[string]*Line),
		panes: make(map[string][]string),
	}
}

// SaveLine appends a line and assigns its Seq.
func (m *MockStore) SaveLine(ctx context.Context, line *Line) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil {
		return m.SaveErr
	}
	if _, exists := m.lines[line.ID]; exists {
		return errors.New("line already exists")
	}

	line.Seq = int64(len(m.panes[line.Pane]) + 1)

	// Make a copy to avoid external modification
	l := *line
	m.lines[l.ID] = &l
	m.panes[l.Pane] = append(m.panes[l.Pane], l.ID)
	return nil
}

// UpdateLine rewrites a saved line and bumps its revision.
func (m *MockStore) UpdateLine(ctx context.Context, line *Line) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.lines[line.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Text = line.Text
	existing.Identity = line.Identity
	existing.UpdatedAt = line.UpdatedAt
	existing.Revision++
	line.Revision = existing.Revision
	return nil
}

// GetLine retrieves a line by ID.
func (m *MockStore) GetLine(ctx context.Context, id string) (*Line, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.lines[id]
	if !ok {
		return nil, ErrNotFound
	}
	result := *l
	return &result, nil
}

// GetLines returns the newest limit lines of a pane, oldest first.
func (m *MockStore) GetLines(ctx context.Context, pane string, limit int) ([]*Line, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.panes[pane]
	if limit > 0 && len(ids) > limit {
		ids = ids[len(ids)-limit:]
	}

	result := make([]*Line, 0, len(ids))
	for _, id := range ids {
		l := *m.lines[id]
		result = append(result, &l)
	}
	return result, nil
}

// ListPanes returns pane names with saved lines, sorted.
func (m *MockStore) ListPanes(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	panes := make([]string, 0, len(m.panes))
	for name := range m.panes {
		panes = append(panes, name)
	}
	sort.Strings(panes)
	return panes, nil
}

// Close marks the store closed.
func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockStore) Closed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

var (
	_ LineStore = (*MockStore)(nil)
	_ LineStore = (*SQLiteStore)(nil)
)

// ABOUTME: Tests for chat panes driven by the merge engine
// ABOUTME: Covers the insertion hook, history bounds, change publishing and the end-to-end repeat scenario

package display

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/chatmerge/internal/chattext"
	"github.com/2389/chatmerge/internal/correlation"
	"github.com/2389/chatmerge/internal/merge"
)

func txt(s string) chattext.Text { return chattext.Plain(s) }

func newEngine(t *testing.T, clock clockwork.Clock) *merge.Engine {
	t.Helper()
	st := correlation.NewStore(correlation.StoreConfig{Clock: clock}, nil)
	t.Cleanup(st.Close)
	return merge.New(st, nil)
}

func lines(p *Pane) []string {
	var out []string
	for _, e := range p.Entries() {
		out = append(out, e.Text.String())
	}
	return out
}

func TestPane_AddWithoutInterceptorAppends(t *testing.T) {
	p := NewPane(PaneConfig{Name: "main"}, nil, nil, nil)

	p.Add(txt("one"))
	p.Add(txt("one"))

	assert.Equal(t, []string{"one", "one"}, lines(p))
	last, ok := p.LastEntry()
	require.True(t, ok)
	assert.Zero(t, last.Identity)
}

func TestPane_EndToEndRepeatMerges(t *testing.T) {
	clock := clockwork.NewFakeClock()
	engine := newEngine(t, clock)
	p := NewPane(PaneConfig{Name: "main", Clock: clock}, engine, nil, nil)

	engine.NotifyMessagePair(txt("Hi"), txt("Hi"))
	for i := 0; i < 3; i++ {
		p.Add(txt("Hi"))
		clock.Advance(time.Second)
	}

	assert.Equal(t, []string{"Hi [x3]"}, lines(p))
	assert.Equal(t, 1, p.Len())
}

func TestPane_UnmatchedInsertionFallsBackToDefault(t *testing.T) {
	engine := newEngine(t, clockwork.NewFakeClock())
	p := NewPane(PaneConfig{Name: "main"}, engine, nil, nil)

	p.Add(txt("injected"))
	p.Add(txt("injected"))

	assert.Equal(t, []string{"injected", "injected"}, lines(p))
	assert.Equal(t, uint64(2), engine.Stats().PassThrough)
}

func TestPane_IndependentPanes(t *testing.T) {
	clock := clockwork.NewFakeClock()
	engine := newEngine(t, clock)
	one := NewPane(PaneConfig{Name: "one", Clock: clock}, engine, nil, nil)
	two := NewPane(PaneConfig{Name: "two", Clock: clock}, engine, nil, nil)

	engine.NotifyMessagePair(txt("A"), txt("B"))
	one.Add(txt("B"))
	one.Add(txt("B"))
	two.Add(txt("B"))

	assert.Equal(t, []string{"B [x2]"}, lines(one))
	assert.Equal(t, []string{"B"}, lines(two))
	assert.NotEqual(t, one.TargetID(), two.TargetID())
}

func TestPane_HistoryLimit(t *testing.T) {
	p := NewPane(PaneConfig{Name: "main", HistoryLimit: 3}, nil, nil, nil)

	for _, s := range []string{"1", "2", "3", "4", "5"} {
		p.Add(txt(s))
	}

	assert.Equal(t, []string{"3", "4", "5"}, lines(p))
}

func TestPane_DefaultHistoryLimit(t *testing.T) {
	p := NewPane(PaneConfig{}, nil, nil, nil)
	for i := 0; i < DefaultHistoryLimit+5; i++ {
		p.Add(txt("x"))
	}
	assert.Equal(t, DefaultHistoryLimit, p.Len())
	assert.Equal(t, string(p.TargetID()), p.Name(), "unnamed panes are named by id")
}

func TestPane_ReplaceKeepsEntryID(t *testing.T) {
	p := NewPane(PaneConfig{Name: "main"}, nil, nil, nil)
	p.AppendEntry(txt("a"), 7)
	before := p.Entries()[0]

	p.ReplaceLastEntry(txt("a [x2]"), 7)
	after := p.Entries()[0]

	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, "a [x2]", after.Text.String())
	assert.Equal(t, correlation.Identity(7), after.Identity)
}

func TestPane_ReplaceOnEmptyAppends(t *testing.T) {
	p := NewPane(PaneConfig{Name: "main"}, nil, nil, nil)
	p.ReplaceLastEntry(txt("x"), 1)
	assert.Equal(t, []string{"x"}, lines(p))
}

func TestPane_EntriesIsCopy(t *testing.T) {
	p := NewPane(PaneConfig{Name: "main"}, nil, nil, nil)
	p.Add(txt("a"))

	entries := p.Entries()
	entries[0].Text = txt("changed")

	assert.Equal(t, []string{"a"}, lines(p))
}

func TestPane_PublishesChanges(t *testing.T) {
	clock := clockwork.NewFakeClock()
	engine := newEngine(t, clock)
	bus := NewBroadcaster(nil)
	defer bus.Close()
	ch, _ := bus.Subscribe(t.Context(), "main")

	p := NewPane(PaneConfig{Name: "main", Clock: clock}, engine, bus, nil)
	engine.NotifyClientside(txt("ping"))
	p.Add(txt("ping"))
	p.Add(txt("ping"))
	p.Clear()

	kinds := []ChangeKind{ChangeAppended, ChangeReplaced, ChangeCleared}
	var appendedID string
	for i, want := range kinds {
		select {
		case c := <-ch:
			assert.Equal(t, want, c.Kind, "change %d", i)
			assert.Equal(t, "main", c.PaneName)
			assert.Equal(t, p.TargetID(), c.PaneID)
			switch c.Kind {
			case ChangeAppended:
				appendedID = c.Entry.ID
			case ChangeReplaced:
				assert.Equal(t, appendedID, c.Entry.ID)
				assert.Equal(t, "ping [x2]", c.Entry.Text.String())
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for change %d", i)
		}
	}
	assert.Equal(t, 0, p.Len())
}

func TestHub_PaneCreatedOnce(t *testing.T) {
	hub := NewHub(HubConfig{HistoryLimit: 10}, nil, nil, nil)

	a := hub.Pane("main")
	b := hub.Pane("main")
	hub.Pane("alerts")

	assert.Same(t, a, b)
	assert.Equal(t, []string{"alerts", "main"}, hub.Names())

	got, ok := hub.Lookup("alerts")
	require.True(t, ok)
	assert.Equal(t, "alerts", got.Name())

	_, ok = hub.Lookup("missing")
	assert.False(t, ok)
}

func TestHub_PanesShareEngine(t *testing.T) {
	clock := clockwork.NewFakeClock()
	engine := newEngine(t, clock)
	hub := NewHub(HubConfig{Clock: clock}, engine, nil, nil)

	engine.NotifyMessagePair(txt("A"), txt("B"))
	hub.Pane("one").Add(txt("B"))
	hub.Pane("one").Add(txt("B"))
	hub.Pane("two").Add(txt("B"))

	assert.Equal(t, []string{"B [x2]"}, lines(hub.Pane("one")))
	assert.Equal(t, []string{"B"}, lines(hub.Pane("two")))
}

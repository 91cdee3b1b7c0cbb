// ABOUTME: Unit tests for MockStore to ensure behavior matches SQLiteStore
// ABOUTME: Runs the same line scenarios against both implementations

package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/chatmerge/internal/display"
)

func lineStores(t *testing.T) map[string]LineStore {
	return map[string]LineStore{
		"mock":   NewMockStore(),
		"sqlite": setupTestStore(t),
	}
}

func TestLineStores_SaveUpdateGet(t *testing.T) {
	for name, st := range lineStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			line := testLine("l1", "main", "Hi")
			require.NoError(t, st.SaveLine(ctx, line))
			assert.Equal(t, int64(1), line.Seq)

			update := testLine("l1", "main", "Hi [x2]")
			require.NoError(t, st.UpdateLine(ctx, update))
			assert.Equal(t, 1, update.Revision)

			got, err := st.GetLine(ctx, "l1")
			require.NoError(t, err)
			assert.Equal(t, "Hi [x2]", got.Text.String())
			assert.Equal(t, 1, got.Revision)

			assert.ErrorIs(t, st.UpdateLine(ctx, testLine("nope", "main", "x")), ErrNotFound)
			_, err = st.GetLine(ctx, "nope")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestLineStores_DuplicateID(t *testing.T) {
	for name, st := range lineStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, st.SaveLine(ctx, testLine("l1", "main", "a")))
			assert.Error(t, st.SaveLine(ctx, testLine("l1", "main", "b")))
		})
	}
}

func TestLineStores_GetLinesLimit(t *testing.T) {
	for name, st := range lineStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 1; i <= 4; i++ {
				require.NoError(t, st.SaveLine(ctx, testLine(fmt.Sprintf("l%d", i), "main", fmt.Sprintf("%d", i))))
			}
			require.NoError(t, st.SaveLine(ctx, testLine("x", "alerts", "x")))

			lines, err := st.GetLines(ctx, "main", 2)
			require.NoError(t, err)
			require.Len(t, lines, 2)
			assert.Equal(t, "3", lines[0].Text.String())
			assert.Equal(t, "4", lines[1].Text.String())

			panes, err := st.ListPanes(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"alerts", "main"}, panes)
		})
	}
}

func TestMockStore_Close(t *testing.T) {
	st := NewMockStore()
	require.NoError(t, st.Close())
	assert.True(t, st.Closed())
}

func TestJournal_RunContinuesAfterWriteError(t *testing.T) {
	st := NewMockStore()
	st.SaveErr = errors.New("disk full")
	j := NewJournal(st, nil)

	ch := make(chan display.Change, 2)
	ch <- change(display.ChangeAppended, "e1", "a")
	ch <- change(display.ChangeAppended, "e2", "b")
	close(ch)

	require.NoError(t, j.Run(context.Background(), ch))

	lines, err := st.GetLines(context.Background(), "main", 0)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

// ABOUTME: Tests for the terminal renderer
// ABOUTME: Covers plain output, pane prefixes, in-place rewrite of merged lines and ANSI styling

package display

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/chatmerge/internal/chattext"
)

func TestRenderer_PlainLines(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, RendererConfig{})

	require.NoError(t, r.Render(makeChange("main", "hello")))
	require.NoError(t, r.Render(makeChange("main", "world")))

	assert.Equal(t, "hello\nworld\n", out.String())
}

func TestRenderer_ShowPane(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, RendererConfig{ShowPane: true})

	require.NoError(t, r.Render(makeChange("main", "hello")))
	assert.Equal(t, "[main] hello\n", out.String())
}

func TestRenderer_RewriteReplacedLastLine(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, RendererConfig{Rewrite: true})

	require.NoError(t, r.Render(Change{Kind: ChangeAppended, PaneName: "main", Entry: Entry{ID: "e1", Text: txt("Hi")}}))
	require.NoError(t, r.Render(Change{Kind: ChangeReplaced, PaneName: "main", Entry: Entry{ID: "e1", Text: txt("Hi [x2]")}}))

	assert.Equal(t, "Hi\n"+cursorUp+clearLine+"Hi [x2]\n", out.String())
}

func TestRenderer_NoRewriteWhenAnotherLineIntervened(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, RendererConfig{Rewrite: true})

	require.NoError(t, r.Render(Change{Kind: ChangeAppended, Entry: Entry{ID: "e1", Text: txt("Hi")}}))
	require.NoError(t, r.Render(Change{Kind: ChangeAppended, Entry: Entry{ID: "e2", Text: txt("other")}}))
	require.NoError(t, r.Render(Change{Kind: ChangeReplaced, Entry: Entry{ID: "e1", Text: txt("Hi [x2]")}}))

	assert.Equal(t, "Hi\nother\nHi [x2]\n", out.String())
}

func TestRenderer_Cleared(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, RendererConfig{})

	require.NoError(t, r.Render(Change{Kind: ChangeCleared}))
	assert.Equal(t, "-- cleared --\n", out.String())
}

func TestRenderer_Color(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, RendererConfig{Color: true})

	styled := chattext.Plain("Hi").Append(chattext.Styled(" [x2]", chattext.Style{Color: chattext.ColorGray}))
	got := r.FormatText(styled)

	assert.Equal(t, "Hi\x1b[37m [x2]\x1b[0m", got)
}

func TestRenderer_ColorAttributes(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, RendererConfig{Color: true})

	got := r.FormatText(chattext.Styled("x", chattext.Style{Color: chattext.ColorRed, Bold: true}))
	assert.Contains(t, got, "\x1b[91;1m")
}

func TestRenderer_Run(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, RendererConfig{})

	ch := make(chan Change, 2)
	ch <- makeChange("main", "a")
	ch <- makeChange("main", "b")
	close(ch)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, r.Run(ctx, ch))
	assert.Equal(t, "a\nb\n", out.String())
}

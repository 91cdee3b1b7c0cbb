// ABOUTME: Terminal renderer for pane changes using fatih/color
// ABOUTME: Maps the chat palette to ANSI attributes and rewrites merged lines in place on a TTY

package display

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/2389/chatmerge/internal/chattext"
)

// ansi sequences used to overwrite the previous terminal line.
const (
	cursorUp  = "\x1b[1A"
	clearLine = "\x1b[2K\r"
)

var paletteAttrs = map[chattext.Color]color.Attribute{
	chattext.ColorBlack:       color.FgBlack,
	chattext.ColorDarkBlue:    color.FgBlue,
	chattext.ColorDarkGreen:   color.FgGreen,
	chattext.ColorDarkAqua:    color.FgCyan,
	chattext.ColorDarkRed:     color.FgRed,
	chattext.ColorDarkPurple:  color.FgMagenta,
	chattext.ColorGold:        color.FgYellow,
	chattext.ColorGray:        color.FgWhite,
	chattext.ColorDarkGray:    color.FgHiBlack,
	chattext.ColorBlue:        color.FgHiBlue,
	chattext.ColorGreen:       color.FgHiGreen,
	chattext.ColorAqua:        color.FgHiCyan,
	chattext.ColorRed:         color.FgHiRed,
	chattext.ColorLightPurple: color.FgHiMagenta,
	chattext.ColorYellow:      color.FgHiYellow,
	chattext.ColorWhite:       color.FgHiWhite,
}

// RendererConfig configures a Renderer.
type RendererConfig struct {
	// Color enables ANSI styling.
	Color bool
	// Rewrite overwrites the previous line for a replacement of the line
	// just written. Only meaningful on a terminal.
	Rewrite bool
	// ShowPane prefixes each line with the pane name.
	ShowPane bool
}

// Renderer writes pane changes as terminal lines.
type Renderer struct {
	out io.Writer
	cfg RendererConfig

	mu        sync.Mutex
	lastEntry string // entry ID of the last line written
}

// NewRenderer creates a renderer writing to out.
func NewRenderer(out io.Writer, cfg RendererConfig) *Renderer {
	return &Renderer{out: out, cfg: cfg}
}

// Run renders changes until ctx is cancelled or changes is closed.
func (r *Renderer) Run(ctx context.Context, changes <-chan Change) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			if err := r.Render(change); err != nil {
				return err
			}
		}
	}
}

// Render writes a single change.
func (r *Renderer) Render(change Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sb strings.Builder
	switch change.Kind {
	case ChangeCleared:
		r.lastEntry = ""
		sb.WriteString(r.prefix(change.PaneName))
		sb.WriteString(r.paint("-- cleared --", chattext.Style{Color: chattext.ColorDarkGray}))
	case ChangeReplaced:
		if r.cfg.Rewrite && r.lastEntry == change.Entry.ID {
			sb.WriteString(cursorUp + clearLine)
		}
		fallthrough
	default:
		r.lastEntry = change.Entry.ID
		sb.WriteString(r.prefix(change.PaneName))
		sb.WriteString(r.FormatText(change.Entry.Text))
	}
	sb.WriteString("\n")

	if _, err := io.WriteString(r.out, sb.String()); err != nil {
		return fmt.Errorf("writing line: %w", err)
	}
	return nil
}

// FormatText renders styled text, with ANSI attributes when color is on.
func (r *Renderer) FormatText(t chattext.Text) string {
	var sb strings.Builder
	for _, sp := range t.Spans() {
		sb.WriteString(r.paint(sp.Text, sp.Style))
	}
	return sb.String()
}

func (r *Renderer) prefix(pane string) string {
	if !r.cfg.ShowPane || pane == "" {
		return ""
	}
	return r.paint("["+pane+"] ", chattext.Style{Color: chattext.ColorDarkGray})
}

func (r *Renderer) paint(s string, style chattext.Style) string {
	if !r.cfg.Color || style.IsZero() {
		return s
	}
	c := color.New(styleAttrs(style)...)
	c.EnableColor()
	return c.Sprint(s)
}

func styleAttrs(style chattext.Style) []color.Attribute {
	var attrs []color.Attribute
	if a, ok := paletteAttrs[style.Color]; ok {
		attrs = append(attrs, a)
	}
	if style.Bold {
		attrs = append(attrs, color.Bold)
	}
	if style.Italic {
		attrs = append(attrs, color.Italic)
	}
	if style.Underlined {
		attrs = append(attrs, color.Underline)
	}
	if style.Strikethrough {
		attrs = append(attrs, color.CrossedOut)
	}
	if style.Obfuscated {
		attrs = append(attrs, color.BlinkSlow)
	}
	return attrs
}

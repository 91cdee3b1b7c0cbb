// ABOUTME: Styled chat text value with structural equality over content and styling
// ABOUTME: Encodes to and parses from the legacy section-sign formatting code form

package chattext

import (
	"strings"
)

// Text is an immutable sequence of styled spans.
type Text struct {
	spans []Span
}

// Span is a run of characters sharing one style.
type Span struct {
	Text  string
	Style Style
}

// Plain returns an unstyled text.
func Plain(s string) Text {
	return Styled(s, Style{})
}

// Styled returns a text consisting of a single span with the given style.
func Styled(s string, style Style) Text {
	var b builder
	b.add(s, style)
	return b.text()
}

// FromSpans builds a text from spans, dropping empty spans and merging
// adjacent spans that share a style.
func FromSpans(spans ...Span) Text {
	var b builder
	for _, sp := range spans {
		b.add(sp.Text, sp.Style)
	}
	return b.text()
}

// Spans returns a copy of the text's spans.
func (t Text) Spans() []Span {
	out := make([]Span, len(t.spans))
	copy(out, t.spans)
	return out
}

// IsEmpty reports whether the text has no characters.
func (t Text) IsEmpty() bool {
	return len(t.spans) == 0
}

// String returns the characters of the text without styling.
func (t Text) String() string {
	var sb strings.Builder
	for _, sp := range t.spans {
		sb.WriteString(sp.Text)
	}
	return sb.String()
}

// Append returns a new text with other appended. Neither input is modified.
func (t Text) Append(other Text) Text {
	var b builder
	for _, sp := range t.spans {
		b.add(sp.Text, sp.Style)
	}
	for _, sp := range other.spans {
		b.add(sp.Text, sp.Style)
	}
	return b.text()
}

// Coded renders the text in legacy formatting-code form. The output is
// canonical: equal texts always produce identical strings, and distinct
// texts never collide. A literal section sign is written doubled.
func (t Text) Coded() string {
	var sb strings.Builder
	var cur Style
	for _, sp := range t.spans {
		if sp.Style != cur {
			if !cur.IsZero() {
				sb.WriteString(codePrefix + "r")
			}
			sb.WriteString(sp.Style.codes())
			cur = sp.Style
		}
		sb.WriteString(strings.ReplaceAll(sp.Text, codePrefix, codePrefix+codePrefix))
	}
	return sb.String()
}

// Equal reports whether two texts have the same characters and styling.
func (t Text) Equal(other Text) bool {
	if len(t.spans) != len(other.spans) {
		return false
	}
	for i := range t.spans {
		if t.spans[i] != other.spans[i] {
			return false
		}
	}
	return true
}

// ParseCoded parses a legacy formatting-code string. A color code clears
// any active formatting; a reset code clears both. A doubled section sign
// is one literal section sign. Unknown codes are kept as literal characters.
func ParseCoded(s string) Text {
	var b builder
	var style Style
	var run strings.Builder

	flush := func() {
		b.add(run.String(), style)
		run.Reset()
	}

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != codeRune || i+1 >= len(runes) {
			run.WriteRune(r)
			continue
		}
		code := runes[i+1]
		if code == codeRune {
			run.WriteRune(r)
			i++
			continue
		}
		next, ok := style.apply(code)
		if !ok {
			run.WriteRune(r)
			continue
		}
		flush()
		style = next
		i++
	}
	flush()
	return b.text()
}

// builder accumulates spans in canonical form.
type builder struct {
	spans []Span
}

func (b *builder) add(s string, style Style) {
	if s == "" {
		return
	}
	if n := len(b.spans); n > 0 && b.spans[n-1].Style == style {
		b.spans[n-1].Text += s
		return
	}
	b.spans = append(b.spans, Span{Text: s, Style: style})
}

func (b *builder) text() Text {
	return Text{spans: b.spans}
}

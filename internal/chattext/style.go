// ABOUTME: Style and color palette for chat text spans
// ABOUTME: Maps styles to and from legacy formatting codes

package chattext

import "strings"

const (
	codeRune   = '§'
	codePrefix = "§"
)

// Color is one of the sixteen legacy palette colors, or ColorNone.
type Color uint8

// Palette colors, in formatting-code order.
const (
	ColorNone Color = iota
	ColorBlack
	ColorDarkBlue
	ColorDarkGreen
	ColorDarkAqua
	ColorDarkRed
	ColorDarkPurple
	ColorGold
	ColorGray
	ColorDarkGray
	ColorBlue
	ColorGreen
	ColorAqua
	ColorRed
	ColorLightPurple
	ColorYellow
	ColorWhite
)

const colorCodes = "0123456789abcdef"

var colorNames = [...]string{
	"none", "black", "dark_blue", "dark_green", "dark_aqua", "dark_red",
	"dark_purple", "gold", "gray", "dark_gray", "blue", "green", "aqua",
	"red", "light_purple", "yellow", "white",
}

func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return "unknown"
}

// Style describes how a span is drawn. The zero value is unstyled.
type Style struct {
	Color         Color
	Bold          bool
	Italic        bool
	Underlined    bool
	Strikethrough bool
	Obfuscated    bool
}

// IsZero reports whether the style carries no color or formatting.
func (s Style) IsZero() bool {
	return s == Style{}
}

// codes returns the formatting codes that select s from a reset state.
func (s Style) codes() string {
	var sb strings.Builder
	if s.Color != ColorNone {
		sb.WriteString(codePrefix)
		sb.WriteByte(colorCodes[s.Color-1])
	}
	if s.Obfuscated {
		sb.WriteString(codePrefix + "k")
	}
	if s.Bold {
		sb.WriteString(codePrefix + "l")
	}
	if s.Strikethrough {
		sb.WriteString(codePrefix + "m")
	}
	if s.Underlined {
		sb.WriteString(codePrefix + "n")
	}
	if s.Italic {
		sb.WriteString(codePrefix + "o")
	}
	return sb.String()
}

// apply returns the style that results from applying a formatting code.
func (s Style) apply(code rune) (Style, bool) {
	if code >= 'A' && code <= 'Z' {
		code += 'a' - 'A'
	}
	if i := strings.IndexRune(colorCodes, code); i >= 0 {
		return Style{Color: Color(i + 1)}, true
	}
	switch code {
	case 'k':
		s.Obfuscated = true
	case 'l':
		s.Bold = true
	case 'm':
		s.Strikethrough = true
	case 'n':
		s.Underlined = true
	case 'o':
		s.Italic = true
	case 'r':
		return Style{}, true
	default:
		return s, false
	}
	return s, true
}

// ABOUTME: Converts inline markdown into styled chat text using goldmark
// ABOUTME: Emphasis, strong, strikethrough, code spans and links become span styles

package chattext

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	gmtext "github.com/yuin/goldmark/text"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Strikethrough))

// FromMarkdown parses src as markdown and flattens it into a single line of
// styled text. Block structure is dropped; consecutive blocks are joined
// with a space.
func FromMarkdown(src string) Text {
	source := []byte(src)
	doc := markdown.Parser().Parse(gmtext.NewReader(source))

	var b builder
	var style Style
	var stack []Style

	push := func(entering bool, mutate func(*Style)) {
		if entering {
			stack = append(stack, style)
			mutate(&style)
			return
		}
		style = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Emphasis:
			push(entering, func(s *Style) {
				if node.Level >= 2 {
					s.Bold = true
				} else {
					s.Italic = true
				}
			})
		case *east.Strikethrough:
			push(entering, func(s *Style) { s.Strikethrough = true })
		case *ast.CodeSpan:
			push(entering, func(s *Style) { s.Color = ColorGray })
		case *ast.Link:
			push(entering, func(s *Style) {
				s.Color = ColorBlue
				s.Underlined = true
			})
		case *ast.AutoLink:
			if entering {
				b.add(string(node.Label(source)), Style{Color: ColorBlue, Underlined: true})
			}
		case *ast.Text:
			if entering {
				b.add(string(node.Segment.Value(source)), style)
				if node.SoftLineBreak() || node.HardLineBreak() {
					b.add(" ", style)
				}
			}
		case *ast.String:
			if entering {
				b.add(string(node.Value), style)
			}
		case *ast.Paragraph, *ast.Heading:
			if !entering && n.NextSibling() != nil {
				b.add(" ", Style{})
			}
		}
		return ast.WalkContinue, nil
	})

	return b.text()
}

// Package chattext provides the styled text value that flows through the
// merge engine.
//
// # Equality
//
// A Text is a list of spans, each with a Style. Texts are kept in canonical
// form (no empty spans, no two adjacent spans with the same style), so two
// texts are equal exactly when their characters and styling match. Two
// messages that differ only in styling are distinct.
//
// # Coded Form
//
// Coded renders the legacy section-sign form used by chat servers:
//
//	§c§lWarning§r plain
//
// Color codes 0-9 and a-f select the palette, k/l/m/n/o select formatting,
// and r resets. A literal section sign is written as §§, so the form is
// lossless: ParseCoded(t.Coded()) equals t for every text t.
//
// # Markdown
//
// FromMarkdown accepts inline markdown for script input:
//
//	**bold** *italic* ~~struck~~ `code` [link](https://example.com)
package chattext

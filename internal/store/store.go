// ABOUTME: Store interface and data types for the chat transcript journal
// ABOUTME: Defines the Line record and the LineStore operations used by the journal and CLI

package store

import (
	"context"
	"errors"
	"time"

	"github.com/2389/chatmerge/internal/chattext"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// Line is one journaled display line. Merges rewrite the same line and
// bump its revision.
type Line struct {
	ID        string
	Pane      string
	Seq       int64 // position within the pane, assigned on save
	Text      chattext.Text
	Identity  string
	Revision  int // number of times the line was replaced
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LineStore persists display lines per pane.
type LineStore interface {
	SaveLine(ctx context.Context, line *Line) error
	UpdateLine(ctx context.Context, line *Line) error
	GetLine(ctx context.Context, id string) (*Line, error)
	GetLines(ctx context.Context, pane string, limit int) ([]*Line, error)
	ListPanes(ctx context.Context) ([]string, error)
	Close() error
}

// ABOUTME: Journal persists pane changes from the display broadcaster into a LineStore
// ABOUTME: Appends become new lines and merge replacements rewrite the journaled line in place

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/2389/chatmerge/internal/display"
)

// Journal writes display changes to a LineStore.
type Journal struct {
	store  LineStore
	logger *slog.Logger
}

// NewJournal creates a journal over the given store. Pass nil logger for default.
func NewJournal(store LineStore, logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{
		store:  store,
		logger: logger.With("component", "journal"),
	}
}

// Run consumes changes until the channel is closed or ctx is done.
// Individual write failures are logged and do not stop the journal.
func (j *Journal) Run(ctx context.Context, changes <-chan display.Change) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			if err := j.Record(ctx, change); err != nil {
				j.logger.Error("failed to journal change",
					"error", err,
					"pane", change.PaneName,
					"kind", change.Kind,
				)
			}
		}
	}
}

// Record persists a single change.
func (j *Journal) Record(ctx context.Context, change display.Change) error {
	switch change.Kind {
	case display.ChangeAppended:
		return j.store.SaveLine(ctx, lineFromChange(change))

	case display.ChangeReplaced:
		line := lineFromChange(change)
		err := j.store.UpdateLine(ctx, line)
		if errors.Is(err, ErrNotFound) {
			// appended before the journal subscribed
			j.logger.Debug("replacement for unjournaled line, saving", "line_id", line.ID)
			return j.store.SaveLine(ctx, line)
		}
		return err

	case display.ChangeCleared:
		// the transcript keeps what was shown
		j.logger.Debug("pane cleared", "pane", change.PaneName)
		return nil

	default:
		return fmt.Errorf("unknown change kind %q", change.Kind)
	}
}

func lineFromChange(change display.Change) *Line {
	return &Line{
		ID:        change.Entry.ID,
		Pane:      change.PaneName,
		Text:      change.Entry.Text,
		Identity:  change.Entry.Identity.String(),
		CreatedAt: change.Entry.At,
		UpdatedAt: change.Entry.At,
	}
}

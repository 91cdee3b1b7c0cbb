// ABOUTME: JSON-lines script runner that drives the merge engine and display panes
// ABOUTME: Each event notifies the engine and/or inserts text, then flushes pane changes to the sinks

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/2389/chatmerge/internal/chattext"
	"github.com/2389/chatmerge/internal/config"
	"github.com/2389/chatmerge/internal/display"
	"github.com/2389/chatmerge/internal/merge"
)

// maxScriptLine bounds a single script line.
const maxScriptLine = 1 << 20

// Event types accepted in a script
const (
	eventMessage    = "message"
	eventClientside = "clientside"
	eventInject     = "inject"
	eventWait       = "wait"
	eventClear      = "clear"
)

// event is one line of a script.
type event struct {
	Type     string   `json:"type"`
	Original string   `json:"original,omitempty"`
	Rendered string   `json:"rendered,omitempty"`
	Text     string   `json:"text,omitempty"`
	Panes    []string `json:"panes,omitempty"`
	Duration string   `json:"duration,omitempty"`
}

// changeSink receives every pane change produced by an event.
type changeSink func(ctx context.Context, change display.Change) error

// scriptRunner applies script events in order.
type scriptRunner struct {
	engine  *merge.Engine
	hub     *display.Hub
	panes   []string
	format  string
	clock   clockwork.Clock
	changes <-chan display.Change
	sinks   []changeSink
	logger  *slog.Logger
}

// parseText converts script text according to the configured input format.
func parseText(format, s string) (chattext.Text, error) {
	switch format {
	case config.FormatCoded:
		return chattext.ParseCoded(s), nil
	case config.FormatMarkdown:
		return chattext.FromMarkdown(s), nil
	case config.FormatPlain:
		return chattext.Plain(s), nil
	default:
		return chattext.Text{}, fmt.Errorf("unknown input format %q", format)
	}
}

// Run reads events from r until EOF. Blank lines and lines starting with
// '#' are skipped.
func (s *scriptRunner) Run(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxScriptLine)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var ev event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			return fmt.Errorf("line %d: decoding event: %w", lineNo, err)
		}
		if err := s.Apply(ctx, ev); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading script: %w", err)
	}
	return nil
}

// Apply runs a single event and flushes the changes it caused.
func (s *scriptRunner) Apply(ctx context.Context, ev event) error {
	if err := s.apply(ctx, ev); err != nil {
		return err
	}
	return s.flush(ctx)
}

func (s *scriptRunner) apply(ctx context.Context, ev event) error {
	switch ev.Type {
	case eventMessage:
		original, err := parseText(s.format, ev.Original)
		if err != nil {
			return err
		}
		rendered := original
		if ev.Rendered != "" {
			if rendered, err = parseText(s.format, ev.Rendered); err != nil {
				return err
			}
		}
		panes, err := s.targets(ev.Panes)
		if err != nil {
			return err
		}
		s.engine.NotifyMessagePair(original, rendered)
		for _, p := range panes {
			p.Add(rendered)
		}

	case eventClientside, eventInject:
		text, err := parseText(s.format, ev.Text)
		if err != nil {
			return err
		}
		panes, err := s.targets(ev.Panes)
		if err != nil {
			return err
		}
		if ev.Type == eventClientside {
			s.engine.NotifyClientside(text)
		}
		for _, p := range panes {
			p.Add(text)
		}

	case eventClear:
		panes, err := s.targets(ev.Panes)
		if err != nil {
			return err
		}
		for _, p := range panes {
			p.Clear()
		}

	case eventWait:
		d, err := time.ParseDuration(ev.Duration)
		if err != nil {
			return fmt.Errorf("parsing wait duration %q: %w", ev.Duration, err)
		}
		s.logger.Debug("waiting", "duration", d)
		select {
		case <-s.clock.After(d):
		case <-ctx.Done():
			return ctx.Err()
		}

	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	return nil
}

// targets resolves pane names, defaulting to every configured pane.
func (s *scriptRunner) targets(names []string) ([]*display.Pane, error) {
	if len(names) == 0 {
		names = s.panes
	}
	panes := make([]*display.Pane, 0, len(names))
	for _, name := range names {
		p, ok := s.hub.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown pane %q", name)
		}
		panes = append(panes, p)
	}
	return panes, nil
}

// flush hands every pending change to the sinks. Panes publish before Add
// returns, so all changes from the last event are already buffered.
func (s *scriptRunner) flush(ctx context.Context) error {
	if s.changes == nil {
		return nil
	}
	for {
		select {
		case change, ok := <-s.changes:
			if !ok {
				return nil
			}
			for _, sink := range s.sinks {
				if err := sink(ctx, change); err != nil {
					return err
				}
			}
		default:
			return nil
		}
	}
}

// subscribeAll subscribes to every pane with room for one change per pane,
// the most a single event can produce before flush drains it.
func subscribeAll(ctx context.Context, bus *display.Broadcaster, panes []string) <-chan display.Change {
	changes, _ := bus.SubscribeBuffered(ctx, display.AllPanes, len(panes))
	return changes
}

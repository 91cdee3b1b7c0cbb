// Package display implements the output side: chat panes, change fan-out,
// and a terminal renderer.
//
// # Panes
//
// A Pane is a bounded display list (100 lines by default). Its Add method
// is the insertion path that the merge engine intercepts:
//
//	engine := merge.New(store, logger)
//	pane := display.NewPane(display.PaneConfig{Name: "main"}, engine, bus, logger)
//	engine.NotifyMessagePair(original, rendered)
//	pane.Add(rendered)
//
// Pane also implements merge.Target, so the engine can read the last line
// and append or replace lines directly.
//
// # Changes
//
// Every append, replacement and clear is published on a Broadcaster.
// Subscribers register for a pane name or for AllPanes; the CLI renderer and
// the transcript journal are both subscribers.
//
// # Renderer
//
// Renderer turns changes into terminal lines with fatih/color. On a TTY it
// can overwrite the line it just wrote when that line is merged, so a
// repeated message shows as one line whose counter climbs.
package display

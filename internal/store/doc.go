// Package store journals chat panes to SQLite.
//
// Every line a pane shows is saved as a transcript line keyed by the pane
// entry ID. When the merge engine folds a repeat into the last line, the
// pane publishes a replacement and the journal rewrites that row and bumps
// its revision, so the transcript reads the way the screen did:
//
//	seq  revision  text
//	1    2         Hi [x3]
//	2    0         bye
//
// Text is stored in its coded form and parsed back on read, so styling
// survives a round trip. A plain copy is kept alongside for ad hoc queries.
//
// SQLiteStore uses modernc.org/sqlite (pure Go, no cgo) with WAL enabled.
// The schema is created on open.
//
// # Usage
//
//	st, err := store.NewSQLiteStore(path)
//	if err != nil { ... }
//	defer st.Close()
//
//	changes, _ := bus.Subscribe(ctx, display.AllPanes)
//	go store.NewJournal(st, logger).Run(ctx, changes)
//
//	lines, err := st.GetLines(ctx, "main", 50)
package store

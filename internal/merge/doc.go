// Package merge collapses repeated chat lines into a single counted entry.
//
// # Overview
//
// An upstream pipeline reports every emitted message as an (original,
// rendered) pair through NotifyMessagePair. Independently, the output sink
// asks the Engine before appending any text. The Engine looks the text up
// in the correlation store and takes one of three paths:
//
//   - No live record: the text did not come through the pipeline. A warning
//     is logged and the sink's default insertion runs unchanged.
//   - Record found and the target's last entry carries the record's current
//     identity: the counter is bumped and the last entry is replaced with
//     "<rendered> [xN]".
//   - Record found otherwise: any earlier duplicate streak on the target is
//     retired and the rendered text is appended with a fresh identity.
//
// In both hit paths the sink's own insertion is suppressed.
//
// # Ordering
//
// Notification must happen before insertion for the same message. There is
// no event bus; producers call the Engine directly:
//
//	engine.NotifyMessagePair(original, rendered)
//	pane.Add(rendered) // pane consults engine.InterceptInsertion
//
// # Concurrency
//
// The hit-path decision runs inside correlation.Store.WithRendered, so the
// lookup and the target mutation are atomic with respect to other callers.
package merge

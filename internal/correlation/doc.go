// Package correlation tracks which rendered text each original message was
// last displayed as.
//
// # Records
//
// A Record pairs an immutable original text with its latest rendered form.
// Per output target it also keeps a repeat counter and the time the record
// was established as the target's current line. Identity hashes the
// original's coded form together with that time, so a line can be
// recognized as "the one this record put there" until the streak resets.
//
// # Store
//
// Store keeps records in a timedset.Set for a sliding window (15 seconds by
// default). RecordOrRefresh is called for every emitted message pair;
// WithRendered runs the caller's decision under the store lock so that a
// lookup and the mutation that follows are atomic.
//
//	st := correlation.NewStore(correlation.StoreConfig{SweepInterval: time.Minute}, logger)
//	defer st.Close()
//	st.RecordOrRefresh(original, rendered)
//	st.WithRendered(rendered, func(rec *correlation.Record, now time.Time) {
//	    id := rec.Identity(targetID, now)
//	    ...
//	})
//
// When two live records share the same rendered text, the earliest inserted
// one wins.
package correlation

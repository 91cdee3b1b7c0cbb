// Package timedset provides a generic set whose entries expire a fixed
// duration after they were last inserted or refreshed.
//
// # Overview
//
// Set is the building block for short-lived correlation caches. Each entry
// carries a deadline of now+TTL. An entry is observable through All, Find
// and Len only while the clock is before its deadline; lapsed entries are
// unlinked lazily whenever the list is walked, or eagerly with Sweep.
//
//	s := timedset.New(15*time.Second, func(a, b string) bool { return a == b },
//	    timedset.WithUnique())
//	s.Put("hello")
//	s.ResetTimerFor("hello") // deadline moves to now+15s, position unchanged
//	for v := range s.All() {
//	    fmt.Println(v)
//	}
//
// # Options
//
//   - WithUnique: an equal live item is refreshed rather than duplicated
//   - WithMaxSize: oldest entries are evicted once the cap is reached
//   - WithClock: inject a clockwork.Clock (tests use a fake clock)
//
// # Concurrency
//
// Set does no locking. Owners that share it across goroutines wrap it with
// their own mutex, as correlation.Store does.
package timedset

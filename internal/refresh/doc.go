// Package refresh drives the bridge's background cycle.
//
// One goroutine walks the symbol worklist in order: publish the latest
// durable bar to the shared channel, then, for crypto symbols, pull a short
// lookback window from the remote feed and append it to the store. A pacing
// delay between symbols bounds burst load on the feeds; after a full pass
// the loop sleeps out the remainder of the configured interval.
//
// The loop is an explicit two-state machine, Idle and Running. Stop cancels
// cooperatively between symbol steps and blocks until the in-flight cycle
// returns; an in-flight feed call is not interrupted, so stop latency is
// bounded by the slowest external call. Every per-symbol failure is logged
// and skipped; nothing aborts the cycle.
package refresh

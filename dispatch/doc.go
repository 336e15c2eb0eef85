// Package dispatch runs engine operations asynchronously with per-handle
// ordering.
//
// Engine decode and encode calls can run for seconds, so callers submit
// them here and receive a result channel. The dispatcher guarantees three
// things: work on one handle runs strictly in submission order with at most
// one engine call in flight, every input buffer is copied before the submit
// method returns, and every submission completes exactly once even when the
// task panics or the dispatcher closes underneath it.
//
// Format conversions are pure CPU work with no engine state, so they bypass
// the per-handle queues and run on a small shared pool.
package dispatch

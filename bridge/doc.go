// Package bridge is the stable, handle-based facade over the signal engine.
//
// The facade surface is deliberately flat: opaque integer handles, scalar
// arguments, caller-owned buffers, and integer Status codes. Nothing about
// the engine's internals leaks through, which is what lets engine builds
// and the facade evolve independently.
//
// Contract highlights:
//
//   - Handle 0 is never valid; stale handles report StatusInvalidHandle
//     rather than touching freed state.
//   - Input buffers are copied by the engine before any call returns, so
//     callers may reuse them immediately.
//   - Decoded transmissions queue inside the engine and are drained one at
//     a time with PullMessage, each delivered exactly once.
//   - Failures surface as Status codes; engine faults are contained and
//     never crash the process.
package bridge

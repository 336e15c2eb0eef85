// Package engine owns the lifecycle of one loaded engine instance: library
// load, atomic symbol resolution, instance creation, raw calls, teardown.
//
// The lifecycle is a one-way state machine (unloaded, loading, ready,
// destroyed). Every call checks for ready and fails fast otherwise, so a
// half-loaded or torn-down engine can never be invoked. Raw pointer
// plumbing and panic containment live here; argument validation and status
// interpretation belong to the bridge layer above.
package engine

// Package wsjtxbridge exposes a weak-signal encode/decode engine to Go
// through a stable, handle-based boundary.
//
// The engine itself is a separately-built shared library living next to the
// host executable. Opening a Lib loads that library, resolves its entry
// points atomically, and creates one engine instance. From there, decode
// and encode run asynchronously with results delivered on channels, decoded
// transmissions queue inside the engine until drained with PullMessages,
// and mode metadata comes from a built-in catalog that never touches the
// engine.
//
// The layering, top to bottom:
//
//   - wsjtxbridge: caller-facing API, argument validation, lifecycle
//   - dispatch: async execution with per-handle ordering
//   - bridge: the flat handle/Status facade matching the wire contract
//   - engine: typed bindings over the library's entry points
//   - loader: cross-platform dynamic loading and symbol resolution
//   - modes, audio, errors: mode catalog, sample conversion, error types
package wsjtxbridge

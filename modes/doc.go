// Package modes is the static catalog of supported transmission modes.
//
// Each mode carries fixed timing and sampling parameters plus encode/decode
// capability flags. The catalog is total over Mode values it defines, and
// metadata lookups for unknown values return documented defaults instead of
// failing, matching the engine's own fallback behavior.
package modes

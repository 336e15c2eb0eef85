// Package errors provides structured error types for the wsjtx-bridge library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). Loader-time failures (path resolution, library load, symbol
// resolution) and call-time failures share one taxonomy so callers can match
// with errors.Is regardless of which stage produced the fault.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseCall, errors.KindInvalidParam).
//		Mode("FT8").
//		Detail("sample count must be positive").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.LibraryLoad(path, cause)
//	err := errors.NotReady("destroyed")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors

package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseResolve  Phase = "resolve"  // library path resolution
	PhaseLoad     Phase = "load"     // shared library loading
	PhaseLink     Phase = "link"     // symbol resolution
	PhaseCreate   Phase = "create"   // engine instantiation
	PhaseCall     Phase = "call"     // engine entry point invocation
	PhaseDispatch Phase = "dispatch" // async task execution
)

// Kind categorizes the error
type Kind string

const (
	KindPathResolution Kind = "path_resolution"
	KindLibraryLoad    Kind = "library_load"
	KindMissingSymbol  Kind = "missing_symbol"
	KindNullHandle     Kind = "null_handle"
	KindInvalidHandle  Kind = "invalid_handle"
	KindInvalidMode    Kind = "invalid_mode"
	KindInvalidParam   Kind = "invalid_param"
	KindBufferTooSmall Kind = "buffer_too_small"
	KindDecodeFailed   Kind = "decode_failed"
	KindEncodeFailed   Kind = "encode_failed"
	KindAllocation     Kind = "allocation"
	KindUnsupported    Kind = "unsupported"
	KindNotReady       Kind = "not_ready"
	KindClosed         Kind = "closed"
	KindInternal       Kind = "internal"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Symbol string
	Mode   string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Symbol != "" {
		b.WriteString(" at ")
		b.WriteString(e.Symbol)
	}

	if e.Mode != "" {
		b.WriteString(" (mode ")
		b.WriteString(e.Mode)
		b.WriteByte(')')
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Symbol sets the entry point name the error refers to
func (b *Builder) Symbol(name string) *Builder {
	b.err.Symbol = name
	return b
}

// Mode sets the transmission mode the error refers to
func (b *Builder) Mode(mode string) *Builder {
	b.err.Mode = mode
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// PathResolution creates an error for a failed library path lookup
func PathResolution(cause error) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindPathResolution,
		Detail: "locate hosting module directory",
		Cause:  cause,
	}
}

// LibraryLoad creates an error for a failed shared library open
func LibraryLoad(path string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindLibraryLoad,
		Detail: fmt.Sprintf("open %q", path),
		Cause:  cause,
	}
}

// NullHandle creates an error for an engine constructor returning null
func NullHandle() *Error {
	return &Error{
		Phase:  PhaseCreate,
		Kind:   KindNullHandle,
		Detail: "engine constructor returned null",
	}
}

// NotReady creates an error for an operation on an engine outside Ready state
func NotReady(state string) *Error {
	return &Error{
		Phase:  PhaseCall,
		Kind:   KindNotReady,
		Detail: fmt.Sprintf("engine is %s, not ready", state),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidParam,
		Detail: detail,
	}
}

// InvalidMode creates an error for an unknown or unsupported mode value
func InvalidMode(phase Phase, mode string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidMode,
		Mode:   mode,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Closed creates an error for use after teardown
func Closed(what string) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s is closed", what),
	}
}

// Internal wraps an unclassified engine fault
func Internal(phase Phase, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInternal,
		Detail: detail,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// MissingSymbolsError is returned when symbol resolution fails.
// It carries every unresolved entry point so one failed load reports the
// whole gap rather than the first hit.
type MissingSymbolsError struct {
	Library string
	Symbols []string
}

// NewMissingSymbolsError creates an error from a list of unresolved names
func NewMissingSymbolsError(library string, symbols []string) *MissingSymbolsError {
	return &MissingSymbolsError{
		Library: library,
		Symbols: symbols,
	}
}

func (e *MissingSymbolsError) Error() string {
	if len(e.Symbols) == 0 {
		return "[link] missing_symbol: no symbols specified"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "missing %d entry point(s) in %s:\n", len(e.Symbols), e.Library)
	for _, name := range e.Symbols {
		b.WriteString("  - ")
		b.WriteString(name)
		b.WriteByte('\n')
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Is reports whether target matches this error type
func (e *MissingSymbolsError) Is(target error) bool {
	_, ok := target.(*MissingSymbolsError)
	return ok
}

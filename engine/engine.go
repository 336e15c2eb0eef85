package engine

import (
	"runtime"
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"

	"github.com/signalhouse/wsjtx-bridge/errors"
	"github.com/signalhouse/wsjtx-bridge/loader"
)

// State is the engine lifecycle position.
type State int32

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Options configures New.
type Options struct {
	// LibraryPath overrides the default executable-adjacent library
	// location. Empty means resolve automatically.
	LibraryPath string

	// Logger receives load and call events. Nil means the package logger.
	Logger *zap.Logger
}

// Engine wraps one live instance inside the loaded engine library. All
// methods fail fast with a not-ready error unless the engine is in
// StateReady; there is no partially-usable state.
//
// Decode and Encode are serialized per instance by the dispatcher.
// PullMessage may run concurrently with them; the engine's message queue
// carries its own lock.
type Engine struct {
	log   *zap.Logger
	lib   *loader.Library
	sym   Symbols
	inst  uintptr
	state atomic.Int32

	supportsWSPR bool
}

// New loads the engine library, resolves and binds its entry points, and
// creates one engine instance. Any failure leaves nothing loaded: the
// library is closed before the error returns.
func New(opts Options) (*Engine, error) {
	e := &Engine{log: opts.Logger}
	if e.log == nil {
		e.log = Logger()
	}
	e.state.Store(int32(StateLoading))

	path := opts.LibraryPath
	if path == "" {
		resolved, err := loader.ResolveLibraryPath()
		if err != nil {
			e.state.Store(int32(StateUnloaded))
			return nil, err
		}
		path = resolved
	}

	lib, err := loader.Open(path, loader.WithLogger(e.log))
	if err != nil {
		e.state.Store(int32(StateUnloaded))
		return nil, err
	}

	addrs, err := lib.Resolve(RequiredSymbols...)
	if err != nil {
		// Resolve closes the library on failure.
		e.state.Store(int32(StateUnloaded))
		return nil, err
	}

	loader.Bind(&e.sym.Create, addrs[SymCreate])
	loader.Bind(&e.sym.Destroy, addrs[SymDestroy])
	loader.Bind(&e.sym.Decode, addrs[SymDecode])
	loader.Bind(&e.sym.PullMessage, addrs[SymPullMessage])
	loader.Bind(&e.sym.Encode, addrs[SymEncode])
	loader.Bind(&e.sym.SampleRate, addrs[SymSampleRate])
	loader.Bind(&e.sym.MaxSamples, addrs[SymMaxSamples])
	loader.Bind(&e.sym.ErrorString, addrs[SymErrorString])

	if addr, symErr := lib.Sym(SymDecodeWSPR); symErr == nil {
		loader.Bind(&e.sym.DecodeWSPR, addr)
		e.supportsWSPR = true
	}

	e.lib = lib
	if err := e.createInstance(); err != nil {
		lib.Close()
		e.lib = nil
		e.state.Store(int32(StateUnloaded))
		return nil, err
	}

	e.state.Store(int32(StateReady))
	e.log.Info("engine ready",
		zap.String("library", lib.Path()),
		zap.Bool("wspr", e.supportsWSPR))
	return e, nil
}

// NewFromSymbols builds an engine around an already-bound entry point set.
// Used for in-process engines; the lifecycle is identical to New minus the
// library load.
func NewFromSymbols(sym Symbols, log *zap.Logger) (*Engine, error) {
	e := &Engine{log: log, sym: sym}
	if e.log == nil {
		e.log = Logger()
	}
	e.state.Store(int32(StateLoading))
	e.supportsWSPR = sym.DecodeWSPR != nil

	if err := e.createInstance(); err != nil {
		e.state.Store(int32(StateUnloaded))
		return nil, err
	}

	e.state.Store(int32(StateReady))
	return e, nil
}

func (e *Engine) createInstance() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.PhaseCreate, errors.KindInternal).
				Symbol(SymCreate).
				Detail("constructor panicked: %v", r).
				Build()
		}
	}()

	inst := e.sym.Create()
	if inst == 0 {
		return errors.NullHandle()
	}
	e.inst = inst
	return nil
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// SupportsWSPR reports whether the loaded engine build exports the deep
// WSPR decoder entry point.
func (e *Engine) SupportsWSPR() bool {
	return e.supportsWSPR
}

func (e *Engine) ready() error {
	if s := e.State(); s != StateReady {
		return errors.NotReady(s.String())
	}
	return nil
}

// call invokes fn with panic containment. A panic inside the engine becomes
// an internal error instead of unwinding into the caller.
func (e *Engine) call(symbol string, fn func() int32) (code int32, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("engine call panicked",
				zap.String("symbol", symbol),
				zap.Any("panic", r))
			err = errors.New(errors.PhaseCall, errors.KindInternal).
				Symbol(symbol).
				Detail("engine panicked: %v", r).
				Build()
		}
	}()
	return fn(), nil
}

// Decode runs the engine's decoder over samples. The engine copies the
// buffer before returning, so the slice is reusable once Decode returns.
// The returned code is the raw engine status.
func (e *Engine) Decode(mode int32, samples []float32, freqHz, threads int32) (int32, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}

	var ptr uintptr
	if len(samples) > 0 {
		ptr = uintptr(unsafe.Pointer(&samples[0]))
	}
	code, err := e.call(SymDecode, func() int32 {
		return e.sym.Decode(e.inst, mode, ptr, int32(len(samples)), freqHz, threads)
	})
	runtime.KeepAlive(samples)
	return code, err
}

// DecodeWSPR runs the deep WSPR decoder over interleaved I/Q samples.
func (e *Engine) DecodeWSPR(iq []float32, opts *WSPROptions) (int32, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if !e.supportsWSPR {
		return 0, errors.Unsupported(errors.PhaseCall, "engine build lacks "+SymDecodeWSPR)
	}

	var ptr uintptr
	if len(iq) > 0 {
		ptr = uintptr(unsafe.Pointer(&iq[0]))
	}
	code, err := e.call(SymDecodeWSPR, func() int32 {
		return e.sym.DecodeWSPR(e.inst, ptr, int32(len(iq)), uintptr(unsafe.Pointer(opts)))
	})
	runtime.KeepAlive(iq)
	runtime.KeepAlive(opts)
	return code, err
}

// PullMessage pops the oldest queued decode into out. The raw return is
// 1 when a message was written, 0 when the queue is empty, negative on
// failure.
func (e *Engine) PullMessage(out *Message) (int32, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}

	code, err := e.call(SymPullMessage, func() int32 {
		return e.sym.PullMessage(e.inst, uintptr(unsafe.Pointer(out)))
	})
	runtime.KeepAlive(out)
	return code, err
}

// Encode synthesizes text into out. On entry the capacity is len(out); on a
// zero return, written holds the sample count produced. A too-small buffer
// fails without partial writes.
func (e *Engine) Encode(mode int32, text string, freqHz int32, out []float32) (written int32, code int32, err error) {
	if err := e.ready(); err != nil {
		return 0, 0, err
	}

	count := int32(len(out))
	var ptr uintptr
	if len(out) > 0 {
		ptr = uintptr(unsafe.Pointer(&out[0]))
	}
	code, err = e.call(SymEncode, func() int32 {
		return e.sym.Encode(e.inst, mode, text, freqHz, ptr, uintptr(unsafe.Pointer(&count)))
	})
	runtime.KeepAlive(out)
	return count, code, err
}

// MaxSamples returns the engine's own buffer bound for mode.
func (e *Engine) MaxSamples(mode int32) (int32, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	return e.call(SymMaxSamples, func() int32 {
		return e.sym.MaxSamples(mode)
	})
}

// ErrorString returns the engine's description of a status code.
func (e *Engine) ErrorString(code int32) (string, error) {
	if err := e.ready(); err != nil {
		return "", err
	}
	var s string
	_, err := e.call(SymErrorString, func() int32 {
		s = e.sym.ErrorString(code)
		return 0
	})
	return s, err
}

// Close tears the engine down: the instance is destroyed exactly once and
// the library unloaded. Safe to call more than once.
func (e *Engine) Close() error {
	if !e.state.CompareAndSwap(int32(StateReady), int32(StateDestroyed)) {
		return nil
	}

	if e.inst != 0 {
		// Destruction is best effort; a panicking destructor must not
		// block teardown of the library.
		func() {
			defer func() {
				if r := recover(); r != nil {
					e.log.Error("engine destructor panicked", zap.Any("panic", r))
				}
			}()
			e.sym.Destroy(e.inst)
		}()
		e.inst = 0
	}

	if e.lib != nil {
		err := e.lib.Close()
		e.lib = nil
		return err
	}
	return nil
}

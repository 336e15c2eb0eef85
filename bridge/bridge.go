package bridge

import (
	stderrors "errors"

	"go.uber.org/zap"

	"github.com/signalhouse/wsjtx-bridge/engine"
	"github.com/signalhouse/wsjtx-bridge/errors"
	"github.com/signalhouse/wsjtx-bridge/modes"
)

// Options configures New.
type Options struct {
	// LibraryPath overrides the default executable-adjacent engine library
	// location.
	LibraryPath string

	// Logger receives facade events. Nil means a no-op logger.
	Logger *zap.Logger

	// NewEngine overrides engine construction. Nil means load the shared
	// library; in-process engines plug in here.
	NewEngine func() (*engine.Engine, error)
}

// Bridge is the flat, handle-based facade over the engine. Every operation
// validates its handle and arguments before touching the engine, and every
// failure comes back as a Status rather than unwinding; the process never
// crashes because the engine misbehaved.
type Bridge struct {
	log       *zap.Logger
	newEngine func() (*engine.Engine, error)
	table     *table
}

// New creates a facade. No library is loaded until the first Create call.
func New(opts Options) *Bridge {
	b := &Bridge{
		log:   opts.Logger,
		table: newTable(),
	}
	if b.log == nil {
		b.log = zap.NewNop()
	}

	b.newEngine = opts.NewEngine
	if b.newEngine == nil {
		b.newEngine = func() (*engine.Engine, error) {
			return engine.New(engine.Options{
				LibraryPath: opts.LibraryPath,
				Logger:      b.log,
			})
		}
	}
	return b
}

// Create loads an engine instance and returns its handle. A failed load
// returns an error and no handle; nothing needs cleanup on failure.
func (b *Bridge) Create() (Handle, error) {
	eng, err := b.newEngine()
	if err != nil {
		b.log.Error("engine create failed", zap.Error(err))
		return 0, err
	}

	h := b.table.insert(eng)
	if h == 0 {
		eng.Close()
		return 0, errors.Closed("bridge")
	}

	b.log.Debug("engine created", zap.Uint32("handle", uint32(h)))
	return h, nil
}

// Destroy tears down the engine behind a handle. Stale and zero handles
// report InvalidHandle; destruction itself is best effort and the handle is
// gone either way.
func (b *Bridge) Destroy(h Handle) Status {
	eng, ok := b.table.remove(h)
	if !ok {
		return StatusInvalidHandle
	}

	if err := eng.Close(); err != nil {
		b.log.Warn("engine teardown failed", zap.Uint32("handle", uint32(h)), zap.Error(err))
	}
	b.log.Debug("engine destroyed", zap.Uint32("handle", uint32(h)))
	return StatusOK
}

// Decode runs the decoder over samples. Decoded transmissions land on the
// engine's internal queue; drain them with PullMessage.
func (b *Bridge) Decode(h Handle, mode modes.Mode, samples []float32, freqHz, threads int) Status {
	eng, ok := b.table.get(h)
	if !ok {
		return StatusInvalidHandle
	}
	if !modes.Valid(mode) {
		return StatusInvalidMode
	}
	if !modes.DecodingSupported(mode) {
		return StatusInvalidMode
	}
	if samples == nil {
		return StatusNullPointer
	}
	if len(samples) == 0 || threads <= 0 || freqHz < 0 {
		return StatusInvalidParam
	}

	code, err := eng.Decode(int32(mode), samples, int32(freqHz), int32(threads))
	st := b.status(code, err)
	if st != StatusOK {
		b.log.Debug("decode failed",
			zap.Uint32("handle", uint32(h)),
			zap.String("reason", b.describe(eng, int32(st))))
	}
	return st
}

// DecodeWSPR runs the deep WSPR decoder over interleaved I/Q samples.
// Engines built without the entry point report InvalidMode.
func (b *Bridge) DecodeWSPR(h Handle, iq []float32, opts DecoderOptions) Status {
	eng, ok := b.table.get(h)
	if !ok {
		return StatusInvalidHandle
	}
	if iq == nil {
		return StatusNullPointer
	}
	if len(iq) == 0 || len(iq)%2 != 0 {
		return StatusInvalidParam
	}

	wire := opts.wire()
	code, err := eng.DecodeWSPR(iq, &wire)
	return b.status(code, err)
}

// SupportsWSPR reports whether the engine behind h has the deep WSPR
// decoder.
func (b *Bridge) SupportsWSPR(h Handle) bool {
	eng, ok := b.table.get(h)
	return ok && eng.SupportsWSPR()
}

// PullMessage pops the oldest decoded transmission into out. Returns 1 when
// a message was written, 0 when the queue is empty, and a negative Status
// value on failure. Each message is delivered exactly once.
func (b *Bridge) PullMessage(h Handle, out *DecodedMessage) int32 {
	eng, ok := b.table.get(h)
	if !ok {
		return int32(StatusInvalidHandle)
	}
	if out == nil {
		return int32(StatusNullPointer)
	}

	var wire engine.Message
	code, err := eng.PullMessage(&wire)
	if err != nil {
		return int32(b.status(code, err))
	}
	if code == 1 {
		*out = messageFromWire(&wire)
	}
	return code
}

// Encode synthesizes text into out and returns the sample count produced.
// A buffer smaller than the waveform fails with BufferTooSmall and writes
// nothing.
func (b *Bridge) Encode(h Handle, mode modes.Mode, text string, freqHz int, out []float32) (int, Status) {
	eng, ok := b.table.get(h)
	if !ok {
		return 0, StatusInvalidHandle
	}
	if !modes.Valid(mode) {
		return 0, StatusInvalidMode
	}
	if !modes.EncodingSupported(mode) {
		return 0, StatusInvalidMode
	}
	if out == nil {
		return 0, StatusNullPointer
	}
	if len(out) == 0 || text == "" || freqHz < 0 {
		return 0, StatusInvalidParam
	}

	written, code, err := eng.Encode(int32(mode), text, int32(freqHz), out)
	if st := b.status(code, err); st != StatusOK {
		b.log.Debug("encode failed",
			zap.Uint32("handle", uint32(h)),
			zap.String("reason", b.describe(eng, int32(st))))
		return 0, st
	}
	return int(written), StatusOK
}

// SampleRate returns the sample rate in Hz for mode. Unknown modes get the
// engine default rather than an error.
func (b *Bridge) SampleRate(mode modes.Mode) int {
	return modes.SampleRate(mode)
}

// MaxSamples returns the largest buffer any operation on mode needs.
func (b *Bridge) MaxSamples(mode modes.Mode) int {
	return modes.MaxSamples(mode)
}

// MaxSamplesFor returns the buffer bound for mode as the engine behind h
// reports it. Engine builds may size windows differently from the static
// catalog, so callers allocating for a live handle ask the engine first.
// Stale handles and engine failures fall back to the catalog.
func (b *Bridge) MaxSamplesFor(h Handle, mode modes.Mode) int {
	if eng, ok := b.table.get(h); ok {
		if n, err := eng.MaxSamples(int32(mode)); err == nil && n > 0 {
			return int(n)
		}
	}
	return modes.MaxSamples(mode)
}

// Handles returns the number of live engine instances.
func (b *Bridge) Handles() int {
	return b.table.len()
}

// Close destroys every live engine instance. The facade rejects Create
// afterwards; Status-returning calls report InvalidHandle for the dead
// handles.
func (b *Bridge) Close() error {
	var firstErr error
	for _, eng := range b.table.drain() {
		if err := eng.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// status folds a raw engine code and a call-layer error into one Status.
func (b *Bridge) status(code int32, err error) Status {
	if err == nil {
		return Status(code)
	}

	var be *errors.Error
	if stderrors.As(err, &be) {
		switch be.Kind {
		case errors.KindNotReady:
			return StatusNotInitialized
		case errors.KindUnsupported:
			return StatusInvalidMode
		case errors.KindAllocation:
			return StatusOutOfMemory
		}
	}
	b.log.Error("engine call failed", zap.Error(err))
	return StatusInternal
}

// describe returns the engine's own description of a status code, falling
// back to the facade's table when the engine cannot answer.
func (b *Bridge) describe(eng *engine.Engine, code int32) string {
	if s, err := eng.ErrorString(code); err == nil && s != "" {
		return s
	}
	return ErrorString(Status(code))
}

package wsjtxbridge

import (
	"sync"

	"go.uber.org/zap"

	"github.com/signalhouse/wsjtx-bridge/audio"
	"github.com/signalhouse/wsjtx-bridge/bridge"
	"github.com/signalhouse/wsjtx-bridge/dispatch"
	"github.com/signalhouse/wsjtx-bridge/engine"
	"github.com/signalhouse/wsjtx-bridge/errors"
	"github.com/signalhouse/wsjtx-bridge/modes"
)

// Validation bounds enforced at this surface. The facade below defends
// against raw misuse; this layer gives callers early, descriptive failures.
const (
	MinFrequencyHz = 0
	MaxFrequencyHz = 30_000_000

	MaxMessageLength = 22

	MinThreads = 1
	MaxThreads = 16
)

// Re-exported result types so most callers only import this package.
type (
	DecodedMessage = bridge.DecodedMessage
	DecoderOptions = bridge.DecoderOptions
)

// Config configures Open.
type Config struct {
	// LibraryPath overrides the default executable-adjacent engine library
	// location.
	LibraryPath string

	// Threads is the decoder thread count used when a decode call passes
	// zero. Defaults to 1.
	Threads int

	// ConvertWorkers sets the format conversion pool size.
	ConvertWorkers int

	// Logger receives events from every layer. Nil means a no-op logger.
	Logger *zap.Logger

	// NewEngine overrides engine construction, for in-process engines.
	NewEngine func() (*engine.Engine, error)
}

// Lib is an open engine library with one engine instance behind it. All
// signal operations run asynchronously through an internal dispatcher;
// message draining and mode queries are synchronous and cheap.
//
// Lib is safe for concurrent use.
type Lib struct {
	log    *zap.Logger
	cfg    Config
	br     *bridge.Bridge
	disp   *dispatch.Dispatcher
	handle bridge.Handle

	closeOnce sync.Once
	closeErr  error
}

// Open loads the engine library and creates an instance. A failed load
// returns an error and leaves nothing to clean up.
func Open(cfg Config) (*Lib, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Threads < MinThreads {
		cfg.Threads = MinThreads
	}

	br := bridge.New(bridge.Options{
		LibraryPath: cfg.LibraryPath,
		Logger:      log,
		NewEngine:   cfg.NewEngine,
	})

	h, err := br.Create()
	if err != nil {
		br.Close()
		return nil, err
	}

	return &Lib{
		log:    log,
		cfg:    cfg,
		br:     br,
		disp:   dispatch.New(br, dispatch.Options{Logger: log, ConvertWorkers: cfg.ConvertWorkers}),
		handle: h,
	}, nil
}

func validFrequency(freqHz int) bool {
	return freqHz >= MinFrequencyHz && freqHz <= MaxFrequencyHz
}

// Decode submits an async decode of one receive window. Passing zero
// threads uses the configured default. Decoded transmissions are drained
// with PullMessages once the result arrives.
func (l *Lib) Decode(buf audio.Buffer, mode modes.Mode, freqHz, threads int) (<-chan dispatch.DecodeResult, error) {
	if !modes.Valid(mode) || !modes.DecodingSupported(mode) {
		return nil, errors.InvalidMode(errors.PhaseDispatch, mode.String(), "mode does not support decoding")
	}
	if buf.Len() == 0 {
		return nil, errors.InvalidInput(errors.PhaseDispatch, "empty sample buffer")
	}
	if !validFrequency(freqHz) {
		return nil, errors.InvalidInput(errors.PhaseDispatch, "frequency out of range 0..30 MHz")
	}
	if threads == 0 {
		threads = l.cfg.Threads
	}
	if threads < MinThreads || threads > MaxThreads {
		return nil, errors.InvalidInput(errors.PhaseDispatch, "threads out of range 1..16")
	}

	return l.disp.Decode(l.handle, dispatch.DecodeRequest{
		Mode:        mode,
		Samples:     buf,
		FrequencyHz: freqHz,
		Threads:     threads,
	}), nil
}

// DecodeWSPR submits an async deep WSPR decode over interleaved I/Q
// samples. Fails up front when the loaded engine build lacks the decoder.
func (l *Lib) DecodeWSPR(iq []float32, opts bridge.DecoderOptions) (<-chan dispatch.DecodeResult, error) {
	if !l.br.SupportsWSPR(l.handle) {
		return nil, errors.Unsupported(errors.PhaseDispatch, "engine build lacks the WSPR decoder")
	}
	if len(iq) == 0 || len(iq)%2 != 0 {
		return nil, errors.InvalidInput(errors.PhaseDispatch, "I/Q buffer must be non-empty with interleaved pairs")
	}

	return l.disp.DecodeWSPR(l.handle, dispatch.WSPRRequest{IQ: iq, Options: opts}), nil
}

// Encode submits async waveform synthesis for text.
func (l *Lib) Encode(mode modes.Mode, text string, freqHz int) (<-chan dispatch.EncodeResult, error) {
	if !modes.Valid(mode) || !modes.EncodingSupported(mode) {
		return nil, errors.InvalidMode(errors.PhaseDispatch, mode.String(), "mode does not support encoding")
	}
	if len(text) == 0 || len(text) > MaxMessageLength {
		return nil, errors.InvalidInput(errors.PhaseDispatch, "message must be 1..22 characters")
	}
	if !validFrequency(freqHz) {
		return nil, errors.InvalidInput(errors.PhaseDispatch, "frequency out of range 0..30 MHz")
	}

	return l.disp.Encode(l.handle, dispatch.EncodeRequest{
		Mode:        mode,
		Text:        text,
		FrequencyHz: freqHz,
	}), nil
}

// Convert submits an async sample format conversion.
func (l *Lib) Convert(buf audio.Buffer, target audio.Format) <-chan dispatch.ConvertResult {
	return l.disp.Convert(dispatch.ConvertRequest{Buffer: buf, Target: target})
}

// PullMessage pops the oldest decoded transmission. Returns 1 with out
// filled, 0 when the queue is empty, negative on failure.
func (l *Lib) PullMessage(out *bridge.DecodedMessage) int32 {
	return l.br.PullMessage(l.handle, out)
}

// PullMessages drains the whole message queue in decode order. An empty
// queue yields an empty slice.
func (l *Lib) PullMessages() []bridge.DecodedMessage {
	var msgs []bridge.DecodedMessage
	for {
		var m bridge.DecodedMessage
		if l.br.PullMessage(l.handle, &m) != 1 {
			return msgs
		}
		msgs = append(msgs, m)
	}
}

// SupportsWSPR reports whether the loaded engine build has the deep WSPR
// decoder.
func (l *Lib) SupportsWSPR() bool {
	return l.br.SupportsWSPR(l.handle)
}

// SupportedModes lists every known mode in wire order.
func (l *Lib) SupportedModes() []modes.Mode {
	return modes.All()
}

// SampleRate returns the sample rate in Hz for mode.
func (l *Lib) SampleRate(mode modes.Mode) int {
	return modes.SampleRate(mode)
}

// MaxSamples returns the largest buffer any operation on mode needs.
func (l *Lib) MaxSamples(mode modes.Mode) int {
	return modes.MaxSamples(mode)
}

// TransmissionDuration returns the transmission length in seconds for mode.
func (l *Lib) TransmissionDuration(mode modes.Mode) float64 {
	return modes.Duration(mode)
}

// IsEncodingSupported reports whether mode can synthesize waveforms.
func (l *Lib) IsEncodingSupported(mode modes.Mode) bool {
	return modes.Valid(mode) && modes.EncodingSupported(mode)
}

// IsDecodingSupported reports whether mode can decode.
func (l *Lib) IsDecodingSupported(mode modes.Mode) bool {
	return modes.Valid(mode) && modes.DecodingSupported(mode)
}

// Close drains in-flight work, destroys the engine instance, and unloads
// the library. Safe to call more than once.
func (l *Lib) Close() error {
	l.closeOnce.Do(func() {
		l.disp.Close()
		l.br.Destroy(l.handle)
		l.closeErr = l.br.Close()
	})
	return l.closeErr
}

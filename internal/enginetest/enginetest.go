// Package enginetest provides an in-process engine for tests: a full
// implementation of the entry point contract backed by Go maps instead of a
// shared library. Encode embeds the message text in a recognizable waveform
// and Decode recovers it, so round trips exercise the real buffer and queue
// plumbing without signal processing.
package enginetest

import (
	"sync"
	"time"
	"unsafe"

	"github.com/signalhouse/wsjtx-bridge/engine"
	"github.com/signalhouse/wsjtx-bridge/modes"
)

// magic marks the first sample of a synthesized waveform so Decode can tell
// our own encodes from arbitrary audio.
const magic float32 = 0.123456

// Config controls fault injection and feature flags.
type Config struct {
	// CreateFails makes the constructor return a null instance.
	CreateFails bool

	// DecodeCode and EncodeCode, when nonzero, force that status from the
	// corresponding entry point.
	DecodeCode int32
	EncodeCode int32

	// WithWSPR exports the optional deep WSPR entry point.
	WithWSPR bool

	// MaxSamplesOverride, when nonzero, is the buffer bound this engine
	// build reports for every mode. Encode sizes its waveform to match, so
	// tests can tell engine-sourced sizing from the static catalog.
	MaxSamplesOverride int32

	// CallDelay stretches decode and encode calls so concurrency tests can
	// observe overlap.
	CallDelay time.Duration
}

// Fake is one in-process engine library. Symbols() produces the entry point
// set; a single Fake can back many instances, mirroring one loaded shared
// library serving many create calls.
type Fake struct {
	cfg Config

	mu        sync.Mutex
	next      uintptr
	instances map[uintptr]*instance

	destroyed int

	inFlight      int
	maxConcurrent int
}

type instance struct {
	mu    sync.Mutex
	queue []engine.Message
}

// New creates a fake engine library.
func New(cfg Config) *Fake {
	return &Fake{
		cfg:       cfg,
		instances: make(map[uintptr]*instance),
	}
}

// Destroyed returns how many instances have been torn down.
func (f *Fake) Destroyed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.destroyed
}

// MaxConcurrent returns the peak number of simultaneous decode or encode
// calls observed across all instances.
func (f *Fake) MaxConcurrent() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxConcurrent
}

// Queued returns the number of undelivered messages for an instance.
func (f *Fake) Queued(inst uintptr) int {
	f.mu.Lock()
	in := f.instances[inst]
	f.mu.Unlock()
	if in == nil {
		return 0
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.queue)
}

func (f *Fake) enter() {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxConcurrent {
		f.maxConcurrent = f.inFlight
	}
	f.mu.Unlock()
	if f.cfg.CallDelay > 0 {
		time.Sleep(f.cfg.CallDelay)
	}
}

func (f *Fake) exit() {
	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
}

func (f *Fake) maxSamples(mode int32) int32 {
	if f.cfg.MaxSamplesOverride != 0 {
		return f.cfg.MaxSamplesOverride
	}
	return int32(modes.MaxSamples(modes.Mode(mode)))
}

func (f *Fake) get(inst uintptr) *instance {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.instances[inst]
}

// Symbols returns the bound entry point set for this fake library.
func (f *Fake) Symbols() engine.Symbols {
	sym := engine.Symbols{
		Create:      f.create,
		Destroy:     f.destroy,
		Decode:      f.decode,
		PullMessage: f.pullMessage,
		Encode:      f.encode,
		SampleRate: func(mode int32) int32 {
			return int32(modes.SampleRate(modes.Mode(mode)))
		},
		MaxSamples: func(mode int32) int32 {
			return f.maxSamples(mode)
		},
		ErrorString: errorString,
	}
	if f.cfg.WithWSPR {
		sym.DecodeWSPR = f.decodeWSPR
	}
	return sym
}

func (f *Fake) create() uintptr {
	if f.cfg.CreateFails {
		return 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.instances[f.next] = &instance{}
	return f.next
}

func (f *Fake) destroy(inst uintptr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.instances[inst]; ok {
		delete(f.instances, inst)
		f.destroyed++
	}
}

func (f *Fake) decode(inst uintptr, mode int32, samples uintptr, count, freqHz, threads int32) int32 {
	in := f.get(inst)
	if in == nil {
		return -1
	}
	if samples == 0 {
		return -4
	}
	if count <= 0 || threads <= 0 {
		return -3
	}
	if f.cfg.DecodeCode != 0 {
		return f.cfg.DecodeCode
	}

	f.enter()
	defer f.exit()

	buf := unsafe.Slice((*float32)(unsafe.Pointer(samples)), int(count))
	text, ok := recoverText(buf)
	if !ok {
		// No signal found; a clean decode of empty air.
		return 0
	}

	msg := engine.Message{
		Hour: 12, Minute: 34, Second: 56,
		SNR: -10, Sync: 1.5, DT: 0.2,
		Freq: freqHz,
	}
	msg.SetText(text)

	in.mu.Lock()
	in.queue = append(in.queue, msg)
	in.mu.Unlock()
	return 0
}

func (f *Fake) decodeWSPR(inst, iq uintptr, count int32, opts uintptr) int32 {
	in := f.get(inst)
	if in == nil {
		return -1
	}
	if iq == 0 || opts == 0 {
		return -4
	}
	if count <= 0 || count%2 != 0 {
		return -3
	}

	f.enter()
	defer f.exit()

	o := (*engine.WSPROptions)(unsafe.Pointer(opts))
	buf := unsafe.Slice((*float32)(unsafe.Pointer(iq)), int(count))
	text, ok := recoverText(buf)
	if !ok {
		return 0
	}

	msg := engine.Message{
		Hour: 12, Minute: 34, Second: 0,
		SNR: -28, Sync: 0.4, DT: 0.1,
		Freq: o.DialFreqHz,
	}
	msg.SetText(text)

	in.mu.Lock()
	in.queue = append(in.queue, msg)
	in.mu.Unlock()
	return 0
}

func (f *Fake) pullMessage(inst, out uintptr) int32 {
	in := f.get(inst)
	if in == nil {
		return -1
	}
	if out == 0 {
		return -4
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if len(in.queue) == 0 {
		return 0
	}

	m := (*engine.Message)(unsafe.Pointer(out))
	*m = in.queue[0]
	in.queue = in.queue[1:]
	return 1
}

func (f *Fake) encode(inst uintptr, mode int32, text string, freqHz int32, out uintptr, count uintptr) int32 {
	in := f.get(inst)
	if in == nil {
		return -1
	}
	if out == 0 || count == 0 {
		return -4
	}
	if text == "" {
		return -3
	}
	if f.cfg.EncodeCode != 0 {
		return f.cfg.EncodeCode
	}

	f.enter()
	defer f.exit()

	required := f.maxSamples(mode)
	n := (*int32)(unsafe.Pointer(count))
	if *n < required {
		return -5
	}

	buf := unsafe.Slice((*float32)(unsafe.Pointer(out)), int(*n))
	embedText(buf[:required], text)
	*n = required
	return 0
}

// embedText writes the recognizable waveform: magic, length, then one
// sample per text byte, with silence padding to fill the window.
func embedText(buf []float32, text string) {
	for i := range buf {
		buf[i] = 0
	}
	buf[0] = magic
	buf[1] = float32(len(text))
	for i := 0; i < len(text) && 2+i < len(buf); i++ {
		buf[2+i] = float32(text[i]) / 256
	}
}

func recoverText(buf []float32) (string, bool) {
	if len(buf) < 2 || buf[0] != magic {
		return "", false
	}
	n := int(buf[1])
	if n <= 0 || 2+n > len(buf) {
		return "", false
	}
	text := make([]byte, n)
	for i := range text {
		text[i] = byte(buf[2+i] * 256)
	}
	return string(text), true
}

func errorString(code int32) string {
	switch code {
	case 0:
		return "Success"
	case -1:
		return "Invalid handle"
	case -3:
		return "Invalid parameter"
	case -4:
		return "Null pointer"
	case -5:
		return "Buffer too small"
	case -10:
		return "Decode failed"
	case -11:
		return "Encode failed"
	default:
		return "Unknown error"
	}
}

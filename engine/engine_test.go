package engine

import (
	stderrors "errors"
	"strings"
	"testing"
	"unsafe"

	"go.uber.org/zap"

	"github.com/signalhouse/wsjtx-bridge/errors"
)

func testSymbols() Symbols {
	return Symbols{
		Create:  func() uintptr { return 1 },
		Destroy: func(uintptr) {},
		Decode: func(inst uintptr, mode int32, samples uintptr, count, freqHz, threads int32) int32 {
			return 0
		},
		PullMessage: func(inst, out uintptr) int32 { return 0 },
		Encode: func(inst uintptr, mode int32, text string, freqHz int32, out uintptr, count uintptr) int32 {
			return 0
		},
		SampleRate:  func(mode int32) int32 { return 48000 },
		MaxSamples:  func(mode int32) int32 { return 606720 },
		ErrorString: func(code int32) string { return "Success" },
	}
}

func TestLifecycle(t *testing.T) {
	e, err := NewFromSymbols(testSymbols(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewFromSymbols: %v", err)
	}
	if e.State() != StateReady {
		t.Fatalf("state = %v, want ready", e.State())
	}

	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if e.State() != StateDestroyed {
		t.Errorf("state after close = %v", e.State())
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}

	_, err = e.Decode(0, []float32{0}, 1500, 1)
	var be *errors.Error
	if !stderrors.As(err, &be) || be.Kind != errors.KindNotReady {
		t.Errorf("call after close = %v, want not_ready", err)
	}
}

func TestNullInstanceFailsCreate(t *testing.T) {
	sym := testSymbols()
	sym.Create = func() uintptr { return 0 }

	_, err := NewFromSymbols(sym, zap.NewNop())
	var be *errors.Error
	if !stderrors.As(err, &be) || be.Kind != errors.KindNullHandle {
		t.Fatalf("expected null_handle, got %v", err)
	}
}

func TestDecodePassesBufferAndArgs(t *testing.T) {
	var gotMode, gotCount, gotFreq, gotThreads int32
	var gotFirst float32

	sym := testSymbols()
	sym.Decode = func(inst uintptr, mode int32, samples uintptr, count, freqHz, threads int32) int32 {
		gotMode, gotCount, gotFreq, gotThreads = mode, count, freqHz, threads
		buf := unsafe.Slice((*float32)(unsafe.Pointer(samples)), int(count))
		gotFirst = buf[0]
		return 0
	}

	e, err := NewFromSymbols(sym, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	code, err := e.Decode(1, []float32{0.25, 0.5}, 1500, 4)
	if err != nil || code != 0 {
		t.Fatalf("Decode = %d, %v", code, err)
	}
	if gotMode != 1 || gotCount != 2 || gotFreq != 1500 || gotThreads != 4 {
		t.Errorf("args = mode %d count %d freq %d threads %d", gotMode, gotCount, gotFreq, gotThreads)
	}
	if gotFirst != 0.25 {
		t.Errorf("first sample = %v", gotFirst)
	}
}

func TestPullMessageWritesWireStruct(t *testing.T) {
	sym := testSymbols()
	sym.PullMessage = func(inst, out uintptr) int32 {
		m := (*Message)(unsafe.Pointer(out))
		*m = Message{Hour: 12, Minute: 34, Second: 56, SNR: -10, Sync: 1.5, DT: 0.2, Freq: 1500}
		m.SetText("CQ TEST K1ABC FN42")
		return 1
	}

	e, err := NewFromSymbols(sym, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	var m Message
	code, err := e.PullMessage(&m)
	if err != nil || code != 1 {
		t.Fatalf("PullMessage = %d, %v", code, err)
	}
	if m.Hour != 12 || m.SNR != -10 || m.Freq != 1500 {
		t.Errorf("message = %+v", m)
	}
	if got := m.TextString(); got != "CQ TEST K1ABC FN42" {
		t.Errorf("text = %q", got)
	}
}

func TestEncodeCountInOut(t *testing.T) {
	const produced = 4

	sym := testSymbols()
	sym.Encode = func(inst uintptr, mode int32, text string, freqHz int32, out uintptr, count uintptr) int32 {
		n := (*int32)(unsafe.Pointer(count))
		if *n < produced {
			return -5 // too small, no partial write
		}
		buf := unsafe.Slice((*float32)(unsafe.Pointer(out)), int(*n))
		for i := 0; i < produced; i++ {
			buf[i] = float32(i) * 0.1
		}
		*n = produced
		return 0
	}

	e, err := NewFromSymbols(sym, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	out := make([]float32, 16)
	written, code, err := e.Encode(0, "CQ TEST", 1500, out)
	if err != nil || code != 0 {
		t.Fatalf("Encode = code %d, %v", code, err)
	}
	if written != produced {
		t.Errorf("written = %d, want %d", written, produced)
	}
	if out[3] != 0.3 {
		t.Errorf("out[3] = %v", out[3])
	}

	small := make([]float32, 2)
	_, code, err = e.Encode(0, "CQ TEST", 1500, small)
	if err != nil || code != -5 {
		t.Fatalf("Encode small = code %d, %v", code, err)
	}
	if small[0] != 0 || small[1] != 0 {
		t.Error("too-small encode must not write partial samples")
	}
}

func TestCallPanicContained(t *testing.T) {
	sym := testSymbols()
	sym.Decode = func(inst uintptr, mode int32, samples uintptr, count, freqHz, threads int32) int32 {
		panic("engine fault")
	}

	e, err := NewFromSymbols(sym, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	_, err = e.Decode(0, []float32{0}, 1500, 1)
	var be *errors.Error
	if !stderrors.As(err, &be) || be.Kind != errors.KindInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
	if !strings.Contains(err.Error(), "engine fault") {
		t.Errorf("panic value missing from error: %v", err)
	}

	// A contained panic must not poison the engine.
	if e.State() != StateReady {
		t.Errorf("state after contained panic = %v", e.State())
	}
}

func TestWSPRUnsupported(t *testing.T) {
	e, err := NewFromSymbols(testSymbols(), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	if e.SupportsWSPR() {
		t.Fatal("SupportsWSPR should be false without the entry point")
	}
	_, err = e.DecodeWSPR([]float32{0, 0}, &WSPROptions{})
	var be *errors.Error
	if !stderrors.As(err, &be) || be.Kind != errors.KindUnsupported {
		t.Fatalf("expected unsupported, got %v", err)
	}
}

func TestWSPRDetectedFromSymbols(t *testing.T) {
	sym := testSymbols()
	sym.DecodeWSPR = func(inst, iq uintptr, count int32, opts uintptr) int32 {
		o := (*WSPROptions)(unsafe.Pointer(opts))
		if o.Passes != 2 {
			return -3
		}
		return 0
	}

	e, err := NewFromSymbols(sym, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	if !e.SupportsWSPR() {
		t.Fatal("SupportsWSPR should be true")
	}
	code, err := e.DecodeWSPR([]float32{0, 0, 0, 0}, &WSPROptions{Passes: 2})
	if err != nil || code != 0 {
		t.Fatalf("DecodeWSPR = %d, %v", code, err)
	}
}

func TestModeQueriesReachEngine(t *testing.T) {
	sym := testSymbols()
	sym.MaxSamples = func(mode int32) int32 { return 1000 + mode }
	sym.ErrorString = func(code int32) string {
		if code == -5 {
			return "Buffer too small"
		}
		return "Unknown error"
	}

	e, err := NewFromSymbols(sym, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	n, err := e.MaxSamples(3)
	if err != nil || n != 1003 {
		t.Errorf("MaxSamples = %d, %v", n, err)
	}
	s, err := e.ErrorString(-5)
	if err != nil || s != "Buffer too small" {
		t.Errorf("ErrorString = %q, %v", s, err)
	}

	e.Close()
	if _, err := e.MaxSamples(3); err == nil {
		t.Error("MaxSamples after close should fail")
	}
	if _, err := e.ErrorString(-5); err == nil {
		t.Error("ErrorString after close should fail")
	}
}

func TestMessageText(t *testing.T) {
	var m Message

	m.SetText("CQ DX")
	if m.TextString() != "CQ DX" {
		t.Errorf("text = %q", m.TextString())
	}

	long := strings.Repeat("A", 200)
	m.SetText(long)
	if got := m.TextString(); len(got) != TextCapacity-1 {
		t.Errorf("truncated length = %d, want %d", len(got), TextCapacity-1)
	}
}

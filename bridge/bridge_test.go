package bridge

import (
	"testing"

	"go.uber.org/zap"

	"github.com/signalhouse/wsjtx-bridge/engine"
	"github.com/signalhouse/wsjtx-bridge/internal/enginetest"
	"github.com/signalhouse/wsjtx-bridge/modes"
)

func newTestBridge(t *testing.T, cfg enginetest.Config) (*Bridge, *enginetest.Fake) {
	t.Helper()
	fake := enginetest.New(cfg)
	b := New(Options{
		NewEngine: func() (*engine.Engine, error) {
			return engine.NewFromSymbols(fake.Symbols(), zap.NewNop())
		},
	})
	t.Cleanup(func() { b.Close() })
	return b, fake
}

func TestCreateDestroy(t *testing.T) {
	b, fake := newTestBridge(t, enginetest.Config{})

	h, err := b.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if h == 0 {
		t.Fatal("handle must be nonzero")
	}
	if b.Handles() != 1 {
		t.Errorf("Handles = %d", b.Handles())
	}

	if st := b.Destroy(h); st != StatusOK {
		t.Errorf("Destroy = %v", st)
	}
	if fake.Destroyed() != 1 {
		t.Errorf("destroyed instances = %d", fake.Destroyed())
	}

	// A destroyed handle is stale everywhere.
	if st := b.Destroy(h); st != StatusInvalidHandle {
		t.Errorf("second Destroy = %v", st)
	}
	if st := b.Decode(h, modes.FT8, []float32{0}, 1500, 1); st != StatusInvalidHandle {
		t.Errorf("Decode on stale handle = %v", st)
	}
}

func TestCreateFailure(t *testing.T) {
	b, _ := newTestBridge(t, enginetest.Config{CreateFails: true})

	h, err := b.Create()
	if err == nil {
		t.Fatal("expected create failure")
	}
	if h != 0 {
		t.Errorf("failed create must not return a handle, got %d", h)
	}
}

func TestDecodeValidation(t *testing.T) {
	b, _ := newTestBridge(t, enginetest.Config{})
	h, err := b.Create()
	if err != nil {
		t.Fatal(err)
	}

	samples := []float32{0, 0, 0}
	tests := []struct {
		name string
		st   Status
		want Status
	}{
		{"zero handle", b.Decode(0, modes.FT8, samples, 1500, 1), StatusInvalidHandle},
		{"unknown mode", b.Decode(h, modes.Mode(99), samples, 1500, 1), StatusInvalidMode},
		{"negative mode", b.Decode(h, modes.Mode(-1), samples, 1500, 1), StatusInvalidMode},
		{"nil samples", b.Decode(h, modes.FT8, nil, 1500, 1), StatusNullPointer},
		{"empty samples", b.Decode(h, modes.FT8, []float32{}, 1500, 1), StatusInvalidParam},
		{"zero threads", b.Decode(h, modes.FT8, samples, 1500, 0), StatusInvalidParam},
		{"negative frequency", b.Decode(h, modes.FT8, samples, -1, 1), StatusInvalidParam},
	}
	for _, tt := range tests {
		if tt.st != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.st, tt.want)
		}
	}
}

func TestEncodeValidation(t *testing.T) {
	b, _ := newTestBridge(t, enginetest.Config{})
	h, err := b.Create()
	if err != nil {
		t.Fatal(err)
	}

	out := make([]float32, 8)
	if _, st := b.Encode(h, modes.JT4, "CQ TEST", 1500, out); st != StatusInvalidMode {
		t.Errorf("encode on decode-only mode = %v", st)
	}
	if _, st := b.Encode(h, modes.FT8, "", 1500, out); st != StatusInvalidParam {
		t.Errorf("empty text = %v", st)
	}
	if _, st := b.Encode(h, modes.FT8, "CQ TEST", 1500, nil); st != StatusNullPointer {
		t.Errorf("nil buffer = %v", st)
	}
}

func TestEncodeBufferTooSmall(t *testing.T) {
	b, _ := newTestBridge(t, enginetest.Config{})
	h, err := b.Create()
	if err != nil {
		t.Fatal(err)
	}

	small := make([]float32, 64)
	written, st := b.Encode(h, modes.FT8, "CQ TEST K1ABC", 1500, small)
	if st != StatusBufferTooSmall {
		t.Fatalf("status = %v", st)
	}
	if written != 0 {
		t.Errorf("written = %d on failed encode", written)
	}
	for i, v := range small {
		if v != 0 {
			t.Fatalf("sample %d written on failed encode", i)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	b, _ := newTestBridge(t, enginetest.Config{})
	h, err := b.Create()
	if err != nil {
		t.Fatal(err)
	}

	const text = "CQ TEST K1ABC FN42"
	out := make([]float32, b.MaxSamples(modes.FT8))
	written, st := b.Encode(h, modes.FT8, text, 1500, out)
	if st != StatusOK {
		t.Fatalf("Encode = %v", st)
	}
	if written != b.MaxSamples(modes.FT8) {
		t.Errorf("written = %d, want %d", written, b.MaxSamples(modes.FT8))
	}

	if st := b.Decode(h, modes.FT8, out[:written], 1500, 4); st != StatusOK {
		t.Fatalf("Decode = %v", st)
	}

	var msg DecodedMessage
	if got := b.PullMessage(h, &msg); got != 1 {
		t.Fatalf("PullMessage = %d", got)
	}
	if msg.Text != text {
		t.Errorf("text = %q, want %q", msg.Text, text)
	}
	if msg.SNR >= 0 || msg.DeltaFrequency != 1500 {
		t.Errorf("message = %+v", msg)
	}

	// Exactly-once delivery: the queue is empty now.
	if got := b.PullMessage(h, &msg); got != 0 {
		t.Errorf("second PullMessage = %d", got)
	}
}

func TestMaxSamplesFor(t *testing.T) {
	b, _ := newTestBridge(t, enginetest.Config{MaxSamplesOverride: 1234})
	h, err := b.Create()
	if err != nil {
		t.Fatal(err)
	}

	// A live handle answers with the engine's own bound, not the catalog's.
	if got := b.MaxSamplesFor(h, modes.FT8); got != 1234 {
		t.Errorf("MaxSamplesFor live handle = %d, want 1234", got)
	}

	b.Destroy(h)
	if got, want := b.MaxSamplesFor(h, modes.FT8), modes.MaxSamples(modes.FT8); got != want {
		t.Errorf("MaxSamplesFor stale handle = %d, want catalog %d", got, want)
	}
}

func TestPullMessageErrors(t *testing.T) {
	b, _ := newTestBridge(t, enginetest.Config{})
	h, err := b.Create()
	if err != nil {
		t.Fatal(err)
	}

	var msg DecodedMessage
	if got := b.PullMessage(0, &msg); got != int32(StatusInvalidHandle) {
		t.Errorf("zero handle = %d", got)
	}
	if got := b.PullMessage(h, nil); got != int32(StatusNullPointer) {
		t.Errorf("nil out = %d", got)
	}
	if got := b.PullMessage(h, &msg); got != 0 {
		t.Errorf("empty queue = %d", got)
	}
}

func TestForcedDecodeFailure(t *testing.T) {
	b, _ := newTestBridge(t, enginetest.Config{DecodeCode: int32(StatusDecodeFailed)})
	h, err := b.Create()
	if err != nil {
		t.Fatal(err)
	}

	if st := b.Decode(h, modes.FT8, []float32{0}, 1500, 1); st != StatusDecodeFailed {
		t.Errorf("Decode = %v", st)
	}
}

func TestWSPR(t *testing.T) {
	b, _ := newTestBridge(t, enginetest.Config{WithWSPR: true})
	h, err := b.Create()
	if err != nil {
		t.Fatal(err)
	}
	if !b.SupportsWSPR(h) {
		t.Fatal("SupportsWSPR should be true")
	}

	if st := b.DecodeWSPR(h, []float32{0, 0, 0}, DecoderOptions{}); st != StatusInvalidParam {
		t.Errorf("odd-length IQ = %v", st)
	}
	if st := b.DecodeWSPR(h, nil, DecoderOptions{}); st != StatusNullPointer {
		t.Errorf("nil IQ = %v", st)
	}
	if st := b.DecodeWSPR(h, make([]float32, 16), DecoderOptions{Passes: 2}); st != StatusOK {
		t.Errorf("DecodeWSPR = %v", st)
	}
}

func TestWSPRUnsupportedEngine(t *testing.T) {
	b, _ := newTestBridge(t, enginetest.Config{})
	h, err := b.Create()
	if err != nil {
		t.Fatal(err)
	}

	if b.SupportsWSPR(h) {
		t.Fatal("SupportsWSPR should be false")
	}
	if st := b.DecodeWSPR(h, make([]float32, 4), DecoderOptions{}); st != StatusInvalidMode {
		t.Errorf("DecodeWSPR without support = %v", st)
	}
}

func TestClose(t *testing.T) {
	b, fake := newTestBridge(t, enginetest.Config{})
	if _, err := b.Create(); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Create(); err != nil {
		t.Fatal(err)
	}

	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if fake.Destroyed() != 2 {
		t.Errorf("destroyed = %d", fake.Destroyed())
	}
	if _, err := b.Create(); err == nil {
		t.Error("Create after Close should fail")
	}
}

func TestHandleRecycling(t *testing.T) {
	b, _ := newTestBridge(t, enginetest.Config{})

	h1, err := b.Create()
	if err != nil {
		t.Fatal(err)
	}
	b.Destroy(h1)

	h2, err := b.Create()
	if err != nil {
		t.Fatal(err)
	}
	if h2 == 0 {
		t.Fatal("recycled handle must be nonzero")
	}
	if st := b.Decode(h2, modes.FT8, []float32{0}, 1500, 1); st != StatusOK {
		t.Errorf("Decode on recycled handle = %v", st)
	}
}

func TestStatusStrings(t *testing.T) {
	if StatusOK.String() != "OK" || StatusBufferTooSmall.String() != "BUFFER_TOO_SMALL" {
		t.Error("status names wrong")
	}
	if Status(-42).String() != "STATUS(-42)" {
		t.Errorf("unknown status = %v", Status(-42))
	}
	if ErrorString(StatusOK) != "Success" {
		t.Errorf("ErrorString(OK) = %q", ErrorString(StatusOK))
	}
	if ErrorString(Status(-42)) != "Unknown error" {
		t.Errorf("ErrorString(-42) = %q", ErrorString(Status(-42)))
	}
	if !StatusOK.OK() || StatusInternal.OK() {
		t.Error("OK() wrong")
	}
}

func TestDecoderOptionsWire(t *testing.T) {
	w := DecoderOptions{
		DialFrequencyHz: 14095600,
		Callsign:        "VERYLONGCALLSIGN123",
		Locator:         "FN42ab17",
		QuickMode:       true,
	}.wire()

	if w.DialFreqHz != 14095600 || w.QuickMode != 1 || w.Subtraction != 0 {
		t.Errorf("wire = %+v", w)
	}
	if w.Passes != 1 {
		t.Errorf("zero passes should default to 1, got %d", w.Passes)
	}
	// Fixed fields keep their NUL terminator.
	if w.Callsign[len(w.Callsign)-1] != 0 || w.Locator[len(w.Locator)-1] != 0 {
		t.Error("wire fields must stay NUL terminated")
	}
}

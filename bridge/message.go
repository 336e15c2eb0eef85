package bridge

import "github.com/signalhouse/wsjtx-bridge/engine"

// DecodedMessage is one decoded transmission in caller-friendly form. It is
// a value copy; the engine's internal queue slot is released the moment the
// pull returns.
type DecodedMessage struct {
	Hour   int
	Minute int
	Second int

	// SNR is the signal-to-noise ratio in dB.
	SNR int

	// Sync is the decoder's sync quality metric.
	Sync float32

	// DeltaTime is the time offset from the expected window start, seconds.
	DeltaTime float32

	// DeltaFrequency is the audio frequency offset in Hz.
	DeltaFrequency int

	// Text is the decoded message text, at most 79 characters.
	Text string
}

func messageFromWire(m *engine.Message) DecodedMessage {
	return DecodedMessage{
		Hour:           int(m.Hour),
		Minute:         int(m.Minute),
		Second:         int(m.Second),
		SNR:            int(m.SNR),
		Sync:           m.Sync,
		DeltaTime:      m.DT,
		DeltaFrequency: int(m.Freq),
		Text:           m.TextString(),
	}
}

// DecoderOptions configures the deep WSPR decode path. The zero value asks
// for a single-pass decode with no reporter identity.
type DecoderOptions struct {
	// DialFrequencyHz is the receiver dial frequency, used for reporting.
	DialFrequencyHz int

	// Callsign and Locator identify the reporting station. Both may be
	// empty; they are truncated to the wire field sizes.
	Callsign string
	Locator  string

	// Passes is the number of decode passes. Zero means one pass.
	Passes int

	QuickMode    bool
	UseHashTable bool
	Subtraction  bool
}

func (o DecoderOptions) wire() engine.WSPROptions {
	passes := o.Passes
	if passes <= 0 {
		passes = 1
	}
	w := engine.WSPROptions{
		DialFreqHz: int32(o.DialFrequencyHz),
		Passes:     int32(passes),
	}
	if o.QuickMode {
		w.QuickMode = 1
	}
	if o.UseHashTable {
		w.UseHashTable = 1
	}
	if o.Subtraction {
		w.Subtraction = 1
	}
	copy(w.Callsign[:len(w.Callsign)-1], o.Callsign)
	copy(w.Locator[:len(w.Locator)-1], o.Locator)
	return w
}

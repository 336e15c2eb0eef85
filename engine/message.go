package engine

// TextCapacity is the fixed size of the message text field on the wire.
// Shorter texts are NUL padded; the terminator always fits.
const TextCapacity = 80

// Message is the wire layout of one decoded transmission as the engine
// writes it. Field order and widths match the engine's C struct exactly;
// do not reorder.
type Message struct {
	Hour   int32
	Minute int32
	Second int32
	SNR    int32
	Sync   float32
	DT     float32
	Freq   int32
	Text   [TextCapacity]byte
}

// TextString returns the message text up to the first NUL.
func (m *Message) TextString() string {
	for i, b := range m.Text {
		if b == 0 {
			return string(m.Text[:i])
		}
	}
	return string(m.Text[:])
}

// SetText copies s into the fixed text field, truncating to leave room for
// the NUL terminator.
func (m *Message) SetText(s string) {
	n := copy(m.Text[:TextCapacity-1], s)
	for i := n; i < TextCapacity; i++ {
		m.Text[i] = 0
	}
}

// WSPROptions is the wire layout of the WSPR decoder configuration block
// passed to the optional deep-decode entry point.
type WSPROptions struct {
	DialFreqHz   int32
	Passes       int32
	QuickMode    int32
	UseHashTable int32
	Subtraction  int32
	Callsign     [16]byte
	Locator      [8]byte
}

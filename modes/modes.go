package modes

import (
	"math"
	"strconv"
	"strings"
)

// Mode identifies a transmission protocol. Values match the engine's wire
// enumeration and must not be reordered.
type Mode int32

const (
	FT8 Mode = iota
	FT4
	JT4
	JT65
	JT9
	FST4
	Q65
	FST4W
	WSPR
)

// Documented fallbacks for unrecognized mode values. Metadata lookups never
// fail; they degrade to these instead.
const (
	DefaultSampleRate = 12000
	DefaultDuration   = 60.0
	defaultWindowSecs = 15
)

// Info holds the fixed parameters of one transmission mode.
// Entries are immutable for the process lifetime.
type Info struct {
	SampleRate        int
	Duration          float64 // transmission duration, seconds
	EncodingSupported bool
	DecodingSupported bool
}

var catalog = [...]Info{
	FT8:   {SampleRate: 48000, Duration: 12.64, EncodingSupported: true, DecodingSupported: true},
	FT4:   {SampleRate: 48000, Duration: 6.0, EncodingSupported: true, DecodingSupported: true},
	JT4:   {SampleRate: 11025, Duration: 47.1, DecodingSupported: true},
	JT65:  {SampleRate: 11025, Duration: 46.8, DecodingSupported: true},
	JT9:   {SampleRate: 12000, Duration: 49.0, DecodingSupported: true},
	FST4:  {SampleRate: 12000, Duration: 60.0, DecodingSupported: true},
	Q65:   {SampleRate: 12000, Duration: 60.0, DecodingSupported: true},
	FST4W: {SampleRate: 12000, Duration: 120.0, DecodingSupported: true},
	WSPR:  {SampleRate: 12000, Duration: 110.6, DecodingSupported: true},
}

var names = [...]string{
	FT8:   "FT8",
	FT4:   "FT4",
	JT4:   "JT4",
	JT65:  "JT65",
	JT9:   "JT9",
	FST4:  "FST4",
	Q65:   "Q65",
	FST4W: "FST4W",
	WSPR:  "WSPR",
}

// Valid reports whether m has a catalog entry.
func Valid(m Mode) bool {
	return m >= 0 && int(m) < len(catalog)
}

// Lookup returns the catalog entry for m.
func Lookup(m Mode) (Info, bool) {
	if !Valid(m) {
		return Info{}, false
	}
	return catalog[m], true
}

// SampleRate returns the sample rate for m in Hz.
// Unknown modes fall back to DefaultSampleRate rather than failing.
func SampleRate(m Mode) int {
	if info, ok := Lookup(m); ok {
		return info.SampleRate
	}
	return DefaultSampleRate
}

// Duration returns the transmission duration for m in seconds.
// Unknown modes fall back to DefaultDuration.
func Duration(m Mode) float64 {
	if info, ok := Lookup(m); ok {
		return info.Duration
	}
	return DefaultDuration
}

// MaxSamples returns the sample capacity needed to hold one full
// transmission of m. Unknown modes fall back to a 15-second window at the
// default rate.
func MaxSamples(m Mode) int {
	if info, ok := Lookup(m); ok {
		return int(math.Round(float64(info.SampleRate) * info.Duration))
	}
	return DefaultSampleRate * defaultWindowSecs
}

// EncodingSupported reports whether the engine can generate audio for m.
func EncodingSupported(m Mode) bool {
	info, ok := Lookup(m)
	return ok && info.EncodingSupported
}

// DecodingSupported reports whether the engine can decode audio for m.
func DecodingSupported(m Mode) bool {
	info, ok := Lookup(m)
	return ok && info.DecodingSupported
}

// All returns every cataloged mode in wire order.
func All() []Mode {
	out := make([]Mode, len(catalog))
	for i := range catalog {
		out[i] = Mode(i)
	}
	return out
}

// String returns the conventional mode name, or "MODE(n)" for unknown values.
func (m Mode) String() string {
	if m >= 0 && int(m) < len(names) {
		return names[m]
	}
	return "MODE(" + strconv.Itoa(int(m)) + ")"
}

// Parse resolves a case-insensitive mode name.
func Parse(name string) (Mode, bool) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range names {
		if n == upper {
			return Mode(i), true
		}
	}
	return 0, false
}

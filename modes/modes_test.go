package modes

import (
	"math"
	"testing"
)

func TestCatalogTotal(t *testing.T) {
	for _, m := range All() {
		info, ok := Lookup(m)
		if !ok {
			t.Fatalf("mode %v has no catalog entry", m)
		}
		if info.SampleRate <= 0 {
			t.Errorf("%v: sample rate %d", m, info.SampleRate)
		}
		if info.Duration <= 0 {
			t.Errorf("%v: duration %v", m, info.Duration)
		}
		if !info.DecodingSupported && !info.EncodingSupported {
			t.Errorf("%v: supports neither encode nor decode", m)
		}
	}
}

func TestDocumentedConstants(t *testing.T) {
	tests := []struct {
		mode     Mode
		rate     int
		duration float64
		encode   bool
	}{
		{FT8, 48000, 12.64, true},
		{FT4, 48000, 6.0, true},
		{JT4, 11025, 47.1, false},
		{JT65, 11025, 46.8, false},
		{JT9, 12000, 49.0, false},
		{FST4, 12000, 60.0, false},
		{Q65, 12000, 60.0, false},
		{FST4W, 12000, 120.0, false},
		{WSPR, 12000, 110.6, false},
	}

	for _, tt := range tests {
		if got := SampleRate(tt.mode); got != tt.rate {
			t.Errorf("SampleRate(%v) = %d, want %d", tt.mode, got, tt.rate)
		}
		if got := Duration(tt.mode); got != tt.duration {
			t.Errorf("Duration(%v) = %v, want %v", tt.mode, got, tt.duration)
		}
		if got := EncodingSupported(tt.mode); got != tt.encode {
			t.Errorf("EncodingSupported(%v) = %v, want %v", tt.mode, got, tt.encode)
		}
		if !DecodingSupported(tt.mode) {
			t.Errorf("DecodingSupported(%v) = false", tt.mode)
		}
	}
}

func TestUnknownModeFallbacks(t *testing.T) {
	for _, m := range []Mode{Mode(-1), Mode(99), Mode(len(All()))} {
		if Valid(m) {
			t.Errorf("Valid(%v) = true", m)
		}
		if got := SampleRate(m); got != DefaultSampleRate {
			t.Errorf("SampleRate(%v) = %d, want %d", m, got, DefaultSampleRate)
		}
		if got := Duration(m); got != DefaultDuration {
			t.Errorf("Duration(%v) = %v, want %v", m, got, DefaultDuration)
		}
		if got := MaxSamples(m); got != DefaultSampleRate*15 {
			t.Errorf("MaxSamples(%v) = %d, want %d", m, got, DefaultSampleRate*15)
		}
		if EncodingSupported(m) || DecodingSupported(m) {
			t.Errorf("unknown mode %v claims capability", m)
		}
	}
}

func TestMaxSamples(t *testing.T) {
	// FT8: 48000 Hz x 12.64 s
	if got := MaxSamples(FT8); got != 606720 {
		t.Errorf("MaxSamples(FT8) = %d, want 606720", got)
	}
	// WSPR: 12000 Hz x 110.6 s
	if got := MaxSamples(WSPR); got != 1327200 {
		t.Errorf("MaxSamples(WSPR) = %d, want 1327200", got)
	}

	for _, m := range All() {
		info, _ := Lookup(m)
		want := int(math.Round(float64(info.SampleRate) * info.Duration))
		if got := MaxSamples(m); got != want {
			t.Errorf("MaxSamples(%v) = %d, want %d", m, got, want)
		}
	}
}

func TestStringAndParse(t *testing.T) {
	for _, m := range All() {
		name := m.String()
		parsed, ok := Parse(name)
		if !ok || parsed != m {
			t.Errorf("Parse(%q) = %v, %v", name, parsed, ok)
		}
	}

	if m, ok := Parse("ft8"); !ok || m != FT8 {
		t.Errorf("Parse should be case-insensitive, got %v, %v", m, ok)
	}
	if _, ok := Parse("SSB"); ok {
		t.Error("Parse should reject unknown names")
	}
	if got := Mode(42).String(); got != "MODE(42)" {
		t.Errorf("unknown String() = %q", got)
	}
}

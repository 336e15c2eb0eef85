package audio

import "math"

// Format identifies the sample encoding of a Buffer.
type Format int

const (
	FormatFloat32 Format = iota
	FormatInt16
)

// String returns the conventional format name.
func (f Format) String() string {
	switch f {
	case FormatFloat32:
		return "float32"
	case FormatInt16:
		return "int16"
	default:
		return "unknown"
	}
}

// Buffer is a caller-owned sequence of audio samples in one of the two wire
// formats. Length is always explicit; buffers are never shared across the
// engine boundary, only copied.
type Buffer struct {
	Float32 []float32
	Int16   []int16
	Format  Format
}

// FromFloat32 wraps samples in a float32 buffer. The slice is not copied.
func FromFloat32(samples []float32) Buffer {
	return Buffer{Format: FormatFloat32, Float32: samples}
}

// FromInt16 wraps samples in an int16 buffer. The slice is not copied.
func FromInt16(samples []int16) Buffer {
	return Buffer{Format: FormatInt16, Int16: samples}
}

// Len returns the sample count.
func (b Buffer) Len() int {
	if b.Format == FormatInt16 {
		return len(b.Int16)
	}
	return len(b.Float32)
}

// Clone returns a deep copy. Tasks capture clones at submission time so
// later mutation of the caller's slice cannot affect in-flight work.
func (b Buffer) Clone() Buffer {
	out := Buffer{Format: b.Format}
	if b.Float32 != nil {
		out.Float32 = make([]float32, len(b.Float32))
		copy(out.Float32, b.Float32)
	}
	if b.Int16 != nil {
		out.Int16 = make([]int16, len(b.Int16))
		copy(out.Int16, b.Int16)
	}
	return out
}

// AsFloat32 returns the samples as float32, converting when the buffer holds
// int16. The returned slice is freshly allocated for int16 buffers and
// aliases the original for float32 buffers.
func (b Buffer) AsFloat32() []float32 {
	if b.Format == FormatInt16 {
		return Int16ToFloat32(b.Int16)
	}
	return b.Float32
}

// SampleToInt16 converts one float32 sample: clamp to [-1, 1], scale by
// 32768, round to nearest, saturate to the int16 range.
func SampleToInt16(v float32) int16 {
	if v > 1.0 {
		v = 1.0
	} else if v < -1.0 {
		v = -1.0
	}
	scaled := math.Round(float64(v) * 32768)
	if scaled > 32767 {
		return 32767
	}
	if scaled < -32768 {
		return -32768
	}
	return int16(scaled)
}

// SampleToFloat32 converts one int16 sample by dividing by 32768.
func SampleToFloat32(v int16) float32 {
	return float32(v) / 32768.0
}

// Float32ToInt16 converts a float32 sample sequence to int16.
func Float32ToInt16(in []float32) []int16 {
	out := make([]int16, len(in))
	for i, v := range in {
		out[i] = SampleToInt16(v)
	}
	return out
}

// Int16ToFloat32 converts an int16 sample sequence to float32 in [-1, 1).
func Int16ToFloat32(in []int16) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = SampleToFloat32(v)
	}
	return out
}

// Convert returns b in the target format. Same-format conversion is a plain
// deep copy, matching the engine bridge's no-op path.
func Convert(b Buffer, target Format) Buffer {
	if b.Format == target {
		return b.Clone()
	}
	if target == FormatInt16 {
		return FromInt16(Float32ToInt16(b.AsFloat32()))
	}
	return FromFloat32(Int16ToFloat32(b.Int16))
}

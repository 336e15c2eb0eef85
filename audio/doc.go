// Package audio holds the sample buffer types that cross the bridge and the
// float32/int16 format conversions that run on the dispatcher.
//
// Conversion semantics are fixed by the engine contract: float32 samples are
// clamped to [-1, 1] before scaling by 32768 and rounding to nearest, with
// saturation to [-32768, 32767]; int16 samples convert back by dividing by
// 32768. A float -> int16 -> float round trip is exact to within 1/32768,
// and int16 -> float -> int16 is exact.
package audio

package engine

// Entry point names exported by the engine library.
const (
	SymCreate      = "wsjtx_create"
	SymDestroy     = "wsjtx_destroy"
	SymDecode      = "wsjtx_decode"
	SymPullMessage = "wsjtx_pull_message"
	SymEncode      = "wsjtx_encode"
	SymSampleRate  = "wsjtx_get_sample_rate"
	SymMaxSamples  = "wsjtx_get_max_samples"
	SymErrorString = "wsjtx_error_string"

	// SymDecodeWSPR is optional: older engine builds ship without the deep
	// WSPR decoder and the bridge degrades gracefully when it is absent.
	SymDecodeWSPR = "wsjtx_decode_wspr"
)

// RequiredSymbols is the fixed entry point set every usable engine build
// must export. Resolution is all-or-nothing over this list.
var RequiredSymbols = []string{
	SymCreate,
	SymDestroy,
	SymDecode,
	SymPullMessage,
	SymEncode,
	SymSampleRate,
	SymMaxSamples,
	SymErrorString,
}

// Symbols holds Go-callable bindings for the engine's entry points.
// Pointer-typed C parameters appear as uintptr; callers pin the referenced
// Go memory across the call. The zero value of an optional field means the
// engine build does not export it.
type Symbols struct {
	Create      func() uintptr
	Destroy     func(inst uintptr)
	Decode      func(inst uintptr, mode int32, samples uintptr, count int32, freqHz int32, threads int32) int32
	PullMessage func(inst uintptr, out uintptr) int32
	Encode      func(inst uintptr, mode int32, text string, freqHz int32, out uintptr, count uintptr) int32
	SampleRate  func(mode int32) int32
	MaxSamples  func(mode int32) int32
	ErrorString func(code int32) string

	// Optional entry points.
	DecodeWSPR func(inst uintptr, iq uintptr, count int32, opts uintptr) int32
}

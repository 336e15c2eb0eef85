package bridge

import "strconv"

// Status is the engine's flat status code surface. Values match the wire
// contract exactly and are stable across releases.
type Status int32

const (
	StatusOK                 Status = 0
	StatusInvalidHandle      Status = -1
	StatusInvalidMode        Status = -2
	StatusInvalidParam       Status = -3
	StatusNullPointer        Status = -4
	StatusBufferTooSmall     Status = -5
	StatusDecodeFailed       Status = -10
	StatusEncodeFailed       Status = -11
	StatusOutOfMemory        Status = -12
	StatusThreadError        Status = -13
	StatusNotInitialized     Status = -20
	StatusAlreadyInitialized Status = -21
	StatusInternal           Status = -99
)

var statusNames = map[Status]string{
	StatusOK:                 "OK",
	StatusInvalidHandle:      "INVALID_HANDLE",
	StatusInvalidMode:        "INVALID_MODE",
	StatusInvalidParam:       "INVALID_PARAM",
	StatusNullPointer:        "NULL_POINTER",
	StatusBufferTooSmall:     "BUFFER_TOO_SMALL",
	StatusDecodeFailed:       "DECODE_FAILED",
	StatusEncodeFailed:       "ENCODE_FAILED",
	StatusOutOfMemory:        "OUT_OF_MEMORY",
	StatusThreadError:        "THREAD_ERROR",
	StatusNotInitialized:     "NOT_INITIALIZED",
	StatusAlreadyInitialized: "ALREADY_INITIALIZED",
	StatusInternal:           "INTERNAL",
}

var statusDescriptions = map[Status]string{
	StatusOK:                 "Success",
	StatusInvalidHandle:      "Invalid handle",
	StatusInvalidMode:        "Invalid mode",
	StatusInvalidParam:       "Invalid parameter",
	StatusNullPointer:        "Null pointer",
	StatusBufferTooSmall:     "Buffer too small",
	StatusDecodeFailed:       "Decode failed",
	StatusEncodeFailed:       "Encode failed",
	StatusOutOfMemory:        "Out of memory",
	StatusThreadError:        "Thread error",
	StatusNotInitialized:     "Not initialized",
	StatusAlreadyInitialized: "Already initialized",
	StatusInternal:           "Internal error",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "STATUS(" + strconv.Itoa(int(s)) + ")"
}

// OK reports whether the status indicates success.
func (s Status) OK() bool {
	return s == StatusOK
}

// ErrorString returns a human-readable description for any status value,
// known or not. It never fails; unknown codes get a generic description.
func ErrorString(s Status) string {
	if desc, ok := statusDescriptions[s]; ok {
		return desc
	}
	return "Unknown error"
}

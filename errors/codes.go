package errors

// ErrorCode identifies a class of analysis failure.
type ErrorCode int

const (
	ErrorCode_INTERNAL ErrorCode = iota
	ErrorCode_INVALID_INPUT
	ErrorCode_MALFORMED_TIMECODE
	ErrorCode_INVALID_SEGMENT
	ErrorCode_INVALID_PATTERN
	ErrorCode_CHECKSUM_MISMATCH
	ErrorCode_INSUFFICIENT_DATA
)

var codeNames = map[ErrorCode]string{
	ErrorCode_INTERNAL:           "INTERNAL",
	ErrorCode_INVALID_INPUT:      "INVALID_INPUT",
	ErrorCode_MALFORMED_TIMECODE: "MALFORMED_TIMECODE",
	ErrorCode_INVALID_SEGMENT:    "INVALID_SEGMENT",
	ErrorCode_INVALID_PATTERN:    "INVALID_PATTERN",
	ErrorCode_CHECKSUM_MISMATCH:  "CHECKSUM_MISMATCH",
	ErrorCode_INSUFFICIENT_DATA:  "INSUFFICIENT_DATA",
}

// String returns the stable name of the code.
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// Fatal reports whether errors with this code must propagate to the caller
// instead of degrading the affected score. Only construction-time input
// failures are fatal.
func (c ErrorCode) Fatal() bool {
	switch c {
	case ErrorCode_MALFORMED_TIMECODE, ErrorCode_INVALID_SEGMENT,
		ErrorCode_INVALID_PATTERN, ErrorCode_INVALID_INPUT:
		return true
	}
	return false
}

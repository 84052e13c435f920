package autodiff

import "errors"

// Protocol faults are programmer errors, surfaced synchronously to the
// violating caller and never retried. Numerical non-finiteness (NaN/Inf) is
// not an error: it propagates through payloads, tangents and adjoints per
// IEEE semantics.
var (
	ErrAlreadyRecording  = errors.New("a recording with this tag is already open")
	ErrRecordingClosed   = errors.New("recording has already been closed")
	ErrOutOfOrderBinding = errors.New("independent/dependent marked out of order")
	ErrIncompleteBinding = errors.New("recording closed with unmarked independents or dependents")
	ErrMalformedTrace    = errors.New("malformed trace")
	ErrDimensionMismatch = errors.New("vector length does not match trace dimensions")
	ErrUnsupportedSchema = errors.New("unsupported trace schema version")
)

package mbus

import (
	"errors"
	"fmt"
)

// Transport-level errors. All of them end the current exchange; retry
// policy lives in the Client, never inside the transport itself.
var (
	// ErrOpenFailed reports that the serial device could not be opened.
	ErrOpenFailed = errors.New("mbus: failed to open serial device")

	// ErrWriteFailed reports a failed or short write to the line.
	ErrWriteFailed = errors.New("mbus: write failed")

	// ErrTimeout reports that the slave sent nothing at all within the
	// timeout budget.
	ErrTimeout = errors.New("mbus: receive timed out")

	// ErrPartialFrame reports that some bytes arrived but the frame never
	// completed. Distinct from ErrTimeout on purpose: a scanning caller may
	// accept it as "device present, reply truncated", a request caller must
	// treat it as failure.
	ErrPartialFrame = errors.New("mbus: incomplete frame received")

	// ErrNotConnected reports use of a client whose link is closed.
	ErrNotConnected = errors.New("mbus: not connected")

	// ErrUnsupportedBaudRate reports a rate outside the supported set.
	ErrUnsupportedBaudRate = errors.New("mbus: unsupported baud rate")

	// ErrPayloadTooLarge reports an outgoing payload above MaxPayloadSize.
	ErrPayloadTooLarge = errors.New("mbus: payload exceeds maximum frame size")
)

// ValidationReason identifies which wire encoding rule a received byte
// sequence broke.
type ValidationReason int

const (
	BadStartByte ValidationReason = iota
	LengthMismatch
	ChecksumMismatch
	BadStopByte
)

func (r ValidationReason) String() string {
	switch r {
	case BadStartByte:
		return "bad start byte"
	case LengthMismatch:
		return "length mismatch"
	case ChecksumMismatch:
		return "checksum mismatch"
	case BadStopByte:
		return "bad stop byte"
	}
	return "unknown"
}

// ValidationError reports a malformed frame. It means data was received,
// which is a different operator diagnosis than ErrTimeout (line noise
// versus no device answering).
type ValidationError struct {
	Reason ValidationReason
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("mbus: invalid frame: %s", e.Reason)
	}
	return fmt.Sprintf("mbus: invalid frame: %s (%s)", e.Reason, e.Detail)
}

func newValidationError(reason ValidationReason, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is a ValidationError and, if so,
// returns its reason.
func IsValidationError(err error) (ValidationReason, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason, true
	}
	return 0, false
}

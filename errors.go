package miniasync

import (
	"errors"
	"fmt"
)

// Code is a high-level error category, independent of which VDM backend or
// operation produced it.
type Code string

const (
	ErrCodeInvalidParameters Code = "invalid parameters"
	ErrCodeRingFull          Code = "ring full"
	ErrCodeOutOfMemory       Code = "out of memory"
	ErrCodeJobCorrupted      Code = "job corrupted"
	ErrCodeClosed            Code = "vdm closed"
	ErrCodeUnsupportedOp     Code = "unsupported operation"
)

// OpError is a structured error carrying enough context (which operation,
// which VDM kind, which error category) to let callers branch on Code
// without parsing a message string.
type OpError struct {
	Op      string // e.g. "Memcpy", "Memmove", "OpStart"
	VDMKind string // e.g. "synchronous", "threaded"
	Code    Code
	Msg     string
	Inner   error
}

func (e *OpError) Error() string {
	var parts []string
	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.VDMKind != "" {
		parts = append(parts, fmt.Sprintf("vdm=%s", e.VDMKind))
	}

	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}
	if len(parts) > 0 {
		return fmt.Sprintf("miniasync: %s (%s)", msg, parts[0])
	}
	return fmt.Sprintf("miniasync: %s", msg)
}

func (e *OpError) Unwrap() error { return e.Inner }

func (e *OpError) Is(target error) bool {
	te, ok := target.(*OpError)
	if !ok {
		return false
	}
	return e.Code == te.Code
}

// NewOpError builds an OpError for op/code with a human-readable message.
func NewOpError(op string, code Code, msg string) *OpError {
	return &OpError{Op: op, Code: code, Msg: msg}
}

// NewVDMError builds an OpError tagged with which VDM backend raised it.
func NewVDMError(op, vdmKind string, code Code, msg string) *OpError {
	return &OpError{Op: op, VDMKind: vdmKind, Code: code, Msg: msg}
}

// WrapError wraps inner with additional operation context, preserving its
// Code if inner is already an *OpError.
func WrapError(op string, inner error) *OpError {
	if inner == nil {
		return nil
	}
	if oe, ok := inner.(*OpError); ok {
		return &OpError{Op: op, VDMKind: oe.VDMKind, Code: oe.Code, Msg: oe.Msg, Inner: oe.Inner}
	}
	return &OpError{Op: op, Code: ErrCodeUnsupportedOp, Msg: inner.Error(), Inner: inner}
}

// FromResult maps a completed operation's Result to an error, or nil on
// ResultSuccess.
func FromResult(op string, vdmKind string, r Result) error {
	switch r {
	case ResultSuccess:
		return nil
	case ResultOutOfMemory:
		return NewVDMError(op, vdmKind, ErrCodeOutOfMemory, "operation ran out of memory")
	case ResultJobCorrupted:
		return NewVDMError(op, vdmKind, ErrCodeJobCorrupted, "operation's job descriptor was corrupted")
	default:
		return NewVDMError(op, vdmKind, ErrCodeUnsupportedOp, "unknown result")
	}
}

// IsCode reports whether err is (or wraps) an *OpError with the given Code.
func IsCode(err error, code Code) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Code == code
	}
	return false
}

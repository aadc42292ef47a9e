package miniasync

import (
	"errors"
	"testing"
)

func TestOpErrorMessage(t *testing.T) {
	err := NewVDMError("Memcpy", "threaded", ErrCodeRingFull, "ring at capacity")

	if err.Op != "Memcpy" {
		t.Errorf("expected Op=Memcpy, got %s", err.Op)
	}
	if err.Code != ErrCodeRingFull {
		t.Errorf("expected Code=ErrCodeRingFull, got %s", err.Code)
	}

	expected := "miniasync: ring at capacity (op=Memcpy)"
	if err.Error() != expected {
		t.Errorf("expected error message %q, got %q", expected, err.Error())
	}
}

func TestWrapErrorPreservesCode(t *testing.T) {
	inner := NewOpError("OpStart", ErrCodeRingFull, "full")
	wrapped := WrapError("Poll", inner)

	if wrapped.Code != ErrCodeRingFull {
		t.Errorf("expected wrapped error to preserve Code, got %s", wrapped.Code)
	}
	if !errors.Is(wrapped, &OpError{Code: ErrCodeRingFull}) {
		t.Error("expected errors.Is to match on Code")
	}
}

func TestWrapErrorNilIsNil(t *testing.T) {
	if WrapError("op", nil) != nil {
		t.Fatal("expected WrapError(nil) to return nil")
	}
}

func TestFromResult(t *testing.T) {
	if err := FromResult("Memcpy", "synchronous", ResultSuccess); err != nil {
		t.Errorf("expected nil error for ResultSuccess, got %v", err)
	}

	err := FromResult("Memcpy", "threaded", ResultOutOfMemory)
	if !IsCode(err, ErrCodeOutOfMemory) {
		t.Errorf("expected ErrCodeOutOfMemory, got %v", err)
	}

	err = FromResult("Memcpy", "threaded", ResultJobCorrupted)
	if !IsCode(err, ErrCodeJobCorrupted) {
		t.Errorf("expected ErrCodeJobCorrupted, got %v", err)
	}
}

func TestIsCode(t *testing.T) {
	err := NewOpError("Memset", ErrCodeInvalidParameters, "n must be >= 0")

	if !IsCode(err, ErrCodeInvalidParameters) {
		t.Error("expected IsCode to match")
	}
	if IsCode(err, ErrCodeRingFull) {
		t.Error("expected IsCode to not match a different code")
	}
	if IsCode(nil, ErrCodeRingFull) {
		t.Error("expected IsCode(nil, ...) to be false")
	}
}

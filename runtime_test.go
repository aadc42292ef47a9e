package miniasync

import (
	"testing"
	"time"
)

func TestRuntimeWaitDrivesSynchronousFutureToCompletion(t *testing.T) {
	rt := NewRuntime(&RuntimeConfig{SpinsBeforeSleep: 10, SleepFor: time.Millisecond})
	f := newStepFuture(5, false)
	rt.Wait(f)
	if f.State() != StateComplete {
		t.Fatalf("expected future complete after Wait, got %s", f.State())
	}
}

func TestRuntimeWaitMultipleMixesSyncAndAsync(t *testing.T) {
	rt := NewRuntime(&RuntimeConfig{SpinsBeforeSleep: 5, SleepFor: 2 * time.Millisecond})

	sync1 := newStepFuture(3, false)
	asyncFut := newAsyncWakerFuture(5 * time.Millisecond)
	sync2 := newStepFuture(1, false)

	rt.WaitMultiple([]Future{asyncFut, sync1, sync2})

	if sync1.State() != StateComplete || sync2.State() != StateComplete {
		t.Fatal("expected both synchronous futures complete")
	}
	if asyncFut.State() != StateComplete {
		t.Fatal("expected async future complete")
	}
}

func TestRuntimeWaitWakesPromptlyOnWaker(t *testing.T) {
	rt := NewRuntime(&RuntimeConfig{SpinsBeforeSleep: 2, SleepFor: 50 * time.Millisecond})
	fut := newAsyncWakerFuture(5 * time.Millisecond)

	start := time.Now()
	rt.Wait(fut)
	elapsed := time.Since(start)

	if elapsed > 40*time.Millisecond {
		t.Fatalf("expected waker to wake the runtime promptly instead of waiting out the full sleep quantum, took %s", elapsed)
	}
}

func TestStablePartitionPreservesRelativeOrder(t *testing.T) {
	s1 := newStepFuture(1, false)
	a1 := newStepFuture(1, true)
	s2 := newStepFuture(1, false)
	a2 := newStepFuture(1, true)

	futs := []Future{a1, s1, a2, s2}
	stablePartitionAsync(futs)

	if IsAsync(futs[0]) || IsAsync(futs[1]) {
		t.Fatal("expected synchronous futures first")
	}
	if futs[0] != s1 || futs[1] != s2 {
		t.Fatal("expected synchronous futures to keep their relative order")
	}
	if futs[2] != a1 || futs[3] != a2 {
		t.Fatal("expected async futures to keep their relative order")
	}
}

func TestRuntimeWaitMultipleEmptyIsNoop(t *testing.T) {
	rt := NewRuntime(nil)
	rt.WaitMultiple(nil)
}

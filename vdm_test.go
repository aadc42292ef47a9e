package miniasync

import "testing"

func TestOperationFutureCompletesWithMockDescriptor(t *testing.T) {
	desc := NewMockDescriptor(false)
	vdm := New(desc)

	dest := make([]byte, 4)
	fut := vdm.Memcpy(dest, []byte{1, 2, 3, 4}, 4, 0)

	if s := Poll(fut, nil); s != StateComplete {
		t.Fatalf("expected complete on first poll, got %s", s)
	}
	if fut.Output().Result != ResultSuccess {
		t.Fatalf("expected ResultSuccess, got %s", fut.Output().Result)
	}

	counts := desc.CallCounts()
	if counts["new"] != 1 || counts["start"] != 1 || counts["check"] != 1 || counts["delete"] != 1 {
		t.Fatalf("expected exactly one call to each Descriptor method, got %v", counts)
	}
}

func TestOperationFutureRetriesOpStartUntilArmed(t *testing.T) {
	desc := NewMockDescriptor(true).WithStartsToArm(3)
	vdm := New(desc)
	fut := vdm.Memcpy(make([]byte, 1), []byte{1}, 1, 0)

	for i := 0; i < 3; i++ {
		if s := Poll(fut, nil); s != StateIdle {
			t.Fatalf("poll %d: expected still idle while not armed, got %s", i, s)
		}
	}
	if s := Poll(fut, nil); s == StateIdle {
		t.Fatal("expected the future to arm and advance past idle")
	}
}

func TestOperationFutureWaitsMultiplePollsToComplete(t *testing.T) {
	desc := NewMockDescriptor(true).WithChecksToComplete(4)
	vdm := New(desc)
	fut := vdm.Memcpy(make([]byte, 1), []byte{1}, 1, 0)

	seenRunning := false
	for i := 0; i < 10; i++ {
		s := Poll(fut, nil)
		if s == StateRunning {
			seenRunning = true
		}
		if s == StateComplete {
			break
		}
	}
	if !seenRunning {
		t.Fatal("expected at least one StateRunning poll before completion")
	}
	if fut.State() != StateComplete {
		t.Fatal("expected future to eventually complete")
	}
}

func TestOperationFutureReportsFailureResult(t *testing.T) {
	desc := NewMockDescriptor(false).WithResult(ResultOutOfMemory)
	vdm := New(desc)
	fut := vdm.Memcpy(make([]byte, 1), []byte{1}, 1, 0)
	BusyPoll(fut)

	if fut.Output().Result != ResultOutOfMemory {
		t.Fatalf("expected ResultOutOfMemory, got %s", fut.Output().Result)
	}
	if err := FromResult("Memcpy", "mock", fut.Output().Result); !IsCode(err, ErrCodeOutOfMemory) {
		t.Fatalf("expected FromResult to surface ErrCodeOutOfMemory, got %v", err)
	}
}

func TestOperationFutureIsAsyncDelegatesToDescriptor(t *testing.T) {
	syncDesc := NewMockDescriptor(false)
	asyncDesc := NewMockDescriptor(true)

	syncFut := New(syncDesc).Memcpy(make([]byte, 1), []byte{1}, 1, 0)
	asyncFut := New(asyncDesc).Memcpy(make([]byte, 1), []byte{1}, 1, 0)

	if IsAsync(syncFut) {
		t.Fatal("expected sync descriptor's future to report IsAsync()==false")
	}
	if !IsAsync(asyncFut) {
		t.Fatal("expected async descriptor's future to report IsAsync()==true")
	}
}

func TestVDMCloseDelegatesToCloserDescriptor(t *testing.T) {
	vdm := NewThreaded(&ThreadedConfig{Threads: 1, RingCapacity: 2, NotifierMode: "waker"})
	if err := vdm.Close(); err != nil {
		t.Fatalf("expected nil error closing threaded vdm, got %v", err)
	}
}

package miniasync

import "testing"

func TestFutureTransitionsIdleRunningComplete(t *testing.T) {
	f := newStepFuture(3, false)
	if f.State() != StateIdle {
		t.Fatalf("expected initial state idle, got %s", f.State())
	}

	var last State
	for i := 0; i < 3; i++ {
		last = Poll(f, nil)
	}
	if last != StateComplete {
		t.Fatalf("expected complete after 3 polls, got %s", last)
	}
}

func TestPollOnCompleteFutureIsNoop(t *testing.T) {
	f := newStepFuture(1, false)
	if Poll(f, nil) != StateComplete {
		t.Fatal("expected future to complete on first poll")
	}
	pollsAtComplete := f.polls

	for i := 0; i < 5; i++ {
		if s := Poll(f, nil); s != StateComplete {
			t.Fatalf("expected idempotent complete, got %s", s)
		}
	}
	if f.polls != pollsAtComplete {
		t.Fatalf("expected Poll() to short-circuit without invoking the future's own Poll, got %d extra calls", f.polls-pollsAtComplete)
	}
}

func TestBusyPollDrivesToCompletion(t *testing.T) {
	f := newStepFuture(50, false)
	if s := BusyPoll(f); s != StateComplete {
		t.Fatalf("expected BusyPoll to finish, got %s", s)
	}
}

func TestIsAsyncReflectsFutureFlag(t *testing.T) {
	sync := newStepFuture(1, false)
	if IsAsync(sync) {
		t.Fatal("expected non-async future to report IsAsync()==false")
	}

	async := newStepFuture(1, true)
	if !IsAsync(async) {
		t.Fatal("expected async future to report IsAsync()==true")
	}
}

func TestIsAsyncDefaultsFalseWithoutInterface(t *testing.T) {
	plain := &Sink{}
	if IsAsync(sinkAsFuture{plain}) {
		t.Fatal("expected a Future with no IsAsync method to default to synchronous")
	}
}

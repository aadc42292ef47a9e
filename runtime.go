package miniasync

import (
	"sort"
	"sync"
	"time"

	"github.com/mblabs/miniasync/internal/logging"
	"github.com/mblabs/miniasync/internal/pause"
	"github.com/mblabs/miniasync/internal/tuning"
)

// RuntimeConfig tunes the spin/sleep behavior of a Runtime's wait loop.
type RuntimeConfig struct {
	// SpinsBeforeSleep is how many bare poll passes the runtime makes over
	// the still-pending futures before falling back to sleeping on
	// its condition variable. Grounded on the reference runtime's default
	// of 1000 busy-spins before yielding the CPU.
	SpinsBeforeSleep int

	// SleepFor bounds how long a single sleep waits for a waker before
	// re-checking; a waker firing wakes it early via Broadcast.
	SleepFor time.Duration

	Logger *logging.Logger
}

// DefaultRuntimeConfig mirrors the reference implementation's defaults:
// 1000 spins before sleeping, 1ms sleep quantum.
func DefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		SpinsBeforeSleep: 1000,
		SleepFor:         time.Millisecond,
		Logger:           logging.Default(),
	}
}

// Runtime polls a set of futures to completion, partitioning them by
// IsAsync so that on every pass the synchronous futures are polled before
// the async ones. It spins tightly at first, then backs off to sleeping
// on a condition variable that any future's waker can signal early.
type Runtime struct {
	cfg *RuntimeConfig

	mu   sync.Mutex
	cond *sync.Cond
	// woken counts wakeups, from wakers and from the sleep timer alike, so a
	// sleeper can tell a real signal from a spurious cond wakeup.
	woken uint64
}

// NewRuntime creates a Runtime. A nil config uses DefaultRuntimeConfig.
// Creating a Runtime applies process-wide GOMAXPROCS/GOMEMLIMIT tuning,
// since a runtime's wait loop is the thing CPU quota mistuning hurts most.
func NewRuntime(cfg *RuntimeConfig) *Runtime {
	if cfg == nil {
		cfg = DefaultRuntimeConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	tuning.ApplyProcessLimits()

	r := &Runtime{cfg: cfg}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// wake is handed to futures as a Notifier.WakerFn; it signals every
// sleeping waiter to re-check its futures.
func (r *Runtime) wake() {
	r.mu.Lock()
	r.woken++
	r.mu.Unlock()
	r.cond.Broadcast()
}

// sleep blocks until woken or cfg.SleepFor elapses, whichever comes first.
func (r *Runtime) sleep() {
	r.mu.Lock()
	seen := r.woken
	done := make(chan struct{})
	timer := time.AfterFunc(r.cfg.SleepFor, func() {
		r.mu.Lock()
		r.woken++
		r.mu.Unlock()
		r.cond.Broadcast()
	})
	for r.woken == seen {
		r.cond.Wait()
	}
	timer.Stop()
	close(done)
	r.mu.Unlock()
}

// stablePartitionAsync reorders futs in place so every synchronous future
// precedes every async one, preserving relative order within each group.
// A full sort by the IS_ASYNC property isn't needed, and a non-stable one
// would needlessly reorder same-class futures against each other, so this
// uses a stable partition rather than a general sort.
func stablePartitionAsync(futs []Future) {
	sort.SliceStable(futs, func(i, j int) bool {
		return !IsAsync(futs[i]) && IsAsync(futs[j])
	})
}

// Wait polls fut to completion, applying the runtime's spin/sleep policy.
func (r *Runtime) Wait(fut Future) {
	r.WaitMultiple([]Future{fut})
}

// WaitMultiple polls every future in futs to completion. Each pass polls
// every still-pending future once, synchronous ones first
// (stablePartitionAsync), falling back to a cooperative sleep once
// SpinsBeforeSleep bare passes produce no completions.
func (r *Runtime) WaitMultiple(futs []Future) {
	if len(futs) == 0 {
		return
	}

	pending := make([]Future, len(futs))
	copy(pending, futs)
	stablePartitionAsync(pending)

	notifier := &Notifier{Mode: NotifierWaker, WakerFn: r.wake}

	spins := 0
	for len(pending) > 0 {
		progressed := false
		remaining := pending[:0]
		for _, f := range pending {
			if Poll(f, notifier) == StateComplete {
				progressed = true
				continue
			}
			remaining = append(remaining, f)
		}
		pending = remaining
		if len(pending) == 0 {
			break
		}
		if progressed {
			spins = 0
			continue
		}

		spins++
		if spins < r.cfg.SpinsBeforeSleep {
			pause.Yield()
			continue
		}
		r.sleep()
		spins = 0
	}
}

// Close releases runtime resources. A Runtime holds no goroutines or
// handles of its own — each Wait/WaitMultiple call is self-contained — so
// Close is a no-op kept for symmetry with VDM.Close and for embedding
// callers that manage runtimes via an io.Closer-shaped interface.
func (r *Runtime) Close() error { return nil }

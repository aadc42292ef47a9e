package miniasync

import (
	"runtime"
	"sync"
	"sync/atomic"

	defaults "github.com/mcuadros/go-defaults"

	"github.com/mblabs/miniasync/internal/affinity"
	"github.com/mblabs/miniasync/internal/logging"
	"github.com/mblabs/miniasync/internal/membuf"
	"github.com/mblabs/miniasync/internal/ringbuf"
	"github.com/mblabs/miniasync/internal/tuning"
)

// ThreadedConfig tunes a worker-pool-backed VDM.
type ThreadedConfig struct {
	// Threads is the number of worker goroutines draining the ring.
	Threads int `default:"12"`
	// RingCapacity bounds how many operations may be queued awaiting a
	// worker; OpStart returns armed=false once it's full.
	RingCapacity int `default:"128"`
	// NotifierMode selects how a completed operation tells the world:
	// "waker" invokes the caller-supplied wakeup callback; "poller" relies
	// entirely on the caller spin-reading OpCheck (no callback invoked).
	NotifierMode string `default:"waker"`
	// PinCPU, if true, pins worker i to CPU i%runtime.NumCPU() via
	// sched_setaffinity (Linux only; a no-op elsewhere).
	PinCPU bool `default:"false"`

	Logger *logging.Logger
}

// DefaultThreadedConfig returns a ThreadedConfig with its struct-tag
// defaults applied.
func DefaultThreadedConfig() *ThreadedConfig {
	cfg := &ThreadedConfig{}
	defaults.SetDefaults(cfg)
	return cfg
}

// threadsEntry is the per-operation bookkeeping a ThreadedVDM hands out as
// a Descriptor handle; it's also the unit of work passed through the ring
// buffer to worker goroutines, and the slot type a Membuf reclaims.
type threadsEntry struct {
	op       *OperationData
	waker    func()
	complete atomic.Bool
	started  bool
	output   OperationOutput
}

// ThreadedVDM is a Descriptor backed by a fixed pool of worker goroutines
// pulling operations off a bounded ring buffer. OpNew hands out a
// membuf-managed entry; OpStart enqueues it (or reports not-armed if the
// ring is momentarily full); a worker performs the copy/move/set and, for
// waker-mode configs, invokes the caller's wakeup callback.
type ThreadedVDM struct {
	cfg    *ThreadedConfig
	ring   *ringbuf.Ring
	mbuf   *membuf.Membuf
	wg     sync.WaitGroup
	logger *logging.Logger
}

// NewThreaded starts a worker pool and returns it wrapped as a VDM. A nil
// cfg uses DefaultThreadedConfig. Starting a threaded VDM applies
// process-wide GOMAXPROCS/GOMEMLIMIT tuning, since an over-wide worker pool
// on a CPU-constrained cgroup just causes thrashing.
func NewThreaded(cfg *ThreadedConfig) *VDM {
	if cfg == nil {
		cfg = DefaultThreadedConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	tuning.ApplyProcessLimits()

	t := &ThreadedVDM{
		cfg:    cfg,
		ring:   ringbuf.New(cfg.RingCapacity),
		logger: cfg.Logger,
	}
	t.mbuf = membuf.New(t.checkSlot, nil, t)

	for i := 0; i < cfg.Threads; i++ {
		t.wg.Add(1)
		go t.workerLoop(i)
	}
	return New(t)
}

func (t *ThreadedVDM) checkSlot(slot any) membuf.ReuseState {
	e := slot.(*threadsEntry)
	if e.complete.Load() {
		return membuf.CanReuse
	}
	return membuf.InUse
}

func (t *ThreadedVDM) Async() bool { return true }

func (t *ThreadedVDM) OpNew(op *OperationData) any {
	e := t.mbuf.Alloc(func() any { return &threadsEntry{} }).(*threadsEntry)
	e.op = op
	e.waker = nil
	e.started = false
	e.output = OperationOutput{}
	e.complete.Store(false)
	return e
}

// OpStart enqueues e for a worker to pick up. It returns false (not armed)
// if the ring is momentarily full; the caller is expected to poll again
// later rather than treat that as an error.
func (t *ThreadedVDM) OpStart(handle any, n *Notifier) bool {
	e := handle.(*threadsEntry)
	if e.started {
		return true
	}
	if t.cfg.NotifierMode == "waker" && n != nil && n.Mode == NotifierWaker {
		e.waker = n.WakerFn
	}
	if !t.ring.TryEnqueue(e) {
		return false
	}
	e.started = true
	return true
}

func (t *ThreadedVDM) OpCheck(handle any) State {
	e := handle.(*threadsEntry)
	if e.complete.Load() {
		return StateComplete
	}
	return StateRunning
}

func (t *ThreadedVDM) OpDelete(handle any) OperationOutput {
	e := handle.(*threadsEntry)
	out := e.output
	t.mbuf.Free(e)
	return out
}

// Close stops the ring and waits for every worker goroutine to drain it and
// exit: operations already in the ring are still run before Close returns.
// Callers must have already awaited every in-flight operation's future;
// Close cancels nothing, and an operation whose OpStart never succeeded is
// never run, so its future never completes.
func (t *ThreadedVDM) Close() error {
	t.ring.Stop()
	t.wg.Wait()
	t.mbuf.Delete()
	return nil
}

func (t *ThreadedVDM) workerLoop(id int) {
	defer t.wg.Done()

	if t.cfg.PinCPU {
		if err := affinity.Pin(id % runtime.NumCPU()); err != nil {
			t.logger.Debugf("worker %d: CPU affinity unavailable: %v", id, err)
		}
	}

	for {
		v, ok := t.ring.Dequeue()
		if !ok {
			return
		}
		t.runOperation(v.(*threadsEntry))
	}
}

// runOperation performs the bulk memory operation and publishes completion.
// The waker is invoked before complete is stored: no poller can observe
// completion (and thus reclaim e via OpDelete→Membuf.Free→Alloc) until
// after the store, so calling the waker first is both safe and matches
// the required completion order for waker-notified operations.
func (t *ThreadedVDM) runOperation(e *threadsEntry) {
	op := e.op
	switch op.Type {
	case OpMemcpy:
		copy(op.Dest, op.Src[:op.N])
	case OpMemmove:
		copy(op.Dest[:op.N], op.Src[:op.N])
	case OpMemset:
		for i := 0; i < op.N; i++ {
			op.Dest[i] = op.Value
		}
	}
	e.output = OperationOutput{Dest: op.Dest, Result: ResultSuccess}

	if e.waker != nil {
		e.waker()
	}
	e.complete.Store(true)
}

// Package miniasync is a minimal, embeddable asynchronous execution library
// built around a single primitive — a pollable future — and a family of
// virtual data movers (VDMs) that schedule bulk memory operations through a
// pluggable backend (synchronous inline, worker-thread pool, or an external
// hardware offload). A chain combinator composes futures into sequential
// pipelines with typed data propagation between stages, and a runtime polls
// many futures concurrently with adaptive spin/sleep and cooperative wakeup.
package miniasync

// State is a future's progress, monotone from StateIdle to StateComplete.
type State int

const (
	// StateIdle is the initial state, before the first poll armed anything.
	StateIdle State = iota
	// StateRunning means more polls are needed.
	StateRunning
	// StateComplete means the result is materialized; further polls are
	// idempotent no-ops.
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// NotifierMode tags which of the three notification mechanisms a backend
// is using for a particular poll.
type NotifierMode int

const (
	// NotifierNone means the future completes inline; no wakeup needed.
	NotifierNone NotifierMode = iota
	// NotifierWaker means the backend invokes WakerFn when work completes.
	NotifierWaker
	// NotifierPoller means the backend exposes PollerFlag for the runtime
	// to spin-read for completion.
	NotifierPoller
)

// Notifier is the tagged union a Poll call may use to learn how (or
// whether) it will be woken. The caller (usually the runtime) sets Mode and
// WakerFn before the poll; callers that don't care about wakeups pass nil.
// The Synchronous and Threaded backends only read WakerFn; neither changes
// Mode nor sets PollerFlag.
type Notifier struct {
	Mode NotifierMode

	// WakerFn is invoked by the backend when the operation completes.
	// Populated by the caller (usually the runtime) before the poll; the
	// backend must call it before — never after — it publishes
	// completion, or a waiting runtime could free the future's notifier
	// storage out from under an in-flight worker.
	WakerFn func()

	// PollerFlag is a slot for a backend-exposed completion flag. No
	// backend in this package sets it, and the Runtime does not read it.
	PollerFlag *uint64
}

// Future is the pollable unit of work. Poll advances the future at most one
// step and returns its new state. Once StateComplete has been observed,
// subsequent Poll calls must be idempotent no-ops.
type Future interface {
	Poll(n *Notifier) State
	State() State
}

// asyncFuture is the optional interface a Future may implement to mark
// itself as doing its work off-thread. The runtime
// treats any Future that doesn't implement it as synchronous.
type asyncFuture interface {
	IsAsync() bool
}

// IsAsync reports whether fut does its work off the polling thread. Futures
// that don't implement the optional IsAsync() method are treated as
// synchronous.
func IsAsync(fut Future) bool {
	if af, ok := fut.(asyncFuture); ok {
		return af.IsAsync()
	}
	return false
}

// Poll advances fut by one step, doing nothing if it's already complete.
func Poll(fut Future, n *Notifier) State {
	if fut.State() == StateComplete {
		return StateComplete
	}
	return fut.Poll(n)
}

// BusyPoll tight-loops Poll with no notifier until fut completes.
func BusyPoll(fut Future) State {
	var s State
	for {
		s = Poll(fut, nil)
		if s == StateComplete {
			return s
		}
	}
}

package miniasync

import "io"

// OperationType selects which bulk memory operation a Descriptor performs.
type OperationType int

const (
	OpMemcpy OperationType = iota
	OpMemmove
	OpMemset
)

func (t OperationType) String() string {
	switch t {
	case OpMemcpy:
		return "memcpy"
	case OpMemmove:
		return "memmove"
	case OpMemset:
		return "memset"
	default:
		return "unknown"
	}
}

// Flags modify how a VDM backend carries out an operation. DurableDest is
// the only defined bit; Memcpy/Memmove/Memset panic on any other.
type Flags uint32

const (
	// DurableDest asks the backend to ensure dest is durably written
	// (e.g. flushed past a volatile cache) before the operation completes.
	// Backends that have no concept of durability (Synchronous, Threaded)
	// are free to treat this as a no-op; it exists so a future hardware
	// offload descriptor can honor it without an ABI break.
	DurableDest Flags = 1 << iota
)

// OperationData describes one pending bulk memory operation.
type OperationData struct {
	Type  OperationType
	Dest  []byte
	Src   []byte
	Value byte // used only when Type == OpMemset
	N     int
	Flags Flags
}

// Result reports whether a completed operation actually succeeded. Separate
// from Future's State so a backend can report a completed-but-failed
// operation (e.g. an out-of-memory condition in an offload engine) without
// forcing callers to distinguish failure from success by polling forever.
type Result int

const (
	ResultSuccess Result = iota
	ResultOutOfMemory
	ResultJobCorrupted
)

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultOutOfMemory:
		return "out_of_memory"
	case ResultJobCorrupted:
		return "job_corrupted"
	default:
		return "unknown"
	}
}

// OperationOutput is what an OperationFuture produces once complete.
type OperationOutput struct {
	Dest   []byte
	Result Result
}

// Descriptor is the pluggable backend behind every VDM operation. OpNew
// allocates whatever bookkeeping the backend needs for one operation;
// OpStart arms it (returning false if it could not
// be armed yet, e.g. a worker ring was full, so the caller retries on a
// later poll); OpCheck reports progress without blocking; OpDelete releases
// the handle and returns the final output once OpCheck reports complete.
type Descriptor interface {
	// Async reports whether operations run off the polling thread;
	// Synchronous is false, Threaded is true.
	Async() bool
	OpNew(op *OperationData) any
	OpStart(handle any, n *Notifier) (armed bool)
	OpCheck(handle any) State
	OpDelete(handle any) OperationOutput
}

// OperationFuture drives one Descriptor-backed operation through
// IDLE→RUNNING→COMPLETE. OpStart is retried on every poll while still IDLE, since
// a backend may refuse to arm the operation (e.g. a full work ring) without
// that being an error.
type OperationFuture struct {
	desc   Descriptor
	handle any
	data   *OperationData
	state  State
	output OperationOutput
}

func newOperationFuture(desc Descriptor, data *OperationData) *OperationFuture {
	return &OperationFuture{desc: desc, handle: desc.OpNew(data), data: data, state: StateIdle}
}

// Poll implements Future.
func (f *OperationFuture) Poll(n *Notifier) State {
	if f.state == StateComplete {
		return f.state
	}
	if f.state == StateIdle {
		if !f.desc.OpStart(f.handle, n) {
			return StateIdle
		}
		f.state = StateRunning
	}

	s := f.desc.OpCheck(f.handle)
	if s == StateComplete {
		f.output = f.desc.OpDelete(f.handle)
		f.state = StateComplete
	}
	return f.state
}

// State implements Future.
func (f *OperationFuture) State() State { return f.state }

// IsAsync implements the optional asyncFuture interface, delegating to the
// backing Descriptor.
func (f *OperationFuture) IsAsync() bool { return f.desc.Async() }

// Data returns the operation's request parameters.
func (f *OperationFuture) Data() *OperationData { return f.data }

// Output returns the operation's result. Only meaningful once State() ==
// StateComplete.
func (f *OperationFuture) Output() OperationOutput { return f.output }

// VDM is a virtual data mover: a named, reusable handle for submitting bulk
// memory operations against a particular Descriptor backend.
type VDM struct {
	desc Descriptor
}

// New wraps desc as a VDM.
func New(desc Descriptor) *VDM { return &VDM{desc: desc} }

// Memcpy submits a non-overlapping copy of n bytes from src to dest.
func (v *VDM) Memcpy(dest, src []byte, n int, flags Flags) *OperationFuture {
	return v.submit(OpMemcpy, dest, src, 0, n, flags)
}

// Memmove submits a possibly-overlapping copy of n bytes from src to dest.
func (v *VDM) Memmove(dest, src []byte, n int, flags Flags) *OperationFuture {
	return v.submit(OpMemmove, dest, src, 0, n, flags)
}

// Memset submits a fill of n bytes of dest with value.
func (v *VDM) Memset(dest []byte, value byte, n int, flags Flags) *OperationFuture {
	return v.submit(OpMemset, dest, nil, value, n, flags)
}

func (v *VDM) submit(t OperationType, dest, src []byte, value byte, n int, flags Flags) *OperationFuture {
	if flags&^DurableDest != 0 {
		panic(NewOpError(t.String(), ErrCodeInvalidParameters, "unknown operation flag bits"))
	}
	data := &OperationData{Type: t, Dest: dest, Src: src, Value: value, N: n, Flags: flags}
	return newOperationFuture(v.desc, data)
}

// Close releases backend resources, if the Descriptor has any to release.
// Callers must ensure every future the VDM produced has already reached
// StateComplete; Close does not poll or complete outstanding futures.
func (v *VDM) Close() error {
	if c, ok := v.desc.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

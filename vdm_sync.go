package miniasync

// SynchronousVDM is a Descriptor that performs every operation inline,
// during OpStart, and is always complete by the time OpCheck is first
// called. It has no goroutines, no queues, and nothing to close; it exists
// so callers (and tests) can exercise the future/chain/runtime machinery
// without paying for a worker pool.
type SynchronousVDM struct{}

// NewSynchronous returns a VDM backed by the synchronous Descriptor.
func NewSynchronous() *VDM {
	return New(&SynchronousVDM{})
}

func (SynchronousVDM) Async() bool { return false }

func (SynchronousVDM) OpNew(op *OperationData) any { return op }

// OpStart performs the operation immediately and is always able to arm.
func (SynchronousVDM) OpStart(handle any, _ *Notifier) bool {
	op := handle.(*OperationData)
	switch op.Type {
	case OpMemcpy:
		copy(op.Dest, op.Src[:op.N])
	case OpMemmove:
		syncMemmove(op.Dest, op.Src, op.N)
	case OpMemset:
		for i := 0; i < op.N; i++ {
			op.Dest[i] = op.Value
		}
	}
	return true
}

// OpCheck is always complete: the work already happened in OpStart.
func (SynchronousVDM) OpCheck(_ any) State { return StateComplete }

func (SynchronousVDM) OpDelete(handle any) OperationOutput {
	op := handle.(*OperationData)
	return OperationOutput{Dest: op.Dest, Result: ResultSuccess}
}

// syncMemmove copies n bytes from src to dest, correct even when the two
// slices overlap (src and dest may be slices over the same backing array at
// different offsets; Go's builtin copy handles that overlap correctly).
func syncMemmove(dest, src []byte, n int) {
	if n <= 0 {
		return
	}
	copy(dest[:n], src[:n])
}

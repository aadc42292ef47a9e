// Package membuf implements the per-VDM arena that hands out stable
// pointers for operation state, reclaiming them lazily via a caller-supplied
// predicate instead of refcounting or an epoch scheme.
//
// A membuf is owned exclusively by one VDM; slots it
// returns are shared with whichever operation is currently running and
// returned to the membuf only once no future references them.
package membuf

import (
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ReuseState is the three-way answer a CheckFn gives about a retired slot.
type ReuseState int

const (
	// InUse means the caller (the future poller) still owns the slot.
	InUse ReuseState = iota
	// CanWait means the slot is logically finished but a backend worker
	// may still briefly touch it; the pointer must stay valid and unmoved.
	CanWait
	// CanReuse means it is safe to hand the slot to a new allocation.
	CanReuse
)

// CheckFn probes a retired slot's reuse state. It must be pure with respect
// to the caller: side-effect-free, safe to call repeatedly and concurrently
// with the backend touching the slot's own fields.
type CheckFn func(slot any) ReuseState

// SizeFn reports the usable size of a slot, used only for sanity checking.
type SizeFn func(slot any) int

// Membuf is the per-VDM arena. Alloc/Free are called only from the thread
// that owns operation lifecycle (typically the future poller); backend
// workers may mutate a slot's own fields but never the Membuf's metadata.
type Membuf struct {
	mu       sync.Mutex
	checkFn  CheckFn
	sizeFn   SizeFn
	userData any

	retired *orderedmap.OrderedMap[uint64, any]
	nextID  uint64
}

// New creates an arena. userData is returned verbatim by UserData and is
// typically the owning VDM, so a slot can be traced back to its VDM.
func New(checkFn CheckFn, sizeFn SizeFn, userData any) *Membuf {
	return &Membuf{
		checkFn:  checkFn,
		sizeFn:   sizeFn,
		userData: userData,
		retired:  orderedmap.New[uint64, any](),
	}
}

// Alloc returns a slot. It first scans retired slots oldest-first for one
// whose CheckFn reports CanReuse; if none is reclaimable, it calls newFn to
// grow the arena. The pointer newFn (or a reused slot) returns is stable
// until Free followed by a reclaiming Alloc.
func (m *Membuf) Alloc(newFn func() any) any {
	m.mu.Lock()
	defer m.mu.Unlock()

	for pair := m.retired.Oldest(); pair != nil; pair = pair.Next() {
		if m.checkFn(pair.Value) == CanReuse {
			m.retired.Delete(pair.Key)
			return pair.Value
		}
	}
	return newFn()
}

// Free marks slot as retired. Its memory remains valid and unchanged until
// a subsequent Alloc reclaims it or Delete tears down the whole arena —
// concurrent backend workers may still be reading from it, which is exactly
// what CanWait exists to describe.
func (m *Membuf) Free(slot any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.retired.Set(m.nextID, slot)
}

// UserData returns the VDM associated with slot. Since a Membuf is owned
// exclusively by one VDM, every slot it ever hands out belongs to that same
// VDM; the parameter exists so call sites read as a per-slot lookup even
// though the answer never varies by slot.
func (m *Membuf) UserData(_ any) any {
	return m.userData
}

// Size reports slot's usable size via the configured SizeFn, or -1 if none
// was configured.
func (m *Membuf) Size(slot any) int {
	if m.sizeFn == nil {
		return -1
	}
	return m.sizeFn(slot)
}

// Delete frees all backing state. Callers must ensure no worker still
// references any slot before calling Delete.
func (m *Membuf) Delete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retired = orderedmap.New[uint64, any]()
}

// Retired reports how many slots are currently retired (awaiting reuse or
// still CanWait). Exposed for tests and metrics, not part of the core
// contract.
func (m *Membuf) Retired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.retired.Len()
}

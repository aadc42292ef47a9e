// Package ringbuf provides a bounded MPMC queue of opaque values with
// blocking and non-blocking variants and a stop-the-world shutdown signal.
//
// It backs the threaded virtual data mover: the submitting goroutine
// try-enqueues operations, worker goroutines block-dequeue them, and Stop
// wakes every blocked waiter so workers can exit cleanly.
package ringbuf

import "sync"

// Ring is a bounded multi-producer multi-consumer FIFO of capacity slots.
// Ownership: one Ring is owned by one threaded VDM; worker goroutines and
// the submitting goroutine share it for the Ring's lifetime.
type Ring struct {
	mu       sync.Mutex
	notFull  sync.Cond
	notEmpty sync.Cond
	items    []any
	head     int
	size     int
	capacity int
	running  bool
}

// New creates a ring buffer holding up to capacity items.
func New(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 1
	}
	r := &Ring{
		items:    make([]any, capacity),
		capacity: capacity,
		running:  true,
	}
	r.notFull.L = &r.mu
	r.notEmpty.L = &r.mu
	return r
}

// TryEnqueue attempts to add v without blocking. Returns false if the ring
// is full or has been stopped.
func (r *Ring) TryEnqueue(v any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running || r.size == r.capacity {
		return false
	}
	r.push(v)
	r.notEmpty.Signal()
	return true
}

// Enqueue blocks until a slot is free or the ring is stopped. It is a no-op
// (v is dropped) if the ring was already stopped, matching the contract
// that all enqueue/dequeue calls after stop return promptly.
func (r *Ring) Enqueue(v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.running && r.size == r.capacity {
		r.notFull.Wait()
	}
	if !r.running {
		return
	}
	r.push(v)
	r.notEmpty.Signal()
}

// Dequeue blocks until an item is available or the ring is stopped. It
// returns (nil, false) once the ring is stopped and drained.
func (r *Ring) Dequeue() (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.running && r.size == 0 {
		r.notEmpty.Wait()
	}
	if r.size == 0 {
		return nil, false
	}
	v := r.pop()
	r.notFull.Signal()
	return v, true
}

// TryDequeue returns (nil, false) immediately if the ring is empty.
func (r *Ring) TryDequeue() (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.size == 0 {
		return nil, false
	}
	v := r.pop()
	r.notFull.Signal()
	return v, true
}

// Stop marks the ring as no longer running and wakes every blocked waiter.
// Dequeuers drain any remaining items, then observe (nil, false).
func (r *Ring) Stop() {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
	r.notEmpty.Broadcast()
	r.notFull.Broadcast()
}

// Running reports whether Stop has not yet been called.
func (r *Ring) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Ring) push(v any) {
	tail := (r.head + r.size) % r.capacity
	r.items[tail] = v
	r.size++
}

func (r *Ring) pop() any {
	v := r.items[r.head]
	r.items[r.head] = nil
	r.head = (r.head + 1) % r.capacity
	r.size--
	return v
}

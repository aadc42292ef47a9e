//go:build unix

// Package pause provides an architecture-appropriate CPU-friendly pause for
// the runtime's busy-spin phase.
package pause

import "golang.org/x/sys/unix"

// Yield hints to the OS scheduler that the calling goroutine's carrier
// thread has no useful work this instant.
func Yield() {
	_ = unix.Sched_yield()
}

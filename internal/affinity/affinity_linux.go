//go:build linux

// Package affinity pins the calling goroutine's OS thread to a specific
// CPU, for worker pools that want each worker to stay resident on one core.
package affinity

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// Pin locks the calling goroutine to its current OS thread and restricts
// that thread to cpu. It must be called from the goroutine that will do the
// pinned work, typically as the first line of a worker loop.
func Pin(cpu int) error {
	runtime.LockOSThread()
	var mask unix.CPUSet
	mask.Set(cpu)
	return unix.SchedSetaffinity(0, &mask)
}

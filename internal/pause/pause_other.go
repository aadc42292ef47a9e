//go:build !unix

package pause

import "runtime"

// Yield is the portable fallback for GOOS targets without Sched_yield.
func Yield() {
	runtime.Gosched()
}

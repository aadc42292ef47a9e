// Package tuning applies process-level resource tuning appropriate for a
// library that spawns worker-thread pools: matching GOMAXPROCS to the
// container's CPU quota and capping GOMEMLIMIT so a threaded VDM's membuf
// growth can't quietly exhaust a cgroup.
//
// Tuning is applied explicitly by NewRuntime/NewThreaded, never implicitly
// from a package init(), so embedding callers retain control over process
// globals.
package tuning

import (
	"github.com/KimMachineGun/automemlimit/memlimit"
	"github.com/pbnjay/memory"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/mblabs/miniasync/internal/logging"
)

// ApplyProcessLimits sets GOMAXPROCS from the cgroup CPU quota and GOMEMLIMIT
// from a fraction of the cgroup memory limit; with no cgroup limit detected,
// GOMEMLIMIT is left unchanged. It is safe to call
// more than once; later calls simply reapply the same computation.
func ApplyProcessLimits() {
	logger := logging.Default()

	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Debugf(format, args...)
	})); err != nil {
		logger.Warn("failed to adjust GOMAXPROCS for cgroup quota", "error", err)
	}

	if _, err := memlimit.SetGoMemLimitWithOpts(
		memlimit.WithRatio(0.9),
		memlimit.WithProvider(memlimit.FromCgroupHybrid),
	); err != nil {
		logger.Debug("no cgroup memory limit detected, leaving GOMEMLIMIT unset", "error", err)
	}
}

// DefaultMembufGrowthHint suggests how many bytes a membuf should grow its
// backing block by, scaled to total system memory so small embedded targets
// don't over-allocate and large hosts don't thrash on tiny growth steps.
func DefaultMembufGrowthHint() int {
	const (
		minGrowth = 64 * 1024
		maxGrowth = 16 * 1024 * 1024
		fraction  = 1.0 / 4096.0
	)
	total := memory.TotalMemory()
	hint := int(float64(total) * fraction)
	if hint < minGrowth {
		return minGrowth
	}
	if hint > maxGrowth {
		return maxGrowth
	}
	return hint
}

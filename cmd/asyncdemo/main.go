// Command asyncdemo exercises the miniasync VDM, Chain, and Runtime
// against both backends from the command line.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	miniasync "github.com/mblabs/miniasync"
	"github.com/mblabs/miniasync/internal/logging"
)

var (
	verbose bool
	logger  *logging.Logger
)

func main() {
	root := &cobra.Command{
		Use:   "asyncdemo",
		Short: "Exercise miniasync's VDM, Chain, and Runtime from the command line",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg := logging.DefaultConfig()
			if verbose {
				cfg.Level = logging.LevelDebug
			}
			logger = logging.NewLogger(cfg)
			logging.SetDefault(logger)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newSyncCmd(), newThreadedCmd(), newChainCmd(), newStatsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newSyncCmd() *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a memcpy, memmove, and memset through the synchronous VDM",
		RunE: func(cmd *cobra.Command, args []string) error {
			vdm := miniasync.NewSynchronous()
			defer vdm.Close()

			src := make([]byte, size)
			for i := range src {
				src[i] = byte(i)
			}
			dest := make([]byte, size)

			fut := vdm.Memcpy(dest, src, size, 0)
			if s := miniasync.BusyPoll(fut); s != miniasync.StateComplete {
				return fmt.Errorf("memcpy did not complete, state=%s", s)
			}
			color.Green("memcpy: %d bytes, result=%s", size, fut.Output().Result)

			setFut := vdm.Memset(dest, 0xAB, size, 0)
			miniasync.BusyPoll(setFut)
			color.Green("memset: %d bytes to 0xAB, result=%s", size, setFut.Output().Result)

			moveFut := vdm.Memmove(dest[:size/2], dest[size/2:], size/2, 0)
			miniasync.BusyPoll(moveFut)
			color.Green("memmove: %d bytes, result=%s", size/2, moveFut.Output().Result)
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", 4096, "bytes to move per operation")
	return cmd
}

func newThreadedCmd() *cobra.Command {
	var threads, ops, size int
	cmd := &cobra.Command{
		Use:   "threaded",
		Short: "Submit many memcpy operations through the threaded VDM and report metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := miniasync.DefaultThreadedConfig()
			cfg.Threads = threads
			vdm := miniasync.NewThreaded(cfg)
			defer vdm.Close()

			rt := miniasync.NewRuntime(nil)
			metrics := miniasync.NewMetrics()

			futs := make([]miniasync.Future, ops)
			starts := make([]time.Time, ops)
			for i := 0; i < ops; i++ {
				src := make([]byte, size)
				dest := make([]byte, size)
				starts[i] = time.Now()
				futs[i] = vdm.Memcpy(dest, src, size, 0)
			}
			rt.WaitMultiple(futs)

			for i, f := range futs {
				out := f.(*miniasync.OperationFuture).Output()
				latency := uint64(time.Since(starts[i]).Nanoseconds())
				metrics.RecordOp(miniasync.OpMemcpy, size, latency, out.Result)
			}

			snap := metrics.Snapshot()
			js, err := snap.JSON()
			if err != nil {
				return err
			}
			color.Cyan("submitted %d ops across %d workers", ops, threads)
			fmt.Println(js)
			return nil
		},
	}
	cmd.Flags().IntVar(&threads, "threads", 4, "worker goroutines")
	cmd.Flags().IntVar(&ops, "ops", 100, "number of memcpy operations to submit")
	cmd.Flags().IntVar(&size, "size", 4096, "bytes per operation")
	return cmd
}

func newChainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Run a two-stage Chain: copy, then uppercase and copy again",
		RunE: func(cmd *cobra.Command, args []string) error {
			vdm := miniasync.NewSynchronous()
			defer vdm.Close()

			src := []byte("the quick brown fox")
			stage1Dest := make([]byte, len(src))
			stage1 := &miniasync.Entry{Inner: vdm.Memcpy(stage1Dest, src, len(src), 0)}

			// stage2's LazyInit reads stage1's completed output (uppercasing
			// it into a fresh buffer) and only then submits the VDM
			// operation that copies it into the chain's final destination.
			upperDest := make([]byte, len(src))
			stage2 := &miniasync.Entry{
				LazyInit: func(c *miniasync.Chain) miniasync.Future {
					uppered := make([]byte, len(stage1Dest))
					for i, b := range stage1Dest {
						if b >= 'a' && b <= 'z' {
							b -= 'a' - 'A'
						}
						uppered[i] = b
					}
					return vdm.Memcpy(upperDest, uppered, len(uppered), 0)
				},
			}

			var result []byte
			sink := miniasync.NewSink(&result)
			stage2.MapFn = func(_ miniasync.Future, next *miniasync.Entry, _ any) {
				if s, ok := next.AsSink(); ok {
					*(s.Data().(*[]byte)) = upperDest
				}
			}

			chain := miniasync.NewChain(sink, stage1, stage2)
			rt := miniasync.NewRuntime(nil)
			rt.Wait(chain)

			if out, ok := chain.Output().(*[]byte); ok {
				color.Yellow("chain output: %s", *out)
			}
			return nil
		},
	}
	return cmd
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Run two batches of operations and diff their metrics snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			vdm := miniasync.NewThreaded(miniasync.DefaultThreadedConfig())
			defer vdm.Close()
			rt := miniasync.NewRuntime(nil)
			metrics := miniasync.NewMetrics()

			runBatch := func(n int) {
				futs := make([]miniasync.Future, n)
				for i := 0; i < n; i++ {
					futs[i] = vdm.Memcpy(make([]byte, 256), make([]byte, 256), 256, 0)
				}
				rt.WaitMultiple(futs)
				for _, f := range futs {
					out := f.(*miniasync.OperationFuture).Output()
					metrics.RecordOp(miniasync.OpMemcpy, 256, 1000, out.Result)
				}
			}

			runBatch(10)
			before, err := metrics.Snapshot().JSON()
			if err != nil {
				return err
			}

			runBatch(40)
			after, err := metrics.Snapshot().JSON()
			if err != nil {
				return err
			}

			diff, err := snapshotDiff(before, after)
			if err != nil {
				return err
			}
			color.Magenta("metrics delta after second batch:")
			fmt.Println(diff)
			return nil
		},
	}
	return cmd
}

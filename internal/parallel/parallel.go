// Package parallel partitions a kernel's output index space across goroutines.
package parallel

import (
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Maximum number of concurrent worker goroutines.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64, // Typical cache line aware chunk.
	}
}

// Sequential returns a Config that always runs on the calling goroutine.
func Sequential() Config {
	return Config{}
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
//
// Each index is visited exactly once, so f may write output element i without
// synchronization as long as it only reads shared immutable state. If f panics
// in a worker, For panics with the same value on the calling goroutine.
func For(n int, f func(i int), cfg Config) {
	workers := cfg.NumWorkers
	if !cfg.Enabled || workers <= 1 || n < max(cfg.MinChunkSize, 2) {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	chunkSize := max((n+workers-1)/workers, cfg.MinChunkSize, 1)

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		g.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = &workerPanic{value: p}
				}
			}()
			for i := start; i < end; i++ {
				f(i)
			}
			return nil
		})
	}

	// A worker panic is re-raised here so that callers can recover it.
	var wp *workerPanic
	if err := g.Wait(); errors.As(err, &wp) {
		panic(wp.value)
	}
}

// workerPanic carries a value recovered from a worker goroutine.
type workerPanic struct {
	value any
}

func (p *workerPanic) Error() string {
	return fmt.Sprintf("parallel worker panicked: %v", p.value)
}

// ForBatch optimized for batch*channels iteration pattern.
// Common in CNN operations like ConvInteger.
func ForBatch(batch, channels int, f func(b, c int), cfg Config) {
	if channels == 0 {
		return
	}
	n := batch * channels
	For(n, func(k int) {
		f(k/channels, k%channels)
	}, cfg)
}

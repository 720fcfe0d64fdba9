// Package parallel provides the chunked parallel-for used by the
// broadcast fast-path kernels.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution.
type Config struct {
	Enabled   bool // Whether to spawn workers at all.
	Workers   int  // Number of worker goroutines.
	MinPerJob int  // Minimum elements per worker; below that stay sequential.
}

// DefaultConfig returns defaults based on CPU count. Parallelism only
// pays off for large arrays, so the per-job minimum is generous.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:   n > 1,
		Workers:   n,
		MinPerJob: 4096,
	}
}

// ForChunks splits [0, n) into contiguous chunks and runs f on each
// chunk. Chunks never overlap, so f may write disjoint slices of a
// shared destination without synchronization. Falls back to one
// sequential call when parallelism is off or n is small.
func ForChunks(n int, cfg Config, f func(start, end int)) {
	if !cfg.Enabled || cfg.Workers < 2 || n < 2*cfg.MinPerJob {
		f(0, n)
		return
	}

	chunk := (n + cfg.Workers - 1) / cfg.Workers
	if chunk < cfg.MinPerJob {
		chunk = cfg.MinPerJob
	}

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			f(s, e)
		}(start, end)
	}
	wg.Wait()
}

// For runs f(i) for every i in [0, n), in parallel when worthwhile.
func For(n int, cfg Config, f func(i int)) {
	ForChunks(n, cfg, func(start, end int) {
		for i := start; i < end; i++ {
			f(i)
		}
	})
}

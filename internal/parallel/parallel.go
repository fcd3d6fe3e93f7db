// Package parallel splits batch-dimension work across goroutines.
//
// It is the only source of parallelism in the module: backend primitives use
// it to process independent rows of a batch; nothing else spawns goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum rows per goroutine.
}

// DefaultConfig returns defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64,
	}
}

// Sequential returns a config that never spawns goroutines.
func Sequential() Config {
	return Config{Enabled: false, NumWorkers: 1, MinChunkSize: 1}
}

// For executes f(i) for i in [0, n), splitting the range across workers.
// Falls back to a plain loop if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	ForChunks(n, func(start, end int) {
		for i := start; i < end; i++ {
			f(i)
		}
	}, cfg)
}

// ForChunks executes f over disjoint [start, end) ranges covering [0, n).
// Every call to f receives a contiguous range, so callers can keep per-chunk
// accumulators and merge them after ForChunks returns.
func ForChunks(n int, f func(start, end int), cfg Config) {
	ForChunksIndexed(n, func(_, start, end int) { f(start, end) }, cfg)
}

// ForChunksIndexed is ForChunks with the position of each range: chunk counts
// from 0 to NumChunks(n, cfg)-1 in index order. Storing per-chunk results by
// chunk and merging them in that order gives the same sum on every run.
func ForChunksIndexed(n int, f func(chunk, start, end int), cfg Config) {
	if n <= 0 {
		return
	}
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < cfg.MinChunkSize {
		f(0, 0, n)
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	for chunk, start := 0, 0; start < n; chunk, start = chunk+1, start+chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(c, s, e int) {
			defer wg.Done()
			f(c, s, e)
		}(chunk, start, end)
	}
	wg.Wait()
}

// NumChunks returns how many ranges ForChunks will produce for n items.
func NumChunks(n int, cfg Config) int {
	if n <= 0 {
		return 0
	}
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < cfg.MinChunkSize {
		return 1
	}
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)
	return (n + chunkSize - 1) / chunkSize
}

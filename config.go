package veloxx

import (
	"runtime"
	"sync"
)

// Config controls the hybrid execution policy shared by every operator.
//
// Series sums and means pick their strategy by input size: below
// SIMDThreshold a plain scalar loop runs; between SIMDThreshold and
// ParThreshold the blocked kernel runs serially (lane-unrolled for I32,
// and for F64 when StableFloatSum is false; pairwise within each block
// for F64 when it is true); at or above ParThreshold the input is
// chunked across MaxWorkers and each chunk runs the same kernel, with an
// ordered combine. Element-wise add/sub/mul and numeric comparisons run
// the lane-unrolled kernel at every length, and division and min/max run
// a plain loop at every length; for these SIMDThreshold has no effect
// and ParThreshold alone decides whether the work is split across
// workers.
type Config struct {
	// SIMDThreshold is the minimum length for the blocked sum kernels.
	SIMDThreshold int

	// ParThreshold is the minimum length for the parallel path.
	ParThreshold int

	// MaxWorkers limits worker goroutines (min 1). Defaults to the
	// logical CPU count.
	MaxWorkers int

	// StableFloatSum selects pairwise summation within each block of an
	// F64 Series sum at or above SIMDThreshold; when false, those blocks
	// use 4-lane accumulation. Shorter series, and group-by and pivot
	// aggregates, always accumulate left to right.
	StableFloatSum bool

	// StableGroupBy forces the serial group-by path so output rows
	// follow global first-occurrence order. When false, large inputs
	// use the hash-partitioned parallel path, which preserves
	// first-occurrence order per bucket but not globally.
	StableGroupBy bool

	// MorselSize is the number of rows per work unit for the
	// work-stealing helpers.
	MorselSize int
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		SIMDThreshold:  1024,
		ParThreshold:   131072,
		MaxWorkers:     runtime.NumCPU(),
		StableFloatSum: true,
		StableGroupBy:  true,
		MorselSize:     4096,
	}
}

var (
	globalConfig   = DefaultConfig()
	globalConfigMu sync.RWMutex
)

// SetConfig replaces the process-wide configuration.
func SetConfig(cfg Config) {
	if cfg.MaxWorkers < 1 {
		cfg.MaxWorkers = 1
	}
	if cfg.MorselSize <= 0 {
		cfg.MorselSize = DefaultConfig().MorselSize
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// GetConfig returns the current process-wide configuration.
func GetConfig() Config {
	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetMaxWorkers sets the worker goroutine limit (min 1).
func SetMaxWorkers(n int) {
	if n < 1 {
		n = 1
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig.MaxWorkers = n
}

// SetThresholds sets the vectorised and parallel size thresholds.
func SetThresholds(simd, par int) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig.SIMDThreshold = simd
	globalConfig.ParThreshold = par
}

func (c Config) numWorkers() int {
	if c.MaxWorkers > 0 {
		return c.MaxWorkers
	}
	return runtime.NumCPU()
}

func (c Config) useVector(n int) bool {
	return n >= c.SIMDThreshold
}

func (c Config) useParallel(n int) bool {
	return n >= c.ParThreshold && c.numWorkers() > 1
}

package veloxx

import (
	"sync"
)

// BoolMask is a pooled boolean slice for filter operations.
// Call Release() when done to return it to the pool.
type BoolMask struct {
	Data []bool
	pool *sync.Pool
}

// Release returns the mask to the pool for reuse
func (m *BoolMask) Release() {
	if m.pool != nil && m.Data != nil {
		for i := range m.Data {
			m.Data[i] = false
		}
		m.pool.Put(m)
	}
}

// IndexSlice is a pooled int slice for gather operations
type IndexSlice struct {
	Data []int
	pool *sync.Pool
}

// Release returns the slice to the pool for reuse
func (s *IndexSlice) Release() {
	if s.pool != nil && s.Data != nil {
		s.pool.Put(s)
	}
}

// Pool sizes use power-of-2 buckets
var (
	boolPools  [32]*sync.Pool
	indexPools [32]*sync.Pool
	poolInit   sync.Once
)

func initPools() {
	poolInit.Do(func() {
		for i := range boolPools {
			size := 1 << i
			boolPools[i] = &sync.Pool{
				New: func() interface{} {
					return &BoolMask{Data: make([]bool, size)}
				},
			}
			indexPools[i] = &sync.Pool{
				New: func() interface{} {
					return &IndexSlice{Data: make([]int, size)}
				},
			}
		}
	})
}

// getBucket returns the pool bucket index for a given size
func getBucket(size int) int {
	if size <= 0 {
		return 0
	}
	bucket := 0
	n := size - 1
	for n > 0 {
		n >>= 1
		bucket++
	}
	if bucket >= 32 {
		bucket = 31
	}
	return bucket
}

// getBoolMask gets a bool mask from the pool with exactly 'size' length
func getBoolMask(size int) *BoolMask {
	initPools()
	bucket := getBucket(size)
	pool := boolPools[bucket]
	mask := pool.Get().(*BoolMask)
	mask.pool = pool

	poolSize := 1 << bucket
	if size > poolSize || size > cap(mask.Data) {
		mask.Data = make([]bool, size)
	} else {
		mask.Data = mask.Data[:size]
	}
	return mask
}

// getIndexSlice gets an int slice from the pool with exactly 'size' length
func getIndexSlice(size int) *IndexSlice {
	initPools()
	bucket := getBucket(size)
	pool := indexPools[bucket]
	slice := pool.Get().(*IndexSlice)
	slice.pool = pool

	poolSize := 1 << bucket
	if size > poolSize || size > cap(slice.Data) {
		slice.Data = make([]int, size)
	} else {
		slice.Data = slice.Data[:size]
	}
	return slice
}

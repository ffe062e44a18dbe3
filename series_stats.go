package veloxx

import (
	"math"
	"sort"
	"sync"
)

// Reductions over numeric series. Every reduction ignores nulls and
// returns the null marker when no non-null value exists. Float sums run
// over fixed-size blocks whose partials combine in block order, so the
// result is a pure function of the data: the parallel path distributes
// blocks across workers and folds the same partial slice the serial
// path does.

// errNonNumeric reports the standard reduction type error.
func (s *Series) errNonNumeric(op string) error {
	return newColumnError(KindTypeMismatch, s.name, "%s requires a numeric series, %q is %s", op, s.name, s.dtype)
}

// blockPartialsF64 computes one partial sum per reduce block, either
// serially or with blocks distributed across workers.
func blockPartialsF64(data []float64, valid []bool, stable bool) ([]float64, []int) {
	n := len(data)
	nblocks := (n + reduceBlock - 1) / reduceBlock
	sums := make([]float64, nblocks)
	counts := make([]int, nblocks)

	fill := func(bstart, bend int) {
		for b := bstart; b < bend; b++ {
			lo := b * reduceBlock
			hi := lo + reduceBlock
			if hi > n {
				hi = n
			}
			sums[b], counts[b] = sumF64Blocked(data, valid, lo, hi, stable)
		}
	}

	cfg := GetConfig()
	if !cfg.useParallel(n) || nblocks <= 1 {
		fill(0, nblocks)
		return sums, counts
	}

	ranges := chunkRanges(nblocks, cfg.numWorkers())
	var wg sync.WaitGroup
	for _, r := range ranges {
		wg.Add(1)
		go func(r Morsel) {
			defer wg.Done()
			fill(r.Start, r.End)
		}(r)
	}
	wg.Wait()
	return sums, counts
}

// foldPartials combines block partials in block order. With stable
// summation the fold is pairwise; otherwise left to right. Either way
// the fold shape depends only on the partial count, never on workers.
func foldPartials(sums []float64, stable bool) float64 {
	if !stable {
		var total float64
		for _, v := range sums {
			total += v
		}
		return total
	}
	for len(sums) > 1 {
		half := (len(sums) + 1) / 2
		folded := make([]float64, half)
		for i := 0; i < len(sums); i += 2 {
			if i+1 < len(sums) {
				folded[i/2] = sums[i] + sums[i+1]
			} else {
				folded[i/2] = sums[i]
			}
		}
		sums = folded
	}
	if len(sums) == 0 {
		return 0
	}
	return sums[0]
}

// sumCount reduces to (sum as f64, non-null count). For I32 series the
// exact integer total is also returned.
func (s *Series) sumCount() (float64, int64, int, error) {
	cfg := GetConfig()
	switch s.dtype {
	case F64:
		if !cfg.useVector(s.length) {
			sum, count := sumF64Scalar(s.f64, s.valid)
			return sum, 0, count, nil
		}
		sums, counts := blockPartialsF64(s.f64, s.valid, cfg.StableFloatSum)
		total := foldPartials(sums, cfg.StableFloatSum)
		count := 0
		for _, c := range counts {
			count += c
		}
		return total, 0, count, nil
	case I32:
		var total int64
		var count int
		if !cfg.useVector(s.length) {
			total, count = sumI32Scalar(s.i32, s.valid)
		} else if !cfg.useParallel(s.length) {
			total, count = sumI32Vector(s.i32, s.valid)
		} else {
			type partial struct {
				sum   int64
				count int
			}
			parts := parallelRanges(s.length, func(lo, hi int) partial {
				var v []bool
				if s.valid != nil {
					v = s.valid[lo:hi]
				}
				ps, pc := sumI32Vector(s.i32[lo:hi], v)
				return partial{ps, pc}
			})
			for _, p := range parts {
				total += p.sum
				count += p.count
			}
		}
		return float64(total), total, count, nil
	default:
		return 0, 0, 0, s.errNonNumeric("sum")
	}
}

// Sum returns the sum of non-null values: I32 for an I32 series, F64
// otherwise. All-null input returns null.
func (s *Series) Sum() (Value, error) {
	f, i, count, err := s.sumCount()
	if err != nil {
		return NullValue(), err
	}
	if count == 0 {
		return NullValue(), nil
	}
	if s.dtype == I32 {
		return I32Value(int32(i)), nil
	}
	return F64Value(f), nil
}

// Mean returns the arithmetic mean of non-null values as F64, or null
// for all-null input.
func (s *Series) Mean() (Value, error) {
	f, _, count, err := s.sumCount()
	if err != nil {
		return NullValue(), err
	}
	if count == 0 {
		return NullValue(), nil
	}
	return F64Value(f / float64(count)), nil
}

// Min returns the smallest non-null value in the series dtype, or null
// for all-null input.
func (s *Series) Min() (Value, error) {
	return s.extreme(true)
}

// Max returns the largest non-null value in the series dtype, or null
// for all-null input.
func (s *Series) Max() (Value, error) {
	return s.extreme(false)
}

func (s *Series) extreme(wantMin bool) (Value, error) {
	op := "max"
	if wantMin {
		op = "min"
	}
	cfg := GetConfig()
	switch s.dtype {
	case F64:
		if !cfg.useParallel(s.length) {
			v, ok := minMaxF64(s.f64, s.valid, 0, s.length, wantMin)
			if !ok {
				return NullValue(), nil
			}
			return F64Value(v), nil
		}
		type partial struct {
			v  float64
			ok bool
		}
		parts := parallelRanges(s.length, func(lo, hi int) partial {
			v, ok := minMaxF64(s.f64, s.valid, lo, hi, wantMin)
			return partial{v, ok}
		})
		best := 0.0
		seen := false
		for _, p := range parts {
			if !p.ok {
				continue
			}
			if !seen || (wantMin && p.v < best) || (!wantMin && p.v > best) {
				best = p.v
				seen = true
			}
		}
		if !seen {
			return NullValue(), nil
		}
		return F64Value(best), nil
	case I32:
		if !cfg.useParallel(s.length) {
			v, ok := minMaxI32(s.i32, s.valid, 0, s.length, wantMin)
			if !ok {
				return NullValue(), nil
			}
			return I32Value(v), nil
		}
		type partial struct {
			v  int32
			ok bool
		}
		parts := parallelRanges(s.length, func(lo, hi int) partial {
			v, ok := minMaxI32(s.i32, s.valid, lo, hi, wantMin)
			return partial{v, ok}
		})
		var best int32
		seen := false
		for _, p := range parts {
			if !p.ok {
				continue
			}
			if !seen || (wantMin && p.v < best) || (!wantMin && p.v > best) {
				best = p.v
				seen = true
			}
		}
		if !seen {
			return NullValue(), nil
		}
		return I32Value(best), nil
	default:
		return NullValue(), s.errNonNumeric(op)
	}
}

// StdDev returns the sample standard deviation of non-null values as
// F64. Fewer than two non-null values yields null.
func (s *Series) StdDev() (Value, error) {
	if !s.dtype.IsNumeric() {
		return NullValue(), s.errNonNumeric("std_dev")
	}
	f, _, count, err := s.sumCount()
	if err != nil {
		return NullValue(), err
	}
	if count < 2 {
		return NullValue(), nil
	}
	mean := f / float64(count)

	var m2 float64
	at := func(i int) float64 {
		if s.dtype == I32 {
			return float64(s.i32[i])
		}
		return s.f64[i]
	}
	for i := 0; i < s.length; i++ {
		if s.valid != nil && !s.valid[i] {
			continue
		}
		d := at(i) - mean
		m2 += d * d
	}
	return F64Value(math.Sqrt(m2 / float64(count-1))), nil
}

// Median returns the lower median of non-null values in the series
// dtype, or null for all-null input.
func (s *Series) Median() (Value, error) {
	switch s.dtype {
	case F64:
		vals := make([]float64, 0, s.length)
		for i := 0; i < s.length; i++ {
			if s.valid == nil || s.valid[i] {
				vals = append(vals, s.f64[i])
			}
		}
		if len(vals) == 0 {
			return NullValue(), nil
		}
		sort.Float64s(vals)
		return F64Value(vals[(len(vals)-1)/2]), nil
	case I32:
		vals := make([]int32, 0, s.length)
		for i := 0; i < s.length; i++ {
			if s.valid == nil || s.valid[i] {
				vals = append(vals, s.i32[i])
			}
		}
		if len(vals) == 0 {
			return NullValue(), nil
		}
		sort.Slice(vals, func(a, b int) bool { return vals[a] < vals[b] })
		return I32Value(vals[(len(vals)-1)/2]), nil
	default:
		return NullValue(), s.errNonNumeric("median")
	}
}

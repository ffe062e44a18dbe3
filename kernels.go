package veloxx

import "math"

// Vectorised compute kernels. Sums have two renditions: a plain scalar
// loop and a lane-unrolled kernel that processes 4×F64 or 8×I32 per
// iteration so the compiler can keep the work in wide registers; callers
// pick between them (and the chunked parallel driver) through the Config
// thresholds. Element-wise add/sub/mul and numeric comparisons have only
// the lane-unrolled rendition; division and min/max only a plain loop.
//
// Reductions are blocked: the input is cut into fixed-size blocks, each
// block reduced independently, and block partials combined in block
// order. Because the block structure depends only on the data length,
// the result is identical no matter how many workers processed the
// blocks.

const reduceBlock = 1024

func f64Bits(v float64) uint64 {
	return math.Float64bits(v)
}

// ============================================================================
// Float64 reductions
// ============================================================================

// sumF64Scalar is the plain loop, skipping nulls.
func sumF64Scalar(data []float64, valid []bool) (float64, int) {
	var sum float64
	count := 0
	if valid == nil {
		for _, v := range data {
			sum += v
		}
		return sum, len(data)
	}
	for i, v := range data {
		if valid[i] {
			sum += v
			count++
		}
	}
	return sum, count
}

// sumF64Block reduces one block with 4 accumulator lanes.
func sumF64Block(data []float64, valid []bool) (float64, int) {
	if valid == nil {
		var s0, s1, s2, s3 float64
		i := 0
		for ; i+4 <= len(data); i += 4 {
			s0 += data[i]
			s1 += data[i+1]
			s2 += data[i+2]
			s3 += data[i+3]
		}
		sum := (s0 + s1) + (s2 + s3)
		for ; i < len(data); i++ {
			sum += data[i]
		}
		return sum, len(data)
	}
	var sum float64
	count := 0
	for i, v := range data {
		if valid[i] {
			sum += v
			count++
		}
	}
	return sum, count
}

// pairwiseSumF64 reduces one block by recursive halving, bounding the
// rounding error to O(log n) ULP growth.
func pairwiseSumF64(data []float64, valid []bool) (float64, int) {
	if len(data) <= 32 {
		return sumF64Scalar(data, valid)
	}
	mid := len(data) / 2
	var lv, rv []bool
	if valid != nil {
		lv, rv = valid[:mid], valid[mid:]
	}
	ls, lc := pairwiseSumF64(data[:mid], lv)
	rs, rc := pairwiseSumF64(data[mid:], rv)
	return ls + rs, lc + rc
}

// sumF64Blocked reduces [lo, hi) block by block. stable selects pairwise
// summation inside each block; partials always combine in block order.
func sumF64Blocked(data []float64, valid []bool, lo, hi int, stable bool) (float64, int) {
	var sum float64
	count := 0
	for start := lo; start < hi; start += reduceBlock {
		end := start + reduceBlock
		if end > hi {
			end = hi
		}
		var bv []bool
		if valid != nil {
			bv = valid[start:end]
		}
		var bs float64
		var bc int
		if stable {
			bs, bc = pairwiseSumF64(data[start:end], bv)
		} else {
			bs, bc = sumF64Block(data[start:end], bv)
		}
		sum += bs
		count += bc
	}
	return sum, count
}

// minMaxF64 scans [lo, hi) for the extreme of non-null values.
func minMaxF64(data []float64, valid []bool, lo, hi int, wantMin bool) (float64, bool) {
	best := 0.0
	seen := false
	for i := lo; i < hi; i++ {
		if valid != nil && !valid[i] {
			continue
		}
		v := data[i]
		if !seen {
			best = v
			seen = true
			continue
		}
		if wantMin {
			if v < best {
				best = v
			}
		} else if v > best {
			best = v
		}
	}
	return best, seen
}

// ============================================================================
// Int32 reductions
// ============================================================================

func sumI32Scalar(data []int32, valid []bool) (int64, int) {
	var sum int64
	count := 0
	if valid == nil {
		for _, v := range data {
			sum += int64(v)
		}
		return sum, len(data)
	}
	for i, v := range data {
		if valid[i] {
			sum += int64(v)
			count++
		}
	}
	return sum, count
}

// sumI32Vector unrolls 8 lanes. Integer addition is associative, so the
// lane split never changes the result.
func sumI32Vector(data []int32, valid []bool) (int64, int) {
	if valid != nil {
		return sumI32Scalar(data, valid)
	}
	var s0, s1, s2, s3, s4, s5, s6, s7 int64
	i := 0
	for ; i+8 <= len(data); i += 8 {
		s0 += int64(data[i])
		s1 += int64(data[i+1])
		s2 += int64(data[i+2])
		s3 += int64(data[i+3])
		s4 += int64(data[i+4])
		s5 += int64(data[i+5])
		s6 += int64(data[i+6])
		s7 += int64(data[i+7])
	}
	sum := s0 + s1 + s2 + s3 + s4 + s5 + s6 + s7
	for ; i < len(data); i++ {
		sum += int64(data[i])
	}
	return sum, len(data)
}

func minMaxI32(data []int32, valid []bool, lo, hi int, wantMin bool) (int32, bool) {
	var best int32
	seen := false
	for i := lo; i < hi; i++ {
		if valid != nil && !valid[i] {
			continue
		}
		v := data[i]
		if !seen {
			best = v
			seen = true
			continue
		}
		if wantMin {
			if v < best {
				best = v
			}
		} else if v > best {
			best = v
		}
	}
	return best, seen
}

// ============================================================================
// Element-wise arithmetic
// ============================================================================

type arithOp int

const (
	arithAdd arithOp = iota
	arithSub
	arithMul
	arithDiv
)

// arithF64Range computes out[i] = a[i] op b[i] over [lo, hi) with the
// 4-lane unrolled body. Division by zero clears outValid.
func arithF64Range(op arithOp, a, b, out []float64, outValid []bool, lo, hi int) {
	switch op {
	case arithAdd:
		i := lo
		for ; i+4 <= hi; i += 4 {
			out[i] = a[i] + b[i]
			out[i+1] = a[i+1] + b[i+1]
			out[i+2] = a[i+2] + b[i+2]
			out[i+3] = a[i+3] + b[i+3]
		}
		for ; i < hi; i++ {
			out[i] = a[i] + b[i]
		}
	case arithSub:
		i := lo
		for ; i+4 <= hi; i += 4 {
			out[i] = a[i] - b[i]
			out[i+1] = a[i+1] - b[i+1]
			out[i+2] = a[i+2] - b[i+2]
			out[i+3] = a[i+3] - b[i+3]
		}
		for ; i < hi; i++ {
			out[i] = a[i] - b[i]
		}
	case arithMul:
		i := lo
		for ; i+4 <= hi; i += 4 {
			out[i] = a[i] * b[i]
			out[i+1] = a[i+1] * b[i+1]
			out[i+2] = a[i+2] * b[i+2]
			out[i+3] = a[i+3] * b[i+3]
		}
		for ; i < hi; i++ {
			out[i] = a[i] * b[i]
		}
	case arithDiv:
		for i := lo; i < hi; i++ {
			if b[i] == 0 {
				outValid[i] = false
				out[i] = 0
				continue
			}
			out[i] = a[i] / b[i]
		}
	}
}

// arithI32Range computes out[i] = a[i] op b[i] over [lo, hi) with the
// 8-lane unrolled body. Division is not an I32 op (it promotes to F64).
func arithI32Range(op arithOp, a, b, out []int32, lo, hi int) {
	switch op {
	case arithAdd:
		i := lo
		for ; i+8 <= hi; i += 8 {
			out[i] = a[i] + b[i]
			out[i+1] = a[i+1] + b[i+1]
			out[i+2] = a[i+2] + b[i+2]
			out[i+3] = a[i+3] + b[i+3]
			out[i+4] = a[i+4] + b[i+4]
			out[i+5] = a[i+5] + b[i+5]
			out[i+6] = a[i+6] + b[i+6]
			out[i+7] = a[i+7] + b[i+7]
		}
		for ; i < hi; i++ {
			out[i] = a[i] + b[i]
		}
	case arithSub:
		i := lo
		for ; i+8 <= hi; i += 8 {
			out[i] = a[i] - b[i]
			out[i+1] = a[i+1] - b[i+1]
			out[i+2] = a[i+2] - b[i+2]
			out[i+3] = a[i+3] - b[i+3]
			out[i+4] = a[i+4] - b[i+4]
			out[i+5] = a[i+5] - b[i+5]
			out[i+6] = a[i+6] - b[i+6]
			out[i+7] = a[i+7] - b[i+7]
		}
		for ; i < hi; i++ {
			out[i] = a[i] - b[i]
		}
	case arithMul:
		i := lo
		for ; i+8 <= hi; i += 8 {
			out[i] = a[i] * b[i]
			out[i+1] = a[i+1] * b[i+1]
			out[i+2] = a[i+2] * b[i+2]
			out[i+3] = a[i+3] * b[i+3]
			out[i+4] = a[i+4] * b[i+4]
			out[i+5] = a[i+5] * b[i+5]
			out[i+6] = a[i+6] * b[i+6]
			out[i+7] = a[i+7] * b[i+7]
		}
		for ; i < hi; i++ {
			out[i] = a[i] * b[i]
		}
	}
}

// ============================================================================
// Element-wise comparisons
// ============================================================================

type cmpOp int

const (
	cmpEq cmpOp = iota
	cmpNe
	cmpLt
	cmpLe
	cmpGt
	cmpGe
)

func (op cmpOp) holdsF64(a, b float64) bool {
	switch op {
	case cmpEq:
		return a == b
	case cmpNe:
		return a != b
	case cmpLt:
		return a < b
	case cmpLe:
		return a <= b
	case cmpGt:
		return a > b
	case cmpGe:
		return a >= b
	}
	return false
}

func (op cmpOp) holdsI32(a, b int32) bool {
	switch op {
	case cmpEq:
		return a == b
	case cmpNe:
		return a != b
	case cmpLt:
		return a < b
	case cmpLe:
		return a <= b
	case cmpGt:
		return a > b
	case cmpGe:
		return a >= b
	}
	return false
}

func (op cmpOp) holdsI64(a, b int64) bool {
	switch op {
	case cmpEq:
		return a == b
	case cmpNe:
		return a != b
	case cmpLt:
		return a < b
	case cmpLe:
		return a <= b
	case cmpGt:
		return a > b
	case cmpGe:
		return a >= b
	}
	return false
}

func (op cmpOp) holdsString(a, b string) bool {
	switch op {
	case cmpEq:
		return a == b
	case cmpNe:
		return a != b
	case cmpLt:
		return a < b
	case cmpLe:
		return a <= b
	case cmpGt:
		return a > b
	case cmpGe:
		return a >= b
	}
	return false
}

func cmpF64Range(op cmpOp, a, b []float64, out []bool, lo, hi int) {
	i := lo
	for ; i+4 <= hi; i += 4 {
		out[i] = op.holdsF64(a[i], b[i])
		out[i+1] = op.holdsF64(a[i+1], b[i+1])
		out[i+2] = op.holdsF64(a[i+2], b[i+2])
		out[i+3] = op.holdsF64(a[i+3], b[i+3])
	}
	for ; i < hi; i++ {
		out[i] = op.holdsF64(a[i], b[i])
	}
}

func cmpI32Range(op cmpOp, a, b []int32, out []bool, lo, hi int) {
	i := lo
	for ; i+8 <= hi; i += 8 {
		out[i] = op.holdsI32(a[i], b[i])
		out[i+1] = op.holdsI32(a[i+1], b[i+1])
		out[i+2] = op.holdsI32(a[i+2], b[i+2])
		out[i+3] = op.holdsI32(a[i+3], b[i+3])
		out[i+4] = op.holdsI32(a[i+4], b[i+4])
		out[i+5] = op.holdsI32(a[i+5], b[i+5])
		out[i+6] = op.holdsI32(a[i+6], b[i+6])
		out[i+7] = op.holdsI32(a[i+7], b[i+7])
	}
	for ; i < hi; i++ {
		out[i] = op.holdsI32(a[i], b[i])
	}
}

// cmpF64ScalarRange compares a column against one literal, the typed
// condition fast path used by predicate filtering.
func cmpF64ScalarRange(op cmpOp, a []float64, s float64, out []bool, lo, hi int) {
	i := lo
	for ; i+4 <= hi; i += 4 {
		out[i] = op.holdsF64(a[i], s)
		out[i+1] = op.holdsF64(a[i+1], s)
		out[i+2] = op.holdsF64(a[i+2], s)
		out[i+3] = op.holdsF64(a[i+3], s)
	}
	for ; i < hi; i++ {
		out[i] = op.holdsF64(a[i], s)
	}
}

func cmpI32ScalarRange(op cmpOp, a []int32, s int32, out []bool, lo, hi int) {
	i := lo
	for ; i+8 <= hi; i += 8 {
		out[i] = op.holdsI32(a[i], s)
		out[i+1] = op.holdsI32(a[i+1], s)
		out[i+2] = op.holdsI32(a[i+2], s)
		out[i+3] = op.holdsI32(a[i+3], s)
		out[i+4] = op.holdsI32(a[i+4], s)
		out[i+5] = op.holdsI32(a[i+5], s)
		out[i+6] = op.holdsI32(a[i+6], s)
		out[i+7] = op.holdsI32(a[i+7], s)
	}
	for ; i < hi; i++ {
		out[i] = op.holdsI32(a[i], s)
	}
}

package veloxx

// Element-wise arithmetic and comparison between two equal-length
// series. Null in either operand yields null at that position; division
// by zero yields null rather than an error.

// combinedValidity intersects the operand masks into a fresh slice, or
// returns nil when neither operand has nulls.
func combinedValidity(a, b *Series) []bool {
	if a.valid == nil && b.valid == nil {
		return nil
	}
	out := make([]bool, a.length)
	for i := range out {
		out[i] = (a.valid == nil || a.valid[i]) && (b.valid == nil || b.valid[i])
	}
	return out
}

// asF64Buffer widens the numeric data to float64, copying I32 input.
func (s *Series) asF64Buffer() []float64 {
	if s.dtype == F64 {
		return s.f64
	}
	out := make([]float64, s.length)
	for i, v := range s.i32 {
		out[i] = float64(v)
	}
	return out
}

func checkElementwise(op string, a, b *Series) error {
	if a.length != b.length {
		return newError(KindLengthMismatch, "%s requires equal lengths, got %d and %d", op, a.length, b.length)
	}
	if !a.dtype.IsNumeric() {
		return a.errNonNumeric(op)
	}
	if !b.dtype.IsNumeric() {
		return b.errNonNumeric(op)
	}
	return nil
}

func (s *Series) arith(op arithOp, opName string, other *Series) (*Series, error) {
	if err := checkElementwise(opName, s, other); err != nil {
		return nil, err
	}
	n := s.length

	// I32 op I32 stays I32, except division which always promotes.
	if s.dtype == I32 && other.dtype == I32 && op != arithDiv {
		out := make([]int32, n)
		parallelFor(n, func(lo, hi int) {
			arithI32Range(op, s.i32, other.i32, out, lo, hi)
		})
		return NewSeriesI32WithNulls(s.name, out, combinedValidity(s, other)), nil
	}

	a := s.asF64Buffer()
	b := other.asF64Buffer()
	out := make([]float64, n)
	valid := combinedValidity(s, other)
	if op == arithDiv && valid == nil {
		valid = make([]bool, n)
		for i := range valid {
			valid[i] = true
		}
	}
	parallelFor(n, func(lo, hi int) {
		arithF64Range(op, a, b, out, valid, lo, hi)
	})
	return NewSeriesF64WithNulls(s.name, out, normalizeValidity(valid)), nil
}

// Add returns the element-wise sum: F64 if either operand is F64, else I32.
func (s *Series) Add(other *Series) (*Series, error) {
	return s.arith(arithAdd, "add", other)
}

// Sub returns the element-wise difference: F64 if either operand is
// F64, else I32.
func (s *Series) Sub(other *Series) (*Series, error) {
	return s.arith(arithSub, "sub", other)
}

// Mul returns the element-wise product: F64 if either operand is F64,
// else I32.
func (s *Series) Mul(other *Series) (*Series, error) {
	return s.arith(arithMul, "mul", other)
}

// Div returns the element-wise quotient as F64. Division by zero yields
// null.
func (s *Series) Div(other *Series) (*Series, error) {
	return s.arith(arithDiv, "div", other)
}

// ============================================================================
// Comparisons
// ============================================================================

// comparable dtype pairs: both numeric, or identical non-numeric types.
func cmpCompatible(a, b DType) bool {
	if a.IsNumeric() && b.IsNumeric() {
		return true
	}
	return a == b
}

// Compare evaluates op element-wise, producing a Bool series. Any null
// operand yields null at that position.
func (s *Series) Compare(op cmpOp, other *Series) (*Series, error) {
	if s.length != other.length {
		return nil, newError(KindLengthMismatch, "compare requires equal lengths, got %d and %d", s.length, other.length)
	}
	if !cmpCompatible(s.dtype, other.dtype) {
		return nil, newColumnError(KindTypeMismatch, s.name, "cannot compare %s with %s", s.dtype, other.dtype)
	}
	if s.dtype == Bool && op != cmpEq && op != cmpNe {
		return nil, newColumnError(KindTypeMismatch, s.name, "bool series support only equality comparisons")
	}

	n := s.length
	out := make([]bool, n)
	valid := combinedValidity(s, other)

	switch {
	case s.dtype == I32 && other.dtype == I32:
		parallelFor(n, func(lo, hi int) {
			cmpI32Range(op, s.i32, other.i32, out, lo, hi)
		})
	case s.dtype.IsNumeric():
		a := s.asF64Buffer()
		b := other.asF64Buffer()
		parallelFor(n, func(lo, hi int) {
			cmpF64Range(op, a, b, out, lo, hi)
		})
	case s.dtype == String:
		parallelFor(n, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				out[i] = op.holdsString(s.strs[i], other.strs[i])
			}
		})
	case s.dtype == DateTime:
		parallelFor(n, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				out[i] = op.holdsI64(s.ts[i], other.ts[i])
			}
		})
	case s.dtype == Bool:
		parallelFor(n, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				if op == cmpEq {
					out[i] = s.bs[i] == other.bs[i]
				} else {
					out[i] = s.bs[i] != other.bs[i]
				}
			}
		})
	}

	return NewSeriesBoolWithNulls(s.name, out, valid), nil
}

// Eq returns the element-wise equality mask.
func (s *Series) Eq(other *Series) (*Series, error) { return s.Compare(cmpEq, other) }

// Ne returns the element-wise inequality mask.
func (s *Series) Ne(other *Series) (*Series, error) { return s.Compare(cmpNe, other) }

// Lt returns the element-wise less-than mask.
func (s *Series) Lt(other *Series) (*Series, error) { return s.Compare(cmpLt, other) }

// Le returns the element-wise less-or-equal mask.
func (s *Series) Le(other *Series) (*Series, error) { return s.Compare(cmpLe, other) }

// Gt returns the element-wise greater-than mask.
func (s *Series) Gt(other *Series) (*Series, error) { return s.Compare(cmpGt, other) }

// Ge returns the element-wise greater-or-equal mask.
func (s *Series) Ge(other *Series) (*Series, error) { return s.Compare(cmpGe, other) }

// CompareScalar evaluates op against one literal, the typed condition
// fast path. The literal must be comparable with the series dtype.
func (s *Series) CompareScalar(op cmpOp, v Value) (*Series, error) {
	if v.IsNull() {
		// Comparison with null is unknown everywhere.
		out := make([]bool, s.length)
		valid := make([]bool, s.length)
		return NewSeriesBoolWithNulls(s.name, out, valid), nil
	}
	if !cmpCompatible(s.dtype, v.Kind) {
		return nil, newColumnError(KindTypeMismatch, s.name, "cannot compare %s with %s", s.dtype, v.Kind)
	}
	if s.dtype == Bool && op != cmpEq && op != cmpNe {
		return nil, newColumnError(KindTypeMismatch, s.name, "bool series support only equality comparisons")
	}

	n := s.length
	out := make([]bool, n)
	var valid []bool
	if s.valid != nil {
		valid = make([]bool, n)
		copy(valid, s.valid)
	}

	switch {
	case s.dtype == I32 && v.Kind == I32:
		parallelFor(n, func(lo, hi int) {
			cmpI32ScalarRange(op, s.i32, v.i32, out, lo, hi)
		})
	case s.dtype.IsNumeric():
		f, _ := v.asF64()
		a := s.asF64Buffer()
		parallelFor(n, func(lo, hi int) {
			cmpF64ScalarRange(op, a, f, out, lo, hi)
		})
	case s.dtype == String:
		parallelFor(n, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				out[i] = op.holdsString(s.strs[i], v.str)
			}
		})
	case s.dtype == DateTime:
		parallelFor(n, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				out[i] = op.holdsI64(s.ts[i], v.ts)
			}
		})
	case s.dtype == Bool:
		parallelFor(n, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				if op == cmpEq {
					out[i] = s.bs[i] == v.b
				} else {
					out[i] = s.bs[i] != v.b
				}
			}
		})
	}

	return NewSeriesBoolWithNulls(s.name, out, valid), nil
}

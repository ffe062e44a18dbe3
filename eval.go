package veloxx

// Evaluate computes an expression against a DataFrame, producing a
// Series of the frame's row count.
//
// Type inference: arithmetic yields F64 when either operand is F64 and
// I32 otherwise, except division, which always yields F64; comparisons
// and boolean operators yield Bool; a literal adopts its value's type.
// Nulls propagate through arithmetic and comparisons; booleans follow
// Kleene three-valued logic.
func Evaluate(expr Expr, df *DataFrame) (*Series, error) {
	switch e := expr.(type) {
	case *ColExpr:
		return df.requireColumn(e.Name)

	case *LitExpr:
		return literalSeries(e.Value, df.Height())

	case *BinaryOpExpr:
		return evaluateBinaryOp(e, df)

	case *NotExpr:
		in, err := Evaluate(e.Input, df)
		if err != nil {
			return nil, err
		}
		if in.DType() != Bool {
			return nil, newError(KindTypeMismatch, "not requires a bool operand, got %s", in.DType())
		}
		out := make([]bool, in.Len())
		for i, v := range in.bs {
			out[i] = !v
		}
		return NewSeriesBoolWithNulls(in.Name(), out, copyValidity(in.valid)), nil

	default:
		return nil, newError(KindTypeMismatch, "cannot evaluate expression type %T", expr)
	}
}

// literalSeries broadcasts a constant to length n.
func literalSeries(v Value, n int) (*Series, error) {
	switch v.Kind {
	case I32:
		data := make([]int32, n)
		for i := range data {
			data[i] = v.i32
		}
		return NewSeriesI32("literal", data), nil
	case F64:
		data := make([]float64, n)
		for i := range data {
			data[i] = v.f64
		}
		return NewSeriesF64("literal", data), nil
	case Bool:
		data := make([]bool, n)
		for i := range data {
			data[i] = v.b
		}
		return NewSeriesBool("literal", data), nil
	case String:
		data := make([]string, n)
		for i := range data {
			data[i] = v.str
		}
		return NewSeriesString("literal", data), nil
	case DateTime:
		data := make([]int64, n)
		for i := range data {
			data[i] = v.ts
		}
		return NewSeriesDateTime("literal", data), nil
	case Null:
		// An all-null column; F64 is the carrier so arithmetic over it
		// stays well typed.
		return NewSeriesF64WithNulls("literal", make([]float64, n), make([]bool, n)), nil
	default:
		return nil, newError(KindTypeMismatch, "unsupported literal kind %s", v.Kind)
	}
}

func evaluateBinaryOp(e *BinaryOpExpr, df *DataFrame) (*Series, error) {
	// Typed condition shortcut: column-op-literal comparisons run the
	// scalar kernel without materialising the literal.
	if e.Op.isCmp() {
		if col, lit, swapped, ok := condColumnLiteral(e); ok {
			series, err := df.requireColumn(col)
			if err != nil {
				return nil, err
			}
			op := e.Op.cmp()
			if swapped {
				op = swapCmp(op)
			}
			return series.CompareScalar(op, lit)
		}
	}

	left, err := Evaluate(e.Left, df)
	if err != nil {
		return nil, err
	}
	right, err := Evaluate(e.Right, df)
	if err != nil {
		return nil, err
	}

	switch {
	case e.Op.isArith():
		switch e.Op {
		case OpAdd:
			return left.Add(right)
		case OpSub:
			return left.Sub(right)
		case OpMul:
			return left.Mul(right)
		default:
			return left.Div(right)
		}
	case e.Op.isCmp():
		return left.Compare(e.Op.cmp(), right)
	default:
		return kleene(e.Op, left, right)
	}
}

// condColumnLiteral matches col-op-lit or lit-op-col, reporting whether
// the operands arrived swapped.
func condColumnLiteral(e *BinaryOpExpr) (string, Value, bool, bool) {
	if col, ok := e.Left.(*ColExpr); ok {
		if lit, ok := e.Right.(*LitExpr); ok {
			return col.Name, lit.Value, false, true
		}
	}
	if lit, ok := e.Left.(*LitExpr); ok {
		if col, ok := e.Right.(*ColExpr); ok {
			return col.Name, lit.Value, true, true
		}
	}
	return "", NullValue(), false, false
}

// swapCmp mirrors an operator across swapped operands: lit < col
// becomes col > lit.
func swapCmp(op cmpOp) cmpOp {
	switch op {
	case cmpLt:
		return cmpGt
	case cmpLe:
		return cmpGe
	case cmpGt:
		return cmpLt
	case cmpGe:
		return cmpLe
	default:
		return op
	}
}

// kleene applies three-valued AND/OR:
//
//	null AND false = false   null AND true = null   null AND null = null
//	null OR  true  = true    null OR false = null   null OR  null = null
func kleene(op BinaryOp, left, right *Series) (*Series, error) {
	if left.DType() != Bool {
		return nil, newError(KindTypeMismatch, "%s requires bool operands, got %s", op, left.DType())
	}
	if right.DType() != Bool {
		return nil, newError(KindTypeMismatch, "%s requires bool operands, got %s", op, right.DType())
	}
	if left.Len() != right.Len() {
		return nil, newError(KindLengthMismatch, "%s requires equal lengths, got %d and %d", op, left.Len(), right.Len())
	}

	n := left.Len()
	out := make([]bool, n)
	valid := make([]bool, n)
	for i := 0; i < n; i++ {
		lKnown := left.valid == nil || left.valid[i]
		rKnown := right.valid == nil || right.valid[i]
		lv := left.bs[i]
		rv := right.bs[i]
		if op == OpAnd {
			switch {
			case lKnown && rKnown:
				out[i] = lv && rv
				valid[i] = true
			case lKnown && !lv, rKnown && !rv:
				// A known false dominates an unknown.
				valid[i] = true
			}
		} else {
			switch {
			case lKnown && rKnown:
				out[i] = lv || rv
				valid[i] = true
			case lKnown && lv, rKnown && rv:
				out[i] = true
				valid[i] = true
			}
		}
	}
	return NewSeriesBoolWithNulls(left.Name(), out, valid), nil
}

// EvaluatePredicate evaluates a Bool-typed expression into a filter
// mask: true keeps the row, false and null discard it.
func EvaluatePredicate(expr Expr, df *DataFrame) ([]bool, error) {
	series, err := Evaluate(expr, df)
	if err != nil {
		return nil, err
	}
	if series.DType() != Bool {
		return nil, newError(KindTypeMismatch, "predicate must evaluate to bool, got %s", series.DType())
	}
	mask := make([]bool, series.Len())
	for i, v := range series.bs {
		mask[i] = v && (series.valid == nil || series.valid[i])
	}
	return mask, nil
}

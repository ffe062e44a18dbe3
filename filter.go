package veloxx

// Filter keeps the rows where the predicate is true; false and null
// rows are discarded. Row order is preserved.
//
// A conjunction of column-op-literal conditions takes a fused fast
// path: each condition runs its scalar comparison kernel and the masks
// intersect in place, so no intermediate Bool series survive. Filter is
// eager: a filter called before a join or group-by is fully evaluated
// before that operator runs, and no filter called later is moved ahead
// of one.
func (df *DataFrame) Filter(predicate Expr) (*DataFrame, error) {
	if conds, ok := typedConjunction(predicate); ok {
		mask, err := df.fusedConditionMask(conds)
		if err != nil {
			return nil, err
		}
		defer mask.Release()
		return df.FilterByMask(mask.Data)
	}

	mask, err := EvaluatePredicate(predicate, df)
	if err != nil {
		return nil, err
	}
	return df.FilterByMask(mask)
}

// typedCondition is one column-op-literal comparison.
type typedCondition struct {
	column string
	op     cmpOp
	lit    Value
}

// typedConjunction decomposes AND trees whose leaves are all
// column-op-literal comparisons. Anything else falls back to the
// general evaluator.
func typedConjunction(expr Expr) ([]typedCondition, bool) {
	e, ok := expr.(*BinaryOpExpr)
	if !ok {
		return nil, false
	}
	if e.Op == OpAnd {
		left, ok := typedConjunction(e.Left)
		if !ok {
			return nil, false
		}
		right, ok := typedConjunction(e.Right)
		if !ok {
			return nil, false
		}
		return append(left, right...), true
	}
	if !e.Op.isCmp() {
		return nil, false
	}
	col, lit, swapped, ok := condColumnLiteral(e)
	if !ok {
		return nil, false
	}
	op := e.Op.cmp()
	if swapped {
		op = swapCmp(op)
	}
	return []typedCondition{{column: col, op: op, lit: lit}}, true
}

// fusedConditionMask intersects the condition masks into one pooled
// mask; each condition's Bool series from CompareScalar is dropped once
// folded in. Null comparisons discard the row, matching the
// mask-to-filter rule.
func (df *DataFrame) fusedConditionMask(conds []typedCondition) (*BoolMask, error) {
	mask := getBoolMask(df.height)
	for i := range mask.Data {
		mask.Data[i] = true
	}
	for _, c := range conds {
		series, err := df.requireColumn(c.column)
		if err != nil {
			mask.Release()
			return nil, err
		}
		cmp, err := series.CompareScalar(c.op, c.lit)
		if err != nil {
			mask.Release()
			return nil, err
		}
		for i := range mask.Data {
			if !cmp.bs[i] || !cmp.IsValid(i) {
				mask.Data[i] = false
			}
		}
	}
	return mask, nil
}

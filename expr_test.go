package veloxx

import (
	"testing"
)

func TestEvaluateArithmeticTypeInference(t *testing.T) {
	df, _ := NewDataFrame(
		NewSeriesI32("i", []int32{1, 2, 3}),
		NewSeriesF64("f", []float64{0.5, 1.5, 2.5}),
	)

	// I32 + I32 stays I32.
	ii, err := Evaluate(Col("i").Add(Col("i")), df)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if ii.DType() != I32 || ii.Int32()[2] != 6 {
		t.Errorf("expected I32 [.. 6], got %s %v", ii.DType(), ii.Int32())
	}

	// Mixing F64 promotes.
	mixed, err := Evaluate(Col("i").Add(Col("f")), df)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if mixed.DType() != F64 || mixed.Float64()[0] != 1.5 {
		t.Errorf("expected F64 [1.5 ..], got %s %v", mixed.DType(), mixed.Float64())
	}

	// Division always yields F64.
	div, err := Evaluate(Col("i").Div(Col("i")), df)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if div.DType() != F64 {
		t.Errorf("expected F64 division, got %s", div.DType())
	}
}

func TestNullArithmetic(t *testing.T) {
	// a=[1,2,null,4], b=[10,null,30,0]; a/b = [0.1, null, null, null].
	df, _ := NewDataFrame(
		NewSeriesI32WithNulls("a", []int32{1, 2, 0, 4}, []bool{true, true, false, true}),
		NewSeriesI32WithNulls("b", []int32{10, 0, 30, 0}, []bool{true, false, true, true}),
	)

	out, err := Evaluate(Col("a").Div(Col("b")), df)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if out.DType() != F64 {
		t.Fatalf("expected F64, got %s", out.DType())
	}
	if !out.IsValid(0) || out.Float64()[0] != 0.1 {
		t.Errorf("expected 0.1 at index 0, got %v (valid=%v)", out.Float64()[0], out.IsValid(0))
	}
	for i := 1; i < 4; i++ {
		if out.IsValid(i) {
			t.Errorf("expected null at index %d", i)
		}
	}
}

func TestComparisonNullPropagation(t *testing.T) {
	df, _ := NewDataFrame(
		NewSeriesI32WithNulls("a", []int32{1, 0, 3}, []bool{true, false, true}),
	)

	out, err := Evaluate(Col("a").Gt(Lit(2)), df)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if out.DType() != Bool {
		t.Fatalf("expected Bool, got %s", out.DType())
	}
	if out.Bools()[0] != false || !out.IsValid(0) {
		t.Error("expected known false at index 0")
	}
	if out.IsValid(1) {
		t.Error("expected null comparison at index 1")
	}
	if out.Bools()[2] != true {
		t.Error("expected true at index 2")
	}
}

func TestKleeneTruthTables(t *testing.T) {
	// p = [true, false, null], repeated to cover all pairings.
	p := []bool{true, true, true, false, false, false, false, false, false}
	pv := []bool{true, true, true, true, true, true, false, false, false}
	q := []bool{true, false, false, true, false, false, true, false, false}
	qv := []bool{true, true, false, true, true, false, true, true, false}

	df, _ := NewDataFrame(
		NewSeriesBoolWithNulls("p", p, pv),
		NewSeriesBoolWithNulls("q", q, qv),
	)

	and, err := Evaluate(Col("p").And(Col("q")), df)
	if err != nil {
		t.Fatalf("and failed: %v", err)
	}
	// true&true, true&false, true&null, false&true, false&false,
	// false&null, null&true, null&false, null&null
	wantAnd := []struct {
		val   bool
		known bool
	}{
		{true, true}, {false, true}, {false, false},
		{false, true}, {false, true}, {false, true},
		{false, false}, {false, true}, {false, false},
	}
	for i, w := range wantAnd {
		if and.IsValid(i) != w.known {
			t.Errorf("and[%d]: known=%v, want %v", i, and.IsValid(i), w.known)
			continue
		}
		if w.known && and.Bools()[i] != w.val {
			t.Errorf("and[%d]: got %v, want %v", i, and.Bools()[i], w.val)
		}
	}

	or, err := Evaluate(Col("p").Or(Col("q")), df)
	if err != nil {
		t.Fatalf("or failed: %v", err)
	}
	wantOr := []struct {
		val   bool
		known bool
	}{
		{true, true}, {true, true}, {true, true},
		{true, true}, {false, true}, {false, false},
		{true, true}, {false, false}, {false, false},
	}
	for i, w := range wantOr {
		if or.IsValid(i) != w.known {
			t.Errorf("or[%d]: known=%v, want %v", i, or.IsValid(i), w.known)
			continue
		}
		if w.known && or.Bools()[i] != w.val {
			t.Errorf("or[%d]: got %v, want %v", i, or.Bools()[i], w.val)
		}
	}

	not, err := Evaluate(Not(Col("p")), df)
	if err != nil {
		t.Fatalf("not failed: %v", err)
	}
	if not.Bools()[0] != false || not.Bools()[3] != true {
		t.Error("unexpected negation values")
	}
	if not.IsValid(6) {
		t.Error("expected NOT null = null")
	}
}

func TestEvaluateTypeErrors(t *testing.T) {
	df, _ := NewDataFrame(
		NewSeriesI32("i", []int32{1}),
		NewSeriesString("s", []string{"x"}),
	)

	if _, err := Evaluate(Col("i").Add(Col("s")), df); !IsKind(err, KindTypeMismatch) {
		t.Errorf("expected TypeMismatch for arithmetic on string, got %v", err)
	}
	if _, err := Evaluate(Col("i").Eq(Col("s")), df); !IsKind(err, KindTypeMismatch) {
		t.Errorf("expected TypeMismatch comparing I32 with String, got %v", err)
	}
	if _, err := Evaluate(Col("i").And(Col("i")), df); !IsKind(err, KindTypeMismatch) {
		t.Errorf("expected TypeMismatch for AND on ints, got %v", err)
	}
	if _, err := Evaluate(Col("missing"), df); !IsKind(err, KindColumnNotFound) {
		t.Errorf("expected ColumnNotFound, got %v", err)
	}
}

func TestFilterScenario(t *testing.T) {
	df, _ := NewDataFrame(
		NewSeriesString("name", []string{"Alice", "Bob", "Charlie", "David"}),
		NewSeriesI32("age", []int32{25, 30, 22, 35}),
		NewSeriesString("city", []string{"NY", "LON", "NY", "PAR"}),
	)

	// age > 25 AND city == "NY" matches nothing.
	empty, err := df.Filter(Col("age").Gt(Lit(25)).And(Col("city").Eq(Lit("NY"))))
	if err != nil {
		t.Fatalf("filter failed: %v", err)
	}
	if empty.Height() != 0 {
		t.Errorf("expected empty result, got %d rows", empty.Height())
	}

	// age > 25 then sort by age ascending.
	older, err := df.Filter(Col("age").Gt(Lit(25)))
	if err != nil {
		t.Fatalf("filter failed: %v", err)
	}
	sorted, err := older.Sort([]string{"age"}, true)
	if err != nil {
		t.Fatalf("sort failed: %v", err)
	}
	if sorted.Height() != 2 {
		t.Fatalf("expected 2 rows, got %d", sorted.Height())
	}
	names := sorted.Column("name").Strings()
	ages := sorted.Column("age").Int32()
	cities := sorted.Column("city").Strings()
	if names[0] != "Bob" || ages[0] != 30 || cities[0] != "LON" {
		t.Errorf("unexpected first row: %s %d %s", names[0], ages[0], cities[0])
	}
	if names[1] != "David" || ages[1] != 35 || cities[1] != "PAR" {
		t.Errorf("unexpected second row: %s %d %s", names[1], ages[1], cities[1])
	}
}

func TestFilterNullDiscarded(t *testing.T) {
	df, _ := NewDataFrame(
		NewSeriesI32WithNulls("a", []int32{1, 0, 3}, []bool{true, false, true}),
	)
	// The null comparison row is discarded alongside false rows.
	out, err := df.Filter(Col("a").Gt(Lit(0)))
	if err != nil {
		t.Fatalf("filter failed: %v", err)
	}
	if out.Height() != 2 {
		t.Errorf("expected 2 rows, got %d", out.Height())
	}
}

func TestFilterMaskLaw(t *testing.T) {
	df := sampleFrame(t)
	mask := []bool{true, false, true, true}
	out, err := df.FilterByMask(mask)
	if err != nil {
		t.Fatalf("filter failed: %v", err)
	}
	if out.Height() != 3 {
		t.Errorf("expected 3 rows, got %d", out.Height())
	}
	names := out.Column("name").Strings()
	if names[0] != "Alice" || names[1] != "Charlie" || names[2] != "David" {
		t.Errorf("retained rows out of order: %v", names)
	}
}

func TestLiteralSwappedComparison(t *testing.T) {
	df, _ := NewDataFrame(NewSeriesI32("a", []int32{1, 5, 10}))

	// lit < col is rewritten to col > lit.
	out, err := Evaluate(&BinaryOpExpr{Left: Lit(4), Op: OpLt, Right: Col("a")}, df)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	want := []bool{false, true, true}
	for i, w := range want {
		if out.Bools()[i] != w {
			t.Errorf("index %d: got %v, want %v", i, out.Bools()[i], w)
		}
	}
}

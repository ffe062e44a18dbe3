package veloxx

import (
	"testing"
)

func TestGroupByAggScenario(t *testing.T) {
	df, _ := NewDataFrame(
		NewSeriesString("city", []string{"NY", "LON", "NY", "PAR"}),
		NewSeriesI32("age", []int32{25, 30, 22, 35}),
	)

	gb, err := df.GroupBy("city")
	if err != nil {
		t.Fatalf("group_by failed: %v", err)
	}
	out, err := gb.Agg(
		AggSpec{Column: "age", Func: AggMean},
		AggSpec{Column: "age", Func: AggCount},
	)
	if err != nil {
		t.Fatalf("agg failed: %v", err)
	}

	names := out.Names()
	want := []string{"city", "age_mean", "age_count"}
	for i, w := range want {
		if names[i] != w {
			t.Fatalf("unexpected schema: %v", names)
		}
	}

	// First-occurrence order: NY, LON, PAR.
	cities := out.Column("city").Strings()
	means := out.Column("age_mean").Float64()
	counts := out.Column("age_count").Int32()
	wantRows := []struct {
		city  string
		mean  float64
		count int32
	}{
		{"NY", 23.5, 2},
		{"LON", 30.0, 1},
		{"PAR", 35.0, 1},
	}
	for i, w := range wantRows {
		if cities[i] != w.city || means[i] != w.mean || counts[i] != w.count {
			t.Errorf("row %d: got (%s,%v,%d), want (%s,%v,%d)", i, cities[i], means[i], counts[i], w.city, w.mean, w.count)
		}
	}
}

func TestGroupByNullKeysGroupTogether(t *testing.T) {
	df, _ := NewDataFrame(
		NewSeriesStringWithNulls("k", []string{"a", "", "a", ""}, []bool{true, false, true, false}),
		NewSeriesI32("v", []int32{1, 2, 3, 4}),
	)

	gb, _ := df.GroupBy("k")
	out, err := gb.Agg(AggSpec{Column: "v", Func: AggSum})
	if err != nil {
		t.Fatalf("agg failed: %v", err)
	}
	// null equals null for grouping: two groups.
	if out.Height() != 2 {
		t.Fatalf("expected 2 groups, got %d", out.Height())
	}
	sums := out.Column("v_sum").Int32()
	if sums[0] != 4 || sums[1] != 6 {
		t.Errorf("unexpected sums: %v", sums)
	}
	if out.Column("k").IsValid(1) {
		t.Error("expected null key preserved in output")
	}
}

func TestGroupByCountVariants(t *testing.T) {
	df, _ := NewDataFrame(
		NewSeriesString("k", []string{"a", "a", "b"}),
		NewSeriesI32WithNulls("v", []int32{1, 0, 3}, []bool{true, false, true}),
	)

	gb, _ := df.GroupBy("k")
	out, err := gb.Agg(
		AggSpec{Column: "v", Func: AggCount},
		AggSpec{Column: "v", Func: AggCountNonNull},
	)
	if err != nil {
		t.Fatalf("agg failed: %v", err)
	}
	counts := out.Column("v_count").Int32()
	nonNull := out.Column("v_count_non_null").Int32()
	if counts[0] != 2 || nonNull[0] != 1 {
		t.Errorf("group a: count=%d non_null=%d", counts[0], nonNull[0])
	}
	if counts[1] != 1 || nonNull[1] != 1 {
		t.Errorf("group b: count=%d non_null=%d", counts[1], nonNull[1])
	}
}

func TestGroupByAllNullGroup(t *testing.T) {
	df, _ := NewDataFrame(
		NewSeriesString("k", []string{"a", "b"}),
		NewSeriesI32WithNulls("v", []int32{0, 5}, []bool{false, true}),
	)
	gb, _ := df.GroupBy("k")
	out, _ := gb.Agg(
		AggSpec{Column: "v", Func: AggSum},
		AggSpec{Column: "v", Func: AggMean},
		AggSpec{Column: "v", Func: AggMin},
	)
	// Statistical aggregates over an all-null group are null.
	if out.Column("v_sum").IsValid(0) || out.Column("v_mean").IsValid(0) || out.Column("v_min").IsValid(0) {
		t.Error("expected null aggregates for the all-null group")
	}
	if !out.Column("v_sum").IsValid(1) || out.Column("v_sum").Int32()[1] != 5 {
		t.Error("expected group b sum 5")
	}
}

func TestGroupByNameCollisions(t *testing.T) {
	df, _ := NewDataFrame(
		NewSeriesString("k", []string{"a"}),
		NewSeriesI32("v", []int32{1}),
	)
	gb, _ := df.GroupBy("k")
	out, err := gb.Agg(
		AggSpec{Column: "v", Func: AggSum},
		AggSpec{Column: "v", Func: AggSum},
		AggSpec{Column: "v", Func: AggSum},
	)
	if err != nil {
		t.Fatalf("agg failed: %v", err)
	}
	names := out.Names()
	want := []string{"k", "v_sum", "v_sum_1", "v_sum_2"}
	for i, w := range want {
		if names[i] != w {
			t.Fatalf("unexpected schema: %v", names)
		}
	}
}

func TestGroupByErrors(t *testing.T) {
	df, _ := NewDataFrame(
		NewSeriesString("k", []string{"a"}),
		NewSeriesString("s", []string{"x"}),
	)

	if _, err := df.GroupBy(); !IsKind(err, KindEmptyArgument) {
		t.Errorf("expected EmptyArgument, got %v", err)
	}
	if _, err := df.GroupBy("missing"); !IsKind(err, KindColumnNotFound) {
		t.Errorf("expected ColumnNotFound, got %v", err)
	}

	gb, _ := df.GroupBy("k")
	if _, err := gb.Agg(); !IsKind(err, KindEmptyArgument) {
		t.Errorf("expected EmptyArgument, got %v", err)
	}
	if _, err := gb.Agg(AggSpec{Column: "s", Func: AggSum}); !IsKind(err, KindTypeMismatch) {
		t.Errorf("expected TypeMismatch, got %v", err)
	}
	if _, err := gb.Agg(AggSpec{Column: "s", Func: AggCount}); err != nil {
		t.Errorf("count over strings should work, got %v", err)
	}
}

func TestGroupByCompleteness(t *testing.T) {
	df, _ := NewDataFrame(
		NewSeriesI32("k", []int32{3, 1, 2, 1, 3, 3}),
		NewSeriesI32("v", []int32{1, 1, 1, 1, 1, 1}),
	)
	gb, _ := df.GroupBy("k")
	out, _ := gb.Agg(AggSpec{Column: "v", Func: AggCount})

	if out.Height() != 3 {
		t.Fatalf("expected 3 groups, got %d", out.Height())
	}
	// The group counts must sum back to the input row count.
	total := int32(0)
	for _, c := range out.Column("v_count").Int32() {
		total += c
	}
	if total != 6 {
		t.Errorf("expected counts to total 6, got %d", total)
	}
	// First-occurrence order of keys: 3, 1, 2.
	keys := out.Column("k").Int32()
	if keys[0] != 3 || keys[1] != 1 || keys[2] != 2 {
		t.Errorf("unexpected key order: %v", keys)
	}
}

func TestGroupByMultiKey(t *testing.T) {
	df, _ := NewDataFrame(
		NewSeriesString("a", []string{"x", "x", "y"}),
		NewSeriesI32("b", []int32{1, 1, 1}),
		NewSeriesF64("v", []float64{1, 2, 4}),
	)
	gb, _ := df.GroupBy("a", "b")
	out, _ := gb.Agg(AggSpec{Column: "v", Func: AggSum})
	if out.Height() != 2 {
		t.Fatalf("expected 2 groups, got %d", out.Height())
	}
	sums := out.Column("v_sum").Float64()
	if sums[0] != 3 || sums[1] != 4 {
		t.Errorf("unexpected sums: %v", sums)
	}
}

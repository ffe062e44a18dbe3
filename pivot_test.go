package veloxx

import (
	"testing"
)

func TestPivotScenario(t *testing.T) {
	df, _ := NewDataFrame(
		NewSeriesString("region", []string{"N", "N", "S", "S"}),
		NewSeriesString("q", []string{"Q1", "Q2", "Q1", "Q2"}),
		NewSeriesI32("sales", []int32{10, 20, 30, 40}),
	)

	out, err := df.Pivot("sales", []string{"region"}, "q", AggSum)
	if err != nil {
		t.Fatalf("pivot failed: %v", err)
	}

	names := out.Names()
	want := []string{"region", "Q1", "Q2"}
	for i, w := range want {
		if names[i] != w {
			t.Fatalf("unexpected schema: %v", names)
		}
	}

	regions := out.Column("region").Strings()
	q1 := out.Column("Q1").Int32()
	q2 := out.Column("Q2").Int32()
	if regions[0] != "N" || q1[0] != 10 || q2[0] != 20 {
		t.Errorf("unexpected first row: %s %d %d", regions[0], q1[0], q2[0])
	}
	if regions[1] != "S" || q1[1] != 30 || q2[1] != 40 {
		t.Errorf("unexpected second row: %s %d %d", regions[1], q1[1], q2[1])
	}
}

func TestPivotMissingCellsAreNull(t *testing.T) {
	df, _ := NewDataFrame(
		NewSeriesString("region", []string{"N", "S"}),
		NewSeriesString("q", []string{"Q1", "Q2"}),
		NewSeriesI32("sales", []int32{10, 40}),
	)

	out, err := df.Pivot("sales", []string{"region"}, "q", AggSum)
	if err != nil {
		t.Fatalf("pivot failed: %v", err)
	}
	if out.Column("Q2").IsValid(0) {
		t.Error("expected null for missing (N, Q2) cell")
	}
	if out.Column("Q1").IsValid(1) {
		t.Error("expected null for missing (S, Q1) cell")
	}
	if out.Column("Q1").Int32()[0] != 10 || out.Column("Q2").Int32()[1] != 40 {
		t.Error("present cells lost their values")
	}
}

func TestPivotColumnOrderSorted(t *testing.T) {
	// Distinct column values become headers in ascending natural order
	// regardless of appearance order.
	df, _ := NewDataFrame(
		NewSeriesString("k", []string{"a", "a", "a"}),
		NewSeriesString("c", []string{"z", "m", "b"}),
		NewSeriesI32("v", []int32{1, 2, 3}),
	)
	out, err := df.Pivot("v", []string{"k"}, "c", AggSum)
	if err != nil {
		t.Fatalf("pivot failed: %v", err)
	}
	names := out.Names()
	want := []string{"k", "b", "m", "z"}
	for i, w := range want {
		if names[i] != w {
			t.Fatalf("unexpected header order: %v", names)
		}
	}
}

func TestPivotErrors(t *testing.T) {
	df, _ := NewDataFrame(
		NewSeriesString("k", []string{"a"}),
		NewSeriesString("c", []string{"x"}),
		NewSeriesString("s", []string{"text"}),
	)

	if _, err := df.Pivot("missing", []string{"k"}, "c", AggSum); !IsKind(err, KindColumnNotFound) {
		t.Errorf("expected ColumnNotFound, got %v", err)
	}
	if _, err := df.Pivot("s", []string{"k"}, "missing", AggSum); !IsKind(err, KindColumnNotFound) {
		t.Errorf("expected ColumnNotFound, got %v", err)
	}
	if _, err := df.Pivot("s", []string{"k"}, "c", AggSum); !IsKind(err, KindTypeMismatch) {
		t.Errorf("expected TypeMismatch, got %v", err)
	}
	if _, err := df.Pivot("s", nil, "c", AggCount); !IsKind(err, KindEmptyArgument) {
		t.Errorf("expected EmptyArgument, got %v", err)
	}
}

func TestPivotUnpivotRoundTrip(t *testing.T) {
	df, _ := NewDataFrame(
		NewSeriesString("region", []string{"N", "N", "S", "S"}),
		NewSeriesString("q", []string{"Q1", "Q2", "Q1", "Q2"}),
		NewSeriesI32("sales", []int32{10, 20, 30, 40}),
	)

	wide, err := df.Pivot("sales", []string{"region"}, "q", AggSum)
	if err != nil {
		t.Fatalf("pivot failed: %v", err)
	}
	long, err := wide.Unpivot([]string{"region"}, "q", "sales")
	if err != nil {
		t.Fatalf("unpivot failed: %v", err)
	}
	if long.Height() != 4 {
		t.Fatalf("expected 4 rows, got %d", long.Height())
	}

	// Every original (region, q, sales) triple must reappear.
	found := make(map[[2]string]int32)
	for i := 0; i < long.Height(); i++ {
		r := long.Column("region").Strings()[i]
		q := long.Column("q").Strings()[i]
		found[[2]string{r, q}] = long.Column("sales").Int32()[i]
	}
	orig := map[[2]string]int32{
		{"N", "Q1"}: 10, {"N", "Q2"}: 20,
		{"S", "Q1"}: 30, {"S", "Q2"}: 40,
	}
	for k, v := range orig {
		if found[k] != v {
			t.Errorf("cell %v: got %d, want %d", k, found[k], v)
		}
	}
}

func TestUnpivotMixedNumericPromotes(t *testing.T) {
	df, _ := NewDataFrame(
		NewSeriesString("id", []string{"r"}),
		NewSeriesI32("a", []int32{1}),
		NewSeriesF64("b", []float64{2.5}),
	)
	long, err := df.Unpivot([]string{"id"}, "var", "val")
	if err != nil {
		t.Fatalf("unpivot failed: %v", err)
	}
	if long.Column("val").DType() != F64 {
		t.Errorf("expected F64 value column, got %s", long.Column("val").DType())
	}
	if long.Height() != 2 {
		t.Errorf("expected 2 rows, got %d", long.Height())
	}
}

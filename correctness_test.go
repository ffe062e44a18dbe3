package veloxx

import (
	"testing"
	"time"
)

// Schema preservation: every operator output has equal-length columns
// matching its row count, and Names() enumerates the columns exactly.
func TestSchemaPreservation(t *testing.T) {
	df := sampleFrame(t)

	outputs := []*DataFrame{}

	filtered, _ := df.Filter(Col("age").Gt(Lit(23)))
	outputs = append(outputs, filtered)

	sorted, _ := df.Sort([]string{"city", "age"}, true)
	outputs = append(outputs, sorted)

	withCol, _ := df.WithColumn("older", Col("age").Add(Lit(10)))
	outputs = append(outputs, withCol)

	gb, _ := df.GroupBy("city")
	agged, _ := gb.Agg(AggSpec{Column: "age", Func: AggMean})
	outputs = append(outputs, agged)

	for oi, out := range outputs {
		names := out.Names()
		if len(names) != out.Width() {
			t.Errorf("output %d: %d names for %d columns", oi, len(names), out.Width())
		}
		seen := make(map[string]bool)
		for _, name := range names {
			if seen[name] {
				t.Errorf("output %d: duplicate name %q", oi, name)
			}
			seen[name] = true
			col := out.Column(name)
			if col == nil {
				t.Errorf("output %d: name %q has no column", oi, name)
				continue
			}
			if col.Len() != out.Height() {
				t.Errorf("output %d: column %q length %d != height %d", oi, name, col.Len(), out.Height())
			}
		}
	}
}

// Column order is a pure function of inputs and arguments.
func TestColumnOrderDeterminism(t *testing.T) {
	for trial := 0; trial < 20; trial++ {
		df := sampleFrame(t)
		out, err := df.WithColumn("x", Col("age").Mul(Lit(2)))
		if err != nil {
			t.Fatalf("with_column failed: %v", err)
		}
		names := out.Names()
		want := []string{"name", "age", "city", "x"}
		for i, w := range want {
			if names[i] != w {
				t.Fatalf("trial %d: unexpected order %v", trial, names)
			}
		}
	}
}

// Append round-trip: row counts add and every column concatenates.
func TestAppendRoundTrip(t *testing.T) {
	a, _ := NewDataFrame(
		NewSeriesI32("n", []int32{1, 2}),
		NewSeriesString("s", []string{"x", "y"}),
	)
	b, _ := NewDataFrame(
		NewSeriesI32("n", []int32{3}),
		NewSeriesString("s", []string{"z"}),
	)

	out, err := a.Append(b)
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if out.Height() != a.Height()+b.Height() {
		t.Errorf("expected %d rows, got %d", a.Height()+b.Height(), out.Height())
	}
	n := out.Column("n").Int32()
	want := []int32{1, 2, 3}
	for i, w := range want {
		if n[i] != w {
			t.Errorf("n[%d]: got %d, want %d", i, n[i], w)
		}
	}
}

func TestValueSemantics(t *testing.T) {
	if !NullValue().Equal(NullValue()) {
		t.Error("null must equal null for grouping")
	}
	if !I32Value(3).Equal(F64Value(3)) {
		t.Error("numeric equality crosses the promotion boundary")
	}
	if !I32Value(2).Less(F64Value(2.5)) {
		t.Error("numeric ordering crosses the promotion boundary")
	}
	if StringValue("b").Less(StringValue("a")) {
		t.Error("strings order byte-lexicographically")
	}

	// Canonical rendering.
	if I32Value(-7).String() != "-7" {
		t.Errorf("unexpected int rendering: %s", I32Value(-7).String())
	}
	if F64Value(0.1).String() != "0.1" {
		t.Errorf("expected shortest round-trip float, got %s", F64Value(0.1).String())
	}
	if BoolValue(true).String() != "true" {
		t.Errorf("unexpected bool rendering")
	}
	if NullValue().String() != "null" {
		t.Errorf("unexpected null rendering")
	}
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if DateTimeValue(ts.Unix()).String() != "2024-01-02T03:04:05Z" {
		t.Errorf("unexpected datetime rendering: %s", DateTimeValue(ts.Unix()).String())
	}
}

func TestErrorKinds(t *testing.T) {
	err := newColumnError(KindColumnNotFound, "x", "column %q not found", "x")
	if !IsKind(err, KindColumnNotFound) {
		t.Error("IsKind failed on direct error")
	}
	if IsKind(err, KindTypeMismatch) {
		t.Error("IsKind matched the wrong kind")
	}
	k, ok := KindOf(err)
	if !ok || k != KindColumnNotFound {
		t.Error("KindOf failed")
	}
	if err.Column != "x" {
		t.Errorf("expected offending column recorded, got %q", err.Column)
	}
}

func TestNullPropagationProperty(t *testing.T) {
	n := 64
	av := make([]bool, n)
	bv := make([]bool, n)
	a := make([]float64, n)
	b := make([]float64, n)
	for i := 0; i < n; i++ {
		a[i] = float64(i)
		b[i] = float64(n - i)
		av[i] = i%3 != 0
		bv[i] = i%5 != 0
	}
	sa := NewSeriesF64WithNulls("a", a, av)
	sb := NewSeriesF64WithNulls("b", b, bv)

	for name, fn := range map[string]func(*Series) (*Series, error){
		"add": sa.Add, "sub": sa.Sub, "mul": sa.Mul, "div": sa.Div,
	} {
		out, err := fn(sb)
		if err != nil {
			t.Fatalf("%s failed: %v", name, err)
		}
		for i := 0; i < n; i++ {
			wantNull := !av[i] || !bv[i]
			if out.IsValid(i) == wantNull {
				t.Errorf("%s[%d]: null propagation violated", name, i)
			}
		}
	}
}

func TestDateTimeSeries(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).Unix()
	s := NewSeriesDateTime("t", []int64{base, base + 3600, base + 7200})

	df, _ := NewDataFrame(s)
	out, err := df.Filter(Col("t").Ge(Lit(time.Unix(base+3600, 0).UTC())))
	if err != nil {
		t.Fatalf("filter failed: %v", err)
	}
	if out.Height() != 2 {
		t.Errorf("expected 2 rows, got %d", out.Height())
	}

	// DateTime interpolation fills interior gaps.
	gap := NewSeriesDateTimeWithNulls("g", []int64{base, 0, base + 200}, []bool{true, false, true})
	filled, err := gap.InterpolateNulls()
	if err != nil {
		t.Fatalf("interpolate failed: %v", err)
	}
	if filled.Timestamps()[1] != base+100 {
		t.Errorf("expected midpoint %d, got %d", base+100, filled.Timestamps()[1])
	}
}

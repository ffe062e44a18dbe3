package veloxx

import (
	"math"
	"testing"
)

func TestSumMeanMinMax(t *testing.T) {
	s := NewSeriesI32WithNulls("n", []int32{1, 2, 0, 4}, []bool{true, true, false, true})

	sum, err := s.Sum()
	if err != nil {
		t.Fatalf("sum failed: %v", err)
	}
	if sum.I32() != 7 {
		t.Errorf("expected sum 7, got %d", sum.I32())
	}

	mean, _ := s.Mean()
	if mean.F64() != 7.0/3.0 {
		t.Errorf("expected mean %v, got %v", 7.0/3.0, mean.F64())
	}

	min, _ := s.Min()
	max, _ := s.Max()
	if min.I32() != 1 || max.I32() != 4 {
		t.Errorf("expected min 1 max 4, got %d %d", min.I32(), max.I32())
	}

	f := NewSeriesF64("f", []float64{1.5, 2.5})
	fsum, _ := f.Sum()
	if fsum.F64() != 4.0 {
		t.Errorf("expected 4.0, got %v", fsum.F64())
	}
}

func TestReductionsAllNull(t *testing.T) {
	s := NewSeriesF64WithNulls("x", []float64{0, 0}, []bool{false, false})

	for name, fn := range map[string]func() (Value, error){
		"sum":    s.Sum,
		"mean":   s.Mean,
		"min":    s.Min,
		"max":    s.Max,
		"std":    s.StdDev,
		"median": s.Median,
	} {
		v, err := fn()
		if err != nil {
			t.Errorf("%s: unexpected error %v", name, err)
			continue
		}
		if !v.IsNull() {
			t.Errorf("%s: expected null for all-null input, got %v", name, v)
		}
	}
}

func TestReductionsTypeMismatch(t *testing.T) {
	s := NewSeriesString("s", []string{"a", "b"})

	if _, err := s.Sum(); !IsKind(err, KindTypeMismatch) {
		t.Errorf("expected TypeMismatch, got %v", err)
	}
	if _, err := s.Mean(); !IsKind(err, KindTypeMismatch) {
		t.Errorf("expected TypeMismatch, got %v", err)
	}
	if _, err := s.Median(); !IsKind(err, KindTypeMismatch) {
		t.Errorf("expected TypeMismatch, got %v", err)
	}
}

func TestStdDev(t *testing.T) {
	s := NewSeriesF64("x", []float64{2, 4, 4, 4, 5, 5, 7, 9})
	sd, err := s.StdDev()
	if err != nil {
		t.Fatalf("std failed: %v", err)
	}
	// Sample standard deviation of the classic example.
	want := math.Sqrt(32.0 / 7.0)
	if math.Abs(sd.F64()-want) > 1e-12 {
		t.Errorf("expected %v, got %v", want, sd.F64())
	}

	one := NewSeriesF64("x", []float64{1})
	v, _ := one.StdDev()
	if !v.IsNull() {
		t.Error("expected null std for a single value")
	}
}

func TestMedianLower(t *testing.T) {
	even := NewSeriesI32("n", []int32{4, 1, 3, 2})
	m, err := even.Median()
	if err != nil {
		t.Fatalf("median failed: %v", err)
	}
	// Lower median of {1,2,3,4} is 2.
	if m.I32() != 2 {
		t.Errorf("expected lower median 2, got %d", m.I32())
	}

	odd := NewSeriesF64("f", []float64{5, 1, 3})
	mo, _ := odd.Median()
	if mo.F64() != 3 {
		t.Errorf("expected median 3, got %v", mo.F64())
	}
}

func TestParallelEqualsSerialReductions(t *testing.T) {
	defer SetConfig(DefaultConfig())

	n := 10000
	ints := make([]int32, n)
	floats := make([]float64, n)
	for i := range ints {
		ints[i] = int32(i%97 - 48)
		floats[i] = float64(i%89)*0.25 - 11
	}
	si := NewSeriesI32("i", ints)
	sf := NewSeriesF64("f", floats)

	SetConfig(Config{SIMDThreshold: 16, ParThreshold: n * 2, MaxWorkers: 1, StableFloatSum: true, MorselSize: 256})
	serialInt, _ := si.Sum()
	serialFloat, _ := sf.Sum()
	serialMin, _ := sf.Min()
	serialMax, _ := sf.Max()

	for _, workers := range []int{2, 4, 8} {
		SetConfig(Config{SIMDThreshold: 16, ParThreshold: 64, MaxWorkers: workers, StableFloatSum: true, MorselSize: 256})
		parInt, _ := si.Sum()
		parFloat, _ := sf.Sum()
		parMin, _ := sf.Min()
		parMax, _ := sf.Max()

		if parInt.I32() != serialInt.I32() {
			t.Errorf("workers=%d: int sum %d != serial %d", workers, parInt.I32(), serialInt.I32())
		}
		if parFloat.F64() != serialFloat.F64() {
			t.Errorf("workers=%d: float sum %v != serial %v", workers, parFloat.F64(), serialFloat.F64())
		}
		if parMin.F64() != serialMin.F64() || parMax.F64() != serialMax.F64() {
			t.Errorf("workers=%d: min/max diverged from serial", workers)
		}
	}
}

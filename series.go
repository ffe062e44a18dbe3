package veloxx

import "math"

// Series is a named, single-typed, ordered column with per-element
// nullability. Exactly one of the typed buffers is populated, matching
// dtype. A nil validity slice means every element is present; otherwise
// valid[i] == false marks element i as null and the data under it is
// undefined.
//
// A Series is immutable after construction: every operation returns a
// fresh Series. Rename shares the receiver's buffers; every other
// operation writes its result into new buffers.
type Series struct {
	name  string
	dtype DType

	i32  []int32
	f64  []float64
	bs   []bool
	strs []string
	ts   []int64

	valid  []bool
	length int
}

// NewSeriesI32 creates an I32 Series with no nulls.
func NewSeriesI32(name string, data []int32) *Series {
	return &Series{name: name, dtype: I32, i32: data, length: len(data)}
}

// NewSeriesF64 creates an F64 Series with no nulls.
func NewSeriesF64(name string, data []float64) *Series {
	return &Series{name: name, dtype: F64, f64: data, length: len(data)}
}

// NewSeriesBool creates a Bool Series with no nulls.
func NewSeriesBool(name string, data []bool) *Series {
	return &Series{name: name, dtype: Bool, bs: data, length: len(data)}
}

// NewSeriesString creates a String Series with no nulls.
func NewSeriesString(name string, data []string) *Series {
	return &Series{name: name, dtype: String, strs: data, length: len(data)}
}

// NewSeriesDateTime creates a DateTime Series (epoch seconds, UTC) with
// no nulls.
func NewSeriesDateTime(name string, data []int64) *Series {
	return &Series{name: name, dtype: DateTime, ts: data, length: len(data)}
}

// NewSeriesI32WithNulls creates an I32 Series; valid[i] == false marks
// element i as null. A nil valid means no nulls.
func NewSeriesI32WithNulls(name string, data []int32, valid []bool) *Series {
	return &Series{name: name, dtype: I32, i32: data, valid: normalizeValidity(valid), length: len(data)}
}

// NewSeriesF64WithNulls creates an F64 Series with a validity mask.
func NewSeriesF64WithNulls(name string, data []float64, valid []bool) *Series {
	return &Series{name: name, dtype: F64, f64: data, valid: normalizeValidity(valid), length: len(data)}
}

// NewSeriesBoolWithNulls creates a Bool Series with a validity mask.
func NewSeriesBoolWithNulls(name string, data []bool, valid []bool) *Series {
	return &Series{name: name, dtype: Bool, bs: data, valid: normalizeValidity(valid), length: len(data)}
}

// NewSeriesStringWithNulls creates a String Series with a validity mask.
func NewSeriesStringWithNulls(name string, data []string, valid []bool) *Series {
	return &Series{name: name, dtype: String, strs: data, valid: normalizeValidity(valid), length: len(data)}
}

// NewSeriesDateTimeWithNulls creates a DateTime Series with a validity mask.
func NewSeriesDateTimeWithNulls(name string, data []int64, valid []bool) *Series {
	return &Series{name: name, dtype: DateTime, ts: data, valid: normalizeValidity(valid), length: len(data)}
}

// normalizeValidity drops an all-true mask so the no-null fast paths fire.
func normalizeValidity(valid []bool) []bool {
	if valid == nil {
		return nil
	}
	for _, v := range valid {
		if !v {
			return valid
		}
	}
	return nil
}

// newTypedSeries allocates an empty Series of length n for the dtype.
func newTypedSeries(name string, dtype DType, n int) *Series {
	s := &Series{name: name, dtype: dtype, length: n}
	switch dtype {
	case I32:
		s.i32 = make([]int32, n)
	case F64:
		s.f64 = make([]float64, n)
	case Bool:
		s.bs = make([]bool, n)
	case String:
		s.strs = make([]string, n)
	case DateTime:
		s.ts = make([]int64, n)
	}
	return s
}

// Name returns the series name.
func (s *Series) Name() string { return s.name }

// DType returns the data type.
func (s *Series) DType() DType { return s.dtype }

// Len returns the number of elements.
func (s *Series) Len() int { return s.length }

// Rename returns a Series sharing this one's buffers under a new name.
func (s *Series) Rename(name string) *Series {
	out := *s
	out.name = name
	return &out
}

// Int32 returns the raw I32 buffer. Only meaningful when dtype is I32.
func (s *Series) Int32() []int32 { return s.i32 }

// Float64 returns the raw F64 buffer. Only meaningful when dtype is F64.
func (s *Series) Float64() []float64 { return s.f64 }

// Bools returns the raw Bool buffer. Only meaningful when dtype is Bool.
func (s *Series) Bools() []bool { return s.bs }

// Strings returns the raw String buffer. Only meaningful when dtype is String.
func (s *Series) Strings() []string { return s.strs }

// Timestamps returns the raw DateTime buffer (epoch seconds).
func (s *Series) Timestamps() []int64 { return s.ts }

// Validity returns the validity mask; nil means no nulls.
func (s *Series) Validity() []bool { return s.valid }

// IsValid reports whether element i is present. Out-of-range indices
// report false.
func (s *Series) IsValid(i int) bool {
	if i < 0 || i >= s.length {
		return false
	}
	return s.valid == nil || s.valid[i]
}

// HasNulls reports whether the series has any null values.
func (s *Series) HasNulls() bool {
	return s.valid != nil
}

// NullCount returns the number of null values.
func (s *Series) NullCount() int {
	if s.valid == nil {
		return 0
	}
	n := 0
	for _, v := range s.valid {
		if !v {
			n++
		}
	}
	return n
}

// CountNonNull returns the number of non-null values.
func (s *Series) CountNonNull() int {
	return s.length - s.NullCount()
}

// Get returns the value at index i, or the null marker for a null slot.
func (s *Series) Get(i int) (Value, error) {
	if i < 0 || i >= s.length {
		return NullValue(), newIndexError(KindOutOfBounds, i, "index %d out of bounds for series %q of length %d", i, s.name, s.length)
	}
	return s.valueAt(i), nil
}

// valueAt reads element i without bounds checking.
func (s *Series) valueAt(i int) Value {
	if s.valid != nil && !s.valid[i] {
		return NullValue()
	}
	switch s.dtype {
	case I32:
		return I32Value(s.i32[i])
	case F64:
		return F64Value(s.f64[i])
	case Bool:
		return BoolValue(s.bs[i])
	case String:
		return StringValue(s.strs[i])
	case DateTime:
		return DateTimeValue(s.ts[i])
	}
	return NullValue()
}

// setValue writes v into slot i of a series allocated by newTypedSeries.
// v must be null or match the dtype.
func (s *Series) setValue(i int, v Value) {
	if v.IsNull() {
		if s.valid == nil {
			s.valid = make([]bool, s.length)
			for j := range s.valid {
				s.valid[j] = true
			}
		}
		s.valid[i] = false
		return
	}
	if s.valid != nil {
		s.valid[i] = true
	}
	switch s.dtype {
	case I32:
		s.i32[i] = v.i32
	case F64:
		s.f64[i] = v.f64
	case Bool:
		s.bs[i] = v.b
	case String:
		s.strs[i] = v.str
	case DateTime:
		s.ts[i] = v.ts
	}
}

// IsNull returns a Bool Series that is true where this series is null.
func (s *Series) IsNull() *Series {
	out := make([]bool, s.length)
	if s.valid != nil {
		for i, v := range s.valid {
			out[i] = !v
		}
	}
	return NewSeriesBool(s.name, out)
}

// IsNotNull returns a Bool Series that is true where this series is
// present.
func (s *Series) IsNotNull() *Series {
	out := make([]bool, s.length)
	for i := range out {
		out[i] = s.valid == nil || s.valid[i]
	}
	return NewSeriesBool(s.name, out)
}

// ============================================================================
// Row selection
// ============================================================================

// Filter returns the elements where mask is true, in input order.
func (s *Series) Filter(mask []bool) (*Series, error) {
	if len(mask) != s.length {
		return nil, newError(KindLengthMismatch, "mask length %d does not match series %q length %d", len(mask), s.name, s.length)
	}
	idx := getIndexSlice(s.length)
	defer idx.Release()
	n := 0
	for i, keep := range mask {
		if keep {
			idx.Data[n] = i
			n++
		}
	}
	return s.gather(idx.Data[:n]), nil
}

// Take returns the elements at the given indices, in argument order.
func (s *Series) Take(indices []int) (*Series, error) {
	for _, i := range indices {
		if i < 0 || i >= s.length {
			return nil, newIndexError(KindOutOfBounds, i, "take index %d out of bounds for series %q of length %d", i, s.name, s.length)
		}
	}
	return s.gather(indices), nil
}

// gather copies the elements at indices. Index -1 produces a null; all
// other indices must be in range.
func (s *Series) gather(indices []int) *Series {
	n := len(indices)
	out := newTypedSeries(s.name, s.dtype, n)

	needValid := s.valid != nil
	if !needValid {
		for _, idx := range indices {
			if idx < 0 {
				needValid = true
				break
			}
		}
	}
	if needValid {
		out.valid = make([]bool, n)
	}

	for i, idx := range indices {
		if idx < 0 || (s.valid != nil && !s.valid[idx]) {
			continue // leave slot zeroed and invalid
		}
		if out.valid != nil {
			out.valid[i] = true
		}
		switch s.dtype {
		case I32:
			out.i32[i] = s.i32[idx]
		case F64:
			out.f64[i] = s.f64[idx]
		case Bool:
			out.bs[i] = s.bs[idx]
		case String:
			out.strs[i] = s.strs[idx]
		case DateTime:
			out.ts[i] = s.ts[idx]
		}
	}
	out.valid = normalizeValidity(out.valid)
	return out
}

// Slice returns a copy of elements [start, end), clamped to bounds.
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > s.length {
		end = s.length
	}
	if start >= end {
		return newTypedSeries(s.name, s.dtype, 0)
	}
	idx := make([]int, end-start)
	for i := range idx {
		idx[i] = start + i
	}
	return s.gather(idx)
}

// Head returns the first min(n, len) elements.
func (s *Series) Head(n int) *Series {
	if n < 0 {
		n = 0
	}
	if n > s.length {
		n = s.length
	}
	return s.Slice(0, n)
}

// Tail returns the last min(n, len) elements.
func (s *Series) Tail(n int) *Series {
	if n < 0 {
		n = 0
	}
	if n > s.length {
		n = s.length
	}
	return s.Slice(s.length-n, s.length)
}

// Append concatenates other onto this series. Dtypes must match.
func (s *Series) Append(other *Series) (*Series, error) {
	if s.dtype != other.dtype {
		return nil, newColumnError(KindTypeMismatch, s.name, "cannot append %s series to %s series %q", other.dtype, s.dtype, s.name)
	}
	n := s.length + other.length
	out := newTypedSeries(s.name, s.dtype, n)
	if s.valid != nil || other.valid != nil {
		out.valid = make([]bool, n)
		for i := 0; i < s.length; i++ {
			out.valid[i] = s.valid == nil || s.valid[i]
		}
		for i := 0; i < other.length; i++ {
			out.valid[s.length+i] = other.valid == nil || other.valid[i]
		}
	}
	switch s.dtype {
	case I32:
		copy(out.i32, s.i32)
		copy(out.i32[s.length:], other.i32)
	case F64:
		copy(out.f64, s.f64)
		copy(out.f64[s.length:], other.f64)
	case Bool:
		copy(out.bs, s.bs)
		copy(out.bs[s.length:], other.bs)
	case String:
		copy(out.strs, s.strs)
		copy(out.strs[s.length:], other.strs)
	case DateTime:
		copy(out.ts, s.ts)
		copy(out.ts[s.length:], other.ts)
	}
	return out, nil
}

// ============================================================================
// Distinct values and null repair
// ============================================================================

// Unique returns each distinct non-null value once, in first-occurrence
// order. If nulls are present, a single null appears at the position of
// its first occurrence.
func (s *Series) Unique() *Series {
	seen := make(map[Value]bool, s.length)
	seenNull := false
	idx := make([]int, 0, s.length)
	for i := 0; i < s.length; i++ {
		if s.valid != nil && !s.valid[i] {
			if !seenNull {
				seenNull = true
				idx = append(idx, -1)
			}
			continue
		}
		v := s.valueAt(i)
		if !seen[v] {
			seen[v] = true
			idx = append(idx, i)
		}
	}
	return s.gather(idx)
}

// FillNulls replaces every null with v. The fill value must be
// assignable to the series dtype; an I32 fill is promoted into an F64
// series.
func (s *Series) FillNulls(v Value) (*Series, error) {
	fill, err := coerceValue(v, s.dtype)
	if err != nil {
		return nil, newColumnError(KindTypeMismatch, s.name, "fill value of type %s is not assignable to %s series %q", v.Kind, s.dtype, s.name)
	}
	if s.valid == nil {
		return s.Slice(0, s.length), nil
	}
	out := newTypedSeries(s.name, s.dtype, s.length)
	for i := 0; i < s.length; i++ {
		if s.valid[i] {
			out.setValue(i, s.valueAt(i))
		} else {
			out.setValue(i, fill)
		}
	}
	return out, nil
}

// coerceValue converts v to the target dtype where assignment permits
// it: exact matches, and I32 into F64.
func coerceValue(v Value, target DType) (Value, error) {
	if v.IsNull() {
		return v, nil
	}
	if v.Kind == target {
		return v, nil
	}
	if v.Kind == I32 && target == F64 {
		return F64Value(float64(v.i32)), nil
	}
	return NullValue(), newError(KindTypeMismatch, "value of type %s is not assignable to %s", v.Kind, target)
}

// InterpolateNulls fills interior null runs by linear interpolation
// between the nearest non-null neighbours. Leading and trailing runs
// stay null. Numeric and DateTime series only.
func (s *Series) InterpolateNulls() (*Series, error) {
	if !s.dtype.IsNumeric() && s.dtype != DateTime {
		return nil, newColumnError(KindTypeMismatch, s.name, "interpolate requires a numeric or datetime series, got %s", s.dtype)
	}
	if s.valid == nil {
		return s.Slice(0, s.length), nil
	}

	numAt := func(i int) float64 {
		switch s.dtype {
		case I32:
			return float64(s.i32[i])
		case F64:
			return s.f64[i]
		default:
			return float64(s.ts[i])
		}
	}

	out := newTypedSeries(s.name, s.dtype, s.length)
	outValid := make([]bool, s.length)
	out.valid = outValid

	prev := -1 // index of the last non-null seen
	for i := 0; i < s.length; i++ {
		if !s.valid[i] {
			continue
		}
		out.setValue(i, s.valueAt(i))
		outValid[i] = true
		if prev >= 0 && prev < i-1 {
			lo, hi := numAt(prev), numAt(i)
			span := float64(i - prev)
			for j := prev + 1; j < i; j++ {
				frac := float64(j-prev) / span
				v := lo + (hi-lo)*frac
				outValid[j] = true
				switch s.dtype {
				case I32:
					out.i32[j] = int32(math.Round(v))
				case F64:
					out.f64[j] = v
				default:
					out.ts[j] = int64(math.Round(v))
				}
			}
		}
		prev = i
	}
	out.valid = normalizeValidity(outValid)
	return out, nil
}

package veloxx

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Cast converts the series to the target dtype.
//
// Permitted conversions: I32<->F64, Bool<->I32, anything to String
// (canonical rendering), and String to any of the other four via strict
// parsing. Parse failures, NaN, and out-of-range narrowing degrade to
// null per element; an unsupported dtype pair fails with InvalidCast.
func (s *Series) Cast(target DType) (*Series, error) {
	if target == s.dtype {
		return s.Slice(0, s.length), nil
	}

	switch {
	case s.dtype == I32 && target == F64:
		out := make([]float64, s.length)
		for i, v := range s.i32 {
			out[i] = float64(v)
		}
		return NewSeriesF64WithNulls(s.name, out, copyValidity(s.valid)), nil

	case s.dtype == F64 && target == I32:
		return s.castF64ToI32(), nil

	case s.dtype == Bool && target == I32:
		out := make([]int32, s.length)
		for i, v := range s.bs {
			if v {
				out[i] = 1
			}
		}
		return NewSeriesI32WithNulls(s.name, out, copyValidity(s.valid)), nil

	case s.dtype == I32 && target == Bool:
		out := make([]bool, s.length)
		for i, v := range s.i32 {
			out[i] = v != 0
		}
		return NewSeriesBoolWithNulls(s.name, out, copyValidity(s.valid)), nil

	case target == String:
		out := make([]string, s.length)
		for i := 0; i < s.length; i++ {
			if s.valid == nil || s.valid[i] {
				out[i] = s.valueAt(i).String()
			}
		}
		return NewSeriesStringWithNulls(s.name, out, copyValidity(s.valid)), nil

	case s.dtype == String:
		return s.castStringTo(target)

	default:
		return nil, newColumnError(KindInvalidCast, s.name, "unsupported cast from %s to %s for series %q", s.dtype, target, s.name)
	}
}

func copyValidity(valid []bool) []bool {
	if valid == nil {
		return nil
	}
	out := make([]bool, len(valid))
	copy(out, valid)
	return out
}

// castF64ToI32 truncates toward zero; NaN and out-of-range become null.
func (s *Series) castF64ToI32() *Series {
	out := make([]int32, s.length)
	valid := make([]bool, s.length)
	for i, v := range s.f64 {
		if s.valid != nil && !s.valid[i] {
			continue
		}
		t := math.Trunc(v)
		if math.IsNaN(v) || t > math.MaxInt32 || t < math.MinInt32 {
			continue
		}
		out[i] = int32(t)
		valid[i] = true
	}
	return NewSeriesI32WithNulls(s.name, out, valid)
}

// castStringTo parses strictly; a failing row becomes null.
func (s *Series) castStringTo(target DType) (*Series, error) {
	valid := make([]bool, s.length)
	switch target {
	case I32:
		out := make([]int32, s.length)
		for i, str := range s.strs {
			if s.valid != nil && !s.valid[i] {
				continue
			}
			if v, err := strconv.ParseInt(str, 10, 32); err == nil {
				out[i] = int32(v)
				valid[i] = true
			}
		}
		return NewSeriesI32WithNulls(s.name, out, valid), nil
	case F64:
		out := make([]float64, s.length)
		for i, str := range s.strs {
			if s.valid != nil && !s.valid[i] {
				continue
			}
			if v, err := strconv.ParseFloat(str, 64); err == nil {
				out[i] = v
				valid[i] = true
			}
		}
		return NewSeriesF64WithNulls(s.name, out, valid), nil
	case Bool:
		out := make([]bool, s.length)
		for i, str := range s.strs {
			if s.valid != nil && !s.valid[i] {
				continue
			}
			switch strings.ToLower(str) {
			case "true":
				out[i] = true
				valid[i] = true
			case "false":
				valid[i] = true
			}
		}
		return NewSeriesBoolWithNulls(s.name, out, valid), nil
	case DateTime:
		out := make([]int64, s.length)
		for i, str := range s.strs {
			if s.valid != nil && !s.valid[i] {
				continue
			}
			if t, err := time.Parse(time.RFC3339, str); err == nil {
				out[i] = t.Unix()
				valid[i] = true
			}
		}
		return NewSeriesDateTimeWithNulls(s.name, out, valid), nil
	default:
		return nil, newColumnError(KindInvalidCast, s.name, "unsupported cast from String to %s for series %q", target, s.name)
	}
}

package veloxx

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// AggFunc enumerates the aggregation functions accepted by Agg and
// Pivot.
type AggFunc int

const (
	AggSum AggFunc = iota
	AggMean
	AggMin
	AggMax
	AggCount
	AggCountNonNull
	AggStdDev
	AggMedian
)

func (f AggFunc) String() string {
	switch f {
	case AggSum:
		return "sum"
	case AggMean:
		return "mean"
	case AggMin:
		return "min"
	case AggMax:
		return "max"
	case AggCount:
		return "count"
	case AggCountNonNull:
		return "count_non_null"
	case AggStdDev:
		return "std_dev"
	case AggMedian:
		return "median"
	default:
		return "?"
	}
}

// needsNumeric reports whether the function is defined only on numeric
// sources.
func (f AggFunc) needsNumeric() bool {
	switch f {
	case AggCount, AggCountNonNull:
		return false
	default:
		return true
	}
}

// AggSpec pairs a source column with an aggregation function. The
// output column is named {source}_{function}.
type AggSpec struct {
	Column string
	Func   AggFunc
}

// GroupBy is a grouping handle over a DataFrame.
type GroupBy struct {
	df   *DataFrame
	keys []string
}

// GroupBy groups the frame by the named key columns. Group keys compare
// by value equality with null equal to null.
func (df *DataFrame) GroupBy(keys ...string) (*GroupBy, error) {
	if len(keys) == 0 {
		return nil, newError(KindEmptyArgument, "group_by requires at least one key column")
	}
	for _, name := range keys {
		if _, err := df.requireColumn(name); err != nil {
			return nil, err
		}
	}
	return &GroupBy{df: df, keys: keys}, nil
}

// grouping is the resolved partition of rows into groups.
type grouping struct {
	rows     [][]int // row indices per group, in input order
	firstRow []int   // first-occurrence row per group
}

// groupRange partitions rows [lo, hi) serially, preserving
// first-occurrence order within the range.
func groupRange(keyCols []*Series, hashes []uint64, lo, hi int) grouping {
	var g grouping
	index := make(map[uint64][]int)
	for row := lo; row < hi; row++ {
		h := hashes[row]
		found := -1
		for _, gid := range index[h] {
			if keysMatch(keyCols, row, keyCols, g.firstRow[gid]) {
				found = gid
				break
			}
		}
		if found < 0 {
			found = len(g.rows)
			g.rows = append(g.rows, nil)
			g.firstRow = append(g.firstRow, row)
			index[h] = append(index[h], found)
		}
		g.rows[found] = append(g.rows[found], row)
	}
	return g
}

// groups partitions all rows. The serial path preserves global
// first-occurrence order. When StableGroupBy is off and the input is
// large, rows are split by hash prefix into buckets processed
// concurrently and concatenated in bucket order, which keeps
// first-occurrence order per bucket but not globally.
func (gb *GroupBy) groups() grouping {
	df := gb.df
	keyCols := make([]*Series, len(gb.keys))
	for i, name := range gb.keys {
		keyCols[i] = df.Column(name)
	}
	hashes, _ := hashKeyRows(keyCols, df.height)

	cfg := GetConfig()
	if cfg.StableGroupBy || !cfg.useParallel(df.height) {
		return groupRange(keyCols, hashes, 0, df.height)
	}

	numBuckets := nextPowerOf2(cfg.numWorkers())
	buckets := make([][]int, numBuckets)
	for row := 0; row < df.height; row++ {
		b := int(hashes[row]) & (numBuckets - 1)
		buckets[b] = append(buckets[b], row)
	}

	partials := make([]grouping, numBuckets)
	var wg sync.WaitGroup
	for b := 0; b < numBuckets; b++ {
		wg.Add(1)
		go func(b int) {
			defer wg.Done()
			var g grouping
			index := make(map[uint64][]int)
			for _, row := range buckets[b] {
				h := hashes[row]
				found := -1
				for _, gid := range index[h] {
					if keysMatch(keyCols, row, keyCols, g.firstRow[gid]) {
						found = gid
						break
					}
				}
				if found < 0 {
					found = len(g.rows)
					g.rows = append(g.rows, nil)
					g.firstRow = append(g.firstRow, row)
					index[h] = append(index[h], found)
				}
				g.rows[found] = append(g.rows[found], row)
			}
			partials[b] = g
		}(b)
	}
	wg.Wait()

	var merged grouping
	for _, g := range partials {
		merged.rows = append(merged.rows, g.rows...)
		merged.firstRow = append(merged.firstRow, g.firstRow...)
	}
	return merged
}

// Agg aggregates each group per the ordered specs. Output columns are
// the key columns in given order followed by one column per spec named
// {source}_{function}, with collisions resolved by appending _1, _2, …
// Output rows follow first-occurrence order of the keys.
func (gb *GroupBy) Agg(specs ...AggSpec) (*DataFrame, error) {
	if len(specs) == 0 {
		return nil, newError(KindEmptyArgument, "agg requires at least one aggregation")
	}
	for _, spec := range specs {
		col, err := gb.df.requireColumn(spec.Column)
		if err != nil {
			return nil, err
		}
		if spec.Func.needsNumeric() && !col.DType().IsNumeric() {
			return nil, newColumnError(KindTypeMismatch, spec.Column, "%s requires a numeric column, %q is %s", spec.Func, spec.Column, col.DType())
		}
	}

	g := gb.groups()

	cols := make([]*Series, 0, len(gb.keys)+len(specs))
	for _, name := range gb.keys {
		cols = append(cols, gb.df.Column(name).gather(g.firstRow))
	}

	used := make(map[string]bool, len(cols)+len(specs))
	for _, name := range gb.keys {
		used[name] = true
	}
	for _, spec := range specs {
		name := fmt.Sprintf("%s_%s", spec.Column, spec.Func)
		if used[name] {
			for n := 1; ; n++ {
				candidate := fmt.Sprintf("%s_%d", name, n)
				if !used[candidate] {
					name = candidate
					break
				}
			}
		}
		used[name] = true
		cols = append(cols, aggregateColumn(name, gb.df.Column(spec.Column), spec.Func, g.rows))
	}

	return NewDataFrame(cols...)
}

// aggregateColumn computes one aggregate per group over the source
// column. Statistical aggregates ignore nulls and yield null for
// all-null groups.
func aggregateColumn(name string, src *Series, fn AggFunc, groups [][]int) *Series {
	n := len(groups)
	switch fn {
	case AggCount:
		out := make([]int32, n)
		for gid, rows := range groups {
			out[gid] = int32(len(rows))
		}
		return NewSeriesI32(name, out)

	case AggCountNonNull:
		out := make([]int32, n)
		for gid, rows := range groups {
			c := 0
			for _, row := range rows {
				if src.IsValid(row) {
					c++
				}
			}
			out[gid] = int32(c)
		}
		return NewSeriesI32(name, out)

	case AggSum:
		if src.DType() == I32 {
			out := make([]int32, n)
			valid := make([]bool, n)
			for gid, rows := range groups {
				var sum int64
				seen := false
				for _, row := range rows {
					if src.IsValid(row) {
						sum += int64(src.i32[row])
						seen = true
					}
				}
				out[gid] = int32(sum)
				valid[gid] = seen
			}
			return NewSeriesI32WithNulls(name, out, valid)
		}
		out := make([]float64, n)
		valid := make([]bool, n)
		for gid, rows := range groups {
			sum := 0.0
			seen := false
			for _, row := range rows {
				if src.IsValid(row) {
					sum += src.f64[row]
					seen = true
				}
			}
			out[gid] = sum
			valid[gid] = seen
		}
		return NewSeriesF64WithNulls(name, out, valid)

	case AggMean, AggStdDev:
		out := make([]float64, n)
		valid := make([]bool, n)
		for gid, rows := range groups {
			sum := 0.0
			count := 0
			for _, row := range rows {
				if src.IsValid(row) {
					sum += src.numAt(row)
					count++
				}
			}
			if fn == AggMean {
				if count > 0 {
					out[gid] = sum / float64(count)
					valid[gid] = true
				}
				continue
			}
			if count < 2 {
				continue
			}
			mean := sum / float64(count)
			var m2 float64
			for _, row := range rows {
				if src.IsValid(row) {
					d := src.numAt(row) - mean
					m2 += d * d
				}
			}
			out[gid] = math.Sqrt(m2 / float64(count-1))
			valid[gid] = true
		}
		return NewSeriesF64WithNulls(name, out, valid)

	case AggMin, AggMax:
		return extremeColumn(name, src, fn == AggMin, groups)

	case AggMedian:
		return medianColumn(name, src, groups)
	}
	return nil
}

// numAt widens element i to float64; only called on numeric series.
func (s *Series) numAt(i int) float64 {
	if s.dtype == I32 {
		return float64(s.i32[i])
	}
	return s.f64[i]
}

func extremeColumn(name string, src *Series, wantMin bool, groups [][]int) *Series {
	n := len(groups)
	out := newTypedSeries(name, src.DType(), n)
	valid := make([]bool, n)
	for gid, rows := range groups {
		var best Value
		seen := false
		for _, row := range rows {
			if !src.IsValid(row) {
				continue
			}
			v := src.valueAt(row)
			if !seen || (wantMin && v.Less(best)) || (!wantMin && best.Less(v)) {
				best = v
				seen = true
			}
		}
		if seen {
			out.setValueRaw(gid, best)
			valid[gid] = true
		}
	}
	out.valid = normalizeValidity(valid)
	return out
}

func medianColumn(name string, src *Series, groups [][]int) *Series {
	n := len(groups)
	out := newTypedSeries(name, src.DType(), n)
	valid := make([]bool, n)
	for gid, rows := range groups {
		vals := make([]float64, 0, len(rows))
		for _, row := range rows {
			if src.IsValid(row) {
				vals = append(vals, src.numAt(row))
			}
		}
		if len(vals) == 0 {
			continue
		}
		sort.Float64s(vals)
		med := vals[(len(vals)-1)/2]
		if src.DType() == I32 {
			out.i32[gid] = int32(med)
		} else {
			out.f64[gid] = med
		}
		valid[gid] = true
	}
	out.valid = normalizeValidity(valid)
	return out
}

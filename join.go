package veloxx

import "sync"

// JoinType represents the type of join operation
type JoinType int

const (
	InnerJoinType JoinType = iota
	LeftJoinType
	RightJoinType
	OuterJoinType
)

func (t JoinType) String() string {
	switch t {
	case InnerJoinType:
		return "inner"
	case LeftJoinType:
		return "left"
	case RightJoinType:
		return "right"
	case OuterJoinType:
		return "outer"
	default:
		return "?"
	}
}

// JoinOptions configures join behavior
type JoinOptions struct {
	on     []string
	suffix string
	how    JoinType
}

// On creates join options for equi-joining on the named key column(s),
// which must exist in both frames. The single-key form is the primary
// contract; multiple keys extend it per column.
func On(columns ...string) JoinOptions {
	return JoinOptions{on: columns, suffix: "_r", how: InnerJoinType}
}

// WithSuffix overrides the collision suffix for right-hand columns.
func (o JoinOptions) WithSuffix(suffix string) JoinOptions {
	o.suffix = suffix
	return o
}

// Join performs an inner join: one output row per matching pair, null
// keys never match.
func (df *DataFrame) Join(other *DataFrame, opts JoinOptions) (*DataFrame, error) {
	opts.how = InnerJoinType
	return df.joinWith(other, opts)
}

// LeftJoin emits every left row; unmatched rows carry nulls in the
// right columns.
func (df *DataFrame) LeftJoin(other *DataFrame, opts JoinOptions) (*DataFrame, error) {
	opts.how = LeftJoinType
	return df.joinWith(other, opts)
}

// RightJoin emits every right row; unmatched rows carry nulls in the
// left columns.
func (df *DataFrame) RightJoin(other *DataFrame, opts JoinOptions) (*DataFrame, error) {
	opts.how = RightJoinType
	return df.joinWith(other, opts)
}

// OuterJoin emits the union: all left rows in left order, then
// unmatched right rows in right order.
func (df *DataFrame) OuterJoin(other *DataFrame, opts JoinOptions) (*DataFrame, error) {
	opts.how = OuterJoinType
	return df.joinWith(other, opts)
}

func (df *DataFrame) joinWith(other *DataFrame, opts JoinOptions) (*DataFrame, error) {
	if len(opts.on) == 0 {
		return nil, newError(KindEmptyArgument, "join requires at least one key column")
	}
	if opts.suffix == "" {
		opts.suffix = "_r"
	}

	leftKeys := make([]*Series, len(opts.on))
	rightKeys := make([]*Series, len(opts.on))
	for i, name := range opts.on {
		lk, err := df.requireColumn(name)
		if err != nil {
			return nil, err
		}
		rk, err := other.requireColumn(name)
		if err != nil {
			return nil, err
		}
		if lk.DType() != rk.DType() {
			return nil, newColumnError(KindTypeMismatch, name, "join key %q is %s on the left and %s on the right", name, lk.DType(), rk.DType())
		}
		leftKeys[i] = lk
		rightKeys[i] = rk
	}

	var leftIdx, rightIdx []int
	switch opts.how {
	case InnerJoinType, LeftJoinType, OuterJoinType:
		leftIdx, rightIdx = probeJoin(leftKeys, rightKeys, df.height, other.height, opts.how)
	case RightJoinType:
		// Symmetric: probe the right side against a left index.
		ri, li := probeJoin(rightKeys, leftKeys, other.height, df.height, LeftJoinType)
		leftIdx, rightIdx = li, ri
	}

	return buildJoinResult(df, other, opts, leftIdx, rightIdx)
}

// ============================================================================
// Hashing and index build
// ============================================================================

// hashKeyRows computes one hash per row over the key tuple, and flags
// rows carrying a null key (which never match).
func hashKeyRows(keys []*Series, height int) ([]uint64, []bool) {
	hashes := make([]uint64, height)
	hasNull := make([]bool, height)
	for k, key := range keys {
		for i := 0; i < height; i++ {
			if !key.IsValid(i) {
				hasNull[i] = true
				continue
			}
			h := hashValue(key.valueAt(i))
			if k == 0 {
				hashes[i] = h
			} else {
				hashes[i] = combineHashes(hashes[i], h)
			}
		}
	}
	return hashes, hasNull
}

// keysMatch compares the key tuples of a probe row and a build row.
func keysMatch(probeKeys []*Series, probeRow int, buildKeys []*Series, buildRow int) bool {
	for i := range probeKeys {
		if !probeKeys[i].valueAt(probeRow).Equal(buildKeys[i].valueAt(buildRow)) {
			return false
		}
	}
	return true
}

// buildHashIndex maps key hashes to build-side row index lists, in row
// order, excluding null keys.
func buildHashIndex(hashes []uint64, hasNull []bool, height int) map[uint64][]int {
	index := make(map[uint64][]int, height)
	cfg := GetConfig()
	if cfg.useParallel(height) {
		phi := NewPartitionedHashIndex(0)
		phi.BuildParallel(hashes, hasNull)
		for p := 0; p < phi.numParts; p++ {
			for hash, rows := range phi.partitions[p] {
				index[hash] = rows
			}
		}
		return index
	}
	for i := 0; i < height; i++ {
		if hasNull[i] {
			continue
		}
		index[hashes[i]] = append(index[hashes[i]], i)
	}
	return index
}

// ============================================================================
// Probe
// ============================================================================

// probeJoin probes every probe row against the build index. For inner
// joins unmatched probe rows are dropped; for left and outer joins they
// emit with build index -1; for outer joins untouched build rows append
// afterwards in build order. The probe side partitions into contiguous
// chunks whose outputs concatenate in chunk order, so row ordering is
// identical at any worker count.
func probeJoin(probeKeys, buildKeys []*Series, probeHeight, buildHeight int, how JoinType) (probeIdx, buildIdx []int) {
	buildHashes, buildNull := hashKeyRows(buildKeys, buildHeight)
	index := buildHashIndex(buildHashes, buildNull, buildHeight)
	probeHashes, probeNull := hashKeyRows(probeKeys, probeHeight)

	keepUnmatched := how != InnerJoinType

	type chunkResult struct {
		probe, build []int
		touched      []bool
	}
	probeChunk := func(lo, hi int) chunkResult {
		var res chunkResult
		if how == OuterJoinType {
			res.touched = make([]bool, buildHeight)
		}
		for row := lo; row < hi; row++ {
			matched := false
			if !probeNull[row] {
				for _, buildRow := range index[probeHashes[row]] {
					if keysMatch(probeKeys, row, buildKeys, buildRow) {
						res.probe = append(res.probe, row)
						res.build = append(res.build, buildRow)
						matched = true
						if res.touched != nil {
							res.touched[buildRow] = true
						}
					}
				}
			}
			if !matched && keepUnmatched {
				res.probe = append(res.probe, row)
				res.build = append(res.build, -1)
			}
		}
		return res
	}

	cfg := GetConfig()
	var chunks []chunkResult
	if probeHeight >= cfg.ParThreshold || buildHeight >= cfg.ParThreshold {
		ranges := chunkRanges(probeHeight, cfg.numWorkers())
		chunks = make([]chunkResult, len(ranges))
		var wg sync.WaitGroup
		for i, r := range ranges {
			wg.Add(1)
			go func(i int, r Morsel) {
				defer wg.Done()
				chunks[i] = probeChunk(r.Start, r.End)
			}(i, r)
		}
		wg.Wait()
	} else {
		chunks = []chunkResult{probeChunk(0, probeHeight)}
	}

	total := 0
	for _, c := range chunks {
		total += len(c.probe)
	}
	probeIdx = make([]int, 0, total)
	buildIdx = make([]int, 0, total)
	var touched []bool
	if how == OuterJoinType {
		touched = make([]bool, buildHeight)
	}
	for _, c := range chunks {
		probeIdx = append(probeIdx, c.probe...)
		buildIdx = append(buildIdx, c.build...)
		for i, t := range c.touched {
			if t {
				touched[i] = true
			}
		}
	}

	if how == OuterJoinType {
		for row := 0; row < buildHeight; row++ {
			if !touched[row] {
				probeIdx = append(probeIdx, -1)
				buildIdx = append(buildIdx, row)
			}
		}
	}
	return probeIdx, buildIdx
}

// ============================================================================
// Result assembly
// ============================================================================

// buildJoinResult assembles the output frame: key columns once, left
// non-key columns in input order, then right non-key columns with any
// colliding name suffixed until unique.
func buildJoinResult(left, right *DataFrame, opts JoinOptions, leftIdx, rightIdx []int) (*DataFrame, error) {
	keySet := make(map[string]bool, len(opts.on))
	for _, k := range opts.on {
		keySet[k] = true
	}

	type plannedCol struct {
		name     string
		isKey    bool
		fromLeft bool
		src      *Series
	}
	var plan []plannedCol
	used := make(map[string]bool)

	for _, k := range opts.on {
		plan = append(plan, plannedCol{name: k, isKey: true})
		used[k] = true
	}
	for _, col := range left.columns {
		if keySet[col.Name()] {
			continue
		}
		plan = append(plan, plannedCol{name: col.Name(), fromLeft: true, src: col})
		used[col.Name()] = true
	}
	for _, col := range right.columns {
		if keySet[col.Name()] {
			continue
		}
		name := col.Name()
		for used[name] {
			name += opts.suffix
		}
		plan = append(plan, plannedCol{name: name, src: col})
		used[name] = true
	}

	cols := parallelBuildColumns(len(plan), func(i int) *Series {
		p := plan[i]
		if p.isKey {
			return buildKeyColumn(p.name, left.Column(p.name), right.Column(p.name), leftIdx, rightIdx)
		}
		if p.fromLeft {
			return p.src.gather(leftIdx).Rename(p.name)
		}
		return p.src.gather(rightIdx).Rename(p.name)
	})
	return NewDataFrame(cols...)
}

// buildKeyColumn coalesces the key from whichever side the row came
// from, so right-only rows of an outer join keep their key.
func buildKeyColumn(name string, leftKey, rightKey *Series, leftIdx, rightIdx []int) *Series {
	n := len(leftIdx)
	out := newTypedSeries(name, leftKey.DType(), n)
	valid := make([]bool, n)
	for i := 0; i < n; i++ {
		var v Value
		if leftIdx[i] >= 0 {
			v = leftKey.valueAt(leftIdx[i])
		} else {
			v = rightKey.valueAt(rightIdx[i])
		}
		if v.IsNull() {
			continue
		}
		valid[i] = true
		out.setValueRaw(i, v)
	}
	out.valid = normalizeValidity(valid)
	return out
}

// setValueRaw writes a non-null value without touching the validity
// mask; callers manage validity themselves.
func (s *Series) setValueRaw(i int, v Value) {
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

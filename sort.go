package veloxx

import "sort"

// Sort returns the frame reordered by a stable multi-key sort.
//
// by is a non-empty ordered list of key columns. ascending is either a
// single flag applied to every key or one flag per key. Nulls sort last
// under both directions; ties keep their input order.
func (df *DataFrame) Sort(by []string, ascending ...bool) (*DataFrame, error) {
	if len(by) == 0 {
		return nil, newError(KindEmptyArgument, "sort requires at least one key column")
	}
	if len(ascending) == 0 {
		ascending = []bool{true}
	}
	if len(ascending) != 1 && len(ascending) != len(by) {
		return nil, newError(KindLengthMismatch, "ascending has %d flags for %d keys", len(ascending), len(by))
	}

	keys := make([]*Series, len(by))
	dirs := make([]bool, len(by))
	for i, name := range by {
		col, err := df.requireColumn(name)
		if err != nil {
			return nil, err
		}
		keys[i] = col
		if len(ascending) == 1 {
			dirs[i] = ascending[0]
		} else {
			dirs[i] = ascending[i]
		}
	}

	order := make([]int, df.height)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		a, b := order[x], order[y]
		for k, key := range keys {
			c := compareRows(key, a, b, dirs[k])
			if c != 0 {
				return c < 0
			}
		}
		return false
	})

	return df.gatherRows(order)
}

// compareRows orders rows a and b by one key column: -1, 0, or 1.
// Nulls rank after every value regardless of direction.
func compareRows(key *Series, a, b int, asc bool) int {
	av := key.valueAt(a)
	bv := key.valueAt(b)
	an, bn := av.IsNull(), bv.IsNull()
	switch {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	}
	if av.Equal(bv) {
		return 0
	}
	less := av.Less(bv)
	if !asc {
		less = !less
	}
	if less {
		return -1
	}
	return 1
}

// SortBy sorts on a single key column.
func (df *DataFrame) SortBy(column string, ascending bool) (*DataFrame, error) {
	return df.Sort([]string{column}, ascending)
}

package veloxx

// DataFrame is an ordered collection of equal-length, uniquely named
// Series. Column iteration always follows insertion order; a plain map
// never decides output order anywhere in the engine.
//
// A DataFrame is immutable after construction. Operators return fresh
// frames. Select, Drop, Rename and WithColumn reuse the input's Series
// for the columns they carry over unchanged, so those Series are shared
// between the input and the output frame.
type DataFrame struct {
	columns []*Series
	index   map[string]int // name -> position in columns
	height  int
}

// NewDataFrame builds a frame from an ordered list of Series. It fails
// with EmptyColumnName, DuplicateColumn, or LengthMismatch.
func NewDataFrame(columns ...*Series) (*DataFrame, error) {
	df := &DataFrame{
		columns: make([]*Series, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if col.Name() == "" {
			return nil, newIndexError(KindEmptyColumnName, i, "column %d has an empty name", i)
		}
		if _, exists := df.index[col.Name()]; exists {
			return nil, newColumnError(KindDuplicateColumn, col.Name(), "duplicate column name: %s", col.Name())
		}
		if i == 0 {
			df.height = col.Len()
		} else if col.Len() != df.height {
			return nil, newColumnError(KindLengthMismatch, col.Name(), "column %q has length %d, expected %d", col.Name(), col.Len(), df.height)
		}
		df.index[col.Name()] = len(df.columns)
		df.columns = append(df.columns, col)
	}
	return df, nil
}

// NewDataFrameOrdered builds a frame from a name->Series mapping plus an
// explicit column order. Every order entry must exist in the mapping and
// every mapping entry must be named by order exactly once.
func NewDataFrameOrdered(columns map[string]*Series, order []string) (*DataFrame, error) {
	if len(order) != len(columns) {
		return nil, newError(KindLengthMismatch, "order names %d columns, mapping has %d", len(order), len(columns))
	}
	cols := make([]*Series, 0, len(order))
	for _, name := range order {
		col, ok := columns[name]
		if !ok {
			return nil, newColumnError(KindColumnNotFound, name, "column %q named in order but missing from mapping", name)
		}
		if col.Name() != name {
			col = col.Rename(name)
		}
		cols = append(cols, col)
	}
	return NewDataFrame(cols...)
}

// Height returns the row count.
func (df *DataFrame) Height() int { return df.height }

// Width returns the column count.
func (df *DataFrame) Width() int { return len(df.columns) }

// Names returns the column names in order.
func (df *DataFrame) Names() []string {
	names := make([]string, len(df.columns))
	for i, col := range df.columns {
		names[i] = col.Name()
	}
	return names
}

// Column returns the named column, or nil if absent.
func (df *DataFrame) Column(name string) *Series {
	if i, ok := df.index[name]; ok {
		return df.columns[i]
	}
	return nil
}

// ColumnAt returns the column at position i, or nil out of range.
func (df *DataFrame) ColumnAt(i int) *Series {
	if i < 0 || i >= len(df.columns) {
		return nil
	}
	return df.columns[i]
}

// Schema returns the frame's schema snapshot.
func (df *DataFrame) Schema() *Schema {
	names := df.Names()
	dtypes := make([]DType, len(df.columns))
	for i, col := range df.columns {
		dtypes[i] = col.DType()
	}
	sch, _ := NewSchema(names, dtypes)
	return sch
}

// requireColumn resolves a column name or fails with ColumnNotFound.
func (df *DataFrame) requireColumn(name string) (*Series, error) {
	if col := df.Column(name); col != nil {
		return col, nil
	}
	return nil, newColumnError(KindColumnNotFound, name, "column %q not found", name)
}

// ============================================================================
// Column operations
// ============================================================================

// Select returns a frame with exactly the named columns, in argument
// order.
func (df *DataFrame) Select(names ...string) (*DataFrame, error) {
	cols := make([]*Series, 0, len(names))
	for _, name := range names {
		col, err := df.requireColumn(name)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return NewDataFrame(cols...)
}

// Drop returns a frame without the named columns, keeping the remaining
// columns in their input order.
func (df *DataFrame) Drop(names ...string) (*DataFrame, error) {
	dropping := make(map[string]bool, len(names))
	for _, name := range names {
		if _, err := df.requireColumn(name); err != nil {
			return nil, err
		}
		dropping[name] = true
	}
	cols := make([]*Series, 0, len(df.columns))
	for _, col := range df.columns {
		if !dropping[col.Name()] {
			cols = append(cols, col)
		}
	}
	return NewDataFrame(cols...)
}

// Rename changes one column's name, preserving its position.
func (df *DataFrame) Rename(oldName, newName string) (*DataFrame, error) {
	pos, ok := df.index[oldName]
	if !ok {
		return nil, newColumnError(KindColumnNotFound, oldName, "column %q not found", oldName)
	}
	if newName == "" {
		return nil, newError(KindEmptyColumnName, "new column name is empty")
	}
	if _, exists := df.index[newName]; exists && newName != oldName {
		return nil, newColumnError(KindDuplicateColumn, newName, "column %q already exists", newName)
	}
	cols := make([]*Series, len(df.columns))
	copy(cols, df.columns)
	cols[pos] = cols[pos].Rename(newName)
	return NewDataFrame(cols...)
}

// WithColumnSeries inserts the series at the end, or replaces in place
// when a column of the same name exists.
func (df *DataFrame) WithColumnSeries(col *Series) (*DataFrame, error) {
	if col.Name() == "" {
		return nil, newError(KindEmptyColumnName, "column name is empty")
	}
	if df.Width() > 0 && col.Len() != df.height {
		return nil, newColumnError(KindLengthMismatch, col.Name(), "column %q has length %d, expected %d", col.Name(), col.Len(), df.height)
	}
	cols := make([]*Series, len(df.columns))
	copy(cols, df.columns)
	if pos, exists := df.index[col.Name()]; exists {
		cols[pos] = col
		return NewDataFrame(cols...)
	}
	return NewDataFrame(append(cols, col)...)
}

// WithColumn evaluates expr against the frame and inserts the result
// under name: appended at the end if new, replaced in place otherwise.
func (df *DataFrame) WithColumn(name string, expr Expr) (*DataFrame, error) {
	col, err := Evaluate(expr, df)
	if err != nil {
		return nil, err
	}
	return df.WithColumnSeries(col.Rename(name))
}

// ============================================================================
// Row operations
// ============================================================================

// FilterByMask keeps the rows where mask is true, preserving order.
func (df *DataFrame) FilterByMask(mask []bool) (*DataFrame, error) {
	if len(mask) != df.height {
		return nil, newError(KindLengthMismatch, "mask length %d does not match row count %d", len(mask), df.height)
	}
	idx := getIndexSlice(df.height)
	defer idx.Release()
	n := 0
	for i, keep := range mask {
		if keep {
			idx.Data[n] = i
			n++
		}
	}
	return df.gatherRows(idx.Data[:n])
}

// Take returns the rows at the given indices, in argument order.
func (df *DataFrame) Take(indices []int) (*DataFrame, error) {
	for _, i := range indices {
		if i < 0 || i >= df.height {
			return nil, newIndexError(KindOutOfBounds, i, "take index %d out of bounds for %d rows", i, df.height)
		}
	}
	return df.gatherRows(indices)
}

// gatherRows builds a frame from row indices already known to be valid.
func (df *DataFrame) gatherRows(indices []int) (*DataFrame, error) {
	cols := parallelBuildColumns(len(df.columns), func(i int) *Series {
		return df.columns[i].gather(indices)
	})
	return NewDataFrame(cols...)
}

// Head returns the first min(n, height) rows.
func (df *DataFrame) Head(n int) (*DataFrame, error) {
	if n < 0 {
		n = 0
	}
	if n > df.height {
		n = df.height
	}
	return df.SliceRows(0, n)
}

// Tail returns the last min(n, height) rows.
func (df *DataFrame) Tail(n int) (*DataFrame, error) {
	if n < 0 {
		n = 0
	}
	if n > df.height {
		n = df.height
	}
	return df.SliceRows(df.height-n, df.height)
}

// SliceRows returns a copy of rows [start, end), clamped to bounds.
func (df *DataFrame) SliceRows(start, end int) (*DataFrame, error) {
	if start < 0 {
		start = 0
	}
	if end > df.height {
		end = df.height
	}
	if start > end {
		start = end
	}
	idx := make([]int, end-start)
	for i := range idx {
		idx[i] = start + i
	}
	return df.gatherRows(idx)
}

// Clone returns a deep copy of the frame.
func (df *DataFrame) Clone() *DataFrame {
	out, _ := df.SliceRows(0, df.height)
	return out
}

// Append concatenates other's rows under this frame. The frames must
// carry the same column set by name and dtype (order irrelevant); the
// output keeps this frame's column order.
func (df *DataFrame) Append(other *DataFrame) (*DataFrame, error) {
	if df.Width() != other.Width() {
		return nil, newError(KindSchemaMismatch, "cannot append: %d columns vs %d", df.Width(), other.Width())
	}
	cols := make([]*Series, 0, len(df.columns))
	for _, col := range df.columns {
		match := other.Column(col.Name())
		if match == nil {
			return nil, newColumnError(KindSchemaMismatch, col.Name(), "cannot append: column %q missing from other frame", col.Name())
		}
		if match.DType() != col.DType() {
			return nil, newColumnError(KindSchemaMismatch, col.Name(), "cannot append: column %q is %s vs %s", col.Name(), col.DType(), match.DType())
		}
		joined, err := col.Append(match)
		if err != nil {
			return nil, err
		}
		cols = append(cols, joined)
	}
	return NewDataFrame(cols...)
}

// Row returns the values across all columns at row i, in column order.
func (df *DataFrame) Row(i int) ([]Value, error) {
	if i < 0 || i >= df.height {
		return nil, newIndexError(KindOutOfBounds, i, "row %d out of bounds for %d rows", i, df.height)
	}
	vals := make([]Value, len(df.columns))
	for c, col := range df.columns {
		vals[c] = col.valueAt(i)
	}
	return vals, nil
}

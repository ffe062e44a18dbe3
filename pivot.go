package veloxx

import "sort"

// Pivot reshapes long to wide: index columns become the leading output
// columns (grouped with the same key semantics as group_by), the
// distinct non-null values of the columns column become new column
// names in ascending natural order, and each (index, columns) cell
// holds the aggregate of the values column. Missing cells are null.
func (df *DataFrame) Pivot(values string, index []string, columns string, agg AggFunc) (*DataFrame, error) {
	if len(index) == 0 {
		return nil, newError(KindEmptyArgument, "pivot requires at least one index column")
	}
	valuesCol, err := df.requireColumn(values)
	if err != nil {
		return nil, err
	}
	colCol, err := df.requireColumn(columns)
	if err != nil {
		return nil, err
	}
	if agg.needsNumeric() && !valuesCol.DType().IsNumeric() {
		return nil, newColumnError(KindTypeMismatch, values, "%s requires a numeric values column, %q is %s", agg, values, valuesCol.DType())
	}

	keyCols := make([]*Series, len(index))
	for i, name := range index {
		col, err := df.requireColumn(name)
		if err != nil {
			return nil, err
		}
		keyCols[i] = col
	}
	hashes, _ := hashKeyRows(keyCols, df.height)
	g := groupRange(keyCols, hashes, 0, df.height)

	// Distinct non-null column values, ascending.
	distinct := colCol.Unique()
	headers := make([]Value, 0, distinct.Len())
	for i := 0; i < distinct.Len(); i++ {
		if distinct.IsValid(i) {
			headers = append(headers, distinct.valueAt(i))
		}
	}
	sort.SliceStable(headers, func(a, b int) bool { return headers[a].Less(headers[b]) })
	headerIdx := make(map[Value]int, len(headers))
	for i, h := range headers {
		headerIdx[h] = i
	}

	// Bucket each group's rows per output column; rows whose column
	// value is null belong to no cell.
	numGroups := len(g.rows)
	cells := make([][][]int, len(headers))
	for j := range cells {
		cells[j] = make([][]int, numGroups)
	}
	for gid, rows := range g.rows {
		for _, row := range rows {
			if !colCol.IsValid(row) {
				continue
			}
			j := headerIdx[colCol.valueAt(row)]
			cells[j][gid] = append(cells[j][gid], row)
		}
	}

	cols := make([]*Series, 0, len(index)+len(headers))
	for _, name := range index {
		cols = append(cols, df.Column(name).gather(g.firstRow))
	}
	for j, h := range headers {
		agged := aggregateColumn(h.String(), valuesCol, agg, cells[j])
		cols = append(cols, nullEmptyCells(agged, cells[j]))
	}
	return NewDataFrame(cols...)
}

// nullEmptyCells marks cells with no contributing rows as null; counts
// would otherwise report zero for a missing cell.
func nullEmptyCells(s *Series, cells [][]int) *Series {
	hasEmpty := false
	for _, rows := range cells {
		if len(rows) == 0 {
			hasEmpty = true
			break
		}
	}
	if !hasEmpty {
		return s
	}
	valid := make([]bool, s.Len())
	for i := range valid {
		valid[i] = len(cells[i]) > 0 && s.IsValid(i)
	}
	out := *s
	out.valid = normalizeValidity(valid)
	return &out
}

// Unpivot is the wide-to-long inverse of Pivot: every column outside
// idVars melts into (varName, valueName) rows. Output rows enumerate
// the melted columns in frame order, each carrying all input rows in
// order. All melted columns must share a dtype, with I32 and F64 mixing
// into F64.
func (df *DataFrame) Unpivot(idVars []string, varName, valueName string) (*DataFrame, error) {
	idSet := make(map[string]bool, len(idVars))
	for _, name := range idVars {
		if _, err := df.requireColumn(name); err != nil {
			return nil, err
		}
		idSet[name] = true
	}

	var valueCols []*Series
	for _, col := range df.columns {
		if !idSet[col.Name()] {
			valueCols = append(valueCols, col)
		}
	}
	if len(valueCols) == 0 {
		return nil, newError(KindEmptyArgument, "unpivot requires at least one value column")
	}

	target := valueCols[0].DType()
	for _, col := range valueCols[1:] {
		if col.DType() == target {
			continue
		}
		if col.DType().IsNumeric() && target.IsNumeric() {
			target = F64
			continue
		}
		return nil, newColumnError(KindTypeMismatch, col.Name(), "unpivot value columns mix %s and %s", target, col.DType())
	}

	height := df.height
	total := height * len(valueCols)

	repeat := make([]int, total)
	for j := range valueCols {
		for i := 0; i < height; i++ {
			repeat[j*height+i] = i
		}
	}

	cols := make([]*Series, 0, len(idVars)+2)
	for _, name := range idVars {
		cols = append(cols, df.Column(name).gather(repeat))
	}

	vars := make([]string, total)
	for j, col := range valueCols {
		for i := 0; i < height; i++ {
			vars[j*height+i] = col.Name()
		}
	}
	cols = append(cols, NewSeriesString(varName, vars))

	out := newTypedSeries(valueName, target, total)
	valid := make([]bool, total)
	for j, col := range valueCols {
		src := col
		if col.DType() != target {
			src, _ = col.Cast(target)
		}
		for i := 0; i < height; i++ {
			pos := j*height + i
			if !src.IsValid(i) {
				continue
			}
			valid[pos] = true
			out.setValueRaw(pos, src.valueAt(i))
		}
	}
	out.valid = normalizeValidity(valid)
	cols = append(cols, out)

	return NewDataFrame(cols...)
}

package veloxx

// Describe summarises every numeric column: one output row per column
// with its non-null count, mean, standard deviation, minimum, lower
// median, and maximum. All-null statistics render as null.
func (df *DataFrame) Describe() (*DataFrame, error) {
	var names []string
	var numeric []*Series
	for _, col := range df.columns {
		if col.DType().IsNumeric() {
			names = append(names, col.Name())
			numeric = append(numeric, col)
		}
	}

	n := len(numeric)
	counts := make([]int32, n)
	stats := map[string][]float64{
		"mean": make([]float64, n), "std": make([]float64, n),
		"min": make([]float64, n), "median": make([]float64, n),
		"max": make([]float64, n),
	}
	valids := map[string][]bool{
		"mean": make([]bool, n), "std": make([]bool, n),
		"min": make([]bool, n), "median": make([]bool, n),
		"max": make([]bool, n),
	}

	set := func(key string, i int, v Value) {
		if v.IsNull() {
			return
		}
		f, _ := v.asF64()
		stats[key][i] = f
		valids[key][i] = true
	}

	for i, col := range numeric {
		counts[i] = int32(col.CountNonNull())
		if v, err := col.Mean(); err == nil {
			set("mean", i, v)
		}
		if v, err := col.StdDev(); err == nil {
			set("std", i, v)
		}
		if v, err := col.Min(); err == nil {
			set("min", i, v)
		}
		if v, err := col.Median(); err == nil {
			set("median", i, v)
		}
		if v, err := col.Max(); err == nil {
			set("max", i, v)
		}
	}

	return NewDataFrame(
		NewSeriesString("column", names),
		NewSeriesI32("count", counts),
		NewSeriesF64WithNulls("mean", stats["mean"], valids["mean"]),
		NewSeriesF64WithNulls("std_dev", stats["std"], valids["std"]),
		NewSeriesF64WithNulls("min", stats["min"], valids["min"]),
		NewSeriesF64WithNulls("median", stats["median"], valids["median"]),
		NewSeriesF64WithNulls("max", stats["max"], valids["max"]),
	)
}

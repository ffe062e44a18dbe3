package veloxx

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
)

// ParquetReadOptions configures Parquet reading behavior
type ParquetReadOptions struct {
	Columns []string // Only read these columns (nil = all)
	MaxRows int      // Max rows to read (0 = unlimited)
}

// colBuilder accumulates one column while reading parquet rows
type colBuilder struct {
	dtype   DType
	i32Data []int32
	f64Data []float64
	bsData  []bool
	strData []string
	tsData  []int64
	valid   []bool
}

func (b *colBuilder) appendNull() {
	switch b.dtype {
	case I32:
		b.i32Data = append(b.i32Data, 0)
	case F64:
		b.f64Data = append(b.f64Data, 0)
	case Bool:
		b.bsData = append(b.bsData, false)
	case String:
		b.strData = append(b.strData, "")
	case DateTime:
		b.tsData = append(b.tsData, 0)
	}
	b.valid = append(b.valid, false)
}

func (b *colBuilder) append(val parquet.Value) {
	if val.IsNull() {
		b.appendNull()
		return
	}
	switch b.dtype {
	case I32:
		b.i32Data = append(b.i32Data, val.Int32())
	case F64:
		b.f64Data = append(b.f64Data, val.Double())
	case Bool:
		b.bsData = append(b.bsData, val.Boolean())
	case String:
		b.strData = append(b.strData, string(val.ByteArray()))
	case DateTime:
		b.tsData = append(b.tsData, val.Int64())
	}
	b.valid = append(b.valid, true)
}

func (b *colBuilder) series(name string) *Series {
	switch b.dtype {
	case I32:
		return NewSeriesI32WithNulls(name, b.i32Data, b.valid)
	case F64:
		return NewSeriesF64WithNulls(name, b.f64Data, b.valid)
	case Bool:
		return NewSeriesBoolWithNulls(name, b.bsData, b.valid)
	case DateTime:
		return NewSeriesDateTimeWithNulls(name, b.tsData, b.valid)
	default:
		return NewSeriesStringWithNulls(name, b.strData, b.valid)
	}
}

// ReadParquet reads a Parquet file into a DataFrame
func ReadParquet(path string, opts ...ParquetReadOptions) (*DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return ReadParquetFromReader(f, stat.Size(), opts...)
}

// ReadParquetFromReader reads Parquet data from an io.ReaderAt into a
// DataFrame.
func ReadParquetFromReader(r io.ReaderAt, size int64, opts ...ParquetReadOptions) (*DataFrame, error) {
	opt := ParquetReadOptions{}
	if len(opts) > 0 {
		opt = opts[0]
	}

	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	schema := pf.Schema()

	var colNames []string
	if len(opt.Columns) > 0 {
		colNames = opt.Columns
	} else {
		fields := schema.Fields()
		colNames = make([]string, len(fields))
		for i, f := range fields {
			colNames[i] = f.Name()
		}
	}

	colIndexMap := make(map[string]int)
	for i, col := range schema.Columns() {
		if len(col) > 0 {
			colIndexMap[col[0]] = i
		}
	}

	builders := make([]colBuilder, len(colNames))
	colIndices := make([]int, len(colNames))
	for i, name := range colNames {
		idx, ok := colIndexMap[name]
		if !ok {
			return nil, fmt.Errorf("column '%s' not found in parquet file", name)
		}
		colIndices[i] = idx
		builders[i].dtype = parquetFieldToDType(schema, name)
	}

	rowCount := 0
	rowBuf := make([]parquet.Row, 1000)
	for _, rg := range pf.RowGroups() {
		if opt.MaxRows > 0 && rowCount >= opt.MaxRows {
			break
		}
		rows := rg.Rows()
		for {
			n, err := rows.ReadRows(rowBuf)
			if err != nil && err != io.EOF {
				rows.Close()
				return nil, fmt.Errorf("failed to read rows: %w", err)
			}
			if n == 0 {
				break
			}
			for _, row := range rowBuf[:n] {
				if opt.MaxRows > 0 && rowCount >= opt.MaxRows {
					break
				}
				for i, colIdx := range colIndices {
					if colIdx < len(row) {
						builders[i].append(row[colIdx])
					} else {
						builders[i].appendNull()
					}
				}
				rowCount++
			}
			if opt.MaxRows > 0 && rowCount >= opt.MaxRows {
				break
			}
		}
		rows.Close()
	}

	columns := make([]*Series, len(colNames))
	for i, name := range colNames {
		columns[i] = builders[i].series(name)
	}
	return NewDataFrame(columns...)
}

func parquetFieldToDType(schema *parquet.Schema, name string) DType {
	for _, col := range schema.Fields() {
		if col.Name() != name {
			continue
		}
		t := col.Type()
		if t == nil {
			return String
		}
		if lt := t.LogicalType(); lt != nil && lt.Timestamp != nil {
			return DateTime
		}
		switch t.Kind() {
		case parquet.Boolean:
			return Bool
		case parquet.Int32:
			return I32
		case parquet.Int64:
			return DateTime
		case parquet.Float, parquet.Double:
			return F64
		default:
			return String
		}
	}
	return String
}

// ParquetWriteOptions configures Parquet writing behavior
type ParquetWriteOptions struct {
	Compression string // "snappy", "gzip", "zstd", "none" (default "snappy")
}

// DefaultParquetWriteOptions returns default Parquet writing options
func DefaultParquetWriteOptions() ParquetWriteOptions {
	return ParquetWriteOptions{Compression: "snappy"}
}

// WriteParquet writes a DataFrame to a Parquet file
func WriteParquet(df *DataFrame, path string, opts ...ParquetWriteOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	return WriteParquetToWriter(df, f, opts...)
}

// WriteParquetToWriter writes a DataFrame as Parquet to an io.Writer
func WriteParquetToWriter(df *DataFrame, w io.Writer, opts ...ParquetWriteOptions) error {
	opt := DefaultParquetWriteOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	if df.Width() == 0 {
		return nil
	}

	group := make(parquet.Group)
	for _, col := range df.columns {
		group[col.Name()] = parquet.Optional(dtypeToParquetNode(col.DType()))
	}
	schema := parquet.NewSchema("dataframe", group)

	writerOpts := []parquet.WriterOption{schema}
	switch opt.Compression {
	case "snappy":
		writerOpts = append(writerOpts, parquet.Compression(&parquet.Snappy))
	case "gzip":
		writerOpts = append(writerOpts, parquet.Compression(&parquet.Gzip))
	case "zstd":
		writerOpts = append(writerOpts, parquet.Compression(&parquet.Zstd))
	}

	pw := parquet.NewWriter(w, writerOpts...)

	// The schema orders group fields by name; map frame columns onto
	// that order so row values line up.
	fieldPos := make(map[string]int, len(schema.Fields()))
	for i, f := range schema.Fields() {
		fieldPos[f.Name()] = i
	}

	const batchSize = 1000
	rows := make([]parquet.Row, 0, batchSize)
	for i := 0; i < df.Height(); i++ {
		row := make(parquet.Row, df.Width())
		for _, col := range df.columns {
			pos := fieldPos[col.Name()]
			if col.IsValid(i) {
				row[pos] = toParquetValue(col, i).Level(0, 1, pos)
			} else {
				row[pos] = parquet.NullValue().Level(0, 0, pos)
			}
		}
		rows = append(rows, row)
		if len(rows) >= batchSize {
			if _, err := pw.WriteRows(rows); err != nil {
				return fmt.Errorf("failed to write rows at %d: %w", i-len(rows)+1, err)
			}
			rows = rows[:0]
		}
	}
	if len(rows) > 0 {
		if _, err := pw.WriteRows(rows); err != nil {
			return fmt.Errorf("failed to write final rows: %w", err)
		}
	}

	return pw.Close()
}

func dtypeToParquetNode(dtype DType) parquet.Node {
	switch dtype {
	case I32:
		return parquet.Leaf(parquet.Int32Type)
	case F64:
		return parquet.Leaf(parquet.DoubleType)
	case Bool:
		return parquet.Leaf(parquet.BooleanType)
	case DateTime:
		return parquet.Leaf(parquet.Int64Type)
	default:
		return parquet.Leaf(parquet.ByteArrayType)
	}
}

func toParquetValue(col *Series, i int) parquet.Value {
	if !col.IsValid(i) {
		return parquet.NullValue()
	}
	switch col.DType() {
	case I32:
		return parquet.Int32Value(col.i32[i])
	case F64:
		return parquet.DoubleValue(col.f64[i])
	case Bool:
		return parquet.BooleanValue(col.bs[i])
	case DateTime:
		return parquet.Int64Value(col.ts[i])
	default:
		return parquet.ByteArrayValue([]byte(col.strs[i]))
	}
}

package veloxx

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Arrow interchange. The record boundary is how Arrow-speaking systems
// (Flight services, database bridges, the Parquet ecosystem) hand
// columnar batches to and from the engine. Validity masks map onto
// Arrow null bitmaps in both directions.

// ToArrow exports a DataFrame to an Arrow Record.
// The caller is responsible for calling Release() on the returned Record.
func (df *DataFrame) ToArrow(mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	fields := make([]arrow.Field, df.Width())
	for i, col := range df.columns {
		arrowType, err := dtypeToArrowType(col.DType())
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name(), err)
		}
		fields[i] = arrow.Field{Name: col.Name(), Type: arrowType, Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	arrays := make([]arrow.Array, df.Width())
	for i, col := range df.columns {
		arr, err := seriesToArrowArray(col, mem)
		if err != nil {
			for j := 0; j < i; j++ {
				arrays[j].Release()
			}
			return nil, fmt.Errorf("column %s: %w", col.Name(), err)
		}
		arrays[i] = arr
	}

	record := array.NewRecord(schema, arrays, int64(df.Height()))

	// Release arrays (Record retains them)
	for _, arr := range arrays {
		arr.Release()
	}

	return record, nil
}

// dtypeToArrowType converts an engine DType to an Arrow DataType
func dtypeToArrowType(dtype DType) (arrow.DataType, error) {
	switch dtype {
	case I32:
		return arrow.PrimitiveTypes.Int32, nil
	case F64:
		return arrow.PrimitiveTypes.Float64, nil
	case Bool:
		return arrow.FixedWidthTypes.Boolean, nil
	case String:
		return arrow.BinaryTypes.String, nil
	case DateTime:
		return arrow.FixedWidthTypes.Timestamp_s, nil
	default:
		return nil, fmt.Errorf("unsupported dtype: %s", dtype)
	}
}

// seriesToArrowArray converts a Series to an Arrow Array, carrying the
// validity mask through as the Arrow null bitmap.
func seriesToArrowArray(s *Series, mem memory.Allocator) (arrow.Array, error) {
	validity := s.Validity()

	switch s.DType() {
	case I32:
		builder := array.NewInt32Builder(mem)
		defer builder.Release()
		builder.AppendValues(s.Int32(), validity)
		return builder.NewArray(), nil

	case F64:
		builder := array.NewFloat64Builder(mem)
		defer builder.Release()
		builder.AppendValues(s.Float64(), validity)
		return builder.NewArray(), nil

	case Bool:
		builder := array.NewBooleanBuilder(mem)
		defer builder.Release()
		builder.AppendValues(s.Bools(), validity)
		return builder.NewArray(), nil

	case String:
		builder := array.NewStringBuilder(mem)
		defer builder.Release()
		builder.AppendValues(s.Strings(), validity)
		return builder.NewArray(), nil

	case DateTime:
		builder := array.NewTimestampBuilder(mem, arrow.FixedWidthTypes.Timestamp_s.(*arrow.TimestampType))
		defer builder.Release()
		for i, v := range s.Timestamps() {
			if validity != nil && !validity[i] {
				builder.AppendNull()
				continue
			}
			builder.Append(arrow.Timestamp(v))
		}
		return builder.NewArray(), nil

	default:
		return nil, fmt.Errorf("unsupported dtype for Arrow export: %s", s.DType())
	}
}

// NewDataFrameFromArrow creates a DataFrame from an Arrow Record.
func NewDataFrameFromArrow(record arrow.Record) (*DataFrame, error) {
	if record == nil {
		return nil, fmt.Errorf("record is nil")
	}

	schema := record.Schema()
	numCols := int(record.NumCols())
	series := make([]*Series, numCols)

	for i := 0; i < numCols; i++ {
		field := schema.Field(i)
		col := record.Column(i)

		s, err := arrowArrayToSeries(field.Name, col)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", field.Name, err)
		}
		series[i] = s
	}

	return NewDataFrame(series...)
}

// arrowValidity collects an Arrow array's null bitmap as a bool slice,
// or nil when every slot is set.
func arrowValidity(arr arrow.Array) []bool {
	if arr.NullN() == 0 {
		return nil
	}
	valid := make([]bool, arr.Len())
	for i := range valid {
		valid[i] = arr.IsValid(i)
	}
	return valid
}

// arrowArrayToSeries converts an Arrow Array to a Series
func arrowArrayToSeries(name string, arr arrow.Array) (*Series, error) {
	switch a := arr.(type) {
	case *array.Int32:
		data := make([]int32, a.Len())
		for i := 0; i < a.Len(); i++ {
			data[i] = a.Value(i)
		}
		return NewSeriesI32WithNulls(name, data, arrowValidity(arr)), nil

	case *array.Int64:
		data := make([]int32, a.Len())
		for i := 0; i < a.Len(); i++ {
			data[i] = int32(a.Value(i))
		}
		return NewSeriesI32WithNulls(name, data, arrowValidity(arr)), nil

	case *array.Float64:
		data := make([]float64, a.Len())
		for i := 0; i < a.Len(); i++ {
			data[i] = a.Value(i)
		}
		return NewSeriesF64WithNulls(name, data, arrowValidity(arr)), nil

	case *array.Float32:
		data := make([]float64, a.Len())
		for i := 0; i < a.Len(); i++ {
			data[i] = float64(a.Value(i))
		}
		return NewSeriesF64WithNulls(name, data, arrowValidity(arr)), nil

	case *array.Boolean:
		data := make([]bool, a.Len())
		for i := 0; i < a.Len(); i++ {
			data[i] = a.Value(i)
		}
		return NewSeriesBoolWithNulls(name, data, arrowValidity(arr)), nil

	case *array.String:
		data := make([]string, a.Len())
		for i := 0; i < a.Len(); i++ {
			data[i] = a.Value(i)
		}
		return NewSeriesStringWithNulls(name, data, arrowValidity(arr)), nil

	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		data := make([]int64, a.Len())
		for i := 0; i < a.Len(); i++ {
			data[i] = timestampToSeconds(int64(a.Value(i)), unit)
		}
		return NewSeriesDateTimeWithNulls(name, data, arrowValidity(arr)), nil

	default:
		return nil, fmt.Errorf("unsupported Arrow array type: %T", arr)
	}
}

func timestampToSeconds(v int64, unit arrow.TimeUnit) int64 {
	switch unit {
	case arrow.Second:
		return v
	case arrow.Millisecond:
		return v / 1_000
	case arrow.Microsecond:
		return v / 1_000_000
	default:
		return v / 1_000_000_000
	}
}

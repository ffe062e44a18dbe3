package veloxx

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// CSVReadOptions configures CSV reading behavior
type CSVReadOptions struct {
	Delimiter   rune             // Field delimiter (default ',')
	HasHeader   bool             // First row is header (default true)
	ColumnNames []string         // Override column names
	ColumnTypes map[string]DType // Force column types
	InferTypes  bool             // Auto-detect types (default true)
	NullValues  []string         // Strings to treat as null
	SkipRows    int              // Skip first N rows
	MaxRows     int              // Max rows to read (0 = unlimited)
	TrimSpace   bool             // Trim whitespace from values
	Comment     rune             // Skip lines starting with this
}

// DefaultCSVReadOptions returns default CSV reading options
func DefaultCSVReadOptions() CSVReadOptions {
	return CSVReadOptions{
		Delimiter:  ',',
		HasHeader:  true,
		InferTypes: true,
		NullValues: []string{"", "null", "NA"},
		TrimSpace:  true,
	}
}

// ReadCSV reads a CSV file into a DataFrame
func ReadCSV(path string, opts ...CSVReadOptions) (*DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return ReadCSVFromReader(f, opts...)
}

// ReadCSVFromReader reads CSV data from an io.Reader into a DataFrame
func ReadCSVFromReader(r io.Reader, opts ...CSVReadOptions) (*DataFrame, error) {
	opt := DefaultCSVReadOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.Delimiter == 0 {
		opt.Delimiter = ','
	}
	if opt.NullValues == nil {
		opt.NullValues = DefaultCSVReadOptions().NullValues
	}

	reader := csv.NewReader(r)
	reader.Comma = opt.Delimiter
	if opt.Comment != 0 {
		reader.Comment = opt.Comment
	}
	reader.TrimLeadingSpace = opt.TrimSpace

	for i := 0; i < opt.SkipRows; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, fmt.Errorf("failed to skip row %d: %w", i, err)
		}
	}

	var headers []string
	if opt.HasHeader {
		var err error
		headers, err = reader.Read()
		if err != nil {
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
	} else if len(opt.ColumnNames) > 0 {
		headers = opt.ColumnNames
	}

	var records [][]string
	rowCount := 0
	for {
		if opt.MaxRows > 0 && rowCount >= opt.MaxRows {
			break
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", rowCount, err)
		}
		if headers == nil {
			headers = make([]string, len(record))
			for i := range record {
				headers[i] = fmt.Sprintf("column_%d", i)
			}
		}
		if opt.TrimSpace {
			for i := range record {
				record[i] = strings.TrimSpace(record[i])
			}
		}
		records = append(records, record)
		rowCount++
	}

	if len(records) == 0 {
		if headers == nil {
			return NewDataFrame()
		}
		cols := make([]*Series, len(headers))
		for i, h := range headers {
			cols[i] = NewSeriesString(h, nil)
		}
		return NewDataFrame(cols...)
	}

	nullSet := make(map[string]bool, len(opt.NullValues))
	for _, nv := range opt.NullValues {
		nullSet[nv] = true
	}

	cols := parallelBuildColumns(len(headers), func(c int) *Series {
		cells := make([]string, len(records))
		valid := make([]bool, len(records))
		for r, record := range records {
			if c >= len(record) || nullSet[record[c]] {
				continue
			}
			cells[r] = record[c]
			valid[r] = true
		}
		dtype := String
		if forced, ok := opt.ColumnTypes[headers[c]]; ok {
			dtype = forced
		} else if opt.InferTypes {
			dtype = inferColumnType(cells, valid)
		}
		return buildTypedColumn(headers[c], dtype, cells, valid)
	})

	return NewDataFrame(cols...)
}

// inferColumnType picks the narrowest type admitting every non-null
// cell, trying I32, then F64, then Bool, then DateTime, else String.
func inferColumnType(cells []string, valid []bool) DType {
	for _, dtype := range []DType{I32, F64, Bool, DateTime} {
		ok := true
		any := false
		for i, cell := range cells {
			if !valid[i] {
				continue
			}
			any = true
			if !cellParsesAs(cell, dtype) {
				ok = false
				break
			}
		}
		if ok && any {
			return dtype
		}
	}
	return String
}

func cellParsesAs(cell string, dtype DType) bool {
	switch dtype {
	case I32:
		_, err := strconv.ParseInt(cell, 10, 32)
		return err == nil
	case F64:
		_, err := strconv.ParseFloat(cell, 64)
		return err == nil
	case Bool:
		lower := strings.ToLower(cell)
		return lower == "true" || lower == "false"
	case DateTime:
		_, err := time.Parse(time.RFC3339, cell)
		return err == nil
	}
	return true
}

// buildTypedColumn parses cells into the chosen dtype; unparseable
// cells degrade to null.
func buildTypedColumn(name string, dtype DType, cells []string, valid []bool) *Series {
	raw := NewSeriesStringWithNulls(name, cells, valid)
	if dtype == String {
		return raw
	}
	out, err := raw.Cast(dtype)
	if err != nil {
		return raw
	}
	return out
}

// CSVWriteOptions configures CSV writing behavior
type CSVWriteOptions struct {
	Delimiter   rune   // Field delimiter (default ',')
	WriteHeader bool   // Emit header row (default true)
	NullValue   string // Rendering for null cells (default "")
}

// DefaultCSVWriteOptions returns default CSV writing options
func DefaultCSVWriteOptions() CSVWriteOptions {
	return CSVWriteOptions{Delimiter: ',', WriteHeader: true}
}

// WriteCSV writes a DataFrame to a CSV file
func WriteCSV(df *DataFrame, path string, opts ...CSVWriteOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	return WriteCSVToWriter(df, f, opts...)
}

// WriteCSVToWriter writes a DataFrame as CSV to an io.Writer
func WriteCSVToWriter(df *DataFrame, w io.Writer, opts ...CSVWriteOptions) error {
	opt := DefaultCSVWriteOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.Delimiter == 0 {
		opt.Delimiter = ','
	}

	writer := csv.NewWriter(w)
	writer.Comma = opt.Delimiter

	if opt.WriteHeader {
		if err := writer.Write(df.Names()); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	record := make([]string, df.Width())
	for r := 0; r < df.Height(); r++ {
		for c, col := range df.columns {
			if !col.IsValid(r) {
				record[c] = opt.NullValue
				continue
			}
			record[c] = col.valueAt(r).String()
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

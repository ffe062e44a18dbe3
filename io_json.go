package veloxx

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"
)

// JSONFormat specifies the JSON document shape
type JSONFormat int

const (
	// JSONRecords is an array of row objects: [{"a":1,"b":2}, {"a":3}]
	JSONRecords JSONFormat = iota
	// JSONColumns is an object of column arrays: {"a":[1,3],"b":[2,4]}
	JSONColumns
)

// JSONReadOptions configures JSON reading behavior
type JSONReadOptions struct {
	Format      JSONFormat       // Expected document shape
	ColumnTypes map[string]DType // Force column types
}

// DefaultJSONReadOptions returns default JSON reading options
func DefaultJSONReadOptions() JSONReadOptions {
	return JSONReadOptions{Format: JSONRecords}
}

// ReadJSON reads a JSON file into a DataFrame
func ReadJSON(path string, opts ...JSONReadOptions) (*DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return ReadJSONFromReader(f, opts...)
}

// ReadJSONFromReader reads JSON data from an io.Reader into a DataFrame
func ReadJSONFromReader(r io.Reader, opts ...JSONReadOptions) (*DataFrame, error) {
	opt := DefaultJSONReadOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	switch opt.Format {
	case JSONColumns:
		var doc map[string][]interface{}
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode json: %w", err)
		}
		// Column order from a JSON object is not defined; sort names so
		// repeated reads produce the same frame.
		names := sortedKeys(doc)
		cols := make([]*Series, 0, len(names))
		for _, name := range names {
			forced, hasForced := opt.ColumnTypes[name]
			cols = append(cols, jsonColumn(name, doc[name], forced, hasForced))
		}
		return NewDataFrame(cols...)

	default:
		var rows []map[string]interface{}
		if err := json.NewDecoder(r).Decode(&rows); err != nil {
			return nil, fmt.Errorf("failed to decode json: %w", err)
		}
		// Columns follow first appearance across the records; within one
		// record, keys are taken in sorted order because the decoded map
		// does not keep document order.
		var names []string
		seen := make(map[string]bool)
		for _, row := range rows {
			for _, name := range sortedKeys(row) {
				if !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
			}
		}
		cols := make([]*Series, 0, len(names))
		for _, name := range names {
			cells := make([]interface{}, len(rows))
			for i, row := range rows {
				cells[i] = row[name]
			}
			forced, hasForced := opt.ColumnTypes[name]
			cols = append(cols, jsonColumn(name, cells, forced, hasForced))
		}
		return NewDataFrame(cols...)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// jsonColumn converts decoded JSON cells into a typed Series, rendering
// each cell to text and reusing the adapter inference rules.
func jsonColumn(name string, cells []interface{}, forced DType, hasForced bool) *Series {
	text := make([]string, len(cells))
	valid := make([]bool, len(cells))
	for i, cell := range cells {
		switch v := cell.(type) {
		case nil:
			continue
		case string:
			text[i] = v
		case bool:
			if v {
				text[i] = "true"
			} else {
				text[i] = "false"
			}
		case float64:
			text[i] = strconv.FormatFloat(v, 'g', -1, 64)
		default:
			text[i] = fmt.Sprintf("%v", v)
		}
		valid[i] = true
	}
	dtype := forced
	if !hasForced {
		dtype = inferColumnType(text, valid)
	}
	return buildTypedColumn(name, dtype, text, valid)
}

// JSONWriteOptions configures JSON writing behavior
type JSONWriteOptions struct {
	Format JSONFormat
	Indent string
}

// WriteJSON writes a DataFrame to a JSON file
func WriteJSON(df *DataFrame, path string, opts ...JSONWriteOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	return WriteJSONToWriter(df, f, opts...)
}

// WriteJSONToWriter writes a DataFrame as JSON to an io.Writer
func WriteJSONToWriter(df *DataFrame, w io.Writer, opts ...JSONWriteOptions) error {
	opt := JSONWriteOptions{Format: JSONRecords}
	if len(opts) > 0 {
		opt = opts[0]
	}

	enc := json.NewEncoder(w)
	if opt.Indent != "" {
		enc.SetIndent("", opt.Indent)
	}

	if opt.Format == JSONColumns {
		doc := make(map[string][]interface{}, df.Width())
		for _, col := range df.columns {
			doc[col.Name()] = columnToJSON(col)
		}
		return enc.Encode(doc)
	}

	rows := make([]map[string]interface{}, df.Height())
	for r := range rows {
		row := make(map[string]interface{}, df.Width())
		for _, col := range df.columns {
			row[col.Name()] = cellToJSON(col, r)
		}
		rows[r] = row
	}
	return enc.Encode(rows)
}

func columnToJSON(col *Series) []interface{} {
	out := make([]interface{}, col.Len())
	for i := range out {
		out[i] = cellToJSON(col, i)
	}
	return out
}

func cellToJSON(col *Series, i int) interface{} {
	if !col.IsValid(i) {
		return nil
	}
	switch col.DType() {
	case I32:
		return col.i32[i]
	case F64:
		return col.f64[i]
	case Bool:
		return col.bs[i]
	case String:
		return col.strs[i]
	case DateTime:
		return time.Unix(col.ts[i], 0).UTC().Format(time.RFC3339)
	}
	return nil
}

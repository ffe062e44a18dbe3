package veloxx

import "fmt"

// DType represents the data type of a Series
type DType uint8

const (
	I32 DType = iota
	F64
	Bool
	String
	DateTime

	// Null tags the null Value; it is never the dtype of a Series.
	Null
)

// String returns the string representation of the DType
func (d DType) String() string {
	switch d {
	case I32:
		return "I32"
	case F64:
		return "F64"
	case Bool:
		return "Bool"
	case String:
		return "String"
	case DateTime:
		return "DateTime"
	case Null:
		return "Null"
	default:
		return fmt.Sprintf("Unknown(%d)", d)
	}
}

// IsNumeric returns true if the dtype is a numeric type
func (d DType) IsNumeric() bool {
	return d == I32 || d == F64
}

// Size returns the size in bytes of one element of the dtype
func (d DType) Size() int {
	switch d {
	case F64, DateTime:
		return 8
	case I32:
		return 4
	case Bool:
		return 1
	case String:
		return -1 // Variable size
	default:
		return 0
	}
}

// Schema represents the schema of a DataFrame
type Schema struct {
	names  []string
	dtypes []DType
}

// NewSchema creates a new schema from column names and types
func NewSchema(names []string, dtypes []DType) (*Schema, error) {
	if len(names) != len(dtypes) {
		return nil, newError(KindLengthMismatch, "names and dtypes must have same length: %d != %d", len(names), len(dtypes))
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			return nil, newColumnError(KindDuplicateColumn, name, "duplicate column name: %s", name)
		}
		seen[name] = true
	}

	return &Schema{
		names:  append([]string{}, names...),
		dtypes: append([]DType{}, dtypes...),
	}, nil
}

// Len returns the number of columns in the schema
func (s *Schema) Len() int {
	return len(s.names)
}

// Names returns the column names
func (s *Schema) Names() []string {
	return append([]string{}, s.names...)
}

// DTypes returns the column data types
func (s *Schema) DTypes() []DType {
	return append([]DType{}, s.dtypes...)
}

// GetDType returns the dtype for a column name
func (s *Schema) GetDType(name string) (DType, bool) {
	for i, n := range s.names {
		if n == name {
			return s.dtypes[i], true
		}
	}
	return Null, false
}

// GetIndex returns the index of a column name
func (s *Schema) GetIndex(name string) (int, bool) {
	for i, n := range s.names {
		if n == name {
			return i, true
		}
	}
	return -1, false
}

// String returns a string representation of the schema
func (s *Schema) String() string {
	result := "Schema{\n"
	for i, name := range s.names {
		result += fmt.Sprintf("  %s: %s\n", name, s.dtypes[i])
	}
	result += "}"
	return result
}

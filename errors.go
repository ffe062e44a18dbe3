package veloxx

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine errors into the semantic kinds callers
// dispatch on. Operators fail fast and atomically: an error means no
// partial output was produced.
type ErrorKind int

const (
	KindColumnNotFound ErrorKind = iota
	KindDuplicateColumn
	KindLengthMismatch
	KindTypeMismatch
	KindOutOfBounds
	KindSchemaMismatch
	KindEmptyArgument
	KindEmptyColumnName
	KindInvalidCast
)

func (k ErrorKind) String() string {
	switch k {
	case KindColumnNotFound:
		return "ColumnNotFound"
	case KindDuplicateColumn:
		return "DuplicateColumn"
	case KindLengthMismatch:
		return "LengthMismatch"
	case KindTypeMismatch:
		return "TypeMismatch"
	case KindOutOfBounds:
		return "OutOfBounds"
	case KindSchemaMismatch:
		return "SchemaMismatch"
	case KindEmptyArgument:
		return "EmptyArgument"
	case KindEmptyColumnName:
		return "EmptyColumnName"
	case KindInvalidCast:
		return "InvalidCast"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Error is the concrete error type returned by every fallible operation.
// Column and Index carry the offending column name or row index when the
// failure has one.
type Error struct {
	Kind   ErrorKind
	Column string
	Index  int
	msg    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

// Is reports whether target is an *Error with the same kind, so callers
// can match with errors.Is against sentinel kinds.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Index: -1, msg: fmt.Sprintf(format, args...)}
}

func newColumnError(kind ErrorKind, column, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Column: column, Index: -1, msg: fmt.Sprintf(format, args...)}
}

func newIndexError(kind ErrorKind, index int, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Index: index, msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the ErrorKind from err, if err is (or wraps) an *Error.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is (or wraps) an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

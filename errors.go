package searchparams

import (
	"fmt"
	"reflect"
)

// An InvalidTupleError is returned when params are built from a list of
// pairs and one of the items is not a [name, value] pair.
type InvalidTupleError struct {
	// Index is the position of the first offending item.
	Index int
}

// Msg returns a human-readable description of the problem.
func (e *InvalidTupleError) Msg() string {
	return fmt.Sprintf("Each query pair must be an iterable [name, value] tuple on index [%d]", e.Index)
}

// Error implements the error interface
func (e *InvalidTupleError) Error() string {
	return "[ERR_INVALID_TUPLE]: " + e.Msg()
}

// An UnsupportedTypeError is returned for Go values that cannot be
// represented in a query, like channels or functions.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported type: %v", e.Type)
}

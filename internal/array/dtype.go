// Package array provides the dense container of the Joule runtime:
// column-major multi-dimensional arrays over the runtime's element types,
// and unevaluated integer ranges.
package array

import (
	"github.com/x448/float16"
)

// DataType is the runtime element type of an Array's storage.
type DataType int

// Supported storage types.
//
// Any is the escape hatch: a storage of boxed values used when an
// elementwise function produces non-numeric or mixed results.
const (
	Float64 DataType = iota
	Float16
	Int64
	Bool
	Any
)

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float64:
		return "float64"
	case Float16:
		return "float16"
	case Int64:
		return "int64"
	case Bool:
		return "bool"
	case Any:
		return "any"
	default:
		return "unknown"
	}
}

// TypeOf returns the DataType whose storage holds v without boxing.
// Everything outside the numeric/bool set maps to Any.
func TypeOf(v any) DataType {
	switch v.(type) {
	case float64:
		return Float64
	case float16.Float16:
		return Float16
	case int64:
		return Int64
	case bool:
		return Bool
	default:
		return Any
	}
}

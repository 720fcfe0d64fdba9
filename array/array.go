// Copyright 2026 The Joule Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package array provides the public API for the Joule runtime's dense
// containers: column-major multi-dimensional arrays and unevaluated
// integer ranges. These are the container operands understood by the
// broadcast package.
package array

import (
	"github.com/x448/float16"

	"github.com/joule-lang/joule/internal/array"
	"github.com/joule-lang/joule/internal/shape"
)

// Shape is the ordered sequence of dimension extents of a value.
// Example: Shape{2, 3} is a 2×3 matrix; an empty Shape is a scalar.
type Shape = shape.Shape

// DimensionMismatchError reports two operands that disagree on a non-1
// extent at the same dimension.
type DimensionMismatchError = shape.DimensionMismatchError

// Array is a dense column-major container.
type Array = array.Array

// Range is an unevaluated arithmetic progression of integers.
type Range = array.Range

// DataType is the runtime element type of an Array's storage.
type DataType = array.DataType

// Storage type constants.
const (
	Float64 DataType = array.Float64
	Float16 DataType = array.Float16
	Int64   DataType = array.Int64
	Bool    DataType = array.Bool
	Any     DataType = array.Any
)

// New allocates a zero-initialized Array with the given shape and type.
func New(s Shape, dtype DataType) (*Array, error) {
	return array.New(s, dtype)
}

// FromFloat64 builds an Array over a copy of data, laid out in
// column-major order.
func FromFloat64(data []float64, s Shape) (*Array, error) {
	return array.FromFloat64(data, s)
}

// FromFloat16 builds an Array over a copy of data.
func FromFloat16(data []float16.Float16, s Shape) (*Array, error) {
	return array.FromFloat16(data, s)
}

// FromInt64 builds an Array over a copy of data.
func FromInt64(data []int64, s Shape) (*Array, error) {
	return array.FromInt64(data, s)
}

// FromBool builds an Array over a copy of data.
func FromBool(data []bool, s Shape) (*Array, error) {
	return array.FromBool(data, s)
}

// FromValues builds an Any-typed Array over a copy of data.
func FromValues(data []any, s Shape) (*Array, error) {
	return array.FromValues(data, s)
}

// NewRange builds the inclusive integer range lo:hi with step 1.
func NewRange(lo, hi int64) *Range {
	return array.NewRange(lo, hi)
}

// Combine merges operand shapes under size-1 broadcasting rules.
func Combine(shapes ...Shape) (Shape, error) {
	return shape.Combine(shapes...)
}

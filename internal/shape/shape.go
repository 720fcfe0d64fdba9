// Package shape implements the shape algebra of the Joule runtime:
// dimension extents, size-1 broadcasting rules, column-major strides,
// and the extrusion scheme used to index broadcast operands in place.
package shape

import "fmt"

// Shape is the ordered sequence of dimension extents of a value.
// Rank is len(s); a nil or empty Shape is a zero-dimensional scalar.
// Dimensions missing at the tail are treated as extent 1.
type Shape []int

// Rank returns the number of dimensions.
func (s Shape) Rank() int {
	return len(s)
}

// NumElements returns the total number of elements.
// A zero-dimensional shape has exactly one element.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Dim returns the extent at dimension d, or 1 when d is beyond the rank.
func (s Shape) Dim(d int) int {
	if d >= len(s) {
		return 1
	}
	return s[d]
}

// Validate checks that every extent is non-negative.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim < 0 {
			return fmt.Errorf("invalid extent at dimension %d: %d (must be >= 0)", i, dim)
		}
	}
	return nil
}

// Equal reports whether two shapes have identical rank and extents.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// Strides calculates column-major strides for the shape.
// The first dimension is contiguous: stride[0] = 1,
// stride[i] = stride[i-1] * extent[i-1].
func (s Shape) Strides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[0] = 1
	for i := 1; i < len(s); i++ {
		strides[i] = strides[i-1] * s[i-1]
	}
	return strides
}

// DimensionMismatchError reports two operands that disagree on a non-1
// extent at the same dimension.
type DimensionMismatchError struct {
	Dim  int // Conflicting dimension (0-based).
	A, B int // The two incompatible extents.
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: extents %d and %d at dimension %d cannot be broadcast together",
		e.A, e.B, e.Dim)
}

// Combine merges the shapes of all operands into one broadcast target
// shape.
//
// Shapes align on their leading dimensions; trailing missing dimensions
// count as 1. At each dimension the extents must all be 1 or all equal a
// single non-1 value V; the combined extent is V (or 1 when every operand
// has 1). Two distinct non-1 extents at the same dimension fail with
// DimensionMismatchError.
//
// Combine is associative and commutative over its operand list, so the
// inferred shape is independent of composition order. Fusing nested
// expressions relies on this.
//
// Examples:
//
//	Combine({3, 1}, {3, 5}) → {3, 5}
//	Combine({5}, {})        → {5}
//	Combine({3}, {4})       → DimensionMismatchError
func Combine(shapes ...Shape) (Shape, error) {
	rank := 0
	for _, s := range shapes {
		if len(s) > rank {
			rank = len(s)
		}
	}

	result := make(Shape, rank)
	for d := 0; d < rank; d++ {
		extent := 1
		for _, s := range shapes {
			dim := s.Dim(d)
			switch {
			case dim == 1 || dim == extent:
				// No constraint added.
			case extent == 1:
				extent = dim
			default:
				return nil, &DimensionMismatchError{Dim: d, A: extent, B: dim}
			}
		}
		result[d] = extent
	}

	return result, nil
}

// Compatible reports whether writing a value of shape src into a
// destination of shape dst is legal: every non-1 extent of src must equal
// the destination extent at that dimension, and src may not extend past
// dst's rank with non-1 extents. Returns the offending dimension on
// failure.
func Compatible(dst, src Shape) error {
	rank := len(src)
	if len(dst) > rank {
		rank = len(dst)
	}
	for d := 0; d < rank; d++ {
		sd := src.Dim(d)
		if sd != 1 && sd != dst.Dim(d) {
			return &DimensionMismatchError{Dim: d, A: dst.Dim(d), B: sd}
		}
	}
	return nil
}

// Next advances idx to the following position of s in column-major order
// (first dimension varying fastest). It returns false when idx was the
// last position. idx must have length s.Rank().
func Next(idx []int, s Shape) bool {
	for d := 0; d < len(idx); d++ {
		idx[d]++
		if idx[d] < s[d] {
			return true
		}
		idx[d] = 0
	}
	return false
}

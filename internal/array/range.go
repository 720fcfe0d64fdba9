package array

import (
	"fmt"

	"github.com/joule-lang/joule/internal/shape"
)

// Range is an unevaluated arithmetic progression of integers: Start,
// Start+Step, ... with Len elements. It broadcasts like a rank-1 array
// but never materializes its elements.
type Range struct {
	Start int64
	Step  int64
	Len   int
}

// NewRange builds the inclusive range lo:hi with step 1, empty when
// hi < lo.
func NewRange(lo, hi int64) *Range {
	n := int(hi - lo + 1)
	if n < 0 {
		n = 0
	}
	return &Range{Start: lo, Step: 1, Len: n}
}

// Shape returns the range's rank-1 shape.
func (r *Range) Shape() shape.Shape {
	return shape.Shape{r.Len}
}

// At returns the i-th element.
func (r *Range) At(i int) int64 {
	if i < 0 || i >= r.Len {
		panic(fmt.Sprintf("index %d out of bounds for range of length %d", i, r.Len))
	}
	return r.Start + int64(i)*r.Step
}

// String returns the range in lo:step:hi notation.
func (r *Range) String() string {
	if r.Len == 0 {
		return "empty range"
	}
	last := r.Start + int64(r.Len-1)*r.Step
	if r.Step == 1 {
		return fmt.Sprintf("%d:%d", r.Start, last)
	}
	return fmt.Sprintf("%d:%d:%d", r.Start, r.Step, last)
}

package array

import (
	"fmt"

	"github.com/x448/float16"

	"github.com/joule-lang/joule/internal/shape"
)

// Array is a dense column-major container. Storage is one of the typed
// slices selected by dtype; exactly one of them is non-nil.
type Array struct {
	shape   shape.Shape
	strides []int
	dtype   DataType

	f64   []float64
	f16   []float16.Float16
	i64   []int64
	bools []bool
	vals  []any
}

// New allocates a zero-initialized Array with the given shape and type.
func New(s shape.Shape, dtype DataType) (*Array, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	a := &Array{
		shape:   s.Clone(),
		strides: s.Strides(),
		dtype:   dtype,
	}

	n := s.NumElements()
	switch dtype {
	case Float64:
		a.f64 = make([]float64, n)
	case Float16:
		a.f16 = make([]float16.Float16, n)
	case Int64:
		a.i64 = make([]int64, n)
	case Bool:
		a.bools = make([]bool, n)
	case Any:
		a.vals = make([]any, n)
	default:
		return nil, fmt.Errorf("unknown data type %d", dtype)
	}

	return a, nil
}

// FromFloat64 builds an Array over a copy of data.
func FromFloat64(data []float64, s shape.Shape) (*Array, error) {
	a, err := newChecked(s, Float64, len(data))
	if err != nil {
		return nil, err
	}
	copy(a.f64, data)
	return a, nil
}

// FromInt64 builds an Array over a copy of data.
func FromInt64(data []int64, s shape.Shape) (*Array, error) {
	a, err := newChecked(s, Int64, len(data))
	if err != nil {
		return nil, err
	}
	copy(a.i64, data)
	return a, nil
}

// FromFloat16 builds an Array over a copy of data.
func FromFloat16(data []float16.Float16, s shape.Shape) (*Array, error) {
	a, err := newChecked(s, Float16, len(data))
	if err != nil {
		return nil, err
	}
	copy(a.f16, data)
	return a, nil
}

// FromBool builds an Array over a copy of data.
func FromBool(data []bool, s shape.Shape) (*Array, error) {
	a, err := newChecked(s, Bool, len(data))
	if err != nil {
		return nil, err
	}
	copy(a.bools, data)
	return a, nil
}

// FromValues builds an Any-typed Array over a copy of data.
func FromValues(data []any, s shape.Shape) (*Array, error) {
	a, err := newChecked(s, Any, len(data))
	if err != nil {
		return nil, err
	}
	copy(a.vals, data)
	return a, nil
}

func newChecked(s shape.Shape, dtype DataType, n int) (*Array, error) {
	if s.NumElements() != n {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", s, s.NumElements(), n)
	}
	return New(s, dtype)
}

// Shape returns the array's shape.
func (a *Array) Shape() shape.Shape {
	return a.shape
}

// Strides returns the array's column-major strides.
func (a *Array) Strides() []int {
	return a.strides
}

// DType returns the array's storage type.
func (a *Array) DType() DataType {
	return a.dtype
}

// NumElements returns the total number of elements.
func (a *Array) NumElements() int {
	return a.shape.NumElements()
}

// AsFloat64 returns the storage as []float64 in column-major order.
// Panics if the array's dtype is not Float64.
func (a *Array) AsFloat64() []float64 {
	if a.dtype != Float64 {
		panic(fmt.Sprintf("array dtype is %s, not float64", a.dtype))
	}
	return a.f64
}

// AsFloat16 returns the storage as []float16.Float16.
// Panics if the array's dtype is not Float16.
func (a *Array) AsFloat16() []float16.Float16 {
	if a.dtype != Float16 {
		panic(fmt.Sprintf("array dtype is %s, not float16", a.dtype))
	}
	return a.f16
}

// AsInt64 returns the storage as []int64 in column-major order.
// Panics if the array's dtype is not Int64.
func (a *Array) AsInt64() []int64 {
	if a.dtype != Int64 {
		panic(fmt.Sprintf("array dtype is %s, not int64", a.dtype))
	}
	return a.i64
}

// AsBool returns the storage as []bool.
// Panics if the array's dtype is not Bool.
func (a *Array) AsBool() []bool {
	if a.dtype != Bool {
		panic(fmt.Sprintf("array dtype is %s, not bool", a.dtype))
	}
	return a.bools
}

// AsValues returns the storage as boxed values.
// Panics if the array's dtype is not Any.
func (a *Array) AsValues() []any {
	if a.dtype != Any {
		panic(fmt.Sprintf("array dtype is %s, not any", a.dtype))
	}
	return a.vals
}

// Offset computes the flat column-major offset of a multi-index.
// idx may be longer than the array's rank; extra dimensions must index
// the implicit extent-1 tail and are ignored.
func (a *Array) Offset(idx []int) int {
	off := 0
	for d, i := range idx {
		if d >= len(a.strides) {
			break
		}
		if i < 0 || i >= a.shape[d] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (extent %d)", i, d, a.shape[d]))
		}
		off += i * a.strides[d]
	}
	return off
}

// GetFlat returns the boxed element at a flat column-major offset.
func (a *Array) GetFlat(off int) any {
	switch a.dtype {
	case Float64:
		return a.f64[off]
	case Float16:
		return a.f16[off]
	case Int64:
		return a.i64[off]
	case Bool:
		return a.bools[off]
	default:
		return a.vals[off]
	}
}

// Get returns the boxed element at a multi-index.
func (a *Array) Get(idx ...int) any {
	return a.GetFlat(a.Offset(idx))
}

// SetFlat stores v at a flat column-major offset, converting to the
// storage type. Panics when v does not fit the storage.
func (a *Array) SetFlat(off int, v any) {
	switch a.dtype {
	case Float64:
		a.f64[off] = asFloat64(v)
	case Float16:
		f, ok := v.(float16.Float16)
		if !ok {
			f = float16.Fromfloat32(float32(asFloat64(v)))
		}
		a.f16[off] = f
	case Int64:
		i, ok := v.(int64)
		if !ok {
			panic(fmt.Sprintf("cannot store %T in int64 array", v))
		}
		a.i64[off] = i
	case Bool:
		b, ok := v.(bool)
		if !ok {
			panic(fmt.Sprintf("cannot store %T in bool array", v))
		}
		a.bools[off] = b
	default:
		a.vals[off] = v
	}
}

// Set stores v at a multi-index.
func (a *Array) Set(v any, idx ...int) {
	a.SetFlat(a.Offset(idx), v)
}

func asFloat64(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	case float16.Float16:
		return float64(x.Float32())
	default:
		panic(fmt.Sprintf("cannot store %T in float64 array", v))
	}
}

// Clone creates a deep copy of the array.
func (a *Array) Clone() *Array {
	c := &Array{
		shape:   a.shape.Clone(),
		strides: append([]int(nil), a.strides...),
		dtype:   a.dtype,
	}
	switch a.dtype {
	case Float64:
		c.f64 = append([]float64(nil), a.f64...)
	case Float16:
		c.f16 = append([]float16.Float16(nil), a.f16...)
	case Int64:
		c.i64 = append([]int64(nil), a.i64...)
	case Bool:
		c.bools = append([]bool(nil), a.bools...)
	default:
		c.vals = append([]any(nil), a.vals...)
	}
	return c
}

// String returns a short description of the array.
func (a *Array) String() string {
	return fmt.Sprintf("Array[%s]%v", a.dtype, []int(a.shape))
}

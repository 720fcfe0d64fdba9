// Package broadcast implements the generalized broadcasting engine of
// the Joule runtime: lazy elementwise expression trees, fusion of nested
// trees into one evaluation pass, and materialization into dense arrays
// with size-1 dimension broadcasting.
package broadcast

import (
	"fmt"
	"strings"

	"github.com/joule-lang/joule/internal/array"
	"github.com/joule-lang/joule/internal/shape"
)

// Value is one runtime value of the Joule language.
type Value = any

// Operand is one argument of a broadcast expression. It is a closed
// variant dispatched by type switch: *array.Array, *array.Range, *Ref,
// *Expr, and anything else is treated as a scalar.
type Operand = any

// Func is an n-ary elementwise function applied by the engine. How a
// Func was resolved is the dispatcher's business; the engine only calls
// it. Implementations must be comparable types so that fast paths can
// recognize the builtin operators by identity.
type Func interface {
	Name() string
	Call(args []Value) (Value, error)
}

// userFunc wraps an arbitrary Go closure as a Func.
type userFunc struct {
	name string
	fn   func(args []Value) (Value, error)
}

func (f *userFunc) Name() string { return f.name }

func (f *userFunc) Call(args []Value) (Value, error) { return f.fn(args) }

// NewFunc wraps fn as a Func for use with Broadcasted.
func NewFunc(name string, fn func(args []Value) (Value, error)) Func {
	return &userFunc{name: name, fn: fn}
}

// Ref boxes a single value so it broadcasts as one repeated cell. It is
// unwrapped exactly once: a Ref holding an array broadcasts the whole
// array as a scalar.
type Ref struct {
	V Value
}

// Expr is a lazy broadcast expression: a function applied elementwise to
// a list of operands. An Expr is immutable pure data; composing nested
// calls builds a persistent tree and never evaluates anything. The
// resolved target shape is memoized on first use.
type Expr struct {
	fn   Func
	args []Operand

	axes     shape.Shape
	resolved bool
}

// Broadcasted composes a lazy broadcast expression. It never fails;
// incompatible shapes surface later, the first time axes are resolved.
func Broadcasted(fn Func, args ...Operand) *Expr {
	return &Expr{fn: fn, args: append([]Operand(nil), args...)}
}

// Func returns the expression's function.
func (e *Expr) Func() Func { return e.fn }

// Args returns the expression's operand list. Callers must not mutate it.
func (e *Expr) Args() []Operand { return e.args }

// Axes resolves and memoizes the broadcast target shape of the
// expression, combining the shapes of all operands (recursing into
// nested expressions). The first resolution may fail with a
// DimensionMismatchError.
func (e *Expr) Axes() (shape.Shape, error) {
	if e.resolved {
		return e.axes, nil
	}

	shapes := make([]shape.Shape, len(e.args))
	for i, arg := range e.args {
		s, err := axesOf(arg)
		if err != nil {
			return nil, err
		}
		shapes[i] = s
	}

	combined, err := shape.Combine(shapes...)
	if err != nil {
		return nil, err
	}

	e.axes = combined
	e.resolved = true
	return combined, nil
}

// Len returns the total number of output elements.
func (e *Expr) Len() (int, error) {
	ax, err := e.Axes()
	if err != nil {
		return 0, err
	}
	return ax.NumElements(), nil
}

// ElementAt evaluates the single output element at a target position
// without materializing anything. idx is relative to the expression's
// own axes; size-1 operand dimensions collapse to the origin.
func (e *Expr) ElementAt(idx []int) (Value, error) {
	if _, err := e.Axes(); err != nil {
		return nil, err
	}

	vals := make([]Value, len(e.args))
	for i, arg := range e.args {
		v, err := operandAt(arg, idx)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return e.fn.Call(vals)
}

// String renders the expression in dotted-call notation, e.g.
// "+.(Array[float64][3], 2)".
func (e *Expr) String() string {
	parts := make([]string, len(e.args))
	for i, arg := range e.args {
		parts[i] = fmt.Sprintf("%v", arg)
	}
	return fmt.Sprintf("%s.(%s)", e.fn.Name(), strings.Join(parts, ", "))
}

// axesOf returns the broadcast shape contributed by one operand.
// Scalars and Refs are zero-dimensional.
func axesOf(op Operand) (shape.Shape, error) {
	switch v := op.(type) {
	case *array.Array:
		return v.Shape(), nil
	case *array.Range:
		return v.Shape(), nil
	case *Expr:
		return v.Axes()
	default:
		return shape.Shape{}, nil
	}
}

// operandAt fetches one operand's element for a target position,
// translating the position through the operand's extrusion: dimensions
// where the operand has extent 1 (or no extent at all) pin to the
// origin. Scalars return themselves regardless of position.
func operandAt(op Operand, idx []int) (Value, error) {
	switch v := op.(type) {
	case *array.Array:
		return v.GetFlat(extrudedOffset(v, idx)), nil
	case *array.Range:
		i := 0
		if v.Len != 1 && len(idx) > 0 {
			i = idx[0]
		}
		return v.At(i), nil
	case *Expr:
		return v.ElementAt(idx)
	case *Ref:
		return v.V, nil
	default:
		return v, nil
	}
}

// extrudedOffset maps a target position to a flat offset of a, treating
// a's size-1 dimensions as repeated.
func extrudedOffset(a *array.Array, idx []int) int {
	off := 0
	s := a.Shape()
	strides := a.Strides()
	for d := 0; d < len(s) && d < len(idx); d++ {
		if s[d] != 1 {
			off += idx[d] * strides[d]
		}
	}
	return off
}

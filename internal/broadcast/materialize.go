package broadcast

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/joule-lang/joule/internal/array"
	"github.com/joule-lang/joule/internal/shape"
)

// Broadcast eagerly applies fn elementwise across args with
// broadcasting, returning a fresh *array.Array, or a bare scalar when
// every operand is zero-dimensional.
func Broadcast(fn Func, args ...Operand) (Value, error) {
	return Materialize(Broadcasted(fn, args...))
}

// BroadcastInto eagerly applies fn elementwise across args, writing the
// result into dest.
func BroadcastInto(dest *array.Array, fn Func, args ...Operand) error {
	return MaterializeInto(dest, Broadcasted(fn, args...))
}

// Materialize fuses and evaluates a lazy expression into a concrete
// value: a fresh array, or a bare scalar for a zero-dimensional result.
func Materialize(e *Expr) (Value, error) {
	return Copy(Flatten(e))
}

// MaterializeInto evaluates a lazy expression into dest. The
// destination's shape drives the broadcast: operands only need to be
// compatible with dest, so a node narrower than dest is repeated to
// fill it.
func MaterializeInto(dest *array.Array, e *Expr) error {
	return CopyTo(dest, e)
}

// Copy instantiates the expression's axes and materializes into a
// freshly allocated destination. A zero-dimensional result (every
// operand scalar) is evaluated directly and returned as a bare scalar,
// never as a 1-element array. The element type of the allocation is
// inferred by sampling one evaluation at the origin.
func Copy(e *Expr) (Value, error) {
	ax, err := e.Axes()
	if err != nil {
		return nil, err
	}

	if ax.Rank() == 0 {
		return e.ElementAt(nil)
	}

	if ax.NumElements() == 0 {
		// Nothing to sample; an empty result is typed Any.
		return array.New(ax, array.Any)
	}

	origin := make([]int, ax.Rank())
	sample, err := e.ElementAt(origin)
	if err != nil {
		return nil, err
	}

	dtype := array.TypeOf(sample)
	if klog.V(2).Enabled() {
		klog.Infof("broadcast: allocating %s destination %v for %s", dtype, []int(ax), e)
	}

	dest, err := array.New(ax, dtype)
	if err != nil {
		return nil, err
	}
	if err := CopyTo(dest, e); err != nil {
		return nil, err
	}
	return dest, nil
}

// CopyTo evaluates the expression once per position of dest, writing
// results in column-major order (first dimension varying fastest).
//
// The destination shape is validated against the expression's axes
// before any write, so a shape failure never partially mutates dest. A
// leaf operand that is dest itself is replaced by a defensive copy, so
// in-place updates read pre-update values. An error from the applied
// function propagates as-is and may leave dest partially written.
func CopyTo(dest *array.Array, e *Expr) error {
	ax, err := e.Axes()
	if err != nil {
		return err
	}
	if err := shape.Compatible(dest.Shape(), ax); err != nil {
		return errors.WithMessage(err, "cannot copy broadcast result")
	}

	if handled, err := fastCopy(dest, e); handled {
		return err
	}

	flat := Flatten(e)
	leaves := prepare(dest, flat)

	n := dest.NumElements()
	if n == 0 {
		return nil
	}

	target := dest.Shape()
	idx := make([]int, target.Rank())
	vals := make([]Value, len(leaves))
	for k := 0; ; k++ {
		for i := range leaves {
			vals[i] = leaves[i].at(idx)
		}
		v, err := flat.fn.Call(vals)
		if err != nil {
			return err
		}
		dest.SetFlat(k, v)
		if !shape.Next(idx, target) {
			return nil
		}
	}
}

// leaf is one prepared operand of a flat expression: either an array
// with its extrusion relative to the destination shape, a range, or a
// fixed value.
type leaf struct {
	arr     *array.Array
	ext     shape.Extrusion
	strides []int

	rng     *array.Range
	rngKeep bool

	val Value
}

func (l *leaf) at(idx []int) Value {
	switch {
	case l.arr != nil:
		return l.arr.GetFlat(l.ext.Offset(idx, l.strides))
	case l.rng != nil:
		if l.rngKeep {
			return l.rng.At(idx[0])
		}
		return l.rng.At(0)
	default:
		return l.val
	}
}

// prepare builds the per-leaf access plan for a flat expression,
// neutralizing aliasing: a leaf that is reference-identical to dest is
// replaced by a full defensive copy before any write happens.
// Overlapping views are not detected; only identity is.
func prepare(dest *array.Array, flat *Expr) []leaf {
	target := dest.Shape()
	leaves := make([]leaf, len(flat.args))
	for i, arg := range flat.args {
		switch v := arg.(type) {
		case *array.Array:
			if v == dest {
				if klog.V(2).Enabled() {
					klog.Infof("broadcast: operand %d aliases destination, copying", i)
				}
				v = v.Clone()
			}
			leaves[i] = leaf{arr: v, ext: shape.Extrude(v.Shape(), target), strides: v.Strides()}
		case *array.Range:
			leaves[i] = leaf{rng: v, rngKeep: v.Len != 1 && target.Rank() > 0}
		case *Ref:
			val := v.V
			if boxed, ok := val.(*array.Array); ok && boxed == dest {
				val = boxed.Clone()
			}
			leaves[i] = leaf{val: val}
		default:
			leaves[i] = leaf{val: v}
		}
	}
	return leaves
}

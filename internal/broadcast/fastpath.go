package broadcast

import (
	"golang.org/x/exp/constraints"
	"k8s.io/klog/v2"

	"github.com/joule-lang/joule/internal/array"
	"github.com/joule-lang/joule/internal/parallel"
)

var parCfg = parallel.DefaultConfig()

// SetParallelism configures the worker pool used by the typed arithmetic
// kernels. Pass parallel.Config{} to force sequential execution.
func SetParallelism(cfg parallel.Config) { parCfg = cfg }

// fastCopy attempts the specialized kernels in priority order and
// reports whether one applied. Every kernel detects its precondition
// purely from shapes and operand kinds and defers to the generic path
// whenever anything, including aliasing, is not exactly satisfied. The
// kernels are observably identical to the generic loop: same values,
// same column-major evaluation order.
func fastCopy(dest *array.Array, e *Expr) (bool, error) {
	for _, arg := range e.args {
		if _, ok := arg.(*Expr); ok {
			return false, nil // Fused trees take the generic path.
		}
		if a, ok := arg.(*array.Array); ok && a == dest {
			return false, nil // Aliasing needs the generic defensive copy.
		}
		if r, ok := arg.(*Ref); ok {
			if boxed, ok := r.V.(*array.Array); ok && boxed == dest {
				return false, nil
			}
		}
	}

	if len(e.args) != 2 {
		return false, nil
	}

	a, okA := e.args[0].(*array.Array)
	b, okB := e.args[1].(*array.Array)

	if okA && okB && a.Shape().Equal(dest.Shape()) && b.Shape().Equal(dest.Shape()) {
		if op, ok := e.fn.(builtinOp); ok && typedBinary(op, dest, a, b) {
			if klog.V(2).Enabled() {
				klog.Infof("broadcast: typed %s kernel for %v", op.Name(), []int(dest.Shape()))
			}
			return true, nil
		}
		switch dest.Shape().Rank() {
		case 1:
			return true, pairKernel1D(dest, e.fn, a, b)
		case 2:
			return true, pairKernel2D(dest, e.fn, a, b)
		}
		return false, nil
	}

	if okA && isImmediate(e.args[1]) && a.Shape().Equal(dest.Shape()) {
		return true, arrayScalarKernel(dest, e.fn, a, immediate(e.args[1]), false)
	}
	if okB && isImmediate(e.args[0]) && b.Shape().Equal(dest.Shape()) {
		return true, arrayScalarKernel(dest, e.fn, b, immediate(e.args[0]), true)
	}

	return false, nil
}

// isImmediate reports whether an operand broadcasts as one fixed value.
func isImmediate(op Operand) bool {
	switch op.(type) {
	case *array.Array, *array.Range, *Expr:
		return false
	default:
		return true
	}
}

func immediate(op Operand) Value {
	if r, ok := op.(*Ref); ok {
		return r.V
	}
	return op
}

// pairKernel1D handles two rank-1 operands of exactly the destination's
// length: a flat loop with no extrusion bookkeeping.
func pairKernel1D(dest *array.Array, fn Func, a, b *array.Array) error {
	n := dest.NumElements()
	vals := make([]Value, 2)
	for i := 0; i < n; i++ {
		vals[0] = a.GetFlat(i)
		vals[1] = b.GetFlat(i)
		v, err := fn.Call(vals)
		if err != nil {
			return err
		}
		dest.SetFlat(i, v)
	}
	return nil
}

// pairKernel2D handles two rank-2 operands of exactly the destination's
// shape, iterating the grid column by column (first dimension fastest)
// as the generic path would.
func pairKernel2D(dest *array.Array, fn Func, a, b *array.Array) error {
	rows, cols := dest.Shape()[0], dest.Shape()[1]
	vals := make([]Value, 2)
	k := 0
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			vals[0] = a.GetFlat(k)
			vals[1] = b.GetFlat(k)
			v, err := fn.Call(vals)
			if err != nil {
				return err
			}
			dest.SetFlat(k, v)
			k++
		}
	}
	return nil
}

// arrayScalarKernel handles one full-shape array combined with a fixed
// value. swapped selects which side of the call the array feeds.
func arrayScalarKernel(dest *array.Array, fn Func, arr *array.Array, s Value, swapped bool) error {
	n := dest.NumElements()
	vals := make([]Value, 2)
	for i := 0; i < n; i++ {
		if swapped {
			vals[0], vals[1] = s, arr.GetFlat(i)
		} else {
			vals[0], vals[1] = arr.GetFlat(i), s
		}
		v, err := fn.Call(vals)
		if err != nil {
			return err
		}
		dest.SetFlat(i, v)
	}
	return nil
}

// typedBinary skips the generic call mechanism entirely for same-typed
// numeric operands of the four basic operators. The loops perform the
// same machine operations as the boxed path, so results are
// bit-identical. Integer division is true division into a float64
// destination, matching numericBinary.
func typedBinary(op builtinOp, dest, a, b *array.Array) bool {
	switch {
	case dest.DType() == array.Float64 && a.DType() == array.Float64 && b.DType() == array.Float64:
		binaryLoop(op, dest.AsFloat64(), a.AsFloat64(), b.AsFloat64())
	case op != opDiv && dest.DType() == array.Int64 && a.DType() == array.Int64 && b.DType() == array.Int64:
		binaryLoop(op, dest.AsInt64(), a.AsInt64(), b.AsInt64())
	case op == opDiv && dest.DType() == array.Float64 && a.DType() == array.Int64 && b.DType() == array.Int64:
		intDivLoop(dest.AsFloat64(), a.AsInt64(), b.AsInt64())
	default:
		return false
	}
	return true
}

// binaryLoop runs a tight arithmetic loop, chunked across workers for
// large arrays. Each output cell has exactly one writer and the
// operations are pure, so results are independent of scheduling.
func binaryLoop[T constraints.Integer | constraints.Float](op builtinOp, dst, a, b []T) {
	parallel.ForChunks(len(dst), parCfg, func(start, end int) {
		switch op {
		case opAdd:
			for i := start; i < end; i++ {
				dst[i] = a[i] + b[i]
			}
		case opSub:
			for i := start; i < end; i++ {
				dst[i] = a[i] - b[i]
			}
		case opMul:
			for i := start; i < end; i++ {
				dst[i] = a[i] * b[i]
			}
		default:
			for i := start; i < end; i++ {
				dst[i] = a[i] / b[i]
			}
		}
	})
}

func intDivLoop(dst []float64, a, b []int64) {
	parallel.ForChunks(len(dst), parCfg, func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = float64(a[i]) / float64(b[i])
		}
	})
}

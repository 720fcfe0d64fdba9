package broadcast

import (
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// builtinOp is a basic arithmetic operator of the runtime. It is a
// comparable type: fast paths recognize Add, Sub, Mul and Div by
// identity and may bypass the generic call mechanism for them, with
// bit-identical results.
type builtinOp int

const (
	opAdd builtinOp = iota
	opSub
	opMul
	opDiv
)

// The four basic elementwise operators.
var (
	Add Func = opAdd
	Sub Func = opSub
	Mul Func = opMul
	Div Func = opDiv
)

func (op builtinOp) Name() string {
	switch op {
	case opAdd:
		return "+"
	case opSub:
		return "-"
	case opMul:
		return "*"
	case opDiv:
		return "/"
	default:
		return "?"
	}
}

func (op builtinOp) Call(args []Value) (Value, error) {
	if len(args) != 2 {
		return nil, errors.Errorf("operator %s expects 2 arguments, got %d", op.Name(), len(args))
	}
	return numericBinary(op, args[0], args[1])
}

// numericBinary applies op with the runtime's promotion rules:
// int64 pairs stay int64 except under /, which performs true division
// to float64; float16 pairs stay float16 (computed through float32);
// any mix involving float64 or a float16/int64 mix promotes to float64.
func numericBinary(op builtinOp, a, b Value) (Value, error) {
	if x, ok := a.(int64); ok {
		if y, ok := b.(int64); ok {
			if op == opDiv {
				return applyFloat64(op, float64(x), float64(y)), nil
			}
			return applyInt64(op, x, y), nil
		}
	}

	if x, ok := a.(float16.Float16); ok {
		if y, ok := b.(float16.Float16); ok {
			return float16.Fromfloat32(applyFloat32(op, x.Float32(), y.Float32())), nil
		}
	}

	x, okA := toFloat64(a)
	y, okB := toFloat64(b)
	if !okA || !okB {
		return nil, errors.Errorf("operator %s is not defined for %T and %T", op.Name(), a, b)
	}
	return applyFloat64(op, x, y), nil
}

func applyInt64(op builtinOp, a, b int64) int64 {
	switch op {
	case opAdd:
		return a + b
	case opSub:
		return a - b
	default:
		return a * b
	}
}

func applyFloat64(op builtinOp, a, b float64) float64 {
	switch op {
	case opAdd:
		return a + b
	case opSub:
		return a - b
	case opMul:
		return a * b
	default:
		return a / b
	}
}

func applyFloat32(op builtinOp, a, b float32) float32 {
	switch op {
	case opAdd:
		return a + b
	case opSub:
		return a - b
	case opMul:
		return a * b
	default:
		return a / b
	}
}

func toFloat64(v Value) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case float16.Float16:
		return float64(x.Float32()), true
	default:
		return 0, false
	}
}

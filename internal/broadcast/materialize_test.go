package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joule-lang/joule/internal/array"
	"github.com/joule-lang/joule/internal/shape"
)

func materializeArray(t *testing.T, e *Expr) *array.Array {
	t.Helper()
	v, err := Materialize(e)
	require.NoError(t, err)
	a, ok := v.(*array.Array)
	require.True(t, ok, "expected an array, got %T", v)
	return a
}

func TestBroadcastTwoVectors(t *testing.T) {
	// Scenario: [1,2,3] + [10,20,30] → [11,22,33].
	v, err := Broadcast(Add,
		f64s(t, []float64{1, 2, 3}, shape.Shape{3}),
		f64s(t, []float64{10, 20, 30}, shape.Shape{3}))
	require.NoError(t, err)

	out := v.(*array.Array)
	assert.Equal(t, shape.Shape{3}, out.Shape())
	assert.Equal(t, []float64{11, 22, 33}, out.AsFloat64())
}

func TestBroadcastOuterProduct(t *testing.T) {
	// Column (3,1) times row (1,2) → full 3×2 grid.
	col := f64s(t, []float64{1, 2, 3}, shape.Shape{3, 1})
	row := f64s(t, []float64{1, 2}, shape.Shape{1, 2})

	out := materializeArray(t, Broadcasted(Mul, col, row))
	assert.Equal(t, shape.Shape{3, 2}, out.Shape())
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			assert.Equal(t, float64(i+1)*float64(j+1), out.Get(i, j))
		}
	}
}

func TestCopyToArrayPlusScalar(t *testing.T) {
	dest, err := array.New(shape.Shape{3}, array.Float64)
	require.NoError(t, err)

	e := Broadcasted(Add, f64s(t, []float64{1, 2, 3}, shape.Shape{3}), 100.0)
	require.NoError(t, CopyTo(dest, e))
	assert.Equal(t, []float64{101, 102, 103}, dest.AsFloat64())
}

func TestMaterializeFusedChain(t *testing.T) {
	// x → x+1 → (x+1)*2 over [1,2,3] gives [4,6,8].
	x := f64s(t, []float64{1, 2, 3}, shape.Shape{3})
	inner := Broadcasted(NewFunc("inc", func(args []Value) (Value, error) {
		return args[0].(float64) + 1, nil
	}), x)
	outer := Broadcasted(NewFunc("twice", func(args []Value) (Value, error) {
		return args[0].(float64) * 2, nil
	}), inner)

	out := materializeArray(t, outer)
	assert.Equal(t, []float64{4, 6, 8}, out.AsFloat64())
}

func TestFusionTransparency(t *testing.T) {
	// Materializing g(f(x)) equals materializing the hand-composed
	// x -> g(f(x)).
	x := f64s(t, []float64{1, 2, 3}, shape.Shape{3})

	nested := materializeArray(t, Broadcasted(double, Broadcasted(Add, x, 1.0)))
	composed := materializeArray(t, Broadcasted(NewFunc("inc-double", func(args []Value) (Value, error) {
		return (args[0].(float64) + 1) * 2, nil
	}), x))

	assert.Equal(t, composed.AsFloat64(), nested.AsFloat64())
}

func TestZeroDimensionalCollapse(t *testing.T) {
	// All-scalar broadcasts return a bare scalar, not a 1-element array.
	v, err := Broadcast(Add, 2.0, 3.0)
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)

	v, err = Broadcast(Add, int64(2), int64(3))
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)
}

func TestIntegerTrueDivision(t *testing.T) {
	v, err := Broadcast(Div, int64(7), int64(2))
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)
}

func TestCopyInfersElementType(t *testing.T) {
	ints := i64s(t, []int64{1, 2, 3}, shape.Shape{3})

	sum := materializeArray(t, Broadcasted(Add, ints, int64(1)))
	assert.Equal(t, array.Int64, sum.DType())
	assert.Equal(t, []int64{2, 3, 4}, sum.AsInt64())

	quot := materializeArray(t, Broadcasted(Div, ints, int64(2)))
	assert.Equal(t, array.Float64, quot.DType())
	assert.Equal(t, []float64{0.5, 1, 1.5}, quot.AsFloat64())
}

func TestMaterializeEmptyResult(t *testing.T) {
	empty := f64s(t, nil, shape.Shape{0})
	out := materializeArray(t, Broadcasted(double, empty))
	assert.Equal(t, shape.Shape{0}, out.Shape())
	assert.Equal(t, 0, out.NumElements())
}

func TestAliasingSelfUpdate(t *testing.T) {
	// copyto!(a, f.(a)) reads pre-update values: [f(1), f(2), f(3)].
	a := f64s(t, []float64{1, 2, 3}, shape.Shape{3})
	require.NoError(t, CopyTo(a, Broadcasted(double, a)))
	assert.Equal(t, []float64{2, 4, 6}, a.AsFloat64())
}

func TestAliasedRefReverse(t *testing.T) {
	// Index-reversing self-assignment is the classic aliasing trap: the
	// function reads arbitrary cells of the destination through a Ref.
	// Without the defensive copy the second half of the result would see
	// freshly written values.
	a := f64s(t, []float64{1, 2, 3, 4}, shape.Shape{4})
	rev := NewFunc("rev", func(args []Value) (Value, error) {
		i := int(args[0].(int64))
		whole := args[1].(*array.Array)
		return whole.Get(3 - i), nil
	})

	require.NoError(t, CopyTo(a, Broadcasted(rev, array.NewRange(0, 3), &Ref{V: a})))
	assert.Equal(t, []float64{4, 3, 2, 1}, a.AsFloat64())
}

func TestCopyToValidatesBeforeWriting(t *testing.T) {
	dest := f64s(t, []float64{9, 9, 9}, shape.Shape{3})
	e := Broadcasted(Add,
		f64s(t, []float64{1, 2, 3, 4}, shape.Shape{4}),
		f64s(t, []float64{1, 2, 3, 4}, shape.Shape{4}))

	err := CopyTo(dest, e)
	var dm *shape.DimensionMismatchError
	require.ErrorAs(t, err, &dm)
	// A shape failure never partially mutates the destination.
	assert.Equal(t, []float64{9, 9, 9}, dest.AsFloat64())
}

func TestUserErrorLeavesPartialWrites(t *testing.T) {
	dest := f64s(t, []float64{0, 0, 0}, shape.Shape{3})
	flaky := NewFunc("flaky", func(args []Value) (Value, error) {
		if args[0].(float64) == 3 {
			return nil, assert.AnError
		}
		return args[0], nil
	})

	err := CopyTo(dest, Broadcasted(flaky, f64s(t, []float64{1, 2, 3}, shape.Shape{3})))
	require.ErrorIs(t, err, assert.AnError)
	// No rollback: positions before the failure keep their new values.
	assert.Equal(t, []float64{1, 2, 0}, dest.AsFloat64())
}

func TestColumnMajorEvaluationOrder(t *testing.T) {
	// Side-effecting functions observe the iteration order, so it is
	// part of the contract: first dimension fastest.
	var seen []float64
	spy := NewFunc("spy", func(args []Value) (Value, error) {
		seen = append(seen, args[0].(float64))
		return args[0], nil
	})

	// Column-major data: element value encodes (i + 10j).
	grid := f64s(t, []float64{0, 1, 2, 10, 11, 12}, shape.Shape{3, 2})
	dest, err := array.New(shape.Shape{3, 2}, array.Float64)
	require.NoError(t, err)

	require.NoError(t, CopyTo(dest, Broadcasted(spy, grid)))

	assert.Equal(t, []float64{0, 1, 2, 10, 11, 12}, seen)
}

func TestMaterializeIntoDestinationDrivesShape(t *testing.T) {
	// A (1,)-shaped node repeated into a (3,) destination: the
	// destination's axes, not the node's, drive the broadcast.
	dest, err := array.New(shape.Shape{3}, array.Float64)
	require.NoError(t, err)

	e := Broadcasted(Add, f64s(t, []float64{5}, shape.Shape{1}), 1.0)
	require.NoError(t, MaterializeInto(dest, e))
	assert.Equal(t, []float64{6, 6, 6}, dest.AsFloat64())
}

func TestBroadcastIntoWrapper(t *testing.T) {
	dest, err := array.New(shape.Shape{2, 2}, array.Float64)
	require.NoError(t, err)

	require.NoError(t, BroadcastInto(dest, Mul, f64s(t, []float64{1, 2, 3, 4}, shape.Shape{2, 2}), 10.0))
	assert.Equal(t, []float64{10, 20, 30, 40}, dest.AsFloat64())
}

func TestMaterializeRange(t *testing.T) {
	out := materializeArray(t, Broadcasted(Mul, array.NewRange(1, 5), int64(2)))
	assert.Equal(t, array.Int64, out.DType())
	assert.Equal(t, []int64{2, 4, 6, 8, 10}, out.AsInt64())
}

func TestMaterializeMixedRankOperands(t *testing.T) {
	// (5,) with a rank-0 scalar and a (1,) array.
	x := f64s(t, []float64{1, 2, 3, 4, 5}, shape.Shape{5})
	oneEl := f64s(t, []float64{100}, shape.Shape{1})

	sum3 := NewFunc("sum3", func(args []Value) (Value, error) {
		return args[0].(float64) + args[1].(float64) + args[2].(float64), nil
	})

	out := materializeArray(t, Broadcasted(sum3, x, oneEl, 1000.0))
	assert.Equal(t, []float64{1101, 1102, 1103, 1104, 1105}, out.AsFloat64())
}

func TestReusableExpression(t *testing.T) {
	// An Expr is side-effect-free data: materializing twice gives two
	// independent, equal results.
	x := f64s(t, []float64{1, 2}, shape.Shape{2})
	e := Broadcasted(double, x)

	first := materializeArray(t, e)
	second := materializeArray(t, e)
	assert.Equal(t, first.AsFloat64(), second.AsFloat64())
	assert.NotSame(t, first, second)
}

// Copyright 2026 The Joule Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package broadcast provides the public API of the Joule broadcasting
// engine: lazy elementwise expressions over operands of heterogeneous
// shapes, fusion of nested expressions, and materialization into dense
// arrays.
//
// Example:
//
//	x, _ := array.FromFloat64([]float64{1, 2, 3}, array.Shape{3})
//	out, _ := broadcast.Broadcast(broadcast.Add, x, 100.0)
//	// out is a (3,) array holding [101 102 103].
package broadcast

import (
	ibroadcast "github.com/joule-lang/joule/internal/broadcast"
	"github.com/joule-lang/joule/internal/parallel"

	"github.com/joule-lang/joule/array"
)

// Value is one runtime value of the Joule language.
type Value = ibroadcast.Value

// Operand is one argument of a broadcast expression: *array.Array,
// *array.Range, *Ref, *Expr, or any other value, which broadcasts as a
// scalar.
type Operand = ibroadcast.Operand

// Func is an n-ary elementwise function applied by the engine.
type Func = ibroadcast.Func

// Expr is a lazy, immutable broadcast expression tree.
type Expr = ibroadcast.Expr

// Ref boxes a single value so it broadcasts as one repeated cell.
type Ref = ibroadcast.Ref

// ParallelConfig controls the worker pool of the typed fast-path
// kernels. The zero value forces sequential execution.
type ParallelConfig = parallel.Config

// The four basic elementwise operators, with typed fast paths.
var (
	Add = ibroadcast.Add
	Sub = ibroadcast.Sub
	Mul = ibroadcast.Mul
	Div = ibroadcast.Div
)

// NewFunc wraps a Go closure as a Func for use with Broadcasted.
func NewFunc(name string, fn func(args []Value) (Value, error)) Func {
	return ibroadcast.NewFunc(name, fn)
}

// Broadcasted composes a lazy broadcast expression. It is pure and
// never fails; shape conflicts surface when axes are first resolved.
func Broadcasted(fn Func, args ...Operand) *Expr {
	return ibroadcast.Broadcasted(fn, args...)
}

// Broadcast eagerly applies fn elementwise across args, returning a
// fresh array, or a bare scalar when every operand is zero-dimensional.
func Broadcast(fn Func, args ...Operand) (Value, error) {
	return ibroadcast.Broadcast(fn, args...)
}

// BroadcastInto eagerly applies fn elementwise across args, writing
// into dest. The destination's shape drives the broadcast.
func BroadcastInto(dest *array.Array, fn Func, args ...Operand) error {
	return ibroadcast.BroadcastInto(dest, fn, args...)
}

// Flatten fuses a nested expression into a single-level one with
// identical elementwise semantics.
func Flatten(e *Expr) *Expr {
	return ibroadcast.Flatten(e)
}

// Materialize fuses and evaluates a lazy expression into a concrete
// value.
func Materialize(e *Expr) (Value, error) {
	return ibroadcast.Materialize(e)
}

// MaterializeInto evaluates a lazy expression into dest.
func MaterializeInto(dest *array.Array, e *Expr) error {
	return ibroadcast.MaterializeInto(dest, e)
}

// CopyTo evaluates the expression once per position of dest in
// column-major order, validating shapes before any write.
func CopyTo(dest *array.Array, e *Expr) error {
	return ibroadcast.CopyTo(dest, e)
}

// SetParallelism configures the worker pool used by the typed
// arithmetic kernels.
func SetParallelism(cfg ParallelConfig) {
	ibroadcast.SetParallelism(cfg)
}

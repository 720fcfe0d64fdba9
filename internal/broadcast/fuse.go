package broadcast

// Flatten rewrites a nested broadcast expression into a single-level
// one: the result's operand list is the left-to-right concatenation of
// all leaf operands of the tree, and its function re-slices that flat
// argument list back into the original nested calling convention at
// evaluation time. Flat expressions are returned unchanged.
//
// Fusion is purely a performance transform: for every valid position i,
// Flatten(e).ElementAt(i) equals e.ElementAt(i), including the order in
// which the nested functions are invoked. It works for arbitrary arity
// and nesting depth; inner expressions are flattened first, so each
// direct child contributes either one leaf or one already-flat sub-call.
func Flatten(e *Expr) *Expr {
	flat := true
	for _, arg := range e.args {
		if _, ok := arg.(*Expr); ok {
			flat = false
			break
		}
	}
	if flat {
		return e
	}

	parts := make([]part, len(e.args))
	var leaves []Operand
	for i, arg := range e.args {
		if child, ok := arg.(*Expr); ok {
			fc := Flatten(child)
			parts[i] = part{fn: fc.fn, off: len(leaves), n: len(fc.args)}
			leaves = append(leaves, fc.args...)
		} else {
			parts[i] = part{off: len(leaves), n: 1}
			leaves = append(leaves, arg)
		}
	}

	return &Expr{
		fn:   &fusedFunc{outer: e.fn, parts: parts},
		args: leaves,
	}
}

// part is one entry of a fused function's offset table: the slice
// [off, off+n) of the flat argument list feeds this position of the
// outer call. fn is nil for a leaf passed through unchanged.
type part struct {
	fn  Func
	off int
	n   int
}

// fusedFunc is the synthesized composite of an outer function and the
// (already fused) functions of its expression operands.
type fusedFunc struct {
	outer Func
	parts []part
}

func (f *fusedFunc) Name() string { return f.outer.Name() }

func (f *fusedFunc) Call(args []Value) (Value, error) {
	inner := make([]Value, len(f.parts))
	for i, p := range f.parts {
		if p.fn == nil {
			inner[i] = args[p.off]
			continue
		}
		v, err := p.fn.Call(args[p.off : p.off+p.n])
		if err != nil {
			return nil, err
		}
		inner[i] = v
	}
	return f.outer.Call(inner)
}

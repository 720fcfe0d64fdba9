package shape

// Extrusion maps positions of a broadcast target shape back to positions
// of one operand without copying the operand. For every target dimension
// it records whether the operand's own index is used (Keep) and the fixed
// index substituted when it is not (Default, always the origin 0).
//
// Extrusions are built per materialization and discarded afterwards.
type Extrusion struct {
	Keep    []bool
	Default []int
}

// Extrude builds the Extrusion of an operand shape relative to a target
// shape. A dimension is kept when the operand's extent there is not 1;
// size-1 and missing trailing dimensions collapse to the origin index, so
// the operand behaves as repeated along them.
func Extrude(operand, target Shape) Extrusion {
	keep := make([]bool, len(target))
	def := make([]int, len(target))
	for d := range target {
		keep[d] = operand.Dim(d) != 1
	}
	return Extrusion{Keep: keep, Default: def}
}

// Translate maps a target position to the operand position, writing into
// dst. dst must have length len(e.Keep); it is returned for convenience.
func (e Extrusion) Translate(target, dst []int) []int {
	for d := range e.Keep {
		if e.Keep[d] {
			dst[d] = target[d]
		} else {
			dst[d] = e.Default[d]
		}
	}
	return dst
}

// Offset maps a target position directly to a flat column-major offset
// using the operand's strides, skipping the intermediate index vector.
// strides must correspond to the operand's own shape, padded with zeros
// beyond its rank.
func (e Extrusion) Offset(target, strides []int) int {
	off := 0
	for d := range e.Keep {
		if e.Keep[d] && d < len(strides) {
			off += target[d] * strides[d]
		}
	}
	return off
}

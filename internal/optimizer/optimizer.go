// Package optimizer implements MiniLang's three linear IR passes:
// constant folding, copy propagation, and dead-code elimination, each a
// single forward scan with conservative clearing at basic-block
// boundaries.
package optimizer

import "minilang/internal/ir"

// Optimize runs the three passes in a fixed order: constant folding,
// then copy propagation, then dead-code elimination.
func Optimize(code []ir.Instruction) []ir.Instruction {
	code = foldConstants(code)
	code = propagateCopies(code)
	code = eliminateDeadCode(code)
	return code
}

// clearsBlockState reports whether an instruction is a basic-block
// boundary: label, goto, if_false, if_true. Both tracked
// passes clear all state on these, conservatively preventing
// propagation across control-flow edges.
func clearsBlockState(op ir.Op) bool {
	switch op {
	case ir.OpLabel, ir.OpGoto, ir.OpIfFalse, ir.OpIfTrue:
		return true
	default:
		return false
	}
}

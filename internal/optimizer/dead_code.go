package optimizer

import (
	"strings"

	"minilang/internal/ir"
)

// sideEffectOps are always kept regardless of whether their result is
// referenced elsewhere.
var sideEffectOps = map[ir.Op]bool{
	ir.OpLabel: true, ir.OpGoto: true, ir.OpIfFalse: true, ir.OpIfTrue: true,
	ir.OpBeginFunc: true, ir.OpEndFunc: true,
	ir.OpPrint: true, ir.OpReturn: true, ir.OpCall: true, ir.OpParam: true, ir.OpParamDecl: true,
}

// eliminateDeadCode drops assignments to unused temporaries: a
// two-pass liveness scan over the whole (already-folded,
// already-propagated) instruction list.
func eliminateDeadCode(code []ir.Instruction) []ir.Instruction {
	used := map[string]bool{}
	markOperand := func(o *ir.Operand) {
		if o == nil {
			return
		}
		switch o.Kind {
		case ir.KindVar:
			used[o.Name] = true
		case ir.KindPair:
			for _, p := range o.Pair {
				if p.Kind == ir.KindVar {
					used[p.Name] = true
				}
			}
		}
	}

	for _, ins := range code {
		markOperand(ins.Arg1)
		markOperand(ins.Arg2)
		if sideEffectOps[ins.Op] && ins.Op != ir.OpLabel && ins.Result != nil && ins.Result.Kind == ir.KindVar {
			used[ins.Result.Name] = true
		}
	}

	out := make([]ir.Instruction, 0, len(code))
	for _, ins := range code {
		if sideEffectOps[ins.Op] {
			out = append(out, ins)
			continue
		}
		if ins.Result == nil {
			out = append(out, ins)
			continue
		}
		if ins.Result.Kind != ir.KindVar {
			out = append(out, ins)
			continue
		}
		if used[ins.Result.Name] || !strings.HasPrefix(ins.Result.Name, "t") {
			out = append(out, ins)
		}
	}
	return out
}

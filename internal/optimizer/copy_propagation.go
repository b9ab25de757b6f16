package optimizer

import "minilang/internal/ir"

// propagateCopies replaces variable references with their ultimate copy
// source: `x = y; z = x + 1` becomes `x = y; z = y + 1`.
func propagateCopies(code []ir.Instruction) []ir.Instruction {
	out := make([]ir.Instruction, 0, len(code))
	copies := map[string]string{}

	substitute := func(o *ir.Operand) *ir.Operand {
		if o == nil || o.Kind != ir.KindVar {
			return o
		}
		if src, ok := copies[o.Name]; ok {
			v := ir.Var(src)
			return &v
		}
		return o
	}

	// Writing to a name kills it both as a copy and as the source of
	// other copies; a mapping whose source has been overwritten would
	// substitute the new value where the old one was meant.
	invalidate := func(name string) {
		delete(copies, name)
		for dst, src := range copies {
			if src == name {
				delete(copies, dst)
			}
		}
	}

	for _, ins := range code {
		if clearsBlockState(ins.Op) {
			copies = map[string]string{}
			out = append(out, ins)
			continue
		}

		switch {
		case ins.Op == ir.OpAssign && ins.Arg1 != nil && ins.Arg1.Kind == ir.KindVar:
			src := ins.Arg1.Name
			if mapped, ok := copies[src]; ok {
				src = mapped
			}
			arg := ir.Var(src)
			out = append(out, ir.Instruction{Op: ir.OpAssign, Arg1: &arg, Result: ins.Result, Line: ins.Line, Column: ins.Column})
			invalidate(ins.Result.Name)
			if src != ins.Result.Name {
				copies[ins.Result.Name] = src
			}

		default:
			newIns := ins
			newIns.Arg1 = substitute(ins.Arg1)
			newIns.Arg2 = substitute(ins.Arg2)
			out = append(out, newIns)
			if ins.Result != nil {
				invalidate(ins.Result.Name)
			}
		}
	}

	return out
}

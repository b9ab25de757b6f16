package optimizer

import "minilang/internal/ir"

// foldConstants evaluates assignments and operations whose operands are
// all compile-time constants.
func foldConstants(code []ir.Instruction) []ir.Instruction {
	out := make([]ir.Instruction, 0, len(code))
	env := map[string]any{}

	resolve := func(o *ir.Operand) (any, bool) {
		if o == nil {
			return nil, false
		}
		if o.IsConst() {
			return constValue(*o), true
		}
		if v, ok := env[o.Name]; ok {
			return v, true
		}
		return nil, false
	}

	for _, ins := range code {
		if clearsBlockState(ins.Op) {
			env = map[string]any{}
			out = append(out, ins)
			continue
		}

		switch {
		case ins.Op == ir.OpAssign:
			if v, ok := resolve(ins.Arg1); ok {
				folded := ins
				val := valueToOperand(v)
				folded.Arg1 = &val
				out = append(out, folded)
				env[ins.Result.Name] = v
				continue
			}
			out = append(out, ins)
			delete(env, ins.Result.Name)

		// Unary `-` shares the OpSub tag with binary `-`; arg2 absence,
		// not the opcode, distinguishes it, so this case must be checked
		// before the generic binary case, which would otherwise match
		// OpSub regardless of arity.
		case ins.Op == ir.OpNot || (ins.Op == ir.OpSub && ins.Arg2 == nil):
			if v, ok := resolve(ins.Arg1); ok {
				folded, okFold := tryFoldUnary(ins, v)
				if okFold {
					out = append(out, folded)
					env[ins.Result.Name] = constValue(*folded.Arg1)
					continue
				}
			}
			out = append(out, ins)
			if ins.Result != nil {
				delete(env, ins.Result.Name)
			}

		case ins.Op.IsBinary():
			leftVal, leftOK := resolve(ins.Arg1)
			rightVal, rightOK := resolve(ins.Arg2)
			if leftOK && rightOK {
				if folded, ok := tryFoldBinary(ins, leftVal, rightVal); ok {
					out = append(out, folded)
					env[ins.Result.Name] = constValue(*folded.Arg1)
					continue
				}
			}
			out = append(out, ins)
			if ins.Result != nil {
				delete(env, ins.Result.Name)
			}

		default:
			out = append(out, ins)
			if ins.Result != nil && ins.Result.Kind == ir.KindVar {
				delete(env, ins.Result.Name)
			}
		}
	}

	return out
}

func tryFoldBinary(ins ir.Instruction, left, right any) (ir.Instruction, bool) {
	result, err := evalBinary(ins.Op, left, right)
	if err != nil {
		return ins, false
	}
	val := valueToOperand(result)
	return ir.Instruction{Op: ir.OpAssign, Arg1: &val, Result: ins.Result, Line: ins.Line, Column: ins.Column}, true
}

func tryFoldUnary(ins ir.Instruction, operand any) (ir.Instruction, bool) {
	var result any
	switch ins.Op {
	case ir.OpNot:
		b, ok := operand.(bool)
		if !ok {
			return ins, false
		}
		result = !b
	case ir.OpSub:
		switch v := operand.(type) {
		case int64:
			result = -v
		case float64:
			result = -v
		default:
			return ins, false
		}
	default:
		return ins, false
	}
	val := valueToOperand(result)
	return ir.Instruction{Op: ir.OpAssign, Arg1: &val, Result: ins.Result, Line: ins.Line, Column: ins.Column}, true
}

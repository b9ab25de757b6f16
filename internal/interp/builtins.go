package interp

import (
	"minilang/internal/diag"
	"minilang/internal/ir"
)

// execBuiltin dispatches the closed set of built-in calls.
func (vm *VM) execBuiltin(ins ir.Instruction) *diag.Error {
	switch ins.Op {
	case ir.OpBuiltinLen:
		return vm.builtinLen(ins)
	case ir.OpBuiltinRandom:
		return vm.builtinRandom(ins)
	case ir.OpBuiltinSubstr:
		return vm.builtinSubstr(ins)
	case ir.OpBuiltinConcat:
		return vm.builtinConcat(ins)
	case ir.OpBuiltinInput:
		return vm.builtinInput(ins)
	default:
		return vm.runtimeError("unknown builtin")
	}
}

func (vm *VM) builtinLen(ins ir.Instruction) *diag.Error {
	v, err := vm.resolve(ins.Arg1)
	if err != nil {
		return err
	}
	switch v.Kind {
	case KindArray:
		vm.variables[ins.Result.Name] = IntValue(int64(len(v.Array)))
	case KindString:
		vm.variables[ins.Result.Name] = IntValue(int64(len(v.Str)))
	default:
		return vm.runtimeError("len() requires array or string")
	}
	return nil
}

func (vm *VM) builtinRandom(ins ir.Instruction) *diag.Error {
	minVal, err := vm.resolve(ins.Arg1)
	if err != nil {
		return err
	}
	maxVal, err := vm.resolve(ins.Arg2)
	if err != nil {
		return err
	}
	lo := int64(minVal.AsFloat())
	hi := int64(maxVal.AsFloat())
	if hi < lo {
		lo, hi = hi, lo
	}
	result := lo + vm.rng.Int63n(hi-lo+1)
	vm.variables[ins.Result.Name] = IntValue(result)
	return nil
}

func (vm *VM) builtinSubstr(ins ir.Instruction) *diag.Error {
	strVal, err := vm.resolve(ins.Arg1)
	if err != nil {
		return err
	}
	if strVal.Kind != KindString {
		return vm.runtimeError("substr() requires string")
	}
	if ins.Arg2 == nil || ins.Arg2.Kind != ir.KindPair || len(ins.Arg2.Pair) != 2 {
		return vm.runtimeError("malformed substr() instruction")
	}
	startOperand, endOperand := ins.Arg2.Pair[0], ins.Arg2.Pair[1]
	startVal, err := vm.resolve(&startOperand)
	if err != nil {
		return err
	}
	endVal, err := vm.resolve(&endOperand)
	if err != nil {
		return err
	}
	start, end := int(startVal.AsFloat()), int(endVal.AsFloat())
	if start < 0 {
		start = 0
	}
	if end > len(strVal.Str) {
		end = len(strVal.Str)
	}
	if start > end {
		start = end
	}
	vm.variables[ins.Result.Name] = StringValue(strVal.Str[start:end])
	return nil
}

func (vm *VM) builtinConcat(ins ir.Instruction) *diag.Error {
	a, err := vm.resolve(ins.Arg1)
	if err != nil {
		return err
	}
	b, err := vm.resolve(ins.Arg2)
	if err != nil {
		return err
	}
	if a.Kind != KindString || b.Kind != KindString {
		return vm.runtimeError("concat() requires string arguments")
	}
	vm.variables[ins.Result.Name] = StringValue(a.Str + b.Str)
	return nil
}

func (vm *VM) builtinInput(ins ir.Instruction) *diag.Error {
	promptVal, err := vm.resolve(ins.Arg1)
	if err != nil {
		return err
	}
	if promptVal.Kind != KindString {
		return vm.runtimeError("input() prompt must be string")
	}
	vm.variables[ins.Result.Name] = StringValue(vm.input(promptVal.Str))
	return nil
}

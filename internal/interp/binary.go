package interp

import (
	"math"

	"minilang/internal/diag"
	"minilang/internal/ir"
)

// execBinary evaluates an arithmetic, relational, or logical
// instruction. Integer `/` floors toward negative infinity; mixed or
// float operands use real division. `and`/`or` are value-returning,
// yielding one of the two operands per truthiness, not a coerced
// bool.
func (vm *VM) execBinary(ins ir.Instruction) *diag.Error {
	left, err := vm.resolve(ins.Arg1)
	if err != nil {
		return err
	}

	switch ins.Op {
	case ir.OpAnd:
		if !left.Truthy() {
			vm.variables[ins.Result.Name] = left
			return nil
		}
		right, err := vm.resolve(ins.Arg2)
		if err != nil {
			return err
		}
		vm.variables[ins.Result.Name] = right
		return nil
	case ir.OpOr:
		if left.Truthy() {
			vm.variables[ins.Result.Name] = left
			return nil
		}
		right, err := vm.resolve(ins.Arg2)
		if err != nil {
			return err
		}
		vm.variables[ins.Result.Name] = right
		return nil
	}

	right, err := vm.resolve(ins.Arg2)
	if err != nil {
		return err
	}

	switch ins.Op {
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpMod, ir.OpPow:
		return vm.execArithmetic(ins, left, right)
	case ir.OpLt, ir.OpGt, ir.OpLe, ir.OpGe:
		return vm.execRelational(ins, left, right)
	case ir.OpEq:
		vm.variables[ins.Result.Name] = BoolValue(valuesEqual(left, right))
		return nil
	case ir.OpNe:
		vm.variables[ins.Result.Name] = BoolValue(!valuesEqual(left, right))
		return nil
	default:
		return vm.runtimeError("unknown binary operator %s", ins.Op)
	}
}

// execUnaryMinus negates an int or float operand. Unary `-` shares the
// OpSub opcode with binary subtraction; the arity (Arg2 absent) is what
// distinguishes it, not the opcode.
func (vm *VM) execUnaryMinus(ins ir.Instruction) *diag.Error {
	v, err := vm.resolve(ins.Arg1)
	if err != nil {
		return err
	}
	switch v.Kind {
	case KindInt:
		vm.variables[ins.Result.Name] = IntValue(-v.Int)
	case KindFloat:
		vm.variables[ins.Result.Name] = FloatValue(-v.Float)
	default:
		return vm.runtimeError("unary '-' requires a numeric operand")
	}
	return nil
}

func (vm *VM) execArithmetic(ins ir.Instruction, left, right Value) *diag.Error {
	bothInt := left.Kind == KindInt && right.Kind == KindInt

	switch ins.Op {
	case ir.OpAdd:
		if bothInt {
			vm.variables[ins.Result.Name] = IntValue(left.Int + right.Int)
		} else {
			vm.variables[ins.Result.Name] = FloatValue(left.AsFloat() + right.AsFloat())
		}
	case ir.OpSub:
		if bothInt {
			vm.variables[ins.Result.Name] = IntValue(left.Int - right.Int)
		} else {
			vm.variables[ins.Result.Name] = FloatValue(left.AsFloat() - right.AsFloat())
		}
	case ir.OpMul:
		if bothInt {
			vm.variables[ins.Result.Name] = IntValue(left.Int * right.Int)
		} else {
			vm.variables[ins.Result.Name] = FloatValue(left.AsFloat() * right.AsFloat())
		}
	case ir.OpDiv:
		if right.AsFloat() == 0 {
			return vm.runtimeError("Division by zero")
		}
		if bothInt {
			vm.variables[ins.Result.Name] = IntValue(int64(math.Floor(float64(left.Int) / float64(right.Int))))
		} else {
			vm.variables[ins.Result.Name] = FloatValue(left.AsFloat() / right.AsFloat())
		}
	case ir.OpMod:
		if right.AsFloat() == 0 {
			return vm.runtimeError("Modulo by zero")
		}
		if bothInt {
			vm.variables[ins.Result.Name] = IntValue(left.Int - int64(math.Floor(float64(left.Int)/float64(right.Int)))*right.Int)
		} else {
			lf, rf := left.AsFloat(), right.AsFloat()
			vm.variables[ins.Result.Name] = FloatValue(math.Mod(math.Mod(lf, rf)+rf, rf))
		}
	case ir.OpPow:
		if bothInt && right.Int >= 0 {
			vm.variables[ins.Result.Name] = IntValue(intPow(left.Int, right.Int))
		} else {
			vm.variables[ins.Result.Name] = FloatValue(math.Pow(left.AsFloat(), right.AsFloat()))
		}
	}
	return nil
}

func (vm *VM) execRelational(ins ir.Instruction, left, right Value) *diag.Error {
	lf, rf := left.AsFloat(), right.AsFloat()
	var result bool
	switch ins.Op {
	case ir.OpLt:
		result = lf < rf
	case ir.OpGt:
		result = lf > rf
	case ir.OpLe:
		result = lf <= rf
	case ir.OpGe:
		result = lf >= rf
	}
	vm.variables[ins.Result.Name] = BoolValue(result)
	return nil
}

func valuesEqual(a, b Value) bool {
	if a.IsNumeric() && b.IsNumeric() {
		return a.AsFloat() == b.AsFloat()
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindBool:
		return a.Bool == b.Bool
	case KindString:
		return a.Str == b.Str
	default:
		return false
	}
}

func intPow(base, exp int64) int64 {
	result := int64(1)
	for i := int64(0); i < exp; i++ {
		result *= base
	}
	return result
}

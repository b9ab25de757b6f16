package interp

import (
	"minilang/internal/diag"
	"minilang/internal/ir"
)

// Resolve decodes an Operand into a runtime Value: constants carry
// their value directly, Var operands are looked up in the current
// activation's variables. Exported so the REPL can read back a bare
// expression statement's value for its `=> value` echo.
func (vm *VM) Resolve(o *ir.Operand) (Value, *diag.Error) {
	return vm.resolve(o)
}

func (vm *VM) resolve(o *ir.Operand) (Value, *diag.Error) {
	if o == nil {
		return Value{}, nil
	}
	switch o.Kind {
	case ir.KindIntConst:
		return IntValue(o.IntVal), nil
	case ir.KindFloatConst:
		return FloatValue(o.FloatVal), nil
	case ir.KindBoolConst:
		return BoolValue(o.BoolVal), nil
	case ir.KindStrConst:
		return StringValue(o.StrVal), nil
	case ir.KindVar:
		v, ok := vm.variables[o.Name]
		if !ok {
			return Value{}, vm.runtimeError("undefined variable: %s", o.Name)
		}
		return v, nil
	default:
		return Value{}, vm.runtimeError("cannot resolve operand %s", o)
	}
}

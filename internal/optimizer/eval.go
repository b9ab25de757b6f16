package optimizer

import (
	"errors"
	"math"

	"minilang/internal/ir"
)

// errDivByZero signals that a fold must be abandoned, keeping the
// original instruction; the zero divisor surfaces at runtime instead.
var errDivByZero = errors.New("division or modulo by zero")

// constValue extracts the literal Go value an Operand carries. Booleans
// are checked before numerics so a bool operand is never mistaken for
// an int.
func constValue(o ir.Operand) any {
	switch o.Kind {
	case ir.KindBoolConst:
		return o.BoolVal
	case ir.KindIntConst:
		return o.IntVal
	case ir.KindFloatConst:
		return o.FloatVal
	case ir.KindStrConst:
		return o.StrVal
	default:
		return nil
	}
}

// valueToOperand converts a folded Go value back into an Operand.
func valueToOperand(v any) ir.Operand {
	switch val := v.(type) {
	case bool:
		return ir.BoolConst(val)
	case int64:
		return ir.IntConst(val)
	case float64:
		return ir.FloatConst(val)
	case string:
		return ir.StrConst(val)
	default:
		return ir.Operand{}
	}
}

// evalBinary evaluates a binary arithmetic/relational operator over two
// already-resolved constant values, applying MiniLang's floor-division
// rule for int/int division and modulo.
func evalBinary(op ir.Op, left, right any) (any, error) {
	li, lIsInt := left.(int64)
	ri, rIsInt := right.(int64)
	bothInt := lIsInt && rIsInt

	lf := toFloat(left)
	rf := toFloat(right)

	switch op {
	case ir.OpAdd:
		if bothInt {
			return li + ri, nil
		}
		return lf + rf, nil
	case ir.OpSub:
		if bothInt {
			return li - ri, nil
		}
		return lf - rf, nil
	case ir.OpMul:
		if bothInt {
			return li * ri, nil
		}
		return lf * rf, nil
	case ir.OpDiv:
		if rf == 0 {
			return nil, errDivByZero
		}
		if bothInt {
			return int64(math.Floor(float64(li) / float64(ri))), nil
		}
		return lf / rf, nil
	case ir.OpMod:
		if bothInt {
			if ri == 0 {
				return nil, errDivByZero
			}
			return li - int64(math.Floor(float64(li)/float64(ri)))*ri, nil
		}
		if rf == 0 {
			return nil, errDivByZero
		}
		return math.Mod(math.Mod(lf, rf)+rf, rf), nil
	case ir.OpPow:
		if bothInt && ri >= 0 {
			return intPow(li, ri), nil
		}
		return math.Pow(lf, rf), nil
	case ir.OpLt:
		return lf < rf, nil
	case ir.OpGt:
		return lf > rf, nil
	case ir.OpLe:
		return lf <= rf, nil
	case ir.OpGe:
		return lf >= rf, nil
	case ir.OpEq:
		if isNumber(left) && isNumber(right) {
			return lf == rf, nil
		}
		return left == right, nil
	case ir.OpNe:
		if isNumber(left) && isNumber(right) {
			return lf != rf, nil
		}
		return left != right, nil
	default:
		return nil, errors.New("not foldable")
	}
}

func isNumber(v any) bool {
	switch v.(type) {
	case int64, float64:
		return true
	default:
		return false
	}
}

func toFloat(v any) float64 {
	switch val := v.(type) {
	case int64:
		return float64(val)
	case float64:
		return val
	default:
		return 0
	}
}

func intPow(base, exp int64) int64 {
	result := int64(1)
	for i := int64(0); i < exp; i++ {
		result *= base
	}
	return result
}

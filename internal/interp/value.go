package interp

import (
	"strconv"
	"strings"
)

// ValueKind is the runtime tag of a Value.
type ValueKind int

const (
	KindInt ValueKind = iota
	KindFloat
	KindBool
	KindString
	KindArray
)

// Value is a tagged runtime value. Only the field selected by Kind is
// meaningful.
type Value struct {
	Array []Value
	Str   string
	Int   int64
	Float float64
	Kind  ValueKind
	Bool  bool
}

func IntValue(v int64) Value     { return Value{Kind: KindInt, Int: v} }
func FloatValue(v float64) Value { return Value{Kind: KindFloat, Float: v} }
func BoolValue(v bool) Value     { return Value{Kind: KindBool, Bool: v} }
func StringValue(v string) Value { return Value{Kind: KindString, Str: v} }
func ArrayValue(v []Value) Value { return Value{Kind: KindArray, Array: v} }

func (v Value) IsNumeric() bool { return v.Kind == KindInt || v.Kind == KindFloat }

// AsFloat widens an int or float value to float64.
func (v Value) AsFloat() float64 {
	if v.Kind == KindInt {
		return float64(v.Int)
	}
	return v.Float
}

// Truthy reports the truthiness `and`/`or` and the conditional jumps
// apply: zero numbers, empty strings, and empty arrays are false.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int != 0
	case KindFloat:
		return v.Float != 0
	case KindString:
		return v.Str != ""
	case KindArray:
		return len(v.Array) > 0
	default:
		return false
	}
}

// String renders a value the way `print` emits it: bare, no quoting.
// Bools render as "True"/"False", whole floats keep a trailing ".0" so
// they stay distinguishable from ints, and arrays render their
// elements comma-joined with strings quoted.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return floatString(v.Float)
	case KindBool:
		if v.Bool {
			return "True"
		}
		return "False"
	case KindString:
		return v.Str
	case KindArray:
		parts := make([]string, len(v.Array))
		for i, e := range v.Array {
			parts[i] = e.repr()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "?"
	}
}

// repr renders a value as it appears nested inside an array: strings
// quoted, everything else as String() already renders it.
func (v Value) repr() string {
	if v.Kind == KindString {
		return "'" + v.Str + "'"
	}
	return v.String()
}

// floatString renders a float in shortest form, appending ".0" when that
// form has neither a decimal point nor an exponent.
func floatString(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

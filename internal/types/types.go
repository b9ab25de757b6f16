// Package types implements MiniLang's closed type system: int, float,
// bool, string, one level of T[] array nesting, and void.
package types

import "fmt"

// Kind enumerates the closed set of base type tags.
type Kind int

const (
	Void Kind = iota
	Int
	Float
	Bool
	String
	Array
)

// Type is an immutable type value. Only Array carries an Elem.
type Type struct {
	Elem *Type
	Kind Kind
}

var (
	VoidType   = Type{Kind: Void}
	IntType    = Type{Kind: Int}
	FloatType  = Type{Kind: Float}
	BoolType   = Type{Kind: Bool}
	StringType = Type{Kind: String}
)

// ArrayOf builds the array type T[].
func ArrayOf(elem Type) Type {
	e := elem
	return Type{Kind: Array, Elem: &e}
}

func (t Type) IsArray() bool   { return t.Kind == Array }
func (t Type) IsNumeric() bool { return t.Kind == Int || t.Kind == Float }
func (t Type) IsVoid() bool    { return t.Kind == Void }

func (t Type) String() string {
	switch t.Kind {
	case Void:
		return "void"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case String:
		return "string"
	case Array:
		if t.Elem == nil {
			return "array"
		}
		return fmt.Sprintf("%s[]", t.Elem.String())
	default:
		return "unknown"
	}
}

// Equal reports whether two types are structurally identical.
func Equal(a, b Type) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == Array {
		if a.Elem == nil || b.Elem == nil {
			return a.Elem == b.Elem
		}
		return Equal(*a.Elem, *b.Elem)
	}
	return true
}

// Compatible reports whether a value of type actual may be used where
// expected is required: identical types are always compatible,
// and int widens implicitly to float. No other implicit conversion exists.
func Compatible(expected, actual Type) bool {
	if Equal(expected, actual) {
		return true
	}
	return expected.Kind == Float && actual.Kind == Int
}

// ArithmeticResult returns the result type of a binary arithmetic operator
// applied to two numeric operands: float if either operand is float, else
// int.
func ArithmeticResult(left, right Type) Type {
	if left.Kind == Float || right.Kind == Float {
		return FloatType
	}
	return IntType
}

package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Dump renders an indented tree of prog, for the `minilang parse` and
// `minilang run --dump-ast` debugging output. It dispatches on concrete node type via
// a single type switch, like every other pass over this tree.
func Dump(prog *Program) string {
	var sb strings.Builder
	sb.WriteString("Program\n")
	for _, stmt := range prog.Statements {
		dumpStmt(&sb, stmt, 1)
	}
	return sb.String()
}

func indent(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
}

func dumpStmt(sb *strings.Builder, stmt Stmt, depth int) {
	switch n := stmt.(type) {
	case *VarDecl:
		indent(sb, depth)
		fmt.Fprintf(sb, "VarDecl %s: %s\n", n.Name, n.DeclaredType)
		if n.Initializer != nil {
			dumpExpr(sb, n.Initializer, depth+1)
		}
	case *Assignment:
		indent(sb, depth)
		fmt.Fprintf(sb, "Assignment %s =\n", n.Name)
		dumpExpr(sb, n.Value, depth+1)
	case *ArrayAssignment:
		indent(sb, depth)
		fmt.Fprintf(sb, "ArrayAssignment %s[...] =\n", n.ArrayName)
		dumpExpr(sb, n.Index, depth+1)
		dumpExpr(sb, n.Value, depth+1)
	case *If:
		indent(sb, depth)
		sb.WriteString("If\n")
		dumpExpr(sb, n.Condition, depth+1)
		indent(sb, depth)
		sb.WriteString("Then\n")
		for _, s := range n.Then {
			dumpStmt(sb, s, depth+1)
		}
		if n.Else != nil {
			indent(sb, depth)
			sb.WriteString("Else\n")
			for _, s := range n.Else {
				dumpStmt(sb, s, depth+1)
			}
		}
	case *While:
		indent(sb, depth)
		sb.WriteString("While\n")
		dumpExpr(sb, n.Condition, depth+1)
		for _, s := range n.Body {
			dumpStmt(sb, s, depth+1)
		}
	case *For:
		indent(sb, depth)
		sb.WriteString("For\n")
		if n.Init != nil {
			dumpStmt(sb, n.Init, depth+1)
		}
		if n.Condition != nil {
			dumpExpr(sb, n.Condition, depth+1)
		}
		if n.Update != nil {
			dumpStmt(sb, n.Update, depth+1)
		}
		for _, s := range n.Body {
			dumpStmt(sb, s, depth+1)
		}
	case *FunctionDef:
		indent(sb, depth)
		params := make([]string, len(n.Parameters))
		for i, p := range n.Parameters {
			params[i] = p.Name + ": " + p.Type.String()
		}
		fmt.Fprintf(sb, "FunctionDef %s(%s): %s\n", n.Name, strings.Join(params, ", "), n.ReturnType)
		for _, s := range n.Body {
			dumpStmt(sb, s, depth+1)
		}
	case *Return:
		indent(sb, depth)
		sb.WriteString("Return\n")
		if n.Value != nil {
			dumpExpr(sb, n.Value, depth+1)
		}
	case *Print:
		indent(sb, depth)
		sb.WriteString("Print\n")
		for _, e := range n.Expressions {
			dumpExpr(sb, e, depth+1)
		}
	case *ExprStmt:
		indent(sb, depth)
		sb.WriteString("ExprStmt\n")
		dumpExpr(sb, n.Expr, depth+1)
	default:
		indent(sb, depth)
		fmt.Fprintf(sb, "<unknown stmt %T>\n", n)
	}
}

func dumpExpr(sb *strings.Builder, expr Expr, depth int) {
	switch n := expr.(type) {
	case *Literal:
		indent(sb, depth)
		fmt.Fprintf(sb, "Literal %s\n", literalText(n))
	case *Identifier:
		indent(sb, depth)
		fmt.Fprintf(sb, "Identifier %s\n", n.Name)
	case *BinaryOp:
		indent(sb, depth)
		fmt.Fprintf(sb, "BinaryOp %s\n", n.Operator)
		dumpExpr(sb, n.Left, depth+1)
		dumpExpr(sb, n.Right, depth+1)
	case *UnaryOp:
		indent(sb, depth)
		fmt.Fprintf(sb, "UnaryOp %s\n", n.Operator)
		dumpExpr(sb, n.Operand, depth+1)
	case *FunctionCall:
		indent(sb, depth)
		fmt.Fprintf(sb, "FunctionCall %s\n", n.Name)
		for _, a := range n.Arguments {
			dumpExpr(sb, a, depth+1)
		}
	case *ArrayLiteral:
		indent(sb, depth)
		sb.WriteString("ArrayLiteral\n")
		for _, e := range n.Elements {
			dumpExpr(sb, e, depth+1)
		}
	case *ArrayAccess:
		indent(sb, depth)
		sb.WriteString("ArrayAccess\n")
		dumpExpr(sb, n.Array, depth+1)
		dumpExpr(sb, n.Index, depth+1)
	case *BuiltinCall:
		indent(sb, depth)
		fmt.Fprintf(sb, "BuiltinCall %s\n", n.Function)
		for _, a := range n.Arguments {
			dumpExpr(sb, a, depth+1)
		}
	default:
		indent(sb, depth)
		fmt.Fprintf(sb, "<unknown expr %T>\n", n)
	}
}

func literalText(n *Literal) string {
	switch n.Kind {
	case LitInt:
		return strconv.FormatInt(n.IntVal, 10)
	case LitFloat:
		return strconv.FormatFloat(n.FloatVal, 'g', -1, 64)
	case LitBool:
		return strconv.FormatBool(n.BoolVal)
	case LitString:
		return strconv.Quote(n.StringVal)
	default:
		return "?"
	}
}

package ir

import (
	"strconv"

	"minilang/internal/ast"
)

// Generator lowers a validated AST to a flat three-address instruction
// list. Temp and label counters are monotonic across the whole
// program, so names never collide between statements.
type Generator struct {
	code          []Instruction
	lastExprValue *Operand
	tempCount     int
	labelCount    int
}

// New creates a fresh Generator.
func New() *Generator {
	return &Generator{}
}

// Generate lowers prog and returns the resulting instruction list.
func Generate(prog *ast.Program) []Instruction {
	g := New()
	g.genProgram(prog)
	return g.code
}

// GenStmt lowers a single top-level statement, appending to g's
// accumulated code. Used by the REPL to grow one program incrementally,
// keeping temp/label counters monotonic across lines the same way they
// are monotonic across one Generate call. When stmt is a bare expression
// statement, GenStmt returns the operand holding its value so the
// caller can echo it; for every other statement kind it returns nil.
func (g *Generator) GenStmt(stmt ast.Stmt) *Operand {
	g.lastExprValue = nil
	g.genStmt(stmt)
	if _, ok := stmt.(*ast.ExprStmt); ok {
		return g.lastExprValue
	}
	return nil
}

// Code returns the instructions emitted so far.
func (g *Generator) Code() []Instruction {
	return g.code
}

func (g *Generator) newTemp() Operand {
	name := "t" + strconv.Itoa(g.tempCount)
	g.tempCount++
	return Var(name)
}

func (g *Generator) newLabel() Operand {
	name := "L" + strconv.Itoa(g.labelCount)
	g.labelCount++
	return Label(name)
}

func (g *Generator) emit(op Op, arg1, arg2, result *Operand, pos ast.Pos) {
	g.code = append(g.code, Instruction{Op: op, Arg1: arg1, Arg2: arg2, Result: result, Line: pos.Line, Column: pos.Column})
}

func opnd(o Operand) *Operand { return &o }

func (g *Generator) genProgram(prog *ast.Program) {
	for _, stmt := range prog.Statements {
		g.genStmt(stmt)
	}
}

// ===== Statements =====

func (g *Generator) genStmt(stmt ast.Stmt) {
	switch n := stmt.(type) {
	case *ast.VarDecl:
		g.genVarDecl(n)
	case *ast.Assignment:
		value := g.genExpr(n.Value)
		g.emit(OpAssign, opnd(value), nil, opnd(Var(n.Name)), n.Pos)
	case *ast.ArrayAssignment:
		g.genArrayAssignment(n)
	case *ast.If:
		g.genIf(n)
	case *ast.While:
		g.genWhile(n)
	case *ast.For:
		g.genFor(n)
	case *ast.FunctionDef:
		g.genFunctionDef(n)
	case *ast.Return:
		g.genReturn(n)
	case *ast.Print:
		g.genPrint(n)
	case *ast.ExprStmt:
		value := g.genExpr(n.Expr)
		g.lastExprValue = opnd(value)
	}
}

func (g *Generator) genVarDecl(n *ast.VarDecl) {
	if n.Initializer == nil {
		return
	}
	value := g.genExpr(n.Initializer)
	g.emit(OpAssign, opnd(value), nil, opnd(Var(n.Name)), n.Pos)
}

func (g *Generator) genArrayAssignment(n *ast.ArrayAssignment) {
	index := g.genExpr(n.Index)
	value := g.genExpr(n.Value)
	g.emit(OpArraySet, opnd(index), opnd(value), opnd(Var(n.ArrayName)), n.Pos)
}

func (g *Generator) genIf(n *ast.If) {
	cond := g.genExpr(n.Condition)
	falseLabel := g.newLabel()

	if n.Else == nil {
		g.emit(OpIfFalse, opnd(cond), nil, opnd(falseLabel), n.Pos)
		for _, stmt := range n.Then {
			g.genStmt(stmt)
		}
		g.emit(OpLabel, nil, nil, opnd(falseLabel), n.Pos)
		return
	}

	endLabel := g.newLabel()
	g.emit(OpIfFalse, opnd(cond), nil, opnd(falseLabel), n.Pos)
	for _, stmt := range n.Then {
		g.genStmt(stmt)
	}
	g.emit(OpGoto, nil, nil, opnd(endLabel), n.Pos)
	g.emit(OpLabel, nil, nil, opnd(falseLabel), n.Pos)
	for _, stmt := range n.Else {
		g.genStmt(stmt)
	}
	g.emit(OpLabel, nil, nil, opnd(endLabel), n.Pos)
}

func (g *Generator) genWhile(n *ast.While) {
	startLabel := g.newLabel()
	endLabel := g.newLabel()

	g.emit(OpLabel, nil, nil, opnd(startLabel), n.Pos)
	cond := g.genExpr(n.Condition)
	g.emit(OpIfFalse, opnd(cond), nil, opnd(endLabel), n.Pos)
	for _, stmt := range n.Body {
		g.genStmt(stmt)
	}
	g.emit(OpGoto, nil, nil, opnd(startLabel), n.Pos)
	g.emit(OpLabel, nil, nil, opnd(endLabel), n.Pos)
}

func (g *Generator) genFor(n *ast.For) {
	if n.Init != nil {
		g.genStmt(n.Init)
	}
	startLabel := g.newLabel()
	endLabel := g.newLabel()

	g.emit(OpLabel, nil, nil, opnd(startLabel), n.Pos)
	cond := g.genExpr(n.Condition)
	g.emit(OpIfFalse, opnd(cond), nil, opnd(endLabel), n.Pos)
	for _, stmt := range n.Body {
		g.genStmt(stmt)
	}
	if n.Update != nil {
		g.genStmt(n.Update)
	}
	g.emit(OpGoto, nil, nil, opnd(startLabel), n.Pos)
	g.emit(OpLabel, nil, nil, opnd(endLabel), n.Pos)
}

func (g *Generator) genFunctionDef(n *ast.FunctionDef) {
	g.emit(OpBeginFunc, opnd(Var(n.Name)), nil, nil, n.Pos)

	for _, p := range n.Parameters {
		g.emit(OpParamDecl, opnd(Var(p.Name)), nil, nil, n.Pos)
	}
	for _, stmt := range n.Body {
		g.genStmt(stmt)
	}
	g.emit(OpEndFunc, opnd(Var(n.Name)), nil, nil, n.Pos)
}

func (g *Generator) genReturn(n *ast.Return) {
	if n.Value == nil {
		g.emit(OpReturn, nil, nil, nil, n.Pos)
		return
	}
	value := g.genExpr(n.Value)
	g.emit(OpReturn, opnd(value), nil, nil, n.Pos)
}

func (g *Generator) genPrint(n *ast.Print) {
	for _, e := range n.Expressions {
		value := g.genExpr(e)
		g.emit(OpPrint, opnd(value), nil, nil, n.Pos)
	}
}

// ===== Expressions =====

// genExpr lowers expr and returns the operand holding its value: the
// expression itself for literals/identifiers, a fresh temporary for
// everything else.
func (g *Generator) genExpr(expr ast.Expr) Operand {
	switch n := expr.(type) {
	case *ast.Literal:
		return g.genLiteral(n)
	case *ast.Identifier:
		return Var(n.Name)
	case *ast.BinaryOp:
		return g.genBinaryOp(n)
	case *ast.UnaryOp:
		return g.genUnaryOp(n)
	case *ast.FunctionCall:
		return g.genFunctionCall(n)
	case *ast.ArrayLiteral:
		return g.genArrayLiteral(n)
	case *ast.ArrayAccess:
		return g.genArrayAccess(n)
	case *ast.BuiltinCall:
		return g.genBuiltinCall(n)
	default:
		return Var("?")
	}
}

func (g *Generator) genLiteral(n *ast.Literal) Operand {
	switch n.Kind {
	case ast.LitInt:
		return IntConst(n.IntVal)
	case ast.LitFloat:
		return FloatConst(n.FloatVal)
	case ast.LitBool:
		return BoolConst(n.BoolVal)
	default:
		return StrConst(n.StringVal)
	}
}

func (g *Generator) genBinaryOp(n *ast.BinaryOp) Operand {
	left := g.genExpr(n.Left)
	right := g.genExpr(n.Right)
	result := g.newTemp()
	g.emit(Op(n.Operator), opnd(left), opnd(right), opnd(result), n.Pos)
	return result
}

func (g *Generator) genUnaryOp(n *ast.UnaryOp) Operand {
	operand := g.genExpr(n.Operand)
	result := g.newTemp()
	switch n.Operator {
	case "not":
		g.emit(OpNot, opnd(operand), nil, opnd(result), n.Pos)
	default: // unary "-" reuses the binary subtraction tag
		g.emit(OpSub, opnd(operand), nil, opnd(result), n.Pos)
	}
	return result
}

func (g *Generator) genFunctionCall(n *ast.FunctionCall) Operand {
	// Argument expressions are lowered before any param is emitted, so
	// the n param instructions sit contiguously in front of the call.
	// The VM reads its arguments from exactly those n slots.
	values := make([]Operand, len(n.Arguments))
	for i, arg := range n.Arguments {
		values[i] = g.genExpr(arg)
	}
	for _, value := range values {
		g.emit(OpParam, opnd(value), nil, nil, n.Pos)
	}
	result := g.newTemp()
	g.emit(OpCall, opnd(Var(n.Name)), opnd(IntConst(int64(len(n.Arguments)))), opnd(result), n.Pos)
	return result
}

func (g *Generator) genArrayLiteral(n *ast.ArrayLiteral) Operand {
	temp := g.newTemp()
	g.emit(OpArrayInit, nil, nil, opnd(temp), n.Pos)
	for _, elem := range n.Elements {
		value := g.genExpr(elem)
		g.emit(OpArrayAppend, opnd(value), nil, opnd(temp), n.Pos)
	}
	return temp
}

func (g *Generator) genArrayAccess(n *ast.ArrayAccess) Operand {
	arrayVal := g.genExpr(n.Array)
	indexVal := g.genExpr(n.Index)
	temp := g.newTemp()
	g.emit(OpArrayGet, opnd(arrayVal), opnd(indexVal), opnd(temp), n.Pos)
	return temp
}

func (g *Generator) genBuiltinCall(n *ast.BuiltinCall) Operand {
	temp := g.newTemp()
	switch n.Function {
	case ast.BuiltinLen:
		arg := g.genExpr(n.Arguments[0])
		g.emit(OpBuiltinLen, opnd(arg), nil, opnd(temp), n.Pos)
	case ast.BuiltinRandom:
		minVal := g.genExpr(n.Arguments[0])
		maxVal := g.genExpr(n.Arguments[1])
		g.emit(OpBuiltinRandom, opnd(minVal), opnd(maxVal), opnd(temp), n.Pos)
	case ast.BuiltinSubstr:
		strVal := g.genExpr(n.Arguments[0])
		startVal := g.genExpr(n.Arguments[1])
		endVal := g.genExpr(n.Arguments[2])
		pair := Pair(startVal, endVal)
		g.emit(OpBuiltinSubstr, opnd(strVal), opnd(pair), opnd(temp), n.Pos)
	case ast.BuiltinConcat:
		a := g.genExpr(n.Arguments[0])
		b := g.genExpr(n.Arguments[1])
		g.emit(OpBuiltinConcat, opnd(a), opnd(b), opnd(temp), n.Pos)
	case ast.BuiltinInput:
		prompt := g.genExpr(n.Arguments[0])
		g.emit(OpBuiltinInput, opnd(prompt), nil, opnd(temp), n.Pos)
	}
	return temp
}

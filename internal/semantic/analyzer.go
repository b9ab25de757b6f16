// Package semantic implements MiniLang's semantic analyzer: a
// scope-chain walk that assigns a type to every expression and enforces
// the language's static rules, returning the first error immediately.
// No recovery is attempted after an error; the pipeline halts.
package semantic

import (
	"minilang/internal/ast"
	"minilang/internal/diag"
	"minilang/internal/types"
)

// Analyzer walks a Program and validates it against MiniLang's static
// rules, dispatching on concrete AST node type via type switches.
type Analyzer struct {
	scope           *SymbolTable
	currentFunction *Function
}

// New creates an Analyzer with a fresh global scope.
func New() *Analyzer {
	return &Analyzer{scope: NewSymbolTable()}
}

// Analyze validates prog, returning the first error encountered, if any.
func Analyze(prog *ast.Program) *diag.Error {
	a := New()
	return a.analyzeProgram(prog)
}

func (a *Analyzer) analyzeProgram(prog *ast.Program) *diag.Error {
	for _, stmt := range prog.Statements {
		if err := a.analyzeStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

// AnalyzeStmt checks a single statement against a's accumulated global
// scope. Used by the REPL to type-check one line at a time while
// retaining earlier declarations.
func (a *Analyzer) AnalyzeStmt(stmt ast.Stmt) *diag.Error {
	return a.analyzeStmt(stmt)
}

func (a *Analyzer) pushScope() {
	a.scope = NewEnclosedSymbolTable(a.scope)
}

func (a *Analyzer) popScope() {
	a.scope = a.scope.outer
}

// ===== Statements =====

func (a *Analyzer) analyzeStmt(stmt ast.Stmt) *diag.Error {
	switch n := stmt.(type) {
	case *ast.VarDecl:
		return a.analyzeVarDecl(n)
	case *ast.Assignment:
		return a.analyzeAssignment(n)
	case *ast.ArrayAssignment:
		return a.analyzeArrayAssignment(n)
	case *ast.If:
		return a.analyzeIf(n)
	case *ast.While:
		return a.analyzeWhile(n)
	case *ast.For:
		return a.analyzeFor(n)
	case *ast.FunctionDef:
		return a.analyzeFunctionDef(n)
	case *ast.Return:
		return a.analyzeReturn(n)
	case *ast.Print:
		return a.analyzePrint(n)
	case *ast.ExprStmt:
		_, err := a.analyzeExpr(n.Expr)
		return err
	default:
		return diag.New(diag.StageSemantic, 0, 0, "unhandled statement type %T", stmt)
	}
}

func (a *Analyzer) analyzeVarDecl(n *ast.VarDecl) *diag.Error {
	initialized := false
	if n.Initializer != nil {
		initType, err := a.analyzeExpr(n.Initializer)
		if err != nil {
			return err
		}
		if !types.Compatible(n.DeclaredType, initType) {
			return diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column,
				"cannot assign %s to %s", initType, n.DeclaredType)
		}
		initialized = true
	}
	if !a.scope.DefineVariable(n.Name, n.DeclaredType, initialized) {
		return diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column, "variable %q already declared in this scope", n.Name)
	}
	return nil
}

func (a *Analyzer) analyzeAssignment(n *ast.Assignment) *diag.Error {
	v, ok := a.scope.LookupVariable(n.Name)
	if !ok {
		return diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column, "undefined variable %q", n.Name)
	}
	valType, err := a.analyzeExpr(n.Value)
	if err != nil {
		return err
	}
	if !types.Compatible(v.Type, valType) {
		return diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column, "cannot assign %s to %s", valType, v.Type)
	}
	v.Initialized = true
	return nil
}

func (a *Analyzer) analyzeArrayAssignment(n *ast.ArrayAssignment) *diag.Error {
	v, ok := a.scope.LookupVariable(n.ArrayName)
	if !ok {
		return diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column, "undefined variable %q", n.ArrayName)
	}
	if !v.Type.IsArray() {
		return diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column, "%q is not an array", n.ArrayName)
	}
	idxType, err := a.analyzeExpr(n.Index)
	if err != nil {
		return err
	}
	if !types.Equal(idxType, types.IntType) {
		return diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column, "array index must be int, got %s", idxType)
	}
	valType, err := a.analyzeExpr(n.Value)
	if err != nil {
		return err
	}
	if !types.Compatible(*v.Type.Elem, valType) {
		return diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column, "cannot assign %s to %s", valType, *v.Type.Elem)
	}
	return nil
}

func (a *Analyzer) analyzeIf(n *ast.If) *diag.Error {
	condType, err := a.analyzeExpr(n.Condition)
	if err != nil {
		return err
	}
	if !types.Equal(condType, types.BoolType) {
		return diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column, "if condition must be bool, got %s", condType)
	}
	if err := a.analyzeBlock(n.Then); err != nil {
		return err
	}
	if n.Else != nil {
		if err := a.analyzeBlock(n.Else); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) analyzeWhile(n *ast.While) *diag.Error {
	condType, err := a.analyzeExpr(n.Condition)
	if err != nil {
		return err
	}
	if !types.Equal(condType, types.BoolType) {
		return diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column, "while condition must be bool, got %s", condType)
	}
	return a.analyzeBlock(n.Body)
}

func (a *Analyzer) analyzeFor(n *ast.For) *diag.Error {
	a.pushScope()
	defer a.popScope()

	if n.Init != nil {
		if err := a.analyzeStmt(n.Init); err != nil {
			return err
		}
	}
	condType, err := a.analyzeExpr(n.Condition)
	if err != nil {
		return err
	}
	if !types.Equal(condType, types.BoolType) {
		return diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column, "for condition must be bool, got %s", condType)
	}
	if n.Update != nil {
		if err := a.analyzeStmt(n.Update); err != nil {
			return err
		}
	}
	return a.analyzeBlock(n.Body)
}

// analyzeBlock opens a fresh nested scope for a braced statement body.
func (a *Analyzer) analyzeBlock(stmts []ast.Stmt) *diag.Error {
	a.pushScope()
	defer a.popScope()
	for _, stmt := range stmts {
		if err := a.analyzeStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) analyzeFunctionDef(n *ast.FunctionDef) *diag.Error {
	paramTypes := make([]types.Type, len(n.Parameters))
	for i, p := range n.Parameters {
		paramTypes[i] = p.Type
	}
	fn := &Function{ReturnType: n.ReturnType, Parameters: paramTypes}
	if !a.scope.DefineFunction(n.Name, fn) {
		return diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column, "function %q already declared in this scope", n.Name)
	}

	a.pushScope()
	defer a.popScope()

	for _, p := range n.Parameters {
		if !a.scope.DefineVariable(p.Name, p.Type, true) {
			return diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column, "duplicate parameter name %q", p.Name)
		}
	}

	outerFn := a.currentFunction
	a.currentFunction = fn
	defer func() { a.currentFunction = outerFn }()

	for _, stmt := range n.Body {
		if err := a.analyzeStmt(stmt); err != nil {
			return err
		}
	}

	if !fn.ReturnType.IsVoid() && !hasReturn(n.Body) {
		return diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column, "function %q must return a value of type %s", n.Name, fn.ReturnType)
	}
	return nil
}

// hasReturn reports whether stmts contains a Return anywhere, including
// nested blocks. It checks presence, not that every path returns.
func hasReturn(stmts []ast.Stmt) bool {
	for _, stmt := range stmts {
		switch n := stmt.(type) {
		case *ast.Return:
			return true
		case *ast.If:
			if hasReturn(n.Then) {
				return true
			}
			if n.Else != nil && hasReturn(n.Else) {
				return true
			}
		case *ast.While:
			if hasReturn(n.Body) {
				return true
			}
		case *ast.For:
			if hasReturn(n.Body) {
				return true
			}
		}
	}
	return false
}

func (a *Analyzer) analyzeReturn(n *ast.Return) *diag.Error {
	if a.currentFunction == nil {
		return diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column, "return used outside a function")
	}
	if n.Value == nil {
		if !a.currentFunction.ReturnType.IsVoid() {
			return diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column, "function must return a value of type %s", a.currentFunction.ReturnType)
		}
		return nil
	}
	valType, err := a.analyzeExpr(n.Value)
	if err != nil {
		return err
	}
	if !types.Compatible(a.currentFunction.ReturnType, valType) {
		return diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column, "cannot return %s from function declared to return %s", valType, a.currentFunction.ReturnType)
	}
	return nil
}

func (a *Analyzer) analyzePrint(n *ast.Print) *diag.Error {
	for _, e := range n.Expressions {
		if _, err := a.analyzeExpr(e); err != nil {
			return err
		}
	}
	return nil
}

// ===== Expressions =====

func (a *Analyzer) analyzeExpr(expr ast.Expr) (types.Type, *diag.Error) {
	switch n := expr.(type) {
	case *ast.Literal:
		return a.analyzeLiteral(n), nil
	case *ast.Identifier:
		v, ok := a.scope.LookupVariable(n.Name)
		if !ok {
			return types.Type{}, diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column, "undefined variable %q", n.Name)
		}
		return v.Type, nil
	case *ast.BinaryOp:
		return a.analyzeBinaryOp(n)
	case *ast.UnaryOp:
		return a.analyzeUnaryOp(n)
	case *ast.FunctionCall:
		return a.analyzeFunctionCall(n)
	case *ast.ArrayLiteral:
		return a.analyzeArrayLiteral(n)
	case *ast.ArrayAccess:
		return a.analyzeArrayAccess(n)
	case *ast.BuiltinCall:
		return a.analyzeBuiltinCall(n)
	default:
		return types.Type{}, diag.New(diag.StageSemantic, 0, 0, "unhandled expression type %T", expr)
	}
}

func (a *Analyzer) analyzeLiteral(n *ast.Literal) types.Type {
	switch n.Kind {
	case ast.LitInt:
		return types.IntType
	case ast.LitFloat:
		return types.FloatType
	case ast.LitBool:
		return types.BoolType
	default:
		return types.StringType
	}
}

func (a *Analyzer) analyzeBinaryOp(n *ast.BinaryOp) (types.Type, *diag.Error) {
	leftType, err := a.analyzeExpr(n.Left)
	if err != nil {
		return types.Type{}, err
	}
	rightType, err := a.analyzeExpr(n.Right)
	if err != nil {
		return types.Type{}, err
	}

	switch n.Operator {
	case "+", "-", "*", "/", "%", "**":
		if !leftType.IsNumeric() || !rightType.IsNumeric() {
			return types.Type{}, diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column,
				"operator %q requires numeric operands, got %s and %s", n.Operator, leftType, rightType)
		}
		return types.ArithmeticResult(leftType, rightType), nil
	case "<", ">", "<=", ">=":
		if !leftType.IsNumeric() || !rightType.IsNumeric() {
			return types.Type{}, diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column,
				"operator %q requires numeric operands, got %s and %s", n.Operator, leftType, rightType)
		}
		return types.BoolType, nil
	case "==", "!=":
		if !types.Compatible(leftType, rightType) && !types.Compatible(rightType, leftType) {
			return types.Type{}, diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column,
				"cannot compare %s and %s", leftType, rightType)
		}
		return types.BoolType, nil
	case "and", "or":
		if !types.Equal(leftType, types.BoolType) || !types.Equal(rightType, types.BoolType) {
			return types.Type{}, diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column,
				"operator %q requires bool operands, got %s and %s", n.Operator, leftType, rightType)
		}
		return types.BoolType, nil
	default:
		return types.Type{}, diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column, "unknown operator %q", n.Operator)
	}
}

func (a *Analyzer) analyzeUnaryOp(n *ast.UnaryOp) (types.Type, *diag.Error) {
	operandType, err := a.analyzeExpr(n.Operand)
	if err != nil {
		return types.Type{}, err
	}
	switch n.Operator {
	case "-":
		if !operandType.IsNumeric() {
			return types.Type{}, diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column, "unary '-' requires a numeric operand, got %s", operandType)
		}
		return operandType, nil
	case "not":
		if !types.Equal(operandType, types.BoolType) {
			return types.Type{}, diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column, "unary 'not' requires a bool operand, got %s", operandType)
		}
		return types.BoolType, nil
	default:
		return types.Type{}, diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column, "unknown unary operator %q", n.Operator)
	}
}

func (a *Analyzer) analyzeFunctionCall(n *ast.FunctionCall) (types.Type, *diag.Error) {
	fn, ok := a.scope.LookupFunction(n.Name)
	if !ok {
		return types.Type{}, diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column, "undefined function %q", n.Name)
	}
	if len(n.Arguments) != len(fn.Parameters) {
		return types.Type{}, diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column,
			"function %q expects %d argument(s), got %d", n.Name, len(fn.Parameters), len(n.Arguments))
	}
	for i, arg := range n.Arguments {
		argType, err := a.analyzeExpr(arg)
		if err != nil {
			return types.Type{}, err
		}
		if !types.Compatible(fn.Parameters[i], argType) {
			return types.Type{}, diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column,
				"argument %d to %q: cannot use %s as %s", i+1, n.Name, argType, fn.Parameters[i])
		}
	}
	return fn.ReturnType, nil
}

func (a *Analyzer) analyzeArrayLiteral(n *ast.ArrayLiteral) (types.Type, *diag.Error) {
	if len(n.Elements) == 0 {
		return types.ArrayOf(types.IntType), nil
	}
	firstType, err := a.analyzeExpr(n.Elements[0])
	if err != nil {
		return types.Type{}, err
	}
	for _, elem := range n.Elements[1:] {
		elemType, err := a.analyzeExpr(elem)
		if err != nil {
			return types.Type{}, err
		}
		if !types.Compatible(firstType, elemType) {
			return types.Type{}, diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column,
				"array element type mismatch: expected %s, got %s", firstType, elemType)
		}
	}
	return types.ArrayOf(firstType), nil
}

func (a *Analyzer) analyzeArrayAccess(n *ast.ArrayAccess) (types.Type, *diag.Error) {
	arrType, err := a.analyzeExpr(n.Array)
	if err != nil {
		return types.Type{}, err
	}
	if !arrType.IsArray() {
		return types.Type{}, diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column, "cannot index non-array type %s", arrType)
	}
	idxType, err := a.analyzeExpr(n.Index)
	if err != nil {
		return types.Type{}, err
	}
	if !types.Equal(idxType, types.IntType) {
		return types.Type{}, diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column, "array index must be int, got %s", idxType)
	}
	return *arrType.Elem, nil
}

func (a *Analyzer) analyzeBuiltinCall(n *ast.BuiltinCall) (types.Type, *diag.Error) {
	argTypes := make([]types.Type, len(n.Arguments))
	for i, arg := range n.Arguments {
		t, err := a.analyzeExpr(arg)
		if err != nil {
			return types.Type{}, err
		}
		argTypes[i] = t
	}

	fail := func(want string) (types.Type, *diag.Error) {
		return types.Type{}, diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column,
			"%s expects %s", n.Function, want)
	}

	switch n.Function {
	case ast.BuiltinLen:
		if len(argTypes) != 1 || !(argTypes[0].IsArray() || types.Equal(argTypes[0], types.StringType)) {
			return fail("(array|string)")
		}
		return types.IntType, nil
	case ast.BuiltinRandom:
		if len(argTypes) != 2 || !argTypes[0].IsNumeric() || !argTypes[1].IsNumeric() {
			return fail("(numeric, numeric)")
		}
		return types.IntType, nil
	case ast.BuiltinSubstr:
		if len(argTypes) != 3 || !types.Equal(argTypes[0], types.StringType) ||
			!types.Equal(argTypes[1], types.IntType) || !types.Equal(argTypes[2], types.IntType) {
			return fail("(string, int, int)")
		}
		return types.StringType, nil
	case ast.BuiltinConcat:
		if len(argTypes) != 2 || !types.Equal(argTypes[0], types.StringType) || !types.Equal(argTypes[1], types.StringType) {
			return fail("(string, string)")
		}
		return types.StringType, nil
	case ast.BuiltinInput:
		if len(argTypes) != 1 || !types.Equal(argTypes[0], types.StringType) {
			return fail("(string)")
		}
		return types.StringType, nil
	default:
		return types.Type{}, diag.New(diag.StageSemantic, n.Pos.Line, n.Pos.Column, "unknown built-in function")
	}
}

package parser

import (
	"testing"

	"minilang/internal/ast"
	"minilang/internal/lexer"
	"minilang/internal/types"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, lerr := lexer.New(src).Tokenize()
	if lerr != nil {
		t.Fatalf("unexpected lex error: %v", lerr)
	}
	prog, perr := Parse(toks)
	if perr != nil {
		t.Fatalf("unexpected parse error for %q: %v", src, perr)
	}
	return prog
}

func TestParseVarDeclWithInitializer(t *testing.T) {
	prog := mustParse(t, "int x = 2 + 3 * 4;")
	if len(prog.Statements) != 1 {
		t.Fatalf("statements = %d, want 1", len(prog.Statements))
	}
	decl, ok := prog.Statements[0].(*ast.VarDecl)
	if !ok {
		t.Fatalf("statement type = %T, want *ast.VarDecl", prog.Statements[0])
	}
	if decl.Name != "x" || !types.Equal(decl.DeclaredType, types.IntType) {
		t.Fatalf("decl = %+v", decl)
	}
	bin, ok := decl.Initializer.(*ast.BinaryOp)
	if !ok || bin.Operator != "+" {
		t.Fatalf("initializer = %+v, want top-level '+'", decl.Initializer)
	}
	// precedence: `*` binds tighter than `+`, so the right side of `+`
	// must be the `3 * 4` subtree, not `3`.
	rhs, ok := bin.Right.(*ast.BinaryOp)
	if !ok || rhs.Operator != "*" {
		t.Fatalf("rhs of + = %+v, want '*' subtree", bin.Right)
	}
}

func TestParseArrayDecl(t *testing.T) {
	prog := mustParse(t, "int[] a = [1, 2, 3];")
	decl := prog.Statements[0].(*ast.VarDecl)
	if !types.Equal(decl.DeclaredType, types.ArrayOf(types.IntType)) {
		t.Fatalf("declared type = %s, want int[]", decl.DeclaredType)
	}
	lit, ok := decl.Initializer.(*ast.ArrayLiteral)
	if !ok || len(lit.Elements) != 3 {
		t.Fatalf("initializer = %+v, want 3-element array literal", decl.Initializer)
	}
}

func TestParsePowerIsRightAssociative(t *testing.T) {
	prog := mustParse(t, "int x = 2 ** 3 ** 2;")
	decl := prog.Statements[0].(*ast.VarDecl)
	top, ok := decl.Initializer.(*ast.BinaryOp)
	if !ok || top.Operator != "**" {
		t.Fatalf("top = %+v, want '**'", decl.Initializer)
	}
	// right-associative: 2 ** (3 ** 2), so the right child is itself '**'.
	if _, ok := top.Right.(*ast.BinaryOp); !ok {
		t.Fatalf("right child = %+v, want nested '**' BinaryOp", top.Right)
	}
	if _, ok := top.Left.(*ast.Literal); !ok {
		t.Fatalf("left child = %+v, want a literal leaf", top.Left)
	}
}

func TestParseUnaryMinusAndNot(t *testing.T) {
	prog := mustParse(t, "bool b = not true; int n = -5;")
	bDecl := prog.Statements[0].(*ast.VarDecl)
	notOp, ok := bDecl.Initializer.(*ast.UnaryOp)
	if !ok || notOp.Operator != "not" {
		t.Fatalf("b initializer = %+v, want unary 'not'", bDecl.Initializer)
	}
	nDecl := prog.Statements[1].(*ast.VarDecl)
	negOp, ok := nDecl.Initializer.(*ast.UnaryOp)
	if !ok || negOp.Operator != "-" {
		t.Fatalf("n initializer = %+v, want unary '-'", nDecl.Initializer)
	}
}

func TestParseIfElse(t *testing.T) {
	prog := mustParse(t, `if (x < 10) { print(1); } else { print(2); }`)
	ifNode, ok := prog.Statements[0].(*ast.If)
	if !ok {
		t.Fatalf("statement type = %T, want *ast.If", prog.Statements[0])
	}
	if len(ifNode.Then) != 1 || len(ifNode.Else) != 1 {
		t.Fatalf("then/else lengths = %d/%d, want 1/1", len(ifNode.Then), len(ifNode.Else))
	}
}

func TestParseWhileLoop(t *testing.T) {
	prog := mustParse(t, `while (i < 3) { i = i + 1; }`)
	w, ok := prog.Statements[0].(*ast.While)
	if !ok || len(w.Body) != 1 {
		t.Fatalf("statement = %+v, want *ast.While with 1 body stmt", prog.Statements[0])
	}
}

func TestParseForLoop(t *testing.T) {
	prog := mustParse(t, `for (int i = 0; i < 3; i = i + 1) { print(i); }`)
	f, ok := prog.Statements[0].(*ast.For)
	if !ok {
		t.Fatalf("statement type = %T, want *ast.For", prog.Statements[0])
	}
	if _, ok := f.Init.(*ast.VarDecl); !ok {
		t.Fatalf("for-init = %+v, want *ast.VarDecl", f.Init)
	}
	if _, ok := f.Update.(*ast.Assignment); !ok {
		t.Fatalf("for-update = %+v, want *ast.Assignment", f.Update)
	}
}

func TestParseFunctionDefAndCall(t *testing.T) {
	prog := mustParse(t, `
function int add(int a, int b) {
  return a + b;
}
int r = add(1, 2);`)
	fn, ok := prog.Statements[0].(*ast.FunctionDef)
	if !ok {
		t.Fatalf("statement type = %T, want *ast.FunctionDef", prog.Statements[0])
	}
	if fn.Name != "add" || len(fn.Parameters) != 2 || !types.Equal(fn.ReturnType, types.IntType) {
		t.Fatalf("fn = %+v", fn)
	}
	decl := prog.Statements[1].(*ast.VarDecl)
	call, ok := decl.Initializer.(*ast.FunctionCall)
	if !ok || call.Name != "add" || len(call.Arguments) != 2 {
		t.Fatalf("call = %+v", decl.Initializer)
	}
}

func TestParseArrayAccessAndAssignment(t *testing.T) {
	prog := mustParse(t, `int[] a = [1, 2]; a[0] = 9; int x = a[1];`)
	assign, ok := prog.Statements[1].(*ast.ArrayAssignment)
	if !ok || assign.ArrayName != "a" {
		t.Fatalf("statement = %+v, want ArrayAssignment on 'a'", prog.Statements[1])
	}
	decl := prog.Statements[2].(*ast.VarDecl)
	if _, ok := decl.Initializer.(*ast.ArrayAccess); !ok {
		t.Fatalf("initializer = %+v, want ArrayAccess", decl.Initializer)
	}
}

func TestParseBuiltinCall(t *testing.T) {
	prog := mustParse(t, `int n = len("hi");`)
	decl := prog.Statements[0].(*ast.VarDecl)
	call, ok := decl.Initializer.(*ast.BuiltinCall)
	if !ok || call.Function != ast.BuiltinLen {
		t.Fatalf("initializer = %+v, want BuiltinCall(len)", decl.Initializer)
	}
}

func TestParsePrintStatement(t *testing.T) {
	prog := mustParse(t, `print(1, "two", true);`)
	p, ok := prog.Statements[0].(*ast.Print)
	if !ok || len(p.Expressions) != 3 {
		t.Fatalf("statement = %+v, want Print with 3 expressions", prog.Statements[0])
	}
}

func TestParseExpressionStatementForBareCall(t *testing.T) {
	prog := mustParse(t, `
function void noop() { return; }
noop();`)
	if _, ok := prog.Statements[1].(*ast.ExprStmt); !ok {
		t.Fatalf("statement = %+v, want *ast.ExprStmt", prog.Statements[1])
	}
}

func TestParseUnexpectedTokenIsSyntaxError(t *testing.T) {
	toks, lerr := lexer.New("int x = ;").Tokenize()
	if lerr != nil {
		t.Fatalf("unexpected lex error: %v", lerr)
	}
	_, err := Parse(toks)
	if err == nil {
		t.Fatal("expected a syntax error")
	}
	if err.Stage != "parse" {
		t.Errorf("stage = %s, want parse", err.Stage)
	}
}

func TestParseUnexpectedEOFInsideBlock(t *testing.T) {
	toks, lerr := lexer.New("if (true) { print(1);").Tokenize()
	if lerr != nil {
		t.Fatalf("unexpected lex error: %v", lerr)
	}
	_, err := Parse(toks)
	if err == nil {
		t.Fatal("expected a syntax error for an unterminated block")
	}
}

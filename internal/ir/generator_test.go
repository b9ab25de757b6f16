package ir

import (
	"testing"

	"minilang/internal/lexer"
	"minilang/internal/parser"
)

func genSource(t *testing.T, src string) []Instruction {
	t.Helper()
	toks, lerr := lexer.New(src).Tokenize()
	if lerr != nil {
		t.Fatalf("unexpected lex error: %v", lerr)
	}
	prog, perr := parser.Parse(toks)
	if perr != nil {
		t.Fatalf("unexpected parse error: %v", perr)
	}
	return Generate(prog)
}

func opEquals(t *testing.T, got *Operand, wantKind OperandKind, wantName string) {
	t.Helper()
	if got == nil {
		t.Fatalf("operand is nil, want kind %v name %q", wantKind, wantName)
	}
	if got.Kind != wantKind {
		t.Errorf("operand kind = %v, want %v", got.Kind, wantKind)
	}
	if wantName != "" && got.Name != wantName {
		t.Errorf("operand name = %q, want %q", got.Name, wantName)
	}
}

func TestGenerateVarDeclEmitsAssign(t *testing.T) {
	code := genSource(t, "int x = 1 + 2;")
	if len(code) != 2 {
		t.Fatalf("instruction count = %d, want 2 (add, assign)", len(code))
	}
	if code[0].Op != OpAdd {
		t.Errorf("code[0].Op = %s, want +", code[0].Op)
	}
	if code[1].Op != OpAssign {
		t.Errorf("code[1].Op = %s, want assign", code[1].Op)
	}
	opEquals(t, code[1].Result, KindVar, "x")
}

func TestGenerateUninitializedVarDeclEmitsNothing(t *testing.T) {
	code := genSource(t, "int x;")
	if len(code) != 0 {
		t.Fatalf("instruction count = %d, want 0", len(code))
	}
}

func TestGenerateTempsAreMonotonicAcrossStatements(t *testing.T) {
	code := genSource(t, "int a = 1 + 2; int b = 3 + 4;")
	// Each `+` allocates one temp; the second statement's temp name must
	// not reuse "t0" from the first.
	if code[0].Result.Name != "t0" {
		t.Errorf("first temp = %q, want t0", code[0].Result.Name)
	}
	if code[2].Result.Name != "t1" {
		t.Errorf("second temp = %q, want t1", code[2].Result.Name)
	}
}

func TestGenerateUnaryMinusReusesOpSubWithNilArg2(t *testing.T) {
	code := genSource(t, "int x = -5;")
	if len(code) != 2 {
		t.Fatalf("instruction count = %d, want 2", len(code))
	}
	neg := code[0]
	if neg.Op != OpSub {
		t.Errorf("Op = %s, want -", neg.Op)
	}
	if neg.Arg2 != nil {
		t.Errorf("Arg2 = %+v, want nil (arity marks this as unary)", neg.Arg2)
	}
	opEquals(t, neg.Arg1, KindIntConst, "")
	if neg.Arg1.IntVal != 5 {
		t.Errorf("Arg1.IntVal = %d, want 5", neg.Arg1.IntVal)
	}
}

func TestGenerateNotEmitsOpNot(t *testing.T) {
	code := genSource(t, "bool b = not true;")
	if code[0].Op != OpNot {
		t.Errorf("Op = %s, want not", code[0].Op)
	}
}

func TestGenerateIfWithoutElse(t *testing.T) {
	code := genSource(t, "if (true) { print(1); }")
	// if_false <cond> goto L0; print 1; L0:
	var ops []Op
	for _, ins := range code {
		ops = append(ops, ins.Op)
	}
	want := []Op{OpIfFalse, OpPrint, OpLabel}
	if len(ops) != len(want) {
		t.Fatalf("ops = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("op %d = %s, want %s", i, ops[i], want[i])
		}
	}
	opEquals(t, code[0].Result, KindLabel, code[2].Result.Name)
}

func TestGenerateIfWithElse(t *testing.T) {
	code := genSource(t, "if (true) { print(1); } else { print(2); }")
	var ops []Op
	for _, ins := range code {
		ops = append(ops, ins.Op)
	}
	want := []Op{OpIfFalse, OpPrint, OpGoto, OpLabel, OpPrint, OpLabel}
	if len(ops) != len(want) {
		t.Fatalf("ops = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("op %d = %s, want %s", i, ops[i], want[i])
		}
	}
}

func TestGenerateWhileLoopShape(t *testing.T) {
	code := genSource(t, "while (true) { print(1); }")
	var ops []Op
	for _, ins := range code {
		ops = append(ops, ins.Op)
	}
	want := []Op{OpLabel, OpIfFalse, OpPrint, OpGoto, OpLabel}
	if len(ops) != len(want) {
		t.Fatalf("ops = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("op %d = %s, want %s", i, ops[i], want[i])
		}
	}
	// the trailing goto must target the loop's start label.
	if code[3].Result.Name != code[0].Result.Name {
		t.Errorf("goto target = %q, want start label %q", code[3].Result.Name, code[0].Result.Name)
	}
}

func TestGenerateForLoopShape(t *testing.T) {
	code := genSource(t, "for (int i = 0; i < 3; i = i + 1) { print(i); }")
	var ops []Op
	for _, ins := range code {
		ops = append(ops, ins.Op)
	}
	want := []Op{OpAssign, OpLabel, OpLt, OpIfFalse, OpPrint, OpAdd, OpAssign, OpGoto, OpLabel}
	if len(ops) != len(want) {
		t.Fatalf("ops = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("op %d = %s, want %s", i, ops[i], want[i])
		}
	}
}

func TestGenerateFunctionDefFraming(t *testing.T) {
	code := genSource(t, `
function int add(int a, int b) {
  return a + b;
}`)
	if code[0].Op != OpBeginFunc || code[0].Arg1.Name != "add" {
		t.Fatalf("code[0] = %+v, want begin_func add", code[0])
	}
	if code[1].Op != OpParamDecl || code[1].Arg1.Name != "a" {
		t.Fatalf("code[1] = %+v, want param_decl a", code[1])
	}
	if code[2].Op != OpParamDecl || code[2].Arg1.Name != "b" {
		t.Fatalf("code[2] = %+v, want param_decl b", code[2])
	}
	if code[3].Op != OpAdd {
		t.Fatalf("code[3].Op = %s, want +", code[3].Op)
	}
	if code[4].Op != OpReturn {
		t.Fatalf("code[4].Op = %s, want return", code[4].Op)
	}
	last := code[len(code)-1]
	if last.Op != OpEndFunc || last.Arg1.Name != "add" {
		t.Fatalf("last instruction = %+v, want end_func add", last)
	}
}

func TestGenerateFunctionCallEmitsParamsThenCall(t *testing.T) {
	code := genSource(t, `
function int add(int a, int b) {
  return a + b;
}
int r = add(1, 2);`)
	var tail []Instruction
	for _, ins := range code {
		if ins.Op == OpParam || ins.Op == OpCall || ins.Op == OpAssign {
			tail = append(tail, ins)
		}
	}
	n := len(tail)
	if n != 4 {
		t.Fatalf("expected param, param, call, assign tail, got %d matching ops (%+v)", n, tail)
	}
	if tail[0].Op != OpParam || tail[1].Op != OpParam {
		t.Fatalf("expected two params before the call, got %+v", tail[:2])
	}
	if tail[2].Op != OpCall {
		t.Fatalf("expected call after the params, got %s", tail[2].Op)
	}
	if tail[2].Result == nil {
		t.Fatal("call instruction must carry its result temp")
	}
	if tail[3].Op != OpAssign || tail[3].Result.Name != "r" {
		t.Fatalf("expected the call's result bound to r via assign, got %+v", tail[3])
	}
}

func TestGenerateArrayLiteralAndAccess(t *testing.T) {
	code := genSource(t, "int[] a = [1, 2]; int x = a[0];")
	if code[0].Op != OpArrayInit {
		t.Fatalf("code[0].Op = %s, want array_init", code[0].Op)
	}
	if code[1].Op != OpArrayAppend || code[2].Op != OpArrayAppend {
		t.Fatalf("expected two array_append instructions, got %s, %s", code[1].Op, code[2].Op)
	}
	if code[3].Op != OpAssign {
		t.Fatalf("code[3].Op = %s, want assign (binding 'a')", code[3].Op)
	}
	var getIdx = -1
	for i, ins := range code {
		if ins.Op == OpArrayGet {
			getIdx = i
			break
		}
	}
	if getIdx == -1 {
		t.Fatal("expected an array_get instruction")
	}
}

func TestGenerateArraySetOnAssignment(t *testing.T) {
	code := genSource(t, "int[] a = [1]; a[0] = 9;")
	var found bool
	for _, ins := range code {
		if ins.Op == OpArraySet {
			found = true
			if ins.Result.Name != "a" {
				t.Errorf("array_set target = %q, want a", ins.Result.Name)
			}
		}
	}
	if !found {
		t.Fatal("expected an array_set instruction")
	}
}

func TestGenerateBuiltinSubstrUsesPairOperand(t *testing.T) {
	code := genSource(t, `string s = substr("hello", 0, 3);`)
	var substrIns *Instruction
	for i := range code {
		if code[i].Op == OpBuiltinSubstr {
			substrIns = &code[i]
		}
	}
	if substrIns == nil {
		t.Fatal("expected a builtin_substr instruction")
	}
	if substrIns.Arg2.Kind != KindPair || len(substrIns.Arg2.Pair) != 2 {
		t.Fatalf("Arg2 = %+v, want a 2-element Pair", substrIns.Arg2)
	}
}

func TestInstructionStringRendersUnaryMinusCorrectly(t *testing.T) {
	val := IntConst(5)
	result := Var("t0")
	ins := Instruction{Op: OpSub, Arg1: &val, Result: &result}
	got := ins.String()
	want := "t0 = - 5"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestInstructionStringRendersBinaryOp(t *testing.T) {
	a := IntConst(1)
	b := IntConst(2)
	result := Var("t0")
	ins := Instruction{Op: OpAdd, Arg1: &a, Arg2: &b, Result: &result}
	got := ins.String()
	want := "t0 = 1 + 2"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestListingPrefixesLineNumbers(t *testing.T) {
	code := genSource(t, "int x = 1;")
	out := Listing(code)
	if len(out) == 0 {
		t.Fatal("expected non-empty listing")
	}
	if out[:4] != "  0:" {
		t.Errorf("listing = %q, want to start with '  0:'", out)
	}
}

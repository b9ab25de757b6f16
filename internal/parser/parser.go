// Package parser implements MiniLang's recursive-descent parser: a
// precedence-climbing expression parser plus straightforward statement
// parsing, consuming the token list produced by internal/lexer and
// producing the tagged AST from internal/ast.
package parser

import (
	"minilang/internal/ast"
	"minilang/internal/diag"
	"minilang/internal/lexer"
	"minilang/internal/types"
)

// Precedence levels, lowest to highest.
const (
	lowest int = iota
	precOr
	precAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
	precPower
	precUnary
)

var binaryPrecedence = map[lexer.Kind]int{
	lexer.KwOr:     precOr,
	lexer.KwAnd:    precAnd,
	lexer.Eq:       precEquality,
	lexer.Ne:       precEquality,
	lexer.Lt:       precRelational,
	lexer.Gt:       precRelational,
	lexer.Le:       precRelational,
	lexer.Ge:       precRelational,
	lexer.Plus:     precAdditive,
	lexer.Minus:    precAdditive,
	lexer.Star:     precMultiplicative,
	lexer.Slash:    precMultiplicative,
	lexer.Percent:  precMultiplicative,
	lexer.StarStar: precPower,
}

var builtinNames = map[lexer.Kind]ast.BuiltinFunc{
	lexer.KwLen:    ast.BuiltinLen,
	lexer.KwRandom: ast.BuiltinRandom,
	lexer.KwSubstr: ast.BuiltinSubstr,
	lexer.KwConcat: ast.BuiltinConcat,
	lexer.KwInput:  ast.BuiltinInput,
}

// Parser consumes a pre-scanned token slice. A single *diag.Error halts
// parsing immediately: there is no panic-mode recovery.
type Parser struct {
	tokens []lexer.Token
	pos    int
}

// New creates a Parser over an already-tokenized source.
func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse consumes the whole token stream and returns the Program node, or
// the first syntax error encountered.
func Parse(tokens []lexer.Token) (*ast.Program, *diag.Error) {
	p := New(tokens)
	return p.parseProgram()
}

func (p *Parser) parseProgram() (*ast.Program, *diag.Error) {
	prog := &ast.Program{Pos: p.pos0()}
	for !p.check(lexer.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
	}
	return prog, nil
}

// ===== Statements =====

func (p *Parser) parseStatement() (ast.Stmt, *diag.Error) {
	switch p.cur().Kind {
	case lexer.KwInt, lexer.KwFloat, lexer.KwBool, lexer.KwString:
		return p.parseVarDecl()
	case lexer.KwFunction:
		return p.parseFunctionDef()
	case lexer.KwIf:
		return p.parseIf()
	case lexer.KwWhile:
		return p.parseWhile()
	case lexer.KwFor:
		return p.parseFor()
	case lexer.KwReturn:
		return p.parseReturn()
	case lexer.KwPrint:
		return p.parsePrint()
	case lexer.Ident:
		return p.parseIdentStatement()
	default:
		return nil, p.unexpected("a statement")
	}
}

// parseTypeDecl reads a base type keyword and an optional `[]` suffix.
func (p *Parser) parseTypeDecl() (types.Type, *diag.Error) {
	var base types.Type
	switch p.cur().Kind {
	case lexer.KwInt:
		base = types.IntType
	case lexer.KwFloat:
		base = types.FloatType
	case lexer.KwBool:
		base = types.BoolType
	case lexer.KwString:
		base = types.StringType
	default:
		return types.Type{}, p.unexpected("a type")
	}
	p.advance()
	if p.check(lexer.LBracket) {
		p.advance()
		if _, err := p.expect(lexer.RBracket); err != nil {
			return types.Type{}, err
		}
		return types.ArrayOf(base), nil
	}
	return base, nil
}

// parseReturnType reads a function's declared return type, which may be
// `void` in addition to the types parseTypeDecl accepts; void is only
// legal as a function return annotation.
func (p *Parser) parseReturnType() (types.Type, *diag.Error) {
	if p.check(lexer.KwVoid) {
		p.advance()
		return types.VoidType, nil
	}
	return p.parseTypeDecl()
}

func (p *Parser) parseVarDecl() (ast.Stmt, *diag.Error) {
	pos := p.curPos()
	declType, err := p.parseTypeDecl()
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(lexer.Ident)
	if err != nil {
		return nil, err
	}
	decl := &ast.VarDecl{Name: nameTok.Lexeme, DeclaredType: declType, Pos: pos}
	if p.check(lexer.Assign) {
		p.advance()
		init, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		decl.Initializer = init
	}
	if _, err := p.expect(lexer.Semicolon); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *Parser) parseFunctionDef() (ast.Stmt, *diag.Error) {
	pos := p.curPos()
	p.advance() // `function`
	retType, err := p.parseReturnType()
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(lexer.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	var params []ast.Param
	for !p.check(lexer.RParen) {
		if len(params) > 0 {
			if _, err := p.expect(lexer.Comma); err != nil {
				return nil, err
			}
		}
		pt, err := p.parseTypeDecl()
		if err != nil {
			return nil, err
		}
		pn, err := p.expect(lexer.Ident)
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Type: pt, Name: pn.Lexeme})
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDef{Name: nameTok.Lexeme, ReturnType: retType, Parameters: params, Body: body, Pos: pos}, nil
}

func (p *Parser) parseBlock() ([]ast.Stmt, *diag.Error) {
	if _, err := p.expect(lexer.LBrace); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for !p.check(lexer.RBrace) {
		if p.check(lexer.EOF) {
			return nil, p.unexpected("'}'")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	p.advance() // `}`
	return stmts, nil
}

func (p *Parser) parseIf() (ast.Stmt, *diag.Error) {
	pos := p.curPos()
	p.advance()
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	thenBlock, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node := &ast.If{Condition: cond, Then: thenBlock, Pos: pos}
	if p.check(lexer.KwElse) {
		p.advance()
		elseBlock, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		node.Else = elseBlock
	}
	return node, nil
}

func (p *Parser) parseWhile() (ast.Stmt, *diag.Error) {
	pos := p.curPos()
	p.advance()
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.While{Condition: cond, Body: body, Pos: pos}, nil
}

func (p *Parser) parseFor() (ast.Stmt, *diag.Error) {
	pos := p.curPos()
	p.advance()
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	init, err := p.parseForInit()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semicolon); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semicolon); err != nil {
		return nil, err
	}
	update, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.For{Init: init, Condition: cond, Update: update, Body: body, Pos: pos}, nil
}

// parseForInit parses the `init` clause of a for loop: a declaration or a
// bare assignment, without consuming the trailing `;` (the caller does).
func (p *Parser) parseForInit() (ast.Stmt, *diag.Error) {
	switch p.cur().Kind {
	case lexer.KwInt, lexer.KwFloat, lexer.KwBool, lexer.KwString:
		pos := p.curPos()
		declType, err := p.parseTypeDecl()
		if err != nil {
			return nil, err
		}
		nameTok, err := p.expect(lexer.Ident)
		if err != nil {
			return nil, err
		}
		decl := &ast.VarDecl{Name: nameTok.Lexeme, DeclaredType: declType, Pos: pos}
		if p.check(lexer.Assign) {
			p.advance()
			init, err := p.parseExpression(lowest)
			if err != nil {
				return nil, err
			}
			decl.Initializer = init
		}
		return decl, nil
	default:
		return p.parseAssignment()
	}
}

// parseAssignment parses `name = expr` without a trailing semicolon.
func (p *Parser) parseAssignment() (ast.Stmt, *diag.Error) {
	pos := p.curPos()
	nameTok, err := p.expect(lexer.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Assign); err != nil {
		return nil, err
	}
	value, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	return &ast.Assignment{Name: nameTok.Lexeme, Value: value, Pos: pos}, nil
}

func (p *Parser) parseReturn() (ast.Stmt, *diag.Error) {
	pos := p.curPos()
	p.advance()
	node := &ast.Return{Pos: pos}
	if !p.check(lexer.Semicolon) {
		value, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		node.Value = value
	}
	if _, err := p.expect(lexer.Semicolon); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *Parser) parsePrint() (ast.Stmt, *diag.Error) {
	pos := p.curPos()
	p.advance()
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	var exprs []ast.Expr
	for !p.check(lexer.RParen) {
		if len(exprs) > 0 {
			if _, err := p.expect(lexer.Comma); err != nil {
				return nil, err
			}
		}
		e, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semicolon); err != nil {
		return nil, err
	}
	return &ast.Print{Expressions: exprs, Pos: pos}, nil
}

// parseIdentStatement disambiguates assignment, array-element assignment,
// and expression-statement forms by looking one token past the
// identifier.
func (p *Parser) parseIdentStatement() (ast.Stmt, *diag.Error) {
	pos := p.curPos()
	nameTok := p.cur()
	next := p.peekAt(1)

	switch next.Kind {
	case lexer.Assign:
		p.advance()
		p.advance()
		value, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Semicolon); err != nil {
			return nil, err
		}
		return &ast.Assignment{Name: nameTok.Lexeme, Value: value, Pos: pos}, nil

	case lexer.LBracket:
		p.advance() // ident
		p.advance() // [
		index, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RBracket); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Assign); err != nil {
			return nil, err
		}
		value, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Semicolon); err != nil {
			return nil, err
		}
		return &ast.ArrayAssignment{ArrayName: nameTok.Lexeme, Index: index, Value: value, Pos: pos}, nil

	default:
		expr, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Semicolon); err != nil {
			return nil, err
		}
		return &ast.ExprStmt{Expr: expr, Pos: pos}, nil
	}
}

// ===== Expressions =====

// parseExpression implements precedence climbing: `**` is
// right-associative, every other binary operator is left-associative.
func (p *Parser) parseExpression(minPrec int) (ast.Expr, *diag.Error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		prec, ok := binaryPrecedence[p.cur().Kind]
		if !ok || prec < minPrec {
			return left, nil
		}
		opTok := p.cur()
		p.advance()

		nextMin := prec + 1
		if opTok.Kind == lexer.StarStar {
			nextMin = prec // right-associative: same precedence recurses
		}
		right, err := p.parseExpression(nextMin)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Operator: opTok.Lexeme, Left: left, Right: right, Pos: Pos(opTok)}
	}
}

func (p *Parser) parseUnary() (ast.Expr, *diag.Error) {
	switch p.cur().Kind {
	case lexer.Minus:
		tok := p.cur()
		p.advance()
		operand, err := p.parseExpression(precUnary)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Operator: "-", Operand: operand, Pos: Pos(tok)}, nil
	case lexer.KwNot:
		tok := p.cur()
		p.advance()
		operand, err := p.parseExpression(precUnary)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Operator: "not", Operand: operand, Pos: Pos(tok)}, nil
	default:
		return p.parsePostfix()
	}
}

// parsePostfix handles array indexing chained onto a primary expression.
func (p *Parser) parsePostfix() (ast.Expr, *diag.Error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.LBracket) {
		pos := p.curPos()
		p.advance()
		index, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RBracket); err != nil {
			return nil, err
		}
		expr = &ast.ArrayAccess{Array: expr, Index: index, Pos: pos}
	}
	return expr, nil
}

func (p *Parser) parsePrimary() (ast.Expr, *diag.Error) {
	tok := p.cur()
	switch tok.Kind {
	case lexer.IntLit:
		p.advance()
		return &ast.Literal{Kind: ast.LitInt, IntVal: tok.IntVal, Pos: Pos(tok)}, nil
	case lexer.FloatLit:
		p.advance()
		return &ast.Literal{Kind: ast.LitFloat, FloatVal: tok.FloatVal, Pos: Pos(tok)}, nil
	case lexer.BoolLit:
		p.advance()
		return &ast.Literal{Kind: ast.LitBool, BoolVal: tok.BoolVal, Pos: Pos(tok)}, nil
	case lexer.StringLit:
		p.advance()
		return &ast.Literal{Kind: ast.LitString, StringVal: tok.StrVal, Pos: Pos(tok)}, nil
	case lexer.LParen:
		p.advance()
		expr, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen); err != nil {
			return nil, err
		}
		return expr, nil
	case lexer.LBracket:
		return p.parseArrayLiteral()
	case lexer.KwLen, lexer.KwRandom, lexer.KwSubstr, lexer.KwConcat, lexer.KwInput:
		return p.parseBuiltinCall()
	case lexer.Ident:
		return p.parseIdentOrCall()
	default:
		return nil, p.unexpected("an expression")
	}
}

func (p *Parser) parseArrayLiteral() (ast.Expr, *diag.Error) {
	pos := p.curPos()
	p.advance() // [
	var elems []ast.Expr
	for !p.check(lexer.RBracket) {
		if len(elems) > 0 {
			if _, err := p.expect(lexer.Comma); err != nil {
				return nil, err
			}
		}
		e, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	if _, err := p.expect(lexer.RBracket); err != nil {
		return nil, err
	}
	return &ast.ArrayLiteral{Elements: elems, Pos: pos}, nil
}

func (p *Parser) parseBuiltinCall() (ast.Expr, *diag.Error) {
	tok := p.cur()
	fn := builtinNames[tok.Kind]
	p.advance()
	args, err := p.parseArgList()
	if err != nil {
		return nil, err
	}
	return &ast.BuiltinCall{Function: fn, Arguments: args, Pos: Pos(tok)}, nil
}

func (p *Parser) parseIdentOrCall() (ast.Expr, *diag.Error) {
	tok := p.cur()
	p.advance()
	if p.check(lexer.LParen) {
		args, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		return &ast.FunctionCall{Name: tok.Lexeme, Arguments: args, Pos: Pos(tok)}, nil
	}
	return &ast.Identifier{Name: tok.Lexeme, Pos: Pos(tok)}, nil
}

func (p *Parser) parseArgList() ([]ast.Expr, *diag.Error) {
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for !p.check(lexer.RParen) {
		if len(args) > 0 {
			if _, err := p.expect(lexer.Comma); err != nil {
				return nil, err
			}
		}
		e, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		args = append(args, e)
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	return args, nil
}

// ===== Cursor helpers =====

func (p *Parser) cur() lexer.Token { return p.tokens[p.pos] }

func (p *Parser) curPos() ast.Pos { return Pos(p.cur()) }

func (p *Parser) pos0() ast.Pos {
	if len(p.tokens) == 0 {
		return ast.Pos{Line: 1, Column: 1}
	}
	return Pos(p.tokens[0])
}

func (p *Parser) peekAt(n int) lexer.Token {
	idx := p.pos + n
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) advance() lexer.Token {
	tok := p.cur()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) check(k lexer.Kind) bool { return p.cur().Kind == k }

func (p *Parser) expect(k lexer.Kind) (lexer.Token, *diag.Error) {
	if !p.check(k) {
		return lexer.Token{}, p.unexpected("'" + k.String() + "'")
	}
	return p.advance(), nil
}

func (p *Parser) unexpected(expected string) *diag.Error {
	tok := p.cur()
	if tok.Kind == lexer.EOF {
		return diag.New(diag.StageParse, tok.Line, tok.Column, "unexpected end of input, expected %s", expected)
	}
	return diag.New(diag.StageParse, tok.Line, tok.Column, "unexpected token %q, expected %s", tok.Lexeme, expected)
}

// Pos converts a lexer.Token's location into an ast.Pos.
func Pos(tok lexer.Token) ast.Pos {
	return ast.Pos{Line: tok.Line, Column: tok.Column}
}

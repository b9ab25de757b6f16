package cmd

import (
	"fmt"
	"os"

	"minilang/internal/ast"
	"minilang/internal/diag"
	"minilang/internal/ir"
	"minilang/internal/lexer"
	"minilang/internal/optimizer"
	"minilang/internal/parser"
	"minilang/internal/semantic"
)

var evalExpr string

func readInput(args []string) (input, filename string, err error) {
	if evalExpr != "" {
		return evalExpr, "<eval>", nil
	}
	if len(args) == 1 {
		content, readErr := os.ReadFile(args[0])
		if readErr != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], readErr)
		}
		return string(content), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e flag for inline code")
}

// lexSource tokenizes input, printing a formatted diagnostic and
// returning a plain error if lexing fails.
func lexSource(input string) ([]lexer.Token, error) {
	tokens, derr := lexer.New(input).Tokenize()
	if derr != nil {
		fmt.Fprintln(os.Stderr, diag.Format(derr, input, false))
		return nil, fmt.Errorf("lexing failed")
	}
	return tokens, nil
}

// parseSource lexes and parses input, stopping at the first error
// from either phase.
func parseSource(input string) (*ast.Program, error) {
	tokens, err := lexSource(input)
	if err != nil {
		return nil, err
	}
	prog, derr := parser.Parse(tokens)
	if derr != nil {
		fmt.Fprintln(os.Stderr, diag.Format(derr, input, false))
		return nil, fmt.Errorf("parsing failed")
	}
	return prog, nil
}

// compileSource runs lex, parse, and semantic analysis, returning the
// checked program.
func compileSource(input string) (*ast.Program, error) {
	prog, err := parseSource(input)
	if err != nil {
		return nil, err
	}
	if derr := semantic.Analyze(prog); derr != nil {
		fmt.Fprintln(os.Stderr, diag.Format(derr, input, false))
		return nil, fmt.Errorf("semantic analysis failed")
	}
	return prog, nil
}

// lowerSource compiles input down to an (optionally optimized) IR
// listing.
func lowerSource(input string, optimize bool) ([]ir.Instruction, error) {
	prog, err := compileSource(input)
	if err != nil {
		return nil, err
	}
	code := ir.Generate(prog)
	if optimize {
		code = optimizer.Optimize(code)
	}
	return code, nil
}

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"minilang/internal/diag"
	"minilang/internal/interp"
	"minilang/internal/ir"
	"minilang/internal/lexer"
	"minilang/internal/optimizer"
	"minilang/internal/parser"
	"minilang/internal/semantic"

	"github.com/spf13/cobra"
)

var replNoOptimize bool

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive line-oriented MiniLang REPL",
	Long: `Read one MiniLang statement at a time from stdin, check and
execute it, and keep declared variables and functions live for
subsequent lines.

Each line must be a complete statement (ending in ';', or a complete
if/while/for/function block). Enter an empty line or Ctrl-D to exit.`,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)

	replCmd.Flags().BoolVar(&replNoOptimize, "no-optimize", false, "skip the optimizer passes on each line")
}

func runRepl(_ *cobra.Command, _ []string) error {
	analyzer := semantic.New()
	gen := ir.New()
	vm := interp.New(nil, interp.WithStdout(os.Stdout), interp.WithStdin(os.Stdin))

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("minilang> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			break
		}

		if err := replLine(analyzer, gen, vm, line); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}

		fmt.Print("minilang> ")
	}
	fmt.Println()
	return nil
}

// replLine checks and runs one line against the REPL's persistent
// analyzer scope, instruction listing, and VM variables. Each line's
// newly generated instructions are optimized in isolation (optimizing
// the whole accumulated listing would renumber instructions the VM has
// already run past).
func replLine(analyzer *semantic.Analyzer, gen *ir.Generator, vm *interp.VM, line string) error {
	tokens, derr := lexer.New(line).Tokenize()
	if derr != nil {
		return fmt.Errorf("%s", diag.Format(derr, line, false))
	}

	prog, derr := parser.Parse(tokens)
	if derr != nil {
		return fmt.Errorf("%s", diag.Format(derr, line, false))
	}

	before := len(gen.Code())
	var exprValue *ir.Operand
	for _, stmt := range prog.Statements {
		if derr := analyzer.AnalyzeStmt(stmt); derr != nil {
			return fmt.Errorf("%s", diag.Format(derr, line, false))
		}
		exprValue = gen.GenStmt(stmt)
	}
	chunk := gen.Code()[before:]

	// A bare expression statement's value lives in a temp that nothing
	// else references, so the optimizer's dead-code pass would drop it
	// before the echo below gets to read it back; skip optimizing a
	// line that echoes.
	if !replNoOptimize && exprValue == nil {
		chunk = optimizer.Optimize(chunk)
	}

	start := vm.Extend(chunk)
	if derr := vm.RunFrom(start); derr != nil {
		return fmt.Errorf("%s", diag.Format(derr, line, false))
	}

	if exprValue != nil {
		if val, derr := vm.Resolve(exprValue); derr == nil {
			fmt.Printf("=> %s\n", val.String())
		}
	}
	return nil
}

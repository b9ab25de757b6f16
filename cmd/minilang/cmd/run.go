package cmd

import (
	"fmt"
	"os"

	"minilang/internal/ast"
	"minilang/internal/diag"
	"minilang/internal/interp"
	"minilang/internal/ir"
	"minilang/internal/optimizer"

	"github.com/spf13/cobra"
)

var (
	runNoOptimize bool
	runTrace      bool
	runDumpAST    bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a MiniLang file or expression",
	Long: `Compile and execute a MiniLang program from a file or inline
expression.

Examples:
  minilang run script.nc
  minilang run -e "print(1 + 2);"
  minilang run --no-optimize --trace script.nc`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().BoolVar(&runNoOptimize, "no-optimize", false, "skip the optimizer passes")
	runCmd.Flags().BoolVar(&runTrace, "trace", false, "print each executed instruction to stderr")
	runCmd.Flags().BoolVar(&runDumpAST, "dump-ast", false, "dump the parsed AST before running")
}

func runScript(_ *cobra.Command, args []string) error {
	input, filename, err := readInput(args)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "[compiling %s]\n", filename)
	}

	prog, err := compileSource(input)
	if err != nil {
		return err
	}

	if runDumpAST {
		fmt.Println("AST:")
		fmt.Print(ast.Dump(prog))
		fmt.Println()
	}

	code := ir.Generate(prog)
	if verbose {
		fmt.Fprintf(os.Stderr, "[ir: %d instructions]\n", len(code))
	}
	if !runNoOptimize {
		code = optimizer.Optimize(code)
		if verbose {
			fmt.Fprintf(os.Stderr, "[optimized: %d instructions]\n", len(code))
		}
	}
	if verbose {
		fmt.Fprint(os.Stderr, ir.Listing(code))
	}

	opts := []interp.Option{interp.WithStdout(os.Stdout), interp.WithStdin(os.Stdin)}
	if runTrace {
		opts = append(opts, interp.WithTrace(os.Stderr))
	}
	vm := interp.New(code, opts...)
	if derr := vm.Run(); derr != nil {
		fmt.Fprintln(os.Stderr, diag.Format(derr, input, false))
		return fmt.Errorf("execution failed")
	}

	return nil
}

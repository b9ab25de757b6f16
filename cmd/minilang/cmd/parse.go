package cmd

import (
	"fmt"

	"minilang/internal/ast"

	"github.com/spf13/cobra"
)

var parseCheck bool

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a MiniLang file or expression and print the AST",
	Long: `Parse a MiniLang program and print the resulting AST as an
indented tree.

Examples:
  minilang parse script.nc
  minilang parse -e "x = 1 + 2;"
  minilang parse --check script.nc   # also run semantic analysis`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "parse inline code instead of reading from file")
	parseCmd.Flags().BoolVar(&parseCheck, "check", false, "also run semantic analysis")
}

func runParse(_ *cobra.Command, args []string) error {
	input, _, err := readInput(args)
	if err != nil {
		return err
	}

	var prog *ast.Program
	if parseCheck {
		prog, err = compileSource(input)
	} else {
		prog, err = parseSource(input)
	}
	if err != nil {
		return err
	}

	fmt.Print(ast.Dump(prog))
	if parseCheck {
		fmt.Println("semantic analysis: OK")
	}
	return nil
}

package cmd

import (
	"fmt"

	"minilang/internal/ir"

	"github.com/spf13/cobra"
)

var irNoOptimize bool

var irCmd = &cobra.Command{
	Use:   "ir [file]",
	Short: "Compile a MiniLang file or expression and print its IR listing",
	Long: `Lex, parse, semantically check, and lower a MiniLang program to
three-address IR, then print the instruction listing.

Examples:
  minilang ir script.nc
  minilang ir --no-optimize script.nc   # skip the optimizer passes`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIR,
}

func init() {
	rootCmd.AddCommand(irCmd)

	irCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "lower inline code instead of reading from file")
	irCmd.Flags().BoolVar(&irNoOptimize, "no-optimize", false, "skip the constant-fold/copy-propagation/dead-code passes")
}

func runIR(_ *cobra.Command, args []string) error {
	input, _, err := readInput(args)
	if err != nil {
		return err
	}

	code, err := lowerSource(input, !irNoOptimize)
	if err != nil {
		return err
	}

	fmt.Print(ir.Listing(code))
	return nil
}

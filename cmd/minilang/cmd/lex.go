package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	lexShowPos  bool
	lexShowKind bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a MiniLang file or expression",
	Long: `Tokenize a MiniLang program and print the resulting tokens.

Examples:
  minilang lex script.nc
  minilang lex -e "x = 1 + 2;"
  minilang lex --show-kind --show-pos script.nc`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "tokenize inline code instead of reading from file")
	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&lexShowKind, "show-kind", false, "show token kind names")
}

func runLex(_ *cobra.Command, args []string) error {
	input, _, err := readInput(args)
	if err != nil {
		return err
	}

	tokens, err := lexSource(input)
	if err != nil {
		return err
	}

	for _, tok := range tokens {
		line := ""
		if lexShowKind {
			line += fmt.Sprintf("[%-14s]", tok.Kind)
		}
		line += " " + tok.Lexeme
		if lexShowPos {
			line += fmt.Sprintf(" @%d:%d", tok.Line, tok.Column)
		}
		fmt.Println(line)
	}

	return nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "minilang",
	Short: "MiniLang compiler and VM",
	Long: `minilang is a Go implementation of the MiniLang toy language.

MiniLang is a small statically-typed imperative language with:
  - int, float, bool, string, and one-level array types
  - if/while/for control flow and recursive functions
  - a three-address IR with a constant-folding/copy-propagation/
    dead-code-elimination optimizer
  - a stack-frame interpreter`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}


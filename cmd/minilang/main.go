// Command minilang is the MiniLang compiler/VM CLI: lex, parse, ir,
// run, and repl subcommands over a single compilation pipeline.
package main

import (
	"fmt"
	"os"

	"minilang/cmd/minilang/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

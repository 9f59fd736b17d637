// Command nifindex checks, rewrites, and encodes NIF modules from the
// shell: the external driver spec.md describes as living outside the core
// parser/serializer package.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var debug bool

// isTerminal reports whether f is attached to a terminal, used to decide
// whether color output should be enabled by default.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func main() {
	log.SetFlags(log.Lshortfile)
	color.NoColor = !isTerminal(os.Stdout)

	root := &cobra.Command{
		Use:   "nifindex",
		Short: "Check, rewrite, and encode NIF modules",
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "dump the parsed module via kr/pretty")

	root.AddCommand(newCheckCmd())
	root.AddCommand(newWriteCmd())
	root.AddCommand(newEncodeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

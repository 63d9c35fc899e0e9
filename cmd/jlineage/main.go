// Command jlineage is the CLI front-end over the whole-program bytecode
// lineage engine: three subcommands (find-args, find-returns,
// find-endpoints) over a class directory, jar, or war.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jlineage",
	Short: "Whole-program static lineage analysis over compiled Java bytecode",
	Long: `jlineage loads a class directory, jar, or war and answers three kinds
of questions about it without running the program: what constants reach a
given argument slot, what concrete types a method's return value can
actually hold, and what HTTP endpoints it exposes (with a synthesized
OpenAPI schema).`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Command perl-lsp is the LSP server entrypoint: `serve` runs the
// language server over stdio, `index` runs the workspace scan protocol
// standalone (for CI / pre-warming the persisted sidecar), and `schema`
// prints the `perl.*` settings' JSON Schema for editor config UIs.
// Grounded on the teacher's internal/cmd/tsaudit cobra layout: one
// package-level rootCmd, one file per subcommand, each subcommand
// registering itself from an init().
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "perl-lsp",
	Short: "Perl language server",
	Long:  "perl-lsp implements the Language Server Protocol for Perl: syntax-tree-backed diagnostics, completion, definition, references, rename, and workspace symbols.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

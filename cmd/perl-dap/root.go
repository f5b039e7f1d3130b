// Command perl-dap is the Debug Adapter Protocol entrypoint: `serve` runs
// one debug adapter session over stdio, proxying DAP requests to a perl -d
// child process. Mirrors cmd/perl-lsp's cobra layout.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "perl-dap",
	Short: "Perl debug adapter",
	Long:  "perl-dap implements the Debug Adapter Protocol for Perl, driving a perl -d child process and translating its line-oriented debugger output into DAP events.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

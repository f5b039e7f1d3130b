package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sourcegraph/jsonrpc2"
	"github.com/spf13/cobra"

	"github.com/perl-language-tools/perl-ls/internal/logging"
	"github.com/perl-language-tools/perl-ls/internal/lsp"
	"github.com/perl-language-tools/perl-ls/internal/treesitter"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the language server over stdio",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := logging.New(os.Stderr, "perl-lsp")

	host, err := treesitter.NewHost()
	if err != nil {
		return fmt.Errorf("perl-lsp: start parser host: %w", err)
	}
	defer host.Close()

	server := lsp.NewServer(host, logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	stream := jsonrpc2.NewBufferedStream(newStdio(), jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, server.Handler())
	<-conn.DisconnectNotify()
	return nil
}

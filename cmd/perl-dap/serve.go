package main

import (
	"context"
	"os"

	"github.com/sourcegraph/jsonrpc2"
	"github.com/spf13/cobra"

	"github.com/perl-language-tools/perl-ls/internal/dap"
	"github.com/perl-language-tools/perl-ls/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run one debug adapter session over stdio",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := logging.New(os.Stderr, "perl-dap")
	facade := dap.NewFacade(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	stream := jsonrpc2.NewBufferedStream(newStdio(), jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, facade.Handler())
	<-conn.DisconnectNotify()
	return nil
}

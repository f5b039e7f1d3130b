package main

import (
	"io"
	"os"
)

// stdioReadWriteCloser adapts the process's stdin/stdout into the single
// io.ReadWriteCloser jsonrpc2.NewBufferedStream expects. Closing it closes
// neither stream: stdin/stdout close on process exit, and jsonrpc2 itself
// calls Close once the connection's context is done.
type stdioReadWriteCloser struct {
	in  io.Reader
	out io.Writer
}

func newStdio() stdioReadWriteCloser {
	return stdioReadWriteCloser{in: os.Stdin, out: os.Stdout}
}

func (s stdioReadWriteCloser) Read(p []byte) (int, error)  { return s.in.Read(p) }
func (s stdioReadWriteCloser) Write(p []byte) (int, error) { return s.out.Write(p) }
func (s stdioReadWriteCloser) Close() error                { return nil }

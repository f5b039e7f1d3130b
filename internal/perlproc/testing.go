package perlproc

import (
	"io"
	"syscall"

	"github.com/perl-language-tools/perl-ls/internal/logging"
)

// NewForTesting wires a Driver to externally supplied stdin/stderr
// streams without spawning a real child process, for use by other
// packages' tests (the DAP Facade's session tests) that need a working
// Driver but not a live `perl -d` process. Sending on exit (or closing
// it) makes the driver's awaitExit goroutine behave as if the child had
// terminated with that code.
func NewForTesting(stdin io.WriteCloser, stderrStream io.Reader, exit <-chan int, logger logging.Logger) *Driver {
	return newDriver(stdin, stderrStream, testProcess{exit: exit}, logger)
}

type testProcess struct {
	exit <-chan int
}

func (p testProcess) Wait() (int, error) {
	code, ok := <-p.exit
	if !ok {
		return 0, nil
	}
	return code, nil
}

func (p testProcess) SignalGroup(sig syscall.Signal) error { return nil }
func (p testProcess) Signal(sig syscall.Signal) error       { return nil }

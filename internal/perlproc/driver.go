// Package perlproc is the Perl Process Driver (spec.md C7): it owns one
// `perl -d` child, multiplexes every logical command onto its single
// stdin/stderr pair behind a single-flight lock, demultiplexes replies
// at the `DB<N>` prompt boundary, and emits `stopped`/`continued`/
// `paused`/`terminated` events. Grounded on the teacher's subprocess
// lifecycle code (internal/llm tool-call shelling pattern: one
// long-lived child, a reader goroutine per stream, events fanned out
// over a channel) generalized to the strict at-most-one-in-flight
// contract spec.md §4.7 and §9 make mandatory for a prompt-framed REPL
// with no request IDs.
package perlproc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"syscall"

	"golang.org/x/sync/semaphore"

	"github.com/perl-language-tools/perl-ls/internal/logging"
)

// promptRE matches the ready prompt spec.md §4.7 specifies: "the
// regular expression DB<\d+>\s$ (note trailing space)".
var promptRE = regexp.MustCompile(`DB<\d+>\s$`)

// ErrClosed is returned by a dispatch issued after the child's stderr
// stream has closed (spec.md §7: the child has terminated).
var ErrClosed = errors.New("perlproc: child process closed")

// EventKind distinguishes the DAP-facing events spec.md §4.7 emits.
type EventKind int

const (
	EventStopped EventKind = iota + 1
	EventContinued
	EventPaused
	EventTerminated
)

// Event is one driver-to-facade notification.
type Event struct {
	Kind EventKind
	Code int // populated for EventTerminated
}

// LaunchArgs mirrors the DAP launch arguments this driver consumes
// (spec.md §6.2), minus stopOnEntry/trace which the DAP Facade (C9)
// interprets itself.
type LaunchArgs struct {
	Program string
	Args    []string
	Cwd     string
	Env     []string
}

// processHandle is the subset of *os.Process/*exec.Cmd the Driver needs,
// narrowed so tests can substitute a fake child without spawning a real
// `perl` binary.
type processHandle interface {
	Wait() (int, error)
	SignalGroup(sig syscall.Signal) error
	Signal(sig syscall.Signal) error
}

// Driver owns one perl -d child's I/O. Exported construction is via
// Spawn; newDriver is the seam tests use to inject fake streams.
type Driver struct {
	stdin   io.WriteCloser
	proc    processHandle
	replies chan string
	events  chan Event
	sem     *semaphore.Weighted
	logger  logging.Logger

	closeOnce sync.Once
}

// Spawn starts `perl -d <program> [args…]` detached in its own process
// group (so Pause can signal the whole group), wires stdin/stderr, and
// starts the background reader and exit-watcher goroutines.
func Spawn(ctx context.Context, args LaunchArgs, logger logging.Logger) (*Driver, error) {
	if args.Program == "" {
		return nil, fmt.Errorf("perlproc: program is required")
	}

	cmd := exec.CommandContext(ctx, "perl", append([]string{"-d", args.Program}, args.Args...)...)
	cmd.Dir = args.Cwd
	if args.Env != nil {
		cmd.Env = args.Env
	}
	setpgid(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("perlproc: stdin pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("perlproc: stderr pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("perlproc: stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("perlproc: spawn perl -d %s: %w", args.Program, err)
	}
	go io.Copy(io.Discard, stdout) // program stdout is not part of this server's contract surface

	d := newDriver(stdin, stderr, &cmdHandle{cmd: cmd}, logger)
	return d, nil
}

func newDriver(stdin io.WriteCloser, stderrStream io.Reader, proc processHandle, logger logging.Logger) *Driver {
	d := &Driver{
		stdin:   stdin,
		proc:    proc,
		replies: make(chan string),
		events:  make(chan Event, 16),
		sem:     semaphore.NewWeighted(1),
		logger:  logger,
	}
	go d.demux(stderrStream)
	go d.awaitExit()
	return d
}

// Events returns the channel of driver-to-facade notifications. Closed
// once EventTerminated has been delivered.
func (d *Driver) Events() <-chan Event { return d.events }

func (d *Driver) emit(e Event) {
	select {
	case d.events <- e:
	default:
		d.logger.Warn("perlproc: event channel full, dropping event", "kind", e.Kind)
	}
}

// demux reads stderr, accumulating bytes until the trailing bytes match
// promptRE, then delivers everything before the prompt as one reply
// (spec.md §4.7's "ready prompt ... marks end of a reply").
func (d *Driver) demux(stderrStream io.Reader) {
	reader := bufio.NewReaderSize(stderrStream, 4096)
	var acc []byte
	buf := make([]byte, 4096)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			acc = append(acc, buf[:n]...)
			if loc := promptRE.FindIndex(acc); loc != nil {
				reply := string(acc[:loc[0]])
				acc = acc[loc[1]:]
				d.replies <- reply
			}
		}
		if err != nil {
			close(d.replies)
			return
		}
	}
}

func (d *Driver) awaitExit() {
	code, err := d.proc.Wait()
	if err != nil {
		d.logger.Warn("perlproc: child wait error", "error", err)
	}
	d.emit(Event{Kind: EventTerminated, Code: code})
	d.closeOnce.Do(func() { close(d.events) })
}

// dispatch is the single-flight command sender every public operation
// below funnels through: at most one command is ever in flight, and
// concurrent callers are admitted to the semaphore in arrival order
// (spec.md §4.7, §9).
func (d *Driver) dispatch(ctx context.Context, command string, emitStopped, emitContinuedFirst bool) (string, error) {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("perlproc: acquire dispatch lock: %w", err)
	}
	defer d.sem.Release(1)

	if emitContinuedFirst {
		d.emit(Event{Kind: EventContinued})
	}

	if _, err := io.WriteString(d.stdin, command+"\n"); err != nil {
		return "", fmt.Errorf("perlproc: write command: %w", err)
	}

	reply, ok := <-d.replies
	if !ok {
		return "", ErrClosed
	}
	if emitStopped {
		d.emit(Event{Kind: EventStopped})
	}
	return reply, nil
}

// AutoFlushStdOut sends `$| = 1;`.
func (d *Driver) AutoFlushStdOut(ctx context.Context) (string, error) {
	return d.dispatch(ctx, "$| = 1;", false, false)
}

// SetTTY sends `o TTY=<path>`.
func (d *Driver) SetTTY(ctx context.Context, path string) (string, error) {
	return d.dispatch(ctx, fmt.Sprintf("o TTY=%s", path), false, false)
}

// Trace sends `T`, the stack-trace command C8 parses.
func (d *Driver) Trace(ctx context.Context) (string, error) {
	return d.dispatch(ctx, "T", false, false)
}

// SetBreakpoint sends `b file:line [cond]`. The reply is returned
// verbatim; spec.md §4.7 has callers test it for "not breakable".
func (d *Driver) SetBreakpoint(ctx context.Context, file string, line int, cond string) (string, error) {
	cmd := fmt.Sprintf("b %s:%d", file, line)
	if cond != "" {
		cmd += " " + cond
	}
	return d.dispatch(ctx, cmd, false, false)
}

// DeleteBreakpoints sends one `B <line>` per entry, in order.
func (d *Driver) DeleteBreakpoints(ctx context.Context, lines []int) ([]string, error) {
	replies := make([]string, 0, len(lines))
	for _, line := range lines {
		reply, err := d.dispatch(ctx, fmt.Sprintf("B %d", line), false, false)
		if err != nil {
			return replies, err
		}
		replies = append(replies, reply)
	}
	return replies, nil
}

// Continue sends `c`; emits `continued` before sending and `stopped`
// once the next prompt arrives.
func (d *Driver) Continue(ctx context.Context) (string, error) {
	return d.dispatch(ctx, "c", true, true)
}

// Next sends `n`.
func (d *Driver) Next(ctx context.Context) (string, error) {
	return d.dispatch(ctx, "n", true, false)
}

// SingleStep sends `s`.
func (d *Driver) SingleStep(ctx context.Context) (string, error) {
	return d.dispatch(ctx, "s", true, false)
}

// StepOut sends `o`.
func (d *Driver) StepOut(ctx context.Context) (string, error) {
	return d.dispatch(ctx, "o", true, false)
}

// Restart sends `R`; emits `continued` before sending, like Continue.
func (d *Driver) Restart(ctx context.Context) (string, error) {
	return d.dispatch(ctx, "R", true, true)
}

// GetLocalScopedVariables sends `y`.
func (d *Driver) GetLocalScopedVariables(ctx context.Context) (string, error) {
	return d.dispatch(ctx, "y", false, false)
}

// GetGlobalScopedVariables sends `V`.
func (d *Driver) GetGlobalScopedVariables(ctx context.Context) (string, error) {
	return d.dispatch(ctx, "V", false, false)
}

// Evaluate sends `x expr`; a leading `%` is escaped to `\%` so the
// debugger does not auto-dereference a hash (spec.md §4.7, §8: "Evaluate
// of %h issues x \%h").
func (d *Driver) Evaluate(ctx context.Context, expr string) (string, error) {
	if strings.HasPrefix(expr, "%") {
		expr = `\` + expr
	}
	return d.dispatch(ctx, "x "+expr, false, false)
}

// Pause signals the process group with SIGINT (falling back to the
// direct child on failure) and emits `paused`. It bypasses the dispatch
// lock deliberately — it must interrupt a command already in flight
// (typically Continue), not wait behind it.
func (d *Driver) Pause() error {
	if err := d.proc.SignalGroup(syscall.SIGINT); err == nil {
		d.emit(Event{Kind: EventPaused})
		return nil
	}
	if err := d.proc.Signal(syscall.SIGINT); err != nil {
		return fmt.Errorf("perlproc: pause: %w", err)
	}
	d.emit(Event{Kind: EventPaused})
	return nil
}

// cmdHandle adapts *exec.Cmd to processHandle.
type cmdHandle struct {
	cmd *exec.Cmd
}

func (h *cmdHandle) Wait() (int, error) {
	err := h.cmd.Wait()
	if err == nil {
		return h.cmd.ProcessState.ExitCode(), nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

func (h *cmdHandle) SignalGroup(sig syscall.Signal) error {
	pgid, err := syscall.Getpgid(h.cmd.Process.Pid)
	if err != nil {
		return err
	}
	return syscall.Kill(-pgid, sig)
}

func (h *cmdHandle) Signal(sig syscall.Signal) error {
	return h.cmd.Process.Signal(sig)
}

package perlproc

import (
	"os/exec"
	"syscall"
)

// setpgid puts the child in its own process group so Pause can signal
// the whole group (the debugger and anything it forks) with one
// SIGINT rather than just the immediate child.
func setpgid(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

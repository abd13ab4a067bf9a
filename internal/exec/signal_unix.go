//go:build !windows

package exec

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// prepareProcessGroup puts the child in its own process group so a signal
// forwarded to -pid reaches a shell step's own children too, not just the
// direct child — the gap a bare cmd.Process.Signal forward leaves open.
func prepareProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// interruptChild forwards SIGINT to the whole process group rooted at the
// child's pid.
func interruptChild(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return unix.Kill(-cmd.Process.Pid, syscall.SIGINT)
}

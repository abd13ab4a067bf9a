//go:build windows

package exec

import "os/exec"

// Windows has no process-group signal forwarding story comparable to
// POSIX; killing the child directly is the best available approximation.
func prepareProcessGroup(cmd *exec.Cmd) {}

func interruptChild(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}

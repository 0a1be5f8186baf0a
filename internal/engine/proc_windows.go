//go:build windows

package engine

import "os/exec"

// Windows has no POSIX process groups or SIGTERM; both cancel stages
// resolve to a hard kill of the lead process.
func setProcGroup(cmd *exec.Cmd) {}

func terminate(cmd *exec.Cmd) {
	if cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}

func kill(cmd *exec.Cmd) { terminate(cmd) }

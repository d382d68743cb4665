// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Windows process handling: no groups, the tool itself is terminated

//go:build windows

package exec

import (
	"os/exec"
)

func setPlatformProcessGroup(cmd *exec.Cmd) {}

func terminateProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}

// killProcessGroup has nothing left to do once the tool was killed
func killProcessGroup(cmd *exec.Cmd) error {
	return nil
}

// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Unix process groups: terminate on cancel, kill what is left after exit

//go:build !windows

package exec

import (
	"errors"
	"os/exec"
	"syscall"
)

func setPlatformProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// terminateProcessGroup asks the tool and its helpers to exit. Blender and
// the enhancer both flush and quit on SIGTERM; Runner escalates after
// WaitDelay.
func terminateProcessGroup(cmd *exec.Cmd) error {
	return signalGroup(cmd, syscall.SIGTERM)
}

// killProcessGroup removes helpers that outlived the tool. A group that is
// already gone is not an error.
func killProcessGroup(cmd *exec.Cmd) error {
	err := signalGroup(cmd, syscall.SIGKILL)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}

// signalGroup signals -pid; with Setpgid the group id is the leader's pid,
// which stays valid for the group after the leader has been reaped
func signalGroup(cmd *exec.Cmd, sig syscall.Signal) error {
	if cmd.Process == nil {
		return nil
	}
	return syscall.Kill(-cmd.Process.Pid, sig)
}

//go:build !windows

// Package process manages the process groups of helper programs: the Chrome
// instance behind the browser renderer and the mermaid CLI.
package process

import (
	"os/exec"
	"syscall"
)

// Isolate starts cmd in its own process group so KillProcessGroup reaches
// every child it spawns.
func Isolate(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID).
func KillProcessGroup(pid int) {
	// Best-effort cleanup; callers keep their own fallback kill.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}

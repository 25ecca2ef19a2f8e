//go:build !windows

package process

import "syscall"

// KillProcessGroup kills a browser and all its helper processes by sending
// SIGKILL to the process group (negative PID). Non-positive PIDs are ignored.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Best-effort cleanup; launcher.Kill() still runs afterwards
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}

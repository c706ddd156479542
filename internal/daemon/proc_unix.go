//go:build !windows

package daemon

import (
	"os"
	"syscall"
)

func detachAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}

// processAlive sends signal 0; FindProcess always succeeds on Unix.
func processAlive(process *os.Process) bool {
	return process.Signal(syscall.Signal(0)) == nil
}

//go:build windows

package daemon

import (
	"os"
	"syscall"
)

const createNewProcessGroup = 0x00000200

func detachAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{CreationFlags: createNewProcessGroup}
}

// processAlive trusts FindProcess, which opens a handle and fails for
// exited processes on Windows.
func processAlive(process *os.Process) bool {
	return process != nil
}

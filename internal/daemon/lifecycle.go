// Package daemon manages llcfgd: PID and status files, the Unix socket
// client used by the CLI, the socket server itself, and start/stop/status.
package daemon

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultDir is the default directory for daemon files
	DefaultDir = ".llcfg"
	// PIDFileName is the name of the PID file
	PIDFileName = "daemon.pid"
	// StatusFileName is the name of the status file
	StatusFileName = "status"
	// DefaultSocketPath is the default Unix socket path
	DefaultSocketPath = "/tmp/llcfg.sock"
	// ReadyTimeout is the timeout for waiting daemon to be ready
	ReadyTimeout = 10 * time.Second
	// ShutdownTimeout is the timeout for waiting daemon to shutdown
	ShutdownTimeout = 5 * time.Second
)

// DaemonDir returns the path to the daemon directory
func DaemonDir() string {
	dir := os.Getenv("LLCFG_DAEMON_DIR")
	if dir != "" {
		return dir
	}
	cwd, err := os.Getwd()
	if err != nil {
		return DefaultDir
	}
	return filepath.Join(cwd, DefaultDir)
}

// PIDFile returns the path to the PID file
func PIDFile() string {
	return filepath.Join(DaemonDir(), PIDFileName)
}

// StatusFile returns the path to the status file
func StatusFile() string {
	return filepath.Join(DaemonDir(), StatusFileName)
}

func ensureDaemonDir() error {
	if err := os.MkdirAll(DaemonDir(), 0755); err != nil {
		return fmt.Errorf("creating daemon directory: %w", err)
	}
	return nil
}

// WritePID writes the PID to the PID file
func WritePID(pid int) error {
	if err := ensureDaemonDir(); err != nil {
		return err
	}
	if err := os.WriteFile(PIDFile(), []byte(strconv.Itoa(pid)), 0644); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	return nil
}

// ReadPID reads the PID from the PID file
func ReadPID() (int, error) {
	data, err := os.ReadFile(PIDFile())
	if err != nil {
		return 0, fmt.Errorf("reading PID file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parsing PID: %w", err)
	}
	return pid, nil
}

// RemovePID removes the PID file
func RemovePID() error {
	if err := os.Remove(PIDFile()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing PID file: %w", err)
	}
	return nil
}

// PIDExists checks if the PID file exists.
func PIDExists() bool {
	_, err := os.Stat(PIDFile())
	return err == nil
}

// WriteStatus writes the status to the status file
func WriteStatus(status *DaemonStatus) error {
	if err := ensureDaemonDir(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling status: %w", err)
	}
	if err := os.WriteFile(StatusFile(), data, 0644); err != nil {
		return fmt.Errorf("writing status file: %w", err)
	}
	return nil
}

// ReadStatus reads the status from the status file
func ReadStatus() (*DaemonStatus, error) {
	data, err := os.ReadFile(StatusFile())
	if err != nil {
		return nil, fmt.Errorf("reading status file: %w", err)
	}
	var status DaemonStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("parsing status: %w", err)
	}
	return &status, nil
}

// RemoveStatus removes the status file
func RemoveStatus() error {
	if err := os.Remove(StatusFile()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing status file: %w", err)
	}
	return nil
}

// IsProcessRunning checks if a process with the given PID is running
func IsProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return processAlive(process)
}

// GetSocketPath returns the socket path from the environment or the default
func GetSocketPath() string {
	if p := os.Getenv("LLCFG_SOCKET_PATH"); p != "" {
		return p
	}
	return DefaultSocketPath
}

func resolveSocket(socketPath string) string {
	if socketPath == "" {
		return GetSocketPath()
	}
	return socketPath
}

// CheckStatus combines the PID file, the process table and a status ping.
// Stale PID and status files are removed.
func CheckStatus(socketPath string) (*DaemonStatus, error) {
	if !PIDExists() {
		return &DaemonStatus{}, nil
	}

	pid, err := ReadPID()
	if err != nil {
		return &DaemonStatus{
			Error: fmt.Sprintf("failed to read PID: %v", err),
		}, nil
	}

	if !IsProcessRunning(pid) {
		RemovePID()
		RemoveStatus()
		return &DaemonStatus{}, nil
	}

	st, err := Ping(resolveSocket(socketPath))
	if err != nil {
		return &DaemonStatus{
			Running: true,
			PID:     pid,
			Error:   fmt.Sprintf("daemon not responding: %v", err),
		}, nil
	}

	status := &DaemonStatus{
		Running: true,
		PID:     pid,
		Ready:   st.Status == "running",
		Version: st.Version,
		Cached:  st.Cache.Length,
	}
	if saved, err := ReadStatus(); err == nil {
		status.StartedAt = saved.StartedAt
	}
	return status, nil
}

// IsRunning checks if the daemon is currently running and answering
func IsRunning(socketPath string) bool {
	status, err := CheckStatus(socketPath)
	return err == nil && status.Running && status.Ready
}

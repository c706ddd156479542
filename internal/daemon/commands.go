package daemon

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// Start launches llcfgd and records its PID. With WaitForReady it polls the
// socket until the daemon answers, killing it on timeout.
func Start(opts *StartOptions) (*StartResult, error) {
	socketPath := resolveSocket(opts.SocketPath)

	status, err := CheckStatus(socketPath)
	if err == nil && status.Running && status.Ready {
		return &StartResult{
			Success: false,
			PID:     status.PID,
			Error:   "daemon already running",
		}, nil
	}

	daemonPath := opts.DaemonPath
	if daemonPath == "" {
		daemonPath = findDaemonBinary()
	}
	resolved, err := exec.LookPath(daemonPath)
	if err != nil {
		return nil, fmt.Errorf("daemon binary not found: %w", err)
	}

	env := append(os.Environ(), "LLCFG_SOCKET_PATH="+socketPath)
	if opts.ConfigPath != "" {
		env = append(env, "LLCFG_CONFIG_PATH="+opts.ConfigPath)
	}
	if opts.Verbose {
		env = append(env, "LLCFG_VERBOSE=true")
	}

	cmd := exec.Command(resolved)
	cmd.Env = env
	if opts.Background {
		cmd.SysProcAttr = detachAttr()
	} else {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting daemon: %w", err)
	}

	pid := cmd.Process.Pid
	startedAt := time.Now()

	if err := WritePID(pid); err != nil {
		cmd.Process.Kill()
		return nil, fmt.Errorf("writing PID file: %w", err)
	}
	if err := WriteStatus(&DaemonStatus{
		Running:   true,
		PID:       pid,
		StartedAt: startedAt,
	}); err != nil {
		cmd.Process.Kill()
		RemovePID()
		return nil, fmt.Errorf("writing status: %w", err)
	}

	result := &StartResult{
		Success:   true,
		PID:       pid,
		StartedAt: startedAt,
	}
	if !opts.WaitForReady {
		cmd.Process.Release()
		return result, nil
	}

	timeout := opts.ReadyTimeout
	if timeout <= 0 {
		timeout = ReadyTimeout
	}
	waitCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if _, err := waitForReady(waitCtx, socketPath, timeout); err != nil {
		cmd.Process.Kill()
		RemovePID()
		RemoveStatus()
		return &StartResult{
			Success:   false,
			PID:       pid,
			StartedAt: startedAt,
			Error:     fmt.Sprintf("daemon not ready: %v", err),
		}, nil
	}

	WriteStatus(&DaemonStatus{
		Running:   true,
		PID:       pid,
		Ready:     true,
		StartedAt: startedAt,
	})
	cmd.Process.Release()
	result.Ready = true
	return result, nil
}

// findDaemonBinary prefers LLCFG_DAEMON_PATH, then an llcfgd next to the
// running executable, then ./bin, then $PATH.
func findDaemonBinary() string {
	if path := os.Getenv("LLCFG_DAEMON_PATH"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	if exe, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(exe), "llcfgd")
		if _, err := os.Stat(sibling); err == nil {
			return sibling
		}
	}

	local := filepath.Join(".", "bin", "llcfgd")
	if _, err := os.Stat(local); err == nil {
		return local
	}

	return "llcfgd"
}

// waitForReady polls CheckStatus until the daemon answers, the timeout
// passes, or ctx is done.
func waitForReady(ctx context.Context, socketPath string, timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return false, fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		status, err := CheckStatus(socketPath)
		if err == nil && status.Running && status.Ready {
			return true, nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	return false, fmt.Errorf("timeout waiting for daemon to be ready")
}

// Stop asks the daemon to exit over its socket and kills it if it does not
// exit within ShutdownTimeout.
func Stop(socketPath string) (*StopResult, error) {
	if !PIDExists() {
		return &StopResult{
			Success: false,
			Error:   "daemon not running (no PID file)",
		}, nil
	}

	pid, err := ReadPID()
	if err != nil {
		return &StopResult{
			Success: false,
			Error:   fmt.Sprintf("failed to read PID: %v", err),
		}, nil
	}

	if !IsProcessRunning(pid) {
		RemovePID()
		RemoveStatus()
		return &StopResult{
			Success: false,
			Error:   "daemon not running (process not found)",
		}, nil
	}

	if err := sendStop(resolveSocket(socketPath)); err == nil {
		if waitForShutdown(pid, ShutdownTimeout) {
			RemovePID()
			RemoveStatus()
			return &StopResult{
				Success:   true,
				PID:       pid,
				StoppedAt: time.Now(),
			}, nil
		}
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		RemovePID()
		RemoveStatus()
		return &StopResult{
			Success:   true,
			PID:       pid,
			StoppedAt: time.Now(),
			Error:     "process already terminated",
		}, nil
	}

	if err := process.Kill(); err != nil {
		return &StopResult{
			Success: false,
			PID:     pid,
			Error:   fmt.Sprintf("failed to kill process: %v", err),
		}, nil
	}

	waitForShutdown(pid, 2*time.Second)
	RemovePID()
	RemoveStatus()

	return &StopResult{
		Success:   true,
		PID:       pid,
		StoppedAt: time.Now(),
	}, nil
}

// waitForShutdown reports whether the process exited within timeout.
func waitForShutdown(pid int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !IsProcessRunning(pid) {
			return true
		}
		time.Sleep(50 * time.Millisecond)
	}
	return false
}

// GetStatus returns a formatted status result
func GetStatus(socketPath string) (*StatusResult, error) {
	status, err := CheckStatus(socketPath)
	if err != nil {
		return &StatusResult{
			Status: "unknown",
			Error:  err.Error(),
		}, nil
	}

	result := &StatusResult{
		Running:   status.Running,
		Ready:     status.Ready,
		PID:       status.PID,
		Version:   status.Version,
		StartedAt: status.StartedAt,
		Cached:    status.Cached,
		Error:     status.Error,
	}

	switch {
	case !status.Running:
		result.Status = "stopped"
	case !status.Ready:
		result.Status = "starting"
	default:
		result.Status = "running"
	}

	return result, nil
}

package daemon

import "time"

// StartOptions contains options for starting the daemon
type StartOptions struct {
	// DaemonPath is the path to the llcfgd executable
	DaemonPath string
	// SocketPath is the Unix socket path
	SocketPath string
	// ConfigPath is the path to the config file
	ConfigPath string
	// Verbose enables debug logging in the daemon
	Verbose bool
	// WaitForReady waits until the daemon answers a status ping
	WaitForReady bool
	// ReadyTimeout bounds WaitForReady
	ReadyTimeout time.Duration
	// Background detaches the daemon from the caller's session
	Background bool
}

// StartResult contains the result of a start operation
type StartResult struct {
	Success   bool      `json:"success"`
	PID       int       `json:"pid,omitempty"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"started_at"`
	Ready     bool      `json:"ready"`
}

// StopResult contains the result of a stop operation
type StopResult struct {
	Success   bool      `json:"success"`
	PID       int       `json:"pid,omitempty"`
	StoppedAt time.Time `json:"stopped_at"`
	Error     string    `json:"error,omitempty"`
}

// DaemonStatus is what the status file records and CheckStatus reports.
type DaemonStatus struct {
	Running   bool      `json:"running"`
	PID       int       `json:"pid,omitempty"`
	Ready     bool      `json:"ready"`
	StartedAt time.Time `json:"started_at,omitempty"`
	Error     string    `json:"error,omitempty"`
	Version   string    `json:"version,omitempty"`
	// Cached is the number of parsed documents held by the daemon.
	Cached int `json:"cached"`
}

// StatusResult contains the result of a status operation
type StatusResult struct {
	Status    string    `json:"status"`
	Running   bool      `json:"running"`
	Ready     bool      `json:"ready"`
	PID       int       `json:"pid,omitempty"`
	Version   string    `json:"version,omitempty"`
	StartedAt time.Time `json:"started_at,omitempty"`
	Cached    int       `json:"cached"`
	Error     string    `json:"error,omitempty"`
}

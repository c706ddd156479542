package healthcheck

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/triskellib/vscode/internal/config"
	"github.com/triskellib/vscode/internal/daemon"
)

// ComponentStatus represents the health of one piece of the environment.
type ComponentStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"` // "ready", "stopped", "missing", "unavailable" or "error"
	Detail string `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}

// HealthCheckResult contains the full health check output for display.
type HealthCheckResult struct {
	SavedPath      string          `json:"saved_path,omitempty"`
	SavedScope     string          `json:"saved_scope,omitempty"` // "global" or "project"
	EffectivePath  string          `json:"effective_path,omitempty"`
	EffectiveScope string          `json:"effective_scope,omitempty"` // "global" or "project"
	Config         ComponentStatus `json:"config"`
	Daemon         ComponentStatus `json:"daemon"`
	Clipboard      ComponentStatus `json:"clipboard"`
	IgnoreFile     ComponentStatus `json:"ignore_file"`
}

// Components lists the checked components in display order.
func (r *HealthCheckResult) Components() []ComponentStatus {
	return []ComponentStatus{r.Config, r.Daemon, r.Clipboard, r.IgnoreFile}
}

// Healthy reports whether no component is in the error state.
func (r *HealthCheckResult) Healthy() bool {
	for _, c := range r.Components() {
		if c.Status == "error" {
			return false
		}
	}
	return true
}

// Check performs a health check against the given config.
// savedPath is where the user saved config (may be empty outside init).
// effectivePath is the config file actually in use (considering priority).
func Check(cfg *config.Config, savedPath string, effectivePath string) (*HealthCheckResult, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	result := &HealthCheckResult{
		SavedPath:      savedPath,
		SavedScope:     scopeFromPath(savedPath),
		EffectivePath:  effectivePath,
		EffectiveScope: scopeFromPath(effectivePath),
	}

	result.Config = checkConfig(cfg)
	result.Daemon = checkDaemon(cfg.SocketPath)
	result.Clipboard = checkClipboard()
	result.IgnoreFile = checkIgnoreFile(cfg.IgnoreFile)

	return result, nil
}

// EffectiveConfigPath returns explicit when set, otherwise the first config
// file that exists in load priority order. It returns "" when only defaults
// apply.
func EffectiveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, p := range []string{config.ProjectConfigFilePath(), config.GlobalConfigFilePath()} {
		for _, c := range []string{p, strings.TrimSuffix(p, filepath.Ext(p)) + ".toml"} {
			if _, err := os.Stat(c); err == nil {
				return c
			}
		}
	}
	return ""
}

// scopeFromPath determines "global" or "project" scope from a config file path.
// Returns empty string if path is empty.
func scopeFromPath(path string) string {
	if path == "" {
		return ""
	}

	globalDir := filepath.Dir(config.GlobalConfigFilePath())
	if abs, err := filepath.Abs(path); err == nil && strings.HasPrefix(abs, globalDir+string(filepath.Separator)) {
		return "global"
	}
	return "project"
}

func checkConfig(cfg *config.Config) ComponentStatus {
	status := ComponentStatus{
		Name:   "config",
		Detail: fmt.Sprintf("format %s, cache %d", cfg.Format, cfg.CacheSize),
	}
	if err := cfg.Validate(); err != nil {
		status.Status = "error"
		status.Error = err.Error()
		return status
	}
	status.Status = "ready"
	return status
}

// checkDaemon reports llcfgd state without starting it. A stopped daemon is
// not an error since every command also works in-process.
func checkDaemon(socketPath string) ComponentStatus {
	status := ComponentStatus{Name: "daemon", Detail: socketPath}

	st, err := daemon.CheckStatus(socketPath)
	switch {
	case err != nil:
		status.Status = "error"
		status.Error = err.Error()
	case st.Error != "":
		status.Status = "error"
		status.Error = st.Error
	case st.Running && st.Ready:
		status.Status = "ready"
		status.Detail = fmt.Sprintf("%s (pid %d, %d cached)", socketPath, st.PID, st.Cached)
	default:
		status.Status = "stopped"
	}
	return status
}

func checkClipboard() ComponentStatus {
	status := ComponentStatus{Name: "clipboard"}
	if clipboard.Unsupported {
		status.Status = "unavailable"
		status.Detail = "no clipboard utility found; copy --clipboard will only print"
		return status
	}
	status.Status = "ready"
	return status
}

func checkIgnoreFile(name string) ComponentStatus {
	status := ComponentStatus{Name: "ignore file", Detail: name}
	info, err := os.Stat(name)
	switch {
	case err == nil && info.IsDir():
		status.Status = "error"
		status.Error = fmt.Sprintf("%s is a directory", name)
	case err == nil:
		status.Status = "ready"
	case os.IsNotExist(err):
		status.Status = "missing"
	default:
		status.Status = "error"
		status.Error = err.Error()
	}
	return status
}

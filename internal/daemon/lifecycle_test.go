package daemon

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

func useDaemonDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("LLCFG_DAEMON_DIR", dir)
	return dir
}

func TestDaemonDir(t *testing.T) {
	t.Setenv("LLCFG_DAEMON_DIR", "")
	cwd, _ := os.Getwd()
	expected := filepath.Join(cwd, DefaultDir)

	if got := DaemonDir(); got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestDaemonDirWithEnv(t *testing.T) {
	t.Setenv("LLCFG_DAEMON_DIR", "/tmp/llcfg-test-dir")

	if got := DaemonDir(); got != "/tmp/llcfg-test-dir" {
		t.Errorf("Expected %q, got %q", "/tmp/llcfg-test-dir", got)
	}
	if got := PIDFile(); got != filepath.Join("/tmp/llcfg-test-dir", PIDFileName) {
		t.Errorf("unexpected PID file path %q", got)
	}
	if got := StatusFile(); got != filepath.Join("/tmp/llcfg-test-dir", StatusFileName) {
		t.Errorf("unexpected status file path %q", got)
	}
}

func TestWriteAndReadPID(t *testing.T) {
	useDaemonDir(t)

	tests := []struct {
		name string
		pid  int
	}{
		{"valid pid 12345", 12345},
		{"valid pid 1", 1},
		{"valid current pid", os.Getpid()},
		{"zero pid", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := WritePID(tt.pid); err != nil {
				t.Fatalf("WritePID() error = %v", err)
			}
			got, err := ReadPID()
			if err != nil {
				t.Fatalf("ReadPID() error = %v", err)
			}
			if got != tt.pid {
				t.Errorf("ReadPID() = %d, want %d", got, tt.pid)
			}
			RemovePID()
		})
	}
}

func TestReadPIDInvalidContent(t *testing.T) {
	dir := useDaemonDir(t)

	tests := []struct {
		name      string
		content   string
		wantError bool
	}{
		{"invalid - letters", "abc", true},
		{"invalid - empty", "", true},
		{"invalid - mixed", "12abc", true},
		{"valid - with newline", "12345\n", false},
		{"valid - with spaces", "  12345  ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := os.WriteFile(filepath.Join(dir, PIDFileName), []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write PID file: %v", err)
			}
			_, err := ReadPID()
			if tt.wantError && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.wantError && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestReadPIDNoFile(t *testing.T) {
	useDaemonDir(t)

	if _, err := ReadPID(); err == nil {
		t.Error("Expected error when reading non-existent PID file")
	}
}

func TestPIDExistsAndRemove(t *testing.T) {
	useDaemonDir(t)

	if PIDExists() {
		t.Fatal("PID file should not exist yet")
	}
	if err := WritePID(42); err != nil {
		t.Fatal(err)
	}
	if !PIDExists() {
		t.Fatal("PID file should exist after WritePID")
	}
	if err := RemovePID(); err != nil {
		t.Fatal(err)
	}
	if PIDExists() {
		t.Error("PID file should be gone after RemovePID")
	}
	if err := RemovePID(); err != nil {
		t.Errorf("removing a missing PID file should not fail: %v", err)
	}
}

func TestWriteAndReadStatus(t *testing.T) {
	useDaemonDir(t)

	startedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	want := &DaemonStatus{
		Running:   true,
		PID:       1234,
		Ready:     true,
		StartedAt: startedAt,
		Version:   "1.0.0",
		Cached:    3,
	}
	if err := WriteStatus(want); err != nil {
		t.Fatalf("WriteStatus() error = %v", err)
	}

	got, err := ReadStatus()
	if err != nil {
		t.Fatalf("ReadStatus() error = %v", err)
	}
	if got.PID != want.PID || !got.Running || !got.Ready || got.Version != want.Version || got.Cached != 3 {
		t.Errorf("ReadStatus() = %+v, want %+v", got, want)
	}
	if !got.StartedAt.Equal(startedAt) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, startedAt)
	}

	if err := RemoveStatus(); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadStatus(); err == nil {
		t.Error("Expected error after RemoveStatus")
	}
}

func TestReadStatusInvalidJSON(t *testing.T) {
	dir := useDaemonDir(t)
	os.WriteFile(filepath.Join(dir, StatusFileName), []byte("{not json"), 0644)

	if _, err := ReadStatus(); err == nil {
		t.Error("Expected error for invalid status JSON")
	}
}

func TestWritePIDCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "daemon")
	t.Setenv("LLCFG_DAEMON_DIR", dir)

	if err := WritePID(7); err != nil {
		t.Fatalf("WritePID() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, PIDFileName))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != strconv.Itoa(7) {
		t.Errorf("PID file content = %q", data)
	}
}

func TestIsProcessRunning(t *testing.T) {
	if !IsProcessRunning(os.Getpid()) {
		t.Error("current process should be running")
	}
	if IsProcessRunning(0) {
		t.Error("pid 0 should not be treated as running")
	}
	if IsProcessRunning(-1) {
		t.Error("negative pid should not be treated as running")
	}
}

func TestGetSocketPath(t *testing.T) {
	t.Setenv("LLCFG_SOCKET_PATH", "")
	if got := GetSocketPath(); got != DefaultSocketPath {
		t.Errorf("Expected %q, got %q", DefaultSocketPath, got)
	}

	t.Setenv("LLCFG_SOCKET_PATH", "/tmp/custom.sock")
	if got := GetSocketPath(); got != "/tmp/custom.sock" {
		t.Errorf("Expected /tmp/custom.sock, got %q", got)
	}
	if got := resolveSocket(""); got != "/tmp/custom.sock" {
		t.Errorf("resolveSocket(\"\") = %q", got)
	}
	if got := resolveSocket("/x.sock"); got != "/x.sock" {
		t.Errorf("resolveSocket should keep an explicit path, got %q", got)
	}
}

func TestCheckStatusNoPIDFile(t *testing.T) {
	useDaemonDir(t)

	status, err := CheckStatus("")
	if err != nil {
		t.Fatal(err)
	}
	if status.Running || status.Ready {
		t.Errorf("expected a stopped status, got %+v", status)
	}
}

func TestCheckStatusWithStalePIDFile(t *testing.T) {
	useDaemonDir(t)
	WritePID(999999999)
	WriteStatus(&DaemonStatus{Running: true, PID: 999999999})

	status, err := CheckStatus("")
	if err != nil {
		t.Fatal(err)
	}
	if status.Running {
		t.Error("stale PID should not be reported as running")
	}
	if PIDExists() {
		t.Error("stale PID file should be removed")
	}
	if _, err := os.Stat(StatusFile()); !os.IsNotExist(err) {
		t.Error("stale status file should be removed")
	}
}

func TestCheckStatusNotResponding(t *testing.T) {
	useDaemonDir(t)
	WritePID(os.Getpid())

	status, err := CheckStatus(filepath.Join(t.TempDir(), "absent.sock"))
	if err != nil {
		t.Fatal(err)
	}
	if !status.Running || status.Ready {
		t.Errorf("expected running but not ready, got %+v", status)
	}
	if status.Error == "" {
		t.Error("expected a not responding error")
	}
}

func TestDaemonStatusJSON(t *testing.T) {
	status := DaemonStatus{Running: true, PID: 12, Ready: true, Version: "v"}

	data, err := json.Marshal(status)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"running", "pid", "ready", "version", "cached"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
	if _, ok := m["error"]; ok {
		t.Error("empty error should be omitted")
	}
}

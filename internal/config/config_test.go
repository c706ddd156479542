package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/triskellib/vscode/internal/log"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogJSON", cfg.LogJSON, false},
		{"Strict", cfg.Strict, false},
		{"Format", cfg.Format, FormatText},
		{"SocketPath", cfg.SocketPath, "/tmp/llcfg.sock"},
		{"CacheSize", cfg.CacheSize, 16},
		{"IgnoreFile", cfg.IgnoreFile, ".llcfgignore"},
		{"Layout.CharWidth", cfg.Layout.CharWidth, 8.4},
		{"Layout.NodeSpacing", cfg.Layout.NodeSpacing, 40.0},
		{"Verbose", cfg.Verbose, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("DefaultConfig().%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		wantErr     bool
		errContains string
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{
			name:        "bad log level",
			mutate:      func(c *Config) { c.LogLevel = "chatty" },
			wantErr:     true,
			errContains: "log_level",
		},
		{
			name:        "bad format",
			mutate:      func(c *Config) { c.Format = "svg" },
			wantErr:     true,
			errContains: "invalid format",
		},
		{
			name:        "empty socket",
			mutate:      func(c *Config) { c.SocketPath = "" },
			wantErr:     true,
			errContains: "socket_path",
		},
		{
			name:        "zero cache",
			mutate:      func(c *Config) { c.CacheSize = 0 },
			wantErr:     true,
			errContains: "cache_size",
		},
		{
			name:        "extension without dot",
			mutate:      func(c *Config) { c.Extensions = []string{"ll"} },
			wantErr:     true,
			errContains: "must start with a dot",
		},
		{
			name:        "negative spacing",
			mutate:      func(c *Config) { c.Layout.LayerSpacing = -1 },
			wantErr:     true,
			errContains: "non-negative",
		},
		{
			name:   "every format",
			mutate: func(c *Config) { c.Format = FormatMsgPack },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.errContains)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		env      map[string]string
		wantErr  bool
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name: "yaml",
			file: "config.yaml",
			content: `log_level: debug
format: mermaid
extensions: [".ll", ".ir"]
layout:
  node_spacing: 10
`,
			validate: func(t *testing.T, cfg *Config) {
				if cfg.LogLevel != "debug" || cfg.Format != FormatMermaid {
					t.Errorf("got log_level=%s format=%s", cfg.LogLevel, cfg.Format)
				}
				if len(cfg.Extensions) != 2 || cfg.Extensions[1] != ".ir" {
					t.Errorf("Extensions = %v", cfg.Extensions)
				}
				if cfg.Layout.NodeSpacing != 10 || cfg.Layout.LayerSpacing != 60 {
					t.Errorf("Layout = %+v", cfg.Layout)
				}
			},
		},
		{
			name: "toml",
			file: "llcfg.toml",
			content: `strict = true
cache_size = 4

[layout]
char_width = 7.0
`,
			validate: func(t *testing.T, cfg *Config) {
				if !cfg.Strict || cfg.CacheSize != 4 {
					t.Errorf("got strict=%v cache_size=%d", cfg.Strict, cfg.CacheSize)
				}
				if cfg.Layout.CharWidth != 7 || cfg.Layout.LineHeight != 19 {
					t.Errorf("Layout = %+v", cfg.Layout)
				}
			},
		},
		{
			name:    "env overrides file",
			file:    "config.yaml",
			content: "format: dot\n",
			env:     map[string]string{"LLCFG_FORMAT": "json", "LLCFG_EXTENSIONS": ".ll, .bc.ll"},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Format != FormatJSON {
					t.Errorf("Format = %s, want json", cfg.Format)
				}
				if len(cfg.Extensions) != 2 || cfg.Extensions[1] != ".bc.ll" {
					t.Errorf("Extensions = %v", cfg.Extensions)
				}
			},
		},
		{
			name:    "invalid yaml",
			file:    "config.yaml",
			content: "format: [",
			wantErr: true,
		},
		{
			name:    "invalid value",
			file:    "config.yaml",
			content: "cache_size: -3\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			cfg, err := LoadFromFile(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadFromFile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadFromFile() on a missing file should fail")
	}
}

func TestLoadPriority(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "global.yaml")
	project := filepath.Join(dir, "project.yaml")

	if err := os.WriteFile(global, []byte("format: dot\nsocket_path: /tmp/global.sock\ncache_size: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(project, []byte("format: mermaid\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LLCFG_FORMAT", "json")
	t.Setenv("LLCFG_SOCKET_PATH", "/tmp/env.sock")

	cfg, err := load(global, project)
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}

	if cfg.Format != FormatMermaid {
		t.Errorf("Format = %s, project config should win", cfg.Format)
	}
	if cfg.SocketPath != "/tmp/env.sock" {
		t.Errorf("SocketPath = %s, env should beat global", cfg.SocketPath)
	}
	if cfg.CacheSize != 2 {
		t.Errorf("CacheSize = %d, global should beat defaults", cfg.CacheSize)
	}
}

func TestLoadTOMLSibling(t *testing.T) {
	dir := t.TempDir()
	project := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("strict = true\ncache_size = 5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := load(filepath.Join(dir, "absent.yaml"), project)
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if !cfg.Strict || cfg.CacheSize != 5 {
		t.Errorf("config.toml should be read when config.yaml is missing: %+v", cfg)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Format = FormatDOT
			cfg.Layout.Padding = 3

			path := filepath.Join(t.TempDir(), "nested", name)
			if err := cfg.Save(path); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			loaded, err := LoadFromFile(path)
			if err != nil {
				t.Fatalf("LoadFromFile() error = %v", err)
			}
			if loaded.Format != FormatDOT || loaded.Layout.Padding != 3 {
				t.Errorf("round trip lost fields: %+v", loaded)
			}
		})
	}
}

func TestLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "warn"
	if got := cfg.Level(); got != log.WarnLevel {
		t.Errorf("Level() = %v, want WARN", got)
	}

	cfg.Verbose = true
	if got := cfg.Level(); got != log.DebugLevel {
		t.Errorf("Level() with verbose = %v, want DEBUG", got)
	}
}

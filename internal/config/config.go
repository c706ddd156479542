package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/triskellib/vscode/internal/log"
)

// Format selects how the CLI prints graphs.
type Format string

const (
	FormatText    Format = "text"
	FormatJSON    Format = "json"
	FormatMermaid Format = "mermaid"
	FormatDOT     Format = "dot"
	FormatMsgPack Format = "msgpack"
)

// Formats lists every accepted output format.
var Formats = []Format{FormatText, FormatJSON, FormatMermaid, FormatDOT, FormatMsgPack}

// LayoutConfig sizes blocks and spaces them in the built-in layout engine.
type LayoutConfig struct {
	CharWidth    float64 `yaml:"char_width" toml:"char_width"`
	LineHeight   float64 `yaml:"line_height" toml:"line_height"`
	Padding      float64 `yaml:"padding" toml:"padding"`
	NodeSpacing  float64 `yaml:"node_spacing" toml:"node_spacing"`
	LayerSpacing float64 `yaml:"layer_spacing" toml:"layer_spacing"`
}

// Config holds all configuration for llcfg and llcfgd
type Config struct {
	// Logging
	LogLevel string `yaml:"log_level" toml:"log_level" env:"LLCFG_LOG_LEVEL"`
	LogJSON  bool   `yaml:"log_json" toml:"log_json" env:"LLCFG_LOG_JSON"`
	Verbose  bool   `yaml:"verbose" toml:"verbose" env:"LLCFG_VERBOSE"`

	// Strict makes the CLI exit non-zero when parsing produced diagnostics.
	Strict bool `yaml:"strict" toml:"strict" env:"LLCFG_STRICT"`

	// Format is the default output format of graph commands.
	Format Format `yaml:"format" toml:"format" env:"LLCFG_FORMAT"`

	// Socket path for IPC communication with llcfgd
	SocketPath string `yaml:"socket_path" toml:"socket_path" env:"LLCFG_SOCKET_PATH"`

	// CacheSize is the number of parsed documents kept in memory.
	CacheSize int `yaml:"cache_size" toml:"cache_size" env:"LLCFG_CACHE_SIZE"`

	// Scanning
	Extensions []string `yaml:"extensions" toml:"extensions" env:"LLCFG_EXTENSIONS"`
	IgnoreFile string   `yaml:"ignore_file" toml:"ignore_file" env:"LLCFG_IGNORE_FILE"`

	Layout LayoutConfig `yaml:"layout" toml:"layout"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:   "info",
		LogJSON:    false,
		Verbose:    false,
		Strict:     false,
		Format:     FormatText,
		SocketPath: "/tmp/llcfg.sock",
		CacheSize:  16,
		Extensions: []string{".ll"},
		IgnoreFile: ".llcfgignore",
		Layout: LayoutConfig{
			CharWidth:    8.4,
			LineHeight:   19,
			Padding:      8,
			NodeSpacing:  40,
			LayerSpacing: 60,
		},
	}
}

// GlobalConfigFilePath returns the global config file path (~/.llcfg/config.yaml)
func GlobalConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".llcfg/config.yaml"
	}
	return filepath.Join(home, ".llcfg", "config.yaml")
}

// ProjectConfigFilePath returns the project-level config file path (./.llcfg/config.yaml)
func ProjectConfigFilePath() string {
	return filepath.Join(".llcfg", "config.yaml")
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Project-level config (./.llcfg/config.yaml, or config.toml)
// 2. Environment variables
// 3. Global config (~/.llcfg/config.yaml, or config.toml)
// 4. Defaults
func Load() (*Config, error) {
	return load(GlobalConfigFilePath(), ProjectConfigFilePath())
}

func load(globalPath, projectPath string) (*Config, error) {
	cfg := DefaultConfig()

	if err := mergeFirst(cfg, globalPath); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := mergeFirst(cfg, projectPath); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFirst decodes path, or its .toml sibling when path is missing, on
// top of cfg. Neither existing is not an error.
func mergeFirst(cfg *Config, path string) error {
	candidates := []string{path, strings.TrimSuffix(path, filepath.Ext(path)) + ".toml"}
	for _, p := range candidates {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		return decodeFile(cfg, p)
	}
	return nil
}

func decodeFile(cfg *Config, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// LoadFromFile reads configuration from a specific file. Files ending in
// .toml are decoded as TOML, everything else as YAML. Environment variables
// still override the file.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := decodeFile(cfg, path); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the specified file path, as TOML when
// the path ends in .toml and YAML otherwise.
// It creates parent directories if they don't exist.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create config file %s: %w", path, err)
		}
		defer f.Close()
		if err := toml.NewEncoder(f).Encode(c); err != nil {
			return fmt.Errorf("failed to marshal config to TOML: %w", err)
		}
		return nil
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LLCFG_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LLCFG_LOG_JSON"); v != "" {
		cfg.LogJSON = parseBool(v)
	}
	if v := os.Getenv("LLCFG_VERBOSE"); v != "" {
		cfg.Verbose = parseBool(v)
	}
	if v := os.Getenv("LLCFG_STRICT"); v != "" {
		cfg.Strict = parseBool(v)
	}
	if v := os.Getenv("LLCFG_FORMAT"); v != "" {
		cfg.Format = Format(v)
	}
	if v := os.Getenv("LLCFG_SOCKET_PATH"); v != "" {
		cfg.SocketPath = v
	}
	if v := os.Getenv("LLCFG_CACHE_SIZE"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.CacheSize = i
		}
	}
	if v := os.Getenv("LLCFG_EXTENSIONS"); v != "" {
		var exts []string
		for _, e := range strings.Split(v, ",") {
			if e = strings.TrimSpace(e); e != "" {
				exts = append(exts, e)
			}
		}
		cfg.Extensions = exts
	}
	if v := os.Getenv("LLCFG_IGNORE_FILE"); v != "" {
		cfg.IgnoreFile = v
	}
}

// Validate checks that the configuration has valid required fields
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}

	valid := false
	for _, f := range Formats {
		if c.Format == f {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid format: %s (must be one of text, json, mermaid, dot, msgpack)", c.Format)
	}

	if c.SocketPath == "" {
		return fmt.Errorf("socket_path is required")
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive")
	}
	if len(c.Extensions) == 0 {
		return fmt.Errorf("extensions must not be empty")
	}
	for _, e := range c.Extensions {
		if !strings.HasPrefix(e, ".") {
			return fmt.Errorf("extension %q must start with a dot", e)
		}
	}

	if c.Layout.CharWidth <= 0 || c.Layout.LineHeight <= 0 {
		return fmt.Errorf("layout.char_width and layout.line_height must be positive")
	}
	if c.Layout.Padding < 0 || c.Layout.NodeSpacing < 0 || c.Layout.LayerSpacing < 0 {
		return fmt.Errorf("layout spacing must be non-negative")
	}
	return nil
}

// Level returns the configured log level, with Verbose forcing debug.
func (c *Config) Level() log.Level {
	if c.Verbose {
		return log.DebugLevel
	}
	lvl, _ := log.ParseLevel(c.LogLevel)
	return lvl
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// parseInt attempts to parse a string as int
func parseInt(s string) int {
	var i int
	if _, err := fmt.Sscanf(s, "%d", &i); err != nil {
		return 0
	}
	return i
}

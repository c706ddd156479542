package commands

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/triskellib/vscode/internal/config"
	"github.com/triskellib/vscode/internal/healthcheck"
)

// initAnswers collects the values asked by llcfg init.
type initAnswers struct {
	Scope      string // "project" or "global"
	FileType   string // "yaml" or "toml"
	LogLevel   string
	Format     string
	Strict     bool
	SocketPath string
	CacheSize  string
}

func defaultAnswers(cfg *config.Config) initAnswers {
	return initAnswers{
		Scope:      "project",
		FileType:   "yaml",
		LogLevel:   cfg.LogLevel,
		Format:     string(cfg.Format),
		Strict:     cfg.Strict,
		SocketPath: cfg.SocketPath,
		CacheSize:  strconv.Itoa(cfg.CacheSize),
	}
}

// apply writes the answers onto a copy of base and returns the config and
// the path it should be saved to.
func (a initAnswers) apply(base *config.Config) (*config.Config, string, error) {
	cfg := *base
	cfg.LogLevel = a.LogLevel
	cfg.Format = config.Format(a.Format)
	cfg.Strict = a.Strict
	cfg.SocketPath = a.SocketPath

	size, err := strconv.Atoi(a.CacheSize)
	if err != nil {
		return nil, "", fmt.Errorf("cache size %q: %w", a.CacheSize, err)
	}
	cfg.CacheSize = size

	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("config validation failed: %w", err)
	}

	path := config.ProjectConfigFilePath()
	if a.Scope == "global" {
		path = config.GlobalConfigFilePath()
	}
	if a.FileType == "toml" {
		path = path[:len(path)-len(filepath.Ext(path))] + ".toml"
	}
	return &cfg, path, nil
}

func validateCacheSize(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("enter a whole number")
	}
	if n <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func newInitCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file interactively",
		Long: `Guides you through the llcfg settings and saves them to the project
(.llcfg/config.yaml) or global (~/.llcfg/config.yaml) config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := defaultAnswers(opts.cfg)

			levels := make([]huh.Option[string], 0, 4)
			for _, l := range []string{"debug", "info", "warn", "error"} {
				levels = append(levels, huh.NewOption(l, l))
			}
			formats := make([]huh.Option[string], 0, len(config.Formats))
			for _, f := range config.Formats {
				formats = append(formats, huh.NewOption(string(f), string(f)))
			}

			form := huh.NewForm(
				huh.NewGroup(
					huh.NewSelect[string]().
						Title("Where should the config be saved?").
						Options(
							huh.NewOption("Project (.llcfg/)", "project"),
							huh.NewOption("Global (~/.llcfg/)", "global"),
						).
						Value(&a.Scope),
					huh.NewSelect[string]().
						Title("File format").
						Options(
							huh.NewOption("YAML", "yaml"),
							huh.NewOption("TOML", "toml"),
						).
						Value(&a.FileType),
				),
				huh.NewGroup(
					huh.NewSelect[string]().
						Title("Log level").
						Options(levels...).
						Value(&a.LogLevel),
					huh.NewSelect[string]().
						Title("Default output format for llcfg cfg").
						Options(formats...).
						Value(&a.Format),
					huh.NewConfirm().
						Title("Strict mode").
						Description("Exit non-zero when parsing reports diagnostics?").
						Value(&a.Strict),
				),
				huh.NewGroup(
					huh.NewInput().
						Title("llcfgd socket path").
						Placeholder("/tmp/llcfg.sock").
						Value(&a.SocketPath),
					huh.NewInput().
						Title("Parsed documents to keep in memory").
						Placeholder("16").
						Validate(validateCacheSize).
						Value(&a.CacheSize),
				),
			)
			if err := form.Run(); err != nil {
				return fmt.Errorf("interactive prompt failed: %w", err)
			}

			cfg, path, err := a.apply(opts.cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "\n=== Configuration Preview ===")
			fmt.Fprintf(out, "Config path: %s\n", path)
			fmt.Fprintf(out, "Log level: %s\n", cfg.LogLevel)
			fmt.Fprintf(out, "Format: %s\n", cfg.Format)
			fmt.Fprintf(out, "Strict: %t\n", cfg.Strict)
			fmt.Fprintf(out, "Socket: %s\n", cfg.SocketPath)
			fmt.Fprintf(out, "Cache size: %d\n", cfg.CacheSize)
			fmt.Fprintln(out, "=============================")

			if err := cfg.Save(path); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
			loaded, err := config.LoadFromFile(path)
			if err != nil {
				return fmt.Errorf("loading saved config: %w", err)
			}
			fmt.Fprintf(out, "Configuration saved to: %s\n\n", path)

			result, err := healthcheck.Check(loaded, path, healthcheck.EffectiveConfigPath(""))
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			if result.EffectivePath != "" && result.EffectiveScope != result.SavedScope {
				fmt.Fprintf(out, "Note: %s config at %s takes priority\n", result.EffectiveScope, result.EffectivePath)
			}
			printHealth(out, result)
			return nil
		},
	}
}

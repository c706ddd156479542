package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/triskellib/vscode/internal/healthcheck"
)

func newDoctorCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, daemon and clipboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			effective := healthcheck.EffectiveConfigPath(opts.configPath)
			result, err := healthcheck.Check(opts.cfg, "", effective)
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}

			if opts.jsonOutput {
				if err := printJSON(cmd, result); err != nil {
					return err
				}
			} else {
				printHealth(cmd.OutOrStdout(), result)
			}

			if !result.Healthy() {
				return fmt.Errorf("health check found problems")
			}
			return nil
		},
	}
}

func printHealth(w io.Writer, result *healthcheck.HealthCheckResult) {
	if result.EffectivePath == "" {
		fmt.Fprintf(w, "Using config: defaults (no config file found)\n")
	} else {
		path := result.EffectivePath
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		fmt.Fprintf(w, "Using config: %s (%s)\n", path, result.EffectiveScope)
	}

	for _, c := range result.Components() {
		fmt.Fprintf(w, "\n%s:\n", headerColor.Sprint(c.Name))
		if c.Detail != "" {
			fmt.Fprintf(w, "  %s\n", c.Detail)
		}
		fmt.Fprintf(w, "  Status: %s %s\n", formatStatusIcon(c.Status), c.Status)
		if c.Error != "" {
			fmt.Fprintf(w, "  Error: %s\n", c.Error)
		}
	}
}

func formatStatusIcon(status string) string {
	switch status {
	case "ready":
		return trueColor.Sprint("✓")
	case "error":
		return falseColor.Sprint("✗")
	default:
		return danglingColor.Sprint("•")
	}
}

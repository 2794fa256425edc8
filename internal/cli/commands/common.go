package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/frostlint/pkg/config"
)

func addConfigFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "config", "c", "",
		"Config file (default: .frostlint.yaml, .frostlint.yml or pyproject.toml)")
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// loadConfig loads path, or the first default file in the working
// directory, or the built-in defaults. It returns the file actually used.
func loadConfig(ctx context.Context, path string) (*config.Config, string, error) {
	if path == "" {
		found, ok := config.FindDefault(".")
		if !ok {
			cfg, err := config.Default(ctx)
			return cfg, "", err
		}
		path = found
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	return cfg, path, nil
}

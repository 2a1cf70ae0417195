// Package commands provides the command-line interface for the assetpack tool.
//
// It implements commands for:
//   - building a bundle from an asset folder
//   - listing and extracting bundles
//   - rebuilding on change
//   - key generation
//
// The package handles command-line parsing, configuration validation,
// and environment variable binding through cobra and viper.
package commands

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/assetpack/internal/config"
)

// preRun returns a PreRunE handler that loads flags and environment into cfg,
// hands the positional args to positional, and validates the configuration.
func preRun(v *viper.Viper, cfg *config.Config, positional func(args []string)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return fmt.Errorf("binding flags: %w", err)
		}

		if err := v.Unmarshal(cfg); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}

		if positional != nil {
			positional(args)
		}

		return cfg.Validate()
	}
}

// run wraps fn so that --show prints the configuration instead of running the command.
func run(cfg *config.Config, fn func(cmd *cobra.Command) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		if !cfg.Show {
			return fn(cmd)
		}

		out, err := yaml.Marshal(cfg.Masked())
		if err != nil {
			return fmt.Errorf("rendering config: %w", err)
		}

		_, err = os.Stdout.Write(out)

		return err
	}
}

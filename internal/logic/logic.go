// Package logic implements the commands of the asset bundler.
package logic

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/idelchi/assetpack/internal/bundler"
	"github.com/idelchi/assetpack/internal/config"
	"github.com/idelchi/assetpack/internal/filter"
)

// NewLogger returns a text logger on stderr, quieter with --quiet and chattier with --verbose.
func NewLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo

	switch {
	case cfg.Quiet:
		level = slog.LevelError
	case cfg.Verbose:
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Run builds the bundle described by cfg.
func Run(cfg *config.Config, logger *slog.Logger) error {
	start := time.Now()

	b, err := newBundler(cfg, logger)
	if err != nil {
		return err
	}

	result, err := b.Build()
	if err != nil {
		return fmt.Errorf("building bundle: %w", err)
	}

	if result.Skipped {
		return nil
	}

	if !cfg.Quiet {
		fmt.Printf("Bundled %q -> %q\n", cfg.AssetFolder, result.Path) //nolint:forbidigo
	}

	if cfg.Stats {
		if err := printStats(result, time.Since(start)); err != nil {
			return err
		}
	}

	return nil
}

// newBundler translates the command-line configuration into a Bundler.
func newBundler(cfg *config.Config, logger *slog.Logger) (*bundler.Bundler, error) {
	key, err := cfg.EncryptionKey()
	if err != nil {
		return nil, err
	}

	excludes := append([]string{}, cfg.Exclude...)

	if cfg.ExcludeFrom != "" {
		patterns, err := filter.LoadPatterns(cfg.ExcludeFrom)
		if err != nil {
			return nil, fmt.Errorf("loading exclude patterns: %w", err)
		}

		excludes = append(excludes, patterns...)
	}

	options := bundler.Options{
		EnabledOnDebugBuild: cfg.DebugBuild,
		BundleName:          cfg.Name,
		EncryptionEnabled:   cfg.Encrypt || key != nil,
		EncryptionKey:       key,
	}

	b := bundler.FromOptions(options).
		WithExclude(excludes...).
		WithOutputDir(cfg.Output).
		WithLogger(logger)

	if cfg.AssetFolder != "" {
		b.WithAssetFolder(cfg.AssetFolder)
	}

	return b, nil
}

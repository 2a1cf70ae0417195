package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/assetpack/internal/bundler"
	"github.com/idelchi/assetpack/internal/config"
	"github.com/idelchi/assetpack/internal/logic"
)

// NewBuildCommand creates a new cobra command for the build subcommand.
func NewBuildCommand(v *viper.Viper, cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "build [flags] [asset-folder]",
		Aliases: []string{"b"},
		Short:   "Pack an asset folder into a bundle",
		Long: `Pack an asset folder into a bundle.

The bundle is written next to the running executable unless --output is given.
During debug builds (PROFILE=debug) nothing is written unless --debug-build is set.`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: preRun(v, cfg, assetFolder(cfg)),
		RunE: run(cfg, func(_ *cobra.Command) error {
			return logic.Run(cfg, logic.NewLogger(cfg))
		}),
	}

	addBuildFlags(cmd)

	return cmd
}

// addBuildFlags registers the flags shared by build and watch.
func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("name", "n", bundler.DefaultBundleName, "File name of the bundle")
	cmd.Flags().BoolP("encrypt", "e", false, "Encrypt every entry, requires --key or --key-file")
	cmd.Flags().Bool("debug-build", false, "Build the bundle during debug builds too")
	cmd.Flags().StringP("output", "o", "", "Directory to write the bundle to instead of next to the executable")
	cmd.Flags().StringSliceP("exclude", "x", nil, "Patterns for asset paths to leave out, in find -path syntax")
	cmd.Flags().String("exclude-from", "", "Path to a JSONC file with exclude patterns, an array or {\"exclude\": [...]}")
	cmd.Flags().Bool("stats", false, "Print bundle statistics after building")
}

// assetFolder resolves the optional positional asset folder.
func assetFolder(cfg *config.Config) func([]string) {
	return func(args []string) {
		cfg.AssetFolder = bundler.DefaultAssetFolder

		if len(args) > 0 {
			cfg.AssetFolder = args[0]
		}
	}
}

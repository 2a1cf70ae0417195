package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/assetpack/internal/config"
	"github.com/idelchi/assetpack/internal/logic"
)

// NewExtractCommand creates a new cobra command for the extract subcommand.
func NewExtractCommand(v *viper.Viper, cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "extract [flags] bundle directory",
		Aliases: []string{"x"},
		Short:   "Extract the entries of a bundle into a directory",
		Long: `Extract the entries of a bundle into a directory.

With --key or --key-file every entry is decrypted, otherwise payloads are written as stored.`,
		Args: cobra.ExactArgs(2), //nolint:mnd // bundle and directory
		PreRunE: preRun(v, cfg, func(args []string) {
			cfg.Bundle = args[0]
			cfg.Destination = args[1]
		}),
		RunE: run(cfg, func(cmd *cobra.Command) error {
			return logic.RunExtract(cmd.Context(), cfg, logic.NewLogger(cfg))
		}),
	}

	cmd.Flags().BoolP("preserve-timestamps", "p", true, "Set extracted files' modification times from the bundle")

	return cmd
}

package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/assetpack/internal/config"
	"github.com/idelchi/assetpack/internal/logic"
)

// NewWatchCommand creates a new cobra command for the watch subcommand.
func NewWatchCommand(v *viper.Viper, cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "watch [flags] [asset-folder]",
		Aliases: []string{"w"},
		Short:   "Rebuild the bundle whenever the asset folder changes",
		Args:    cobra.MaximumNArgs(1),
		PreRunE: preRun(v, cfg, assetFolder(cfg)),
		RunE: run(cfg, func(cmd *cobra.Command) error {
			return logic.RunWatch(cmd.Context(), cfg, logic.NewLogger(cfg))
		}),
	}

	addBuildFlags(cmd)

	return cmd
}

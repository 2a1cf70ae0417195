package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/assetpack/internal/config"
	"github.com/idelchi/assetpack/internal/logic"
)

// NewListCommand creates a new cobra command for the list subcommand.
func NewListCommand(v *viper.Viper, cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "list [flags] bundle",
		Aliases: []string{"ls"},
		Short:   "List the entries of a bundle",
		Args:    cobra.ExactArgs(1),
		PreRunE: preRun(v, cfg, func(args []string) {
			cfg.Bundle = args[0]
		}),
		RunE: run(cfg, func(_ *cobra.Command) error {
			return logic.RunList(cfg)
		}),
	}
}

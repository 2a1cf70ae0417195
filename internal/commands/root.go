package commands

import (
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/assetpack/internal/config"
	"github.com/idelchi/gogen/pkg/cobraext"
)

// EnvPrefix prefixes the environment variables mirroring the flags, e.g. ASSETPACK_KEY_FILE.
const EnvPrefix = "ASSETPACK"

// NewRootCommand creates the root command with common configuration.
// It sets up environment variable binding and flag handling.
func NewRootCommand(cfg *config.Config, version string) *cobra.Command {
	root := cobraext.NewDefaultRootCommand(version)

	root.Use = "assetpack [flags] command [flags]"
	root.Short = "Asset bundling utility"
	root.Long = `Packs an asset folder into a single tar bundle placed next to the executable,
optionally encrypting every entry with AES-128-CBC.
Provides commands to build, inspect and extract bundles and to generate keys.`
	root.SilenceUsage = true
	root.SilenceErrors = true

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	flags := root.PersistentFlags()
	flags.BoolP("show", "s", false, "Show the configuration and exit")
	flags.BoolP("quiet", "q", false, "Suppress non-error output")
	flags.Bool("verbose", false, "Enable debug logging")
	flags.IntP("parallel", "j", runtime.NumCPU(), "Number of parallel workers, defaults to number of CPUs")
	flags.StringP("key", "k", "", "Encryption key (16 bytes, hex-encoded)")
	flags.StringP("key-file", "f", "", "Path to the key file with the encryption key (16 bytes, hex-encoded)")

	root.AddCommand(
		NewBuildCommand(v, cfg),
		NewWatchCommand(v, cfg),
		NewListCommand(v, cfg),
		NewExtractCommand(v, cfg),
		NewGenerateCommand(),
	)

	return root
}

// Package buildenv captures the build-tool signals that steer a bundle build.
package buildenv

import (
	"fmt"

	"github.com/spf13/viper"
)

// DebugProfile is the profile value reported by debug builds.
const DebugProfile = "debug"

// Environment is a snapshot of the build-tool environment, taken once per build.
type Environment struct {
	// Profile is the build profile, e.g. "debug" or "release"
	Profile string

	// OutDir is set when running inside a build tool's intermediate output directory
	OutDir string
}

// IsDebug reports whether the build profile is the debug profile.
func (e Environment) IsDebug() bool {
	return e.Profile == DebugProfile
}

// InBuildOutput reports whether the process runs inside a build tool's scratch directory.
func (e Environment) InBuildOutput() bool {
	return e.OutDir != ""
}

// Load reads PROFILE and OUT_DIR from the process environment.
func Load() (Environment, error) {
	env := viper.New()

	for key, name := range map[string]string{"profile": "PROFILE", "out_dir": "OUT_DIR"} {
		if err := env.BindEnv(key, name); err != nil {
			return Environment{}, fmt.Errorf("binding %s: %w", name, err)
		}
	}

	return Environment{
		Profile: env.GetString("profile"),
		OutDir:  env.GetString("out_dir"),
	}, nil
}

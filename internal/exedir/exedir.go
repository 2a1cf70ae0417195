// Package exedir resolves where a bundle is written: next to the running executable.
package exedir

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/idelchi/assetpack/internal/buildenv"
)

// Resolve returns the directory that should contain the bundle.
//
// Inside a build tool's intermediate output directory the executable lives two levels
// below the final binary directory, so Resolve ascends two more levels in that case.
// A nil executable func defaults to os.Executable.
func Resolve(env buildenv.Environment, executable func() (string, error)) (string, error) {
	if executable == nil {
		executable = os.Executable
	}

	exe, err := executable()
	if err != nil {
		return "", fmt.Errorf("resolving executable path: %w", err)
	}

	dir := filepath.Dir(exe)

	if env.InBuildOutput() {
		dir = filepath.Dir(filepath.Dir(dir))
	}

	return dir, nil
}

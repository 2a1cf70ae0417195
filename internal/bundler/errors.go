package bundler

import (
	"errors"

	"github.com/idelchi/assetpack/internal/archive"
)

var (
	// ErrConfiguration is returned for invalid bundler settings, such as encryption without a key.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrNotFound is returned when the asset folder is missing or not a directory.
	ErrNotFound = errors.New("asset folder not found")
	// ErrIO marks filesystem failures while resolving, creating or writing the bundle.
	ErrIO = archive.ErrIO
	// ErrPath is returned when a file cannot be expressed relative to the asset folder.
	ErrPath = archive.ErrPath
)

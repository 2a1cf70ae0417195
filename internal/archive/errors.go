package archive

import "errors"

var (
	// ErrIO marks filesystem read, write or traversal failures.
	ErrIO = errors.New("i/o failure")
	// ErrPath is returned when a discovered file cannot be expressed relative to the asset root.
	ErrPath = errors.New("path outside asset root")
)

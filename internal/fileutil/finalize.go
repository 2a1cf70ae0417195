// Package fileutil provides shared file operation helpers.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// TempFile is a temporary file that replaces its target on Commit.
type TempFile struct {
	File   *os.File
	Name   string
	target string
}

// CreateTemp creates a temporary file in the target's directory.
// Caller must defer CleanupOnError.
func CreateTemp(target string) (*TempFile, error) {
	file, err := os.CreateTemp(filepath.Dir(target), ".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("creating temporary file: %w", err)
	}

	return &TempFile{File: file, Name: file.Name(), target: target}, nil
}

// CleanupOnError closes the temp file and removes it if the write failed.
func (t *TempFile) CleanupOnError(errp *error) {
	t.File.Close() //nolint:gosec,errcheck // best-effort cleanup

	if *errp != nil {
		os.Remove(t.Name) //nolint:gosec,errcheck // best-effort cleanup
	}
}

// Commit sets perm on the temp file and renames it over the target.
func (t *TempFile) Commit(perm os.FileMode) error {
	if err := t.File.Chmod(perm); err != nil {
		return fmt.Errorf("setting file permissions: %w", err)
	}

	if err := t.File.Close(); err != nil {
		return fmt.Errorf("closing temporary file: %w", err)
	}

	if err := os.Rename(t.Name, t.target); err != nil {
		return fmt.Errorf("renaming output file: %w", err)
	}

	return nil
}

// WriteAtomic writes data to target through a temporary file and a rename.
func WriteAtomic(target string, data []byte, perm os.FileMode) (err error) {
	tmp, err := CreateTemp(target)
	if err != nil {
		return err
	}

	defer tmp.CleanupOnError(&err)

	if _, err = tmp.File.Write(data); err != nil {
		return fmt.Errorf("writing %q: %w", target, err)
	}

	return tmp.Commit(perm)
}

// FinalizeOutput optionally preserves timestamps and returns the output file size.
func FinalizeOutput(outPath string, preserveTimestamps bool, modTime time.Time) (int64, error) {
	if preserveTimestamps {
		if err := os.Chtimes(outPath, modTime, modTime); err != nil {
			return 0, fmt.Errorf("preserving timestamps: %w", err)
		}
	}

	outInfo, err := os.Stat(outPath)
	if err != nil {
		return 0, fmt.Errorf("stat output %q: %w", outPath, err)
	}

	return outInfo.Size(), nil
}

package logic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/idelchi/assetpack/internal/archive"
	"github.com/idelchi/assetpack/internal/config"
	"github.com/idelchi/assetpack/internal/fileutil"
)

// ErrUnsafePath is returned for bundle entries that would be written outside the destination.
var ErrUnsafePath = errors.New("entry escapes destination")

// RunExtract decodes every entry of a bundle into cfg.Destination.
// Entries are read sequentially and written by up to cfg.Parallel workers.
func RunExtract(parent context.Context, cfg *config.Config, logger *slog.Logger) error {
	dec, err := decrypter(cfg)
	if err != nil {
		return err
	}
	defer dec.Destroy()

	file, err := os.Open(cfg.Bundle)
	if err != nil {
		return fmt.Errorf("opening bundle: %w", err)
	}
	defer file.Close()

	group, ctx := errgroup.WithContext(parent)
	group.SetLimit(max(1, cfg.Parallel))

	reader := archive.NewReader(file, dec)

	for ctx.Err() == nil {
		entry, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			group.Wait() //nolint:errcheck // the read error takes precedence

			return fmt.Errorf("extracting %q: %w", cfg.Bundle, err)
		}

		group.Go(func() error {
			return extractEntry(cfg, entry, logger)
		})
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("extracting %q: %w", cfg.Bundle, err)
	}

	return parent.Err()
}

func extractEntry(cfg *config.Config, entry *archive.Entry, logger *slog.Logger) error {
	target, err := destination(cfg.Destination, entry.Path)
	if err != nil {
		return err
	}

	const dirPerm = 0o755

	if err := os.MkdirAll(filepath.Dir(target), dirPerm); err != nil {
		return fmt.Errorf("creating directory for %q: %w", entry.Path, err)
	}

	perm := entry.Header.FileInfo().Mode().Perm()
	if perm == 0 {
		perm = 0o644
	}

	if err := fileutil.WriteAtomic(target, entry.Data, perm); err != nil {
		return fmt.Errorf("writing %q: %w", entry.Path, err)
	}

	if _, err := fileutil.FinalizeOutput(target, cfg.PreserveTimestamps, entry.Header.ModTime); err != nil {
		return err
	}

	logger.Debug("extracted", "path", entry.Path, "target", target, "decrypted", entry.Encrypted)

	if !cfg.Quiet {
		fmt.Printf("Extracted %q -> %q\n", entry.Path, target) //nolint:forbidigo
	}

	return nil
}

// destination joins an entry path onto dir, rejecting paths that leave it.
func destination(dir, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))

	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}

	return filepath.Join(dir, clean), nil
}

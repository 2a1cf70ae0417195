package logic

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/assetpack/internal/archive"
	"github.com/idelchi/assetpack/internal/config"
	"github.com/idelchi/assetpack/internal/encryption"
)

// RunList prints the entries of a bundle, decrypting them when a key is given.
func RunList(cfg *config.Config) error {
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

	var (
		count int
		total int64
	)

	err = archive.Walk(file, dec, func(entry *archive.Entry) error {
		count++
		total += int64(len(entry.Data))

		if !cfg.Quiet {
			fmt.Printf("%10s  %s  %s\n", //nolint:forbidigo
				humanize.IBytes(uint64(len(entry.Data))),
				entry.Header.ModTime.Format("2006-01-02 15:04"),
				entry.Path)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("listing %q: %w", cfg.Bundle, err)
	}

	//nolint:gosec // total is a sum of lengths
	fmt.Fprintf(os.Stderr, "%d entries, %s\n", count, humanize.IBytes(uint64(total)))

	return nil
}

// decrypter returns a context that is ready only when the configuration carries a key.
func decrypter(cfg *config.Config) (*encryption.Context, error) {
	key, err := cfg.EncryptionKey()
	if err != nil {
		return nil, err
	}

	return encryption.New(key != nil, key), nil
}

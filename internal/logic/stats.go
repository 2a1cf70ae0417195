package logic

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/zeebo/blake3"

	"github.com/idelchi/assetpack/internal/bundler"
)

func printStats(result bundler.Result, duration time.Duration) error {
	digest, err := fileDigest(result.Path)
	if err != nil {
		return err
	}

	stats := result.Stats

	fmt.Fprintf(os.Stderr, "\nStats\n")
	fmt.Fprintf(os.Stderr, "  Entries:   %d\n", stats.Entries)
	fmt.Fprintf(os.Stderr, "  Encrypted: %d\n", stats.Encrypted)
	fmt.Fprintf(os.Stderr, "  Excluded:  %d\n", stats.Excluded)
	//nolint:gosec // sizes are always non-negative
	fmt.Fprintf(os.Stderr, "  Assets:    %s\n", humanize.IBytes(uint64(max(0, stats.SourceBytes))))
	//nolint:gosec // sizes are always non-negative
	fmt.Fprintf(os.Stderr, "  Bundle:    %s\n", humanize.IBytes(uint64(max(0, result.Size))))
	fmt.Fprintf(os.Stderr, "  BLAKE3:    %s\n", digest)
	fmt.Fprintf(os.Stderr, "  Duration:  %s\n", duration.Round(time.Millisecond))

	return nil
}

// fileDigest returns the hex BLAKE3 digest of the file at path.
func fileDigest(path string) (string, error) {
	file, err := os.Open(path) //nolint:gosec // path is the bundle just written
	if err != nil {
		return "", fmt.Errorf("opening bundle for digest: %w", err)
	}
	defer file.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hashing bundle: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

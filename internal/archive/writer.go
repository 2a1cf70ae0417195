package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/idelchi/assetpack/internal/filter"
)

// MaxDepth bounds directory nesting below the asset root.
const MaxDepth = 256

// Encrypter turns a plaintext payload into its stored form.
type Encrypter interface {
	// Ready reports whether TryEncrypt will encrypt.
	Ready() bool
	// TryEncrypt returns the ciphertext and true, or false when no encryption was performed.
	TryEncrypt(plaintext []byte) ([]byte, bool, error)
}

// Stats summarizes what a Writer has written so far.
type Stats struct {
	// Entries is the number of file entries written
	Entries int

	// Encrypted is the number of entries stored as ciphertext
	Encrypted int

	// Excluded is the number of files and directories skipped by the filter
	Excluded int

	// SourceBytes is the total size of the source files
	SourceBytes int64

	// PayloadBytes is the total size of the stored payloads
	PayloadBytes int64
}

// Writer appends asset files to a tar stream.
type Writer struct {
	tw     *tar.Writer
	enc    Encrypter
	filter *filter.Filter
	logger *slog.Logger
	stats  Stats
}

// Option configures a Writer.
type Option func(*Writer)

// WithFilter skips paths excluded by flt.
func WithFilter(flt *filter.Filter) Option {
	return func(w *Writer) { w.filter = flt }
}

// WithLogger sets the logger used for per-entry debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) { w.logger = logger }
}

// NewWriter returns a Writer appending to dst. A nil enc stores every file verbatim.
func NewWriter(dst io.Writer, enc Encrypter, opts ...Option) *Writer {
	w := &Writer{
		tw:     tar.NewWriter(dst),
		enc:    enc,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Stats returns the counters accumulated so far.
func (w *Writer) Stats() Stats {
	return w.stats
}

// Close writes the tar trailer. It does not close the underlying writer.
func (w *Writer) Close() error {
	if err := w.tw.Close(); err != nil {
		return fmt.Errorf("%w: finishing archive: %w", ErrIO, err)
	}

	return nil
}

// pending is a directory entry waiting on the traversal stack.
type pending struct {
	path  string
	info  fs.FileInfo
	depth int
}

// AddDir walks root depth-first and appends every regular file below it.
// Directory entries are visited in name order; the walk uses an explicit stack
// and fails once nesting exceeds MaxDepth.
func (w *Writer) AddDir(fsys afero.Fs, root string) error {
	children, err := w.readDir(fsys, root)
	if err != nil {
		return err
	}

	stack := make([]pending, 0, len(children))
	stack = pushReversed(stack, root, children, 1)

	for len(stack) > 0 {
		entry := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		name, err := relativeName(root, entry.path)
		if err != nil {
			return err
		}

		if w.filter.Excluded(name) {
			w.stats.Excluded++
			w.logger.Debug("excluded", "path", name)

			continue
		}

		info, err := resolve(fsys, entry)
		if err != nil {
			return err
		}

		switch {
		case info.IsDir():
			if entry.depth >= MaxDepth {
				return fmt.Errorf("%w: %q nests deeper than %d directories", ErrIO, name, MaxDepth)
			}

			children, err := w.readDir(fsys, entry.path)
			if err != nil {
				return err
			}

			stack = pushReversed(stack, entry.path, children, entry.depth+1)
		case info.Mode().IsRegular():
			if err := w.addFile(fsys, entry.path, name, info); err != nil {
				return err
			}
		default:
			w.logger.Debug("skipping non-regular file", "path", name, "mode", info.Mode().String())
		}
	}

	return nil
}

func (w *Writer) readDir(fsys afero.Fs, dir string) ([]fs.FileInfo, error) {
	infos, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("%w: reading directory %q: %w", ErrIO, dir, err)
	}

	return infos, nil
}

// pushReversed pushes children so that they pop in listing order.
func pushReversed(stack []pending, dir string, children []fs.FileInfo, depth int) []pending {
	for i := len(children) - 1; i >= 0; i-- {
		stack = append(stack, pending{
			path:  filepath.Join(dir, children[i].Name()),
			info:  children[i],
			depth: depth,
		})
	}

	return stack
}

// resolve follows symbolic links so linked files and directories are packed by content.
func resolve(fsys afero.Fs, entry pending) (fs.FileInfo, error) {
	if entry.info.Mode()&os.ModeSymlink == 0 {
		return entry.info, nil
	}

	info, err := fsys.Stat(entry.path)
	if err != nil {
		return nil, fmt.Errorf("%w: following link %q: %w", ErrIO, entry.path, err)
	}

	return info, nil
}

// relativeName returns the in-archive name of path.
func relativeName(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrPath, path, err)
	}

	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q is not below %q", ErrPath, path, root)
	}

	return filepath.ToSlash(rel), nil
}

func (w *Writer) addFile(fsys afero.Fs, path, name string, info fs.FileInfo) error {
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("%w: building header for %q: %w", ErrIO, name, err)
	}

	header.Name = name

	file, err := fsys.Open(path)
	if err != nil {
		return fmt.Errorf("%w: opening %q: %w", ErrIO, path, err)
	}
	defer file.Close()

	if w.enc == nil || !w.enc.Ready() {
		return w.appendStream(header, file, info.Size())
	}

	plain, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("%w: reading %q: %w", ErrIO, path, err)
	}

	payload, encrypted, err := w.enc.TryEncrypt(plain)
	if err != nil {
		return fmt.Errorf("encrypting %q: %w", name, err)
	}

	if !encrypted {
		payload = plain
	}

	if err := w.appendBytes(header, payload); err != nil {
		return err
	}

	w.stats.SourceBytes += int64(len(plain))

	if encrypted {
		w.stats.Encrypted++
	}

	w.logger.Debug("added", "path", name, "size", len(payload), "encrypted", encrypted)

	return nil
}

// appendStream copies exactly size bytes from r as the entry's content.
func (w *Writer) appendStream(header *tar.Header, r io.Reader, size int64) error {
	header.Size = size

	if err := w.tw.WriteHeader(header); err != nil {
		return fmt.Errorf("%w: writing header for %q: %w", ErrIO, header.Name, err)
	}

	if _, err := io.CopyN(w.tw, r, size); err != nil {
		return fmt.Errorf("%w: copying %q: %w", ErrIO, header.Name, err)
	}

	w.stats.Entries++
	w.stats.SourceBytes += size
	w.stats.PayloadBytes += size

	w.logger.Debug("added", "path", header.Name, "size", size, "encrypted", false)

	return nil
}

// appendBytes writes payload as the entry's content, declaring its length in the header.
func (w *Writer) appendBytes(header *tar.Header, payload []byte) error {
	header.Size = int64(len(payload))

	if err := w.tw.WriteHeader(header); err != nil {
		return fmt.Errorf("%w: writing header for %q: %w", ErrIO, header.Name, err)
	}

	if _, err := w.tw.Write(payload); err != nil {
		return fmt.Errorf("%w: writing %q: %w", ErrIO, header.Name, err)
	}

	w.stats.Entries++
	w.stats.PayloadBytes += header.Size

	return nil
}

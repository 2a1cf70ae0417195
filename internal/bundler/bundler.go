// Package bundler packs an asset folder into a single bundle file next to the running executable.
package bundler

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/idelchi/assetpack/internal/archive"
	"github.com/idelchi/assetpack/internal/buildenv"
	"github.com/idelchi/assetpack/internal/encryption"
	"github.com/idelchi/assetpack/internal/exedir"
	"github.com/idelchi/assetpack/internal/filter"
)

const (
	// DefaultAssetFolder is the asset folder packed when none is configured.
	DefaultAssetFolder = "assets"
	// DefaultBundleName is the file name of the bundle when none is configured.
	DefaultBundleName = "assets.bin"
)

// Options are the settings shared between the bundler and the code loading the bundle at run time.
type Options struct {
	// EnabledOnDebugBuild forces bundling during debug builds
	EnabledOnDebugBuild bool

	// BundleName is the file name of the bundle
	BundleName string

	// EncryptionEnabled encrypts every entry; it requires EncryptionKey
	EncryptionEnabled bool

	// EncryptionKey is the raw AES-128 key
	EncryptionKey *[encryption.KeySize]byte
}

// DefaultOptions returns Options with the default bundle name and encryption off.
func DefaultOptions() Options {
	return Options{BundleName: DefaultBundleName}
}

// Result describes a finished build.
type Result struct {
	// Skipped is set when the debug gate suppressed the build
	Skipped bool

	// Path is the bundle file written
	Path string

	// Size is the bundle file size in bytes
	Size int64

	// Encrypted reports whether entries were stored as ciphertext
	Encrypted bool

	// Stats are the archive writer counters
	Stats archive.Stats
}

// Bundler builds an asset bundle. Configure it with the With* methods, then call Build.
type Bundler struct {
	options     Options
	assetFolder string
	excludes    []string
	outputDir   string
	env         *buildenv.Environment
	executable  func() (string, error)
	getwd       func() (string, error)
	fs          afero.Fs
	logger      *slog.Logger
}

// New returns a Bundler with default options.
func New() *Bundler {
	return FromOptions(DefaultOptions())
}

// FromOptions returns a Bundler for the given options and the default asset folder.
func FromOptions(options Options) *Bundler {
	return &Bundler{
		options:     options,
		assetFolder: DefaultAssetFolder,
		getwd:       os.Getwd,
		fs:          afero.NewOsFs(),
		logger:      slog.Default(),
	}
}

// Options returns the bundler's current options.
func (b *Bundler) Options() Options {
	return b.options
}

// WithAssetFolder sets the folder whose contents are packed.
func (b *Bundler) WithAssetFolder(path string) *Bundler {
	b.assetFolder = path

	return b
}

// WithBundleName sets the bundle file name.
func (b *Bundler) WithBundleName(name string) *Bundler {
	b.options.BundleName = name

	return b
}

// EnabledOnDebugBuild controls whether debug builds produce a bundle.
func (b *Bundler) EnabledOnDebugBuild(enabled bool) *Bundler {
	b.options.EnabledOnDebugBuild = enabled

	return b
}

// WithEncryption switches entry encryption on or off without touching the key.
func (b *Bundler) WithEncryption(enabled bool) *Bundler {
	b.options.EncryptionEnabled = enabled

	return b
}

// SetEncryptionKey sets the key and switches encryption on.
func (b *Bundler) SetEncryptionKey(key [encryption.KeySize]byte) *Bundler {
	b.options.EncryptionEnabled = true
	b.options.EncryptionKey = &key

	return b
}

// WithExclude adds find -path style patterns for asset paths left out of the bundle.
func (b *Bundler) WithExclude(patterns ...string) *Bundler {
	b.excludes = append(b.excludes, patterns...)

	return b
}

// WithOutputDir writes the bundle into dir instead of next to the executable.
func (b *Bundler) WithOutputDir(dir string) *Bundler {
	b.outputDir = dir

	return b
}

// WithEnvironment injects the build environment instead of reading it from the process.
func (b *Bundler) WithEnvironment(env buildenv.Environment) *Bundler {
	b.env = &env

	return b
}

// WithExecutable overrides how the running executable's path is determined.
func (b *Bundler) WithExecutable(executable func() (string, error)) *Bundler {
	b.executable = executable

	return b
}

// WithFs sets the filesystem the assets are read from and the bundle is written to.
func (b *Bundler) WithFs(fsys afero.Fs) *Bundler {
	b.fs = fsys

	return b
}

// WithLogger sets the logger.
func (b *Bundler) WithLogger(logger *slog.Logger) *Bundler {
	b.logger = logger

	return b
}

// Build packs the asset folder into the bundle file.
//
// A debug build without EnabledOnDebugBuild is a successful no-op. Configuration and
// asset folder errors are reported before the bundle file is created; failures after
// that may leave a partially written bundle behind.
func (b *Bundler) Build() (Result, error) {
	env, err := b.environment()
	if err != nil {
		return Result{}, err
	}

	if !b.options.EnabledOnDebugBuild && env.IsDebug() {
		b.logger.Warn("disabled on debug build")

		return Result{Skipped: true}, nil
	}

	cwd, cwdErr := b.getwd()
	if cwdErr != nil {
		b.logger.Debug("working directory unknown", "error", cwdErr)
	}

	b.logger.Info("start bundling assets", "folder", b.assetFolder, "cwd", cwd)

	flt, err := b.validate()
	if err != nil {
		return Result{}, err
	}

	info, err := b.fs.Stat(b.assetFolder)
	if err != nil || !info.IsDir() {
		if cwdErr != nil {
			return Result{}, fmt.Errorf("%w: resolving working directory: %w", ErrIO, cwdErr)
		}

		return Result{}, fmt.Errorf("%w: %s, cwd: %s", ErrNotFound, b.assetFolder, cwd)
	}

	dir := b.outputDir
	if dir == "" {
		if dir, err = exedir.Resolve(env, b.executable); err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrIO, err)
		}
	}

	inside, err := within(b.assetFolder, dir)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrPath, err)
	}

	if inside {
		return Result{}, fmt.Errorf("%w: bundle directory %q is inside the asset folder %q",
			ErrConfiguration, dir, b.assetFolder)
	}

	ctx := encryption.New(b.options.EncryptionEnabled, b.options.EncryptionKey)
	defer ctx.Destroy()

	path := filepath.Join(dir, b.options.BundleName)

	stats, err := b.write(path, ctx, flt)
	if err != nil {
		return Result{}, err
	}

	result := Result{Path: path, Encrypted: ctx.Ready(), Stats: stats}

	if written, err := b.fs.Stat(path); err == nil {
		result.Size = written.Size()
	}

	b.logger.Info("bundle written",
		"path", path, "entries", stats.Entries, "encrypted", result.Encrypted, "bytes", result.Size)

	return result, nil
}

// environment returns the injected environment or reads it from the process once.
func (b *Bundler) environment() (buildenv.Environment, error) {
	if b.env != nil {
		return *b.env, nil
	}

	env, err := buildenv.Load()
	if err != nil {
		return buildenv.Environment{}, fmt.Errorf("%w: reading build environment: %w", ErrConfiguration, err)
	}

	b.env = &env

	return env, nil
}

// within reports whether dir is root or lies below it, comparing absolute paths with links resolved.
func within(root, dir string) (bool, error) {
	root, err := canonical(root)
	if err != nil {
		return false, err
	}

	dir, err = canonical(dir)
	if err != nil {
		return false, err
	}

	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return false, nil //nolint:nilerr // unrelated volumes
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)), nil
}

// canonical returns the absolute form of path, with symbolic links resolved when path exists.
func canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", path, err)
	}

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}

	return abs, nil
}

// validate checks the options and compiles the exclude patterns.
func (b *Bundler) validate() (*filter.Filter, error) {
	if b.options.EncryptionEnabled {
		if !encryption.Available {
			return nil, fmt.Errorf("%w: asset encryption is enabled but not compiled in", ErrConfiguration)
		}

		if b.options.EncryptionKey == nil {
			return nil, fmt.Errorf("%w: asset encryption is enabled but encryption key is not provided", ErrConfiguration)
		}
	}

	name := b.options.BundleName
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: invalid bundle name %q", ErrConfiguration, name)
	}

	if len(b.excludes) == 0 {
		return nil, nil
	}

	flt, err := filter.New(b.excludes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	return flt, nil
}

// write creates or truncates path and archives the asset folder into it.
func (b *Bundler) write(path string, enc archive.Encrypter, flt *filter.Filter) (stats archive.Stats, err error) {
	const bundlePerm = 0o644

	file, err := b.fs.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, bundlePerm)
	if err != nil {
		return stats, fmt.Errorf("%w: creating bundle %q: %w", ErrIO, path, err)
	}

	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: closing bundle %q: %w", ErrIO, path, cerr)
		}
	}()

	buffered := bufio.NewWriter(file)
	writer := archive.NewWriter(buffered, enc, archive.WithFilter(flt), archive.WithLogger(b.logger))

	if err := writer.AddDir(b.fs, b.assetFolder); err != nil {
		return writer.Stats(), err
	}

	if err := writer.Close(); err != nil {
		return writer.Stats(), err
	}

	if err := buffered.Flush(); err != nil {
		return writer.Stats(), fmt.Errorf("%w: flushing bundle %q: %w", ErrIO, path, err)
	}

	return writer.Stats(), nil
}

// Package config holds the command-line configuration shared by all commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/idelchi/gogen/pkg/key"

	"github.com/idelchi/assetpack/internal/encryption"
)

// ErrUsage indicates an error in command-line usage or configuration.
var ErrUsage = errors.New("usage error")

// Config is populated from flags and ASSETPACK_* environment variables.
type Config struct {
	// Common flags
	Show    bool
	Quiet   bool
	Verbose bool
	Key     string `validate:"omitempty,len=32,hexadecimal,exclusive=KeyFile" label:"--key"`
	KeyFile string `mapstructure:"key-file" validate:"omitempty,file" label:"--key-file"`

	// Build flags
	Name        string
	Encrypt     bool
	DebugBuild  bool     `mapstructure:"debug-build"`
	Output      string   `validate:"omitempty,dir" label:"--output"`
	Exclude     []string `validate:"dive,required" label:"--exclude"`
	ExcludeFrom string   `mapstructure:"exclude-from" validate:"omitempty,file" label:"--exclude-from"`
	Stats       bool

	// Extract flags
	Parallel           int  `validate:"gte=1" label:"--parallel"`
	PreserveTimestamps bool `mapstructure:"preserve-timestamps"`

	// Positional arguments
	AssetFolder string `mapstructure:"-"`
	Bundle      string `mapstructure:"-"`
	Destination string `mapstructure:"-"`
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	validate := validator.New()

	if err := registerExclusive(validate); err != nil {
		return err
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	return nil
}

// EncryptionKey returns the key given by --key or --key-file, or nil when neither is set.
func (c *Config) EncryptionKey() (*[encryption.KeySize]byte, error) {
	var encoded string

	switch {
	case c.Key != "":
		encoded = c.Key
	case c.KeyFile != "":
		data, err := os.ReadFile(c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("reading key file: %w", err)
		}

		encoded = strings.TrimSpace(string(data))
	default:
		return nil, nil //nolint:nilnil // no key configured
	}

	decoded, err := key.FromHex(encoded)
	if err != nil {
		return nil, fmt.Errorf("reading key: %w", err)
	}

	if len(decoded) != encryption.KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes (%d hex characters), got %d bytes",
			ErrUsage, encryption.KeySize, 2*encryption.KeySize, len(decoded))
	}

	var raw [encryption.KeySize]byte

	copy(raw[:], decoded)

	return &raw, nil
}

// Masked returns a copy safe for printing.
func (c Config) Masked() Config {
	if c.Key != "" {
		c.Key = strings.Repeat("*", len(c.Key))
	}

	return c
}

// label returns the flag name from the label tag, used in validation messages.
func label(fld reflect.StructField) string {
	const splitSize = 2

	name := strings.SplitN(fld.Tag.Get("label"), ",", splitSize)[0]
	if name == "" || name == "-" {
		return fld.Name
	}

	return name
}

package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
)

// Decrypter recovers plaintext from a stored payload.
type Decrypter interface {
	Ready() bool
	Decrypt(payload []byte) ([]byte, error)
}

// Entry is one decoded file from a bundle.
type Entry struct {
	// Header is the entry's tar header; Size is the stored payload length
	Header *tar.Header

	// Path is the asset-root-relative path
	Path string

	// Data is the decoded content
	Data []byte

	// Encrypted reports whether Data was decrypted from the stored payload
	Encrypted bool
}

// Reader iterates the file entries of a bundle.
type Reader struct {
	tr  *tar.Reader
	dec Decrypter
}

// NewReader returns a Reader over src. When dec is ready, every payload is decrypted.
func NewReader(src io.Reader, dec Decrypter) *Reader {
	return &Reader{tr: tar.NewReader(src), dec: dec}
}

// Next returns the next regular file entry, or io.EOF at the end of the bundle.
func (r *Reader) Next() (*Entry, error) {
	for {
		header, err := r.tr.Next()
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}

		if err != nil {
			return nil, fmt.Errorf("%w: reading header: %w", ErrIO, err)
		}

		if header.Typeflag != tar.TypeReg {
			continue
		}

		payload, err := io.ReadAll(r.tr)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %q: %w", ErrIO, header.Name, err)
		}

		entry := &Entry{Header: header, Path: header.Name, Data: payload}

		if r.dec != nil && r.dec.Ready() {
			entry.Data, err = r.dec.Decrypt(payload)
			if err != nil {
				return nil, fmt.Errorf("decrypting %q: %w", header.Name, err)
			}

			entry.Encrypted = true
		}

		return entry, nil
	}
}

// Walk calls fn for every entry in src, stopping at the first error.
func Walk(src io.Reader, dec Decrypter, fn func(*Entry) error) error {
	reader := NewReader(src, dec)

	for {
		entry, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		if err := fn(entry); err != nil {
			return err
		}
	}
}

package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/awnumar/memguard"
)

// KeySize is the required key size for AES-128.
const KeySize = 16

// Context holds the key material for asset encryption.
type Context struct {
	// enabled mirrors the bundle's encryption switch
	enabled bool

	// key is nil when no key was configured or the capability is compiled out
	key *memguard.LockedBuffer
}

// New creates a Context. The key is copied into locked memory; the caller's array is left untouched.
// A nil key yields a context that is never ready.
func New(enabled bool, key *[KeySize]byte) *Context {
	ctx := &Context{enabled: enabled}

	if Available && key != nil {
		material := make([]byte, KeySize)
		copy(material, key[:])

		// NewBufferFromBytes wipes material after moving it.
		ctx.key = memguard.NewBufferFromBytes(material)
	}

	return ctx
}

// Ready reports whether payloads will be encrypted.
func (c *Context) Ready() bool {
	return Available && c != nil && c.enabled && c.key != nil && c.key.IsAlive()
}

// TryEncrypt encrypts plaintext when the context is ready.
// It returns false, and no error, when no encryption was performed.
//
// The result is a random IV followed by the CBC ciphertext of the padded plaintext,
// so its length is always a multiple of the block size and at least two blocks.
func (c *Context) TryEncrypt(plaintext []byte) ([]byte, bool, error) {
	if !c.Ready() {
		return nil, false, nil
	}

	block, err := aes.NewCipher(c.key.Bytes())
	if err != nil {
		return nil, false, fmt.Errorf("creating cipher: %w", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	out := make([]byte, aes.BlockSize+len(padded))

	iv := out[:aes.BlockSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, false, fmt.Errorf("generating IV: %w", err)
	}

	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[aes.BlockSize:], padded)

	return out, true, nil
}

// Decrypt reverses TryEncrypt.
func (c *Context) Decrypt(payload []byte) ([]byte, error) {
	if !c.Ready() {
		return nil, ErrNotReady
	}

	if len(payload) < 2*aes.BlockSize || len(payload)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidBlockSize, len(payload))
	}

	block, err := aes.NewCipher(c.key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	iv := payload[:aes.BlockSize]
	ciphertext := payload[aes.BlockSize:]

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("removing padding: %w", err)
	}

	return unpadded, nil
}

// Destroy wipes the key. The context is not ready afterwards.
func (c *Context) Destroy() {
	if c != nil && c.key != nil {
		c.key.Destroy()
	}
}

//go:build !noencryption

package encryption

// Available reports whether the encryption capability is compiled in.
const Available = true

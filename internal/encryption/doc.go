// Package encryption encrypts asset payloads with AES-128 in CBC mode and PKCS#7 padding.
//
// Every payload carries its own random IV as its first block, so identical files
// produce unrelated ciphertexts. Keys are raw 16-byte secrets held in locked memory
// for the lifetime of a Context.
//
// Building with the noencryption tag compiles the capability out: contexts are never
// ready and payloads are always stored verbatim.
package encryption

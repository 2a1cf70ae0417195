// Package archive writes asset trees into tar bundles and reads them back.
//
// Entries are named by their slash-separated path relative to the asset root and carry
// the source file's metadata. When the configured Encrypter is ready, each payload is
// replaced by its ciphertext and the header size declares the ciphertext length.
// Bundles are plain tar streams: there is no index and no compression.
package archive

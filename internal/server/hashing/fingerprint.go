package hashing

import (
	"crypto/hmac"
	"crypto/sha256"
)

// Fingerprinter produces deterministic keyed digests of plaintext API keys.
//
// Unlike the salted Argon2id digests used for verification, a fingerprint of
// a given key is always the same, which makes exact-match collision lookup
// possible during issuance. The fingerprint column is never used to verify a
// presented key; that always goes through the slow hash.
type Fingerprinter struct {
	key []byte
}

// NewFingerprinter returns a Fingerprinter using the given server-held key.
func NewFingerprinter(key []byte) *Fingerprinter {
	return &Fingerprinter{key: key}
}

// Fingerprint returns the HMAC-SHA256 digest of plaintext under the server key.
func (f *Fingerprinter) Fingerprint(plaintext string) []byte {
	mac := hmac.New(sha256.New, f.key)
	mac.Write([]byte(plaintext))
	return mac.Sum(nil)
}

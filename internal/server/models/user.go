package models

import "time"

// User is a registered account. PasswordHash and APIKeyHash are
// self-describing Argon2id digests; the plaintext API key is returned to the
// owner exactly once at issuance and never stored.
//
// APIKeyFingerprint is a deterministic keyed digest of the plaintext key,
// kept in a unique column so key issuance can test candidates for collision
// without storing plaintext.
type User struct {
	ID                string
	Username          string
	Email             string
	PasswordHash      string
	APIKeyHash        string
	APIKeyFingerprint []byte
	CreatedAt         time.Time
}

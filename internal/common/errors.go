// Package common defines shared sentinel errors used across the layers of
// the credential service. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrUsernameTaken = errors.New("username exists choose another one")
	ErrEmailTaken    = errors.New("email exists choose another one")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Credential errors.
	ErrHashingFailed        = errors.New("unable to hash credential")
	ErrAuthenticationFailed = errors.New("invalid email or password")
	ErrKeyRotationFailed    = errors.New("unable to rotate api key")

	// Startup configuration errors.
	ErrNoDatabaseDSN = errors.New("there is no database url in the environment")
)

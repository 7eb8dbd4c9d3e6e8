// Package users implements the user record store. The core depends only on
// the Repository interface; Postgres and SQLite implementations are provided.
package users

import (
	"context"

	"github.com/HakanVardarr/file-server/internal/server/models"
)

// Repository is the narrow persistence contract the credential workflows
// require. Uniqueness of username, email and key fingerprint is enforced by
// the storage layer itself: Create and UpdateAPIKey are atomic, so callers
// never have to check-then-act across two store calls.
type Repository interface {
	// Create inserts a new user record. A uniqueness violation is reported
	// as common.ErrUsernameTaken or common.ErrEmailTaken depending on the
	// conflicting field.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail returns the user with the given email, or
	// common.ErrorNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByAPIKeyFingerprint returns the user owning the key with the given
	// fingerprint, or common.ErrorNotFound. Used as the collision predicate
	// during key issuance.
	GetByAPIKeyFingerprint(ctx context.Context, fp []byte) (*models.User, error)

	// UpdateAPIKey atomically overwrites the stored key hash and fingerprint
	// of one user (key rotation).
	UpdateAPIKey(ctx context.Context, id string, keyHash string, fp []byte) error
}

// Package services contains server-side business logic. This file implements
// UserService, which handles registration and login, including API key
// issuance and rotation.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/HakanVardarr/file-server/internal/common"
	"github.com/HakanVardarr/file-server/internal/dbx"
	"github.com/HakanVardarr/file-server/internal/logging"
	"github.com/HakanVardarr/file-server/internal/server/config"
	"github.com/HakanVardarr/file-server/internal/server/hashing"
	"github.com/HakanVardarr/file-server/internal/server/keygen"
	"github.com/HakanVardarr/file-server/internal/server/models"
	"github.com/HakanVardarr/file-server/internal/server/repositories/repomanager"
	usersrepo "github.com/HakanVardarr/file-server/internal/server/repositories/users"
	"github.com/HakanVardarr/file-server/internal/shared"
)

// UserService provides credential-related operations:
// - Register: create a user and issue the first API key
// - Login: verify credentials and rotate the API key
//
// The plaintext API key is returned to the caller exactly once per issuance
// and never persisted.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *hashing.Argon2Hasher
	fingerprint *hashing.Fingerprinter
	hashSem     chan struct{}
	logger      logging.Logger
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, l logging.Logger) (*UserService, error) {
	hasher, err := hashing.NewArgon2Hasher(hashing.Params{
		Time:    cfg.HashTime,
		Memory:  cfg.HashMemoryKiB,
		Threads: cfg.HashParallelism,
		KeyLen:  hashing.DefaultKeyLen,
		SaltLen: hashing.DefaultSaltLen,
	})
	if err != nil {
		return nil, err
	}

	workers := cfg.HashWorkers
	if workers < 1 {
		workers = 1
	}

	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		fingerprint: hashing.NewFingerprinter([]byte(cfg.FingerprintKey)),
		hashSem:     make(chan struct{}, workers),
		logger:      l.With("module", "user_service"),
	}, nil
}

// Register hashes the password, issues a collision-checked API key, hashes
// it, and persists the new user record. The returned string is the plaintext
// key, exposed here for the only time.
//
// Conflicting username/email surface as common.ErrUsernameTaken and
// common.ErrEmailTaken; hashing failures abort before any store write.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, string, error) {

	pw := []byte(password)
	defer shared.WipeByteArray(pw)

	passwordHash, err := s.hashSecret(pw)
	if err != nil {
		return nil, "", err
	}

	repo := s.repomanager.Users(s.db)

	key, keyHash, fp, err := s.issueKey(ctx, repo)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Username:          username,
		Email:             email,
		PasswordHash:      passwordHash,
		APIKeyHash:        keyHash,
		APIKeyFingerprint: fp,
	}

	user, err = repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrUsernameTaken) || errors.Is(err, common.ErrEmailTaken) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "username", user.Username)
	return user, key, nil
}

// Login verifies the password for the account with the given email and, on
// success, rotates the stored API key and returns the new plaintext key.
//
// An unknown email and a wrong password both yield
// common.ErrAuthenticationFailed, so callers cannot probe which emails are
// registered. A rotation that fails to persist yields
// common.ErrKeyRotationFailed and leaves the previous key valid.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrAuthenticationFailed
		}
		return "", common.ErrorInternal
	}

	pw := []byte(password)
	defer shared.WipeByteArray(pw)

	if !s.verifySecret(pw, user.PasswordHash) {
		return "", common.ErrAuthenticationFailed
	}

	var key string
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.Users(tx)

		k, keyHash, fp, err := s.issueKey(ctx, repoTx)
		if err != nil {
			return err
		}

		if err := repoTx.UpdateAPIKey(ctx, user.ID, keyHash, fp); err != nil {
			return err
		}

		key = k
		return nil
	})
	if err != nil {
		s.logger.Error(ctx, "api key rotation failed", "error", err.Error())
		return "", fmt.Errorf("%w: %v", common.ErrKeyRotationFailed, err)
	}

	return key, nil
}

// hashSecret runs the memory-hard derivation under the worker semaphore so
// concurrent registrations cannot pin every core at full argon2 memory cost.
func (s *UserService) hashSecret(secret []byte) (string, error) {
	s.hashSem <- struct{}{}
	defer func() { <-s.hashSem }()
	return s.hasher.Hash(secret)
}

func (s *UserService) verifySecret(secret []byte, digest string) bool {
	s.hashSem <- struct{}{}
	defer func() { <-s.hashSem }()
	return s.hasher.Verify(secret, digest)
}

// issueKey draws a fresh API key whose fingerprint is unseen in the store
// and returns the plaintext together with its hash and fingerprint.
func (s *UserService) issueKey(ctx context.Context, repo usersrepo.Repository) (string, string, []byte, error) {
	key, err := keygen.Issue(ctx, func(ctx context.Context, candidate string) (bool, error) {
		return s.keyExists(ctx, repo, candidate)
	})
	if err != nil {
		return "", "", nil, err
	}

	keyHash, err := s.hashSecret([]byte(key))
	if err != nil {
		return "", "", nil, err
	}

	return key, keyHash, s.fingerprint.Fingerprint(key), nil
}

func (s *UserService) keyExists(ctx context.Context, repo usersrepo.Repository, candidate string) (bool, error) {
	_, err := repo.GetByAPIKeyFingerprint(ctx, s.fingerprint.Fingerprint(candidate))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}

	s.logger.Warn(ctx, "api key candidate collided, redrawing")
	return true, nil
}

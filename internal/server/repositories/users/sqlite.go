package users

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/HakanVardarr/file-server/internal/common"
	"github.com/HakanVardarr/file-server/internal/dbx"
	"github.com/HakanVardarr/file-server/internal/server/models"
	"github.com/google/uuid"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query :=
		`INSERT INTO users (id, username, email, password_hash, api_key_hash, api_key_fingerprint, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 `

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Email,
		user.PasswordHash, user.APIKeyHash,
		hex.EncodeToString(user.APIKeyFingerprint), user.CreatedAt)

	if err != nil {
		if field, ok := sqliteConflictColumn(err); ok {
			return nil, conflictField(field)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *SQLiteRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, username, email, password_hash, api_key_hash, api_key_fingerprint FROM users
		 WHERE email = ?
		 `

	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *SQLiteRepository) GetByAPIKeyFingerprint(ctx context.Context, fp []byte) (*models.User, error) {
	query :=
		`SELECT id, username, email, password_hash, api_key_hash, api_key_fingerprint FROM users
		 WHERE api_key_fingerprint = ?
		 `

	return scanUser(r.db.QueryRowContext(ctx, query, hex.EncodeToString(fp)))
}

func (r *SQLiteRepository) UpdateAPIKey(ctx context.Context, id string, keyHash string, fp []byte) error {
	query :=
		`UPDATE users SET api_key_hash = ?, api_key_fingerprint = ?
		 WHERE id = ?
		 `

	res, err := r.db.ExecContext(ctx, query, keyHash, hex.EncodeToString(fp), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

// sqliteConflictColumn extracts the column from a SQLite unique violation,
// reported as "UNIQUE constraint failed: users.<column>".
func sqliteConflictColumn(err error) (string, bool) {
	msg := err.Error()

	const marker = "UNIQUE constraint failed: users."
	idx := strings.Index(msg, marker)
	if idx < 0 {
		return "", false
	}

	column := msg[idx+len(marker):]
	if end := strings.IndexAny(column, ", )"); end >= 0 {
		column = column[:end]
	}
	return column, true
}

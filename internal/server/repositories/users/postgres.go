package users

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/HakanVardarr/file-server/internal/common"
	"github.com/HakanVardarr/file-server/internal/dbx"
	"github.com/HakanVardarr/file-server/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint errors.
const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query :=
		`INSERT INTO users (id, username, email, password_hash, api_key_hash, api_key_fingerprint, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 `

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Email,
		user.PasswordHash, user.APIKeyHash,
		hex.EncodeToString(user.APIKeyFingerprint), user.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, conflictField(pgErr.ConstraintName)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, username, email, password_hash, api_key_hash, api_key_fingerprint FROM users
		 WHERE email = $1
		 `

	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByAPIKeyFingerprint(ctx context.Context, fp []byte) (*models.User, error) {
	query :=
		`SELECT id, username, email, password_hash, api_key_hash, api_key_fingerprint FROM users
		 WHERE api_key_fingerprint = $1
		 `

	return scanUser(r.db.QueryRowContext(ctx, query, hex.EncodeToString(fp)))
}

func (r *PostgresRepository) UpdateAPIKey(ctx context.Context, id string, keyHash string, fp []byte) error {
	query :=
		`UPDATE users SET api_key_hash = $1, api_key_fingerprint = $2
		 WHERE id = $3
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

// conflictField maps a violated unique constraint to the field-specific
// sentinel. Constraint names come from the users table migration.
func conflictField(constraint string) error {
	switch {
	case strings.Contains(constraint, "username"):
		return common.ErrUsernameTaken
	case strings.Contains(constraint, "email"):
		return common.ErrEmailTaken
	default:
		return fmt.Errorf("%w: unique violation on %q", common.ErrorInternal, constraint)
	}
}

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var fp string

	err := row.Scan(&user.ID, &user.Username, &user.Email,
		&user.PasswordHash, &user.APIKeyHash, &fp)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.APIKeyFingerprint, err = hex.DecodeString(fp)
	if err != nil {
		return nil, fmt.Errorf("db error: corrupt fingerprint: %w", err)
	}

	return user, nil
}

package users

import (
	"context"
	"encoding/hex"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/HakanVardarr/file-server/internal/common"
	"github.com/HakanVardarr/file-server/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "username", "email", "password_hash", "api_key_hash", "api_key_fingerprint"}

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func sampleUser() *models.User {
	return &models.User{
		Username:          "alice",
		Email:             "a@x.com",
		PasswordHash:      "$argon2id$v=19$m=16,t=1,p=1$c2FsdHNhbHQ$aGFzaA",
		APIKeyHash:        "$argon2id$v=19$m=16,t=1,p=1$c2FsdHNhbHQ$a2V5aGFzaA",
		APIKeyFingerprint: []byte{0xde, 0xad, 0xbe, 0xef},
	}
}

func TestPostgresCreate_Success(t *testing.T) {
	repo, mock := newMockRepo(t)
	u := sampleUser()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(sqlmock.AnyArg(), u.Username, u.Email, u.PasswordHash, u.APIKeyHash,
			hex.EncodeToString(u.APIKeyFingerprint), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := repo.Create(context.Background(), u)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID, "repository must assign an id")
	assert.False(t, created.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreate_ConflictMapping(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		want       error
	}{
		{"username taken", "users_username_key", common.ErrUsernameTaken},
		{"email taken", "users_email_key", common.ErrEmailTaken},
		{"unknown constraint", "users_mystery_key", common.ErrorInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)

			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
				WillReturnError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: tt.constraint})

			_, err := repo.Create(context.Background(), sampleUser())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPostgresGetByEmail(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows(userColumns).
		AddRow("u1", "alice", "a@x.com", "ph", "kh", "deadbeef")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, username, email")).
		WithArgs("a@x.com").
		WillReturnRows(rows)

	u, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, u.APIKeyFingerprint)
}

func TestPostgresGetByEmail_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, username, email")).
		WithArgs("missing@x.com").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := repo.GetByEmail(context.Background(), "missing@x.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPostgresGetByAPIKeyFingerprint(t *testing.T) {
	repo, mock := newMockRepo(t)
	fp := []byte{0x01, 0x02}

	mock.ExpectQuery(regexp.QuoteMeta("WHERE api_key_fingerprint")).
		WithArgs(hex.EncodeToString(fp)).
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := repo.GetByAPIKeyFingerprint(context.Background(), fp)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPostgresUpdateAPIKey(t *testing.T) {
	repo, mock := newMockRepo(t)
	fp := []byte{0x0a}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET api_key_hash")).
		WithArgs("new-hash", hex.EncodeToString(fp), "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateAPIKey(context.Background(), "u1", "new-hash", fp)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateAPIKey_MissingUser(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET api_key_hash")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateAPIKey(context.Background(), "ghost", "h", []byte{0x01})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

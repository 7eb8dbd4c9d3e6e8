package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/HakanVardarr/file-server/internal/common"
	"github.com/HakanVardarr/file-server/internal/dbx"
	"github.com/HakanVardarr/file-server/internal/server/migrations"
	"github.com/HakanVardarr/file-server/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

type dialect string

const (
	dialectPostgres dialect = "pgx"
	dialectSQLite   dialect = "sqlite3"
)

// SQLRepositoryManager serves Postgres or SQLite repositories depending on
// the DSN the pool was opened with.
type SQLRepositoryManager struct {
	dialect dialect
}

// Open connects to the database named by dsn and returns the pool together
// with a manager for its dialect. DSNs with a postgres scheme use pgx;
// anything else is treated as a SQLite path.
func Open(dsn string) (*sql.DB, RepositoryManager, error) {
	if dsn == "" {
		return nil, nil, common.ErrNoDatabaseDSN
	}

	d := dialectSQLite
	driver := "sqlite"
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		d = dialectPostgres
		driver = "pgx"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}

	return db, &SQLRepositoryManager{dialect: d}, nil
}

func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	if m.dialect == dialectPostgres {
		return users.NewPostgresRepository(db)
	}
	return users.NewSQLiteRepository(db)
}

func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(string(m.dialect)); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return err
	}

	return nil
}

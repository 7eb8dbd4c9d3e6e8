// Package repomanager wires repositories to a concrete storage backend and
// owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/HakanVardarr/file-server/internal/dbx"
	"github.com/HakanVardarr/file-server/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a DB handle. Passing a
// dbx.DBTX lets the same repository run against the pool or inside a
// transaction.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}

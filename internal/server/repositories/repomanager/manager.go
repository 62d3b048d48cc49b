package repomanager

import (
	"context"
	"database/sql"

	"github.com/runjourney/api/internal/dbx"
	"github.com/runjourney/api/internal/server/repositories/cities"
	"github.com/runjourney/api/internal/server/repositories/runs"
	"github.com/runjourney/api/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to either the pooled DB
// handle or an open transaction, so services can reuse the same repository
// code inside and outside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Cities(db dbx.DBTX) cities.Repository
	Runs(db dbx.DBTX) runs.Repository
}

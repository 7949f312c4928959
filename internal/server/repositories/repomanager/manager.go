package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/lifestyle/internal/dbx"
	"github.com/dmitrijs2005/lifestyle/internal/server/repositories/entries"
	"github.com/dmitrijs2005/lifestyle/internal/server/repositories/events"
	"github.com/dmitrijs2005/lifestyle/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/lifestyle/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	SchemaVersion(context.Context, *sql.DB) (int64, error)
	Users(db dbx.DBTX) users.Repository
	Entries(db dbx.DBTX) entries.Repository
	Events(db dbx.DBTX) events.Repository
	RevokedTokens(db dbx.DBTX) revokedtokens.Repository
}

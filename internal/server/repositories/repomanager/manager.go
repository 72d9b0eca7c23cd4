package repomanager

import (
	"context"
	"database/sql"

	"github.com/hmmelton/bytechef/internal/dbx"
	"github.com/hmmelton/bytechef/internal/server/repositories/recipes"
	"github.com/hmmelton/bytechef/internal/server/repositories/refreshtokens"
	"github.com/hmmelton/bytechef/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Recipes(db dbx.DBTX) recipes.Repository
}

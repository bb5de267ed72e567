package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/keycustody/internal/dbx"
	"github.com/dmitrijs2005/keycustody/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/keycustody/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/keycustody/internal/server/repositories/vaultkeys"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	VaultKeys(db dbx.DBTX) vaultkeys.Repository
}

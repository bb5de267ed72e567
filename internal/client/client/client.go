package client

import (
	"context"

	"github.com/dmitrijs2005/keycustody/internal/client/models"
)

type Client interface {
	Close() error
	Register(ctx context.Context, username string, password []byte) (string, error)
	Login(ctx context.Context, username string, password []byte) error
	Logout(ctx context.Context) error
	Identity(ctx context.Context) (*models.Identity, error)
	PublicKey(ctx context.Context, username string) (*models.RecipientKey, error)
	GrantVaultKey(ctx context.Context, vaultID, granteeUserName string, wrapped []byte) error
	ListGrants(ctx context.Context) ([]*models.VaultKeyGrant, error)
	Ping(ctx context.Context) error
}

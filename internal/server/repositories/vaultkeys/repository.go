// Package vaultkeys stores vault keys that one account has wrapped for
// another. Rows are opaque to the server.
package vaultkeys

import (
	"context"

	"github.com/dmitrijs2005/keycustody/internal/server/models"
)

type Repository interface {
	// Upsert stores the grant. An earlier grant of the same vault to the
	// same grantee is replaced only when it came from the same granter;
	// otherwise common.ErrForbidden is returned and the row is unchanged.
	Upsert(ctx context.Context, grant *models.VaultKeyGrant) error
	// Exists reports whether any account holds a grant for vaultID.
	Exists(ctx context.Context, vaultID string) (bool, error)
	// Holds reports whether accountID holds a grant for vaultID.
	Holds(ctx context.Context, vaultID, accountID string) (bool, error)
	// ListForGrantee returns every grant addressed to accountID, oldest first.
	ListForGrantee(ctx context.Context, accountID string) ([]*models.VaultKeyGrant, error)
}

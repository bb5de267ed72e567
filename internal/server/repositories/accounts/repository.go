// Package accounts declares the storage contract for registered accounts.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/keycustody/internal/server/models"
)

type Repository interface {
	// Create inserts the whole account row in one statement and fills in ID
	// and CreatedAt. A taken username yields common.ErrUsernameExists.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	// GetByUserName returns common.ErrorNotFound when no row matches.
	GetByUserName(ctx context.Context, userName string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
}

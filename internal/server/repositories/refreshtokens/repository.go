// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/keycustody/internal/server/models"
)

// Repository defines how refresh tokens are issued, redeemed and revoked.
type Repository interface {
	// Create stores a new refresh token for accountID with an expiry of now+validity.
	Create(ctx context.Context, accountID string, token string, validity time.Duration) error

	// Consume deletes the token and returns the row it held, so one token
	// can be redeemed at most once even under concurrent requests.
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes a refresh token by its token string. Deleting a non-existent
	// token should not be considered an error.
	Delete(ctx context.Context, token string) error
}

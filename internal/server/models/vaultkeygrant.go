package models

import "time"

// VaultKeyGrant is a vault key wrapped for one grantee's public key. The
// server only relays it and cannot open it.
type VaultKeyGrant struct {
	VaultID          string
	GranteeAccountID string
	GranterAccountID string
	WrappedVaultKey  []byte
	CreatedAt        time.Time
}

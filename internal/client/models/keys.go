// Package models holds the client-side view of key material fetched from
// the custody server.
package models

import (
	"time"

	"github.com/dmitrijs2005/keycustody/internal/cryptox"
)

// Identity is the caller's own account record. EncryptedPrivateKey opens
// only with a key derived from the account password over Salt.
type Identity struct {
	AccountID           string
	UserName            string
	Salt                []byte
	KDFVersion          cryptox.KDFVersion
	KeyAlgorithm        cryptox.KeyAlgorithm
	PublicKey           []byte
	EncryptedPrivateKey []byte
}

// RecipientKey is another account's public key, used to wrap vault keys
// for it.
type RecipientKey struct {
	AccountID    string
	UserName     string
	KeyAlgorithm cryptox.KeyAlgorithm
	PublicKey    []byte
}

// VaultKeyGrant is a vault key wrapped for the caller.
type VaultKeyGrant struct {
	VaultID          string
	GranterAccountID string
	WrappedVaultKey  []byte
	CreatedAt        time.Time
}

// Vault is a grant the caller has opened. Fingerprint identifies the
// vault key without revealing it.
type Vault struct {
	VaultID          string
	GranterAccountID string
	Fingerprint      string
	CreatedAt        time.Time
}

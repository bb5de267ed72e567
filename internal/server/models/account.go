// Package models holds the rows the key-custody server persists.
package models

import (
	"time"

	"github.com/dmitrijs2005/keycustody/internal/cryptox"
)

// Account is one registered user. Salt, KDFVersion, KeyAlgorithm and
// PublicKey never change after registration; EncryptedPrivateKey is only
// ever replaced by a password change.
type Account struct {
	ID                  string
	UserName            string
	Salt                []byte
	KDFVersion          cryptox.KDFVersion
	KeyAlgorithm        cryptox.KeyAlgorithm
	PublicKey           []byte
	EncryptedPrivateKey []byte
	CreatedAt           time.Time
}

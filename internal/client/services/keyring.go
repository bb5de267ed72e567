// Package services contains application services for the keycustody CLI.
// KeyringService owns the unlocked identity of the signed-in user and does
// every vault key operation that must happen on the client: creating vault
// keys, opening grants and re-wrapping keys for other accounts.
package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/awnumar/memguard"
	"github.com/dmitrijs2005/keycustody/internal/client/client"
	"github.com/dmitrijs2005/keycustody/internal/client/models"
	"github.com/dmitrijs2005/keycustody/internal/common"
	"github.com/dmitrijs2005/keycustody/internal/cryptox"
	"github.com/google/uuid"
)

var (
	ErrNotLoggedIn      = errors.New("not logged in")
	ErrVaultNotFound    = errors.New("vault not found")
	ErrIdentityMismatch = errors.New("private key does not match public key")
)

// fingerprintSize is how many hash bytes identify a vault key on screen.
const fingerprintSize = 8

// closeLogoutTimeout bounds the revocation Close sends before hanging up.
const closeLogoutTimeout = 3 * time.Second

// KeyringService defines the vault key operations of the CLI.
//
// Login unlocks the private key locally; every other method except
// Register, Ping and Close requires it.
type KeyringService interface {
	Register(ctx context.Context, username string, password []byte) (string, error)
	Login(ctx context.Context, username string, password []byte) error
	Logout(ctx context.Context) error
	UserName() string
	CreateVault(ctx context.Context) (string, error)
	ShareVault(ctx context.Context, vaultID, granteeUserName string) error
	Vaults(ctx context.Context) ([]*models.Vault, error)
	Ping(ctx context.Context) error
	Close() error
}

type keyringService struct {
	client client.Client

	mu       sync.Mutex
	identity *models.Identity
	private  *memguard.Enclave
}

// NewKeyringService constructs a KeyringService bound to the given API client.
func NewKeyringService(c client.Client) KeyringService {
	return &keyringService{client: c}
}

func (k *keyringService) Register(ctx context.Context, username string, password []byte) (string, error) {
	return k.client.Register(ctx, username, password)
}

// Login authenticates, downloads the caller's identity and opens the
// private key with a key derived from password. The decrypted key is kept
// in a memguard enclave until Logout.
func (k *keyringService) Login(ctx context.Context, username string, password []byte) error {
	if err := k.client.Login(ctx, username, password); err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	identity, err := k.client.Identity(ctx)
	if err != nil {
		_ = k.client.Logout(ctx)
		return fmt.Errorf("identity error: %w", err)
	}

	enclave, err := unlock(identity, password)
	if err != nil {
		_ = k.client.Logout(ctx)
		return err
	}

	k.mu.Lock()
	k.identity = identity
	k.private = enclave
	k.mu.Unlock()
	return nil
}

func unlock(identity *models.Identity, password []byte) (*memguard.Enclave, error) {
	key, err := cryptox.Derive(password, identity.Salt, identity.KDFVersion)
	if err != nil {
		return nil, fmt.Errorf("derive error: %w", err)
	}
	defer common.WipeByteArray(key)

	priv, err := cryptox.Unwrap(identity.EncryptedPrivateKey, key, []byte(identity.UserName))
	if err != nil {
		return nil, fmt.Errorf("unlock private key: %w", err)
	}

	pub, err := cryptox.PublicKeyFromPrivate(identity.KeyAlgorithm, priv)
	if err != nil || !bytes.Equal(pub, identity.PublicKey) {
		common.WipeByteArray(priv)
		return nil, ErrIdentityMismatch
	}

	// NewEnclave wipes priv
	return memguard.NewEnclave(priv), nil
}

// Logout drops the unlocked identity and revokes the session on the
// server. The local state is cleared even when the server is unreachable.
func (k *keyringService) Logout(ctx context.Context) error {
	k.mu.Lock()
	k.identity = nil
	k.private = nil
	k.mu.Unlock()
	return k.client.Logout(ctx)
}

// UserName is the signed-in account name, or "" when logged out.
func (k *keyringService) UserName() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.identity == nil {
		return ""
	}
	return k.identity.UserName
}

func (k *keyringService) session() (*models.Identity, *memguard.Enclave, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.identity == nil || k.private == nil {
		return nil, nil, ErrNotLoggedIn
	}
	return k.identity, k.private, nil
}

// openGrant unwraps one grant with the enclave's private key. The caller
// must wipe the result.
func openGrant(identity *models.Identity, private *memguard.Enclave, wrapped []byte) ([]byte, error) {
	buf, err := private.Open()
	if err != nil {
		return nil, err
	}
	defer buf.Destroy()

	return cryptox.UnwrapVaultKey(wrapped, identity.KeyAlgorithm, buf.Bytes())
}

// CreateVault makes a fresh vault key and grants it to the caller, who
// becomes the first holder. The new vault id is returned.
func (k *keyringService) CreateVault(ctx context.Context) (string, error) {
	identity, _, err := k.session()
	if err != nil {
		return "", err
	}

	vaultKey, err := cryptox.NewVaultKey()
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(vaultKey)

	wrapped, err := cryptox.WrapVaultKeyFor(vaultKey, identity.KeyAlgorithm, identity.PublicKey)
	if err != nil {
		return "", err
	}

	vaultID := uuid.NewString()
	if err := k.client.GrantVaultKey(ctx, vaultID, identity.UserName, wrapped); err != nil {
		return "", err
	}
	return vaultID, nil
}

// ShareVault re-wraps a vault key the caller holds for another account.
func (k *keyringService) ShareVault(ctx context.Context, vaultID, granteeUserName string) error {
	identity, private, err := k.session()
	if err != nil {
		return err
	}

	grants, err := k.client.ListGrants(ctx)
	if err != nil {
		return err
	}

	var own *models.VaultKeyGrant
	for _, g := range grants {
		if g.VaultID == vaultID {
			own = g
			break
		}
	}
	if own == nil {
		return ErrVaultNotFound
	}

	recipient, err := k.client.PublicKey(ctx, granteeUserName)
	if err != nil {
		return err
	}
	if err := cryptox.ValidatePublicKey(recipient.KeyAlgorithm, recipient.PublicKey); err != nil {
		return fmt.Errorf("recipient %s: %w", granteeUserName, err)
	}

	vaultKey, err := openGrant(identity, private, own.WrappedVaultKey)
	if err != nil {
		return fmt.Errorf("open grant: %w", err)
	}
	defer common.WipeByteArray(vaultKey)

	wrapped, err := cryptox.WrapVaultKeyFor(vaultKey, recipient.KeyAlgorithm, recipient.PublicKey)
	if err != nil {
		return err
	}

	return k.client.GrantVaultKey(ctx, vaultID, granteeUserName, wrapped)
}

// Vaults lists every grant addressed to the caller. Grants that do not
// open leave Fingerprint empty.
func (k *keyringService) Vaults(ctx context.Context) ([]*models.Vault, error) {
	identity, private, err := k.session()
	if err != nil {
		return nil, err
	}

	grants, err := k.client.ListGrants(ctx)
	if err != nil {
		return nil, err
	}

	vaults := make([]*models.Vault, 0, len(grants))
	for _, g := range grants {
		v := &models.Vault{VaultID: g.VaultID, GranterAccountID: g.GranterAccountID, CreatedAt: g.CreatedAt}

		if vaultKey, err := openGrant(identity, private, g.WrappedVaultKey); err == nil {
			v.Fingerprint = fingerprint(vaultKey)
			common.WipeByteArray(vaultKey)
		}
		vaults = append(vaults, v)
	}
	return vaults, nil
}

func fingerprint(vaultKey []byte) string {
	sum := sha256.Sum256(vaultKey)
	return hex.EncodeToString(sum[:fingerprintSize])
}

func (k *keyringService) Ping(ctx context.Context) error {
	return k.client.Ping(ctx)
}

func (k *keyringService) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeLogoutTimeout)
	defer cancel()

	_ = k.Logout(ctx)
	return k.client.Close()
}

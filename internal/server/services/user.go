// Package services contains server-side business logic. This file implements
// UserService: registration, password login by private-key unwrap, and
// issuing/refreshing access tokens plus server-stored refresh tokens.
package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/keycustody/internal/common"
	"github.com/dmitrijs2005/keycustody/internal/cryptox"
	"github.com/dmitrijs2005/keycustody/internal/dbx"
	"github.com/dmitrijs2005/keycustody/internal/logging"
	"github.com/dmitrijs2005/keycustody/internal/server/config"
	"github.com/dmitrijs2005/keycustody/internal/server/models"
	"github.com/dmitrijs2005/keycustody/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/keycustody/internal/server/workerpool"
)

// dummyUserName is the associated data of the decoy blob. It can never match
// a real account because registration rejects whitespace-only names and this
// one is never looked up.
const dummyUserName = "\x00keycustody-decoy"

// TokenIssuer mints access tokens for an account id.
type TokenIssuer interface {
	Issue(accountID string) (string, error)
}

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// PublicKey is the shareable half of an account's identity keypair.
type PublicKey struct {
	AccountID string
	UserName  string
	Algorithm cryptox.KeyAlgorithm
	Key       []byte
}

// UserService provides the credential operations:
// - Register: create an account with a fresh salt and wrapped identity keypair
// - Login: prove the password by unwrapping the private key, then mint tokens
// - RefreshToken: rotate refresh tokens and mint new access tokens
// - Logout: revoke a refresh token
// - GetPublicKey: look up another account's public key
// - GetIdentity: return the caller's own wrapped key material
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	issuer                       TokenIssuer
	pool                         *workerpool.Pool
	keygen                       *cryptox.KeypairGenerator
	kdfVersion                   cryptox.KDFVersion
	refreshTokenValidityDuration time.Duration
	logger                       logging.Logger
	now                          func() time.Time
	derive                       func(password, salt []byte, v cryptox.KDFVersion) ([]byte, error)

	// decoy material for logins of unknown users, fixed for the process
	dummySalt []byte
	dummyBlob []byte
}

// NewUserService constructs a UserService using repositories and server config.
// It generates one decoy keypair up front so unknown-user logins cost the
// same derive and unwrap as real ones.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, issuer TokenIssuer, pool *workerpool.Pool, cfg *config.Config, logger logging.Logger) (*UserService, error) {
	alg, err := cryptox.ParseKeyAlgorithm(cfg.KeyAlgorithm)
	if err != nil {
		return nil, err
	}
	keygen, err := cryptox.NewKeypairGenerator(alg, cfg.RSAKeyBits)
	if err != nil {
		return nil, err
	}
	kdfVersion := cryptox.KDFVersion(cfg.KDFVersion)
	if _, err := cryptox.LookupKDF(kdfVersion); err != nil {
		return nil, err
	}

	s := &UserService{
		db:                           db,
		repomanager:                  m,
		issuer:                       issuer,
		pool:                         pool,
		keygen:                       keygen,
		kdfVersion:                   kdfVersion,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		logger:                       logger,
		now:                          time.Now,
		derive:                       cryptox.Derive,
	}

	if err := s.initDecoy(); err != nil {
		return nil, fmt.Errorf("decoy credentials: %w", err)
	}
	return s, nil
}

func (s *UserService) initDecoy() error {
	password := common.GenerateRandByteArray(32)
	key, salt, err := cryptox.DeriveWithNewSalt(password, s.kdfVersion)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(key)

	kp, err := s.keygen.Generate()
	if err != nil {
		return err
	}
	defer kp.Wipe()

	blob, err := cryptox.Wrap(kp.PrivateKey, key, []byte(dummyUserName))
	if err != nil {
		return err
	}

	s.dummySalt = salt
	s.dummyBlob = blob
	return nil
}

// Register creates a new account. It returns common.ErrMissingCredentials,
// common.ErrUsernameExists, common.ErrStorageFailure or the context error
// when the caller gave up before the row was written.
func (s *UserService) Register(ctx context.Context, userName, password string) (*models.Account, error) {
	if strings.TrimSpace(userName) == "" || strings.TrimSpace(password) == "" {
		return nil, common.ErrMissingCredentials
	}

	_, err := s.repomanager.Accounts(s.db).GetByUserName(ctx, userName)
	switch {
	case err == nil:
		return nil, common.ErrUsernameExists
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case !errors.Is(err, common.ErrorNotFound):
		s.logger.Error(ctx, "account lookup failed", "op", "register", "error", err)
		return nil, common.ErrStorageFailure
	}

	account, err := workerpool.Run(ctx, s.pool, func() (*models.Account, error) {
		return s.newAccount(userName, password)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Error(ctx, "identity generation failed", "op", "register", "error", err)
		return nil, common.ErrStorageFailure
	}

	// last point where cancellation leaves nothing behind
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var createErr error
		account, createErr = s.repomanager.Accounts(tx).Create(ctx, account)
		return createErr
	})
	if err != nil {
		if errors.Is(err, common.ErrUsernameExists) {
			return nil, common.ErrUsernameExists
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Error(ctx, "account insert failed", "op", "register", "error", err)
		return nil, common.ErrStorageFailure
	}

	s.logger.Info(ctx, "account registered", "account_id", account.ID, "key_algorithm", string(account.KeyAlgorithm))
	return account, nil
}

// newAccount runs the CPU-heavy part of registration: derive, generate, wrap.
func (s *UserService) newAccount(userName, password string) (*models.Account, error) {
	pw := []byte(password)
	defer common.WipeByteArray(pw)

	key, salt, err := cryptox.DeriveWithNewSalt(pw, s.kdfVersion)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	kp, err := s.keygen.Generate()
	if err != nil {
		return nil, err
	}
	defer kp.Wipe()

	blob, err := cryptox.Wrap(kp.PrivateKey, key, []byte(userName))
	if err != nil {
		return nil, err
	}

	return &models.Account{
		UserName:            userName,
		Salt:                salt,
		KDFVersion:          s.kdfVersion,
		KeyAlgorithm:        kp.Algorithm,
		PublicKey:           kp.PublicKey,
		EncryptedPrivateKey: blob,
	}, nil
}

// Login verifies the password by unwrapping the stored private key and, on
// success, returns a new TokenPair. Every credential problem, including an
// unknown user name, is reported as common.ErrAuthenticationFailed after the
// same derive and unwrap work.
func (s *UserService) Login(ctx context.Context, userName, password string) (*TokenPair, error) {
	var account *models.Account

	if userName != "" && password != "" {
		found, err := s.repomanager.Accounts(s.db).GetByUserName(ctx, userName)
		switch {
		case err == nil:
			account = found
		case ctx.Err() != nil:
			return nil, common.ErrAuthenticationFailed
		case !errors.Is(err, common.ErrorNotFound):
			s.logger.Error(ctx, "account lookup failed", "op", "login", "error", err)
			return nil, common.ErrStorageFailure
		}
	}

	ok, err := workerpool.Run(ctx, s.pool, func() (bool, error) {
		return s.proveKnowledge(account, password), nil
	})
	if err != nil || !ok || account == nil {
		s.logger.Info(ctx, "login rejected")
		return nil, common.ErrAuthenticationFailed
	}

	pair, err := s.generateTokenPair(ctx, account.ID, s.db)
	if err != nil {
		s.logger.Error(ctx, "token issue failed", "op", "login", "error", err)
		return nil, common.ErrStorageFailure
	}

	s.logger.Info(ctx, "login succeeded", "account_id", account.ID)
	return pair, nil
}

// proveKnowledge derives the wrapping key and tries to open the private key.
// A nil account runs against the decoy and always fails.
func (s *UserService) proveKnowledge(account *models.Account, password string) bool {
	salt, blob, version, aad := s.dummySalt, s.dummyBlob, s.kdfVersion, []byte(dummyUserName)
	if account != nil {
		salt, blob, version, aad = account.Salt, account.EncryptedPrivateKey, account.KDFVersion, []byte(account.UserName)
	}

	pw := []byte(password)
	defer common.WipeByteArray(pw)

	key, err := s.derive(pw, salt, version)
	if err != nil {
		return false
	}
	defer common.WipeByteArray(key)

	priv, err := cryptox.Unwrap(blob, key, aad)
	if err != nil {
		return false
	}
	defer common.WipeByteArray(priv)

	if account == nil {
		return false
	}

	// the stored public key must still belong to the unwrapped private key
	pub, err := cryptox.PublicKeyFromPrivate(account.KeyAlgorithm, priv)
	if err != nil || !bytes.Equal(pub, account.PublicKey) {
		return false
	}
	return true
}

// RefreshToken redeems a refresh token exactly once and returns a fresh
// TokenPair. Unknown tokens yield common.ErrInvalidToken, expired ones
// common.ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, common.ErrInvalidToken
	}

	var (
		pair    *TokenPair
		expired bool
	)
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		token, err := s.repomanager.RefreshTokens(tx).Consume(ctx, hashRefreshToken(refreshToken))
		if err != nil {
			return err
		}
		if token.Expires.Before(s.now()) {
			// commit the delete, hand out nothing
			expired = true
			return nil
		}
		pair, err = s.generateTokenPair(ctx, token.AccountID, tx)
		return err
	})

	switch {
	case errors.Is(err, common.ErrorNotFound):
		return nil, common.ErrInvalidToken
	case err != nil:
		s.logger.Error(ctx, "refresh failed", "error", err)
		return nil, common.ErrStorageFailure
	case expired:
		return nil, common.ErrRefreshTokenExpired
	}
	return pair, nil
}

// Logout revokes refreshToken so it can no longer be redeemed. Unknown and
// already used tokens are not an error. Access tokens already issued stay
// valid until they expire.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return common.ErrInvalidToken
	}
	if err := s.repomanager.RefreshTokens(s.db).Delete(ctx, hashRefreshToken(refreshToken)); err != nil {
		s.logger.Error(ctx, "refresh token revoke failed", "error", err)
		return common.ErrStorageFailure
	}
	return nil
}

// GetPublicKey returns the public key of userName or common.ErrorNotFound.
func (s *UserService) GetPublicKey(ctx context.Context, userName string) (*PublicKey, error) {
	account, err := s.repomanager.Accounts(s.db).GetByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "account lookup failed", "op", "public_key", "error", err)
		return nil, common.ErrStorageFailure
	}

	return &PublicKey{
		AccountID: account.ID,
		UserName:  account.UserName,
		Algorithm: account.KeyAlgorithm,
		Key:       account.PublicKey,
	}, nil
}

// GetIdentity returns the caller's own account row. The encrypted private
// key in it can only be opened with the password.
func (s *UserService) GetIdentity(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "account lookup failed", "op", "identity", "error", err)
		return nil, common.ErrStorageFailure
	}
	return account, nil
}

// hashRefreshToken is what the database stores, so a leaked table does not
// leak usable refresh tokens.
func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *UserService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(common.RefreshTokenSize)
}

func (s *UserService) generateTokenPair(ctx context.Context, accountID string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := s.issuer.Issue(accountID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, accountID, hashRefreshToken(refresh), s.refreshTokenValidityDuration); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Package auth issues and verifies the short-lived access tokens handed out
// after a successful login.
package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/keycustody/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AlgHS256 = "HS256"
	AlgEdDSA = "EdDSA"
)

// IssuerConfig selects the signing scheme and the registered claims every
// token carries.
type IssuerConfig struct {
	Algorithm string
	// Secret is the HMAC key for HS256.
	Secret []byte
	// Ed25519Seed is the 32-byte private seed for EdDSA.
	Ed25519Seed []byte
	Issuer      string
	Audience    string
	Validity    time.Duration
}

// Issuer signs access tokens. Verification only accepts the algorithm the
// issuer was built with.
type Issuer struct {
	method   jwt.SigningMethod
	signKey  any
	checkKey any
	issuer   string
	audience string
	validity time.Duration
	now      func() time.Time
}

func NewIssuer(cfg IssuerConfig) (*Issuer, error) {
	if cfg.Validity <= 0 {
		return nil, errors.New("token validity must be positive")
	}

	i := &Issuer{
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		validity: cfg.Validity,
		now:      time.Now,
	}

	switch cfg.Algorithm {
	case AlgHS256, "":
		if len(cfg.Secret) == 0 {
			return nil, errors.New("HS256 requires a non-empty secret")
		}
		i.method = jwt.SigningMethodHS256
		i.signKey = cfg.Secret
		i.checkKey = cfg.Secret
	case AlgEdDSA:
		if len(cfg.Ed25519Seed) != ed25519.SeedSize {
			return nil, fmt.Errorf("EdDSA seed must be %d bytes, got %d", ed25519.SeedSize, len(cfg.Ed25519Seed))
		}
		priv := ed25519.NewKeyFromSeed(cfg.Ed25519Seed)
		i.method = jwt.SigningMethodEdDSA
		i.signKey = priv
		i.checkKey = priv.Public()
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}

	return i, nil
}

// Issue returns a signed token whose subject is accountID.
func (i *Issuer) Issue(accountID string) (string, error) {
	now := i.now()
	claims := jwt.RegisteredClaims{
		Subject:   accountID,
		Issuer:    i.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.validity)),
		ID:        uuid.NewString(),
	}
	if i.audience != "" {
		claims.Audience = jwt.ClaimStrings{i.audience}
	}

	return jwt.NewWithClaims(i.method, claims).SignedString(i.signKey)
}

// Verify checks signature, algorithm, issuer, audience and expiry and
// returns the account id. Expired tokens yield common.ErrTokenExpired, any
// other problem common.ErrInvalidToken.
func (i *Issuer) Verify(tokenString string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(i.now),
	}
	if i.audience != "" {
		opts = append(opts, jwt.WithAudience(i.audience))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.checkKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}

package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the length of every derived wrapping key and vault key.
	KeySize = 32

	// MinSaltSize is the shortest salt Derive accepts.
	MinSaltSize = 16
)

// KDFVersion identifies a frozen set of key-derivation parameters. The
// version is stored next to the salt so raising the cost for new accounts
// never changes how existing accounts derive.
type KDFVersion int

const (
	// KDFPBKDF2 is PBKDF2-HMAC-SHA256 with 100 000 iterations.
	KDFPBKDF2 KDFVersion = 1
	// KDFArgon2id is Argon2id, t=1, m=64 MiB, p=4.
	KDFArgon2id KDFVersion = 2

	// CurrentKDF is used for every new account.
	CurrentKDF = KDFArgon2id
)

// KDFParams describes one KDF version. Values are fixed per version and must
// not be edited once released; add a new version instead.
type KDFParams struct {
	Version    KDFVersion
	SaltSize   int
	Iterations uint32 // PBKDF2 iterations or Argon2 time cost
	MemoryKiB  uint32 // Argon2 only
	Threads    uint8  // Argon2 only
}

var kdfParams = map[KDFVersion]KDFParams{
	KDFPBKDF2:   {Version: KDFPBKDF2, SaltSize: 16, Iterations: 100_000},
	KDFArgon2id: {Version: KDFArgon2id, SaltSize: 16, Iterations: 1, MemoryKiB: 64 * 1024, Threads: 4},
}

// LookupKDF returns the parameters of version v.
func LookupKDF(v KDFVersion) (KDFParams, error) {
	p, ok := kdfParams[v]
	if !ok {
		return KDFParams{}, fmt.Errorf("%w: %d", ErrUnsupportedKDF, v)
	}
	return p, nil
}

// Derive stretches password with salt into a KeySize wrapping key using the
// parameters of version v. The result is deterministic in its inputs.
//
// Empty passwords are not rejected here; the flows refuse them earlier.
func Derive(password []byte, salt []byte, v KDFVersion) ([]byte, error) {
	p, err := LookupKDF(v)
	if err != nil {
		return nil, err
	}
	if len(salt) < MinSaltSize {
		return nil, fmt.Errorf("%w: got %d, want at least %d", ErrInvalidSaltSize, len(salt), MinSaltSize)
	}

	switch p.Version {
	case KDFPBKDF2:
		return pbkdf2.Key(password, salt, int(p.Iterations), KeySize, sha256.New), nil
	case KDFArgon2id:
		return argon2.IDKey(password, salt, p.Iterations, p.MemoryKiB, p.Threads, KeySize), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnsupportedKDF, v)
}

// DeriveWithNewSalt draws a fresh salt from crypto/rand and derives a key
// from it.
func DeriveWithNewSalt(password []byte, v KDFVersion) (key, salt []byte, err error) {
	p, err := LookupKDF(v)
	if err != nil {
		return nil, nil, err
	}

	salt, err = NewSalt(p.SaltSize)
	if err != nil {
		return nil, nil, err
	}

	key, err = Derive(password, salt, v)
	if err != nil {
		return nil, nil, err
	}
	return key, salt, nil
}

// NewSalt returns size random bytes.
func NewSalt(size int) ([]byte, error) {
	if size < MinSaltSize {
		return nil, fmt.Errorf("%w: got %d, want at least %d", ErrInvalidSaltSize, size, MinSaltSize)
	}
	salt := make([]byte, size)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

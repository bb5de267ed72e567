package cryptox

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"io"

	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
	"golang.org/x/crypto/hkdf"
)

// vaultKeyContext separates vault key wrapping from any other use of the
// identity keys. It is the OAEP label for RSA and the HKDF info for ML-KEM.
var vaultKeyContext = []byte("keycustody:vaultkey:v1")

// NewVaultKey returns a fresh random symmetric vault key.
func NewVaultKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

// WrapVaultKeyFor encrypts vaultKey so that only the holder of the private
// half of recipientPublicKey can recover it. The server stores the result
// as an opaque blob.
//
// RSA uses OAEP-SHA256 directly. ML-KEM-768 encapsulates a shared secret,
// stretches it with HKDF-SHA512 and seals the vault key with AES-256-GCM
// using the KEM ciphertext as associated data; the blob is
// kemCiphertext || nonce || ciphertext || tag.
func WrapVaultKeyFor(vaultKey []byte, alg KeyAlgorithm, recipientPublicKey []byte) ([]byte, error) {
	if len(vaultKey) != KeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(vaultKey), KeySize)
	}

	switch alg {
	case AlgRSAOAEP:
		pub, err := parseRSAPublic(recipientPublicKey)
		if err != nil {
			return nil, err
		}
		return rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, vaultKey, vaultKeyContext)

	case AlgMLKEM768:
		scheme := mlkem768.Scheme()
		pk, err := scheme.UnmarshalBinaryPublicKey(recipientPublicKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
		}

		kemCT, shared, err := scheme.Encapsulate(pk)
		if err != nil {
			return nil, err
		}
		wrapKey, err := expand(shared)
		if err != nil {
			return nil, err
		}

		sealed, err := seal(wrapKey, vaultKey, kemCT)
		if err != nil {
			return nil, err
		}
		return append(kemCT, sealed...), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
}

// UnwrapVaultKey is the recipient side of WrapVaultKeyFor. It runs on the
// client, which holds the unwrapped identity private key; the server never
// calls it.
func UnwrapVaultKey(wrapped []byte, alg KeyAlgorithm, privateKey []byte) ([]byte, error) {
	switch alg {
	case AlgRSAOAEP:
		priv, err := parseRSAPrivate(privateKey)
		if err != nil {
			return nil, err
		}
		key, err := rsa.DecryptOAEP(sha256.New(), nil, priv, wrapped, vaultKeyContext)
		if err != nil {
			return nil, ErrVaultKeyUnwrap
		}
		return key, nil

	case AlgMLKEM768:
		scheme := mlkem768.Scheme()
		sk, err := scheme.UnmarshalBinaryPrivateKey(privateKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
		}

		ctSize := scheme.CiphertextSize()
		if len(wrapped) < ctSize+Overhead {
			return nil, ErrVaultKeyUnwrap
		}
		kemCT := wrapped[:ctSize]

		shared, err := scheme.Decapsulate(sk, kemCT)
		if err != nil {
			return nil, ErrVaultKeyUnwrap
		}
		wrapKey, err := expand(shared)
		if err != nil {
			return nil, err
		}

		key, err := open(wrapKey, wrapped[ctSize:], kemCT)
		if err != nil {
			return nil, ErrVaultKeyUnwrap
		}
		return key, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
}

// WrappedVaultKeySize is the exact length of any vault key wrapped for
// recipientPublicKey. It lets the relay reject malformed grants without
// being able to open them.
func WrappedVaultKeySize(alg KeyAlgorithm, recipientPublicKey []byte) (int, error) {
	switch alg {
	case AlgRSAOAEP:
		pub, err := parseRSAPublic(recipientPublicKey)
		if err != nil {
			return 0, err
		}
		return pub.Size(), nil

	case AlgMLKEM768:
		scheme := mlkem768.Scheme()
		if _, err := scheme.UnmarshalBinaryPublicKey(recipientPublicKey); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
		}
		return scheme.CiphertextSize() + Overhead + KeySize, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
}

func expand(shared []byte) ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha512.New, shared, nil, vaultKeyContext), key); err != nil {
		return nil, fmt.Errorf("cryptox: derive wrap key: %w", err)
	}
	return key, nil
}

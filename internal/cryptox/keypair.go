package cryptox

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"fmt"

	"github.com/awnumar/memguard"
	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
)

// KeyAlgorithm names the asymmetric scheme of an identity keypair. It is
// persisted per account so a server can change its default without
// stranding existing accounts.
type KeyAlgorithm string

const (
	// AlgRSAOAEP is RSA with OAEP-SHA256 for vault key wrapping.
	// Public keys are PKIX DER, private keys PKCS#8 DER.
	AlgRSAOAEP KeyAlgorithm = "rsa-oaep-sha256"
	// AlgMLKEM768 is ML-KEM-768 in circl's binary encoding.
	AlgMLKEM768 KeyAlgorithm = "mlkem768"
)

const (
	// DefaultRSABits matches the key size the product has always used.
	DefaultRSABits = 4096
	// MinRSABits is the smallest modulus accepted.
	MinRSABits = 2048
)

// ParseKeyAlgorithm validates s.
func ParseKeyAlgorithm(s string) (KeyAlgorithm, error) {
	switch KeyAlgorithm(s) {
	case AlgRSAOAEP, AlgMLKEM768:
		return KeyAlgorithm(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, s)
}

// Keypair is an identity keypair in serialized form. PrivateKey is plaintext
// and must be wrapped or wiped as soon as possible.
type Keypair struct {
	Algorithm  KeyAlgorithm
	PublicKey  []byte
	PrivateKey []byte
}

// Wipe zeroes the private half in place.
func (k *Keypair) Wipe() {
	if k == nil || len(k.PrivateKey) == 0 {
		return
	}
	memguard.WipeBytes(k.PrivateKey)
}

// KeypairGenerator creates identity keypairs of one algorithm.
type KeypairGenerator struct {
	Algorithm KeyAlgorithm
	RSABits   int
}

// NewKeypairGenerator validates alg and bits. bits is ignored for
// non-RSA algorithms; zero selects DefaultRSABits.
func NewKeypairGenerator(alg KeyAlgorithm, bits int) (*KeypairGenerator, error) {
	if _, err := ParseKeyAlgorithm(string(alg)); err != nil {
		return nil, err
	}
	if bits == 0 {
		bits = DefaultRSABits
	}
	if alg == AlgRSAOAEP && bits < MinRSABits {
		return nil, fmt.Errorf("cryptox: rsa key size %d below minimum %d", bits, MinRSABits)
	}
	return &KeypairGenerator{Algorithm: alg, RSABits: bits}, nil
}

// Generate returns a new, independent keypair drawn from crypto/rand.
func (g *KeypairGenerator) Generate() (*Keypair, error) {
	switch g.Algorithm {
	case AlgRSAOAEP:
		return generateRSA(g.RSABits)
	case AlgMLKEM768:
		return generateMLKEM()
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, g.Algorithm)
}

func generateRSA(bits int) (*Keypair, error) {
	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, err
	}

	pub, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, err
	}
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, err
	}

	return &Keypair{Algorithm: AlgRSAOAEP, PublicKey: pub, PrivateKey: der}, nil
}

func generateMLKEM() (*Keypair, error) {
	pk, sk, err := mlkem768.Scheme().GenerateKeyPair()
	if err != nil {
		return nil, err
	}

	pub, err := pk.MarshalBinary()
	if err != nil {
		return nil, err
	}
	priv, err := sk.MarshalBinary()
	if err != nil {
		return nil, err
	}

	return &Keypair{Algorithm: AlgMLKEM768, PublicKey: pub, PrivateKey: priv}, nil
}

// PublicKeyFromPrivate recomputes the public key that belongs to priv.
func PublicKeyFromPrivate(alg KeyAlgorithm, priv []byte) ([]byte, error) {
	switch alg {
	case AlgRSAOAEP:
		key, err := parseRSAPrivate(priv)
		if err != nil {
			return nil, err
		}
		return x509.MarshalPKIXPublicKey(&key.PublicKey)
	case AlgMLKEM768:
		sk, err := mlkem768.Scheme().UnmarshalBinaryPrivateKey(priv)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
		}
		return sk.Public().MarshalBinary()
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
}

// ValidatePublicKey checks that pub parses as a public key of alg.
func ValidatePublicKey(alg KeyAlgorithm, pub []byte) error {
	switch alg {
	case AlgRSAOAEP:
		_, err := parseRSAPublic(pub)
		return err
	case AlgMLKEM768:
		if _, err := mlkem768.Scheme().UnmarshalBinaryPublicKey(pub); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
}

func parseRSAPublic(der []byte) (*rsa.PublicKey, error) {
	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an rsa key", ErrInvalidPublicKey)
	}
	return pub, nil
}

func parseRSAPrivate(der []byte) (*rsa.PrivateKey, error) {
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an rsa key", ErrInvalidPrivateKey)
	}
	return priv, nil
}

package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeypairGenerator_Validation(t *testing.T) {
	_, err := NewKeypairGenerator("dsa", 0)
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)

	_, err = NewKeypairGenerator(AlgRSAOAEP, 1024)
	assert.Error(t, err)

	g, err := NewKeypairGenerator(AlgRSAOAEP, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultRSABits, g.RSABits)
}

func TestGenerate_Algorithms(t *testing.T) {
	tests := []struct {
		alg  KeyAlgorithm
		bits int
	}{
		{AlgRSAOAEP, MinRSABits},
		{AlgMLKEM768, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.alg), func(t *testing.T) {
			g, err := NewKeypairGenerator(tt.alg, tt.bits)
			require.NoError(t, err)

			a, err := g.Generate()
			require.NoError(t, err)
			b, err := g.Generate()
			require.NoError(t, err)

			assert.Equal(t, tt.alg, a.Algorithm)
			assert.NotEqual(t, a.PublicKey, b.PublicKey, "keypairs must be independent")
			assert.NotEqual(t, a.PrivateKey, b.PrivateKey)
			require.NoError(t, ValidatePublicKey(tt.alg, a.PublicKey))

			pub, err := PublicKeyFromPrivate(tt.alg, a.PrivateKey)
			require.NoError(t, err)
			assert.Equal(t, a.PublicKey, pub, "public key must match the private half")
		})
	}
}

func TestValidatePublicKey_Garbage(t *testing.T) {
	assert.ErrorIs(t, ValidatePublicKey(AlgRSAOAEP, []byte("nope")), ErrInvalidPublicKey)
	assert.ErrorIs(t, ValidatePublicKey(AlgMLKEM768, []byte("nope")), ErrInvalidPublicKey)
	assert.ErrorIs(t, ValidatePublicKey("x", nil), ErrUnsupportedAlgorithm)
}

func TestKeypair_Wipe(t *testing.T) {
	kp := &Keypair{PrivateKey: []byte{1, 2, 3}}
	kp.Wipe()
	assert.Equal(t, []byte{0, 0, 0}, kp.PrivateKey)

	var nilKP *Keypair
	assert.NotPanics(t, nilKP.Wipe)
}

func TestParseKeyAlgorithm(t *testing.T) {
	alg, err := ParseKeyAlgorithm("mlkem768")
	require.NoError(t, err)
	assert.Equal(t, AlgMLKEM768, alg)

	_, err = ParseKeyAlgorithm("rsa")
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

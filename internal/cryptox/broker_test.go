package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVaultKey_RoundTrip(t *testing.T) {
	for _, alg := range []KeyAlgorithm{AlgMLKEM768, AlgRSAOAEP} {
		t.Run(string(alg), func(t *testing.T) {
			g, err := NewKeypairGenerator(alg, MinRSABits)
			require.NoError(t, err)
			recipient, err := g.Generate()
			require.NoError(t, err)

			vaultKey, err := NewVaultKey()
			require.NoError(t, err)

			wrapped, err := WrapVaultKeyFor(vaultKey, alg, recipient.PublicKey)
			require.NoError(t, err)
			assert.NotContains(t, string(wrapped), string(vaultKey))

			got, err := UnwrapVaultKey(wrapped, alg, recipient.PrivateKey)
			require.NoError(t, err)
			assert.Equal(t, vaultKey, got)

			again, err := WrapVaultKeyFor(vaultKey, alg, recipient.PublicKey)
			require.NoError(t, err)
			assert.NotEqual(t, wrapped, again, "wrapping must be randomized")
		})
	}
}

func TestVaultKey_OtherRecipientCannotUnwrap(t *testing.T) {
	g, err := NewKeypairGenerator(AlgMLKEM768, 0)
	require.NoError(t, err)
	alice, err := g.Generate()
	require.NoError(t, err)
	mallory, err := g.Generate()
	require.NoError(t, err)

	vaultKey, err := NewVaultKey()
	require.NoError(t, err)
	wrapped, err := WrapVaultKeyFor(vaultKey, AlgMLKEM768, alice.PublicKey)
	require.NoError(t, err)

	_, err = UnwrapVaultKey(wrapped, AlgMLKEM768, mallory.PrivateKey)
	assert.ErrorIs(t, err, ErrVaultKeyUnwrap)

	wrapped[len(wrapped)-1] ^= 0x01
	_, err = UnwrapVaultKey(wrapped, AlgMLKEM768, alice.PrivateKey)
	assert.ErrorIs(t, err, ErrVaultKeyUnwrap)

	_, err = UnwrapVaultKey(wrapped[:10], AlgMLKEM768, alice.PrivateKey)
	assert.ErrorIs(t, err, ErrVaultKeyUnwrap)
}

func TestWrapVaultKeyFor_Rejects(t *testing.T) {
	_, err := WrapVaultKeyFor(make([]byte, 16), AlgMLKEM768, nil)
	assert.ErrorIs(t, err, ErrInvalidKeySize)

	_, err = WrapVaultKeyFor(make([]byte, KeySize), AlgRSAOAEP, []byte("junk"))
	assert.ErrorIs(t, err, ErrInvalidPublicKey)

	_, err = WrapVaultKeyFor(make([]byte, KeySize), "x", nil)
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestWrappedVaultKeySize(t *testing.T) {
	for _, alg := range []KeyAlgorithm{AlgMLKEM768, AlgRSAOAEP} {
		t.Run(string(alg), func(t *testing.T) {
			g, err := NewKeypairGenerator(alg, MinRSABits)
			require.NoError(t, err)
			recipient, err := g.Generate()
			require.NoError(t, err)

			vaultKey, err := NewVaultKey()
			require.NoError(t, err)
			wrapped, err := WrapVaultKeyFor(vaultKey, alg, recipient.PublicKey)
			require.NoError(t, err)

			size, err := WrappedVaultKeySize(alg, recipient.PublicKey)
			require.NoError(t, err)
			assert.Equal(t, len(wrapped), size)
		})
	}

	_, err := WrappedVaultKeySize(AlgMLKEM768, []byte("short"))
	assert.ErrorIs(t, err, ErrInvalidPublicKey)

	_, err = WrappedVaultKeySize("elgamal", nil)
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

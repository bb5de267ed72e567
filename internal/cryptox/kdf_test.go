package cryptox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerive_Deterministic(t *testing.T) {
	salt := bytes.Repeat([]byte{0x5a}, 16)

	for _, v := range []KDFVersion{KDFPBKDF2, KDFArgon2id} {
		k1, err := Derive([]byte("secret-password"), salt, v)
		require.NoError(t, err)
		k2, err := Derive([]byte("secret-password"), salt, v)
		require.NoError(t, err)

		assert.Len(t, k1, KeySize)
		assert.Equal(t, k1, k2, "version %d must be a pure function", v)
	}
}

func TestDerive_VersionsDiffer(t *testing.T) {
	salt := bytes.Repeat([]byte{0x01}, 16)

	a, err := Derive([]byte("pw"), salt, KDFPBKDF2)
	require.NoError(t, err)
	b, err := Derive([]byte("pw"), salt, KDFArgon2id)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestDerive_DifferentSaltsAndPasswords(t *testing.T) {
	s1 := bytes.Repeat([]byte{1}, 16)
	s2 := bytes.Repeat([]byte{2}, 16)

	k1, err := Derive([]byte("pw"), s1, KDFPBKDF2)
	require.NoError(t, err)
	k2, err := Derive([]byte("pw"), s2, KDFPBKDF2)
	require.NoError(t, err)
	k3, err := Derive([]byte("pw2"), s1, KDFPBKDF2)
	require.NoError(t, err)

	assert.NotEqual(t, k1, k2)
	assert.NotEqual(t, k1, k3)
}

func TestDerive_Rejects(t *testing.T) {
	_, err := Derive([]byte("pw"), make([]byte, 8), KDFPBKDF2)
	assert.ErrorIs(t, err, ErrInvalidSaltSize)

	_, err = Derive([]byte("pw"), make([]byte, 16), KDFVersion(99))
	assert.ErrorIs(t, err, ErrUnsupportedKDF)
}

func TestDeriveWithNewSalt(t *testing.T) {
	k1, s1, err := DeriveWithNewSalt([]byte("same"), KDFPBKDF2)
	require.NoError(t, err)
	k2, s2, err := DeriveWithNewSalt([]byte("same"), KDFPBKDF2)
	require.NoError(t, err)

	assert.Len(t, s1, 16)
	assert.NotEqual(t, s1, s2, "salts must never repeat")
	assert.NotEqual(t, k1, k2)

	again, err := Derive([]byte("same"), s1, KDFPBKDF2)
	require.NoError(t, err)
	assert.Equal(t, k1, again)
}

func TestLookupKDF_CurrentIsKnown(t *testing.T) {
	p, err := LookupKDF(CurrentKDF)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, p.SaltSize, MinSaltSize)
}

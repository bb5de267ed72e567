package cryptox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKeypair(t *testing.T) *Keypair {
	t.Helper()
	g, err := NewKeypairGenerator(AlgMLKEM768, 0)
	require.NoError(t, err)
	kp, err := g.Generate()
	require.NoError(t, err)
	return kp
}

func TestWrapUnwrap_RoundTrip(t *testing.T) {
	kp := newTestKeypair(t)
	key, salt, err := DeriveWithNewSalt([]byte("p@ss1"), KDFPBKDF2)
	require.NoError(t, err)

	blob, err := Wrap(kp.PrivateKey, key, []byte("alice"))
	require.NoError(t, err)
	assert.Len(t, blob, len(kp.PrivateKey)+Overhead)

	again, err := Derive([]byte("p@ss1"), salt, KDFPBKDF2)
	require.NoError(t, err)

	got, err := Unwrap(blob, again, []byte("alice"))
	require.NoError(t, err)
	assert.Equal(t, kp.PrivateKey, got)
}

func TestUnwrap_WrongPassword(t *testing.T) {
	key, salt, err := DeriveWithNewSalt([]byte("right"), KDFPBKDF2)
	require.NoError(t, err)
	blob, err := Wrap([]byte("private"), key, []byte("alice"))
	require.NoError(t, err)

	for _, wrong := range []string{"wrong", "Right", "right ", ""} {
		k, err := Derive([]byte(wrong), salt, KDFPBKDF2)
		require.NoError(t, err)

		_, err = Unwrap(blob, k, []byte("alice"))
		assert.ErrorIs(t, err, ErrAuthFailure, "password %q", wrong)
	}
}

func TestUnwrap_WrongAssociatedData(t *testing.T) {
	key := bytes.Repeat([]byte{7}, KeySize)
	blob, err := Wrap([]byte("private"), key, []byte("alice"))
	require.NoError(t, err)

	_, err = Unwrap(blob, key, []byte("bob"))
	assert.ErrorIs(t, err, ErrAuthFailure)
	_, err = Unwrap(blob, key, nil)
	assert.ErrorIs(t, err, ErrAuthFailure)
}

func TestUnwrap_AnyBitFlipFails(t *testing.T) {
	key := bytes.Repeat([]byte{9}, KeySize)
	blob, err := Wrap([]byte("a short private key"), key, []byte("alice"))
	require.NoError(t, err)

	for i := range blob {
		for bit := 0; bit < 8; bit++ {
			tampered := append([]byte(nil), blob...)
			tampered[i] ^= 1 << bit

			_, err := Unwrap(tampered, key, []byte("alice"))
			require.ErrorIs(t, err, ErrAuthFailure, "byte %d bit %d", i, bit)
		}
	}
}

func TestUnwrap_MalformedIsUniform(t *testing.T) {
	key := bytes.Repeat([]byte{3}, KeySize)
	blob, err := Wrap([]byte("pk"), key, []byte("alice"))
	require.NoError(t, err)

	cases := map[string]struct {
		blob []byte
		key  []byte
	}{
		"empty":         {nil, key},
		"nonce only":    {blob[:NonceSize], key},
		"truncated tag": {blob[:len(blob)-1], key},
		"short key":     {blob, key[:16]},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Unwrap(c.blob, c.key, []byte("alice"))
			assert.Equal(t, ErrAuthFailure, err)
		})
	}
}

func TestWrap_FreshNoncePerCall(t *testing.T) {
	key := bytes.Repeat([]byte{1}, KeySize)

	a, err := Wrap([]byte("same"), key, []byte("alice"))
	require.NoError(t, err)
	b, err := Wrap([]byte("same"), key, []byte("alice"))
	require.NoError(t, err)

	assert.NotEqual(t, a[:NonceSize], b[:NonceSize])
	assert.NotEqual(t, a, b)
}

func TestWrap_InvalidKeySize(t *testing.T) {
	_, err := Wrap([]byte("pk"), make([]byte, 16), nil)
	assert.ErrorIs(t, err, ErrInvalidKeySize)
}

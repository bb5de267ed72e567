package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
)

const (
	// NonceSize is the AES-GCM nonce length.
	NonceSize = 12
	// TagSize is the AES-GCM authentication tag length.
	TagSize = 16
	// Overhead is what Wrap adds to the plaintext length.
	Overhead = NonceSize + TagSize
)

// Wrap encrypts privateKey under key with AES-256-GCM, binding
// associatedData (the owning username) into the tag.
//
// Blob layout: nonce (12) || ciphertext || tag (16). The nonce is drawn from
// crypto/rand on every call.
func Wrap(privateKey, key, associatedData []byte) ([]byte, error) {
	return seal(key, privateKey, associatedData)
}

// Unwrap reverses Wrap. Every failure, whether a wrong key, foreign
// associated data, a flipped bit or a truncated blob, yields ErrAuthFailure
// and nothing else.
func Unwrap(blob, key, associatedData []byte) ([]byte, error) {
	plaintext, err := open(key, blob, associatedData)
	if err != nil {
		return nil, ErrAuthFailure
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), KeySize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func seal(key, plaintext, aad []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	out := make([]byte, NonceSize, NonceSize+len(plaintext)+TagSize)
	if _, err := rand.Read(out); err != nil {
		return nil, err
	}

	return gcm.Seal(out, out[:NonceSize], plaintext, aad), nil
}

func open(key, blob, aad []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(blob) < Overhead {
		return nil, fmt.Errorf("cryptox: blob too short")
	}

	return gcm.Open(nil, blob[:NonceSize], blob[NonceSize:], aad)
}

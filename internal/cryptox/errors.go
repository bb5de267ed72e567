package cryptox

import "errors"

var (
	// ErrAuthFailure is the single outcome of a failed Unwrap. It does not
	// say whether the key, the associated data or the blob was at fault.
	ErrAuthFailure = errors.New("cryptox: authentication failure")

	// ErrUnsupportedKDF is returned for an unknown KDF version.
	ErrUnsupportedKDF = errors.New("cryptox: unsupported kdf version")

	// ErrUnsupportedAlgorithm is returned for an unknown identity key algorithm.
	ErrUnsupportedAlgorithm = errors.New("cryptox: unsupported key algorithm")

	// ErrInvalidKeySize is returned when a symmetric key is not 32 bytes.
	ErrInvalidKeySize = errors.New("cryptox: invalid key size")

	// ErrInvalidSaltSize is returned when a salt is shorter than MinSaltSize.
	ErrInvalidSaltSize = errors.New("cryptox: invalid salt size")

	// ErrInvalidPublicKey is returned when public key bytes cannot be parsed
	// for the declared algorithm.
	ErrInvalidPublicKey = errors.New("cryptox: invalid public key")

	// ErrInvalidPrivateKey is returned when private key bytes cannot be parsed
	// for the declared algorithm.
	ErrInvalidPrivateKey = errors.New("cryptox: invalid private key")

	// ErrVaultKeyUnwrap is returned when a wrapped vault key cannot be opened.
	ErrVaultKeyUnwrap = errors.New("cryptox: vault key unwrap failed")
)

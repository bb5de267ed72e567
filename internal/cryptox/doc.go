// Package cryptox implements the key-custody primitives of keycustody:
//
//   - password based key derivation with versioned work parameters (kdf.go)
//   - per-account identity keypairs (keypair.go)
//   - authenticated wrapping of the identity private key (custody.go)
//   - hybrid wrapping of vault keys for a recipient public key (broker.go)
//
// Everything here is a pure function of its inputs and safe for concurrent
// use. Nothing in this package logs.
package cryptox

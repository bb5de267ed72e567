// Package cli provides the interactive keycustody command-line client.
//
// It wires configuration, the gRPC client and the keyring service into a
// small REPL: register, login (which unlocks the private key locally),
// create vault keys, share them with other users and list the keys granted
// to you. Passwords are read without echo and wiped after use.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli

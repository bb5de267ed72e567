// Package common contains shared constants, sentinel errors and small helpers
// used by both the keycustody server and its client.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// RefreshTokenSize is the number of random bytes behind a refresh token
// (the token itself is hex encoded, so twice as long).
const RefreshTokenSize = 32
